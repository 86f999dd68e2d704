package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/joeandaverde/tinyquery/internal/fixture"
)

func buildApplesDB(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "apples.db")
	_, err := fixture.Build(path, 4096, []fixture.Table{
		{
			Name: "apples",
			Columns: []fixture.Column{
				{Name: "id", Type: "INTEGER", PrimaryKey: true},
				{Name: "name", Type: "TEXT"},
				{Name: "color", Type: "TEXT"},
			},
			Rows: [][]interface{}{
				{1, "Granny Smith", "Light Green"},
				{2, "Fuji", "Red"},
				{3, "Honeycrisp", "Blush Red"},
				{4, "Golden Delicious", "Yellow"},
			},
		},
	})
	require.NoError(t, err)
	return path
}

func runCLI(t *testing.T, db, command string) string {
	t.Helper()

	var out bytes.Buffer
	log := logrus.New().WithField("query_id", "test")
	err := run(cli{Database: db, Command: command}, &out, log)
	require.NoError(t, err)
	return out.String()
}

func TestEndToEnd_DbInfo(t *testing.T) {
	db := buildApplesDB(t)
	out := runCLI(t, db, ".dbinfo")
	require.Contains(t, out, "database page size: 4096")
	require.Contains(t, out, "number of tables: 1")
}

func TestEndToEnd_Tables(t *testing.T) {
	db := buildApplesDB(t)
	out := runCLI(t, db, ".tables")
	require.Contains(t, out, "apples")
}

func TestEndToEnd_SelectNameProjection(t *testing.T) {
	db := buildApplesDB(t)
	out := runCLI(t, db, "SELECT name FROM apples")
	require.Equal(t, "Granny Smith\nFuji\nHoneycrisp\nGolden Delicious\n", out)
}

func TestEndToEnd_SelectWithWhereEquals(t *testing.T) {
	db := buildApplesDB(t)
	out := runCLI(t, db, "SELECT id, color FROM apples WHERE color = 'Yellow'")
	require.Equal(t, "4|Yellow\n", out)
}

func TestEndToEnd_Count(t *testing.T) {
	db := buildApplesDB(t)
	out := runCLI(t, db, "SELECT COUNT(*) FROM apples")
	require.Equal(t, "4\n", out)
}

func TestEndToEnd_SelectWithWhereGte(t *testing.T) {
	db := buildApplesDB(t)
	out := runCLI(t, db, "SELECT name FROM apples WHERE id >= 3")
	require.Equal(t, "Honeycrisp\nGolden Delicious\n", out)
}
