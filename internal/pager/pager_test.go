package pager_test

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joeandaverde/tinyquery/internal/fixture"
	"github.com/joeandaverde/tinyquery/internal/pager"
)

func buildFixture(t *testing.T, pageSize, rows int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fixture.db")
	cols := []fixture.Column{
		{Name: "id", Type: "INTEGER", PrimaryKey: true},
		{Name: "name", Type: "TEXT"},
	}
	var tableRows [][]interface{}
	for i := 0; i < rows; i++ {
		tableRows = append(tableRows, []interface{}{i + 1, fmt.Sprintf("row-%05d", i)})
	}

	_, err := fixture.Build(path, pageSize, []fixture.Table{
		{Name: "widgets", Columns: cols, Rows: tableRows},
	})
	require.NoError(t, err)
	return path
}

func TestOpen_ParsesHeader(t *testing.T) {
	r := require.New(t)
	path := buildFixture(t, 4096, 4)

	p, err := pager.Open(path, nil)
	r.NoError(err)
	defer p.Close()

	r.Equal(4096, p.PageSize())
	r.GreaterOrEqual(p.PageCount(), 1)
}

func TestOpen_RejectsMissingFile(t *testing.T) {
	r := require.New(t)

	_, err := pager.Open(filepath.Join(t.TempDir(), "does-not-exist.db"), nil)
	r.Error(err)
}

func TestPage_OutOfBounds(t *testing.T) {
	r := require.New(t)
	path := buildFixture(t, 4096, 4)

	p, err := pager.Open(path, nil)
	r.NoError(err)
	defer p.Close()

	_, err = p.Page(0)
	r.Error(err)

	_, err = p.Page(p.PageCount() + 1)
	r.Error(err)
}

func TestIdempotentOpen(t *testing.T) {
	r := require.New(t)
	path := buildFixture(t, 4096, 10)

	p1, err := pager.Open(path, nil)
	r.NoError(err)
	defer p1.Close()

	p2, err := pager.Open(path, nil)
	r.NoError(err)
	defer p2.Close()

	r.Equal(p1.PageSize(), p2.PageSize())
	r.Equal(p1.PageCount(), p2.PageCount())
}
