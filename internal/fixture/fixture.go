package fixture

import (
	"database/sql"
	"fmt"
)

// Column describes one column of a fixture table.
type Column struct {
	Name       string
	Type       string // INTEGER, TEXT, REAL, ...
	PrimaryKey bool
}

// Table describes a fixture table and its rows. Row values are passed
// positionally, matching Columns' order.
type Table struct {
	Name    string
	Columns []Column
	Rows    [][]interface{}
}

// Build creates a fresh SQLite database file at path containing the given
// tables, using pageSize as its page size (a PRAGMA set before any table
// is created, so it takes effect on the file's first page). It returns
// the path for convenience.
func Build(path string, pageSize int, tables []Table) (string, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return "", fmt.Errorf("fixture: open: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(fmt.Sprintf("PRAGMA page_size = %d", pageSize)); err != nil {
		return "", fmt.Errorf("fixture: set page_size: %w", err)
	}
	// Force the page size to take effect by touching the schema before
	// any table is created.
	if _, err := db.Exec("VACUUM"); err != nil {
		return "", fmt.Errorf("fixture: vacuum: %w", err)
	}

	for _, table := range tables {
		if err := createTable(db, table); err != nil {
			return "", err
		}
		if err := insertRows(db, table); err != nil {
			return "", err
		}
	}

	return path, nil
}

func createTable(db *sql.DB, table Table) error {
	ddl := fmt.Sprintf("CREATE TABLE %s (%s)", table.Name, columnDefs(table.Columns))
	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("fixture: create table %s: %w", table.Name, err)
	}
	return nil
}

func columnDefs(cols []Column) string {
	defs := ""
	for i, c := range cols {
		if i > 0 {
			defs += ", "
		}
		defs += c.Name + " " + c.Type
		if c.PrimaryKey {
			defs += " PRIMARY KEY"
		}
	}
	return defs
}

func insertRows(db *sql.DB, table Table) error {
	if len(table.Rows) == 0 {
		return nil
	}

	placeholders := ""
	for i := range table.Columns {
		if i > 0 {
			placeholders += ", "
		}
		placeholders += "?"
	}
	stmt, err := db.Prepare(fmt.Sprintf("INSERT INTO %s VALUES (%s)", table.Name, placeholders))
	if err != nil {
		return fmt.Errorf("fixture: prepare insert into %s: %w", table.Name, err)
	}
	defer stmt.Close()

	for _, row := range table.Rows {
		if _, err := stmt.Exec(row...); err != nil {
			return fmt.Errorf("fixture: insert into %s: %w", table.Name, err)
		}
	}
	return nil
}
