// Package query implements the read-only executor (spec.md §4.8):
// parse, resolve schema, evaluate WHERE, and print projected rows.
// Grounded on the original reference implementation's vm.rs
// handle_query/parse_entry/print_row for the row-materialization
// algorithm, and on tinydb's internal/virtualmachine/machine.go for the
// single logrus-logged entry-point idiom.
package query

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/joeandaverde/tinyquery/internal/pager"
	"github.com/joeandaverde/tinyquery/internal/record"
	"github.com/joeandaverde/tinyquery/internal/schema"
	"github.com/joeandaverde/tinyquery/internal/sql/ast"
	"github.com/joeandaverde/tinyquery/internal/sql/parser"
	"github.com/joeandaverde/tinyquery/internal/tqerr"
)

// Run executes a single SQL query against the database backing pager,
// resolving table names through idx, and writes its output to out.
func Run(p *pager.Pager, idx *schema.Index, queryText string, out io.Writer, log *logrus.Logger) error {
	if log == nil {
		log = logrus.StandardLogger()
	}

	stmt, err := parser.Parse(queryText)
	if err != nil {
		return err
	}

	sel, ok := stmt.(*ast.SelectStatement)
	if !ok {
		return tqerr.Newf(tqerr.Unsupported, "only SELECT is supported")
	}

	obj, err := idx.Find(sel.From)
	if err != nil {
		return err
	}

	table, err := parseTableColumns(obj)
	if err != nil {
		return err
	}

	entry := log.WithFields(logrus.Fields{
		"component": "query",
		"table":     sel.From,
	})

	cursor, err := pager.NewCursor(p, obj.RootPage)
	if err != nil {
		return err
	}

	switch proj := soleAggregate(sel.Columns); {
	case proj == aggCount:
		return runCount(cursor, table, sel.Where, out, entry)
	case proj == aggAvg:
		col := sel.Columns[0].(*ast.AvgColumn).Column
		return runAvg(cursor, table, col, sel.Where, out, entry)
	default:
		return runList(cursor, table, sel.Columns, sel.Where, out, entry)
	}
}

type aggKind int

const (
	aggNone aggKind = iota
	aggCount
	aggAvg
)

// soleAggregate reports whether cols is exactly one COUNT or AVG
// projection, the only shapes that aggregate rather than list.
func soleAggregate(cols []ast.Projection) aggKind {
	if len(cols) != 1 {
		return aggNone
	}
	switch cols[0].(type) {
	case *ast.CountStar:
		return aggCount
	case *ast.AvgColumn:
		return aggAvg
	default:
		return aggNone
	}
}

// tableInfo holds the column metadata recovered by re-parsing a table's
// stored CREATE TABLE SQL, and which column (if any) is the rowid alias.
type tableInfo struct {
	columns      []ast.ColumnDef
	rowidAliasAt int // index into columns, or -1
}

func parseTableColumns(obj schema.Object) (tableInfo, error) {
	stmt, err := parser.Parse(obj.SQL)
	if err != nil {
		return tableInfo{}, tqerr.New(tqerr.SchemaError, fmt.Errorf("re-parsing stored schema for %s: %w", obj.Name, err))
	}
	create, ok := stmt.(*ast.CreateTableStatement)
	if !ok {
		return tableInfo{}, tqerr.Newf(tqerr.SchemaError, "schema entry %s is not a table", obj.Name)
	}

	info := tableInfo{columns: create.Columns, rowidAliasAt: -1}
	for i, c := range create.Columns {
		if c.PrimaryKey && c.Type == "INTEGER" {
			info.rowidAliasAt = i
			break
		}
	}
	return info, nil
}

func (t tableInfo) columnIndex(name string) (int, error) {
	for i, c := range t.columns {
		if strings.EqualFold(c.Name, name) {
			return i, nil
		}
	}
	return 0, tqerr.Newf(tqerr.SchemaError, "no such column: %s", name)
}

// materialize decodes one leaf entry's values, substituting the cursor
// key for an INTEGER PRIMARY KEY rowid-alias column (spec.md §4.3: such
// columns are stored as NULL in the record and aliased to the rowid).
func materialize(t tableInfo, e pager.Entry) ([]record.Value, error) {
	types, bodyOffset, err := record.DecodeHeader(e.Payload)
	if err != nil {
		return nil, err
	}
	values, err := record.DecodeValues(types, e.Payload[bodyOffset:])
	if err != nil {
		return nil, err
	}

	if t.rowidAliasAt >= 0 && t.rowidAliasAt < len(values) {
		values[t.rowidAliasAt] = record.Integer(e.Key)
	}

	return values, nil
}

func runList(cursor *pager.Cursor, table tableInfo, cols []ast.Projection, where ast.Expression, out io.Writer, log *logrus.Entry) error {
	indices, err := projectionIndices(table, cols)
	if err != nil {
		return err
	}

	rows := 0
	for {
		entry, ok, err := cursor.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}

		values, err := materialize(table, entry)
		if err != nil {
			return err
		}

		matched, err := evalWhere(where, table, values)
		if err != nil {
			return err
		}
		if !matched {
			continue
		}

		fields := make([]string, len(indices))
		for i, idx := range indices {
			fields[i] = formatValue(values[idx])
		}
		if _, err := fmt.Fprintln(out, strings.Join(fields, "|")); err != nil {
			return tqerr.New(tqerr.IO, err)
		}
		rows++
	}

	log.WithField("rows", rows).Debug("query complete")
	return nil
}

// projectionIndices expands "*" to every column in declaration order,
// otherwise resolves each named column against the table.
func projectionIndices(table tableInfo, cols []ast.Projection) ([]int, error) {
	var indices []int
	for _, c := range cols {
		switch p := c.(type) {
		case *ast.Star:
			for i := range table.columns {
				indices = append(indices, i)
			}
		case *ast.ColumnRef:
			i, err := table.columnIndex(p.Name)
			if err != nil {
				return nil, err
			}
			indices = append(indices, i)
		default:
			return nil, tqerr.Newf(tqerr.Unsupported, "unsupported projection in column list")
		}
	}
	return indices, nil
}

func runCount(cursor *pager.Cursor, table tableInfo, where ast.Expression, out io.Writer, log *logrus.Entry) error {
	count := 0
	for {
		entry, ok, err := cursor.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}

		values, err := materialize(table, entry)
		if err != nil {
			return err
		}
		matched, err := evalWhere(where, table, values)
		if err != nil {
			return err
		}
		if matched {
			count++
		}
	}

	log.WithField("count", count).Debug("query complete")
	_, err := fmt.Fprintln(out, count)
	return tqerr.New(tqerr.IO, err)
}

func runAvg(cursor *pager.Cursor, table tableInfo, column string, where ast.Expression, out io.Writer, log *logrus.Entry) error {
	idx, err := table.columnIndex(column)
	if err != nil {
		return err
	}

	var sum float64
	var count int

	for {
		entry, ok, err := cursor.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}

		values, err := materialize(table, entry)
		if err != nil {
			return err
		}
		matched, err := evalWhere(where, table, values)
		if err != nil {
			return err
		}
		if !matched {
			continue
		}

		v := values[idx]
		switch v.Kind {
		case record.KindInteger:
			sum += float64(v.Int)
			count++
		case record.KindFloat:
			sum += v.Flt
			count++
		case record.KindText:
			f, err := strconv.ParseFloat(v.Str, 64)
			if err != nil {
				return tqerr.New(tqerr.Unsupported, fmt.Errorf("AVG over column %s: value %q does not parse as a number: %w", column, v.Str, err))
			}
			sum += f
			count++
		case record.KindNull:
			// NULLs don't contribute to either sum or count.
		default:
			return tqerr.Newf(tqerr.Unsupported, "AVG over non-numeric column %s", column)
		}
	}

	log.WithField("count", count).Debug("query complete")

	if count == 0 {
		_, err := fmt.Fprintln(out, "NaN")
		return tqerr.New(tqerr.IO, err)
	}
	_, err = fmt.Fprintln(out, strconv.FormatFloat(sum/float64(count), 'g', -1, 64))
	return tqerr.New(tqerr.IO, err)
}

func formatValue(v record.Value) string {
	switch v.Kind {
	case record.KindNull:
		return ""
	case record.KindInteger:
		return strconv.FormatInt(v.Int, 10)
	case record.KindFloat:
		return strconv.FormatFloat(v.Flt, 'g', -1, 64)
	case record.KindText:
		return v.Str
	case record.KindBlob:
		return string(v.Blob)
	default:
		return ""
	}
}
