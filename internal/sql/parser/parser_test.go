package parser_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joeandaverde/tinyquery/internal/sql/ast"
	"github.com/joeandaverde/tinyquery/internal/sql/parser"
)

func TestParse_SelectStar(t *testing.T) {
	r := require.New(t)

	stmt, err := parser.Parse("SELECT * FROM apples")
	r.NoError(err)

	sel, ok := stmt.(*ast.SelectStatement)
	r.True(ok)
	r.Equal("apples", sel.From)
	r.Len(sel.Columns, 1)
	_, ok = sel.Columns[0].(*ast.Star)
	r.True(ok)
	r.Nil(sel.Where)
}

func TestParse_SelectColumnsWithWhere(t *testing.T) {
	r := require.New(t)

	stmt, err := parser.Parse("SELECT id, color FROM apples WHERE color = 'Yellow'")
	r.NoError(err)

	sel := stmt.(*ast.SelectStatement)
	r.Len(sel.Columns, 2)
	r.Equal("id", sel.Columns[0].(*ast.ColumnRef).Name)
	r.Equal("color", sel.Columns[1].(*ast.ColumnRef).Name)

	where := sel.Where.(*ast.BinaryOperation)
	r.Equal("=", where.Operator)
	r.Equal("color", where.Left.(*ast.Ident).Value)
	r.Equal("Yellow", where.Right.(*ast.BasicLiteral).Value)
}

func TestParse_SelectWithAndOr(t *testing.T) {
	r := require.New(t)

	stmt, err := parser.Parse("SELECT name FROM apples WHERE id >= 3 AND color != 'Red' OR id = 1")
	r.NoError(err)

	sel := stmt.(*ast.SelectStatement)
	or := sel.Where.(*ast.BinaryOperation)
	r.Equal("OR", or.Operator)
	and := or.Left.(*ast.BinaryOperation)
	r.Equal("AND", and.Operator)
}

func TestParse_CountAndAvg(t *testing.T) {
	r := require.New(t)

	stmt, err := parser.Parse("SELECT COUNT(*) FROM apples")
	r.NoError(err)
	sel := stmt.(*ast.SelectStatement)
	_, ok := sel.Columns[0].(*ast.CountStar)
	r.True(ok)

	stmt, err = parser.Parse("SELECT AVG(price) FROM apples")
	r.NoError(err)
	sel = stmt.(*ast.SelectStatement)
	avg, ok := sel.Columns[0].(*ast.AvgColumn)
	r.True(ok)
	r.Equal("price", avg.Column)
}

func TestParse_CreateTable(t *testing.T) {
	r := require.New(t)

	stmt, err := parser.Parse("CREATE TABLE apples (id integer primary key, name text, color text)")
	r.NoError(err)

	create := stmt.(*ast.CreateTableStatement)
	r.Equal("apples", create.TableName)
	r.Len(create.Columns, 3)
	r.Equal("id", create.Columns[0].Name)
	r.Equal("INTEGER", create.Columns[0].Type)
	r.True(create.Columns[0].PrimaryKey)
	r.False(create.Columns[1].PrimaryKey)
}

func TestParse_CreateTableCanonicalizesTypesAndConstraints(t *testing.T) {
	r := require.New(t)

	stmt, err := parser.Parse("CREATE TABLE widgets (id INT PRIMARY KEY AUTOINCREMENT, name VARCHAR NOT NULL, price DOUBLE, tag, flag BOOLEAN UNIQUE)")
	r.NoError(err)

	create := stmt.(*ast.CreateTableStatement)
	r.Len(create.Columns, 5)

	r.Equal("id", create.Columns[0].Name)
	r.Equal("INTEGER", create.Columns[0].Type)
	r.True(create.Columns[0].PrimaryKey)

	r.Equal("name", create.Columns[1].Name)
	r.Equal("TEXT", create.Columns[1].Type)
	r.False(create.Columns[1].PrimaryKey)

	r.Equal("price", create.Columns[2].Name)
	r.Equal("REAL", create.Columns[2].Type)

	// untyped column defaults to TEXT.
	r.Equal("tag", create.Columns[3].Name)
	r.Equal("TEXT", create.Columns[3].Type)

	r.Equal("flag", create.Columns[4].Name)
	r.Equal("NUMERIC", create.Columns[4].Type)
	r.False(create.Columns[4].PrimaryKey)
}

func TestParse_RejectsUnsupportedStatement(t *testing.T) {
	r := require.New(t)

	_, err := parser.Parse("DELETE FROM apples")
	r.Error(err)
}

func TestParse_RejectsMalformedSelect(t *testing.T) {
	r := require.New(t)

	_, err := parser.Parse("SELECT FROM apples")
	r.Error(err)
}
