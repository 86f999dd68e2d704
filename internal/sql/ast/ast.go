// Package ast defines the parsed SQL statement and expression tree,
// grounded on tinydb's tsql/ast marker-method idiom (iStatement/iExpression)
// and narrowed to this engine's grammar: SELECT projection/WHERE and
// CREATE TABLE column definitions.
package ast

import (
	"fmt"

	"github.com/joeandaverde/tinyquery/internal/sql/lexer"
)

// Statement is any top-level parsed SQL statement.
type Statement interface {
	iStatement()
}

// Projection is one item of a SELECT's column list.
type Projection interface {
	iProjection()
}

// Star represents "*" in a SELECT's column list.
type Star struct{}

// ColumnRef references a single column by name.
type ColumnRef struct {
	Name string
}

// CountStar represents COUNT(*) or COUNT(col); the argument's identity
// doesn't change the result, since only the row count is reported.
type CountStar struct{}

// AvgColumn represents AVG(col): the arithmetic mean of a numeric column.
type AvgColumn struct {
	Column string
}

func (*Star) iProjection()       {}
func (*ColumnRef) iProjection()  {}
func (*CountStar) iProjection()  {}
func (*AvgColumn) iProjection()  {}

// SelectStatement is a parsed SELECT.
type SelectStatement struct {
	Columns []Projection
	From    string
	Where   Expression
}

func (s *SelectStatement) String() string {
	return fmt.Sprintf("SELECT %v FROM %s WHERE %v", s.Columns, s.From, s.Where)
}

func (*SelectStatement) iStatement() {}

// ColumnDef is one column definition inside CREATE TABLE.
type ColumnDef struct {
	Name       string
	Type       string
	PrimaryKey bool
}

// CreateTableStatement is a parsed CREATE TABLE.
type CreateTableStatement struct {
	TableName string
	Columns   []ColumnDef
}

func (*CreateTableStatement) iStatement() {}

// Expression is any node of a WHERE clause's expression tree.
type Expression interface {
	iExpression()
}

// BinaryOperation is a two-operand expression, e.g. a comparison or a
// boolean AND/OR.
type BinaryOperation struct {
	Left     Expression
	Right    Expression
	Operator string
}

// Ident references a column by name within an expression.
type Ident struct {
	Value string
}

// BasicLiteral is a string or numeric literal within an expression.
type BasicLiteral struct {
	Value string
	Kind  lexer.Kind
}

func (*BinaryOperation) iExpression() {}
func (*Ident) iExpression()           {}
func (*BasicLiteral) iExpression()    {}

func (o *BinaryOperation) String() string {
	return fmt.Sprintf("(%v %s %v)", o.Left, o.Operator, o.Right)
}

func (i *Ident) String() string { return i.Value }

func (b *BasicLiteral) String() string { return b.Value }
