// Package parser implements a recursive-descent parser over the token
// stream produced by internal/sql/lexer, grounded on tinydb's
// tsql/parser combinator style but written as plain recursive-descent
// functions since this grammar is small and fixed (SELECT projection
// and WHERE, CREATE TABLE column definitions).
package parser

import (
	"fmt"
	"strings"

	"github.com/joeandaverde/tinyquery/internal/sql/ast"
	"github.com/joeandaverde/tinyquery/internal/sql/lexer"
	"github.com/joeandaverde/tinyquery/internal/tqerr"
)

// Parse tokenizes and parses a single SQL statement.
func Parse(input string) (ast.Statement, error) {
	p, err := newParser(input)
	if err != nil {
		return nil, err
	}
	return p.parseStatement()
}

type parser struct {
	tokens []lexer.Token
	pos    int
}

func newParser(input string) (*parser, error) {
	l := lexer.New(input)
	var tokens []lexer.Token
	for tok := range l.Exec() {
		if tok.Kind == lexer.TokenError {
			return nil, tqerr.AtPos(tok.Position, fmt.Errorf("%s", tok.Text))
		}
		if tok.Kind == lexer.TokenEOF {
			tokens = append(tokens, tok)
			break
		}
		tokens = append(tokens, tok)
	}
	return &parser{tokens: tokens}, nil
}

func (p *parser) peek() lexer.Token {
	return p.tokens[p.pos]
}

func (p *parser) next() lexer.Token {
	tok := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *parser) expect(kind lexer.Kind) (lexer.Token, error) {
	tok := p.peek()
	if tok.Kind != kind {
		return tok, tqerr.AtPos(tok.Position, fmt.Errorf("expected %s, got %s", kind, tok.Kind))
	}
	return p.next(), nil
}

func (p *parser) parseStatement() (ast.Statement, error) {
	switch p.peek().Kind {
	case lexer.TokenSelect:
		return p.parseSelect()
	case lexer.TokenCreate:
		return p.parseCreateTable()
	default:
		tok := p.peek()
		return nil, tqerr.AtPos(tok.Position, fmt.Errorf("unsupported statement starting with %s", tok.Kind))
	}
}

func (p *parser) parseSelect() (*ast.SelectStatement, error) {
	if _, err := p.expect(lexer.TokenSelect); err != nil {
		return nil, err
	}

	cols, err := p.parseProjectionList()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(lexer.TokenFrom); err != nil {
		return nil, err
	}
	table, err := p.expect(lexer.TokenIdentifier)
	if err != nil {
		return nil, err
	}

	stmt := &ast.SelectStatement{Columns: cols, From: table.Text}

	if p.peek().Kind == lexer.TokenWhere {
		p.next()
		where, err := p.parseOrExpr()
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}

	return stmt, nil
}

func (p *parser) parseProjectionList() ([]ast.Projection, error) {
	var cols []ast.Projection
	for {
		col, err := p.parseProjection()
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)

		if p.peek().Kind != lexer.TokenComma {
			break
		}
		p.next()
	}
	return cols, nil
}

func (p *parser) parseProjection() (ast.Projection, error) {
	tok := p.peek()

	switch tok.Kind {
	case lexer.TokenAsterisk:
		p.next()
		return &ast.Star{}, nil
	case lexer.TokenCount:
		p.next()
		if _, err := p.expect(lexer.TokenOpenParen); err != nil {
			return nil, err
		}
		// COUNT(*) and COUNT(col) both just count rows; skip the argument.
		p.next()
		if _, err := p.expect(lexer.TokenCloseParen); err != nil {
			return nil, err
		}
		return &ast.CountStar{}, nil
	case lexer.TokenAvg:
		p.next()
		if _, err := p.expect(lexer.TokenOpenParen); err != nil {
			return nil, err
		}
		col, err := p.expect(lexer.TokenIdentifier)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TokenCloseParen); err != nil {
			return nil, err
		}
		return &ast.AvgColumn{Column: col.Text}, nil
	case lexer.TokenIdentifier:
		p.next()
		return &ast.ColumnRef{Name: tok.Text}, nil
	default:
		return nil, tqerr.AtPos(tok.Position, fmt.Errorf("expected projection, got %s", tok.Kind))
	}
}

func (p *parser) parseOrExpr() (ast.Expression, error) {
	left, err := p.parseAndExpr()
	if err != nil {
		return nil, err
	}
	for p.peek().Kind == lexer.TokenOr {
		p.next()
		right, err := p.parseAndExpr()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOperation{Left: left, Right: right, Operator: "OR"}
	}
	return left, nil
}

func (p *parser) parseAndExpr() (ast.Expression, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.peek().Kind == lexer.TokenAnd {
		p.next()
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOperation{Left: left, Right: right, Operator: "AND"}
	}
	return left, nil
}

var comparisonOps = map[lexer.Kind]string{
	lexer.TokenEquals: "=",
	lexer.TokenNotEq:  "!=",
	lexer.TokenLte:    "<=",
	lexer.TokenGte:    ">=",
	lexer.TokenLt:     "<",
	lexer.TokenGt:     ">",
}

func (p *parser) parseComparison() (ast.Expression, error) {
	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}

	tok := p.peek()
	op, ok := comparisonOps[tok.Kind]
	if !ok {
		return nil, tqerr.AtPos(tok.Position, fmt.Errorf("expected comparison operator, got %s", tok.Kind))
	}
	p.next()

	right, err := p.parseOperand()
	if err != nil {
		return nil, err
	}

	return &ast.BinaryOperation{Left: left, Right: right, Operator: op}, nil
}

func (p *parser) parseOperand() (ast.Expression, error) {
	tok := p.peek()
	switch tok.Kind {
	case lexer.TokenIdentifier:
		p.next()
		return &ast.Ident{Value: tok.Text}, nil
	case lexer.TokenString:
		p.next()
		return &ast.BasicLiteral{Value: strings.Trim(tok.Text, "'"), Kind: tok.Kind}, nil
	case lexer.TokenNumber:
		p.next()
		return &ast.BasicLiteral{Value: tok.Text, Kind: tok.Kind}, nil
	default:
		return nil, tqerr.AtPos(tok.Position, fmt.Errorf("expected identifier or literal, got %s", tok.Kind))
	}
}

func (p *parser) parseCreateTable() (*ast.CreateTableStatement, error) {
	if _, err := p.expect(lexer.TokenCreate); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenTable); err != nil {
		return nil, err
	}
	name, err := p.expect(lexer.TokenIdentifier)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenOpenParen); err != nil {
		return nil, err
	}

	stmt := &ast.CreateTableStatement{TableName: name.Text}
	for {
		col, err := p.parseColumnDef()
		if err != nil {
			return nil, err
		}
		stmt.Columns = append(stmt.Columns, col)

		if p.peek().Kind != lexer.TokenComma {
			break
		}
		p.next()
	}

	if _, err := p.expect(lexer.TokenCloseParen); err != nil {
		return nil, err
	}

	return stmt, nil
}

// sqlTypes maps the grammar's SqlType tokens to the semantic type set
// (Integer/Text/Real/Numeric/Blob). A column with no declared type
// defaults to Text.
var sqlTypes = map[string]string{
	"INTEGER": "INTEGER",
	"INT":     "INTEGER",
	"VARCHAR": "TEXT",
	"TEXT":    "TEXT",
	"DOUBLE":  "REAL",
	"REAL":    "REAL",
	"NUMERIC": "NUMERIC",
	"BOOLEAN": "NUMERIC",
	"DATE":    "NUMERIC",
	"BLOB":    "BLOB",
}

func (p *parser) parseColumnDef() (ast.ColumnDef, error) {
	name, err := p.expect(lexer.TokenIdentifier)
	if err != nil {
		return ast.ColumnDef{}, err
	}

	col := ast.ColumnDef{Name: name.Text, Type: "TEXT"}

	if tok := p.peek(); tok.Kind == lexer.TokenIdentifier {
		if mapped, ok := sqlTypes[strings.ToUpper(tok.Text)]; ok {
			p.next()
			col.Type = mapped
		}
	}

	// Constraint*: PRIMARY KEY is recognized and recorded; everything
	// else (NOT NULL, AUTOINCREMENT, UNIQUE, ...) is an anonymous
	// constraint, consumed and discarded token by token.
	for {
		tok := p.peek()
		if tok.Kind == lexer.TokenComma || tok.Kind == lexer.TokenCloseParen {
			break
		}
		if tok.Kind == lexer.TokenEOF {
			return ast.ColumnDef{}, tqerr.AtPos(tok.Position, fmt.Errorf("unexpected end of input in column definition"))
		}
		if tok.Kind == lexer.TokenPrimary {
			p.next()
			if _, err := p.expect(lexer.TokenKey); err != nil {
				return ast.ColumnDef{}, err
			}
			col.PrimaryKey = true
			continue
		}
		p.next()
	}

	return col, nil
}
