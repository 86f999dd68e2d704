package query

import (
	"strconv"
	"strings"

	"github.com/joeandaverde/tinyquery/internal/record"
	"github.com/joeandaverde/tinyquery/internal/sql/ast"
	"github.com/joeandaverde/tinyquery/internal/sql/lexer"
	"github.com/joeandaverde/tinyquery/internal/tqerr"
)

// evalWhere evaluates a WHERE expression tree against one row's decoded
// values. A nil expression (no WHERE clause) matches every row.
func evalWhere(expr ast.Expression, table tableInfo, values []record.Value) (bool, error) {
	if expr == nil {
		return true, nil
	}

	op, ok := expr.(*ast.BinaryOperation)
	if !ok {
		return false, tqerr.Newf(tqerr.Unsupported, "unsupported WHERE expression")
	}

	switch op.Operator {
	case "AND":
		left, err := evalWhere(op.Left, table, values)
		if err != nil || !left {
			return false, err
		}
		return evalWhere(op.Right, table, values)
	case "OR":
		left, err := evalWhere(op.Left, table, values)
		if err != nil {
			return false, err
		}
		if left {
			return true, nil
		}
		return evalWhere(op.Right, table, values)
	default:
		left, err := resolveOperand(op.Left, table, values)
		if err != nil {
			return false, err
		}
		right, err := resolveOperand(op.Right, table, values)
		if err != nil {
			return false, err
		}
		return compareValues(op.Operator, left, right)
	}
}

func resolveOperand(expr ast.Expression, table tableInfo, values []record.Value) (record.Value, error) {
	switch e := expr.(type) {
	case *ast.Ident:
		idx, err := table.columnIndex(e.Value)
		if err != nil {
			return record.Value{}, err
		}
		return values[idx], nil
	case *ast.BasicLiteral:
		return literalValue(e), nil
	default:
		return record.Value{}, tqerr.Newf(tqerr.Unsupported, "unsupported WHERE operand")
	}
}

func literalValue(lit *ast.BasicLiteral) record.Value {
	if lit.Kind == lexer.TokenNumber {
		if i, err := strconv.ParseInt(lit.Value, 10, 64); err == nil {
			return record.Integer(i)
		}
		if f, err := strconv.ParseFloat(lit.Value, 64); err == nil {
			return record.Float(f)
		}
	}
	return record.Text(lit.Value)
}

func isNumeric(v record.Value) bool {
	return v.Kind == record.KindInteger || v.Kind == record.KindFloat
}

func numeric(v record.Value) float64 {
	if v.Kind == record.KindInteger {
		return float64(v.Int)
	}
	return v.Flt
}

// compareValues implements spec.md's cross-type comparison rule: values
// of mismatched dynamic type (after numeric unification of integer and
// float) are never equal and never satisfy any ordering; NULL never
// compares true to anything, including another NULL.
func compareValues(op string, a, b record.Value) (bool, error) {
	if a.Kind == record.KindNull || b.Kind == record.KindNull {
		return false, nil
	}

	switch {
	case isNumeric(a) && isNumeric(b):
		return compareOrdered(op, numeric(a), numeric(b))
	case a.Kind == record.KindText && b.Kind == record.KindText:
		return compareOrdered(op, strings.Compare(a.Str, b.Str), 0)
	case a.Kind == record.KindBlob && b.Kind == record.KindBlob:
		return compareOrdered(op, strings.Compare(string(a.Blob), string(b.Blob)), 0)
	default:
		// Mismatched tags: equal to nothing, ordered against nothing.
		return false, nil
	}
}

type ordered interface {
	~int | ~float64
}

func compareOrdered[T ordered](op string, a, b T) (bool, error) {
	switch op {
	case "=":
		return a == b, nil
	case "!=":
		return a != b, nil
	case "<":
		return a < b, nil
	case "<=":
		return a <= b, nil
	case ">":
		return a > b, nil
	case ">=":
		return a >= b, nil
	default:
		return false, tqerr.Newf(tqerr.Unsupported, "unsupported comparison operator %s", op)
	}
}
