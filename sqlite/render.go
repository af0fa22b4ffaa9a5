// Package sqlite binds the compiled query constructs to SQLite: it renders
// filter expressions, orderings and pagination to SQL with bound parameters,
// and implements the collection list surface over database/sql.
package sqlite

import (
	"fmt"
	"strings"

	"github.com/asaidimu/go-trellis/core/compile"
	"github.com/asaidimu/go-trellis/core/condition"
)

// quoteIdentifier properly quotes an identifier for SQLite.
func quoteIdentifier(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// renderAttr renders an attribute reference, including relation
// qualification, function wrapping and forced collation.
func renderAttr(attr compile.Attr) string {
	parts := make([]string, 0, len(attr.Relations)+1)
	for _, relation := range attr.Relations {
		parts = append(parts, quoteIdentifier(relation))
	}
	parts = append(parts, quoteIdentifier(attr.Column))
	rendered := strings.Join(parts, ".")

	if attr.Fn != "" {
		rendered = fmt.Sprintf("%s(%s)", attr.Fn, rendered)
	}
	if attr.Collation != "" {
		rendered = fmt.Sprintf("%s COLLATE %s", rendered, attr.Collation)
	}
	return rendered
}

// RenderExpr renders a compiled filter expression into a SQL fragment,
// appending bound values to params. The empty filter renders to an empty
// string.
func RenderExpr(expr compile.Expr, params *[]any) (string, error) {
	if expr.IsEmpty() {
		return "", nil
	}
	if expr.Logical != nil {
		return renderLogical(expr.Logical, params)
	}
	return renderComparison(expr.Comparison, params)
}

func renderLogical(logical *compile.Logical, params *[]any) (string, error) {
	var clauses []string
	var pending []any
	for _, item := range logical.Items {
		var local []any
		clause, err := RenderExpr(item, &local)
		if err != nil {
			return "", err
		}
		if clause == "" {
			// A match-everything child absorbs an Or; under And it is the
			// neutral element and drops out. Parameters bound for absorbed
			// siblings must not leak into the statement.
			if logical.Aggregator == condition.AggregatorOr {
				return "", nil
			}
			continue
		}
		clauses = append(clauses, clause)
		pending = append(pending, local...)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	*params = append(*params, pending...)
	if len(clauses) == 1 {
		return clauses[0], nil
	}
	op := strings.ToUpper(string(logical.Aggregator))
	return fmt.Sprintf("(%s)", strings.Join(clauses, " "+op+" ")), nil
}

func renderComparison(cmp *compile.Comparison, params *[]any) (string, error) {
	accessor := renderAttr(cmp.Attr)

	switch cmp.Comparator {
	case compile.ComparatorEqual:
		*params = append(*params, cmp.Value)
		return fmt.Sprintf("%s = ?", accessor), nil
	case compile.ComparatorNotEqual:
		*params = append(*params, cmp.Value)
		return fmt.Sprintf("%s != ?", accessor), nil
	case compile.ComparatorGreaterThan:
		*params = append(*params, cmp.Value)
		return fmt.Sprintf("%s > ?", accessor), nil
	case compile.ComparatorLessThan:
		*params = append(*params, cmp.Value)
		return fmt.Sprintf("%s < ?", accessor), nil
	case compile.ComparatorIs:
		return fmt.Sprintf("%s IS NULL", accessor), nil
	case compile.ComparatorIsNot:
		return fmt.Sprintf("%s IS NOT NULL", accessor), nil
	case compile.ComparatorIn, compile.ComparatorNotIn:
		values, ok := cmp.Value.([]any)
		if !ok {
			return "", fmt.Errorf("membership comparator requires a value list, got %T", cmp.Value)
		}
		if len(values) == 0 {
			// A membership test over an empty list never matches; its
			// negation always matches.
			if cmp.Comparator == compile.ComparatorIn {
				return "1=0", nil
			}
			return "1=1", nil
		}
		placeholders := strings.Repeat("?,", len(values)-1) + "?"
		*params = append(*params, values...)
		op := "IN"
		if cmp.Comparator == compile.ComparatorNotIn {
			op = "NOT IN"
		}
		return fmt.Sprintf("%s %s (%s)", accessor, op, placeholders), nil
	case compile.ComparatorLike, compile.ComparatorILike:
		// SQLite LIKE is case-insensitive by default, which is exactly the
		// ILike contract; case-sensitive matches arrive with a collation
		// already forced on the attribute.
		*params = append(*params, cmp.Value)
		return fmt.Sprintf("%s LIKE ?", accessor), nil
	case compile.ComparatorNotLike, compile.ComparatorNotILike:
		*params = append(*params, cmp.Value)
		return fmt.Sprintf("%s NOT LIKE ?", accessor), nil
	case compile.ComparatorNotGlob:
		*params = append(*params, cmp.Value)
		return fmt.Sprintf("%s NOT GLOB ?", accessor), nil
	case compile.ComparatorIncludes:
		values, ok := cmp.Value.([]any)
		if !ok {
			return "", fmt.Errorf("includes comparator requires a value list, got %T", cmp.Value)
		}
		if len(values) == 0 {
			return "1=1", nil
		}
		placeholders := strings.Repeat("?,", len(values)-1) + "?"
		*params = append(*params, values...)
		return fmt.Sprintf(
			"(SELECT COUNT(DISTINCT value) FROM json_each(%s) WHERE value IN (%s)) = %d",
			accessor, placeholders, len(values)), nil
	default:
		return "", fmt.Errorf("unsupported comparator for SQLite rendering: %s", cmp.Comparator)
	}
}

// RenderSelect builds a complete SELECT statement from rendered parts.
// selectList entries are already-rendered column expressions.
func RenderSelect(table string, selectList []string, where compile.Expr, orders []compile.OrderClause, page *condition.Page) (string, []any, error) {
	var params []any

	whereSQL, err := RenderExpr(where, &params)
	if err != nil {
		return "", nil, fmt.Errorf("error building WHERE clause: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("SELECT %s FROM %s", strings.Join(selectList, ", "), quoteIdentifier(table)))
	if whereSQL != "" {
		sb.WriteString(" WHERE " + whereSQL)
	}
	if len(orders) > 0 {
		clauses := make([]string, len(orders))
		for i, order := range orders {
			clauses[i] = fmt.Sprintf("%s %s", renderAttr(order.Attr), order.Direction)
		}
		sb.WriteString(" ORDER BY " + strings.Join(clauses, ", "))
	}
	if page != nil {
		limit := page.Limit
		if limit <= 0 {
			// SQLite requires a LIMIT before OFFSET; -1 means unbounded.
			limit = -1
		}
		if limit > -1 || page.Offset > 0 {
			sb.WriteString(fmt.Sprintf(" LIMIT %d", limit))
		}
		if page.Offset > 0 {
			sb.WriteString(fmt.Sprintf(" OFFSET %d", page.Offset))
		}
	}

	return sb.String() + ";", params, nil
}
