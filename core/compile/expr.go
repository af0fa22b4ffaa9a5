// Package compile translates backend-agnostic condition trees, sorts and
// projections into the operator vocabulary of a concrete relational-query
// layer. Dialect quirks (case sensitivity of LIKE, null handling in list
// membership, per-dialect function wrapping) are resolved here, not deferred
// to the query layer.
package compile

import "github.com/asaidimu/go-trellis/core/condition"

// Dialect identifies the comparison-engine variant whose operator quirks must
// be reproduced.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectMySQL    Dialect = "mysql"
	DialectMariaDB  Dialect = "mariadb"
	DialectMSSQL    Dialect = "mssql"
	DialectSQLite   Dialect = "sqlite"
)

// Comparator is a comparison combinator in the target layer's vocabulary.
type Comparator string

const (
	ComparatorEqual       Comparator = "eq"
	ComparatorNotEqual    Comparator = "ne"
	ComparatorGreaterThan Comparator = "gt"
	ComparatorLessThan    Comparator = "lt"
	// ComparatorIs / ComparatorIsNot are the null-safe tests (IS NULL /
	// IS NOT NULL); their value is always nil.
	ComparatorIs    Comparator = "is"
	ComparatorIsNot Comparator = "isNot"
	ComparatorIn    Comparator = "in"
	ComparatorNotIn Comparator = "notIn"
	// Pattern matches. ILike variants only appear for dialects with a native
	// case-insensitive operator.
	ComparatorLike     Comparator = "like"
	ComparatorNotLike  Comparator = "notLike"
	ComparatorILike    Comparator = "iLike"
	ComparatorNotILike Comparator = "notILike"
	// ComparatorNotGlob is the negated-glob match required by the SQLite
	// family for substring exclusion.
	ComparatorNotGlob Comparator = "notGlob"
	// ComparatorIncludes tests that a stored collection contains every listed
	// element.
	ComparatorIncludes Comparator = "includes"
)

// Attr is a reference to a physical column, possibly qualified through joined
// relations and possibly wrapped in a dialect function or forced collation.
type Attr struct {
	// Relations are the relation hops scoping the column, in traversal order.
	// Every hop must already be declared as included/joined in the same query.
	Relations []string
	// Column is the physical storage name of the column.
	Column string
	// Fn wraps the attribute in a function call, e.g. BINARY or LOWER.
	Fn string
	// Collation forces a collation on the attribute, e.g. COLLATE BINARY.
	Collation string
}

// Comparison is one compiled predicate.
type Comparison struct {
	Attr       Attr
	Comparator Comparator
	Value      any
}

// Logical combines compiled expressions with an aggregator, preserving input
// order.
type Logical struct {
	Aggregator condition.Aggregator
	Items      []Expr
}

// Expr is a compiled filter expression: a comparison, a logical combination,
// or the zero value, which is the empty filter matching everything.
type Expr struct {
	Comparison *Comparison
	Logical    *Logical
}

// IsEmpty reports whether the expression is the empty filter.
func (e Expr) IsEmpty() bool {
	return e.Comparison == nil && e.Logical == nil
}

// Cmp builds a comparison expression.
func Cmp(attr Attr, comparator Comparator, value any) Expr {
	return Expr{Comparison: &Comparison{Attr: attr, Comparator: comparator, Value: value}}
}

// AllOf combines expressions with the And aggregator.
func AllOf(items ...Expr) Expr {
	return Expr{Logical: &Logical{Aggregator: condition.AggregatorAnd, Items: items}}
}

// AnyOf combines expressions with the Or aggregator.
func AnyOf(items ...Expr) Expr {
	return Expr{Logical: &Logical{Aggregator: condition.AggregatorOr, Items: items}}
}

// MatchNone is the well-formed empty-match expression: a membership test over
// an empty list, which every renderer compiles to a constant-false predicate.
func MatchNone() Expr {
	return Cmp(Attr{}, ComparatorIn, []any{})
}

// OrderClause is one compiled ordering term.
type OrderClause struct {
	Attr      Attr
	Direction string // "ASC" or "DESC"
}

// IncludeNode describes one relation hop of a fetch shape: the association to
// join, the attributes selected on it, and nested includes below it.
type IncludeNode struct {
	Association string
	Attributes  []string
	Include     []IncludeNode
}
