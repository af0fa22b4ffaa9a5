// Package condition defines the backend-agnostic query description consumed
// by the compilers: condition trees over filter predicates, sort
// specifications, field projections and pagination windows.
package condition

// Aggregator is the logical combinator joining sibling conditions of a branch.
type Aggregator string

const (
	AggregatorAnd Aggregator = "and"
	AggregatorOr  Aggregator = "or"
)

// IsValid reports whether the aggregator is one of the supported combinators.
func (a Aggregator) IsValid() bool {
	return a == AggregatorAnd || a == AggregatorOr
}

// Operator is the closed enumeration of filter predicate operators.
type Operator string

const (
	OperatorEqual       Operator = "equal"
	OperatorNotEqual    Operator = "not_equal"
	OperatorGreaterThan Operator = "greater_than"
	OperatorLessThan    Operator = "less_than"
	OperatorIn          Operator = "in"
	OperatorNotIn       Operator = "not_in"
	OperatorIncludesAll Operator = "includes_all"
	OperatorPresent     Operator = "present"
	OperatorMissing     Operator = "missing"
	OperatorLike        Operator = "like"
	OperatorILike       Operator = "ilike"
	OperatorContains    Operator = "contains"
	OperatorNotContains Operator = "not_contains"
)

// supportedOperators is the set of all operators the compilers understand.
var supportedOperators = map[Operator]struct{}{
	OperatorEqual:       {},
	OperatorNotEqual:    {},
	OperatorGreaterThan: {},
	OperatorLessThan:    {},
	OperatorIn:          {},
	OperatorNotIn:       {},
	OperatorIncludesAll: {},
	OperatorPresent:     {},
	OperatorMissing:     {},
	OperatorLike:        {},
	OperatorILike:       {},
	OperatorContains:    {},
	OperatorNotContains: {},
}

// IsSupported checks if an operator belongs to the fixed enumeration.
func (o Operator) IsSupported() bool {
	_, ok := supportedOperators[o]
	return ok
}

// SupportedOperators returns the set of supported operators, useful for
// validation and exhaustive tests.
func SupportedOperators() map[Operator]struct{} {
	return supportedOperators
}

// Value is the value side of a filter predicate: a scalar (string, number,
// nil) or an ordered list of scalars, depending on operator arity.
type Value = any

// Leaf is a single filter predicate. Field is a colon-delimited path whose
// last segment names the attribute and whose prior segments name relations
// traversed in order.
type Leaf struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    Value    `json:"value,omitempty"`
}

// Branch combines an ordered sequence of sub-trees with a logical aggregator.
type Branch struct {
	Aggregator Aggregator `json:"aggregator"`
	Conditions []Tree     `json:"conditions"`
}

// Tree is a union of a leaf predicate and a branch. A tree is immutable once
// constructed; compilation never mutates it.
type Tree struct {
	Leaf   *Leaf   `json:",omitempty"`
	Branch *Branch `json:",omitempty"`
}

// NewLeaf builds a leaf condition tree.
func NewLeaf(field string, operator Operator, value Value) Tree {
	return Tree{Leaf: &Leaf{Field: field, Operator: operator, Value: value}}
}

// And combines conditions so that all of them must hold. No conditions is a
// valid, neutral branch.
func And(conditions ...Tree) Tree {
	if conditions == nil {
		conditions = []Tree{}
	}
	return Tree{Branch: &Branch{Aggregator: AggregatorAnd, Conditions: conditions}}
}

// Or combines conditions so that at least one must hold. No conditions is a
// valid, neutral branch.
func Or(conditions ...Tree) Tree {
	if conditions == nil {
		conditions = []Tree{}
	}
	return Tree{Branch: &Branch{Aggregator: AggregatorOr, Conditions: conditions}}
}

// SortClause orders results on one field path.
type SortClause struct {
	Field     string `json:"field"`
	Ascending bool   `json:"ascending"`
}

// Sort is an ordered sequence of sort clauses; sequence order is the
// tie-break precedence.
type Sort []SortClause

// Inverse returns the sort with every clause direction flipped.
func (s Sort) Inverse() Sort {
	inverted := make(Sort, len(s))
	for i, clause := range s {
		inverted[i] = SortClause{Field: clause.Field, Ascending: !clause.Ascending}
	}
	return inverted
}

// Projection is the set of field paths a caller wants fetched. Paths may
// reference relations using the colon delimiter.
type Projection []string

// Contains reports whether the projection already names the given path.
func (p Projection) Contains(path string) bool {
	for _, field := range p {
		if field == path {
			return true
		}
	}
	return false
}

// Page is an offset-based pagination window.
type Page struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// Filter bundles the parts of a list request the compilers act on.
type Filter struct {
	Tree *Tree `json:",omitempty"`
	Sort Sort  `json:",omitempty"`
	Page *Page `json:",omitempty"`
}
