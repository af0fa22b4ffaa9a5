package compile

import (
	"fmt"
	"strings"

	"github.com/asaidimu/go-trellis/core/condition"
)

// translateFunc maps one (attribute, value) pair to a compiled expression for
// a given dialect.
type translateFunc func(attr Attr, value any, dialect Dialect) (Expr, error)

// operatorTable is the dispatch table over the fixed operator enumeration.
// Dialect variance is resolved inside the entries via the variant tables
// below, so the whole matrix stays auditable in one place.
var operatorTable = map[condition.Operator]translateFunc{
	condition.OperatorEqual:       translateEqual,
	condition.OperatorNotEqual:    translateNotEqual,
	condition.OperatorGreaterThan: translateGreaterThan,
	condition.OperatorLessThan:    translateLessThan,
	condition.OperatorIn:          translateIn,
	condition.OperatorNotIn:       translateNotIn,
	condition.OperatorIncludesAll: translateIncludesAll,
	condition.OperatorPresent:     translatePresent,
	condition.OperatorMissing:     translateMissing,
	condition.OperatorLike:        translateLike,
	condition.OperatorILike:       translateILike,
	condition.OperatorContains:    translateContains,
	condition.OperatorNotContains: translateNotContains,
}

// TranslateOperator compiles one (attribute, operator, value) predicate into
// the target layer's vocabulary for the given dialect.
func TranslateOperator(attr Attr, operator condition.Operator, value any, dialect Dialect) (Expr, error) {
	translate, ok := operatorTable[operator]
	if !ok {
		return Expr{}, condition.UnsupportedOperatorError{Operator: operator}
	}
	return translate(attr, value, dialect)
}

func translateEqual(attr Attr, value any, _ Dialect) (Expr, error) {
	if value == nil {
		return Cmp(attr, ComparatorIs, nil), nil
	}
	return Cmp(attr, ComparatorEqual, value), nil
}

// translateNotEqual keeps a literal nil as a plain not-equal comparison; it
// does not route to an IS NOT NULL test the way Equal routes to IS NULL.
func translateNotEqual(attr Attr, value any, _ Dialect) (Expr, error) {
	return Cmp(attr, ComparatorNotEqual, value), nil
}

func translateGreaterThan(attr Attr, value any, _ Dialect) (Expr, error) {
	return Cmp(attr, ComparatorGreaterThan, value), nil
}

func translateLessThan(attr Attr, value any, _ Dialect) (Expr, error) {
	return Cmp(attr, ComparatorLessThan, value), nil
}

func translatePresent(attr Attr, _ any, _ Dialect) (Expr, error) {
	return Cmp(attr, ComparatorIsNot, nil), nil
}

func translateMissing(attr Attr, _ any, _ Dialect) (Expr, error) {
	return Cmp(attr, ComparatorIs, nil), nil
}

// translateIn splits the list into non-null values and a null flag. Standard
// membership predicates never match NULL under three-valued logic, so a null
// entry has to become an explicit IS NULL disjunct.
func translateIn(attr Attr, value any, _ Dialect) (Expr, error) {
	values, err := valueList(value)
	if err != nil {
		return Expr{}, err
	}
	nonNull, hasNull := splitNulls(values)

	switch {
	case !hasNull && len(nonNull) == 0:
		return MatchNone(), nil
	case !hasNull && len(nonNull) == 1:
		return Cmp(attr, ComparatorEqual, nonNull[0]), nil
	case !hasNull:
		return Cmp(attr, ComparatorIn, nonNull), nil
	case len(nonNull) == 0:
		return Cmp(attr, ComparatorIs, nil), nil
	case len(nonNull) == 1:
		return AnyOf(Cmp(attr, ComparatorEqual, nonNull[0]), Cmp(attr, ComparatorIs, nil)), nil
	default:
		return AnyOf(Cmp(attr, ComparatorIn, nonNull), Cmp(attr, ComparatorIs, nil)), nil
	}
}

// translateNotIn mirrors translateIn: a null entry forces an AND-combination
// of not-equal exclusions, with the null itself contributing a literal
// not-equal-to-null test.
func translateNotIn(attr Attr, value any, _ Dialect) (Expr, error) {
	values, err := valueList(value)
	if err != nil {
		return Expr{}, err
	}
	nonNull, hasNull := splitNulls(values)

	switch {
	case !hasNull && len(nonNull) == 0:
		// Exclusion over an empty list matches everything.
		return Expr{}, nil
	case !hasNull && len(nonNull) == 1:
		return Cmp(attr, ComparatorNotEqual, nonNull[0]), nil
	case !hasNull:
		return Cmp(attr, ComparatorNotIn, nonNull), nil
	case len(nonNull) == 0:
		return Cmp(attr, ComparatorNotEqual, nil), nil
	default:
		items := make([]Expr, 0, len(nonNull)+1)
		for _, v := range nonNull {
			items = append(items, Cmp(attr, ComparatorNotEqual, v))
		}
		items = append(items, Cmp(attr, ComparatorNotEqual, nil))
		return AllOf(items...), nil
	}
}

func translateIncludesAll(attr Attr, value any, _ Dialect) (Expr, error) {
	values, err := valueList(value)
	if err != nil {
		return Expr{}, err
	}
	return Cmp(attr, ComparatorIncludes, values), nil
}

// matchVariant describes how one dialect expresses a pattern match: the
// comparator to use, an optional function or collation wrapped around the
// attribute, and whether the pattern must be lower-cased.
type matchVariant struct {
	comparator   Comparator
	fn           string
	collation    string
	lowerPattern bool
	globPattern  bool
}

func (v matchVariant) apply(attr Attr, pattern string) Expr {
	attr.Fn = v.fn
	attr.Collation = v.collation
	if v.lowerPattern {
		pattern = strings.ToLower(pattern)
	}
	return Cmp(attr, v.comparator, pattern)
}

// likeVariants: case-sensitive pattern match. Engines whose default collation
// compares case-insensitively must force case sensitivity on the attribute;
// engines with a native case-sensitive LIKE pass through unchanged.
var likeVariants = map[Dialect]matchVariant{
	DialectPostgres: {comparator: ComparatorLike},
	DialectMySQL:    {comparator: ComparatorLike, fn: "BINARY"},
	DialectMariaDB:  {comparator: ComparatorLike, fn: "BINARY"},
	DialectSQLite:   {comparator: ComparatorLike, collation: "BINARY"},
	DialectMSSQL:    {comparator: ComparatorLike, collation: "Latin1_General_BIN"},
}

var defaultLike = matchVariant{comparator: ComparatorLike}

// iLikeVariants: case-insensitive pattern match. Postgres has a native
// operator; engines whose LIKE is case-insensitive by default reuse plain
// LIKE; anything else lower-cases both sides.
var iLikeVariants = map[Dialect]matchVariant{
	DialectPostgres: {comparator: ComparatorILike},
	DialectMySQL:    {comparator: ComparatorLike},
	DialectMariaDB:  {comparator: ComparatorLike},
	DialectSQLite:   {comparator: ComparatorLike},
	DialectMSSQL:    {comparator: ComparatorLike},
}

var defaultILike = matchVariant{comparator: ComparatorLike, fn: "LOWER", lowerPattern: true}

// notContainsVariants: substring exclusion. SQLite needs NOT GLOB because its
// NOT LIKE compares case-insensitively and would exclude too much.
var notContainsVariants = map[Dialect]matchVariant{
	DialectPostgres: {comparator: ComparatorNotILike},
	DialectMySQL:    {comparator: ComparatorNotLike},
	DialectMariaDB:  {comparator: ComparatorNotLike},
	DialectMSSQL:    {comparator: ComparatorNotLike},
	DialectSQLite:   {comparator: ComparatorNotGlob, globPattern: true},
}

var defaultNotContains = matchVariant{comparator: ComparatorNotLike, fn: "LOWER", lowerPattern: true}

func matchFor(table map[Dialect]matchVariant, fallback matchVariant, dialect Dialect) matchVariant {
	if variant, ok := table[dialect]; ok {
		return variant
	}
	return fallback
}

func translateLike(attr Attr, value any, dialect Dialect) (Expr, error) {
	variant := matchFor(likeVariants, defaultLike, dialect)
	return variant.apply(attr, fmt.Sprintf("%v", value)), nil
}

func translateILike(attr Attr, value any, dialect Dialect) (Expr, error) {
	variant := matchFor(iLikeVariants, defaultILike, dialect)
	return variant.apply(attr, fmt.Sprintf("%v", value)), nil
}

func translateContains(attr Attr, value any, dialect Dialect) (Expr, error) {
	variant := matchFor(likeVariants, defaultLike, dialect)
	return variant.apply(attr, wildcard(value, variant.globPattern)), nil
}

func translateNotContains(attr Attr, value any, dialect Dialect) (Expr, error) {
	variant := matchFor(notContainsVariants, defaultNotContains, dialect)
	return variant.apply(attr, wildcard(value, variant.globPattern)), nil
}

// wildcard wraps a substring in the pattern wildcards of the match style.
func wildcard(value any, glob bool) string {
	if glob {
		return "*" + fmt.Sprintf("%v", value) + "*"
	}
	return "%" + fmt.Sprintf("%v", value) + "%"
}

// valueList coerces a list-shaped filter value into []any.
func valueList(value any) ([]any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []any:
		return v, nil
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, nil
	case []int:
		out := make([]any, len(v))
		for i, n := range v {
			out[i] = n
		}
		return out, nil
	case []int64:
		out := make([]any, len(v))
		for i, n := range v {
			out[i] = n
		}
		return out, nil
	case []float64:
		out := make([]any, len(v))
		for i, n := range v {
			out[i] = n
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected a list of values, got %T", value)
	}
}

// splitNulls separates nil entries from a value list.
func splitNulls(values []any) (nonNull []any, hasNull bool) {
	for _, v := range values {
		if v == nil {
			hasNull = true
			continue
		}
		nonNull = append(nonNull, v)
	}
	return nonNull, hasNull
}
