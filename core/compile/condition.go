package compile

import (
	"go.uber.org/zap"

	"github.com/asaidimu/go-trellis/core/condition"
	"github.com/asaidimu/go-trellis/core/schema"
)

// Compiler translates condition trees, sorts and projections against one root
// collection into the target layer's query constructs. A compiler is
// constructed fresh per request and holds no mutable state.
type Compiler struct {
	graph   *schema.Graph
	root    *schema.Definition
	dialect Dialect
	logger  *zap.Logger
}

// NewCompiler creates a compiler for the given root collection and dialect.
func NewCompiler(graph *schema.Graph, root *schema.Definition, dialect Dialect, logger *zap.Logger) *Compiler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Compiler{graph: graph, root: root, dialect: dialect, logger: logger}
}

// Dialect returns the dialect the compiler targets.
func (c *Compiler) Dialect() Dialect { return c.dialect }

// Root returns the root collection definition.
func (c *Compiler) Root() *schema.Definition { return c.root }

// ResolveAttr resolves a colon-delimited field path into a physical attribute
// reference. A zero-hop path yields the (possibly renamed) column scoped to
// the root; an N-hop path yields a reference qualified by every relation hop
// in order, which requires those hops to be declared as included elsewhere in
// the same query.
func (c *Compiler) ResolveAttr(fieldPath string) (Attr, error) {
	resolved, err := c.graph.Walk(c.root, schema.ParsePath(fieldPath))
	if err != nil {
		return Attr{}, err
	}
	return Attr{Relations: resolved.RelationNames(), Column: resolved.ColumnName}, nil
}

// Compile recursively compiles a condition tree into a filter expression. A
// nil tree compiles to the empty filter matching everything.
func (c *Compiler) Compile(tree *condition.Tree) (Expr, error) {
	if tree == nil {
		return Expr{}, nil
	}
	switch {
	case tree.Leaf != nil:
		return c.compileLeaf(tree.Leaf)
	case tree.Branch != nil:
		return c.compileBranch(tree.Branch)
	default:
		return Expr{}, condition.InvalidConditionTreeError{}
	}
}

func (c *Compiler) compileLeaf(leaf *condition.Leaf) (Expr, error) {
	attr, err := c.ResolveAttr(leaf.Field)
	if err != nil {
		return Expr{}, err
	}
	return TranslateOperator(attr, leaf.Operator, leaf.Value, c.dialect)
}

func (c *Compiler) compileBranch(branch *condition.Branch) (Expr, error) {
	if !branch.Aggregator.IsValid() {
		return Expr{}, condition.InvalidAggregatorError{Aggregator: branch.Aggregator}
	}
	// A nil sequence is a malformed branch; an empty one is the neutral
	// filter.
	if branch.Conditions == nil {
		return Expr{}, condition.InvalidConditionsError{}
	}

	items := make([]Expr, 0, len(branch.Conditions))
	for i := range branch.Conditions {
		item, err := c.Compile(&branch.Conditions[i])
		if err != nil {
			return Expr{}, err
		}
		if item.IsEmpty() {
			// A match-everything child absorbs an Or branch; under And it is
			// the neutral element and drops out.
			if branch.Aggregator == condition.AggregatorOr {
				return Expr{}, nil
			}
			continue
		}
		items = append(items, item)
	}

	switch len(items) {
	case 0:
		return Expr{}, nil
	case 1:
		return items[0], nil
	default:
		return Expr{Logical: &Logical{Aggregator: branch.Aggregator, Items: items}}, nil
	}
}
