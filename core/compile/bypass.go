package compile

import (
	"context"

	"go.uber.org/zap"

	"github.com/asaidimu/go-trellis/core/collection"
	"github.com/asaidimu/go-trellis/core/condition"
)

// BypassCompiler rewrites a condition tree as key equalities over a
// collection's primary keys, for cases where the surrounding query cannot
// evaluate the condition through a join. It performs exactly one awaited
// round trip to the store; any failure from the store propagates unchanged.
type BypassCompiler struct {
	logger *zap.Logger
}

// NewBypassCompiler creates a bypass compiler.
func NewBypassCompiler(logger *zap.Logger) *BypassCompiler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BypassCompiler{logger: logger}
}

// Compile lists the primary-key tuples of every record of col matching tree,
// then rewrites the result as Or[ And[key_i = value_i] for each tuple ]. An
// empty match set, or a collection without primary keys, compiles to the
// well-formed empty-match expression rather than failing.
func (b *BypassCompiler) Compile(ctx context.Context, col collection.Collection, tree *condition.Tree) (Expr, error) {
	definition := col.Schema()
	keys := definition.PrimaryKeys
	if len(keys) == 0 {
		b.logger.Debug("Bypass against collection without primary keys",
			zap.String("collection", col.Name()))
		return MatchNone(), nil
	}

	rows, err := col.List(ctx, condition.Filter{Tree: tree}, condition.Projection(keys))
	if err != nil {
		return Expr{}, err
	}
	b.logger.Debug("Bypass key fetch complete",
		zap.String("collection", col.Name()),
		zap.Int("matches", len(rows)))

	if len(rows) == 0 {
		return MatchNone(), nil
	}

	attrs := make([]Attr, len(keys))
	for i, key := range keys {
		column, _ := definition.Field(key)
		attrs[i] = Attr{Column: column.Storage(key)}
	}

	tuples := make([]Expr, 0, len(rows))
	for _, row := range rows {
		equalities := make([]Expr, len(keys))
		for i, key := range keys {
			equalities[i] = Cmp(attrs[i], ComparatorEqual, row[key])
		}
		if len(equalities) == 1 {
			tuples = append(tuples, equalities[0])
			continue
		}
		tuples = append(tuples, AllOf(equalities...))
	}
	if len(tuples) == 1 {
		return tuples[0], nil
	}
	return AnyOf(tuples...), nil
}
