// Package collection defines the minimal collection surface the compilers
// and decorators consume: a typed schema and a delegate list operation.
package collection

import (
	"context"

	"github.com/asaidimu/go-trellis/core/condition"
	"github.com/asaidimu/go-trellis/core/schema"
)

// Document is one row of a collection, keyed by logical field name.
type Document map[string]any

// Collection is the delegate surface of an underlying store. List returns the
// ordered rows matching the filter, restricted to the projection. Failures
// from the store propagate unchanged to the caller; cancellation is the
// responsibility of the store.
type Collection interface {
	Name() string
	Schema() *schema.Definition
	List(ctx context.Context, filter condition.Filter, projection condition.Projection) ([]Document, error)
}
