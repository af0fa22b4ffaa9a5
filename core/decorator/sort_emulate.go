// Package decorator provides collection-level wrappers that rewrite list
// requests before delegating to an underlying collection.
package decorator

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/asaidimu/go-events"
	"go.uber.org/zap"

	"github.com/asaidimu/go-trellis/core/collection"
	"github.com/asaidimu/go-trellis/core/condition"
	"github.com/asaidimu/go-trellis/core/schema"
)

// emulation is the per-field tagged sorting mode. Exactly one of the two
// members is set: a substitute sort pushed down to the store, or an in-memory
// full-scan sort over fetched rows.
type emulation struct {
	substitute condition.Sort
	inMemory   bool
}

// SortEmulate wraps a collection and lets fields the store cannot sort
// natively be presented as sortable: either by substituting an equivalent
// real sort, or by fetching the full unsorted result set and sorting rows in
// process before re-applying the requested pagination window.
type SortEmulate struct {
	base       collection.Collection
	definition *schema.Definition
	emulations map[string]emulation
	bus        *events.TypedEventBus[collection.ListEvent]
	logger     *zap.Logger
}

// NewSortEmulate creates a sort-emulation decorator over base. The bus, when
// non-nil, receives list lifecycle events; a nil logger falls back to a nop.
func NewSortEmulate(base collection.Collection, bus *events.TypedEventBus[collection.ListEvent], logger *zap.Logger) *SortEmulate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SortEmulate{
		base:       base,
		definition: base.Schema().Clone(),
		emulations: map[string]emulation{},
		bus:        bus,
		logger:     logger,
	}
}

// Name returns the underlying collection's name.
func (d *SortEmulate) Name() string { return d.base.Name() }

// Schema returns the decorated schema, with emulated fields marked sortable.
func (d *SortEmulate) Schema() *schema.Definition { return d.definition }

// EmulateFieldSorting marks a local, plain column as sortable by sorting
// fetched rows in process. Only fields of the collection itself qualify:
// relation fields and cross-relation paths are rejected.
func (d *SortEmulate) EmulateFieldSorting(field string) error {
	if err := d.validateField(field); err != nil {
		return err
	}
	d.markSortable(field)
	d.emulations[field] = emulation{inMemory: true}
	d.logger.Info("Enabled in-memory sort emulation", zap.String("field", field))
	return nil
}

// ReplaceFieldSorting declares a field sortable by substituting a different,
// real sort specification (which may span relations) whenever the field is
// requested as a sort key. The substitute is pushed down to the underlying
// collection; no full fetch is needed.
func (d *SortEmulate) ReplaceFieldSorting(field string, substitute condition.Sort) error {
	if err := d.validateField(field); err != nil {
		return err
	}
	if len(substitute) == 0 {
		return fmt.Errorf("substitute sort for field '%s' cannot be empty", field)
	}
	d.markSortable(field)
	d.emulations[field] = emulation{substitute: substitute}
	d.logger.Info("Enabled substitute sort", zap.String("field", field))
	return nil
}

func (d *SortEmulate) validateField(field string) error {
	path := schema.ParsePath(field)
	if path.IsNested() {
		return schema.UnsupportedError{Field: field, Reason: "sort emulation cannot traverse relations"}
	}
	f, ok := d.definition.Field(field)
	if !ok {
		return schema.NotFoundError{Collection: d.definition.Name, Field: field}
	}
	if f.IsRelation() {
		return schema.UnexpectedTypeError{Collection: d.definition.Name, Field: field, Expected: "column"}
	}
	return nil
}

func (d *SortEmulate) markSortable(field string) {
	f := d.definition.Fields[field]
	f.IsSortable = true
	d.definition.Fields[field] = f
}

// List delegates to the underlying collection, rewriting the requested sort
// first. Substituted fields are swapped in place; a sort on an
// in-memory-emulated field strips sort and page from the delegated request,
// sorts the full result set in process and re-applies the page window. Both
// rewrites are transparent to the caller.
func (d *SortEmulate) List(ctx context.Context, filter condition.Filter, projection condition.Projection) ([]collection.Document, error) {
	start := time.Now()
	d.emit(collection.NewListEvent(collection.ListStarted, d.Name()))

	rows, err := d.list(ctx, filter, projection)
	if err != nil {
		event := collection.NewListEvent(collection.ListFailed, d.Name())
		event.Error = err.Error()
		event.Duration = time.Since(start)
		d.emit(event)
		return nil, err
	}

	event := collection.NewListEvent(collection.ListSucceeded, d.Name())
	event.Count = len(rows)
	event.Duration = time.Since(start)
	d.emit(event)
	return rows, nil
}

func (d *SortEmulate) list(ctx context.Context, filter condition.Filter, projection condition.Projection) ([]collection.Document, error) {
	rewritten, inMemory := d.rewriteSort(filter.Sort)
	filter.Sort = rewritten
	if !inMemory {
		return d.base.List(ctx, filter, projection)
	}

	// Fetch the full unsorted, unpaged set restricted to the projection plus
	// the emulated sort fields. An empty projection already means every field
	// to the underlying store, so it passes through untouched.
	delegated := filter
	delegated.Sort = nil
	delegated.Page = nil

	extended := projection
	var extra []string
	if len(projection) > 0 {
		for _, clause := range filter.Sort {
			if !extended.Contains(clause.Field) {
				extended = append(append(condition.Projection{}, extended...), clause.Field)
				extra = append(extra, clause.Field)
			}
		}
	}

	rows, err := d.base.List(ctx, delegated, extended)
	if err != nil {
		return nil, err
	}
	d.logger.Debug("Sorting fetched rows in process",
		zap.String("collection", d.Name()),
		zap.Int("count", len(rows)))

	sortRows(rows, filter.Sort)
	rows = pageWindow(rows, filter.Page)

	for _, field := range extra {
		for _, row := range rows {
			delete(row, field)
		}
	}
	return rows, nil
}

// rewriteSort expands substituted sort clauses in order. It reports whether
// any requested clause targets an in-memory-emulated field, in which case the
// whole (expanded) sort must be executed in process.
func (d *SortEmulate) rewriteSort(requested condition.Sort) (condition.Sort, bool) {
	rewritten := make(condition.Sort, 0, len(requested))
	inMemory := false
	for _, clause := range requested {
		mode, ok := d.emulations[clause.Field]
		switch {
		case ok && mode.inMemory:
			inMemory = true
			rewritten = append(rewritten, clause)
		case ok:
			substitute := mode.substitute
			if !clause.Ascending {
				substitute = substitute.Inverse()
			}
			rewritten = append(rewritten, substitute...)
		default:
			rewritten = append(rewritten, clause)
		}
	}
	return rewritten, inMemory
}

// sortRows performs a stable in-process sort over the full row set, comparing
// clause by clause in tie-break order.
func sortRows(rows []collection.Document, clauses condition.Sort) {
	sort.SliceStable(rows, func(i, j int) bool {
		for _, clause := range clauses {
			cmp := condition.Compare(rows[i][clause.Field], rows[j][clause.Field])
			if cmp == 0 {
				continue
			}
			if clause.Ascending {
				return cmp < 0
			}
			return cmp > 0
		}
		return false
	})
}

// pageWindow applies the originally requested pagination window to the sorted
// sequence.
func pageWindow(rows []collection.Document, page *condition.Page) []collection.Document {
	if page == nil {
		return rows
	}
	offset := page.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(rows) {
		return []collection.Document{}
	}
	rows = rows[offset:]
	if page.Limit > 0 && page.Limit < len(rows) {
		rows = rows[:page.Limit]
	}
	return rows
}

func (d *SortEmulate) emit(event collection.ListEvent) {
	if d.bus != nil {
		d.bus.Emit(string(event.Type), event)
	}
}
