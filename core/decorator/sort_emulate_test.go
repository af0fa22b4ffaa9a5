package decorator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asaidimu/go-trellis/core/collection"
	"github.com/asaidimu/go-trellis/core/condition"
	"github.com/asaidimu/go-trellis/core/schema"
)

// memoryCollection is a stub store that records the delegated request and
// filters/sorts nothing on its own, returning rows in insertion order.
type memoryCollection struct {
	definition *schema.Definition
	rows       []collection.Document
	err        error

	lastFilter     condition.Filter
	lastProjection condition.Projection
}

func (m *memoryCollection) Name() string               { return m.definition.Name }
func (m *memoryCollection) Schema() *schema.Definition { return m.definition }

func (m *memoryCollection) List(_ context.Context, filter condition.Filter, projection condition.Projection) ([]collection.Document, error) {
	m.lastFilter = filter
	m.lastProjection = projection
	if m.err != nil {
		return nil, m.err
	}
	out := make([]collection.Document, 0, len(m.rows))
	for _, row := range m.rows {
		copied := make(collection.Document, len(row))
		for _, field := range projection {
			if v, ok := row[field]; ok {
				copied[field] = v
			}
		}
		if len(projection) == 0 {
			for k, v := range row {
				copied[k] = v
			}
		}
		out = append(out, copied)
	}
	return out, nil
}

func booksStore() *memoryCollection {
	return &memoryCollection{
		definition: &schema.Definition{
			Name: "books",
			Fields: map[string]schema.Field{
				"id":    {Kind: schema.FieldKindColumn, Type: schema.ColumnTypeString, IsSortable: true},
				"title": {Kind: schema.FieldKindColumn, Type: schema.ColumnTypeString},
				"pages": {Kind: schema.FieldKindColumn, Type: schema.ColumnTypeInteger, IsSortable: true},
				"rank":  {Kind: schema.FieldKindColumn, Type: schema.ColumnTypeInteger},
				"author": {
					Kind:              schema.FieldKindManyToOne,
					ForeignKey:        "author_id",
					ForeignCollection: "authors",
				},
			},
			PrimaryKeys: []string{"id"},
		},
		rows: []collection.Document{
			{"id": "3", "title": "Ubik", "pages": 224},
			{"id": "1", "title": "Dune", "pages": 412},
			{"id": "2", "title": "Hyperion", "pages": 482},
		},
	}
}

func TestSortEmulate_Configuration(t *testing.T) {
	t.Run("Unknown field", func(t *testing.T) {
		d := NewSortEmulate(booksStore(), nil, nil)
		err := d.EmulateFieldSorting("missing")
		assert.ErrorAs(t, err, &schema.NotFoundError{})
	})

	t.Run("Relation field", func(t *testing.T) {
		d := NewSortEmulate(booksStore(), nil, nil)
		err := d.EmulateFieldSorting("author")
		assert.ErrorAs(t, err, &schema.UnexpectedTypeError{})
	})

	t.Run("Cross-relation path", func(t *testing.T) {
		d := NewSortEmulate(booksStore(), nil, nil)
		err := d.EmulateFieldSorting("author:lastName")
		assert.ErrorAs(t, err, &schema.UnsupportedError{})
	})

	t.Run("Marks the field sortable in the exposed schema", func(t *testing.T) {
		base := booksStore()
		d := NewSortEmulate(base, nil, nil)
		require.False(t, d.Schema().Fields["title"].IsSortable)

		require.NoError(t, d.EmulateFieldSorting("title"))
		assert.True(t, d.Schema().Fields["title"].IsSortable)
		// The underlying schema is untouched.
		assert.False(t, base.Schema().Fields["title"].IsSortable)
	})

	t.Run("Replacement requires a non-empty substitute", func(t *testing.T) {
		d := NewSortEmulate(booksStore(), nil, nil)
		assert.Error(t, d.ReplaceFieldSorting("title", nil))
	})
}

func TestSortEmulate_List(t *testing.T) {
	ctx := context.Background()

	t.Run("Pass-through without emulation", func(t *testing.T) {
		base := booksStore()
		d := NewSortEmulate(base, nil, nil)
		sort := condition.Sort{{Field: "id", Ascending: true}}

		_, err := d.List(ctx, condition.Filter{Sort: sort}, condition.Projection{"id"})
		require.NoError(t, err)
		assert.Equal(t, sort, base.lastFilter.Sort)
	})

	t.Run("In-memory emulation sorts and repaginates", func(t *testing.T) {
		base := booksStore()
		d := NewSortEmulate(base, nil, nil)
		require.NoError(t, d.EmulateFieldSorting("title"))

		rows, err := d.List(ctx, condition.Filter{
			Sort: condition.Sort{{Field: "title", Ascending: true}},
		}, condition.Projection{"id", "title"})
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, "Dune", rows[0]["title"])
		assert.Equal(t, "Hyperion", rows[1]["title"])
		assert.Equal(t, "Ubik", rows[2]["title"])

		// The delegated request was stripped of sort and page.
		assert.Nil(t, base.lastFilter.Sort)
		assert.Nil(t, base.lastFilter.Page)
	})

	t.Run("Page window applies after the in-process sort", func(t *testing.T) {
		base := booksStore()
		d := NewSortEmulate(base, nil, nil)
		require.NoError(t, d.EmulateFieldSorting("title"))

		rows, err := d.List(ctx, condition.Filter{
			Sort: condition.Sort{{Field: "title", Ascending: true}},
			Page: &condition.Page{Offset: 1, Limit: 1},
		}, condition.Projection{"id", "title"})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Hyperion", rows[0]["title"])
	})

	t.Run("Descending emulated sort", func(t *testing.T) {
		base := booksStore()
		d := NewSortEmulate(base, nil, nil)
		require.NoError(t, d.EmulateFieldSorting("title"))

		rows, err := d.List(ctx, condition.Filter{
			Sort: condition.Sort{{Field: "title", Ascending: false}},
		}, condition.Projection{"title"})
		require.NoError(t, err)
		assert.Equal(t, "Ubik", rows[0]["title"])
	})

	t.Run("Emulated sort field is stripped when not projected", func(t *testing.T) {
		base := booksStore()
		d := NewSortEmulate(base, nil, nil)
		require.NoError(t, d.EmulateFieldSorting("title"))

		rows, err := d.List(ctx, condition.Filter{
			Sort: condition.Sort{{Field: "title", Ascending: true}},
		}, condition.Projection{"id"})
		require.NoError(t, err)
		// The delegated projection was extended to fetch the sort key.
		assert.Contains(t, base.lastProjection, "title")
		for _, row := range rows {
			assert.NotContains(t, row, "title")
		}
		assert.Equal(t, "1", rows[0]["id"])
		assert.Equal(t, "2", rows[1]["id"])
		assert.Equal(t, "3", rows[2]["id"])
	})

	t.Run("Substituted sort is pushed down", func(t *testing.T) {
		base := booksStore()
		d := NewSortEmulate(base, nil, nil)
		substitute := condition.Sort{{Field: "author:lastName", Ascending: true}}
		require.NoError(t, d.ReplaceFieldSorting("title", substitute))

		_, err := d.List(ctx, condition.Filter{
			Sort: condition.Sort{{Field: "title", Ascending: true}},
		}, condition.Projection{"id"})
		require.NoError(t, err)
		assert.Equal(t, substitute, base.lastFilter.Sort)
	})

	t.Run("Descending request inverts the substitute", func(t *testing.T) {
		base := booksStore()
		d := NewSortEmulate(base, nil, nil)
		substitute := condition.Sort{{Field: "author:lastName", Ascending: true}}
		require.NoError(t, d.ReplaceFieldSorting("title", substitute))

		_, err := d.List(ctx, condition.Filter{
			Sort: condition.Sort{{Field: "title", Ascending: false}},
		}, condition.Projection{"id"})
		require.NoError(t, err)
		assert.Equal(t, condition.Sort{{Field: "author:lastName", Ascending: false}}, base.lastFilter.Sort)
	})

	t.Run("Empty projection passes through untouched", func(t *testing.T) {
		base := booksStore()
		d := NewSortEmulate(base, nil, nil)
		require.NoError(t, d.EmulateFieldSorting("title"))

		rows, err := d.List(ctx, condition.Filter{
			Sort: condition.Sort{{Field: "title", Ascending: true}},
		}, nil)
		require.NoError(t, err)
		assert.Empty(t, base.lastProjection)
		require.Len(t, rows, 3)
		// Every field comes back, in sorted order.
		assert.Equal(t, "1", rows[0]["id"])
		assert.Equal(t, "Dune", rows[0]["title"])
		assert.Equal(t, 412, rows[0]["pages"])
	})

	t.Run("Negative page offset clamps to the start", func(t *testing.T) {
		base := booksStore()
		d := NewSortEmulate(base, nil, nil)
		require.NoError(t, d.EmulateFieldSorting("title"))

		rows, err := d.List(ctx, condition.Filter{
			Sort: condition.Sort{{Field: "title", Ascending: true}},
			Page: &condition.Page{Offset: -2, Limit: 2},
		}, condition.Projection{"title"})
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "Dune", rows[0]["title"])
	})

	t.Run("Mixed sort expands the substitute before the in-process pass", func(t *testing.T) {
		base := booksStore()
		d := NewSortEmulate(base, nil, nil)
		require.NoError(t, d.ReplaceFieldSorting("rank", condition.Sort{{Field: "pages", Ascending: true}}))
		require.NoError(t, d.EmulateFieldSorting("title"))

		rows, err := d.List(ctx, condition.Filter{
			Sort: condition.Sort{
				{Field: "rank", Ascending: false},
				{Field: "title", Ascending: true},
			},
		}, condition.Projection{"id"})
		require.NoError(t, err)
		require.Len(t, rows, 3)
		// Ordered by descending page count, not by the raw rank values.
		assert.Equal(t, "2", rows[0]["id"])
		assert.Equal(t, "1", rows[1]["id"])
		assert.Equal(t, "3", rows[2]["id"])
		for _, row := range rows {
			assert.NotContains(t, row, "pages")
		}
	})

	t.Run("Store failure propagates unchanged", func(t *testing.T) {
		base := booksStore()
		base.err = errors.New("disk on fire")
		d := NewSortEmulate(base, nil, nil)
		require.NoError(t, d.EmulateFieldSorting("title"))

		_, err := d.List(ctx, condition.Filter{
			Sort: condition.Sort{{Field: "title", Ascending: true}},
		}, condition.Projection{"id"})
		assert.Equal(t, base.err, err)
	})
}
