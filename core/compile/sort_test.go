package compile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asaidimu/go-trellis/core/condition"
	"github.com/asaidimu/go-trellis/core/schema"
)

func TestCompiler_CompileSort(t *testing.T) {
	c := testCompiler(t, DialectSQLite)

	t.Run("Empty sort yields no clauses", func(t *testing.T) {
		clauses, err := c.CompileSort(nil)
		require.NoError(t, err)
		assert.Empty(t, clauses)

		clauses, err = c.CompileSort(condition.Sort{})
		require.NoError(t, err)
		assert.Empty(t, clauses)
	})

	t.Run("Input order and directions are preserved", func(t *testing.T) {
		clauses, err := c.CompileSort(condition.Sort{
			{Field: "title", Ascending: true},
			{Field: "pages", Ascending: false},
			{Field: "id", Ascending: true},
		})
		require.NoError(t, err)
		require.Len(t, clauses, 3)
		assert.Equal(t, "book_title", clauses[0].Attr.Column)
		assert.Equal(t, "ASC", clauses[0].Direction)
		assert.Equal(t, "pages", clauses[1].Attr.Column)
		assert.Equal(t, "DESC", clauses[1].Direction)
		assert.Equal(t, "ASC", clauses[2].Direction)
	})

	t.Run("Relation sort compiles to a qualified reference", func(t *testing.T) {
		clauses, err := c.CompileSort(condition.Sort{{Field: "author:lastName", Ascending: true}})
		require.NoError(t, err)
		require.Len(t, clauses, 1)
		assert.Equal(t, []string{"author"}, clauses[0].Attr.Relations)
		assert.Equal(t, "last_name", clauses[0].Attr.Column)
	})

	t.Run("Unknown field fails", func(t *testing.T) {
		_, err := c.CompileSort(condition.Sort{{Field: "missing", Ascending: true}})
		assert.ErrorAs(t, err, &schema.NotFoundError{})
	})
}

func TestCompiler_CompileProjection(t *testing.T) {
	c := testCompiler(t, DialectSQLite)

	t.Run("Root columns produce no include nodes", func(t *testing.T) {
		nodes, err := c.CompileProjection(condition.Projection{"id", "title"})
		require.NoError(t, err)
		assert.Empty(t, nodes)
	})

	t.Run("Relation paths group under one node", func(t *testing.T) {
		nodes, err := c.CompileProjection(condition.Projection{
			"id",
			"author:lastName",
			"author:id",
		})
		require.NoError(t, err)
		require.Len(t, nodes, 1)
		assert.Equal(t, "author", nodes[0].Association)
		assert.Equal(t, []string{"lastName", "id"}, nodes[0].Attributes)
		assert.Empty(t, nodes[0].Include)
	})

	t.Run("Duplicate attributes are merged", func(t *testing.T) {
		nodes, err := c.CompileProjection(condition.Projection{
			"author:lastName",
			"author:lastName",
		})
		require.NoError(t, err)
		require.Len(t, nodes, 1)
		assert.Equal(t, []string{"lastName"}, nodes[0].Attributes)
	})

	t.Run("Deep paths nest recursively", func(t *testing.T) {
		nodes, err := c.CompileProjection(condition.Projection{
			"author:country:name",
		})
		require.NoError(t, err)
		require.Len(t, nodes, 1)
		assert.Equal(t, "author", nodes[0].Association)
		assert.Empty(t, nodes[0].Attributes)
		require.Len(t, nodes[0].Include, 1)
		assert.Equal(t, "country", nodes[0].Include[0].Association)
		assert.Equal(t, []string{"name"}, nodes[0].Include[0].Attributes)
	})

	t.Run("Mixed depth keeps the relation's own attributes", func(t *testing.T) {
		nodes, err := c.CompileProjection(condition.Projection{
			"author:lastName",
			"author:country:name",
		})
		require.NoError(t, err)
		require.Len(t, nodes, 1)
		assert.Equal(t, []string{"lastName"}, nodes[0].Attributes)
		require.Len(t, nodes[0].Include, 1)
		assert.Equal(t, "country", nodes[0].Include[0].Association)
	})

	t.Run("Output follows first-seen order of relations", func(t *testing.T) {
		graph := testGraph()
		books, _ := graph.Collection("books")
		// Add a second relation to exercise sibling ordering.
		books.Fields["publisher"] = schema.Field{
			Kind:              schema.FieldKindManyToOne,
			ForeignKey:        "publisher_id",
			ForeignCollection: "countries",
		}
		compiler := NewCompiler(graph, books, DialectSQLite, nil)

		nodes, err := compiler.CompileProjection(condition.Projection{
			"publisher:name",
			"author:lastName",
		})
		require.NoError(t, err)
		require.Len(t, nodes, 2)
		assert.Equal(t, "publisher", nodes[0].Association)
		assert.Equal(t, "author", nodes[1].Association)
	})

	t.Run("Unknown relation fails", func(t *testing.T) {
		_, err := c.CompileProjection(condition.Projection{"publisher:name"})
		assert.ErrorAs(t, err, &schema.NotFoundError{})
	})

	t.Run("Column used as a relation fails", func(t *testing.T) {
		_, err := c.CompileProjection(condition.Projection{"title:name"})
		assert.ErrorAs(t, err, &schema.UnexpectedTypeError{})
	})
}
