package compile

import (
	"github.com/asaidimu/go-trellis/core/condition"
	"github.com/asaidimu/go-trellis/core/schema"
)

// CompileSort maps a sort specification into ordering clauses. An empty sort
// yields an empty sequence; otherwise input order is preserved as the
// tie-break order, with no deduplication.
func (c *Compiler) CompileSort(sort condition.Sort) ([]OrderClause, error) {
	if len(sort) == 0 {
		return nil, nil
	}
	clauses := make([]OrderClause, 0, len(sort))
	for _, clause := range sort {
		attr, err := c.ResolveAttr(clause.Field)
		if err != nil {
			return nil, err
		}
		direction := "DESC"
		if clause.Ascending {
			direction = "ASC"
		}
		clauses = append(clauses, OrderClause{Attr: attr, Direction: direction})
	}
	return clauses, nil
}

// CompileProjection maps a flat projection referencing relation paths into a
// nested include tree. Paths are grouped by their first segment in first-seen
// order; a group's single-segment suffixes become that node's attributes and
// longer suffixes recurse into nested includes. Relations referenced without
// any directly-projected own field still appear, with empty attributes.
// Root-level column paths produce no include nodes.
func (c *Compiler) CompileProjection(projection condition.Projection) ([]IncludeNode, error) {
	return buildIncludes(c.graph, c.root, projection)
}

func buildIncludes(graph *schema.Graph, root *schema.Definition, projection condition.Projection) ([]IncludeNode, error) {
	type group struct {
		hop      schema.Hop
		suffixes []schema.Path
	}
	var order []string
	groups := make(map[string]*group)

	for _, fieldPath := range projection {
		path := schema.ParsePath(fieldPath)
		if !path.IsNested() {
			// Validate the root column even though it does not produce a
			// node.
			if _, err := graph.Walk(root, path); err != nil {
				return nil, err
			}
			continue
		}

		relation := path.Head()
		g, ok := groups[relation]
		if !ok {
			field, exists := root.Field(relation)
			if !exists {
				return nil, schema.NotFoundError{Collection: root.Name, Field: relation}
			}
			if !field.IsRelation() {
				return nil, schema.UnexpectedTypeError{Collection: root.Name, Field: relation, Expected: "relation"}
			}
			target, exists := graph.Collection(field.ForeignCollection)
			if !exists {
				return nil, schema.NotFoundError{Collection: field.ForeignCollection, Field: relation}
			}
			g = &group{hop: schema.Hop{Name: relation, Field: field, Target: target}}
			groups[relation] = g
			order = append(order, relation)
		}
		g.suffixes = append(g.suffixes, path.Tail())
	}

	nodes := make([]IncludeNode, 0, len(order))
	for _, relation := range order {
		g := groups[relation]
		node := IncludeNode{Association: relation, Attributes: []string{}}

		var nested condition.Projection
		for _, suffix := range g.suffixes {
			if suffix.IsNested() {
				nested = append(nested, suffix.String())
				continue
			}
			name := suffix.FieldName()
			if name == "" {
				continue
			}
			column, ok := g.hop.Target.Field(name)
			if !ok {
				return nil, schema.NotFoundError{Collection: g.hop.Target.Name, Field: name}
			}
			if column.IsRelation() {
				// A bare relation reference drives the join without selecting
				// anything on it.
				nested = append(nested, name+schema.PathDelimiter)
				continue
			}
			if !contains(node.Attributes, name) {
				node.Attributes = append(node.Attributes, name)
			}
		}

		if len(nested) > 0 {
			children, err := buildIncludes(graph, g.hop.Target, nested)
			if err != nil {
				return nil, err
			}
			node.Include = children
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

func contains(values []string, v string) bool {
	for _, existing := range values {
		if existing == v {
			return true
		}
	}
	return false
}
