package schema

import "fmt"

// Graph is a registry of collection definitions, used to resolve relation
// fields to the definitions they target.
type Graph struct {
	collections map[string]*Definition
}

// NewGraph creates a graph from a set of collection definitions.
func NewGraph(definitions ...*Definition) *Graph {
	g := &Graph{collections: make(map[string]*Definition, len(definitions))}
	for _, d := range definitions {
		g.collections[d.Name] = d
	}
	return g
}

// Add registers a collection definition, replacing any previous one with the
// same name.
func (g *Graph) Add(d *Definition) {
	g.collections[d.Name] = d
}

// Collection looks up a registered definition by name.
func (g *Graph) Collection(name string) (*Definition, bool) {
	d, ok := g.collections[name]
	return d, ok
}

// Hop is one traversed relation in a resolved path.
type Hop struct {
	Name   string
	Field  Field
	Target *Definition
}

// ResolvedPath is the result of walking a field path against the graph: the
// chain of relations traversed and the terminal column.
type ResolvedPath struct {
	Relations []Hop
	Column    Field
	// ColumnName is the physical storage name of the terminal column.
	ColumnName string
}

// RelationNames returns the names of the traversed relations, in order.
func (r *ResolvedPath) RelationNames() []string {
	names := make([]string, len(r.Relations))
	for i, hop := range r.Relations {
		names[i] = hop.Name
	}
	return names
}

// Walk resolves a parsed field path against a root definition, following each
// relation segment to its target collection and ending on a column. It fails
// when a segment does not name a known field, when a relation segment names a
// column, a column segment names a relation, or a relation target is not
// registered in the graph.
func (g *Graph) Walk(root *Definition, path Path) (*ResolvedPath, error) {
	if path.Len() == 0 || path.Head() == "" {
		return nil, NotFoundError{Collection: root.Name, Field: path.String()}
	}

	resolved := &ResolvedPath{}
	current := root
	for _, name := range path.Relations() {
		field, ok := current.Field(name)
		if !ok {
			return nil, NotFoundError{Collection: current.Name, Field: name}
		}
		if !field.IsRelation() {
			return nil, UnexpectedTypeError{Collection: current.Name, Field: name, Expected: "relation"}
		}
		target, ok := g.Collection(field.ForeignCollection)
		if !ok {
			return nil, NotFoundError{Collection: field.ForeignCollection, Field: name}
		}
		resolved.Relations = append(resolved.Relations, Hop{Name: name, Field: field, Target: target})
		current = target
	}

	leaf := path.FieldName()
	column, ok := current.Field(leaf)
	if !ok {
		return nil, NotFoundError{Collection: current.Name, Field: leaf}
	}
	if column.IsRelation() {
		return nil, UnexpectedTypeError{Collection: current.Name, Field: leaf, Expected: "column"}
	}
	resolved.Column = column
	resolved.ColumnName = column.Storage(leaf)
	return resolved, nil
}

// NotFoundError reports a path segment that does not exist on the collection
// it was resolved against.
type NotFoundError struct {
	Collection string
	Field      string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("field '%s' not found in collection '%s'", e.Field, e.Collection)
}

// UnexpectedTypeError reports a field used as the wrong kind, e.g. a relation
// where a column was required.
type UnexpectedTypeError struct {
	Collection string
	Field      string
	Expected   string
}

func (e UnexpectedTypeError) Error() string {
	return fmt.Sprintf("field '%s' on collection '%s' is not a %s", e.Field, e.Collection, e.Expected)
}

// UnsupportedError reports an operation that cannot be performed on the given
// field, such as configuring in-memory sort emulation on a relation path.
type UnsupportedError struct {
	Field  string
	Reason string
}

func (e UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported operation on field '%s': %s", e.Field, e.Reason)
}
