// Package schema defines the field schema graph consumed by the query
// compilers: per-field column/relation metadata, physical storage names,
// sortability flags and relation targets. It also owns the parsed
// representation of colon-delimited field paths, shared by the path resolver
// and the include-tree builder.
package schema

import "strings"

// FieldKind distinguishes plain columns from the supported relation kinds.
type FieldKind string

const (
	FieldKindColumn     FieldKind = "column"
	FieldKindManyToOne  FieldKind = "manyToOne"
	FieldKindOneToMany  FieldKind = "oneToMany"
	FieldKindOneToOne   FieldKind = "oneToOne"
	FieldKindManyToMany FieldKind = "manyToMany"
)

// ColumnType represents the basic column types the compilers care about.
type ColumnType string

const (
	ColumnTypeString  ColumnType = "string"
	ColumnTypeNumber  ColumnType = "number"
	ColumnTypeInteger ColumnType = "integer"
	ColumnTypeBoolean ColumnType = "boolean"
	ColumnTypeDate    ColumnType = "date"
	ColumnTypeArray   ColumnType = "array"
)

// Field describes a single field of a collection. A field is either a column
// (Kind == FieldKindColumn) or a relation to another collection.
type Field struct {
	Kind FieldKind `json:"kind"`
	// Type is the column type. Only meaningful for columns.
	Type ColumnType `json:"type,omitempty"`
	// PhysicalName is the storage name of a column when it differs from the
	// logical field name. Empty means the logical name is the storage name.
	PhysicalName string `json:"physicalName,omitempty"`
	// IsSortable reports whether the underlying store can sort on this field.
	IsSortable bool `json:"isSortable,omitempty"`
	// ForeignKey is the local key column for a relation field.
	ForeignKey string `json:"foreignKey,omitempty"`
	// ForeignCollection names the target collection of a relation field.
	ForeignCollection string `json:"foreignCollection,omitempty"`
}

// IsRelation reports whether the field is a relation rather than a column.
func (f Field) IsRelation() bool {
	return f.Kind != FieldKindColumn && f.Kind != ""
}

// Storage returns the physical storage name of a column, falling back to the
// logical name when the field is not renamed.
func (f Field) Storage(logical string) string {
	if f.PhysicalName != "" {
		return f.PhysicalName
	}
	return logical
}

// Definition describes one collection: its name, fields and primary key
// columns, in the order key tuples are compared.
type Definition struct {
	Name        string           `json:"name"`
	Fields      map[string]Field `json:"fields"`
	PrimaryKeys []string         `json:"primaryKeys,omitempty"`
}

// Field looks up a field by its logical name.
func (d *Definition) Field(name string) (Field, bool) {
	f, ok := d.Fields[name]
	return f, ok
}

// Clone returns a copy of the definition with its own field map, so a caller
// can adjust flags (e.g. sortability) without mutating the original.
func (d *Definition) Clone() *Definition {
	fields := make(map[string]Field, len(d.Fields))
	for name, f := range d.Fields {
		fields[name] = f
	}
	keys := make([]string, len(d.PrimaryKeys))
	copy(keys, d.PrimaryKeys)
	return &Definition{Name: d.Name, Fields: fields, PrimaryKeys: keys}
}

// PathDelimiter separates relation hops in a field path.
const PathDelimiter = ":"

// Path is a parsed colon-delimited field path. All segments but the last name
// relations to traverse in order; the last segment names the attribute.
type Path struct {
	segments []string
}

// ParsePath splits a colon-delimited field path into its segments.
func ParsePath(s string) Path {
	return Path{segments: strings.Split(s, PathDelimiter)}
}

// NewPath builds a path from already-split segments.
func NewPath(segments ...string) Path {
	return Path{segments: segments}
}

// IsNested reports whether the path traverses at least one relation.
func (p Path) IsNested() bool { return len(p.segments) > 1 }

// Relations returns the relation segments of the path, in traversal order.
func (p Path) Relations() []string { return p.segments[:len(p.segments)-1] }

// FieldName returns the final attribute segment.
func (p Path) FieldName() string { return p.segments[len(p.segments)-1] }

// Head returns the first segment of the path.
func (p Path) Head() string { return p.segments[0] }

// Tail returns the path with its first segment removed.
func (p Path) Tail() Path { return Path{segments: p.segments[1:]} }

// Len returns the number of segments.
func (p Path) Len() int { return len(p.segments) }

func (p Path) String() string { return strings.Join(p.segments, PathDelimiter) }
