package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/asaidimu/go-trellis/core/collection"
	"github.com/asaidimu/go-trellis/core/compile"
	"github.com/asaidimu/go-trellis/core/condition"
	"github.com/asaidimu/go-trellis/core/schema"
)

// Collection is a single-table SQLite-backed collection. It compiles
// condition trees and sorts through the SQLite dialect and renders them to
// parameterized SQL. Relation paths in filters and sorts are not supported by
// this store; they require the surrounding query layer to set up joins.
type Collection struct {
	db         *sql.DB
	definition *schema.Definition
	compiler   *compile.Compiler
	logger     *zap.Logger
}

var _ collection.Collection = (*Collection)(nil)

// NewCollection creates a SQLite-backed collection over an open database.
func NewCollection(db *sql.DB, graph *schema.Graph, definition *schema.Definition, logger *zap.Logger) (*Collection, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle cannot be nil")
	}
	if definition == nil || definition.Name == "" {
		return nil, fmt.Errorf("collection definition must name a table")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collection{
		db:         db,
		definition: definition,
		compiler:   compile.NewCompiler(graph, definition, compile.DialectSQLite, logger),
		logger:     logger,
	}, nil
}

// Name returns the table name.
func (c *Collection) Name() string { return c.definition.Name }

// Schema returns the collection definition.
func (c *Collection) Schema() *schema.Definition { return c.definition }

// List executes a SELECT for the given filter and projection and returns the
// matching rows keyed by logical field name.
func (c *Collection) List(ctx context.Context, filter condition.Filter, projection condition.Projection) ([]collection.Document, error) {
	where, err := c.compiler.Compile(filter.Tree)
	if err != nil {
		return nil, err
	}
	orders, err := c.compiler.CompileSort(filter.Sort)
	if err != nil {
		return nil, err
	}

	selectList, err := c.selectList(projection)
	if err != nil {
		return nil, err
	}

	query, params, err := RenderSelect(c.definition.Name, selectList, where, orders, filter.Page)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("Executing select", zap.String("sql", query))

	rows, err := c.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection '%s': %w", c.definition.Name, err)
	}
	defer rows.Close()

	return c.readRows(rows)
}

// selectList renders the projection into SELECT expressions, aliasing
// physical columns back to their logical names. An empty projection selects
// every schema column.
func (c *Collection) selectList(projection condition.Projection) ([]string, error) {
	fields := []string(projection)
	if len(fields) == 0 {
		fields = make([]string, 0, len(c.definition.Fields))
		for name, field := range c.definition.Fields {
			if field.IsRelation() {
				continue
			}
			fields = append(fields, name)
		}
		sort.Strings(fields)
	}

	list := make([]string, 0, len(fields))
	for _, name := range fields {
		if schema.ParsePath(name).IsNested() {
			return nil, fmt.Errorf("relation path '%s' is not supported by the sqlite store", name)
		}
		field, ok := c.definition.Field(name)
		if !ok {
			return nil, schema.NotFoundError{Collection: c.definition.Name, Field: name}
		}
		if field.IsRelation() {
			return nil, schema.UnexpectedTypeError{Collection: c.definition.Name, Field: name, Expected: "column"}
		}
		list = append(list, fmt.Sprintf("%s AS %s", quoteIdentifier(field.Storage(name)), quoteIdentifier(name)))
	}
	return list, nil
}

// readRows scans the result set into documents, coercing stored values back
// to the schema's column types.
func (c *Collection) readRows(rows *sql.Rows) ([]collection.Document, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	var results []collection.Document
	for rows.Next() {
		row := make(collection.Document, len(columns))
		values := make([]any, len(columns))
		scanArgs := make([]any, len(columns))
		for i := range values {
			scanArgs[i] = &values[i]
		}

		if err := rows.Scan(scanArgs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		for i, col := range columns {
			row[col] = c.coerce(col, values[i])
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (c *Collection) coerce(column string, value any) any {
	if value == nil {
		return nil
	}
	field, ok := c.definition.Field(column)
	if !ok {
		c.logger.Warn("Column not found in schema, using raw value", zap.String("column", column))
		return value
	}

	switch field.Type {
	case schema.ColumnTypeBoolean:
		if intVal, isInt := value.(int64); isInt {
			return intVal != 0
		}
		return value
	case schema.ColumnTypeString, schema.ColumnTypeDate, schema.ColumnTypeArray:
		if byteVal, isByte := value.([]byte); isByte {
			return string(byteVal)
		}
		return value
	case schema.ColumnTypeNumber:
		if intVal, isInt := value.(int64); isInt {
			return float64(intVal)
		}
		return value
	default:
		return value
	}
}

// Insert writes records into the table, generating a uuid for a missing
// string "id" column. It exists to seed data for tests and examples; the
// surrounding framework owns real write semantics.
func (c *Collection) Insert(ctx context.Context, records []collection.Document) error {
	if len(records) == 0 {
		return fmt.Errorf("no records provided for insert")
	}

	idField, hasID := c.definition.Field("id")
	fieldSet := make(map[string]struct{})
	for _, record := range records {
		if hasID && idField.Type == schema.ColumnTypeString {
			if _, ok := record["id"]; !ok {
				record["id"] = uuid.New().String()
			}
		}
		for name := range record {
			if _, ok := c.definition.Field(name); !ok {
				return schema.NotFoundError{Collection: c.definition.Name, Field: name}
			}
			fieldSet[name] = struct{}{}
		}
	}

	fields := make([]string, 0, len(fieldSet))
	for name := range fieldSet {
		fields = append(fields, name)
	}
	sort.Strings(fields)

	quoted := make([]string, len(fields))
	for i, name := range fields {
		field, _ := c.definition.Field(name)
		quoted[i] = quoteIdentifier(field.Storage(name))
	}

	var valuesClauses []string
	var params []any
	for _, record := range records {
		placeholders := make([]string, len(fields))
		for i, name := range fields {
			placeholders[i] = "?"
			params = append(params, record[name])
		}
		valuesClauses = append(valuesClauses, "("+strings.Join(placeholders, ", ")+")")
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s;",
		quoteIdentifier(c.definition.Name),
		strings.Join(quoted, ", "),
		strings.Join(valuesClauses, ", "))

	if _, err := c.db.ExecContext(ctx, query, params...); err != nil {
		return fmt.Errorf("failed to insert into collection '%s': %w", c.definition.Name, err)
	}
	return nil
}
