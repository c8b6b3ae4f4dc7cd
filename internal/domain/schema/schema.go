package schema

import (
	"context"
	"strings"

	apperrors "github.com/nv0skar/Noisier/pkg/errors"
)

// TableField is a column of a table or view
type TableField struct {
	Name            string `json:"name" toml:"name"`
	IsAutoIncrement *bool  `json:"isAutoIncrement,omitempty" toml:"isAutoIncrement,omitempty"`
}

// AutoIncrement reports whether the field is known to be auto-incremented
func (f TableField) AutoIncrement() bool {
	return f.IsAutoIncrement != nil && *f.IsAutoIncrement
}

// TableSchema describes a table or view. PrimaryKeyField is "" when the table
// has none.
type TableSchema struct {
	Name            string       `json:"name"`
	Fields          []TableField `json:"fields"`
	PrimaryKeyField string       `json:"primaryKeyField"`
	IsView          bool         `json:"isView"`
}

// FieldNames returns the field names in column order
func (t *TableSchema) FieldNames() []string {
	names := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		names[i] = f.Name
	}
	return names
}

// Field finds a field by name case-insensitively, returning its canonical casing
func (t *TableSchema) Field(name string) (TableField, bool) {
	for _, f := range t.Fields {
		if strings.EqualFold(f.Name, name) {
			return f, true
		}
	}
	return TableField{}, false
}

// Loader reads table metadata from a live data store
type Loader interface {
	LoadTables(ctx context.Context) ([]TableSchema, error)
}

// DatabaseSchema is an immutable snapshot of the data store's tables. It is
// populated once; later Load calls fail.
type DatabaseSchema struct {
	tables []TableSchema
	loaded bool
}

// NewDatabaseSchema returns an empty, unloaded schema
func NewDatabaseSchema() *DatabaseSchema {
	return &DatabaseSchema{}
}

// Load fills the schema from loader. Calling it twice returns
// ErrSchemaAlreadyLoaded and leaves the first snapshot untouched.
func (s *DatabaseSchema) Load(ctx context.Context, loader Loader) error {
	if s.loaded {
		return apperrors.ErrSchemaAlreadyLoaded
	}
	tables, err := loader.LoadTables(ctx)
	if err != nil {
		return err
	}
	s.tables = tables
	s.loaded = true
	return nil
}

// Loaded reports whether Load has succeeded
func (s *DatabaseSchema) Loaded() bool {
	return s.loaded
}

// Tables returns the tables in source order
func (s *DatabaseSchema) Tables() []TableSchema {
	out := make([]TableSchema, len(s.tables))
	copy(out, s.tables)
	return out
}

// Table returns a table by name, case-insensitively
func (s *DatabaseSchema) Table(name string) (*TableSchema, bool) {
	for i := range s.tables {
		if strings.EqualFold(s.tables[i].Name, name) {
			return &s.tables[i], true
		}
	}
	return nil, false
}
