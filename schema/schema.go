// Package schema provides Drift's built-in Schema implementation: an ordered
// mapping from column names to ColumnTypes.
package schema

import (
	"fmt"
	"reflect"

	"github.com/go-drift/drift"
	"github.com/go-drift/drift/errors"
)

type namedColumn struct {
	name  string
	ctype drift.ColumnType
}

// schema is an ordered mapping from column names to ColumnTypes
type schema struct {
	columns []namedColumn
	byName  map[string]int
}

// CreateSchema is a factory for Schemas
func CreateSchema() drift.Schema {
	return &schema{
		columns: make([]namedColumn, 0),
		byName:  make(map[string]int),
	}
}

// CreateColumn defines a new column within the Schema
func (s *schema) CreateColumn(colName string, columnType drift.ColumnType) (drift.Schema, error) {
	if _, exists := s.byName[colName]; exists {
		return nil, fmt.Errorf("Schema already contains column with name %s", colName)
	}
	s.byName[colName] = len(s.columns)
	s.columns = append(s.columns, namedColumn{name: colName, ctype: columnType})
	return s, nil
}

// GetColumnType returns the ColumnType of a column by name
func (s *schema) GetColumnType(colName string) (drift.ColumnType, error) {
	idx, ok := s.byName[colName]
	if !ok {
		return nil, errors.ColumnMissingError{Name: colName}
	}
	return s.columns[idx].ctype, nil
}

// HasColumn returns true iff this schema contains a column with the given name
func (s *schema) HasColumn(colName string) bool {
	_, ok := s.byName[colName]
	return ok
}

// ColumnNames returns the names in the schema, in column order
func (s *schema) ColumnNames() []string {
	names := make([]string, len(s.columns))
	for i, col := range s.columns {
		names[i] = col.name
	}
	return names
}

// ColumnTypes returns the types in the schema, in column order
func (s *schema) ColumnTypes() []drift.ColumnType {
	types := make([]drift.ColumnType, len(s.columns))
	for i, col := range s.columns {
		types[i] = col.ctype
	}
	return types
}

// NumColumns returns the number of columns in this Schema
func (s *schema) NumColumns() int {
	return len(s.columns)
}

// Equals returns nil iff this and another Schema are equivalent
func (s *schema) Equals(other drift.Schema) error {
	if s.NumColumns() != other.NumColumns() {
		return fmt.Errorf("Schemas have unequal numbers of columns")
	}
	otherNames := other.ColumnNames()
	otherTypes := other.ColumnTypes()
	for i, col := range s.columns {
		if col.name != otherNames[i] {
			return fmt.Errorf("Column %d name %s does not match %s", i, col.name, otherNames[i])
		}
		if reflect.TypeOf(col.ctype) != reflect.TypeOf(otherTypes[i]) {
			return fmt.Errorf("Column %s types do not match", col.name)
		}
	}
	return nil
}

// Clone returns a copy of this Schema
func (s *schema) Clone() drift.Schema {
	newColumns := make([]namedColumn, len(s.columns))
	copy(newColumns, s.columns)
	newByName := make(map[string]int, len(s.byName))
	for k, v := range s.byName {
		newByName[k] = v
	}
	return &schema{columns: newColumns, byName: newByName}
}

// ForEachColumn iterates over the columns in this Schema, in column order
func (s *schema) ForEachColumn(fn func(name string, ctype drift.ColumnType) error) error {
	for _, col := range s.columns {
		if err := fn(col.name, col.ctype); err != nil {
			return err
		}
	}
	return nil
}
