// Package partition provides Drift's built-in Partition implementation: an
// immutable, in-memory columnar batch backed by typed vectors.
package partition

import (
	"fmt"
	"log"

	"github.com/go-drift/drift"
	"github.com/go-drift/drift/errors"
	"github.com/go-drift/drift/schema"
	uuid "github.com/gofrs/uuid"
)

// partitionImpl is Drift's internal implementation of Partition
type partitionImpl struct {
	id        string
	schema    drift.Schema
	cols      []drift.Column
	byName    map[string]drift.Column
	numRows   int
	sizeBytes int64
}

// createPartitionImpl assembles a Partition from columns already matching sch
func createPartitionImpl(sch drift.Schema, cols []drift.Column) (*partitionImpl, error) {
	id, err := uuid.NewV4()
	if err != nil {
		log.Fatalf("failed to generate UUID for Partition: %v", err)
	}
	numRows := 0
	if len(cols) > 0 {
		numRows = cols[0].Len()
	}
	byName := make(map[string]drift.Column, len(cols))
	var sizeBytes int64
	for _, col := range cols {
		if col.Len() != numRows {
			return nil, fmt.Errorf("Column %s has %d rows, expected %d", col.Name(), col.Len(), numRows)
		}
		byName[col.Name()] = col
		if v, ok := col.(*vector); ok {
			sizeBytes += v.sizeBytes()
		}
	}
	return &partitionImpl{
		id:        id.String(),
		schema:    sch,
		cols:      cols,
		byName:    byName,
		numRows:   numRows,
		sizeBytes: sizeBytes,
	}, nil
}

// FromColumnList constructs a Partition from an ordered list of Columns,
// deriving its Schema from the column names and types. All Columns must have
// equal lengths.
func FromColumnList(cols []drift.Column) (drift.Partition, error) {
	sch := schema.CreateSchema()
	for _, col := range cols {
		if _, err := sch.CreateColumn(col.Name(), col.Type()); err != nil {
			return nil, err
		}
	}
	return createPartitionImpl(sch, cols)
}

// FromColumns constructs a Partition from a Schema and a map of column names to
// typed value slices ([]int64, []float64, []string or []bool).
func FromColumns(sch drift.Schema, data map[string]interface{}) (drift.Partition, error) {
	cols := make([]drift.Column, 0, sch.NumColumns())
	err := sch.ForEachColumn(func(name string, ctype drift.ColumnType) error {
		values, ok := data[name]
		if !ok {
			return errors.ColumnMissingError{Name: name}
		}
		col, err := NewColumn(name, ctype, values)
		if err != nil {
			return err
		}
		cols = append(cols, col)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return createPartitionImpl(sch, cols)
}

// ID retrieves the ID of this Partition
func (p *partitionImpl) ID() string {
	return p.id
}

// GetSchema returns the Schema for this Partition
func (p *partitionImpl) GetSchema() drift.Schema {
	return p.schema
}

// GetNumRows retrieves the number of rows in this Partition
func (p *partitionImpl) GetNumRows() int {
	return p.numRows
}

// GetSizeBytes returns the approximate in-memory size of this Partition
func (p *partitionImpl) GetSizeBytes() int64 {
	return p.sizeBytes
}

// GetColumn returns a named Column from this Partition
func (p *partitionImpl) GetColumn(colName string) (drift.Column, error) {
	col, ok := p.byName[colName]
	if !ok {
		return nil, errors.ColumnMissingError{Name: colName}
	}
	return col, nil
}

// Metadata extracts complete metadata from this Partition
func (p *partitionImpl) Metadata() drift.PartitionMetadata {
	return drift.PartitionMetadata{
		NumRows:   int64(p.numRows),
		SizeBytes: p.sizeBytes,
	}
}

// Take constructs a new Partition containing the given row indices of p, in
// order. Indices may repeat and must be within range.
func Take(p drift.Partition, indices []int) (drift.Partition, error) {
	b := CreateBuilder(p.GetSchema().Clone())
	names := p.GetSchema().ColumnNames()
	row := make(map[string]interface{}, len(names))
	cols := make([]drift.Column, len(names))
	for i, name := range names {
		col, err := p.GetColumn(name)
		if err != nil {
			return nil, err
		}
		cols[i] = col
	}
	for _, idx := range indices {
		if idx < 0 || idx >= p.GetNumRows() {
			return nil, fmt.Errorf("Row index %d out of range for Partition with %d rows", idx, p.GetNumRows())
		}
		for i, name := range names {
			row[name] = cols[i].Value(idx)
		}
		if err := b.AppendRow(row); err != nil {
			return nil, err
		}
	}
	return b.Build()
}
