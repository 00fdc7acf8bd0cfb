package partition

import (
	"github.com/go-drift/drift"
	"github.com/go-drift/drift/errors"
)

// A Builder accumulates rows and produces an immutable Partition. A Builder is
// not safe for concurrent use, and must not be reused after Build.
type Builder struct {
	schema  drift.Schema
	vectors []*vector
	numRows int
}

// CreateBuilder is a factory for Builders, accumulating rows matching the given Schema
func CreateBuilder(sch drift.Schema) *Builder {
	names := sch.ColumnNames()
	types := sch.ColumnTypes()
	vectors := make([]*vector, len(names))
	for i := range names {
		vectors[i] = &vector{name: names[i], ctype: types[i]}
	}
	return &Builder{schema: sch, vectors: vectors}
}

// AppendRow adds one row of values to the Builder. values must contain an entry
// for every column in the Builder's Schema.
func (b *Builder) AppendRow(values map[string]interface{}) error {
	for _, v := range b.vectors {
		value, ok := values[v.name]
		if !ok {
			return errors.ColumnMissingError{Name: v.name}
		}
		if err := v.appendValue(value); err != nil {
			return err
		}
	}
	b.numRows++
	return nil
}

// NumRows returns the number of rows accumulated so far
func (b *Builder) NumRows() int {
	return b.numRows
}

// Build produces an immutable Partition from the accumulated rows
func (b *Builder) Build() (drift.Partition, error) {
	cols := make([]drift.Column, len(b.vectors))
	for i, v := range b.vectors {
		cols[i] = v
	}
	return createPartitionImpl(b.schema, cols)
}
