package execution

import (
	"github.com/go-drift/drift"
	"github.com/go-drift/drift/errors"
	"github.com/go-drift/drift/partition"
)

// Accumulator folds Partitions into a single scalar value
type Accumulator interface {
	Name() string                          // Name labels the output column for this Accumulator
	Type() drift.ColumnType                // Type is the ColumnType of the produced value
	Accumulate(part drift.Partition) error // Accumulate adds a Partition to this Accumulator
	Value() interface{}                    // Value returns the accumulated result
}

// Adder returns a factory producing Sum Accumulators for a numeric column
func Adder(colName string) func() Accumulator {
	return func() Accumulator {
		return &Sum{colName: colName}
	}
}

// Sum sums a numeric column across Partitions
type Sum struct {
	colName string
	sum     float64
}

// Name labels the output column for this Accumulator
func (a *Sum) Name() string {
	return a.colName
}

// Type is the ColumnType of the produced value
func (a *Sum) Type() drift.ColumnType {
	return &drift.Float64ColumnType{}
}

// Accumulate adds a Partition to this Accumulator
func (a *Sum) Accumulate(part drift.Partition) error {
	col, err := part.GetColumn(a.colName)
	if err != nil {
		return err
	}
	switch col.Type().(type) {
	case *drift.Int64ColumnType:
		vals, err := col.Int64Values()
		if err != nil {
			return err
		}
		for _, v := range vals {
			a.sum += float64(v)
		}
	case *drift.Float64ColumnType:
		vals, err := col.Float64Values()
		if err != nil {
			return err
		}
		for _, v := range vals {
			a.sum += v
		}
	default:
		return errors.TypeMismatchError{Name: a.colName, Expected: "numeric", Actual: col.Type().String()}
	}
	return nil
}

// Value returns the accumulated result
func (a *Sum) Value() interface{} {
	return a.sum
}

// Counter returns a factory producing Count Accumulators
func Counter(name string) func() Accumulator {
	return func() Accumulator {
		return &Count{name: name}
	}
}

// Count counts rows across Partitions
type Count struct {
	name  string
	count int64
}

// Name labels the output column for this Accumulator
func (a *Count) Name() string {
	return a.name
}

// Type is the ColumnType of the produced value
func (a *Count) Type() drift.ColumnType {
	return &drift.Int64ColumnType{}
}

// Accumulate adds a Partition to this Accumulator
func (a *Count) Accumulate(part drift.Partition) error {
	a.count += int64(part.GetNumRows())
	return nil
}

// Value returns the accumulated result
func (a *Count) Value() interface{} {
	return a.count
}

// aggregateInstruction folds its input Partitions into a single one-row Partition
type aggregateInstruction struct {
	factories []func() Accumulator
}

// Aggregate returns an Instruction which reduces all input Partitions to a
// single one-row Partition holding one column per Accumulator. Fresh
// Accumulators are produced from the supplied factories for every task, so a
// single Instruction value may be reused across Submits.
func Aggregate(factories ...func() Accumulator) drift.Instruction {
	return &aggregateInstruction{factories: factories}
}

// Name identifies this kind of Instruction
func (s *aggregateInstruction) Name() string {
	return "aggregate"
}

// RunWorker applies this Instruction to a list of Partitions
func (s *aggregateInstruction) RunWorker(wctx drift.WorkerContext, previous []drift.Partition) ([]drift.Partition, error) {
	accs := make([]Accumulator, len(s.factories))
	for i, f := range s.factories {
		accs[i] = f()
	}
	for _, part := range previous {
		for _, a := range accs {
			if err := a.Accumulate(part); err != nil {
				return nil, err
			}
		}
	}
	cols := make([]drift.Column, len(accs))
	for i, a := range accs {
		col, err := partition.NewColumn(a.Name(), a.Type(), singleton(a.Type(), a.Value()))
		if err != nil {
			return nil, err
		}
		cols[i] = col
	}
	out, err := partition.FromColumnList(cols)
	if err != nil {
		return nil, err
	}
	return []drift.Partition{out}, nil
}

// singleton wraps one accumulated value in the slice shape NewColumn expects
func singleton(ctype drift.ColumnType, value interface{}) interface{} {
	switch ctype.(type) {
	case *drift.Int64ColumnType:
		return []int64{value.(int64)}
	case *drift.Float64ColumnType:
		return []float64{value.(float64)}
	case *drift.StringColumnType:
		return []string{value.(string)}
	default:
		return []bool{value.(bool)}
	}
}
