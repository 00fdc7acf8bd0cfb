package partition

import (
	"fmt"

	"github.com/go-drift/drift"
	"github.com/go-drift/drift/errors"
)

// vector is Drift's internal implementation of Column: a named, typed,
// immutable slice of values. At most one of the data slices is non-nil,
// matching ctype; a zero-row vector may have all-nil slices.
type vector struct {
	name   string
	ctype  drift.ColumnType
	ints   []int64
	floats []float64
	strs   []string
	bools  []bool
}

// NewColumn constructs a Column from a typed slice of values. The dynamic type
// of values must match ctype: []int64, []float64, []string or []bool.
func NewColumn(name string, ctype drift.ColumnType, values interface{}) (drift.Column, error) {
	v := &vector{name: name, ctype: ctype}
	switch ctype.(type) {
	case *drift.Int64ColumnType:
		data, ok := values.([]int64)
		if !ok {
			return nil, errors.TypeMismatchError{Name: name, Expected: "int64", Actual: valueTypeName(values)}
		}
		v.ints = data
	case *drift.Float64ColumnType:
		data, ok := values.([]float64)
		if !ok {
			return nil, errors.TypeMismatchError{Name: name, Expected: "float64", Actual: valueTypeName(values)}
		}
		v.floats = data
	case *drift.StringColumnType:
		data, ok := values.([]string)
		if !ok {
			return nil, errors.TypeMismatchError{Name: name, Expected: "string", Actual: valueTypeName(values)}
		}
		v.strs = data
	case *drift.BoolColumnType:
		data, ok := values.([]bool)
		if !ok {
			return nil, errors.TypeMismatchError{Name: name, Expected: "bool", Actual: valueTypeName(values)}
		}
		v.bools = data
	default:
		return nil, fmt.Errorf("Columns do not support column type %T", ctype)
	}
	return v, nil
}

// valueTypeName translates a dynamic value or slice type to the matching
// column-type name, so TypeMismatchError messages stay in one vocabulary
func valueTypeName(value interface{}) string {
	switch value.(type) {
	case int64, int, []int64:
		return "int64"
	case float64, []float64:
		return "float64"
	case string, []string:
		return "string"
	case bool, []bool:
		return "bool"
	default:
		return fmt.Sprintf("%T", value)
	}
}

// Name returns the name of this Column
func (v *vector) Name() string {
	return v.name
}

// Type returns the ColumnType of this Column
func (v *vector) Type() drift.ColumnType {
	return v.ctype
}

// Len returns the number of values in this Column
func (v *vector) Len() int {
	switch v.ctype.(type) {
	case *drift.Int64ColumnType:
		return len(v.ints)
	case *drift.Float64ColumnType:
		return len(v.floats)
	case *drift.StringColumnType:
		return len(v.strs)
	default:
		return len(v.bools)
	}
}

// Int64Values returns the underlying data iff this is an Int64ColumnType Column.
// The slice may be nil for a zero-row Column.
func (v *vector) Int64Values() ([]int64, error) {
	if _, ok := v.ctype.(*drift.Int64ColumnType); !ok {
		return nil, errors.TypeMismatchError{Name: v.name, Expected: "int64", Actual: v.ctype.String()}
	}
	return v.ints, nil
}

// Float64Values returns the underlying data iff this is a Float64ColumnType Column.
// The slice may be nil for a zero-row Column.
func (v *vector) Float64Values() ([]float64, error) {
	if _, ok := v.ctype.(*drift.Float64ColumnType); !ok {
		return nil, errors.TypeMismatchError{Name: v.name, Expected: "float64", Actual: v.ctype.String()}
	}
	return v.floats, nil
}

// StringValues returns the underlying data iff this is a StringColumnType Column.
// The slice may be nil for a zero-row Column.
func (v *vector) StringValues() ([]string, error) {
	if _, ok := v.ctype.(*drift.StringColumnType); !ok {
		return nil, errors.TypeMismatchError{Name: v.name, Expected: "string", Actual: v.ctype.String()}
	}
	return v.strs, nil
}

// BoolValues returns the underlying data iff this is a BoolColumnType Column.
// The slice may be nil for a zero-row Column.
func (v *vector) BoolValues() ([]bool, error) {
	if _, ok := v.ctype.(*drift.BoolColumnType); !ok {
		return nil, errors.TypeMismatchError{Name: v.name, Expected: "bool", Actual: v.ctype.String()}
	}
	return v.bools, nil
}

// Value returns the i-th value of this Column, regardless of type
func (v *vector) Value(i int) interface{} {
	switch v.ctype.(type) {
	case *drift.Int64ColumnType:
		return v.ints[i]
	case *drift.Float64ColumnType:
		return v.floats[i]
	case *drift.StringColumnType:
		return v.strs[i]
	default:
		return v.bools[i]
	}
}

// sizeBytes approximates the in-memory size of this Column
func (v *vector) sizeBytes() int64 {
	switch v.ctype.(type) {
	case *drift.Int64ColumnType:
		return int64(8 * len(v.ints))
	case *drift.Float64ColumnType:
		return int64(8 * len(v.floats))
	case *drift.StringColumnType:
		var size int64
		for _, s := range v.strs {
			size += int64(len(s)) + 16 // string header
		}
		return size
	default:
		return int64(len(v.bools))
	}
}

// appendValue grows this Column by one value, coercing compatible
// dynamic types. Used only while a Builder owns the vector.
func (v *vector) appendValue(value interface{}) error {
	switch v.ctype.(type) {
	case *drift.Int64ColumnType:
		switch n := value.(type) {
		case int64:
			v.ints = append(v.ints, n)
		case int:
			v.ints = append(v.ints, int64(n))
		default:
			return errors.TypeMismatchError{Name: v.name, Expected: "int64", Actual: valueTypeName(value)}
		}
	case *drift.Float64ColumnType:
		switch n := value.(type) {
		case float64:
			v.floats = append(v.floats, n)
		case int:
			v.floats = append(v.floats, float64(n))
		case int64:
			v.floats = append(v.floats, float64(n))
		default:
			return errors.TypeMismatchError{Name: v.name, Expected: "float64", Actual: valueTypeName(value)}
		}
	case *drift.StringColumnType:
		s, ok := value.(string)
		if !ok {
			return errors.TypeMismatchError{Name: v.name, Expected: "string", Actual: valueTypeName(value)}
		}
		v.strs = append(v.strs, s)
	case *drift.BoolColumnType:
		b, ok := value.(bool)
		if !ok {
			return errors.TypeMismatchError{Name: v.name, Expected: "bool", Actual: valueTypeName(value)}
		}
		v.bools = append(v.bools, b)
	default:
		return fmt.Errorf("Columns do not support column type %T", v.ctype)
	}
	return nil
}
