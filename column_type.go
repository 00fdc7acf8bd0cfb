package drift

// ColumnType describes the type of data stored in a Partition Column
type ColumnType interface {
	// String produces a human-readable name for this ColumnType
	String() string
}

// Int64ColumnType is a ColumnType for 64-bit signed integer data
type Int64ColumnType struct{}

// String produces a human-readable name for this ColumnType
func (t *Int64ColumnType) String() string {
	return "int64"
}

// Float64ColumnType is a ColumnType for 64-bit floating point data
type Float64ColumnType struct{}

// String produces a human-readable name for this ColumnType
func (t *Float64ColumnType) String() string {
	return "float64"
}

// StringColumnType is a ColumnType for variable-length string data
type StringColumnType struct{}

// String produces a human-readable name for this ColumnType
func (t *StringColumnType) String() string {
	return "string"
}

// BoolColumnType is a ColumnType for boolean data
type BoolColumnType struct{}

// String produces a human-readable name for this ColumnType
func (t *BoolColumnType) String() string {
	return "bool"
}
