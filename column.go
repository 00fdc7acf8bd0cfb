package drift

// Column is an immutable, named, typed vector of values within a Partition.
// Typed accessors return an error if the Column does not hold data of the
// requested type.
type Column interface {
	Name() string                      // Name returns the name of this Column
	Type() ColumnType                  // Type returns the ColumnType of this Column
	Len() int                          // Len returns the number of values in this Column
	Int64Values() ([]int64, error)     // Int64Values returns the underlying data iff this is an Int64ColumnType Column
	Float64Values() ([]float64, error) // Float64Values returns the underlying data iff this is a Float64ColumnType Column
	StringValues() ([]string, error)   // StringValues returns the underlying data iff this is a StringColumnType Column
	BoolValues() ([]bool, error)       // BoolValues returns the underlying data iff this is a BoolColumnType Column
	Value(i int) interface{}           // Value returns the i-th value of this Column, regardless of type
}
