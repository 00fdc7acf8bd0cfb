package drift

// Schema is an ordered mapping from column names to ColumnTypes.
// It allows one to define new columns, look up column types by
// name, and compare column layouts between Partitions.
type Schema interface {
	CreateColumn(colName string, columnType ColumnType) (Schema, error) // CreateColumn defines a new column within the Schema
	GetColumnType(colName string) (ColumnType, error)                   // GetColumnType returns the ColumnType of a column by name
	HasColumn(colName string) bool                                      // HasColumn returns true iff this Schema contains a column with the given name
	ColumnNames() []string                                              // ColumnNames returns the names in the Schema, in column order
	ColumnTypes() []ColumnType                                          // ColumnTypes returns the types in the Schema, in column order
	NumColumns() int                                                    // NumColumns returns the number of columns in this Schema
	Equals(other Schema) error                                          // Equals returns nil iff this and another Schema are equivalent
	Clone() Schema                                                      // Clone returns a copy of this Schema
	ForEachColumn(fn func(name string, ctype ColumnType) error) error   // ForEachColumn iterates over the columns in this Schema, in column order
}
