package drift

// A Partition is an immutable, in-memory, columnar batch of data with a Schema.
// Partitions are produced by datasources or by prior Instructions, and are never
// mutated in place - every transform produces a new Partition.
type Partition interface {
	ID() string                            // ID returns the identifier for this Partition
	GetSchema() Schema                     // GetSchema returns the Schema for this Partition
	GetNumRows() int                       // GetNumRows returns the number of rows in this Partition
	GetSizeBytes() int64                   // GetSizeBytes returns the approximate in-memory size of this Partition, in bytes
	GetColumn(colName string) (Column, error) // GetColumn returns a named Column from this Partition
	Metadata() PartitionMetadata           // Metadata extracts complete metadata from this materialized Partition
}

// PartitionMetadata describes a materialized Partition
type PartitionMetadata struct {
	NumRows   int64
	SizeBytes int64
}

// PartialPartitionMetadata is a forward-declared, possibly-incomplete description
// of a result Partition, available before the Partition is materialized. It is a
// hint for planning logic, not a contract - the materialized Partition's actual
// metadata is not required to match.
type PartialPartitionMetadata struct {
	NumRows      int64
	SizeBytes    int64
	HasNumRows   bool
	HasSizeBytes bool
}

// UnknownPartialMetadata returns a PartialPartitionMetadata with no known fields
func UnknownPartialMetadata() PartialPartitionMetadata {
	return PartialPartitionMetadata{}
}

// MaterializedResult pairs a result Partition with its final metadata
type MaterializedResult struct {
	Partition Partition
	Metadata  PartitionMetadata
}
