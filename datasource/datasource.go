// Package datasource reads and writes Partitions in Drift's supported formats:
// delimited text (CSV), line-delimited JSON (JSONL), and Drift's native binary
// columnar format.
package datasource

import (
	"io"
	"os"

	"github.com/go-drift/drift"
	"github.com/go-drift/drift/errors"
	"github.com/go-drift/drift/partition"
)

// Format identifies a datasource serialization format
type Format string

const (
	// FormatCSV is delimited text with configurable delimiter and header
	FormatCSV Format = "csv"
	// FormatJSONL is line-delimited JSON records
	FormatJSONL Format = "jsonl"
	// FormatColumnar is Drift's native binary columnar format
	FormatColumnar Format = "columnar"
)

// Compression identifies the compression applied to columnar payloads
type Compression string

const (
	// CompressionNone stores payloads uncompressed
	CompressionNone Compression = "none"
	// CompressionLZ4 compresses payloads with lz4
	CompressionLZ4 Compression = "lz4"
)

// ReadOptions configures a Read
type ReadOptions struct {
	Columns     []string // Read only this subset of columns, in this order. Defaults to all columns.
	Limit       int      // The maximum number of rows to read. Defaults to no limit.
	Delimiter   rune     // The delimiter separating columns in delimited text. Defaults to ,
	HeaderLines int      // The number of header lines to ignore from the beginning of delimited text. Defaults to 0.
	SkipRows    int      // The number of data rows to skip after any header. Defaults to 0.
}

// WriteOptions configures a Write or WritePartitioned
type WriteOptions struct {
	Delimiter   rune        // The delimiter separating columns in delimited text. Defaults to ,
	WriteHeader bool        // Whether to emit a header line of column names for delimited text
	Compression Compression // Compression for columnar payloads. Defaults to none.
	PartitionBy []string    // For WritePartitioned, the columns whose value combinations key the output layout
}

func (o *ReadOptions) delimiter() rune {
	if o == nil || o.Delimiter == 0 {
		return ','
	}
	return o.Delimiter
}

func (o *WriteOptions) delimiter() rune {
	if o == nil || o.Delimiter == 0 {
		return ','
	}
	return o.Delimiter
}

func (o *WriteOptions) compression() Compression {
	if o == nil || o.Compression == "" {
		return CompressionNone
	}
	return o.Compression
}

// Read materializes one Partition from a source in the given format. For CSV
// and JSONL a Schema is required; for the columnar format the embedded Schema
// is used, and a non-nil sch is verified against it. The format is validated
// eagerly, before any data is touched.
func Read(r io.Reader, format Format, sch drift.Schema, opts *ReadOptions) (drift.Partition, error) {
	switch format {
	case FormatCSV:
		return readCSV(r, sch, opts)
	case FormatJSONL:
		return readJSONL(r, sch, opts)
	case FormatColumnar:
		return readColumnar(r, sch, opts)
	default:
		return nil, errors.UnsupportedFormatError{Format: string(format)}
	}
}

// ReadFile materializes one Partition from a file in the given format
func ReadFile(path string, format Format, sch drift.Schema, opts *ReadOptions) (drift.Partition, error) {
	// validate the format before opening anything
	switch format {
	case FormatCSV, FormatJSONL, FormatColumnar:
	default:
		return nil, errors.UnsupportedFormatError{Format: string(format)}
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f, format, sch, opts)
}

// Write persists a Partition to a sink in the given format. The format is
// validated eagerly, before any data is touched.
func Write(w io.Writer, part drift.Partition, format Format, opts *WriteOptions) error {
	switch format {
	case FormatCSV:
		return writeCSV(w, part, opts)
	case FormatJSONL:
		return writeJSONL(w, part)
	case FormatColumnar:
		return writeColumnar(w, part, opts)
	default:
		return errors.UnsupportedFormatError{Format: string(format)}
	}
}

// WriteFile persists a Partition to a file in the given format
func WriteFile(path string, part drift.Partition, format Format, opts *WriteOptions) error {
	switch format {
	case FormatCSV, FormatJSONL, FormatColumnar:
	default:
		return errors.UnsupportedFormatError{Format: string(format)}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, part, format, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// applyReadModifiers applies column-subset selection and the row limit to a
// freshly materialized Partition
func applyReadModifiers(part drift.Partition, opts *ReadOptions) (drift.Partition, error) {
	if opts == nil {
		return part, nil
	}
	if opts.Limit > 0 && part.GetNumRows() > opts.Limit {
		indices := make([]int, opts.Limit)
		for i := range indices {
			indices[i] = i
		}
		limited, err := partition.Take(part, indices)
		if err != nil {
			return nil, err
		}
		part = limited
	}
	if len(opts.Columns) > 0 {
		cols := make([]drift.Column, 0, len(opts.Columns))
		for _, name := range opts.Columns {
			col, err := part.GetColumn(name)
			if err != nil {
				return nil, err
			}
			cols = append(cols, col)
		}
		return partition.FromColumnList(cols)
	}
	return part, nil
}
