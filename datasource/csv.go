package datasource

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/go-drift/drift"
	"github.com/go-drift/drift/partition"
)

// readCSV parses delimited text to produce a Partition, mapping fields to
// Schema columns by position
func readCSV(r io.Reader, sch drift.Schema, opts *ReadOptions) (drift.Partition, error) {
	if sch == nil {
		return nil, fmt.Errorf("Reading %s data requires a schema", FormatCSV)
	}
	reader := csv.NewReader(r)
	reader.Comma = opts.delimiter()
	reader.FieldsPerRecord = sch.NumColumns()
	reader.ReuseRecord = true

	headerLines := 0
	skipRows := 0
	limit := 0
	if opts != nil {
		headerLines = opts.HeaderLines
		skipRows = opts.SkipRows
		limit = opts.Limit
	}
	// ignore header lines, if configured to do so
	for i := 0; i < headerLines; i++ {
		if _, err := reader.Read(); err != nil {
			return nil, err
		}
	}
	for i := 0; i < skipRows; i++ {
		if _, err := reader.Read(); err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
	}

	names := sch.ColumnNames()
	types := sch.ColumnTypes()
	b := partition.CreateBuilder(sch.Clone())
	row := make(map[string]interface{}, len(names))
	for limit <= 0 || b.NumRows() < limit {
		record, err := reader.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		for i, name := range names {
			value, err := parseField(record[i], name, types[i])
			if err != nil {
				return nil, err
			}
			row[name] = value
		}
		if err := b.AppendRow(row); err != nil {
			return nil, err
		}
	}
	part, err := b.Build()
	if err != nil {
		return nil, err
	}
	return applyReadModifiers(part, &ReadOptions{Columns: columnsOf(opts)})
}

func columnsOf(opts *ReadOptions) []string {
	if opts == nil {
		return nil
	}
	return opts.Columns
}

// parseField converts one delimited-text field into a typed column value
func parseField(field string, colName string, ctype drift.ColumnType) (interface{}, error) {
	switch ctype.(type) {
	case *drift.Int64ColumnType:
		n, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("Column %s was not an integer. Was: %q", colName, field)
		}
		return n, nil
	case *drift.Float64ColumnType:
		n, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("Column %s was not a number. Was: %q", colName, field)
		}
		return n, nil
	case *drift.BoolColumnType:
		b, err := strconv.ParseBool(field)
		if err != nil {
			return nil, fmt.Errorf("Column %s was not a boolean. Was: %q", colName, field)
		}
		return b, nil
	case *drift.StringColumnType:
		return field, nil
	default:
		return nil, fmt.Errorf("CSV parsing does not support column type %T", ctype)
	}
}

// writeCSV persists a Partition as delimited text
func writeCSV(w io.Writer, part drift.Partition, opts *WriteOptions) error {
	writer := csv.NewWriter(w)
	writer.Comma = opts.delimiter()

	names := part.GetSchema().ColumnNames()
	if opts != nil && opts.WriteHeader {
		if err := writer.Write(names); err != nil {
			return err
		}
	}
	cols := make([]drift.Column, len(names))
	for i, name := range names {
		col, err := part.GetColumn(name)
		if err != nil {
			return err
		}
		cols[i] = col
	}
	record := make([]string, len(names))
	for row := 0; row < part.GetNumRows(); row++ {
		for i, col := range cols {
			record[i] = formatValue(col.Value(row))
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// formatValue renders a typed column value as a delimited-text field
func formatValue(value interface{}) string {
	switch v := value.(type) {
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}
