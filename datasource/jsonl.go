package datasource

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/go-drift/drift"
	"github.com/go-drift/drift/partition"
	"github.com/tidwall/gjson"
)

// readJSONL parses line-delimited JSON records to produce a Partition. Columns
// are extracted lazily from each record by name, which may be a gjson path
// (e.g. "meta.id" resolves a nested field); values which do not correspond to
// a Schema column are ignored.
func readJSONL(r io.Reader, sch drift.Schema, opts *ReadOptions) (drift.Partition, error) {
	if sch == nil {
		return nil, fmt.Errorf("Reading %s data requires a schema", FormatJSONL)
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), bufio.MaxScanTokenSize)

	skipRows := 0
	limit := 0
	if opts != nil {
		skipRows = opts.SkipRows
		limit = opts.Limit
	}
	for i := 0; i < skipRows; i++ {
		if !scanner.Scan() {
			break
		}
	}

	names := sch.ColumnNames()
	types := sch.ColumnTypes()
	b := partition.CreateBuilder(sch.Clone())
	row := make(map[string]interface{}, len(names))
	for (limit <= 0 || b.NumRows() < limit) && scanner.Scan() {
		record := gjson.Parse(scanner.Text())
		for i, name := range names {
			value, err := extractJSONValue(record, name, types[i])
			if err != nil {
				return nil, err
			}
			row[name] = value
		}
		if err := b.AppendRow(row); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	part, err := b.Build()
	if err != nil {
		return nil, err
	}
	return applyReadModifiers(part, &ReadOptions{Columns: columnsOf(opts)})
}

// extractJSONValue pulls one typed column value out of a parsed JSONL record
func extractJSONValue(record gjson.Result, colName string, ctype drift.ColumnType) (interface{}, error) {
	result := record.Get(colName)
	if !result.Exists() {
		return nil, fmt.Errorf("Column %s missing from JSONL record", colName)
	}
	switch ctype.(type) {
	case *drift.Int64ColumnType:
		if result.Type != gjson.Number {
			return nil, fmt.Errorf("Column %s was not a number. Was: %s", colName, result.Raw)
		}
		return result.Int(), nil
	case *drift.Float64ColumnType:
		if result.Type != gjson.Number {
			return nil, fmt.Errorf("Column %s was not a number. Was: %s", colName, result.Raw)
		}
		return result.Float(), nil
	case *drift.BoolColumnType:
		if !result.IsBool() {
			return nil, fmt.Errorf("Column %s was not a boolean. Was: %s", colName, result.Raw)
		}
		return result.Bool(), nil
	case *drift.StringColumnType:
		if result.Type != gjson.String {
			return nil, fmt.Errorf("Column %s was not a string. Was: %s", colName, result.Raw)
		}
		return result.String(), nil
	default:
		return nil, fmt.Errorf("JSONL parsing does not support column type %T", ctype)
	}
}

// writeJSONL persists a Partition as line-delimited JSON records. Column names
// become flat record keys verbatim, so a column named with a gjson path (e.g.
// "meta.id") does not round-trip: readJSONL would resolve it as a nested field.
func writeJSONL(w io.Writer, part drift.Partition) error {
	names := part.GetSchema().ColumnNames()
	cols := make([]drift.Column, len(names))
	for i, name := range names {
		col, err := part.GetColumn(name)
		if err != nil {
			return err
		}
		cols[i] = col
	}
	bw := bufio.NewWriter(w)
	record := make(map[string]interface{}, len(names))
	for row := 0; row < part.GetNumRows(); row++ {
		for i, name := range names {
			record[name] = cols[i].Value(row)
		}
		line, err := json.Marshal(record)
		if err != nil {
			return err
		}
		if _, err := bw.Write(line); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}
