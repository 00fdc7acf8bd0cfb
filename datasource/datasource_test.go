package datasource

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-drift/drift"
	"github.com/go-drift/drift/errors"
	"github.com/go-drift/drift/partition"
	"github.com/go-drift/drift/schema"
	"github.com/stretchr/testify/require"
)

func createTestSchema(t *testing.T) drift.Schema {
	sch := schema.CreateSchema()
	_, err := sch.CreateColumn("id", &drift.Int64ColumnType{})
	require.Nil(t, err)
	_, err = sch.CreateColumn("score", &drift.Float64ColumnType{})
	require.Nil(t, err)
	_, err = sch.CreateColumn("name", &drift.StringColumnType{})
	require.Nil(t, err)
	_, err = sch.CreateColumn("active", &drift.BoolColumnType{})
	require.Nil(t, err)
	return sch
}

func createTestPartition(t *testing.T) drift.Partition {
	part, err := partition.FromColumns(createTestSchema(t), map[string]interface{}{
		"id":     []int64{1, 2, 3, 4},
		"score":  []float64{0.5, 1.5, -2.25, 100},
		"name":   []string{"alpha", "beta", "gamma", "delta"},
		"active": []bool{true, false, true, true},
	})
	require.Nil(t, err)
	return part
}

func requireRoundTrip(t *testing.T, format Format, wopts *WriteOptions, ropts *ReadOptions) {
	part := createTestPartition(t)
	var buf bytes.Buffer
	require.Nil(t, Write(&buf, part, format, wopts))

	var sch drift.Schema
	if format != FormatColumnar {
		sch = createTestSchema(t)
	}
	got, err := Read(&buf, format, sch, ropts)
	require.Nil(t, err)
	require.Nil(t, part.GetSchema().Equals(got.GetSchema()))
	require.Equal(t, part.GetNumRows(), got.GetNumRows())
	for _, name := range part.GetSchema().ColumnNames() {
		want, err := part.GetColumn(name)
		require.Nil(t, err)
		gotCol, err := got.GetColumn(name)
		require.Nil(t, err)
		for i := 0; i < part.GetNumRows(); i++ {
			require.Equal(t, want.Value(i), gotCol.Value(i))
		}
	}
}

func TestCSVRoundTrip(t *testing.T) {
	requireRoundTrip(t, FormatCSV, nil, nil)
}

func TestCSVRoundTripWithHeader(t *testing.T) {
	requireRoundTrip(t, FormatCSV, &WriteOptions{WriteHeader: true}, &ReadOptions{HeaderLines: 1})
}

func TestCSVRoundTripCustomDelimiter(t *testing.T) {
	requireRoundTrip(t, FormatCSV, &WriteOptions{Delimiter: '\t'}, &ReadOptions{Delimiter: '\t'})
}

func TestJSONLRoundTrip(t *testing.T) {
	requireRoundTrip(t, FormatJSONL, nil, nil)
}

func TestColumnarRoundTrip(t *testing.T) {
	requireRoundTrip(t, FormatColumnar, nil, nil)
}

func TestColumnarRoundTripLZ4(t *testing.T) {
	requireRoundTrip(t, FormatColumnar, &WriteOptions{Compression: CompressionLZ4}, nil)
}

func TestUnsupportedFormat(t *testing.T) {
	part := createTestPartition(t)
	var buf bytes.Buffer
	err := Write(&buf, part, Format("parquet"), nil)
	require.IsType(t, errors.UnsupportedFormatError{}, err)
	require.Zero(t, buf.Len()) // raised before any data is touched

	_, err = Read(strings.NewReader("x"), Format("parquet"), nil, nil)
	require.IsType(t, errors.UnsupportedFormatError{}, err)
}

func TestReadColumnSubsetAndLimit(t *testing.T) {
	part := createTestPartition(t)
	var buf bytes.Buffer
	require.Nil(t, Write(&buf, part, FormatCSV, nil))

	got, err := Read(&buf, FormatCSV, createTestSchema(t), &ReadOptions{
		Columns: []string{"name", "id"},
		Limit:   2,
	})
	require.Nil(t, err)
	require.Equal(t, 2, got.GetNumRows())
	require.Equal(t, []string{"name", "id"}, got.GetSchema().ColumnNames())
	col, err := got.GetColumn("name")
	require.Nil(t, err)
	vals, err := col.StringValues()
	require.Nil(t, err)
	require.Equal(t, []string{"alpha", "beta"}, vals)
}

func TestCSVSkipRows(t *testing.T) {
	part := createTestPartition(t)
	var buf bytes.Buffer
	require.Nil(t, Write(&buf, part, FormatCSV, nil))

	got, err := Read(&buf, FormatCSV, createTestSchema(t), &ReadOptions{SkipRows: 3})
	require.Nil(t, err)
	require.Equal(t, 1, got.GetNumRows())
	col, err := got.GetColumn("id")
	require.Nil(t, err)
	vals, err := col.Int64Values()
	require.Nil(t, err)
	require.Equal(t, []int64{4}, vals)
}

func TestJSONLReadGJSONPaths(t *testing.T) {
	sch := schema.CreateSchema()
	_, err := sch.CreateColumn("meta.id", &drift.Int64ColumnType{})
	require.Nil(t, err)

	data := "{\"meta\":{\"id\":7}}\n{\"meta\":{\"id\":8}}\n"
	got, err := Read(strings.NewReader(data), FormatJSONL, sch, nil)
	require.Nil(t, err)
	col, err := got.GetColumn("meta.id")
	require.Nil(t, err)
	vals, err := col.Int64Values()
	require.Nil(t, err)
	require.Equal(t, []int64{7, 8}, vals)
}

func TestJSONLTypeError(t *testing.T) {
	sch := schema.CreateSchema()
	_, err := sch.CreateColumn("id", &drift.Int64ColumnType{})
	require.Nil(t, err)

	_, err = Read(strings.NewReader("{\"id\":\"oops\"}\n"), FormatJSONL, sch, nil)
	require.NotNil(t, err)
}

func TestColumnarSchemaMismatch(t *testing.T) {
	part := createTestPartition(t)
	var buf bytes.Buffer
	require.Nil(t, Write(&buf, part, FormatColumnar, nil))

	wrong := schema.CreateSchema()
	_, err := wrong.CreateColumn("other", &drift.Int64ColumnType{})
	require.Nil(t, err)
	_, err = Read(&buf, FormatColumnar, wrong, nil)
	require.NotNil(t, err)
}

func TestColumnarChecksumMismatch(t *testing.T) {
	part := createTestPartition(t)
	var buf bytes.Buffer
	require.Nil(t, Write(&buf, part, FormatColumnar, nil))

	// flip a bit in the last payload byte
	data := buf.Bytes()
	data[len(data)-1] ^= 0xff
	_, err := Read(bytes.NewReader(data), FormatColumnar, nil, nil)
	require.NotNil(t, err)
}

func TestFileRoundTrip(t *testing.T) {
	part := createTestPartition(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "part.drc")
	require.Nil(t, WriteFile(path, part, FormatColumnar, &WriteOptions{Compression: CompressionLZ4}))

	got, err := ReadFile(path, FormatColumnar, nil, nil)
	require.Nil(t, err)
	require.Nil(t, part.GetSchema().Equals(got.GetSchema()))
	require.Equal(t, part.GetNumRows(), got.GetNumRows())
}

func TestWritePartitioned(t *testing.T) {
	part := createTestPartition(t)
	dir := t.TempDir()

	paths, err := WritePartitioned(dir, part, FormatJSONL, &WriteOptions{PartitionBy: []string{"active"}})
	require.Nil(t, err)
	require.Len(t, paths, 2) // active=true and active=false

	var trueDir, falseDir int
	totalRows := 0
	for _, p := range paths {
		require.FileExists(t, p)
		if strings.Contains(p, "active=true") {
			trueDir++
		}
		if strings.Contains(p, "active=false") {
			falseDir++
		}
		got, err := ReadFile(p, FormatJSONL, createTestSchema(t), nil)
		require.Nil(t, err)
		totalRows += got.GetNumRows()
	}
	require.Equal(t, 1, trueDir)
	require.Equal(t, 1, falseDir)
	require.Equal(t, part.GetNumRows(), totalRows)
}

func TestWritePartitionedMultipleKeys(t *testing.T) {
	part := createTestPartition(t)
	dir := t.TempDir()

	paths, err := WritePartitioned(dir, part, FormatCSV, &WriteOptions{PartitionBy: []string{"active", "id"}})
	require.Nil(t, err)
	require.Len(t, paths, 4) // every id is distinct
	for _, p := range paths {
		rel, err := filepath.Rel(dir, p)
		require.Nil(t, err)
		require.True(t, strings.HasPrefix(rel, "active="))
		require.Contains(t, rel, string(os.PathSeparator)+"id=")
	}
}

func TestWritePartitionedRequiresKeys(t *testing.T) {
	part := createTestPartition(t)
	_, err := WritePartitioned(t.TempDir(), part, FormatCSV, nil)
	require.NotNil(t, err)
}

func TestColumnarRoundTripEmptyPartition(t *testing.T) {
	part, err := partition.CreateBuilder(createTestSchema(t)).Build()
	require.Nil(t, err)

	var buf bytes.Buffer
	require.Nil(t, Write(&buf, part, FormatColumnar, nil))
	got, err := Read(&buf, FormatColumnar, nil, nil)
	require.Nil(t, err)
	require.Nil(t, part.GetSchema().Equals(got.GetSchema()))
	require.Equal(t, 0, got.GetNumRows())
}

func TestJSONLWritesPathNamedColumnsFlat(t *testing.T) {
	sch := schema.CreateSchema()
	_, err := sch.CreateColumn("meta.id", &drift.Int64ColumnType{})
	require.Nil(t, err)
	part, err := partition.FromColumns(sch, map[string]interface{}{
		"meta.id": []int64{7},
	})
	require.Nil(t, err)

	// the column name becomes a flat key, not a nested object, so reading it
	// back as a gjson path would miss it
	var buf bytes.Buffer
	require.Nil(t, Write(&buf, part, FormatJSONL, nil))
	require.Equal(t, "{\"meta.id\":7}\n", buf.String())
}
