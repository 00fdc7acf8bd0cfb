package datasource

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/go-drift/drift"
	"github.com/go-drift/drift/errors"
	"github.com/go-drift/drift/partition"
	"github.com/go-drift/drift/schema"
	"github.com/pierrec/lz4/v4"
)

// Drift's native columnar format:
//
//	magic "DRC1"
//	1 byte:  compression (0 none, 1 lz4)
//	uvarint: column count
//	per column: uvarint name length, name bytes, 1 byte type code
//	uvarint: row count
//	per column block: uvarint payload length, 8 byte xxhash64 of the stored
//	payload, payload bytes (lz4-compressed when so flagged)
var columnarMagic = [4]byte{'D', 'R', 'C', '1'}

const (
	typeCodeInt64 byte = iota + 1
	typeCodeFloat64
	typeCodeString
	typeCodeBool
)

func columnTypeCode(ctype drift.ColumnType) (byte, error) {
	switch ctype.(type) {
	case *drift.Int64ColumnType:
		return typeCodeInt64, nil
	case *drift.Float64ColumnType:
		return typeCodeFloat64, nil
	case *drift.StringColumnType:
		return typeCodeString, nil
	case *drift.BoolColumnType:
		return typeCodeBool, nil
	default:
		return 0, fmt.Errorf("Columnar format does not support column type %T", ctype)
	}
}

func columnTypeFromCode(code byte) (drift.ColumnType, error) {
	switch code {
	case typeCodeInt64:
		return &drift.Int64ColumnType{}, nil
	case typeCodeFloat64:
		return &drift.Float64ColumnType{}, nil
	case typeCodeString:
		return &drift.StringColumnType{}, nil
	case typeCodeBool:
		return &drift.BoolColumnType{}, nil
	default:
		return nil, fmt.Errorf("Unknown columnar type code %d", code)
	}
}

// writeColumnar persists a Partition in Drift's native columnar format
func writeColumnar(w io.Writer, part drift.Partition, opts *WriteOptions) error {
	compressed := opts.compression() == CompressionLZ4
	bw := newByteWriter(w)
	if _, err := bw.Write(columnarMagic[:]); err != nil {
		return err
	}
	var flag byte
	if compressed {
		flag = 1
	}
	if err := bw.WriteByte(flag); err != nil {
		return err
	}

	sch := part.GetSchema()
	names := sch.ColumnNames()
	types := sch.ColumnTypes()
	if err := bw.WriteUvarint(uint64(len(names))); err != nil {
		return err
	}
	for i, name := range names {
		if err := bw.WriteUvarint(uint64(len(name))); err != nil {
			return err
		}
		if _, err := bw.Write([]byte(name)); err != nil {
			return err
		}
		code, err := columnTypeCode(types[i])
		if err != nil {
			return err
		}
		if err := bw.WriteByte(code); err != nil {
			return err
		}
	}
	if err := bw.WriteUvarint(uint64(part.GetNumRows())); err != nil {
		return err
	}

	for _, name := range names {
		col, err := part.GetColumn(name)
		if err != nil {
			return err
		}
		payload, err := encodeVector(col)
		if err != nil {
			return err
		}
		if compressed {
			payload, err = lz4Compress(payload)
			if err != nil {
				return err
			}
		}
		if err := bw.WriteUvarint(uint64(len(payload))); err != nil {
			return err
		}
		var sum [8]byte
		binary.BigEndian.PutUint64(sum[:], xxhash.Sum64(payload))
		if _, err := bw.Write(sum[:]); err != nil {
			return err
		}
		if _, err := bw.Write(payload); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// readColumnar materializes a Partition from Drift's native columnar format.
// A non-nil sch is verified against the embedded Schema.
func readColumnar(r io.Reader, sch drift.Schema, opts *ReadOptions) (drift.Partition, error) {
	br := newByteReader(r)
	var magic [4]byte
	if _, err := io.ReadFull(br, magic[:]); err != nil {
		return nil, err
	}
	if magic != columnarMagic {
		return nil, fmt.Errorf("Source does not contain columnar data")
	}
	flag, err := br.ReadByte()
	if err != nil {
		return nil, err
	}
	compressed := flag == 1

	numCols, err := binary.ReadUvarint(br)
	if err != nil {
		return nil, err
	}
	embedded := schema.CreateSchema()
	names := make([]string, numCols)
	types := make([]drift.ColumnType, numCols)
	for i := uint64(0); i < numCols; i++ {
		nameLen, err := binary.ReadUvarint(br)
		if err != nil {
			return nil, err
		}
		name := make([]byte, nameLen)
		if _, err := io.ReadFull(br, name); err != nil {
			return nil, err
		}
		code, err := br.ReadByte()
		if err != nil {
			return nil, err
		}
		ctype, err := columnTypeFromCode(code)
		if err != nil {
			return nil, err
		}
		names[i] = string(name)
		types[i] = ctype
		if _, err := embedded.CreateColumn(names[i], ctype); err != nil {
			return nil, err
		}
	}
	if sch != nil {
		if err := sch.Equals(embedded); err != nil {
			return nil, fmt.Errorf("Columnar data does not match the requested schema: %w", err)
		}
	}
	numRows, err := binary.ReadUvarint(br)
	if err != nil {
		return nil, err
	}

	cols := make([]drift.Column, numCols)
	for i := uint64(0); i < numCols; i++ {
		payloadLen, err := binary.ReadUvarint(br)
		if err != nil {
			return nil, err
		}
		var sum [8]byte
		if _, err := io.ReadFull(br, sum[:]); err != nil {
			return nil, err
		}
		payload := make([]byte, payloadLen)
		if _, err := io.ReadFull(br, payload); err != nil {
			return nil, err
		}
		if xxhash.Sum64(payload) != binary.BigEndian.Uint64(sum[:]) {
			return nil, errors.ChecksumMismatchError{Column: names[i]}
		}
		if compressed {
			payload, err = lz4Decompress(payload)
			if err != nil {
				return nil, err
			}
		}
		col, err := decodeVector(names[i], types[i], payload, int(numRows))
		if err != nil {
			return nil, err
		}
		cols[i] = col
	}
	part, err := partition.FromColumnList(cols)
	if err != nil {
		return nil, err
	}
	return applyReadModifiers(part, opts)
}

// encodeVector serializes one Column's values to bytes
func encodeVector(col drift.Column) ([]byte, error) {
	var buf bytes.Buffer
	switch col.Type().(type) {
	case *drift.Int64ColumnType:
		vals, err := col.Int64Values()
		if err != nil {
			return nil, err
		}
		var scratch [8]byte
		for _, v := range vals {
			binary.LittleEndian.PutUint64(scratch[:], uint64(v))
			buf.Write(scratch[:])
		}
	case *drift.Float64ColumnType:
		vals, err := col.Float64Values()
		if err != nil {
			return nil, err
		}
		var scratch [8]byte
		for _, v := range vals {
			binary.LittleEndian.PutUint64(scratch[:], math.Float64bits(v))
			buf.Write(scratch[:])
		}
	case *drift.StringColumnType:
		vals, err := col.StringValues()
		if err != nil {
			return nil, err
		}
		var scratch [binary.MaxVarintLen64]byte
		for _, v := range vals {
			n := binary.PutUvarint(scratch[:], uint64(len(v)))
			buf.Write(scratch[:n])
			buf.WriteString(v)
		}
	case *drift.BoolColumnType:
		vals, err := col.BoolValues()
		if err != nil {
			return nil, err
		}
		for _, v := range vals {
			if v {
				buf.WriteByte(1)
			} else {
				buf.WriteByte(0)
			}
		}
	default:
		return nil, fmt.Errorf("Columnar format does not support column type %T", col.Type())
	}
	return buf.Bytes(), nil
}

// decodeVector deserializes one Column's values from bytes
func decodeVector(name string, ctype drift.ColumnType, payload []byte, numRows int) (drift.Column, error) {
	switch ctype.(type) {
	case *drift.Int64ColumnType:
		if len(payload) != numRows*8 {
			return nil, fmt.Errorf("Column %s payload is %d bytes, expected %d", name, len(payload), numRows*8)
		}
		vals := make([]int64, numRows)
		for i := range vals {
			vals[i] = int64(binary.LittleEndian.Uint64(payload[i*8:]))
		}
		return partition.NewColumn(name, ctype, vals)
	case *drift.Float64ColumnType:
		if len(payload) != numRows*8 {
			return nil, fmt.Errorf("Column %s payload is %d bytes, expected %d", name, len(payload), numRows*8)
		}
		vals := make([]float64, numRows)
		for i := range vals {
			vals[i] = math.Float64frombits(binary.LittleEndian.Uint64(payload[i*8:]))
		}
		return partition.NewColumn(name, ctype, vals)
	case *drift.StringColumnType:
		vals := make([]string, numRows)
		rd := bytes.NewReader(payload)
		for i := range vals {
			strLen, err := binary.ReadUvarint(rd)
			if err != nil {
				return nil, fmt.Errorf("Column %s payload is truncated: %w", name, err)
			}
			s := make([]byte, strLen)
			if _, err := io.ReadFull(rd, s); err != nil {
				return nil, fmt.Errorf("Column %s payload is truncated: %w", name, err)
			}
			vals[i] = string(s)
		}
		return partition.NewColumn(name, ctype, vals)
	case *drift.BoolColumnType:
		if len(payload) != numRows {
			return nil, fmt.Errorf("Column %s payload is %d bytes, expected %d", name, len(payload), numRows)
		}
		vals := make([]bool, numRows)
		for i := range vals {
			vals[i] = payload[i] == 1
		}
		return partition.NewColumn(name, ctype, vals)
	default:
		return nil, fmt.Errorf("Columnar format does not support column type %T", ctype)
	}
}

func lz4Compress(payload []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	if _, err := zw.Write(payload); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func lz4Decompress(payload []byte) ([]byte, error) {
	zr := lz4.NewReader(bytes.NewReader(payload))
	return io.ReadAll(zr)
}
