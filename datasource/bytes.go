package datasource

import (
	"bufio"
	"encoding/binary"
	"io"
)

// byteWriter is a buffered writer with uvarint support for the columnar format
type byteWriter struct {
	*bufio.Writer
	scratch [binary.MaxVarintLen64]byte
}

func newByteWriter(w io.Writer) *byteWriter {
	return &byteWriter{Writer: bufio.NewWriter(w)}
}

// WriteUvarint writes v in unsigned varint encoding
func (w *byteWriter) WriteUvarint(v uint64) error {
	n := binary.PutUvarint(w.scratch[:], v)
	_, err := w.Write(w.scratch[:n])
	return err
}

// byteReader is a buffered reader satisfying io.ByteReader for uvarint decoding
type byteReader struct {
	*bufio.Reader
}

func newByteReader(r io.Reader) *byteReader {
	return &byteReader{bufio.NewReader(r)}
}
