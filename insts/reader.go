package insts

import (
	"encoding/binary"
	"io"
)

// CodeUnitReader supplies 16-bit code units one at a time. NextUnit returns
// io.EOF (or ErrStreamExhausted) once the input is used up.
type CodeUnitReader interface {
	NextUnit() (uint16, error)
}

// ByteReader reads little-endian code units from a byte slice.
type ByteReader struct {
	data []byte
	pos  int
}

// NewByteReader creates a reader over data.
func NewByteReader(data []byte) *ByteReader {
	return &ByteReader{data: data}
}

// NextUnit returns the next code unit. A trailing odd byte is reported as
// io.ErrUnexpectedEOF and is not consumed.
func (r *ByteReader) NextUnit() (uint16, error) {
	remaining := len(r.data) - r.pos
	if remaining == 0 {
		return 0, io.EOF
	}
	if remaining < 2 {
		return 0, io.ErrUnexpectedEOF
	}

	unit := binary.LittleEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return unit, nil
}

// Offset returns the number of bytes consumed so far.
func (r *ByteReader) Offset() int {
	return r.pos
}

// Seek moves the read position to offset, clamped to the data bounds.
func (r *ByteReader) Seek(offset int) {
	switch {
	case offset < 0:
		r.pos = 0
	case offset > len(r.data):
		r.pos = len(r.data)
	default:
		r.pos = offset
	}
}

// Remaining returns the number of unread bytes.
func (r *ByteReader) Remaining() int {
	return len(r.data) - r.pos
}
