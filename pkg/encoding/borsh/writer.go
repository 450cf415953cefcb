// Package borsh implements the canonical binary serialization used as the
// transaction signing payload. The encoding is deterministic and append-only:
// integers are little-endian and fixed width, strings and vectors carry a u32
// length prefix, options a 0/1 tag byte and enums a u8 discriminant. Structs
// serialize as the concatenation of their members in declaration order.
//
// The byte layout is a compatibility contract with the remote transaction
// validator and must never change for existing types.
package borsh

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
)

// ErrLengthOverflow is set on the writer when a string or vector exceeds the
// u32 length prefix.
var ErrLengthOverflow = errLengthOverflow{}

type errLengthOverflow struct{}

func (errLengthOverflow) Error() string { return "length exceeds u32 prefix" }

// Writer is a convenient wrapper around an io.Writer and err object. Used to
// simplify error handling when encoding a struct with many fields: the first
// error sticks and subsequent writes are no-ops.
type Writer struct {
	w   io.Writer
	Err error
	uv  [16]byte
}

// NewWriter makes a Writer from any io.Writer.
func NewWriter(iow io.Writer) *Writer {
	return &Writer{w: iow}
}

// Marshal encodes a single Serializable value to bytes.
func Marshal(s Serializable) ([]byte, error) {
	buf := new(bytes.Buffer)
	w := NewWriter(buf)
	s.EncodeBorsh(w)
	if w.Err != nil {
		return nil, w.Err
	}
	return buf.Bytes(), nil
}

// WriteU8 writes a single byte.
func (w *Writer) WriteU8(u8 byte) {
	w.uv[0] = u8
	w.WriteBytes(w.uv[:1])
}

// WriteU16 writes a uint16 in little-endian form.
func (w *Writer) WriteU16(u16 uint16) {
	binary.LittleEndian.PutUint16(w.uv[:2], u16)
	w.WriteBytes(w.uv[:2])
}

// WriteU32 writes a uint32 in little-endian form.
func (w *Writer) WriteU32(u32 uint32) {
	binary.LittleEndian.PutUint32(w.uv[:4], u32)
	w.WriteBytes(w.uv[:4])
}

// WriteU64 writes a uint64 in little-endian form.
func (w *Writer) WriteU64(u64 uint64) {
	binary.LittleEndian.PutUint64(w.uv[:8], u64)
	w.WriteBytes(w.uv[:8])
}

// WriteU128 writes a 16 byte little-endian 128-bit value.
func (w *Writer) WriteU128(b [16]byte) {
	copy(w.uv[:16], b[:])
	w.WriteBytes(w.uv[:16])
}

// WriteBool writes a boolean as a 0/1 byte.
func (w *Writer) WriteBool(b bool) {
	var v byte
	if b {
		v = 1
	}
	w.WriteU8(v)
}

// WriteBytes writes b without any prefix.
func (w *Writer) WriteBytes(b []byte) {
	if w.Err != nil {
		return
	}
	_, w.Err = w.w.Write(b)
}

// WriteVarBytes writes a u32 length prefix followed by b.
func (w *Writer) WriteVarBytes(b []byte) {
	w.writeLen(len(b))
	w.WriteBytes(b)
}

// WriteString writes a u32 length prefix followed by the string bytes.
func (w *Writer) WriteString(s string) {
	w.writeLen(len(s))
	if w.Err != nil {
		return
	}
	_, w.Err = io.WriteString(w.w, s)
}

// WriteOption writes the option tag for present and, when present is true,
// leaves the caller to encode the payload.
func (w *Writer) WriteOption(present bool) {
	w.WriteBool(present)
}

func (w *Writer) writeLen(n int) {
	if w.Err != nil {
		return
	}
	if uint64(n) > math.MaxUint32 {
		w.Err = ErrLengthOverflow
		return
	}
	w.WriteU32(uint32(n))
}

// WriteArray writes a u32 length prefix followed by the element encodings.
// Nil and empty slices produce the same zero-length encoding.
func WriteArray[Slice ~[]E, E Serializable](w *Writer, arr Slice) {
	w.writeLen(len(arr))
	for i := range arr {
		arr[i].EncodeBorsh(w)
	}
}
