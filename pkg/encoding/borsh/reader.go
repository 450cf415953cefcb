package borsh

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// maxVarSize caps declared string/vector lengths so that a corrupted or
// hostile length prefix cannot trigger a huge allocation.
const maxVarSize = 0x1000000

// Reader is a convenient wrapper around an io.Reader and err object, the
// decoding counterpart of Writer. The first error sticks and subsequent
// reads return zero values.
type Reader struct {
	r   io.Reader
	Err error
	uv  [16]byte
}

// NewReader makes a Reader from any io.Reader.
func NewReader(ior io.Reader) *Reader {
	return &Reader{r: ior}
}

// NewReaderFromBuf makes a Reader from a byte buffer.
func NewReaderFromBuf(b []byte) *Reader {
	return NewReader(bytes.NewReader(b))
}

// Unmarshal decodes a single Serializable value from data, requiring the
// whole input to be consumed.
func Unmarshal(data []byte, s Serializable) error {
	br := bytes.NewReader(data)
	r := NewReader(br)
	s.DecodeBorsh(r)
	if r.Err != nil {
		return r.Err
	}
	if br.Len() != 0 {
		return fmt.Errorf("%d trailing bytes after decoding", br.Len())
	}
	return nil
}

// ReadU8 reads a single byte.
func (r *Reader) ReadU8() byte {
	r.readFull(r.uv[:1])
	return r.uv[0]
}

// ReadU16 reads a little-endian uint16.
func (r *Reader) ReadU16() uint16 {
	r.readFull(r.uv[:2])
	return binary.LittleEndian.Uint16(r.uv[:2])
}

// ReadU32 reads a little-endian uint32.
func (r *Reader) ReadU32() uint32 {
	r.readFull(r.uv[:4])
	return binary.LittleEndian.Uint32(r.uv[:4])
}

// ReadU64 reads a little-endian uint64.
func (r *Reader) ReadU64() uint64 {
	r.readFull(r.uv[:8])
	return binary.LittleEndian.Uint64(r.uv[:8])
}

// ReadU128 reads a 16 byte little-endian 128-bit value.
func (r *Reader) ReadU128() (b [16]byte) {
	r.readFull(b[:])
	return b
}

// ReadBool reads a 0/1 byte, setting Err on any other value.
func (r *Reader) ReadBool() bool {
	v := r.ReadU8()
	if r.Err == nil && v > 1 {
		r.Err = fmt.Errorf("invalid bool byte 0x%02x", v)
	}
	return v == 1
}

// ReadOption reads an option tag, setting Err on any value besides 0 and 1.
// The caller decodes the payload when true is returned.
func (r *Reader) ReadOption() bool {
	return r.ReadBool()
}

// ReadBytes fills b from the underlying reader without any prefix.
func (r *Reader) ReadBytes(b []byte) {
	r.readFull(b)
}

// ReadVarBytes reads a u32 length prefix and that many bytes.
func (r *Reader) ReadVarBytes() []byte {
	n := r.readLen()
	if r.Err != nil || n == 0 {
		return nil
	}
	b := make([]byte, n)
	r.readFull(b)
	if r.Err != nil {
		return nil
	}
	return b
}

// ReadString reads a u32 length prefix and that many bytes as a string.
func (r *Reader) ReadString() string {
	return string(r.ReadVarBytes())
}

func (r *Reader) readLen() int {
	n := r.ReadU32()
	if r.Err != nil {
		return 0
	}
	if n > maxVarSize {
		r.Err = fmt.Errorf("declared length %d is too big", n)
		return 0
	}
	return int(n)
}

func (r *Reader) readFull(b []byte) {
	if r.Err != nil {
		return
	}
	_, r.Err = io.ReadFull(r.r, b)
}

// ReadArray reads a u32 length prefix and decodes that many elements.
func ReadArray[E any, PE interface {
	*E
	Serializable
}](r *Reader) []E {
	n := r.readLen()
	if r.Err != nil {
		return nil
	}
	arr := make([]E, n)
	for i := range arr {
		PE(&arr[i]).DecodeBorsh(r)
		if r.Err != nil {
			return nil
		}
	}
	return arr
}
