package types

import (
	"encoding/binary"

	"github.com/meridian-network/meridian/common"
)

// The binary codec used for everything that ends up in the global state:
// keys, stored values, and trie nodes. Integers are little-endian, variable
// length data carries a u32 length prefix. The encoding of a value is
// canonical, the resulting byte form defines trie paths and the ordering of
// pending mutations in a tracking copy.

const (
	// ErrUnexpectedEOF is reported when decoding runs out of input.
	ErrUnexpectedEOF = common.ConstError("unexpected end of input")
	// ErrTrailingBytes is reported when decoding leaves unconsumed input.
	ErrTrailingBytes = common.ConstError("trailing bytes after decoded value")
	// ErrInvalidTag is reported when a tag byte does not name a known variant.
	ErrInvalidTag = common.ConstError("invalid tag")
)

// Encoder accumulates the canonical byte form of a value.
type Encoder struct {
	buf []byte
}

func NewEncoder() *Encoder {
	return &Encoder{}
}

func (e *Encoder) PutU8(v uint8) {
	e.buf = append(e.buf, v)
}

func (e *Encoder) PutU16(v uint16) {
	e.buf = binary.LittleEndian.AppendUint16(e.buf, v)
}

func (e *Encoder) PutU32(v uint32) {
	e.buf = binary.LittleEndian.AppendUint32(e.buf, v)
}

func (e *Encoder) PutU64(v uint64) {
	e.buf = binary.LittleEndian.AppendUint64(e.buf, v)
}

func (e *Encoder) PutBool(v bool) {
	if v {
		e.PutU8(1)
	} else {
		e.PutU8(0)
	}
}

// PutBytes writes a u32 length prefix followed by the data.
func (e *Encoder) PutBytes(data []byte) {
	e.PutU32(uint32(len(data)))
	e.buf = append(e.buf, data...)
}

// PutFixed writes the data without a length prefix.
func (e *Encoder) PutFixed(data []byte) {
	e.buf = append(e.buf, data...)
}

func (e *Encoder) PutString(s string) {
	e.PutBytes([]byte(s))
}

func (e *Encoder) Bytes() []byte {
	return e.buf
}

// Decoder consumes a canonical byte form from the front of a slice. The
// first failure sticks, subsequent reads return zero values, so call sites
// can decode a full structure and check Err once.
type Decoder struct {
	data []byte
	err  error
}

func NewDecoder(data []byte) *Decoder {
	return &Decoder{data: data}
}

func (d *Decoder) take(n int) []byte {
	if d.err != nil {
		return nil
	}
	if len(d.data) < n {
		d.err = ErrUnexpectedEOF
		return nil
	}
	res := d.data[:n]
	d.data = d.data[n:]
	return res
}

func (d *Decoder) U8() uint8 {
	b := d.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (d *Decoder) U16() uint16 {
	b := d.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (d *Decoder) U32() uint32 {
	b := d.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (d *Decoder) U64() uint64 {
	b := d.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (d *Decoder) Bool() bool {
	return d.U8() != 0
}

// Bytes reads a u32 length prefix and the following data. The result is a
// copy, detached from the decoder's input.
func (d *Decoder) Bytes() []byte {
	length := d.U32()
	b := d.take(int(length))
	if b == nil {
		return nil
	}
	res := make([]byte, length)
	copy(res, b)
	return res
}

// Fixed reads exactly n bytes without a length prefix.
func (d *Decoder) Fixed(n int) []byte {
	b := d.take(n)
	if b == nil {
		return nil
	}
	res := make([]byte, n)
	copy(res, b)
	return res
}

func (d *Decoder) String() string {
	return string(d.Bytes())
}

// Remaining reports the number of unconsumed bytes.
func (d *Decoder) Remaining() int {
	return len(d.data)
}

// Err reports the first decoding failure, if any.
func (d *Decoder) Err() error {
	return d.err
}

// Finish reports the first decoding failure or complains about unconsumed
// input.
func (d *Decoder) Finish() error {
	if d.err != nil {
		return d.err
	}
	if len(d.data) != 0 {
		return ErrTrailingBytes
	}
	return nil
}

func (d *Decoder) fail(err error) {
	if d.err == nil {
		d.err = err
	}
}
