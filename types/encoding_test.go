package types

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncoder_IntegersAreLittleEndian(t *testing.T) {
	e := NewEncoder()
	e.PutU32(0x01020304)
	if got, want := e.Bytes(), []byte{4, 3, 2, 1}; !bytes.Equal(got, want) {
		t.Errorf("u32 encoded as %v, want %v", got, want)
	}
}

func TestCodec_MixedRoundTrip(t *testing.T) {
	e := NewEncoder()
	e.PutU8(7)
	e.PutU64(1 << 40)
	e.PutBool(true)
	e.PutBytes([]byte{9, 8, 7})
	e.PutString("entry")

	d := NewDecoder(e.Bytes())
	if got := d.U8(); got != 7 {
		t.Errorf("u8 decoded as %d", got)
	}
	if got := d.U64(); got != 1<<40 {
		t.Errorf("u64 decoded as %d", got)
	}
	if !d.Bool() {
		t.Errorf("bool decoded as false")
	}
	if got := d.Bytes(); !bytes.Equal(got, []byte{9, 8, 7}) {
		t.Errorf("bytes decoded as %v", got)
	}
	if got := d.String(); got != "entry" {
		t.Errorf("string decoded as %q", got)
	}
	if err := d.Finish(); err != nil {
		t.Errorf("decoding reported error: %v", err)
	}
}

func TestDecoder_TruncatedInputFailsSticky(t *testing.T) {
	d := NewDecoder([]byte{1, 2})
	d.U32()
	if !errors.Is(d.Err(), ErrUnexpectedEOF) {
		t.Fatalf("expected unexpected-EOF, got %v", d.Err())
	}
	// subsequent reads keep returning zero values without panicking
	if got := d.U64(); got != 0 {
		t.Errorf("read after failure returned %d", got)
	}
	if !errors.Is(d.Finish(), ErrUnexpectedEOF) {
		t.Errorf("Finish lost the original error: %v", d.Finish())
	}
}

func TestDecoder_TrailingBytesAreAnError(t *testing.T) {
	d := NewDecoder([]byte{1, 2, 3})
	d.U8()
	if !errors.Is(d.Finish(), ErrTrailingBytes) {
		t.Errorf("expected trailing-bytes error, got %v", d.Finish())
	}
}

func TestDecoder_BytesDetachedFromInput(t *testing.T) {
	input := []byte{2, 0, 0, 0, 10, 20}
	d := NewDecoder(input)
	got := d.Bytes()
	input[4] = 99
	if got[0] != 10 {
		t.Errorf("decoded bytes alias the input slice")
	}
}
