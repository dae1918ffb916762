package binio

import (
	"bytes"
	"errors"
	"testing"
)

func TestWriterLayout(t *testing.T) {
	w := NewWriter(0)
	w.Uint8(0x01)
	w.Uint16(0x0302)
	w.Int16(-1)
	w.Uint32(0x07060504)
	w.Int32(-2)

	want := []byte{
		0x01,
		0x02, 0x03,
		0xFF, 0xFF,
		0x04, 0x05, 0x06, 0x07,
		0xFE, 0xFF, 0xFF, 0xFF,
	}
	if !bytes.Equal(w.Bytes(), want) {
		t.Errorf("got % x, want % x", w.Bytes(), want)
	}
}

func TestReaderValues(t *testing.T) {
	w := NewWriter(32)
	w.Uint8(200)
	w.Uint16(65000)
	w.Int16(-300)
	w.Uint32(4000000000)
	w.Int32(-70000)
	w.String("fonts/arial_0")
	w.Blob([]byte{9, 8, 7})

	r := NewReader(w.Bytes())
	if v, err := r.Uint8(); err != nil || v != 200 {
		t.Errorf("Uint8 = %d, %v", v, err)
	}
	if v, err := r.Uint16(); err != nil || v != 65000 {
		t.Errorf("Uint16 = %d, %v", v, err)
	}
	if v, err := r.Int16(); err != nil || v != -300 {
		t.Errorf("Int16 = %d, %v", v, err)
	}
	if v, err := r.Uint32(); err != nil || v != 4000000000 {
		t.Errorf("Uint32 = %d, %v", v, err)
	}
	if v, err := r.Int32(); err != nil || v != -70000 {
		t.Errorf("Int32 = %d, %v", v, err)
	}
	if s, err := r.String(); err != nil || s != "fonts/arial_0" {
		t.Errorf("String = %q, %v", s, err)
	}
	if b, err := r.Blob(); err != nil || !bytes.Equal(b, []byte{9, 8, 7}) {
		t.Errorf("Blob = %v, %v", b, err)
	}
	if r.Len() != 0 {
		t.Errorf("expected reader exhausted, %d bytes left", r.Len())
	}
}

func TestReaderShortBuffer(t *testing.T) {
	r := NewReader([]byte{1, 2, 3})
	if _, err := r.Uint32(); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("expected ErrShortBuffer, got %v", err)
	}
	// A failed read must not move the cursor.
	if r.Pos() != 0 {
		t.Errorf("cursor moved to %d after failed read", r.Pos())
	}
	if _, err := r.Bytes(4); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("expected ErrShortBuffer, got %v", err)
	}
	if err := r.Seek(4); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("expected ErrShortBuffer on seek, got %v", err)
	}
}

func TestReaderBytesAliasBuffer(t *testing.T) {
	data := []byte{1, 2, 3, 4}
	r := NewReader(data)
	_ = r.Skip(1)
	view, err := r.Bytes(2)
	if err != nil {
		t.Fatal(err)
	}
	data[1] = 42
	if view[0] != 42 {
		t.Error("expected Bytes to return a view into the buffer")
	}
}
