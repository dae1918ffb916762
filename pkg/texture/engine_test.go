package texture

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"testing"
)

func TestEncode_Layout(t *testing.T) {
	tex, err := FromImages(Kind2D, FormatR8G8B8A8Unorm, [][]*image.RGBA{MipChain(Premultiply(checkerboard(2, 2)))})
	if err != nil {
		t.Fatalf("FromImages: %v", err)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, tex); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	data := buf.Bytes()

	// Header: 8 x u32, then two surfaces of 20-byte header + payload.
	wantLen := 32 + (20 + 16) + (20 + 4)
	if len(data) != wantLen {
		t.Fatalf("encoded length = %d, want %d", len(data), wantLen)
	}

	u32 := func(off int) uint32 { return binary.LittleEndian.Uint32(data[off:]) }
	header := []uint32{2, 2, 1, 1, uint32(Kind2D), uint32(FormatR8G8B8A8Unorm), 2, 2}
	for i, want := range header {
		if got := u32(i * 4); got != want {
			t.Errorf("header field %d = %d, want %d", i, got, want)
		}
	}

	// First surface header: width, height, depth, size, stride.
	surf := []uint32{2, 2, 1, 16, 8}
	for i, want := range surf {
		if got := u32(32 + i*4); got != want {
			t.Errorf("surface 0 field %d = %d, want %d", i, got, want)
		}
	}
	if !bytes.Equal(data[52:68], tex.Surfaces[0].Data) {
		t.Error("surface 0 payload not written verbatim")
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	var faces [][]*image.RGBA
	for i := 0; i < 6; i++ {
		faces = append(faces, MipChain(Premultiply(gradient(8, 8, uint8(i*40)))))
	}
	tex, err := FromImages(KindCubeMap, FormatR8G8B8A8Unorm, faces)
	if err != nil {
		t.Fatalf("FromImages: %v", err)
	}

	var first bytes.Buffer
	if err := Encode(&first, tex); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := Decode(first.Bytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.Description != tex.Description {
		t.Errorf("description mismatch:\n got %+v\nwant %+v", decoded.Description, tex.Description)
	}

	var second bytes.Buffer
	if err := Encode(&second, decoded); err != nil {
		t.Fatalf("re-Encode: %v", err)
	}
	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Error("encode(decode(encode(x))) is not byte-identical")
	}
}

func TestEncode_RejectsInconsistentTexture(t *testing.T) {
	tex := &Texture{
		Description: Description{Width: 2, Height: 2, Depth: 1, ArraySize: 1, Kind: Kind2D,
			Format: FormatR8G8B8A8Unorm, MipmapCount: 2, SurfaceCount: 1},
	}
	if err := Encode(&bytes.Buffer{}, tex); !errors.Is(err, ErrSurfaceMismatch) {
		t.Errorf("expected ErrSurfaceMismatch, got %v", err)
	}

	tex.SurfaceCount = 2
	tex.Surfaces = []Surface{
		{Width: 2, Height: 2, Depth: 1, Size: 16, Stride: 8, Data: make([]byte, 16)},
		{Width: 1, Height: 1, Depth: 1, Size: 4, Stride: 4, Data: make([]byte, 3)},
	}
	if err := Encode(&bytes.Buffer{}, tex); !errors.Is(err, ErrSurfaceMismatch) {
		t.Errorf("expected ErrSurfaceMismatch for short payload, got %v", err)
	}
}

func TestDecode_Errors(t *testing.T) {
	tex, _ := FromImages(Kind2D, FormatR8G8B8A8Unorm, [][]*image.RGBA{{Premultiply(checkerboard(2, 2))}})
	var buf bytes.Buffer
	if err := Encode(&buf, tex); err != nil {
		t.Fatal(err)
	}
	data := buf.Bytes()

	if _, err := Decode(data[:20]); !errors.Is(err, ErrTruncated) {
		t.Errorf("short header: expected ErrTruncated, got %v", err)
	}
	if _, err := Decode(data[:len(data)-1]); !errors.Is(err, ErrTruncated) {
		t.Errorf("short payload: expected ErrTruncated, got %v", err)
	}
	if _, err := Decode(append(append([]byte{}, data...), 0)); !errors.Is(err, ErrTrailingData) {
		t.Errorf("trailing byte: expected ErrTrailingData, got %v", err)
	}
}
