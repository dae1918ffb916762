package texture

import (
	"fmt"
	"io"

	"github.com/Faultbox/midgard-assets/pkg/binio"
)

const (
	engineHeaderSize  = 8 * 4
	engineSurfaceSize = 5 * 4
)

// Encode writes t in the engine's surface-table format:
//
//	u32 width, u32 height, u32 depth, u32 arraySize, i32 kind, i32 format,
//	u32 mipmapCount, u32 surfaceCount
//	surfaceCount x { u32 width, u32 height, u32 depth, u32 size, u32 stride,
//	                 byte[size*depth] data }
//
// All values are little-endian.
func Encode(w io.Writer, t *Texture) error {
	if err := t.Validate(); err != nil {
		return err
	}

	out := binio.NewWriter(engineHeaderSize + len(t.Surfaces)*engineSurfaceSize)
	out.Uint32(t.Width)
	out.Uint32(t.Height)
	out.Uint32(t.Depth)
	out.Uint32(t.ArraySize)
	out.Int32(int32(t.Kind))
	out.Int32(int32(t.Format))
	out.Uint32(t.MipmapCount)
	out.Uint32(t.SurfaceCount)
	if _, err := out.WriteTo(w); err != nil {
		return err
	}

	for _, s := range t.Surfaces {
		hdr := binio.NewWriter(engineSurfaceSize)
		hdr.Uint32(s.Width)
		hdr.Uint32(s.Height)
		hdr.Uint32(s.Depth)
		hdr.Uint32(s.Size)
		hdr.Uint32(s.Stride)
		if _, err := hdr.WriteTo(w); err != nil {
			return err
		}
		if _, err := w.Write(s.Data); err != nil {
			return err
		}
	}
	return nil
}

// Decode reads a texture written by Encode. Surface data are views into data.
func Decode(data []byte) (*Texture, error) {
	r := binio.NewReader(data)
	if r.Len() < engineHeaderSize {
		return nil, fmt.Errorf("%w: engine header", ErrTruncated)
	}

	var t Texture
	t.Width, _ = r.Uint32()
	t.Height, _ = r.Uint32()
	t.Depth, _ = r.Uint32()
	t.ArraySize, _ = r.Uint32()
	kind, _ := r.Int32()
	format, _ := r.Int32()
	t.Kind, t.Format = Kind(kind), Format(format)
	t.MipmapCount, _ = r.Uint32()
	t.SurfaceCount, _ = r.Uint32()

	if uint64(t.SurfaceCount)*engineSurfaceSize > uint64(r.Len()) {
		return nil, fmt.Errorf("%w: %d surfaces declared", ErrTruncated, t.SurfaceCount)
	}

	t.Surfaces = make([]Surface, 0, t.SurfaceCount)
	for i := uint32(0); i < t.SurfaceCount; i++ {
		if r.Len() < engineSurfaceSize {
			return nil, fmt.Errorf("%w: surface %d header", ErrTruncated, i)
		}
		var s Surface
		s.Width, _ = r.Uint32()
		s.Height, _ = r.Uint32()
		s.Depth, _ = r.Uint32()
		s.Size, _ = r.Uint32()
		s.Stride, _ = r.Uint32()

		n := uint64(s.Size) * uint64(s.Depth)
		if n > uint64(r.Len()) {
			return nil, fmt.Errorf("%w: surface %d needs %d bytes, have %d", ErrTruncated, i, n, r.Len())
		}
		s.Data, _ = r.Bytes(int(n))
		t.Surfaces = append(t.Surfaces, s)
	}

	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d bytes left", ErrTrailingData, r.Len())
	}
	return &t, nil
}
