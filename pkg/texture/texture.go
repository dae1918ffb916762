// Package texture implements the texture half of the asset pipeline: the DDS
// container decoder, the engine surface-table codec and the image transforms
// (premultiplied alpha, mipmap chains, cubemap strips) that feed them.
package texture

import (
	"errors"
	"fmt"
)

// Texture codec errors.
var (
	ErrInvalidMagic       = errors.New("invalid DDS magic: expected 'DDS '")
	ErrInvalidHeaderSize  = errors.New("invalid DDS header size")
	ErrInvalidPixelFormat = errors.New("invalid DDS pixel format size")
	ErrMissingDX10        = errors.New("DDS file has no DX10 extension header")
	ErrInvalidArraySize   = errors.New("DDS array size must be at least 1")
	ErrInvalidDimension   = errors.New("unsupported DDS resource dimension")
	ErrTruncated          = errors.New("truncated texture data")
	ErrTrailingData       = errors.New("unconsumed data after last surface")
	ErrUnknownFormat      = errors.New("unknown pixel format")
	ErrUnsupportedTarget  = errors.New("unsupported compile target format")
	ErrSurfaceMismatch    = errors.New("surface table does not match description")
	ErrInvalidExtent      = errors.New("texture extent out of range")
)

// Kind is the logical shape of a texture.
type Kind int32

// Texture kinds, as written to the engine stream.
const (
	Kind1D Kind = iota
	Kind2D
	Kind3D
	KindCubeMap
)

func (k Kind) String() string {
	switch k {
	case Kind1D:
		return "1D"
	case Kind2D:
		return "2D"
	case Kind3D:
		return "3D"
	case KindCubeMap:
		return "CubeMap"
	}
	return fmt.Sprintf("Kind(%d)", int32(k))
}

// Description holds the top-level properties of a texture.
type Description struct {
	Width        uint32
	Height       uint32
	Depth        uint32
	ArraySize    uint32
	Kind         Kind
	Format       Format
	MipmapCount  uint32
	SurfaceCount uint32
}

// Faces returns the number of image planes per mip level: six per cube
// for cubemaps, the array size otherwise. Decoded textures always fit;
// hand-built descriptions must keep 6*ArraySize within uint32.
func (d Description) Faces() uint32 {
	return uint32(d.faces())
}

func (d Description) faces() uint64 {
	if d.Kind == KindCubeMap {
		return 6 * uint64(d.ArraySize)
	}
	return uint64(d.ArraySize)
}

// surfaceTotal is faces x mips without uint32 wraparound.
func (d Description) surfaceTotal() uint64 {
	return d.faces() * uint64(d.MipmapCount)
}

// Surface is one face at one mip level. Data holds Size*Depth bytes and is
// a view into the buffer the texture was decoded from.
type Surface struct {
	Width  uint32
	Height uint32
	Depth  uint32
	Size   uint32
	Stride uint32
	Data   []byte
}

// Texture is a description plus its surfaces, ordered face-outer, mip-inner.
type Texture struct {
	Description
	Surfaces []Surface
}

// Surface returns the surface for the given face and mip level.
func (t *Texture) Surface(face, mip int) *Surface {
	return &t.Surfaces[face*int(t.MipmapCount)+mip]
}

// Validate checks the surface-count invariant and every surface payload.
func (t *Texture) Validate() error {
	want := t.surfaceTotal()
	if uint64(t.SurfaceCount) != want {
		return fmt.Errorf("%w: surface count %d, expected %d faces x %d mips",
			ErrSurfaceMismatch, t.SurfaceCount, t.Faces(), t.MipmapCount)
	}
	if uint32(len(t.Surfaces)) != t.SurfaceCount {
		return fmt.Errorf("%w: have %d surfaces, description says %d",
			ErrSurfaceMismatch, len(t.Surfaces), t.SurfaceCount)
	}
	for i, s := range t.Surfaces {
		if uint64(len(s.Data)) != uint64(s.Size)*uint64(s.Depth) {
			return fmt.Errorf("%w: surface %d has %d bytes, expected %d",
				ErrSurfaceMismatch, i, len(s.Data), uint64(s.Size)*uint64(s.Depth))
		}
	}
	return nil
}

// mipExtent halves a dimension, never going below 1.
func mipExtent(v uint32) uint32 {
	return max(1, v/2)
}

// buildSurfaces walks faces x mips over data, slicing a view for each surface.
// It returns the number of bytes consumed. Every surface holds at least one
// byte, so the declared counts are checked against len(data) before the walk.
func buildSurfaces(desc Description, data []byte) ([]Surface, int, error) {
	if total := desc.surfaceTotal(); total > uint64(len(data)) {
		return nil, 0, fmt.Errorf("%w: %d surfaces declared, %d bytes of data",
			ErrTruncated, total, len(data))
	}

	var surfaces []Surface
	offset := 0
	for face := uint64(0); face < desc.faces(); face++ {
		w, h, d := desc.Width, desc.Height, desc.Depth
		for mip := uint32(0); mip < desc.MipmapCount; mip++ {
			size, stride, err := SurfaceSize(desc.Format, w, h)
			if err != nil {
				return nil, 0, err
			}
			n := uint64(size) * uint64(d)
			if n == 0 {
				return nil, 0, fmt.Errorf("%w: face %d mip %d is empty (%dx%dx%d)",
					ErrInvalidExtent, face, mip, w, h, d)
			}
			if n > uint64(len(data)-offset) {
				return nil, 0, fmt.Errorf("%w: face %d mip %d needs %d bytes at offset %d, have %d",
					ErrTruncated, face, mip, n, offset, len(data)-offset)
			}
			end := offset + int(n)
			surfaces = append(surfaces, Surface{
				Width:  w,
				Height: h,
				Depth:  d,
				Size:   size,
				Stride: stride,
				Data:   data[offset:end:end],
			})
			offset = end
			w, h, d = mipExtent(w), mipExtent(h), mipExtent(d)
		}
	}
	return surfaces, offset, nil
}
