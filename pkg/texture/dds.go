package texture

import (
	"fmt"
	"io"
	"os"

	"github.com/Faultbox/midgard-assets/pkg/binio"
)

// DDS layout constants.
const (
	ddsMagic           = 0x20534444 // "DDS "
	ddsHeaderSize      = 124
	ddsPixelFormatSize = 32
	ddsDX10Size        = 20
	fourCCDX10         = 0x30315844 // "DX10"

	ddsFlagCaps        = 0x1
	ddsFlagHeight      = 0x2
	ddsFlagWidth       = 0x4
	ddsFlagPitch       = 0x8
	ddsFlagPixelFormat = 0x1000
	ddsFlagMipmapCount = 0x20000
	ddsFlagLinearSize  = 0x80000
	ddsFlagDepth       = 0x800000

	ddpfFourCC = 0x4

	ddsCapsComplex = 0x8
	ddsCapsTexture = 0x1000
	ddsCapsMipmap  = 0x400000
	ddsCaps2Cube   = 0xFE00 // cubemap flag plus all six faces
	ddsCaps2Volume = 0x200000

	resourceDimensionTexture1D = 2
	resourceDimensionTexture2D = 3
	resourceDimensionTexture3D = 4

	resourceMiscTextureCube = 0x4
)

// ddsHeader mirrors the fields of DDS_HEADER + DDS_HEADER_DXT10 the decoder uses.
type ddsHeader struct {
	Flags       uint32
	Height      uint32
	Width       uint32
	Depth       uint32
	MipmapCount uint32
	FourCC      uint32

	Format            uint32
	ResourceDimension uint32
	MiscFlag          uint32
	ArraySize         uint32
}

// DecodeDDS decodes a DDS container with the DX10 extension header. The
// returned surfaces are views into data; data must outlive the texture.
func DecodeDDS(data []byte) (*Texture, error) {
	r := binio.NewReader(data)

	hdr, err := readDDSHeader(r)
	if err != nil {
		return nil, err
	}

	desc := Description{
		Width:       hdr.Width,
		Height:      max(1, hdr.Height),
		Depth:       max(1, hdr.Depth),
		ArraySize:   hdr.ArraySize,
		Format:      Format(hdr.Format),
		MipmapCount: max(1, hdr.MipmapCount),
	}

	switch hdr.ResourceDimension {
	case resourceDimensionTexture1D:
		desc.Kind = Kind1D
	case resourceDimensionTexture2D:
		desc.Kind = Kind2D
		if hdr.MiscFlag&resourceMiscTextureCube != 0 {
			desc.Kind = KindCubeMap
		}
	case resourceDimensionTexture3D:
		desc.Kind = Kind3D
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidDimension, hdr.ResourceDimension)
	}
	if desc.Kind != Kind3D {
		desc.Depth = 1
	}
	if desc.Width == 0 {
		return nil, fmt.Errorf("%w: width is 0", ErrInvalidExtent)
	}
	if total, left := desc.surfaceTotal(), uint64(r.Len()); total > left {
		return nil, fmt.Errorf("%w: %d surfaces declared, %d bytes of data", ErrTruncated, total, left)
	}
	desc.SurfaceCount = uint32(desc.surfaceTotal())

	surfaces, consumed, err := buildSurfaces(desc, data[r.Pos():])
	if err != nil {
		return nil, err
	}
	if r.Pos()+consumed != len(data) {
		return nil, fmt.Errorf("%w: %d bytes left", ErrTrailingData, len(data)-r.Pos()-consumed)
	}

	return &Texture{Description: desc, Surfaces: surfaces}, nil
}

// DecodeDDSFile reads and decodes a DDS file from disk.
func DecodeDDSFile(path string) (*Texture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading DDS file: %w", err)
	}
	return DecodeDDS(data)
}

func readDDSHeader(r *binio.Reader) (ddsHeader, error) {
	var hdr ddsHeader

	magic, err := r.Uint32()
	if err != nil {
		return hdr, fmt.Errorf("%w: reading magic", ErrTruncated)
	}
	if magic != ddsMagic {
		return hdr, ErrInvalidMagic
	}

	size, err := r.Uint32()
	if err != nil {
		return hdr, fmt.Errorf("%w: reading header size", ErrTruncated)
	}
	if size != ddsHeaderSize {
		return hdr, fmt.Errorf("%w: %d", ErrInvalidHeaderSize, size)
	}
	// The fixed-size header is read as a block so one bounds check covers it.
	block, err := r.Bytes(ddsHeaderSize - 4)
	if err != nil {
		return hdr, fmt.Errorf("%w: reading header", ErrTruncated)
	}
	h := binio.NewReader(block)
	hdr.Flags, _ = h.Uint32()
	hdr.Height, _ = h.Uint32()
	hdr.Width, _ = h.Uint32()
	_ = h.Skip(4) // pitch or linear size
	hdr.Depth, _ = h.Uint32()
	hdr.MipmapCount, _ = h.Uint32()
	_ = h.Skip(11 * 4) // reserved

	pfSize, _ := h.Uint32()
	if pfSize != ddsPixelFormatSize {
		return hdr, fmt.Errorf("%w: %d", ErrInvalidPixelFormat, pfSize)
	}
	_, _ = h.Uint32() // pixel format flags
	hdr.FourCC, _ = h.Uint32()
	if hdr.FourCC != fourCCDX10 {
		return hdr, fmt.Errorf("%w: fourCC %q", ErrMissingDX10, fourCCString(hdr.FourCC))
	}

	ext, err := r.Bytes(ddsDX10Size)
	if err != nil {
		return hdr, fmt.Errorf("%w: reading DX10 header", ErrTruncated)
	}
	x := binio.NewReader(ext)
	hdr.Format, _ = x.Uint32()
	hdr.ResourceDimension, _ = x.Uint32()
	hdr.MiscFlag, _ = x.Uint32()
	hdr.ArraySize, _ = x.Uint32()
	if hdr.ArraySize < 1 {
		return hdr, ErrInvalidArraySize
	}

	return hdr, nil
}

func fourCCString(v uint32) string {
	return string([]byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)})
}

// EncodeDDS writes t as a DDS container with a DX10 extension header.
// It is used to hand in-process mip chains to the external compressor.
func EncodeDDS(w io.Writer, t *Texture) error {
	if err := t.Validate(); err != nil {
		return err
	}

	flags := uint32(ddsFlagCaps | ddsFlagHeight | ddsFlagWidth | ddsFlagPixelFormat | ddsFlagMipmapCount)
	caps := uint32(ddsCapsTexture)
	if t.MipmapCount > 1 {
		caps |= ddsCapsComplex | ddsCapsMipmap
	}
	var caps2 uint32
	var pitch uint32
	if len(t.Surfaces) > 0 {
		if t.Format.IsBlockCompressed() {
			flags |= ddsFlagLinearSize
			pitch = t.Surfaces[0].Size
		} else {
			flags |= ddsFlagPitch
			pitch = t.Surfaces[0].Stride
		}
	}

	dim := uint32(resourceDimensionTexture2D)
	var misc uint32
	switch t.Kind {
	case Kind1D:
		dim = resourceDimensionTexture1D
	case Kind3D:
		dim = resourceDimensionTexture3D
		flags |= ddsFlagDepth
		caps2 |= ddsCaps2Volume
	case KindCubeMap:
		misc = resourceMiscTextureCube
		caps |= ddsCapsComplex
		caps2 |= ddsCaps2Cube
	}

	out := binio.NewWriter(4 + ddsHeaderSize + ddsDX10Size)
	out.Uint32(ddsMagic)
	out.Uint32(ddsHeaderSize)
	out.Uint32(flags)
	out.Uint32(t.Height)
	out.Uint32(t.Width)
	out.Uint32(pitch)
	out.Uint32(t.Depth)
	out.Uint32(t.MipmapCount)
	for i := 0; i < 11; i++ {
		out.Uint32(0)
	}
	out.Uint32(ddsPixelFormatSize)
	out.Uint32(ddpfFourCC)
	out.Uint32(fourCCDX10)
	for i := 0; i < 5; i++ { // bit count and masks
		out.Uint32(0)
	}
	out.Uint32(caps)
	out.Uint32(caps2)
	out.Uint32(0) // caps3
	out.Uint32(0) // caps4
	out.Uint32(0) // reserved2

	out.Uint32(uint32(t.Format))
	out.Uint32(dim)
	out.Uint32(misc)
	out.Uint32(t.ArraySize)
	out.Uint32(0) // misc flags 2

	if _, err := out.WriteTo(w); err != nil {
		return err
	}
	for _, s := range t.Surfaces {
		if _, err := w.Write(s.Data); err != nil {
			return err
		}
	}
	return nil
}
