package texture

import (
	"fmt"
	"image"
)

// Premultiply returns a copy of src with every color channel scaled by
// alpha: out = floor(c * a / 255). Alpha is unchanged. The result is an
// *image.RGBA, whose Pix layout is alpha-premultiplied by definition.
func Premultiply(src *image.NRGBA) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		s := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
		d := dst.Pix[dst.PixOffset(0, y):]
		for x := 0; x < b.Dx()*4; x += 4 {
			a := uint32(s[x+3])
			d[x] = uint8(uint32(s[x]) * a / 255)
			d[x+1] = uint8(uint32(s[x+1]) * a / 255)
			d[x+2] = uint8(uint32(s[x+2]) * a / 255)
			d[x+3] = uint8(a)
		}
	}
	return dst
}

// Downsample halves img with a 2x2 box filter. An axis of size 1 stays 1
// and its single row or column is sampled twice.
func Downsample(img *image.RGBA) *image.RGBA {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	nw, nh := max(1, w/2), max(1, h/2)
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))

	for y := 0; y < nh; y++ {
		y0 := min(2*y, h-1)
		y1 := min(2*y+1, h-1)
		for x := 0; x < nw; x++ {
			x0 := min(2*x, w-1)
			x1 := min(2*x+1, w-1)
			p00 := img.PixOffset(img.Rect.Min.X+x0, img.Rect.Min.Y+y0)
			p10 := img.PixOffset(img.Rect.Min.X+x1, img.Rect.Min.Y+y0)
			p01 := img.PixOffset(img.Rect.Min.X+x0, img.Rect.Min.Y+y1)
			p11 := img.PixOffset(img.Rect.Min.X+x1, img.Rect.Min.Y+y1)
			o := dst.PixOffset(x, y)
			for c := 0; c < 4; c++ {
				sum := uint32(img.Pix[p00+c]) + uint32(img.Pix[p10+c]) +
					uint32(img.Pix[p01+c]) + uint32(img.Pix[p11+c])
				dst.Pix[o+c] = uint8((sum + 2) / 4)
			}
		}
	}
	return dst
}

// MipChain returns base followed by successively downsampled levels down to 1x1.
func MipChain(base *image.RGBA) []*image.RGBA {
	chain := []*image.RGBA{base}
	for level := base; level.Rect.Dx() > 1 || level.Rect.Dy() > 1; {
		level = Downsample(level)
		chain = append(chain, level)
	}
	return chain
}

// FromImages builds an R8G8B8A8 texture from faces x mips images. Every
// face must carry the same number of levels with matching sizes.
func FromImages(kind Kind, format Format, faces [][]*image.RGBA) (*Texture, error) {
	if len(faces) == 0 || len(faces[0]) == 0 {
		return nil, fmt.Errorf("%w: no images", ErrSurfaceMismatch)
	}
	if format != FormatR8G8B8A8Unorm && format != FormatR8G8B8A8UnormSRGB {
		return nil, fmt.Errorf("%w: in-memory surfaces are RGBA8, not %s", ErrUnsupportedTarget, format)
	}
	base := faces[0][0].Rect
	desc := Description{
		Width:       uint32(base.Dx()),
		Height:      uint32(base.Dy()),
		Depth:       1,
		ArraySize:   uint32(len(faces)),
		Kind:        kind,
		Format:      format,
		MipmapCount: uint32(len(faces[0])),
	}
	if kind == KindCubeMap {
		if len(faces)%6 != 0 {
			return nil, fmt.Errorf("%w: cubemap needs a multiple of 6 faces, got %d", ErrSurfaceMismatch, len(faces))
		}
		desc.ArraySize = uint32(len(faces) / 6)
	}
	desc.SurfaceCount = desc.Faces() * desc.MipmapCount

	var total int
	for _, mips := range faces {
		if len(mips) != int(desc.MipmapCount) {
			return nil, fmt.Errorf("%w: faces have different mip counts", ErrSurfaceMismatch)
		}
		for _, m := range mips {
			total += m.Rect.Dx() * m.Rect.Dy() * 4
		}
	}

	buf := make([]byte, 0, total)
	for _, mips := range faces {
		for _, m := range mips {
			w := m.Rect.Dx() * 4
			for y := 0; y < m.Rect.Dy(); y++ {
				off := m.PixOffset(m.Rect.Min.X, m.Rect.Min.Y+y)
				buf = append(buf, m.Pix[off:off+w]...)
			}
		}
	}

	surfaces, consumed, err := buildSurfaces(desc, buf)
	if err != nil {
		return nil, err
	}
	if consumed != len(buf) {
		return nil, fmt.Errorf("%w: mip sizes do not follow the halving rule", ErrSurfaceMismatch)
	}
	return &Texture{Description: desc, Surfaces: surfaces}, nil
}
