package texture

import (
	"errors"
	"fmt"
	"image"
)

// ErrInvalidCubeStrip is returned for cube strips that are not 6n x n with n a power of two.
var ErrInvalidCubeStrip = errors.New("invalid cubemap strip")

// CubeFace identifies a cubemap face in container order.
type CubeFace int

// Cube faces in DDS/D3D array-slice order.
const (
	FacePositiveX CubeFace = iota
	FaceNegativeX
	FacePositiveY
	FaceNegativeY
	FacePositiveZ
	FaceNegativeZ
)

var cubeFaceNames = [...]string{"+X", "-X", "+Y", "-Y", "+Z", "-Z"}

func (f CubeFace) String() string {
	if f >= 0 && int(f) < len(cubeFaceNames) {
		return cubeFaceNames[f]
	}
	return fmt.Sprintf("CubeFace(%d)", int(f))
}

// StripOrder is the face order of the tiles in a horizontal cube strip,
// left to right.
var StripOrder = [6]CubeFace{
	FaceNegativeZ,
	FaceNegativeX,
	FacePositiveZ,
	FacePositiveX,
	FaceNegativeY,
	FacePositiveY,
}

// CubeTile is one square face cut from a strip.
type CubeTile struct {
	Face  CubeFace
	Image *image.NRGBA
}

// SliceCubeStrip cuts a 6n x n horizontal strip into six n x n tiles,
// returned in StripOrder.
func SliceCubeStrip(strip *image.NRGBA) ([6]CubeTile, error) {
	var tiles [6]CubeTile
	w, h := strip.Rect.Dx(), strip.Rect.Dy()
	if w%6 != 0 {
		return tiles, fmt.Errorf("%w: width %d is not a multiple of 6", ErrInvalidCubeStrip, w)
	}
	n := w / 6
	if n != h {
		return tiles, fmt.Errorf("%w: tile width %d does not match height %d", ErrInvalidCubeStrip, n, h)
	}
	if err := CheckDimensions(n, h); err != nil {
		return tiles, fmt.Errorf("%w: %w", ErrInvalidCubeStrip, err)
	}

	for i, face := range StripOrder {
		tile := image.NewNRGBA(image.Rect(0, 0, n, n))
		for y := 0; y < n; y++ {
			src := strip.PixOffset(strip.Rect.Min.X+i*n, strip.Rect.Min.Y+y)
			copy(tile.Pix[tile.PixOffset(0, y):tile.PixOffset(0, y)+n*4], strip.Pix[src:src+n*4])
		}
		tiles[i] = CubeTile{Face: face, Image: tile}
	}
	return tiles, nil
}

// ByFace reorders strip tiles into container face order (+X,-X,+Y,-Y,+Z,-Z).
func ByFace(tiles [6]CubeTile) [6]CubeTile {
	var out [6]CubeTile
	for _, t := range tiles {
		out[t.Face] = t
	}
	return out
}
