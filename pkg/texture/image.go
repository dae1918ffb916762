package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"  // GIF decoder registration
	_ "image/jpeg" // JPEG decoder registration
	_ "image/png"  // PNG decoder registration
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"  // BMP decoder registration
	_ "golang.org/x/image/tiff" // TIFF decoder registration
	_ "golang.org/x/image/webp" // WebP decoder registration
)

// MaxDimension is the largest width or height accepted for a source image.
const MaxDimension = 32767

// Dimension errors.
var (
	ErrNotPowerOfTwo = errors.New("texture dimension is not a power of two")
	ErrTooLarge      = errors.New("texture dimension exceeds maximum")
)

// imageExtensions lists the source image extensions LoadImage understands.
var imageExtensions = []string{".png", ".tga", ".bmp", ".jpg", ".jpeg", ".gif", ".tif", ".tiff", ".webp"}

// IsImageExtension reports whether ext (with dot) names a loadable image.
func IsImageExtension(ext string) bool {
	ext = strings.ToLower(ext)
	for _, e := range imageExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// LoadImage reads an image file and returns it with straight alpha.
func LoadImage(path string) (*image.NRGBA, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	return DecodeImage(data, filepath.Ext(path))
}

// DecodeImage decodes image bytes. TGA has no magic number, so ext selects
// the TGA decoder; every other format is sniffed.
func DecodeImage(data []byte, ext string) (*image.NRGBA, error) {
	if strings.EqualFold(ext, ".tga") {
		return DecodeTGA(data)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return ToNRGBA(img), nil
}

// ToNRGBA converts any image to a zero-origin *image.NRGBA.
func ToNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// IsPowerOfTwo reports whether v is a non-zero power of two.
func IsPowerOfTwo(v int) bool {
	return v > 0 && v&(v-1) == 0
}

// CheckDimensions rejects widths and heights that are zero, not a power
// of two, or larger than MaxDimension.
func CheckDimensions(width, height int) error {
	for _, v := range [2]int{width, height} {
		if v > MaxDimension {
			return fmt.Errorf("%w: %dx%d (max %d)", ErrTooLarge, width, height, MaxDimension)
		}
		if !IsPowerOfTwo(v) {
			return fmt.Errorf("%w: %dx%d", ErrNotPowerOfTwo, width, height)
		}
	}
	return nil
}
