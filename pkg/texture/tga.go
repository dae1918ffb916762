package texture

import (
	"errors"
	"fmt"
	"image"
)

// TGA image type constants.
const (
	TGATypeUncompressed = 2  // Uncompressed true-color
	TGATypeRLE          = 10 // RLE compressed true-color
)

var errTGATruncated = errors.New("TGA data truncated")

// DecodeTGA decodes uncompressed (type 2) and RLE (type 10) true-color TGA
// files with 24 or 32 bits per pixel. Alpha is kept straight.
func DecodeTGA(data []byte) (*image.NRGBA, error) {
	if len(data) < 18 {
		return nil, errTGATruncated
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	descriptor := data[17]

	if colorMapType != 0 {
		return nil, fmt.Errorf("color-mapped TGA not supported")
	}
	if imageType != TGATypeUncompressed && imageType != TGATypeRLE {
		return nil, fmt.Errorf("unsupported TGA type %d (only uncompressed/RLE true-color supported)", imageType)
	}
	if bpp != 24 && bpp != 32 {
		return nil, fmt.Errorf("unsupported TGA bit depth %d (only 24/32 supported)", bpp)
	}

	if width > MaxDimension || height > MaxDimension {
		return nil, fmt.Errorf("%w: %dx%d (max %d)", ErrTooLarge, width, height, MaxDimension)
	}

	offset := 18 + idLength
	if offset > len(data) {
		return nil, errTGATruncated
	}
	src := data[offset:]
	pixelBytes := bpp / 8

	// Checked before the image is allocated. An RLE packet expands to at
	// most 128 pixels, so a stream that cannot cover the image is corrupt.
	count := width * height
	switch {
	case imageType == TGATypeUncompressed && len(src) < count*pixelBytes:
		return nil, fmt.Errorf("%w: %d pixels need %d bytes, have %d", errTGATruncated, count, count*pixelBytes, len(src))
	case imageType == TGATypeRLE && count > 128*(len(src)/(1+pixelBytes)):
		return nil, fmt.Errorf("%w: RLE stream of %d bytes cannot hold %d pixels", errTGATruncated, len(src), count)
	}

	d := &tgaDecoder{
		img:         image.NewNRGBA(image.Rect(0, 0, width, height)),
		src:         src,
		width:       width,
		height:      height,
		pixelBytes:  pixelBytes,
		topToBottom: descriptor&0x20 != 0,
	}

	var err error
	if imageType == TGATypeUncompressed {
		err = d.decodeRaw()
	} else {
		err = d.decodeRLE()
	}
	if err != nil {
		return nil, err
	}
	return d.img, nil
}

type tgaDecoder struct {
	img         *image.NRGBA
	src         []byte
	pos         int
	width       int
	height      int
	pixelBytes  int
	topToBottom bool
}

// readPixel reads one BGR(A) pixel from the source stream.
func (d *tgaDecoder) readPixel() ([4]byte, bool) {
	if d.pos+d.pixelBytes > len(d.src) {
		return [4]byte{}, false
	}
	p := d.src[d.pos:]
	px := [4]byte{p[2], p[1], p[0], 255}
	if d.pixelBytes == 4 {
		px[3] = p[3]
	}
	d.pos += d.pixelBytes
	return px, true
}

// put stores the n-th pixel in file order, flipping bottom-up images.
func (d *tgaDecoder) put(n int, px [4]byte) {
	x, y := n%d.width, n/d.width
	if !d.topToBottom {
		y = d.height - 1 - y
	}
	copy(d.img.Pix[d.img.PixOffset(x, y):], px[:])
}

func (d *tgaDecoder) decodeRaw() error {
	count := d.width * d.height
	for n := 0; n < count; n++ {
		px, _ := d.readPixel()
		d.put(n, px)
	}
	return nil
}

// decodeRLE decodes run-length packets. A short stream leaves the remaining
// pixels transparent rather than failing.
func (d *tgaDecoder) decodeRLE() error {
	count := d.width * d.height
	for n := 0; n < count && d.pos < len(d.src); {
		packet := d.src[d.pos]
		d.pos++
		run := int(packet&0x7F) + 1

		if packet&0x80 != 0 {
			px, ok := d.readPixel()
			if !ok {
				break
			}
			for i := 0; i < run && n < count; i++ {
				d.put(n, px)
				n++
			}
			continue
		}

		for i := 0; i < run && n < count; i++ {
			px, ok := d.readPixel()
			if !ok {
				return nil
			}
			d.put(n, px)
			n++
		}
	}
	return nil
}
