package processor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"math/bits"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-assets/internal/asset"
	"github.com/Faultbox/midgard-assets/internal/logger"
	"github.com/Faultbox/midgard-assets/pkg/texture"
)

// ErrSettings marks an asset whose texture settings cannot be resolved. The
// build skips such assets with a warning instead of failing them.
var ErrSettings = errors.New("texture settings undetermined")

// ErrFormatMismatch is returned when a tool produced a different pixel
// format than requested.
var ErrFormatMismatch = errors.New("tool output has unexpected pixel format")

const (
	stagingSuffix    = asset.StagingSuffix
	compressedSuffix = asset.CompressedSuffix
	cubeSuffix       = asset.CubeSuffix
)

// TextureSettings are the resolved compile options of one texture.
type TextureSettings struct {
	Format  texture.Format
	Family  texture.Family
	Mipmaps bool
}

// Settings resolves the pixel format and mipmap switch for rel from the
// defaults and its override.
func (p *Processor) Settings(rel string) (TextureSettings, error) {
	formatName := p.cfg.Textures.Format
	mipmaps := p.cfg.Textures.Mipmaps
	if o, ok := p.cfg.Override(rel); ok {
		if o.Format != "" {
			formatName = o.Format
		}
		if o.Mipmaps != nil {
			mipmaps = *o.Mipmaps
		}
	}

	format, err := texture.ParseFormat(formatName)
	if err != nil {
		return TextureSettings{}, fmt.Errorf("%w: %w", ErrSettings, err)
	}
	family, err := texture.CompressionFamily(format)
	if err != nil {
		return TextureSettings{}, fmt.Errorf("%w: %w", ErrSettings, err)
	}
	return TextureSettings{Format: format, Family: family, Mipmaps: mipmaps}, nil
}

// stagingFormat is the uncompressed format handed to the tools. It keeps
// the color space of the target.
func stagingFormat(target texture.Format) texture.Format {
	if strings.HasSuffix(target.String(), "_SRGB") {
		return texture.FormatR8G8B8A8UnormSRGB
	}
	return texture.FormatR8G8B8A8Unorm
}

// texture2D: load, gate, premultiply, mips, staging DDS, compress, encode.
func (p *Processor) texture2D(ctx context.Context, a asset.Asset) ([]byte, error) {
	settings, err := p.Settings(a.Rel)
	if err != nil {
		return nil, err
	}

	img, err := texture.LoadImage(a.SourcePath)
	if err != nil {
		return nil, err
	}
	if err := texture.CheckDimensions(img.Rect.Dx(), img.Rect.Dy()); err != nil {
		return nil, err
	}

	base := texture.Premultiply(img)
	levels := []*image.RGBA{base}
	if settings.Mipmaps {
		levels = texture.MipChain(base)
	}
	staged, err := texture.FromImages(texture.Kind2D, stagingFormat(settings.Format), [][]*image.RGBA{levels})
	if err != nil {
		return nil, err
	}

	stagingPath := a.TempFile(stagingSuffix)
	if err := writeDDS(stagingPath, staged); err != nil {
		return nil, err
	}

	var tex *texture.Texture
	if settings.Family == texture.FamilyRaw {
		tex, err = texture.DecodeDDSFile(stagingPath)
	} else {
		tex, err = p.compress(ctx, stagingPath, a.TempFile(compressedSuffix), settings, len(levels))
	}
	if err != nil {
		return nil, err
	}
	if tex.Format != settings.Format {
		return nil, fmt.Errorf("%w: got %s, want %s", ErrFormatMismatch, tex.Format, settings.Format)
	}
	return encodeTexture(tex)
}

// cubeMap: slice the strip, premultiply each face, write face images,
// assemble, compress, encode.
func (p *Processor) cubeMap(ctx context.Context, a asset.Asset) ([]byte, error) {
	settings, err := p.Settings(a.Rel)
	if err != nil {
		return nil, err
	}

	strip, err := texture.LoadImage(a.SourcePath)
	if err != nil {
		return nil, err
	}
	tiles, err := texture.SliceCubeStrip(strip)
	if err != nil {
		return nil, err
	}

	// Assembler arguments: output, then faces in container order.
	cubePath := a.TempFile(cubeSuffix)
	args := []any{cubePath}
	for _, tile := range texture.ByFace(tiles) {
		facePath := a.TempFile(asset.FaceSuffix(int(tile.Face)))
		if err := writePNG(facePath, asStored(texture.Premultiply(tile.Image))); err != nil {
			return nil, err
		}
		args = append(args, facePath)
	}

	assembler := p.cfg.Tools.Assembler
	if _, err := p.runner.Run(ctx, assembler.Path, assembler.Args, args...); err != nil {
		return nil, fmt.Errorf("assembling cubemap: %w", err)
	}

	mips := 1
	if settings.Mipmaps {
		mips = bits.Len(uint(tiles[0].Image.Rect.Dx()))
	}
	tex, err := p.compress(ctx, cubePath, a.TempFile(compressedSuffix), settings, mips)
	if err != nil {
		return nil, err
	}
	if tex.Kind != texture.KindCubeMap {
		return nil, fmt.Errorf("%w: assembled texture is %v, not a cubemap", ErrFormatMismatch, tex.Kind)
	}
	if tex.Format != settings.Format {
		return nil, fmt.Errorf("%w: got %s, want %s", ErrFormatMismatch, tex.Format, settings.Format)
	}
	return encodeTexture(tex)
}

// compress runs the compressor on in and decodes its output.
func (p *Processor) compress(ctx context.Context, in, out string, settings TextureSettings, mips int) (*texture.Texture, error) {
	compressor := p.cfg.Tools.Compressor
	logger.Debug("compressing",
		zap.String("input", in),
		zap.Stringer("format", settings.Format),
		zap.Stringer("family", settings.Family))
	if _, err := p.runner.Run(ctx, compressor.Path, compressor.Args, in, out, settings.Format, mips); err != nil {
		return nil, fmt.Errorf("compressing texture: %w", err)
	}
	tex, err := texture.DecodeDDSFile(out)
	if err != nil {
		return nil, fmt.Errorf("reading compressor output: %w", err)
	}
	return tex, nil
}

func encodeTexture(tex *texture.Texture) ([]byte, error) {
	var buf bytes.Buffer
	if err := texture.Encode(&buf, tex); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeDDS(p string, tex *texture.Texture) error {
	var buf bytes.Buffer
	if err := texture.EncodeDDS(&buf, tex); err != nil {
		return err
	}
	return writeScratch(p, buf.Bytes())
}

// asStored relabels premultiplied pixels as NRGBA so the PNG encoder
// writes the bytes unchanged instead of un-premultiplying them.
func asStored(img *image.RGBA) *image.NRGBA {
	return &image.NRGBA{Pix: img.Pix, Stride: img.Stride, Rect: img.Rect}
}

func writePNG(p string, img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(p), err)
	}
	return writeScratch(p, buf.Bytes())
}

func writeScratch(p string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return err
	}
	return os.WriteFile(p, data, 0644)
}
