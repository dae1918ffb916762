package processor

import (
	"bytes"
	"context"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-assets/internal/asset"
	"github.com/Faultbox/midgard-assets/internal/logger"
	"github.com/Faultbox/midgard-assets/pkg/font"
)

func (p *Processor) bitmapFont(_ context.Context, a asset.Asset) ([]byte, error) {
	d, err := font.ParseDescriptorFile(a.SourcePath)
	if err != nil {
		return nil, err
	}
	f, err := font.Compile(d, a.Rel)
	if err != nil {
		return nil, err
	}
	logger.Debug("font compiled",
		zap.String("asset", a.Rel),
		zap.Int("glyphs", len(f.Glyphs)),
		zap.Int("kernings", len(f.Kernings)))

	var buf bytes.Buffer
	if err := f.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
