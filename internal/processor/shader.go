package processor

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-assets/internal/asset"
	"github.com/Faultbox/midgard-assets/internal/logger"
	"github.com/Faultbox/midgard-assets/pkg/shader"
)

func (p *Processor) vertexShader(_ context.Context, a asset.Asset) ([]byte, error) {
	return p.compileShader(a, shader.StageVertex)
}

func (p *Processor) fragmentShader(_ context.Context, a asset.Asset) ([]byte, error) {
	return p.compileShader(a, shader.StageFragment)
}

func (p *Processor) compileShader(a asset.Asset, stage shader.Stage) ([]byte, error) {
	src, err := os.ReadFile(a.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("reading shader: %w", err)
	}

	prog, err := p.shaders.Compile(src, stage)
	if err != nil {
		return nil, err
	}
	switch {
	case prog.HasNative():
	case shader.Split(src).HasNative():
		logger.Warn("native shader backend unavailable, writing portable source only",
			zap.String("asset", a.Rel))
	default:
		logger.Debug("shader has no native section", zap.String("asset", a.Rel))
	}

	var buf bytes.Buffer
	if err := prog.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
