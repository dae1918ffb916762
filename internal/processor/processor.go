// Package processor turns one source asset into its compiled engine stream.
// The set of asset kinds is closed; the registry below decides which kind a
// path belongs to.
package processor

import (
	"context"
	"fmt"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-assets/internal/asset"
	"github.com/Faultbox/midgard-assets/internal/config"
	"github.com/Faultbox/midgard-assets/internal/logger"
	"github.com/Faultbox/midgard-assets/internal/tool"
	"github.com/Faultbox/midgard-assets/pkg/shader"
	"github.com/Faultbox/midgard-assets/pkg/texture"
)

// Kind is an asset type with its own processing path.
type Kind int

// Asset kinds.
const (
	KindTexture Kind = iota
	KindCubeMap
	KindVertexShader
	KindFragmentShader
	KindFont
)

// Engine file extensions.
const (
	TextureExt = ".tex"
	ShaderExt  = ".shader"
	FontExt    = ".font"
)

func (k Kind) String() string {
	switch k {
	case KindTexture:
		return "texture"
	case KindCubeMap:
		return "cubemap"
	case KindVertexShader:
		return "vertex shader"
	case KindFragmentShader:
		return "fragment shader"
	case KindFont:
		return "font"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Ext returns the extension of the compiled file.
func (k Kind) Ext() string {
	switch k {
	case KindTexture, KindCubeMap:
		return TextureExt
	case KindVertexShader, KindFragmentShader:
		return ShaderExt
	case KindFont:
		return FontExt
	}
	return ""
}

type entry struct {
	kind  Kind
	match func(rel string) bool
}

// registry is checked in order; the first match wins, so cube strips must
// precede plain textures.
var registry = []entry{
	{KindCubeMap, isCubeStrip},
	{KindTexture, func(rel string) bool { return texture.IsImageExtension(path.Ext(rel)) }},
	{KindVertexShader, hasExt(shader.VertexExt)},
	{KindFragmentShader, hasExt(shader.FragmentExt, ".psh")},
	{KindFont, hasExt(".fnt")},
}

// Match returns the kind handling rel.
func Match(rel string) (Kind, bool) {
	for _, e := range registry {
		if e.match(rel) {
			return e.kind, true
		}
	}
	return 0, false
}

func hasExt(exts ...string) func(string) bool {
	return func(rel string) bool {
		ext := path.Ext(rel)
		for _, e := range exts {
			if strings.EqualFold(ext, e) {
				return true
			}
		}
		return false
	}
}

// isCubeStrip matches "<name>.cube.<image ext>".
func isCubeStrip(rel string) bool {
	ext := path.Ext(rel)
	if !texture.IsImageExtension(ext) {
		return false
	}
	return strings.EqualFold(path.Ext(strings.TrimSuffix(rel, ext)), ".cube")
}

// Processor holds what every handler needs.
type Processor struct {
	cfg     *config.Config
	runner  tool.Runner
	shaders *shader.Compiler
}

// New builds a Processor. The native shader backend follows
// cfg.Shaders.Native.
func New(cfg *config.Config, runner tool.Runner) *Processor {
	var native shader.NativeCompiler
	if cfg.Shaders.Native == config.NativeNaga {
		nc := shader.NewNagaCompiler()
		nc.Validate = cfg.Shaders.Validate
		native = nc
	}
	return &Processor{cfg: cfg, runner: runner, shaders: shader.NewCompiler(native)}
}

type handler func(p *Processor, ctx context.Context, a asset.Asset) ([]byte, error)

var handlers = [...]handler{
	KindTexture:        (*Processor).texture2D,
	KindCubeMap:        (*Processor).cubeMap,
	KindVertexShader:   (*Processor).vertexShader,
	KindFragmentShader: (*Processor).fragmentShader,
	KindFont:           (*Processor).bitmapFont,
}

// Process compiles a and returns the engine stream. Nothing is written to
// the target; scratch files go under a.TempPath.
func (p *Processor) Process(ctx context.Context, kind Kind, a asset.Asset) ([]byte, error) {
	if int(kind) < 0 || int(kind) >= len(handlers) {
		return nil, fmt.Errorf("no handler for %v", kind)
	}
	logger.Debug("processing", zap.String("asset", a.Rel), zap.Stringer("kind", kind))
	return handlers[kind](p, ctx, a)
}
