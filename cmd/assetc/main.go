// assetc compiles game assets listed in a project file into engine streams.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-assets/internal/build"
	"github.com/Faultbox/midgard-assets/internal/config"
	"github.com/Faultbox/midgard-assets/internal/logger"
	"github.com/Faultbox/midgard-assets/internal/manifest"
	"github.com/Faultbox/midgard-assets/internal/tool"
	"github.com/Faultbox/midgard-assets/pkg/font"
	"github.com/Faultbox/midgard-assets/pkg/shader"
	"github.com/Faultbox/midgard-assets/pkg/texture"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "compile", "build":
		os.Exit(cmdCompile(args))
	case "clean":
		os.Exit(cmdClean(args))
	case "inspect":
		cmdInspect(args)
	case "init":
		cmdInit(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`assetc - game asset compiler

Usage:
  assetc <command> [options]

Commands:
  compile [assets...]        Compile stale assets (all manifest entries by default)
  clean [assets...]          Remove compiled outputs, scratch files and hashes
  inspect <file>...          Describe a .tex, .dds, .shader or .font file
  init [path]                Write the default configuration

Options (compile, clean):
  -c, --config <file>        Config file (default ./assetc.yaml)
  -p, --project <file>       Project file listing the assets
      --source/--temp/--target <dir>
      --native naga|none     Native shader backend
      --format <name>        Default texture format, e.g. BC3_UNORM
      --no-mipmaps           Disable mipmap generation
      --debug                Debug logging
      --log-file <file>      Also write JSON logs to a rotating file

Examples:
  assetc compile -p game.proj
  assetc compile textures/rock.png --format BC1_UNORM
  assetc clean
  assetc inspect bin/assets/textures/rock.tex`)
}

// setup parses the shared flags, loads the config and starts logging. The
// remaining positional arguments select a subset of the manifest.
func setup(name string, args []string) (*config.Config, []string, error) {
	fs := pflag.NewFlagSet(name, pflag.ExitOnError)
	var flags config.Flags
	flags.AddFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	cfg, err := config.Load(&flags)
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}
	logger.Sugar.Debugf("Config: %+v", cfg)

	m, err := manifest.Load(cfg.Paths.Project)
	if err != nil {
		return nil, nil, err
	}
	rels := m.Assets
	if fs.NArg() > 0 {
		rels = selectAssets(m.Assets, fs.Args())
	}
	return cfg, rels, nil
}

// selectAssets keeps the manifest entries named on the command line, in
// manifest order.
func selectAssets(all, wanted []string) []string {
	want := make(map[string]bool, len(wanted))
	for _, w := range wanted {
		want[config.NormalizeAsset(w)] = true
	}
	var out []string
	for _, rel := range all {
		if want[config.NormalizeAsset(rel)] {
			out = append(out, rel)
			delete(want, config.NormalizeAsset(rel))
		}
	}
	for w := range want {
		logger.Warn("asset is not in the manifest", zap.String("asset", w))
	}
	return out
}

func cmdCompile(args []string) int {
	cfg, rels, err := setup("compile", args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	report, err := build.New(cfg, tool.NewExec()).Compile(ctx, rels)
	fmt.Printf("Compiled: %d  Up to date: %d  Skipped: %d  Failed: %d\n",
		len(report.Compiled), len(report.UpToDate), len(report.Skipped), len(report.Failed))
	if err != nil {
		for _, rel := range report.Failed {
			fmt.Fprintf(os.Stderr, "FAILED %s\n", rel)
		}
		return 1
	}
	return 0
}

func cmdClean(args []string) int {
	cfg, rels, err := setup("clean", args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer logger.Sync()

	report, err := build.New(cfg, tool.NewExec()).Clean(rels)
	fmt.Printf("Cleaned: %d  Skipped: %d  Failed: %d\n",
		len(report.Cleaned), len(report.Skipped), len(report.Failed))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func cmdInit(args []string) {
	path := config.FileName
	if len(args) > 0 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(os.Stderr, "%s already exists\n", path)
		os.Exit(1)
	}
	if err := config.Default().SaveTo(path); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", path)
}

func cmdInspect(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: assetc inspect <file>...")
		os.Exit(1)
	}

	failed := false
	for _, p := range args {
		if err := inspect(p); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", p, err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func inspect(p string) error {
	data, err := os.ReadFile(p)
	if err != nil {
		return err
	}

	fmt.Printf("File: %s (%d bytes)\n", p, len(data))
	switch ext := strings.ToLower(filepath.Ext(p)); ext {
	case ".tex":
		tex, err := texture.Decode(data)
		if err != nil {
			return err
		}
		printTexture(tex)
	case ".dds":
		tex, err := texture.DecodeDDS(data)
		if err != nil {
			return err
		}
		printTexture(tex)
	case ".shader":
		prog, err := shader.Decode(data)
		if err != nil {
			return err
		}
		printProgram(prog)
	case ".font":
		f, err := font.Decode(data)
		if err != nil {
			return err
		}
		printFont(f)
	default:
		return fmt.Errorf("unknown file type %q", ext)
	}
	fmt.Println()
	return nil
}

func printTexture(t *texture.Texture) {
	fmt.Printf("Kind:     %v\n", t.Kind)
	fmt.Printf("Format:   %v\n", t.Format)
	fmt.Printf("Size:     %dx%dx%d\n", t.Width, t.Height, t.Depth)
	fmt.Printf("Array:    %d\n", t.ArraySize)
	fmt.Printf("Mipmaps:  %d\n", t.MipmapCount)
	fmt.Printf("Surfaces: %d\n", t.SurfaceCount)
	for i, s := range t.Surfaces {
		fmt.Printf("  [%2d] %4dx%-4d depth %d  stride %6d  size %8d\n",
			i, s.Width, s.Height, s.Depth, s.Stride, s.Size)
	}
}

func printProgram(p *shader.Program) {
	fmt.Printf("Stage:    %v\n", p.Stage)
	fmt.Printf("Portable: %d bytes\n", len(p.Portable))
	if p.HasNative() {
		fmt.Printf("Native:   %d bytes\n", len(p.Native))
	} else {
		fmt.Println("Native:   none")
	}
	if p.Stage != shader.StageVertex {
		return
	}
	fmt.Printf("Stride:   %d\n", p.Stride)
	for _, e := range p.Layout {
		fmt.Printf("  %-12v %d  %-7v offset %d\n", e.Slot, e.SemanticIndex, e.Format, e.Offset)
	}
}

func printFont(f *font.Font) {
	fmt.Printf("Texture:  %s (%dx%d)\n", f.Texture, f.ScaleW, f.ScaleH)
	fmt.Printf("Line:     %d\n", f.LineHeight)
	fmt.Printf("Glyphs:   %d (ids %d..%d)\n", len(f.Glyphs), f.MinID, f.MaxID)
	fmt.Printf("Kernings: %d\n", len(f.Kernings))
}
