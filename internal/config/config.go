// Package config handles build configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// Native shader backends.
const (
	NativeNaga = "naga"
	NativeNone = "none"
)

// Config holds all build settings.
type Config struct {
	Paths     PathsConfig              `yaml:"paths"`
	Tools     ToolsConfig              `yaml:"tools"`
	Textures  TextureConfig            `yaml:"textures"`
	Shaders   ShaderConfig             `yaml:"shaders"`
	Overrides map[string]AssetOverride `yaml:"overrides,omitempty"`
	Logging   LoggingConfig            `yaml:"logging"`
}

// PathsConfig holds the project file and the three asset roots.
type PathsConfig struct {
	Project string `yaml:"project"` // XML manifest listing the assets
	Source  string `yaml:"source"`
	Temp    string `yaml:"temp"`
	Target  string `yaml:"target"`
}

// ToolConfig names an external executable and its argument template.
// Placeholders {0}, {1}, ... are replaced per invocation.
type ToolConfig struct {
	Path string `yaml:"path"`
	Args string `yaml:"args"`
}

// ToolsConfig holds the external texture tools.
type ToolsConfig struct {
	// Compressor args: {0} input DDS, {1} output DDS, {2} pixel format,
	// {3} mip level count.
	Compressor ToolConfig `yaml:"compressor"`
	// Assembler args: {0} output DDS, {1}..{6} faces +X,-X,+Y,-Y,+Z,-Z.
	Assembler ToolConfig `yaml:"assembler"`
}

// TextureConfig holds defaults applied to every texture.
type TextureConfig struct {
	Format  string `yaml:"format"`
	Mipmaps bool   `yaml:"mipmaps"`
}

// ShaderConfig selects the native shader backend.
type ShaderConfig struct {
	Native   string `yaml:"native"` // "naga" or "none"
	Validate bool   `yaml:"validate"`
}

// AssetOverride replaces texture defaults for one asset.
type AssetOverride struct {
	Format  string `yaml:"format,omitempty"`
	Mipmaps *bool  `yaml:"mipmaps,omitempty"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Project: "assets.proj",
			Source:  "assets",
			Temp:    "obj/assets",
			Target:  "bin/assets",
		},
		Tools: ToolsConfig{
			Compressor: ToolConfig{
				Path: "texconv",
				Args: "-nologo -y -f {2} -m {3} -o {1} {0}",
			},
			Assembler: ToolConfig{
				Path: "texassemble",
				Args: "cube -nologo -y -o {0} {1} {2} {3} {4} {5} {6}",
			},
		},
		Textures: TextureConfig{
			Format:  "BC3_UNORM",
			Mipmaps: true,
		},
		Shaders: ShaderConfig{
			Native:   NativeNaga,
			Validate: true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks settings that would otherwise fail mid-build.
func (c *Config) Validate() error {
	var errs []error
	for name, v := range map[string]string{
		"paths.project": c.Paths.Project,
		"paths.source":  c.Paths.Source,
		"paths.temp":    c.Paths.Temp,
		"paths.target":  c.Paths.Target,
	} {
		if v == "" {
			errs = append(errs, fmt.Errorf("%s must be set", name))
		}
	}
	switch c.Shaders.Native {
	case NativeNaga, NativeNone:
	default:
		errs = append(errs, fmt.Errorf("shaders.native must be %q or %q, got %q", NativeNaga, NativeNone, c.Shaders.Native))
	}
	return errors.Join(errs...)
}

// NormalizeAsset converts an asset key to the slash separated form used by
// the manifest and the override table.
func NormalizeAsset(rel string) string {
	return path.Clean(strings.ReplaceAll(rel, "\\", "/"))
}

// Override returns the override for an asset path, if any.
func (c *Config) Override(rel string) (AssetOverride, bool) {
	want := NormalizeAsset(rel)
	for key, o := range c.Overrides {
		if NormalizeAsset(key) == want {
			return o, true
		}
	}
	return AssetOverride{}, false
}
