package config

import "github.com/spf13/pflag"

// Flags holds command-line overrides. Empty values leave the config alone.
type Flags struct {
	ConfigPath string
	Debug      bool
	Project    string
	Source     string
	Temp       string
	Target     string
	Native     string
	Format     string
	NoMipmaps  bool
	LogFile    string
}

// AddFlags registers the overrides on flagSet.
func (f *Flags) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVarP(&f.ConfigPath, "config", "c", "", "path to config file")
	flagSet.BoolVar(&f.Debug, "debug", false, "enable debug logging")
	flagSet.StringVarP(&f.Project, "project", "p", "", "project file listing the assets")
	flagSet.StringVar(&f.Source, "source", "", "source asset directory")
	flagSet.StringVar(&f.Temp, "temp", "", "intermediate file directory")
	flagSet.StringVar(&f.Target, "target", "", "compiled asset directory")
	flagSet.StringVar(&f.Native, "native", "", "native shader backend (naga|none)")
	flagSet.StringVar(&f.Format, "format", "", "default texture pixel format")
	flagSet.BoolVar(&f.NoMipmaps, "no-mipmaps", false, "disable mipmap generation")
	flagSet.StringVar(&f.LogFile, "log-file", "", "also write JSON logs to this file")
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Project != "" {
		cfg.Paths.Project = f.Project
	}
	if f.Source != "" {
		cfg.Paths.Source = f.Source
	}
	if f.Temp != "" {
		cfg.Paths.Temp = f.Temp
	}
	if f.Target != "" {
		cfg.Paths.Target = f.Target
	}
	if f.Native != "" {
		cfg.Shaders.Native = f.Native
	}
	if f.Format != "" {
		cfg.Textures.Format = f.Format
	}
	if f.NoMipmaps {
		cfg.Textures.Mipmaps = false
	}
	if f.LogFile != "" {
		cfg.Logging.LogFile = f.LogFile
	}
}
