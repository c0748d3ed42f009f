// Package config loads macrokit.yaml / macrokit.toml.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Format is the syntax of a configuration file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FileNames are the configuration files Find looks for, in order.
var FileNames = []string{"macrokit.yaml", "macrokit.yml", "macrokit.toml"}

// Config is the expander configuration.
type Config struct {
	// Impls is the directory, relative to a template, holding implementation modules.
	Impls string `yaml:"impls" toml:"impls" validate:"required"`
	// ArgsIdent is the name of the configuration record in implementation files.
	ArgsIdent string `yaml:"args_ident" toml:"args_ident" validate:"required"`
	// BuildTag marks template files.
	BuildTag string `yaml:"build_tag" toml:"build_tag" validate:"required"`
	// OutputSuffix replaces ".go" in the name of expanded files.
	OutputSuffix string `yaml:"output_suffix" toml:"output_suffix" validate:"required,endswith=.go,ne=.go"`
	// Jobs bounds the number of files expanded in parallel.
	Jobs int `yaml:"jobs" toml:"jobs" validate:"gte=1"`
	// Include restricts templates to matching file names (doublestar patterns).
	Include []string  `yaml:"include,omitempty" toml:"include,omitempty"`
	Log     LogConfig `yaml:"log" toml:"log"`
}

// LogConfig configures the CLI logger.
type LogConfig struct {
	Level string `yaml:"level" toml:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `yaml:"json" toml:"json"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	var c Config
	applyDefaults(&c)

	return &c
}

// FormatOf returns the format implied by the extension of path.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unsupported config file %s (expected .yaml, .yml or .toml)", path)
	}
}

// LoadFile loads and parses the configuration file at path.
func LoadFile(fs afero.Fs, path string) (*Config, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// Parse parses configuration data, applies defaults and validates the result.
func Parse(data []byte, format Format) (*Config, error) {
	var cfg Config

	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)

		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	case FormatTOML:
		meta, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config TOML: %w", err)
		}

		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("unknown config keys: %v", undecoded)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(c *Config) {
	if c.Impls == "" {
		c.Impls = "impls"
	}

	if c.ArgsIdent == "" {
		c.ArgsIdent = "Args"
	}

	if c.BuildTag == "" {
		c.BuildTag = "macrokit"
	}

	if c.OutputSuffix == "" {
		c.OutputSuffix = "_expanded.go"
	}

	if c.Jobs == 0 {
		c.Jobs = runtime.GOMAXPROCS(0)
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return nil
}

// Find walks up from startDir and returns the first configuration file
// found, or ok == false when there is none.
func Find(fs afero.Fs, startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}

	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}

	for {
		for _, name := range FileNames {
			candidate := filepath.Join(dir, name)
			if _, err := fs.Stat(candidate); err == nil {
				return candidate, true, nil
			} else if !errors.Is(err, os.ErrNotExist) {
				return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}

		dir = parent
	}

	return "", false, nil
}

// Load returns the configuration at path, or the one found from startDir
// when path is empty, or Default.
func Load(fs afero.Fs, path, startDir string) (*Config, error) {
	if path == "" {
		found, ok, err := Find(fs, startDir)
		if err != nil {
			return nil, err
		}

		if !ok {
			return Default(), nil
		}

		path = found
	}

	return LoadFile(fs, path)
}

// Marshal serializes cfg in the given format.
func Marshal(cfg *Config, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(cfg)
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return nil, err
		}

		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}
}

// WriteFile writes cfg to path in the format implied by its extension.
func WriteFile(fs afero.Fs, cfg *Config, path string) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}

	data, err := Marshal(cfg, format)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}

	return nil
}
