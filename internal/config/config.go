package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/3-lines-studio/prerender/internal/core"
)

const (
	DefaultEntry           = "src/index.js"
	DefaultOutput          = "dist"
	DefaultMainBundle      = "main.js"
	DefaultRuntimeBundle   = "runtime.js"
	DefaultFrameworkName   = "enact_framework"
	DefaultCatalogManifest = "node_modules/@enact/i18n/ilibmanifest.json"
	DefaultDefaultLocale   = "en-US"
	DefaultTitle           = "App"
	DefaultRenderTimeout   = 30 * time.Second
)

var ErrUnsupportedFormat = errors.New("unsupported config format")

// Config is the prerender build configuration. Values come from defaults, an
// optional config file, PRERENDER_* environment variables and CLI flags, in
// that order.
type Config struct {
	ProjectDir string `toml:"project" yaml:"project"`
	Entry      string `toml:"entry" yaml:"entry"`
	// RuntimeEntry is an optional secondary runtime bundle evaluated before
	// the main bundle.
	RuntimeEntry string `toml:"runtime_entry" yaml:"runtime_entry"`
	Output       string `toml:"output" yaml:"output"`
	Template     string `toml:"template" yaml:"template"`
	Title        string `toml:"title" yaml:"title"`
	RootID       string `toml:"root_id" yaml:"root_id"`

	// Locales is a keyword (none, used, all, tv, signage), a comma separated
	// list or a path to a JSON locale list.
	Locales         string `toml:"locales" yaml:"locales"`
	DefaultLocale   string `toml:"default_locale" yaml:"default_locale"`
	CatalogManifest string `toml:"catalog_manifest" yaml:"catalog_manifest"`

	ExternalFramework string `toml:"externals" yaml:"externals"`
	FrameworkName     string `toml:"framework_name" yaml:"framework_name"`

	MainBundle    string   `toml:"main_bundle" yaml:"main_bundle"`
	RuntimeBundle string   `toml:"runtime_bundle" yaml:"runtime_bundle"`
	RenderTimeout Duration `toml:"render_timeout" yaml:"render_timeout"`

	Production bool `toml:"production" yaml:"production"`
	Verbose    bool `toml:"verbose" yaml:"verbose"`
}

// Duration accepts strings such as "30s" in config files.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func Default() Config {
	return Config{
		ProjectDir:      ".",
		Entry:           DefaultEntry,
		Output:          DefaultOutput,
		Title:           DefaultTitle,
		RootID:          core.DefaultRootID,
		Locales:         core.DefaultLocaleSpec,
		DefaultLocale:   DefaultDefaultLocale,
		CatalogManifest: DefaultCatalogManifest,
		FrameworkName:   DefaultFrameworkName,
		MainBundle:      DefaultMainBundle,
		RuntimeBundle:   DefaultRuntimeBundle,
		RenderTimeout:   Duration{DefaultRenderTimeout},
	}
}

// Load reads path over the defaults. The format follows the extension.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := Decode(data, filepath.Ext(path), &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

func Decode(data []byte, ext string, cfg *Config) error {
	switch strings.ToLower(ext) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("TOML parse error: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("YAML parse error: %w", err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return nil
}

// Validate checks the fields a build cannot run without.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Entry) == "" {
		return errors.New("entry is required")
	}
	if strings.TrimSpace(c.Output) == "" {
		return errors.New("output is required")
	}
	if c.RenderTimeout.Duration < 0 {
		return errors.New("render_timeout cannot be negative")
	}
	if c.DefaultLocale != "" {
		if err := core.ValidateLocale(core.NormalizeLocale(c.DefaultLocale)); err != nil {
			return fmt.Errorf("default_locale: %w", err)
		}
	}
	return nil
}

// OutputDir resolves the output directory against the project.
func (c Config) OutputDir() string {
	if filepath.IsAbs(c.Output) {
		return c.Output
	}
	return filepath.Join(c.ProjectDir, c.Output)
}
