// Package config loads the annokit YAML configuration.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/FocuswithJustin/annokit/core/ann"
	"github.com/FocuswithJustin/annokit/core/formats"
	"github.com/FocuswithJustin/annokit/internal/logging"
)

// Config is the root configuration.
type Config struct {
	Log      LogConfig         `yaml:"log"`
	Labels   LabelsConfig      `yaml:"labels"`
	Symbols  SymbolsConfig     `yaml:"symbols"`
	Catalog  CatalogConfig     `yaml:"catalog"`
	Server   ServerConfig      `yaml:"server"`
	Profile  string            `yaml:"profile"`
	Profiles []formats.Profile `yaml:"profiles"`
}

// LogConfig selects the log level and format.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// LabelsConfig controls the text form of labels.
type LabelsConfig struct {
	// Separator splits labels in text form.
	Separator string `yaml:"separator"`
	// Empty is the placeholder written for an empty label.
	Empty string `yaml:"empty"`
}

// SymbolsConfig adds entries to the symbol table. With Replace, the
// built-in symbols are dropped.
type SymbolsConfig struct {
	Replace bool     `yaml:"replace"`
	Silence []string `yaml:"silence"`
	Pause   []string `yaml:"pause"`
	Noise   []string `yaml:"noise"`
	Laugh   []string `yaml:"laugh"`
	Dummy   []string `yaml:"dummy"`
}

// CatalogConfig locates the annotation catalog database.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig configures the REST API.
type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	RateLimit      int      `yaml:"rate_limit"` // requests per minute, 0 disables
	RateLimitBurst int      `yaml:"rate_limit_burst"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Log:     LogConfig{Level: "info", Format: "text"},
		Labels:  LabelsConfig{Separator: " "},
		Catalog: CatalogConfig{Path: "annokit.db"},
		Server:  ServerConfig{Addr: ":8080"},
		Profile: formats.Native,
	}
}

// Load reads the YAML configuration file at path and returns a validated
// [Config]. Keys missing from the file keep their default value.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level %q is invalid; valid values: debug, info, warn, error", cfg.Log.Level))
	}
	if _, err := logging.ParseFormat(cfg.Log.Format); err != nil {
		errs = append(errs, fmt.Errorf("log.format %q is invalid; valid values: json, text", cfg.Log.Format))
	}
	if cfg.Labels.Separator == "" {
		errs = append(errs, errors.New("labels.separator is required"))
	}
	if cfg.Catalog.Path == "" {
		errs = append(errs, errors.New("catalog.path is required"))
	}
	if cfg.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if cfg.Server.RateLimit < 0 || cfg.Server.RateLimitBurst < 0 {
		errs = append(errs, errors.New("server.rate_limit and server.rate_limit_burst must not be negative"))
	}

	seen := make(map[string]int, len(cfg.Profiles))
	for i, p := range cfg.Profiles {
		prefix := fmt.Sprintf("profiles[%d]", i)
		if p.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
			continue
		}
		if prev, ok := seen[p.Name]; ok {
			errs = append(errs, fmt.Errorf("%s.name %q is a duplicate of profiles[%d]", prefix, p.Name, prev))
		}
		seen[p.Name] = i
	}
	if _, ok := seen[cfg.Profile]; !ok && !formats.Has(cfg.Profile) {
		errs = append(errs, fmt.Errorf("profile %q is not a known format", cfg.Profile))
	}

	return errors.Join(errs...)
}

// LogLevel returns the parsed log level.
func (c *Config) LogLevel() logging.Level {
	level, _ := logging.ParseLevel(c.Log.Level)
	return level
}

// LogFormat returns the parsed log format.
func (c *Config) LogFormat() logging.Format {
	format, _ := logging.ParseFormat(c.Log.Format)
	return format
}

// SymbolTable returns the symbol table described by the configuration.
func (c *Config) SymbolTable() *ann.SymbolTable {
	st := ann.DefaultSymbols()
	if c.Symbols.Replace {
		st = ann.NewSymbolTable()
	}
	groups := []struct {
		kind     ann.SymbolKind
		contents []string
	}{
		{ann.SymbolSilence, c.Symbols.Silence},
		{ann.SymbolPause, c.Symbols.Pause},
		{ann.SymbolNoise, c.Symbols.Noise},
		{ann.SymbolLaugh, c.Symbols.Laugh},
		{ann.SymbolDummy, c.Symbols.Dummy},
	}
	for _, g := range groups {
		for _, s := range g.contents {
			st.Add(s, g.kind)
		}
	}
	return st
}

// RegisterProfiles adds the configured profiles to the format registry.
func (c *Config) RegisterProfiles() error {
	for i := range c.Profiles {
		if err := formats.Register(&c.Profiles[i]); err != nil {
			return fmt.Errorf("config: profiles[%d]: %w", i, err)
		}
	}
	return nil
}
