// Package config loads and validates the run configuration (mars.toml, or a
// YAML file with the same keys) and fills defaults.
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
)

// ErrConfig marks configuration problems. They are fatal.
var ErrConfig = errors.New("config")

const (
	DefaultMaxEntries = 50
	DefaultTimeout    = 30 * time.Second
)

type Config struct {
	// BotName is the first part of the User-Agent.
	BotName string `toml:"bot_name" yaml:"bot_name"`
	// From is a contact e-mail address sent with every request.
	From string `toml:"from" yaml:"from"`
	// Homepage is advertised in the User-Agent, optional.
	Homepage     string        `toml:"homepage" yaml:"homepage"`
	FeedDir      string        `toml:"feed_dir" yaml:"feed_dir"`
	OutDir       string        `toml:"out_dir" yaml:"out_dir"`
	TemplatesDir string        `toml:"templates_dir" yaml:"templates_dir"`
	MaxEntries   int           `toml:"max_entries" yaml:"max_entries"`
	Timeout      time.Duration `toml:"timeout" yaml:"timeout"`
	Feeds        []Feed        `toml:"feeds" yaml:"feeds"`
	Storage      Storage       `toml:"storage" yaml:"storage"`
	Proxy        Proxy         `toml:"proxy" yaml:"proxy"`
	LogLevel     string        `toml:"log_level" yaml:"log_level"`
	LogFormat    string        `toml:"log_format" yaml:"log_format"` // pretty|json|text
	LogColor     string        `toml:"log_color" yaml:"log_color"`   // auto|always|never
	MetricsFile  string        `toml:"metrics_file" yaml:"metrics_file"`
	ExportPath   string        `toml:"export_path" yaml:"export_path"`
}

type Feed struct {
	URL string `toml:"url" yaml:"url"`
}

type Storage struct {
	Type string `toml:"type" yaml:"type"` // fs (default) | sqlite
	DSN  string `toml:"dsn" yaml:"dsn"`   // sqlite only, defaults to <feed_dir>/cache.db
}

type Proxy struct {
	HTTP  string `toml:"http" yaml:"http"`
	HTTPS string `toml:"https" yaml:"https"`
}

// Load reads path as TOML, or as YAML for .yaml/.yml files, and validates it.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrConfig, path, err)
	}
	var c Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("%w: unmarshal %s: %v", ErrConfig, path, err)
		}
	default:
		if _, err := toml.Decode(string(b), &c); err != nil {
			return nil, fmt.Errorf("%w: decode %s: %v", ErrConfig, path, err)
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks required keys and fills defaults.
func (c *Config) Validate() error {
	if c.BotName == "" {
		return fmt.Errorf("%w: bot_name is required", ErrConfig)
	}
	if c.From == "" {
		return fmt.Errorf("%w: from is required", ErrConfig)
	}
	if c.FeedDir == "" {
		return fmt.Errorf("%w: feed_dir is required", ErrConfig)
	}
	if c.OutDir == "" {
		return fmt.Errorf("%w: out_dir is required", ErrConfig)
	}
	if c.TemplatesDir == "" {
		return fmt.Errorf("%w: templates_dir is required", ErrConfig)
	}
	if c.MaxEntries < 0 {
		return fmt.Errorf("%w: max_entries must be >= 0", ErrConfig)
	}
	if c.MaxEntries == 0 {
		c.MaxEntries = DefaultMaxEntries
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must be >= 0", ErrConfig)
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	c.Storage.Type = strings.ToLower(c.Storage.Type)
	switch c.Storage.Type {
	case "":
		c.Storage.Type = "fs"
	case "fs", "sqlite":
	default:
		return fmt.Errorf("%w: unsupported storage type %q", ErrConfig, c.Storage.Type)
	}
	if c.Storage.Type == "sqlite" && c.Storage.DSN == "" {
		c.Storage.DSN = filepath.Join(c.FeedDir, "cache.db")
	}
	if c.LogFormat == "" {
		c.LogFormat = "pretty"
	}
	if c.LogColor == "" {
		c.LogColor = "auto"
	}
	return nil
}

// URLs returns the configured feed URLs in order.
func (c *Config) URLs() []string {
	out := make([]string, 0, len(c.Feeds))
	for _, f := range c.Feeds {
		out = append(out, f.URL)
	}
	return out
}

// CheckDirs verifies that the feed, output and template directories exist.
// It runs before any fetch so a broken setup never touches the network.
func (c *Config) CheckDirs() error {
	for _, d := range []struct{ key, path string }{
		{"feed_dir", c.FeedDir},
		{"out_dir", c.OutDir},
		{"templates_dir", c.TemplatesDir},
	} {
		fi, err := os.Stat(d.path)
		if err != nil {
			return fmt.Errorf("%w: %s %s: %v", ErrConfig, d.key, d.path, err)
		}
		if !fi.IsDir() {
			return fmt.Errorf("%w: %s %s is not a directory", ErrConfig, d.key, d.path)
		}
	}
	return nil
}
