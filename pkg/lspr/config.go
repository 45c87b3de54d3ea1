package lspr

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lspr-report/lspr/pkg/lspr/render"
)

// Config contains all configuration options for the report engine
type Config struct {
	// TemplatesDir holds the cover templates, one <variant>.docx per variant.
	TemplatesDir string `yaml:"templates_dir"`
	// BodiesDir holds the pre-rendered report bodies, one <variant>.pdf per variant.
	BodiesDir string `yaml:"bodies_dir"`
	// WorkDir is where per-request scratch directories are created. Empty
	// means the system temp dir.
	WorkDir string `yaml:"work_dir"`
	// ConverterBinary is the office suite executable used for DOCX to PDF.
	ConverterBinary string        `yaml:"converter_binary"`
	ConvertTimeout  time.Duration `yaml:"convert_timeout"`
	MergeTimeout    time.Duration `yaml:"merge_timeout"`
	// LogLevel controls the verbosity of logging (debug, info, warn, error, off)
	LogLevel string `yaml:"log_level"`
	// CacheMaxSize is the maximum number of templates to cache. 0 disables caching.
	CacheMaxSize int `yaml:"cache_max_size"`
	// CacheTTL is the time-to-live for cached templates. 0 means no expiration.
	CacheTTL time.Duration `yaml:"cache_ttl"`
	// Concurrency bounds the number of reports rendered at once by a batch.
	Concurrency int          `yaml:"concurrency"`
	Format      FormatConfig `yaml:"format"`
	Anchors     AnchorConfig `yaml:"anchors"`
}

// FormatConfig is the uniform override applied to every run of a cover.
type FormatConfig struct {
	FontFamily     string            `yaml:"font_family"`
	SizePt         float64           `yaml:"size_pt"`
	ClearHighlight bool              `yaml:"clear_highlight"`
	Name           *NameFormatConfig `yaml:"name,omitempty"`
}

// NameFormatConfig, when present, is the exact format of the participant name.
type NameFormatConfig struct {
	FontFamily string  `yaml:"font_family"`
	SizePt     float64 `yaml:"size_pt"`
	Bold       *bool   `yaml:"bold"`
	Italic     *bool   `yaml:"italic"`
	Color      string  `yaml:"color"`
}

// AnchorConfig overrides the template anchors. Empty fields keep the defaults.
type AnchorConfig struct {
	Name            string  `yaml:"name"`
	Dominant        string  `yaml:"dominant"`
	LeastDeveloped  string  `yaml:"least_developed"`
	StyleLineMarker *string `yaml:"style_line_marker"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		TemplatesDir:    "templates",
		BodiesDir:       "assets/corpos_pdf",
		ConverterBinary: "libreoffice",
		ConvertTimeout:  30 * time.Second,
		MergeTimeout:    30 * time.Second,
		LogLevel:        "info",
		CacheMaxSize:    12,
		Concurrency:     2,
		Format: FormatConfig{
			FontFamily:     "Liberation Sans",
			SizePt:         12,
			ClearHighlight: true,
		},
	}
}

// LoadConfig reads a YAML configuration file on top of the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	config, err := ParseConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return config, nil
}

// ParseConfig decodes YAML configuration on top of the defaults. Unknown keys
// are rejected.
func ParseConfig(r io.Reader) (*Config, error) {
	config := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(config); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return config, nil
}

// ConfigFromEnvironment creates a configuration from the defaults and
// environment variables
func ConfigFromEnvironment() *Config {
	config := DefaultConfig()
	config.ApplyEnvironment()
	return config
}

// ApplyEnvironment overrides fields from LSPR_* environment variables.
// Malformed numbers and durations are ignored.
func (c *Config) ApplyEnvironment() {
	if val := os.Getenv("LSPR_TEMPLATES_DIR"); val != "" {
		c.TemplatesDir = val
	}
	if val := os.Getenv("LSPR_BODIES_DIR"); val != "" {
		c.BodiesDir = val
	}
	if val := os.Getenv("LSPR_WORK_DIR"); val != "" {
		c.WorkDir = val
	}
	if val := os.Getenv("LSPR_CONVERTER"); val != "" {
		c.ConverterBinary = val
	}
	if val := os.Getenv("LSPR_CONVERT_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			c.ConvertTimeout = d
		}
	}
	if val := os.Getenv("LSPR_MERGE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			c.MergeTimeout = d
		}
	}
	if val := os.Getenv("LSPR_LOG_LEVEL"); val != "" {
		c.LogLevel = val
	}
	if val := os.Getenv("LSPR_CACHE_MAX_SIZE"); val != "" {
		if size, err := strconv.Atoi(val); err == nil {
			c.CacheMaxSize = size
		}
	}
	if val := os.Getenv("LSPR_CACHE_TTL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			c.CacheTTL = d
		}
	}
	if val := os.Getenv("LSPR_CONCURRENCY"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			c.Concurrency = n
		}
	}
	if val := os.Getenv("LSPR_FONT_FAMILY"); val != "" {
		c.Format.FontFamily = val
	}
	if val := os.Getenv("LSPR_FONT_SIZE"); val != "" {
		if size, err := strconv.ParseFloat(val, 64); err == nil {
			c.Format.SizePt = size
		}
	}
	if val := os.Getenv("LSPR_CLEAR_HIGHLIGHT"); val != "" {
		c.Format.ClearHighlight = parseBool(val)
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	v := &ValidationError{}
	if c.TemplatesDir == "" {
		v.Add("templates_dir", "must not be empty")
	}
	if c.BodiesDir == "" {
		v.Add("bodies_dir", "must not be empty")
	}
	if c.ConverterBinary == "" {
		v.Add("converter_binary", "must not be empty")
	}
	if c.ConvertTimeout <= 0 {
		v.Add("convert_timeout", "must be positive, got %s", c.ConvertTimeout)
	}
	if c.MergeTimeout <= 0 {
		v.Add("merge_timeout", "must be positive, got %s", c.MergeTimeout)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		v.Add("log_level", "%v", err)
	}
	if c.CacheMaxSize < 0 {
		v.Add("cache_max_size", "cannot be negative")
	}
	if c.CacheTTL < 0 {
		v.Add("cache_ttl", "cannot be negative")
	}
	if c.Concurrency < 1 {
		v.Add("concurrency", "must be at least 1, got %d", c.Concurrency)
	}
	if c.Format.SizePt < 0 {
		v.Add("format.size_pt", "cannot be negative")
	}
	if n := c.Format.Name; n != nil && n.SizePt < 0 {
		v.Add("format.name.size_pt", "cannot be negative")
	}
	return v.Err()
}

// Policy returns the format override policy described by the configuration.
func (c *Config) Policy() render.FormatOverridePolicy {
	policy := render.FormatOverridePolicy{
		Uniform: render.FormatSpec{
			FontFamily: c.Format.FontFamily,
			SizePt:     c.Format.SizePt,
		},
		ClearHighlight: c.Format.ClearHighlight,
	}
	if n := c.Format.Name; n != nil {
		policy.Name = &render.FormatSpec{
			FontFamily: n.FontFamily,
			SizePt:     n.SizePt,
			Bold:       n.Bold,
			Italic:     n.Italic,
			Color:      strings.TrimPrefix(n.Color, "#"),
		}
	}
	return policy
}

// RenderAnchors returns the default anchors with the configured overrides.
func (c *Config) RenderAnchors() render.Anchors {
	anchors := render.DefaultAnchors()
	if c.Anchors.Name != "" {
		anchors.Name = normalize(c.Anchors.Name)
	}
	if c.Anchors.Dominant != "" {
		anchors.Dominant = normalize(c.Anchors.Dominant)
	}
	if c.Anchors.LeastDeveloped != "" {
		anchors.LeastDeveloped = normalize(c.Anchors.LeastDeveloped)
	}
	if c.Anchors.StyleLineMarker != nil {
		anchors.StyleLineMarker = normalize(*c.Anchors.StyleLineMarker)
	}
	return anchors
}

// parseBool parses a boolean value from a string
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}
