package lspr

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lspr-report/lspr/pkg/lspr/render"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "libreoffice", cfg.ConverterBinary)
	assert.Equal(t, 30*time.Second, cfg.ConvertTimeout)
	if diff := cmp.Diff(render.DefaultPolicy(), cfg.Policy()); diff != "" {
		t.Errorf("default policy mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, render.DefaultAnchors(), cfg.RenderAnchors())
}

func TestParseConfig(t *testing.T) {
	const doc = `
templates_dir: /srv/lspr/templates
bodies_dir: /srv/lspr/corpos
convert_timeout: 45s
cache_ttl: 10m
log_level: debug
concurrency: 4
format:
  font_family: Arial
  size_pt: 11
  clear_highlight: false
  name:
    bold: true
    color: "#1F3864"
anchors:
  name: Nome do participante
  style_line_marker: ""
`
	cfg, err := ParseConfig(strings.NewReader(doc))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "/srv/lspr/templates", cfg.TemplatesDir)
	assert.Equal(t, 45*time.Second, cfg.ConvertTimeout)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 30*time.Second, cfg.MergeTimeout, "unset keys keep their defaults")
	assert.Equal(t, "libreoffice", cfg.ConverterBinary)
	assert.Equal(t, 4, cfg.Concurrency)

	want := render.FormatOverridePolicy{
		Uniform: render.FormatSpec{FontFamily: "Arial", SizePt: 11},
		Name:    &render.FormatSpec{Bold: render.Bool(true), Color: "1F3864"},
	}
	if diff := cmp.Diff(want, cfg.Policy()); diff != "" {
		t.Errorf("policy mismatch (-want +got):\n%s", diff)
	}

	anchors := cfg.RenderAnchors()
	assert.Equal(t, "Nome do participante", anchors.Name)
	assert.Equal(t, "", anchors.StyleLineMarker)
	assert.Equal(t, render.DefaultAnchors().Dominant, anchors.Dominant)
}

func TestParseConfigRejectsUnknownKeys(t *testing.T) {
	_, err := ParseConfig(strings.NewReader("template_dir: x\n"))
	assert.Error(t, err)
}

func TestParseConfigEmpty(t *testing.T) {
	cfg, err := ParseConfig(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lspr.yaml")
	require.NoError(t, os.WriteFile(path, []byte("converter_binary: soffice\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "soffice", cfg.ConverterBinary)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfigFromEnvironment(t *testing.T) {
	t.Setenv("LSPR_TEMPLATES_DIR", "/data/templates")
	t.Setenv("LSPR_CONVERTER", "soffice")
	t.Setenv("LSPR_CONVERT_TIMEOUT", "1m")
	t.Setenv("LSPR_CACHE_MAX_SIZE", "3")
	t.Setenv("LSPR_CACHE_TTL", "not-a-duration")
	t.Setenv("LSPR_CONCURRENCY", "8")
	t.Setenv("LSPR_FONT_SIZE", "10.5")
	t.Setenv("LSPR_CLEAR_HIGHLIGHT", "off")
	t.Setenv("LSPR_LOG_LEVEL", "warn")

	cfg := ConfigFromEnvironment()
	assert.Equal(t, "/data/templates", cfg.TemplatesDir)
	assert.Equal(t, "soffice", cfg.ConverterBinary)
	assert.Equal(t, time.Minute, cfg.ConvertTimeout)
	assert.Equal(t, 3, cfg.CacheMaxSize)
	assert.Equal(t, time.Duration(0), cfg.CacheTTL, "malformed values are ignored")
	assert.Equal(t, 8, cfg.Concurrency)
	assert.Equal(t, 10.5, cfg.Format.SizePt)
	assert.False(t, cfg.Format.ClearHighlight)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TemplatesDir = ""
	cfg.ConvertTimeout = 0
	cfg.LogLevel = "verbose"
	cfg.CacheMaxSize = -1
	cfg.Concurrency = 0

	err := cfg.Validate()
	require.Error(t, err)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))

	var fields []string
	for _, issue := range verr.Issues {
		fields = append(fields, issue.Field)
	}
	assert.Equal(t, []string{"templates_dir", "convert_timeout", "log_level", "cache_max_size", "concurrency"}, fields)
}

func TestParseBool(t *testing.T) {
	for _, s := range []string{"true", "1", "YES", " on "} {
		assert.True(t, parseBool(s), s)
	}
	for _, s := range []string{"false", "0", "no", "", "maybe"} {
		assert.False(t, parseBool(s), s)
	}
}
