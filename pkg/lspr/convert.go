package lspr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Converter turns a DOCX document into PDF.
type Converter interface {
	ConvertToPDF(ctx context.Context, docx []byte) ([]byte, error)
}

// Checker is implemented by components that can report their readiness.
type Checker interface {
	Check(ctx context.Context) error
}

// waitDelay bounds how long a killed converter may hold its output pipes.
const waitDelay = 5 * time.Second

// SofficeConverter runs a headless LibreOffice (or any binary accepting the
// same command line) once per document. Each call gets a private work dir
// and user profile, so calls may run concurrently.
type SofficeConverter struct {
	Binary  string
	WorkDir string
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewSofficeConverter creates a converter from the configuration.
func NewSofficeConverter(cfg *Config, logger *zap.Logger) *SofficeConverter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SofficeConverter{
		Binary:  cfg.ConverterBinary,
		WorkDir: cfg.WorkDir,
		Timeout: cfg.ConvertTimeout,
		Logger:  logger,
	}
}

// ConvertToPDF writes docx to a scratch dir, converts it and reads back the
// PDF. The scratch dir is removed before returning.
func (c *SofficeConverter) ConvertToPDF(ctx context.Context, docx []byte) ([]byte, error) {
	logger := c.logger()
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	base := c.WorkDir
	if base == "" {
		base = os.TempDir()
	}
	dir := filepath.Join(base, "lspr-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, &ConversionError{Reason: "create work dir", Err: err}
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			logger.Warn("failed to remove work dir", zap.String("dir", dir), zap.Error(err))
		}
	}()

	input := filepath.Join(dir, "capa.docx")
	if err := os.WriteFile(input, docx, 0o600); err != nil {
		return nil, &ConversionError{Reason: "write cover", Err: err}
	}
	outDir := filepath.Join(dir, "out")
	if err := os.Mkdir(outDir, 0o700); err != nil {
		return nil, &ConversionError{Reason: "create output dir", Err: err}
	}
	profile, err := profileURL(filepath.Join(dir, "profile"))
	if err != nil {
		return nil, &ConversionError{Reason: "resolve profile dir", Err: err}
	}

	cmd := exec.CommandContext(ctx, c.Binary,
		"-env:UserInstallation="+profile,
		"--headless",
		"--convert-to", "pdf",
		"--outdir", outDir,
		input)
	cmd.WaitDelay = waitDelay
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	logger.Debug("converting cover", zap.String("binary", c.Binary), zap.String("dir", dir))
	err = cmd.Run()
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return nil, &ConversionError{Reason: fmt.Sprintf("timed out after %s", c.Timeout), Err: ctx.Err()}
	case ctx.Err() != nil:
		return nil, &ConversionError{Reason: "canceled", Err: ctx.Err()}
	case err != nil:
		return nil, &ConversionError{Reason: "converter failed: " + firstLine(stderr.String()), Err: err}
	}

	// LibreOffice names its output after the input stem.
	output := filepath.Join(outDir, strings.TrimSuffix(filepath.Base(input), ".docx")+".pdf")
	pdf, err := os.ReadFile(output)
	if err != nil {
		return nil, &ConversionError{Reason: "no output produced: " + firstLine(stdout.String()), Err: err}
	}
	if len(pdf) == 0 {
		return nil, &ConversionError{Reason: "empty output"}
	}
	logger.Info("cover converted",
		zap.Int("bytes", len(pdf)),
		zap.Duration("elapsed", time.Since(start)))
	return pdf, nil
}

// Check reports whether the converter binary can be found.
func (c *SofficeConverter) Check(ctx context.Context) error {
	if _, err := exec.LookPath(c.Binary); err != nil {
		return fmt.Errorf("converter %q not found: %w", c.Binary, err)
	}
	return nil
}

func (c *SofficeConverter) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// profileURL returns the file URL LibreOffice expects for
// -env:UserInstallation.
func profileURL(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String(), nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if s == "" {
		return "no diagnostics"
	}
	return s
}
