// Package lspr generates LSP-R listening style reports.
//
// A report is a personalized cover page followed by a fixed body. The cover
// comes from one of twelve DOCX templates, chosen by the participant's
// dominant and least developed styles. The engine fills in the participant
// name, the four scores and the two style lines, converts the cover to PDF
// with a headless office suite and appends the pre-rendered body PDF.
//
// Basic Usage:
//
//	cfg := lspr.DefaultConfig()
//	engine, err := lspr.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	req := &lspr.ReportRequest{
//	    Participant:    "Maria da Silva",
//	    Scores:         map[string]int{"PESSOAS": 42, "ACAO": 17, "TEMPO": 8, "MENSAGEM": 55},
//	    Dominant:       "MENSAGEM",
//	    LeastDeveloped: "TEMPO",
//	}
//
//	result, err := engine.Generate(ctx, req)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile(result.FileName, result.PDF, 0o644)
package lspr

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lspr-report/lspr/pkg/lspr/docx"
	"github.com/lspr-report/lspr/pkg/lspr/render"
)

// Engine generates reports from the templates of one configuration.
// Use New() to create an engine. An Engine is safe for concurrent use.
type Engine struct {
	config    *Config
	cache     *TemplateCache
	driver    *render.Driver
	converter Converter
	merger    Merger
	logger    *zap.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithConverter replaces the LibreOffice converter.
func WithConverter(c Converter) Option {
	return func(e *Engine) {
		e.converter = c
	}
}

// WithMerger replaces the pdfcpu merger.
func WithMerger(m Merger) Option {
	return func(e *Engine) {
		e.merger = m
	}
}

// WithLogger sets the engine logger. The default is GetLogger().
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an engine for a validated configuration.
func New(cfg *Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		config: cfg,
		cache:  NewTemplateCache(CacheConfig{MaxSize: cfg.CacheMaxSize, TTL: cfg.CacheTTL}),
		logger: GetLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.converter == nil {
		e.converter = NewSofficeConverter(cfg, e.logger.Named("convert"))
	}
	if e.merger == nil {
		e.merger = NewPDFMerger(cfg.MergeTimeout)
	}
	e.driver = render.NewDriver(
		render.WithAnchors(cfg.RenderAnchors()),
		render.WithPolicy(cfg.Policy()),
		render.WithLogger(e.logger.Named("render")),
	)
	return e, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() *Config {
	return e.config
}

// Cover is a rendered cover document.
type Cover struct {
	Variant string
	DOCX    []byte
	Report  render.Report
}

// Result is a generated report.
type Result struct {
	ID       string
	FileName string
	Variant  string
	PDF      []byte
	Report   render.Report
	Elapsed  time.Duration
}

// RenderCover validates req and returns the filled-in cover as DOCX. It
// needs neither the converter nor the body PDF.
func (e *Engine) RenderCover(ctx context.Context, req *ReportRequest) (*Cover, error) {
	rr, variant, err := req.Resolve()
	if err != nil {
		return nil, err
	}
	tmpl := e.config.TemplateFor(variant)
	return e.renderCover(ctx, rr, tmpl, e.logger)
}

func (e *Engine) renderCover(ctx context.Context, rr render.Request, tmpl Template, logger *zap.Logger) (*Cover, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := e.cache.Load(tmpl.CoverPath)
	if err != nil {
		return nil, NewDocumentError("load", tmpl.CoverPath, err)
	}
	pkg, err := docx.OpenPackage(data)
	if err != nil {
		return nil, NewDocumentError("parse", tmpl.CoverPath, err)
	}

	report := e.driver.Apply(pkg.Document, rr)
	logger.Info("cover filled",
		zap.Int("names", report.Names),
		zap.Int("scores", report.Scores),
		zap.Int("style_lines", report.StyleLines),
		zap.Bool("table", report.Table.Synthesized),
		zap.Int("runs_formatted", report.RunsFormatted))
	if report.Substitutions() == 0 && !report.Table.Synthesized {
		logger.Warn("no anchor found in cover", zap.String("template", tmpl.CoverPath))
	}

	out, err := pkg.Bytes()
	if err != nil {
		return nil, NewDocumentError("save", tmpl.CoverPath, err)
	}
	return &Cover{Variant: tmpl.Variant, DOCX: out, Report: report}, nil
}

// Generate produces the complete report PDF for req: fill the cover, convert
// it and append the body. Validation happens before any file is touched.
func (e *Engine) Generate(ctx context.Context, req *ReportRequest) (*Result, error) {
	start := time.Now()
	rr, variant, err := req.Resolve()
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	logger := e.logger.With(zap.String("request_id", id), zap.String("variant", variant))
	logger.Info("report requested", zap.String("participant", rr.ParticipantName))

	tmpl := e.config.TemplateFor(variant)
	for _, path := range []string{tmpl.CoverPath, tmpl.BodyPath} {
		if !isFile(path) {
			return nil, NewDocumentError("locate", path, fs.ErrNotExist)
		}
	}

	cover, err := e.renderCover(ctx, rr, tmpl, logger)
	if err != nil {
		return nil, err
	}

	coverPDF, err := e.converter.ConvertToPDF(ctx, cover.DOCX)
	if err != nil {
		logger.Error("cover conversion failed", zap.Error(err))
		return nil, err
	}

	body, err := os.ReadFile(tmpl.BodyPath)
	if err != nil {
		return nil, NewDocumentError("load", tmpl.BodyPath, err)
	}
	merged, err := e.merger.Merge(ctx, coverPDF, body)
	if err != nil {
		logger.Error("merge failed", zap.Error(err))
		return nil, err
	}

	res := &Result{
		ID:       id,
		FileName: OutputFileName(rr.ParticipantName),
		Variant:  variant,
		PDF:      merged,
		Report:   cover.Report,
		Elapsed:  time.Since(start),
	}
	logger.Info("report generated",
		zap.String("file", res.FileName),
		zap.Int("bytes", len(merged)),
		zap.Duration("elapsed", res.Elapsed))
	return res, nil
}

// GenerateBatch generates every request with at most Config.Concurrency
// renders in flight. Failures do not stop the batch: results[i] is nil for a
// failed request and the returned error collects every failure.
func (e *Engine) GenerateBatch(ctx context.Context, reqs []*ReportRequest) ([]*Result, error) {
	results := make([]*Result, len(reqs))
	errs := make([]error, len(reqs))

	var g errgroup.Group
	g.SetLimit(e.config.Concurrency)
	for i, req := range reqs {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					errs[i] = RecoverError(r)
				}
			}()
			if req == nil {
				errs[i] = errors.New("nil request")
				return nil
			}
			results[i], errs[i] = e.Generate(ctx, req)
			return nil
		})
	}
	_ = g.Wait()

	multi := NewMultiError()
	for i, err := range errs {
		if err == nil {
			continue
		}
		participant := ""
		if reqs[i] != nil {
			participant = reqs[i].Participant
		}
		multi.Add(WithContext(err, "generate", map[string]any{
			"index":       i,
			"participant": participant,
		}))
	}
	if multi.Len() > 0 {
		e.logger.Warn("batch finished with failures",
			zap.Int("requests", len(reqs)),
			zap.Int("failed", multi.Len()))
	}
	return results, multi.Err()
}

// AvailableTemplates lists the variants whose cover and body both exist.
func (e *Engine) AvailableTemplates() []Template {
	var out []Template
	for _, v := range Variants() {
		if t := e.config.TemplateFor(v); t.Complete() {
			out = append(out, t)
		}
	}
	return out
}
