package lspr

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/lspr-report/lspr/pkg/lspr/docx"
)

const testVariant = "relatório_mais_mensagem_menos_tempo"

func validRequest() *ReportRequest {
	return &ReportRequest{
		Participant:    "Maria da Silva",
		Scores:         map[string]int{"PESSOAS": 42, "ACAO": 17, "TEMPO": 8, "MENSAGEM": 55},
		Dominant:       "MENSAGEM",
		LeastDeveloped: "TEMPO",
	}
}

func paragraphTexts(t *testing.T, data []byte) []string {
	t.Helper()
	pkg, err := docx.OpenPackage(data)
	require.NoError(t, err)
	var out []string
	for _, p := range pkg.Document.Paragraphs() {
		out = append(out, p.Text())
	}
	return out
}

func TestGenerate(t *testing.T) {
	cfg := testConfig(t)
	installTemplate(t, cfg, testVariant)
	conv := &fakeConverter{}
	core, logs := observer.New(zapcore.InfoLevel)

	engine, err := New(cfg, WithConverter(conv), WithLogger(zap.New(core)))
	require.NoError(t, err)

	res, err := engine.Generate(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, "relatorio_Maria_da_Silva.pdf", res.FileName)
	assert.Equal(t, testVariant, res.Variant)
	assert.NotEmpty(t, res.ID)
	assert.Equal(t, 7, res.Report.Substitutions())
	assert.Equal(t, 1, conv.Calls())

	texts := paragraphTexts(t, conv.last)
	assert.Equal(t, "Maria da Silva", texts[0])
	assert.Equal(t, "Pessoas (Relacional)\t\t42", texts[1])
	assert.Equal(t, "Tempo (Solução imediata)\t\t 8", texts[3])
	assert.Equal(t, "Estilo predominante: Orientado para Mensagem (Conteúdo / Analítico)", texts[5])
	assert.Equal(t, "Estilo menos desenvolvido: Orientado para o Tempo (Solução imediata)", texts[6])

	pages, err := NewPDFMerger(0).PageCount(res.PDF)
	require.NoError(t, err)
	assert.Equal(t, 3, pages, "one cover page then the two body pages")

	assert.Equal(t, 1, logs.FilterMessage("report generated").Len())
	entry := logs.FilterMessage("report generated").All()[0]
	assert.Equal(t, res.ID, entry.ContextMap()["request_id"])
}

func TestGenerateExplicitVariant(t *testing.T) {
	cfg := testConfig(t)
	installTemplate(t, cfg, "relatório_mais_pessoas_e_menos_ação")
	conv := &fakeConverter{}
	engine, err := New(cfg, WithConverter(conv), WithLogger(zap.NewNop()))
	require.NoError(t, err)

	req := validRequest()
	req.Variant = "relatório_mais_pessoas_e_menos_ação"
	res, err := engine.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, req.Variant, res.Variant)
}

func TestGenerateRejectsEqualStylesBeforeWork(t *testing.T) {
	cfg := testConfig(t)
	conv := &fakeConverter{}
	engine, err := New(cfg, WithConverter(conv), WithLogger(zap.NewNop()))
	require.NoError(t, err)

	req := validRequest()
	req.LeastDeveloped = "MENSAGEM"
	_, err = engine.Generate(context.Background(), req)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.False(t, IsDocumentError(err), "templates are not looked up for an invalid request")
	assert.Equal(t, 0, conv.Calls())

	entries, err := os.ReadDir(cfg.WorkDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestGenerateMissingTemplate(t *testing.T) {
	cfg := testConfig(t)
	conv := &fakeConverter{}
	engine, err := New(cfg, WithConverter(conv), WithLogger(zap.NewNop()))
	require.NoError(t, err)

	_, err = engine.Generate(context.Background(), validRequest())
	require.Error(t, err)
	assert.True(t, IsDocumentError(err))
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, 0, conv.Calls())

	// a cover without its body is not enough
	tmpl := cfg.TemplateFor(testVariant)
	require.NoError(t, os.WriteFile(tmpl.CoverPath, coverDOCX(t), 0o644))
	_, err = engine.Generate(context.Background(), validRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), tmpl.BodyPath)
}

func TestGenerateConversionFailure(t *testing.T) {
	cfg := testConfig(t)
	installTemplate(t, cfg, testVariant)
	conv := &fakeConverter{err: &ConversionError{Reason: "timed out after 30s"}}
	engine, err := New(cfg, WithConverter(conv), WithLogger(zap.NewNop()))
	require.NoError(t, err)

	_, err = engine.Generate(context.Background(), validRequest())
	require.Error(t, err)
	assert.True(t, IsConversionError(err))
}

func TestGenerateCorruptBody(t *testing.T) {
	cfg := testConfig(t)
	tmpl := installTemplate(t, cfg, testVariant)
	require.NoError(t, os.WriteFile(tmpl.BodyPath, []byte("not a pdf"), 0o644))
	engine, err := New(cfg, WithConverter(&fakeConverter{}), WithLogger(zap.NewNop()))
	require.NoError(t, err)

	_, err = engine.Generate(context.Background(), validRequest())
	require.Error(t, err)
	assert.True(t, IsMergeError(err))
}

func TestRenderCover(t *testing.T) {
	cfg := testConfig(t)
	tmpl := cfg.TemplateFor(testVariant)
	require.NoError(t, os.WriteFile(tmpl.CoverPath, coverDOCX(t), 0o644))
	engine, err := New(cfg, WithConverter(&fakeConverter{}), WithLogger(zap.NewNop()))
	require.NoError(t, err)

	cover, err := engine.RenderCover(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, testVariant, cover.Variant)
	assert.Equal(t, 4, cover.Report.Scores)
	assert.Contains(t, strings.Join(paragraphTexts(t, cover.DOCX), "\n"), "Maria da Silva")

	// the cached template is not modified by a render
	again, err := engine.RenderCover(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, cover.Report, again.Report)
	assert.Equal(t, 1, engine.cache.Size())
}

func TestRenderCoverCorruptTemplate(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.TemplateFor(testVariant).CoverPath, []byte("PK?"), 0o644))
	engine, err := New(cfg, WithConverter(&fakeConverter{}), WithLogger(zap.NewNop()))
	require.NoError(t, err)

	_, err = engine.RenderCover(context.Background(), validRequest())
	require.Error(t, err)
	var docErr *DocumentError
	require.True(t, errors.As(err, &docErr))
	assert.Equal(t, "parse", docErr.Operation)
}

func TestRenderCoverCanceled(t *testing.T) {
	cfg := testConfig(t)
	installTemplate(t, cfg, testVariant)
	engine, err := New(cfg, WithConverter(&fakeConverter{}), WithLogger(zap.NewNop()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = engine.RenderCover(ctx, validRequest())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerateBatch(t *testing.T) {
	cfg := testConfig(t)
	cfg.Concurrency = 3
	installTemplate(t, cfg, testVariant)
	conv := &fakeConverter{}
	engine, err := New(cfg, WithConverter(conv), WithLogger(zap.NewNop()))
	require.NoError(t, err)

	bad := validRequest()
	bad.Participant = "  "
	reqs := []*ReportRequest{validRequest(), bad, nil, validRequest()}
	reqs[3].Participant = "João Araújo"

	results, err := engine.GenerateBatch(context.Background(), reqs)
	require.Error(t, err)
	require.Len(t, results, 4)
	assert.NotNil(t, results[0])
	assert.Nil(t, results[1])
	assert.Nil(t, results[2])
	require.NotNil(t, results[3])
	assert.Equal(t, "relatorio_Joao_Araujo.pdf", results[3].FileName)
	assert.Equal(t, 2, conv.Calls())

	var multi *MultiError
	require.True(t, errors.As(err, &multi))
	assert.Equal(t, 2, multi.Len())
	assert.True(t, IsValidationError(err))
	assert.Contains(t, err.Error(), "index=1")
	assert.Contains(t, err.Error(), "index=2")
}

func TestGenerateBatchAllSucceed(t *testing.T) {
	cfg := testConfig(t)
	installTemplate(t, cfg, testVariant)
	engine, err := New(cfg, WithConverter(&fakeConverter{}), WithLogger(zap.NewNop()))
	require.NoError(t, err)

	results, err := engine.GenerateBatch(context.Background(), []*ReportRequest{validRequest(), validRequest()})
	require.NoError(t, err)
	for _, r := range results {
		assert.NotNil(t, r)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Concurrency = 0
	_, err := New(cfg)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestAvailableTemplates(t *testing.T) {
	cfg := testConfig(t)
	installTemplate(t, cfg, "relatório_mais_tempo_e_menos_ação")
	installTemplate(t, cfg, "relatório_mais_ação_menos_mensagem")
	// cover without a body
	require.NoError(t, os.WriteFile(cfg.TemplateFor("relatório_mais_tempo_e_menos_pessoas").CoverPath, coverDOCX(t), 0o644))

	engine, err := New(cfg, WithConverter(&fakeConverter{}), WithLogger(zap.NewNop()))
	require.NoError(t, err)

	var names []string
	for _, tmpl := range engine.AvailableTemplates() {
		names = append(names, tmpl.Variant)
	}
	assert.Equal(t, []string{"relatório_mais_ação_menos_mensagem", "relatório_mais_tempo_e_menos_ação"}, names)
}
