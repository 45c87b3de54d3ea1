package lspr

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/lspr-report/lspr/pkg/lspr/docx"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func scoreLine(label string) string {
	return `<w:p><w:r><w:rPr><w:b/></w:rPr><w:t>` + label + `</w:t></w:r>` +
		`<w:r><w:tab/><w:tab/></w:r>` +
		`<w:r><w:t>00</w:t></w:r></w:p>`
}

// coverXML is a cover template with every anchor and the legacy score lines.
func coverXML() string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		`<w:p><w:r><w:rPr><w:highlight w:val="yellow"/></w:rPr><w:t>Nome completo</w:t></w:r></w:p>` +
		scoreLine("Pessoas (Relacional)") +
		scoreLine("Ação (Processo)") +
		scoreLine("Tempo (Solução imediata)") +
		scoreLine("Mensagem (Conteúdo / Analítico)") +
		`<w:p><w:r><w:t xml:space="preserve">Estilo predominante: Orientado para Pessoas (Relacional)</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t xml:space="preserve">Estilo menos desenvolvido: Orientado para Ação (Processo)</w:t></w:r></w:p>` +
		`<w:sectPr><w:pgSz w:w="11906" w:h="16838"/></w:sectPr>` +
		`</w:body></w:document>`
}

func coverDOCX(t *testing.T) []byte {
	t.Helper()
	data, err := docx.MinimalPackage([]byte(coverXML()))
	require.NoError(t, err)
	return data
}

// minimalPDF builds a valid PDF with the given number of blank A4 pages.
func minimalPDF(pages int) []byte {
	var buf bytes.Buffer
	var offsets []int
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	kids := make([]string, pages)
	for i := range kids {
		kids[i] = fmt.Sprintf("%d 0 R", i+3)
	}
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), pages))
	for i := 0; i < pages; i++ {
		obj("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] /Resources << >> >>")
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

// testConfig returns a configuration rooted in a fresh temp dir.
func testConfig(t *testing.T) *Config {
	t.Helper()
	root := t.TempDir()
	cfg := DefaultConfig()
	cfg.TemplatesDir = filepath.Join(root, "templates")
	cfg.BodiesDir = filepath.Join(root, "corpos")
	cfg.WorkDir = filepath.Join(root, "work")
	for _, dir := range []string{cfg.TemplatesDir, cfg.BodiesDir, cfg.WorkDir} {
		require.NoError(t, os.MkdirAll(dir, 0o755))
	}
	return cfg
}

// installTemplate writes the cover and a two-page body for variant.
func installTemplate(t *testing.T, cfg *Config, variant string) Template {
	t.Helper()
	tmpl := cfg.TemplateFor(variant)
	require.NoError(t, os.WriteFile(tmpl.CoverPath, coverDOCX(t), 0o644))
	require.NoError(t, os.WriteFile(tmpl.BodyPath, minimalPDF(2), 0o644))
	return tmpl
}

// fakeConverter returns a one-page PDF and remembers what it converted.
type fakeConverter struct {
	mu    sync.Mutex
	calls int
	last  []byte
	err   error
}

func (f *fakeConverter) ConvertToPDF(ctx context.Context, docx []byte) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.last = docx
	if f.err != nil {
		return nil, f.err
	}
	return minimalPDF(1), nil
}

func (f *fakeConverter) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// writeScript writes an executable shell script and returns its path.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "soffice")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}
