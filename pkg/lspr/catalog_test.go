package lspr

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lspr-report/lspr/pkg/lspr/render"
)

func TestVariants(t *testing.T) {
	names := Variants()
	require.Len(t, names, 12)

	seen := make(map[string]bool)
	for _, n := range names {
		assert.False(t, seen[n], "duplicate variant %s", n)
		seen[n] = true
		assert.True(t, IsVariant(n))
	}
	assert.Equal(t, "relatório_mais_pessoas_e_menos_ação", names[0])
	assert.False(t, IsVariant("relatório_mais_pessoas_menos_ação"))
}

func TestVariantFor(t *testing.T) {
	for _, d := range render.Styles() {
		for _, l := range render.Styles() {
			v := VariantFor(d, l)
			if d == l {
				assert.Empty(t, v, "%s/%s", d, l)
				continue
			}
			assert.NotEmpty(t, v, "%s/%s", d, l)
		}
	}
	assert.Equal(t, "relatório_mais_tempo_e_menos_mensagem", VariantFor(render.Time, render.Message))
	assert.Equal(t, "relatório_mais_mensagem_menos_ação", VariantFor(render.Message, render.Action))
	assert.Empty(t, VariantFor(render.Style(7), render.People))
}

func TestTemplateFor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TemplatesDir = "/srv/templates"
	cfg.BodiesDir = "/srv/corpos"

	tmpl := cfg.TemplateFor("relatório_mais_ação_menos_tempo")
	assert.Equal(t, "/srv/templates/relatório_mais_ação_menos_tempo.docx", tmpl.CoverPath)
	assert.Equal(t, "/srv/corpos/relatório_mais_ação_menos_tempo.pdf", tmpl.BodyPath)
	assert.False(t, tmpl.Complete())
}

func TestTemplateCompleteIgnoresDirectories(t *testing.T) {
	cfg := testConfig(t)
	tmpl := cfg.TemplateFor(testVariant)
	require.NoError(t, os.Mkdir(tmpl.CoverPath, 0o755))
	require.NoError(t, os.WriteFile(tmpl.BodyPath, minimalPDF(1), 0o644))
	assert.False(t, tmpl.Complete())

	assert.True(t, isDir(filepath.Dir(tmpl.CoverPath)))
	assert.False(t, isDir(tmpl.BodyPath))
}
