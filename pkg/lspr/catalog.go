package lspr

import (
	"os"
	"path/filepath"

	"github.com/lspr-report/lspr/pkg/lspr/render"
)

type stylePair struct {
	dominant, least render.Style
}

// variants names the template pair of every dominant/least developed
// combination. The names are the file stems on disk.
var variants = map[stylePair]string{
	{render.Action, render.Message}: "relatório_mais_ação_menos_mensagem",
	{render.Action, render.People}:  "relatório_mais_ação_menos_pessoas",
	{render.Action, render.Time}:    "relatório_mais_ação_menos_tempo",
	{render.Message, render.Action}: "relatório_mais_mensagem_menos_ação",
	{render.Message, render.People}: "relatório_mais_mensagem_menos_pessoas",
	{render.Message, render.Time}:   "relatório_mais_mensagem_menos_tempo",
	{render.People, render.Action}:  "relatório_mais_pessoas_e_menos_ação",
	{render.People, render.Message}: "relatório_mais_pessoas_e_menos_mensagem",
	{render.People, render.Time}:    "relatório_mais_pessoas_e_menos_tempo",
	{render.Time, render.Action}:    "relatório_mais_tempo_e_menos_ação",
	{render.Time, render.Message}:   "relatório_mais_tempo_e_menos_mensagem",
	{render.Time, render.People}:    "relatório_mais_tempo_e_menos_pessoas",
}

// Variants returns every known variant name in a stable order.
func Variants() []string {
	names := make([]string, 0, len(variants))
	for _, d := range render.Styles() {
		for _, l := range render.Styles() {
			if name, ok := variants[stylePair{d, l}]; ok {
				names = append(names, name)
			}
		}
	}
	return names
}

// VariantFor returns the variant for a dominant and least developed style,
// or "" when the pair has none.
func VariantFor(dominant, least render.Style) string {
	return variants[stylePair{dominant, least}]
}

// IsVariant reports whether name is a known variant.
func IsVariant(name string) bool {
	for _, v := range variants {
		if v == name {
			return true
		}
	}
	return false
}

// Template locates the two files of a variant.
type Template struct {
	Variant   string `json:"variant" yaml:"variant"`
	CoverPath string `json:"cover" yaml:"cover"`
	BodyPath  string `json:"body" yaml:"body"`
}

// TemplateFor returns the file locations of a variant under the configured
// directories. The files are not checked.
func (c *Config) TemplateFor(variant string) Template {
	return Template{
		Variant:   variant,
		CoverPath: filepath.Join(c.TemplatesDir, variant+".docx"),
		BodyPath:  filepath.Join(c.BodiesDir, variant+".pdf"),
	}
}

// Complete reports whether both files of the template exist.
func (t Template) Complete() bool {
	return isFile(t.CoverPath) && isFile(t.BodyPath)
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
