package lspr

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// OutputFileName returns the download name of a participant's report,
// relatorio_<name>.pdf. Spaces become underscores, accents are folded to
// ASCII and any other character outside [A-Za-z0-9_.-] is dropped.
func OutputFileName(participant string) string {
	folded := foldAccents(strings.TrimSpace(participant))

	var sb strings.Builder
	for _, r := range folded {
		switch {
		case r == ' ':
			sb.WriteByte('_')
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' || r == '.'):
			sb.WriteRune(r)
		}
	}
	name := strings.Trim(sb.String(), ".")
	if name == "" {
		return "relatorio.pdf"
	}
	return "relatorio_" + name + ".pdf"
}

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}
