package render

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/lspr-report/lspr/pkg/lspr/docx"
)

// Policy decides which formatting replaced text carries.
type Policy struct {
	override *FormatSpec
}

// Preserve keeps the formatting of the run the replaced text lands in.
func Preserve() Policy {
	return Policy{}
}

// Override gives the replacement text exactly the formatting f.
func Override(f FormatSpec) Policy {
	return Policy{override: &f}
}

// Format returns the override format, if any.
func (p Policy) Format() (FormatSpec, bool) {
	if p.override == nil {
		return FormatSpec{}, false
	}
	return *p.override, true
}

func (p Policy) String() string {
	if p.override == nil {
		return "preserve"
	}
	return "override"
}

// Replace substitutes the text covered by span with newText.
//
// Within a single run the run text becomes prefix+newText+suffix. Across
// several runs the first run keeps its prefix followed by newText, the runs
// strictly between are emptied but kept, and the last run keeps only its
// suffix, so run indices located earlier in the same paragraph stay valid.
//
// Under an override policy only newText carries the override format: the run
// holding it is split off when a prefix or suffix remains, and prefix and
// suffix keep their original (copied) properties.
//
// Replace reports false and leaves the paragraph untouched when span does not
// fit the paragraph's runs.
func Replace(p *docx.Paragraph, span Span, newText string, policy Policy) bool {
	runs := p.Runs()
	if !spanFits(runs, span) {
		return false
	}

	first, last := runs[span.RunStart], runs[span.RunEnd]
	format, override := policy.Format()

	if span.SingleRun() {
		if !override {
			first.Splice(span.OffsetStart, span.OffsetEnd, newText)
			return true
		}
		tail := first.SplitAt(span.OffsetEnd)
		first.Splice(span.OffsetStart, len(first.Text), "")
		target := overrideRun(p, first, newText, format)
		if tail.Text != "" || len(tail.Inline) > 0 {
			p.InsertRunAfter(target, tail)
		}
		return true
	}

	for _, r := range runs[span.RunStart+1 : span.RunEnd] {
		r.Splice(0, len(r.Text), "")
	}
	last.Splice(0, span.OffsetEnd, "")
	if override {
		first.Splice(span.OffsetStart, len(first.Text), "")
		overrideRun(p, first, newText, format)
	} else {
		first.Splice(span.OffsetStart, len(first.Text), newText)
	}
	return true
}

// overrideRun writes text with format f after whatever run still holds. An
// empty run is reused. It returns the run now holding text.
func overrideRun(p *docx.Paragraph, run *docx.Run, text string, f FormatSpec) *docx.Run {
	if run.Text == "" {
		run.Properties = f.Properties()
		run.Text = text
		return run
	}
	target := &docx.Run{Properties: f.Properties(), Text: text}
	p.InsertRunAfter(run, target)
	return target
}

func spanFits(runs []*docx.Run, s Span) bool {
	if s.RunStart < 0 || s.RunEnd < s.RunStart || s.RunEnd >= len(runs) {
		return false
	}
	if s.OffsetStart < 0 || s.OffsetStart > len(runs[s.RunStart].Text) {
		return false
	}
	if s.OffsetEnd < 0 || s.OffsetEnd > len(runs[s.RunEnd].Text) {
		return false
	}
	return !s.SingleRun() || s.OffsetStart <= s.OffsetEnd
}

// IsNumericRun reports whether the run's text, ignoring surrounding
// whitespace, is a non-empty sequence of digits.
func IsNumericRun(run *docx.Run) bool {
	trimmed := strings.TrimSpace(run.Text)
	if trimmed == "" {
		return false
	}
	for _, r := range trimmed {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// LastNumericRun returns the last run of p whose text is purely numeric.
func LastNumericRun(p *docx.Paragraph) (*docx.Run, bool) {
	runs := p.Runs()
	for i := len(runs) - 1; i >= 0; i-- {
		if IsNumericRun(runs[i]) {
			return runs[i], true
		}
	}
	return nil, false
}

// ReplaceNumeric sets the run text to value right-justified to width,
// after copying the run's leading tabs and spaces byte for byte. Tab-stopped
// layouts align score columns on that prefix.
func ReplaceNumeric(run *docx.Run, value, width int) {
	lead := len(leadingBlank(run.Text))
	run.Splice(lead, len(run.Text), PadNumber(value, width))
}

// PadNumber formats value right-justified to width characters.
func PadNumber(value, width int) string {
	return fmt.Sprintf("%*d", width, value)
}

func leadingBlank(s string) string {
	i := 0
	for i < len(s) && (s[i] == '\t' || s[i] == ' ') {
		i++
	}
	return s[:i]
}
