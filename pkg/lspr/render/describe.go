package render

import (
	"go.uber.org/zap/zapcore"

	"github.com/lspr-report/lspr/pkg/lspr/docx"
)

const (
	describeLimit     = 15
	describeRunLimit  = 5
	describeTextLimit = 100
)

// ParagraphSummary is a debug view of one paragraph.
type ParagraphSummary struct {
	Index int
	Text  string
	Runs  []RunSummary
	// RunCount is the number of runs, including those not listed in Runs.
	RunCount int
}

// RunSummary is a debug view of one run.
type RunSummary struct {
	Text   string
	Format FormatSpec
}

// DocumentSummary lists the first paragraphs of a document.
type DocumentSummary []ParagraphSummary

// Describe summarizes the first limit paragraphs of doc (all if limit <= 0),
// listing at most five runs each. Text longer than 100 bytes is cut.
func Describe(doc *docx.Document, limit int) DocumentSummary {
	if doc == nil {
		return nil
	}
	paragraphs := doc.Paragraphs()
	if limit > 0 && len(paragraphs) > limit {
		paragraphs = paragraphs[:limit]
	}

	out := make(DocumentSummary, 0, len(paragraphs))
	for i, p := range paragraphs {
		runs := p.Runs()
		s := ParagraphSummary{Index: i, Text: truncate(p.Text(), describeTextLimit), RunCount: len(runs)}
		for j, r := range runs {
			if j == describeRunLimit {
				break
			}
			s.Runs = append(s.Runs, RunSummary{Text: r.Text, Format: FormatOf(r)})
		}
		out = append(out, s)
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	// keep whole runes
	for n > 0 && n < len(s) && s[n]&0xC0 == 0x80 {
		n--
	}
	return s[:n]
}

// MarshalLogArray implements zapcore.ArrayMarshaler.
func (d DocumentSummary) MarshalLogArray(enc zapcore.ArrayEncoder) error {
	for _, p := range d {
		if err := enc.AppendObject(p); err != nil {
			return err
		}
	}
	return nil
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (p ParagraphSummary) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt("index", p.Index)
	enc.AddString("text", p.Text)
	enc.AddInt("runs", p.RunCount)
	return enc.AddArray("run", zapcore.ArrayMarshalerFunc(func(arr zapcore.ArrayEncoder) error {
		for _, r := range p.Runs {
			if err := arr.AppendObject(r); err != nil {
				return err
			}
		}
		return nil
	}))
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (r RunSummary) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("text", r.Text)
	if r.Format.FontFamily != "" {
		enc.AddString("font", r.Format.FontFamily)
	}
	if r.Format.SizePt != 0 {
		enc.AddFloat64("size", r.Format.SizePt)
	}
	return nil
}
