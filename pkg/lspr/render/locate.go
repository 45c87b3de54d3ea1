package render

import (
	"regexp"
	"strings"

	"github.com/lspr-report/lspr/pkg/lspr/docx"
)

// Span marks a located range of paragraph text in run coordinates. Offsets
// are byte offsets into the run's text; OffsetEnd is exclusive.
type Span struct {
	RunStart    int
	OffsetStart int
	RunEnd      int
	OffsetEnd   int
}

// SingleRun reports whether the span starts and ends in the same run.
func (s Span) SingleRun() bool {
	return s.RunStart == s.RunEnd
}

// Locate finds the first occurrence of anchor in the paragraph text. The
// anchor may be split across any number of runs. Absence is reported by
// ok == false, never by an error.
func Locate(p *docx.Paragraph, anchor string) (span Span, ok bool) {
	return LocateFrom(p, anchor, 0)
}

// LocateFrom is Locate starting the search at byte offset from of the
// paragraph text.
func LocateFrom(p *docx.Paragraph, anchor string, from int) (Span, bool) {
	if p == nil || anchor == "" {
		return Span{}, false
	}
	text := p.Text()
	if from < 0 {
		from = 0
	}
	if from > len(text) {
		return Span{}, false
	}
	i := strings.Index(text[from:], anchor)
	if i < 0 {
		return Span{}, false
	}
	start := from + i
	return SpanAt(p, start, start+len(anchor))
}

// LocatePattern finds the first match of re in the paragraph text and
// returns the span of the given capture group (0 for the whole match). An
// unmatched or empty group is reported as not found.
func LocatePattern(p *docx.Paragraph, re *regexp.Regexp, group int) (Span, bool) {
	if p == nil || re == nil || group < 0 {
		return Span{}, false
	}
	loc := re.FindStringSubmatchIndex(p.Text())
	if loc == nil || 2*group+1 >= len(loc) || loc[2*group] < 0 {
		return Span{}, false
	}
	start, end := loc[2*group], loc[2*group+1]
	if start == end {
		return Span{}, false
	}
	return SpanAt(p, start, end)
}

// SpanAt maps the absolute text range [start, end) onto the paragraph's runs
// by walking cumulative run lengths. Empty runs never hold a span boundary,
// except that an empty range at a run boundary resolves into the earlier run.
func SpanAt(p *docx.Paragraph, start, end int) (Span, bool) {
	runs := p.Runs()
	total := 0
	for _, r := range runs {
		total += len(r.Text)
	}
	if len(runs) == 0 || start < 0 || end < start || end > total {
		return Span{}, false
	}

	if start == end {
		cum := 0
		for i, r := range runs {
			if start <= cum+len(r.Text) {
				return Span{RunStart: i, OffsetStart: start - cum, RunEnd: i, OffsetEnd: start - cum}, true
			}
			cum += len(r.Text)
		}
	}

	span := Span{RunStart: -1, RunEnd: -1}
	cum := 0
	for i, r := range runs {
		l := len(r.Text)
		if span.RunStart < 0 && start < cum+l {
			span.RunStart, span.OffsetStart = i, start-cum
		}
		if span.RunStart >= 0 && end <= cum+l {
			span.RunEnd, span.OffsetEnd = i, end-cum
			break
		}
		cum += l
	}
	return span, span.RunEnd >= 0
}
