package render

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lspr-report/lspr/pkg/lspr/docx"
)

func TestReplaceSingleRunPreserve(t *testing.T) {
	p := docx.NewParagraph(&docx.RunProperties{Bold: &docx.OnOff{}}, "Participante: Nome completo.")
	span, ok := Locate(p, "Nome completo")
	require.True(t, ok)

	require.True(t, Replace(p, span, "Maria Silva", Preserve()))
	assert.Equal(t, []string{"Participante: Maria Silva."}, runTexts(p))
	assert.True(t, p.Runs()[0].Properties.Bold.Enabled())
}

func TestReplaceAcrossThreeRuns(t *testing.T) {
	p := para("Sr. No", "me comp", "leto!")
	span, ok := Locate(p, "Nome completo")
	require.True(t, ok)
	require.Equal(t, 0, span.RunStart)
	require.Equal(t, 2, span.RunEnd)

	require.True(t, Replace(p, span, "Maria", Preserve()))

	// the middle run is emptied, not removed
	assert.Equal(t, []string{"Sr. Maria", "", "!"}, runTexts(p))
	assert.Equal(t, "Sr. Maria!", p.Text())
}

func TestReplaceAcrossRunsEmptiesEveryInnerRun(t *testing.T) {
	p := para("[a", "b", "c", "d]")
	span, ok := Locate(p, "abcd")
	require.True(t, ok)

	require.True(t, Replace(p, span, "X", Preserve()))
	assert.Equal(t, []string{"[X", "", "", "]"}, runTexts(p))
}

func TestReplaceOverrideSplitsRun(t *testing.T) {
	bold := &docx.RunProperties{Bold: &docx.OnOff{}, Color: &docx.Color{Val: "FF0000"}}
	p := docx.NewParagraph(bold, "Sr. Nome completo!")
	span, ok := Locate(p, "Nome completo")
	require.True(t, ok)

	f := FormatSpec{FontFamily: "Arial", Bold: Bool(false)}
	require.True(t, Replace(p, span, "Maria", Override(f)))

	runs := p.Runs()
	require.Len(t, runs, 3)
	assert.Equal(t, []string{"Sr. ", "Maria", "!"}, runTexts(p))

	if diff := cmp.Diff(f, FormatOf(runs[1])); diff != "" {
		t.Errorf("override format mismatch (-want +got):\n%s", diff)
	}
	original := FormatSpec{Bold: Bool(true), Color: "FF0000"}
	for _, i := range []int{0, 2} {
		if diff := cmp.Diff(original, FormatOf(runs[i])); diff != "" {
			t.Errorf("run %d lost its format (-want +got):\n%s", i, diff)
		}
	}

	// the suffix owns its properties
	runs[2].Properties.Color.Val = "00FF00"
	assert.Equal(t, "FF0000", runs[0].Properties.Color.Val)
}

func TestReplaceOverrideWholeRun(t *testing.T) {
	p := docx.NewParagraph(&docx.RunProperties{Highlight: &docx.Highlight{Val: "yellow"}}, "Nome completo")
	span, ok := Locate(p, "Nome completo")
	require.True(t, ok)

	require.True(t, Replace(p, span, "Maria", Override(FormatSpec{SizePt: 14})))
	runs := p.Runs()
	require.Len(t, runs, 1)
	assert.Equal(t, "Maria", runs[0].Text)
	assert.Equal(t, FormatSpec{SizePt: 14}, FormatOf(runs[0]))
}

func TestReplaceOverrideAcrossRuns(t *testing.T) {
	p := para("Sr. No", "me comp", "leto!")
	span, ok := Locate(p, "Nome completo")
	require.True(t, ok)

	require.True(t, Replace(p, span, "Maria", Override(FormatSpec{Italic: Bool(true)})))
	assert.Equal(t, []string{"Sr. ", "Maria", "", "!"}, runTexts(p))
	assert.True(t, p.Runs()[1].Properties.Italic.Enabled())
	assert.Nil(t, p.Runs()[0].Properties)
}

func TestReplaceKeepsInlineElementsInPlace(t *testing.T) {
	pageBreak := func() []docx.InlineElement {
		return []docx.InlineElement{{Offset: len("Nome completo"), Element: docx.NewElement("w", "br", "w:type", "page")}}
	}

	p := &docx.Paragraph{}
	p.AddRun(&docx.Run{Text: "Nome completoCorpo", Inline: pageBreak()})
	span, ok := Locate(p, "Nome completo")
	require.True(t, ok)
	require.True(t, Replace(p, span, "Maria", Preserve()))
	run := p.Runs()[0]
	assert.Equal(t, "MariaCorpo", run.Text)
	assert.Equal(t, len("Maria"), run.Inline[0].Offset)

	p = &docx.Paragraph{}
	p.AddRun(&docx.Run{Text: "Nome completo", Inline: pageBreak()})
	span, ok = Locate(p, "Nome completo")
	require.True(t, ok)
	require.True(t, Replace(p, span, "Maria", Override(FormatSpec{SizePt: 14})))
	runs := p.Runs()
	require.Len(t, runs, 2)
	assert.Equal(t, "Maria", runs[0].Text)
	assert.Empty(t, runs[0].Inline)
	assert.Equal(t, "", runs[1].Text)
	require.Len(t, runs[1].Inline, 1, "the page break still follows the name")
}

func TestReplaceRejectsBadSpan(t *testing.T) {
	p := para("abc")
	tests := []Span{
		{RunStart: 0, OffsetStart: 0, RunEnd: 1, OffsetEnd: 0},
		{RunStart: -1},
		{RunStart: 0, OffsetStart: 2, RunEnd: 0, OffsetEnd: 1},
		{RunStart: 0, OffsetStart: 0, RunEnd: 0, OffsetEnd: 4},
	}
	for _, span := range tests {
		assert.False(t, Replace(p, span, "x", Preserve()), "%+v", span)
	}
	assert.Equal(t, "abc", p.Text())
}

func TestReplaceNumeric(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		value int
		want  string
	}{
		{"tabs kept", "\t\t00", 7, "\t\t 7"},
		{"mixed blanks kept", " \t 12", 45, " \t 45"},
		{"no prefix", "00", 5, " 5"},
		{"full width", "\t0", 60, "\t60"},
		{"trailing blank dropped", "\t00 ", 0, "\t 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := &docx.Run{Text: tt.text}
			ReplaceNumeric(run, tt.value, 2)
			assert.Equal(t, tt.want, run.Text)
		})
	}
}

func TestIsNumericRun(t *testing.T) {
	tests := map[string]bool{
		"00":     true,
		"\t12 ":  true,
		"":       false,
		"  ":     false,
		"1a":     false,
		"Pessoa": false,
	}
	for text, want := range tests {
		assert.Equal(t, want, IsNumericRun(&docx.Run{Text: text}), "%q", text)
	}
}

func TestLastNumericRun(t *testing.T) {
	p := para("Pessoas (Relacional)", "\t", "00", "\t", "x")
	run, ok := LastNumericRun(p)
	require.True(t, ok)
	assert.Same(t, p.Runs()[2], run)

	_, ok = LastNumericRun(para("Pessoas"))
	assert.False(t, ok)
}

func TestPadNumber(t *testing.T) {
	assert.Equal(t, " 0", PadNumber(0, 2))
	assert.Equal(t, "60", PadNumber(60, 2))
	assert.Equal(t, "100", PadNumber(100, 2))
}
