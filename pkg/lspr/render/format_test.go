package render

import (
	"encoding/xml"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/lspr-report/lspr/pkg/lspr/docx"
)

func TestFormatSpecApplyLeavesUnsetFields(t *testing.T) {
	props := &docx.RunProperties{
		Fonts:     &docx.Fonts{ASCII: "Calibri", Other: []xml.Attr{{Name: xml.Name{Space: "w", Local: "asciiTheme"}, Value: "minorHAnsi"}}},
		Bold:      &docx.OnOff{},
		Color:     &docx.Color{Val: "FF0000"},
		Highlight: &docx.Highlight{Val: "yellow"},
	}
	FormatSpec{FontFamily: "Liberation Sans", SizePt: 10.5}.Apply(props)

	want := FormatSpec{
		FontFamily: "Liberation Sans",
		SizePt:     10.5,
		Bold:       Bool(true),
		Color:      "FF0000",
		Highlight:  "yellow",
	}
	if diff := cmp.Diff(want, FormatOf(&docx.Run{Properties: props})); diff != "" {
		t.Errorf("FormatOf mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 21, props.Size.Val)
	assert.Empty(t, props.Fonts.Other, "theme fonts are dropped with an explicit family")
}

func TestFormatSpecProperties(t *testing.T) {
	assert.Nil(t, FormatSpec{}.Properties())
	assert.True(t, FormatSpec{}.IsZero())

	f := FormatSpec{Italic: Bool(false), Highlight: "none"}
	props := f.Properties()
	assert.False(t, props.Italic.Enabled())
	assert.Equal(t, "none", props.Highlight.Val)
	assert.Nil(t, props.Fonts)
	if diff := cmp.Diff(f, FormatOf(&docx.Run{Properties: props})); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatOfUnformattedRun(t *testing.T) {
	assert.True(t, FormatOf(&docx.Run{Text: "x"}).IsZero())
	assert.True(t, FormatOf(nil).IsZero())
}
