package render

import (
	"math"

	"github.com/lspr-report/lspr/pkg/lspr/docx"
)

// FormatSpec is the subset of run formatting the engine reads and overrides.
// A zero field means "inherit from style" and is never written.
type FormatSpec struct {
	FontFamily string
	SizePt     float64
	Bold       *bool
	Italic     *bool
	Color      string // RRGGBB or "auto"
	Highlight  string // highlight color name, "none" to suppress
}

// Bool returns a pointer to v for the optional FormatSpec toggles.
func Bool(v bool) *bool {
	return &v
}

// IsZero reports whether no field is set.
func (f FormatSpec) IsZero() bool {
	return f.FontFamily == "" && f.SizePt == 0 && f.Bold == nil && f.Italic == nil &&
		f.Color == "" && f.Highlight == ""
}

// FormatOf reads the explicit formatting of a run. Fields inherited from
// styles are reported as unset.
func FormatOf(run *docx.Run) FormatSpec {
	var f FormatSpec
	if run == nil || run.Properties == nil {
		return f
	}
	p := run.Properties
	if p.Fonts != nil {
		f.FontFamily = p.Fonts.ASCII
	}
	if p.Size != nil {
		f.SizePt = float64(p.Size.Val) / 2
	}
	if p.Bold != nil {
		f.Bold = Bool(p.Bold.Enabled())
	}
	if p.Italic != nil {
		f.Italic = Bool(p.Italic.Enabled())
	}
	if p.Color != nil {
		f.Color = p.Color.Val
	}
	if p.Highlight != nil {
		f.Highlight = p.Highlight.Val
	}
	return f
}

// Apply writes the set fields of f onto props, leaving every other property
// alone.
func (f FormatSpec) Apply(props *docx.RunProperties) {
	if props == nil {
		return
	}
	if f.FontFamily != "" {
		props.SetFontFamily(f.FontFamily)
	}
	if f.SizePt > 0 {
		props.SetSizeHalfPoints(halfPoints(f.SizePt))
	}
	if f.Bold != nil {
		props.Bold = onOff(*f.Bold)
	}
	if f.Italic != nil {
		props.Italic = onOff(*f.Italic)
	}
	if f.Color != "" {
		props.Color = &docx.Color{Val: f.Color}
	}
	if f.Highlight != "" {
		props.Highlight = &docx.Highlight{Val: f.Highlight}
	}
}

// Properties builds fresh run properties holding only the set fields of f.
// It returns nil for a zero spec.
func (f FormatSpec) Properties() *docx.RunProperties {
	if f.IsZero() {
		return nil
	}
	props := &docx.RunProperties{}
	f.Apply(props)
	return props
}

func halfPoints(pt float64) int {
	return int(math.Round(pt * 2))
}

func onOff(v bool) *docx.OnOff {
	if v {
		return &docx.OnOff{}
	}
	return &docx.OnOff{Val: "0"}
}
