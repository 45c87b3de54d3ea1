package docx

import (
	"encoding/xml"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Run is a contiguous span of text sharing one set of run properties.
//
// Text holds the run's visible characters: <w:t> content verbatim, <w:tab/>
// as "\t" and text-wrapping breaks (<w:br/>, <w:cr/>) as "\n". Elements that
// carry no text (drawings, field characters, page breaks, ...) are kept in
// Inline at the text offset they were found at, so they are written back
// between the same characters.
type Run struct {
	Attrs      []xml.Attr
	Properties *RunProperties
	Text       string
	Inline     []InlineElement
}

// InlineElement is a non-text run child anchored at a byte offset of
// Run.Text. Elements sharing an offset keep their document order.
type InlineElement struct {
	Offset  int
	Element *RawXMLElement
}

func (r *Run) isParagraphContent() {}

// Clone returns a deep copy of the run. The copy owns its properties.
func (r *Run) Clone() *Run {
	if r == nil {
		return nil
	}
	return &Run{
		Attrs:      copyAttrs(r.Attrs),
		Properties: r.Properties.Clone(),
		Text:       r.Text,
		Inline:     cloneInline(r.Inline),
	}
}

func cloneInline(in []InlineElement) []InlineElement {
	if in == nil {
		return nil
	}
	out := make([]InlineElement, len(in))
	for i, el := range in {
		out[i] = InlineElement{Offset: el.Offset, Element: el.Element.Clone()}
	}
	return out
}

// EnsureProperties returns the run's properties, creating them if absent.
func (r *Run) EnsureProperties() *RunProperties {
	if r.Properties == nil {
		r.Properties = &RunProperties{}
	}
	return r.Properties
}

// Splice replaces Text[start:end] with text. Inline elements before start
// stay put, those after end shift with the text and those inside the range
// move to its start.
func (r *Run) Splice(start, end int, text string) {
	if start < 0 || end < start || end > len(r.Text) {
		return
	}
	delta := len(text) - (end - start)
	for i := range r.Inline {
		switch off := r.Inline[i].Offset; {
		case off >= end && off > start:
			r.Inline[i].Offset = off + delta
		case off > start:
			r.Inline[i].Offset = start
		}
	}
	r.Text = r.Text[:start] + text + r.Text[end:]
}

// SplitAt cuts the run at byte offset at. The run keeps Text[:at] and the
// returned run, which copies the properties, gets the rest together with
// the inline elements anchored at or after at. The returned run is not
// inserted anywhere.
func (r *Run) SplitAt(at int) *Run {
	if at < 0 {
		at = 0
	}
	if at > len(r.Text) {
		at = len(r.Text)
	}
	tail := &Run{Properties: r.Properties.Clone(), Text: r.Text[at:]}
	var keep []InlineElement
	for _, el := range r.Inline {
		if el.Offset >= at {
			tail.Inline = append(tail.Inline, InlineElement{Offset: el.Offset - at, Element: el.Element})
			continue
		}
		keep = append(keep, el)
	}
	r.Inline = keep
	r.Text = r.Text[:at]
	return tail
}

func (r *Run) decode(d *xml.Decoder, start xml.StartElement) error {
	r.Attrs = copyAttrs(start.Attr)
	var text strings.Builder
	inline := func(t xml.StartElement) error {
		raw, err := readRaw(d, t)
		if err != nil {
			return err
		}
		r.Inline = append(r.Inline, InlineElement{Offset: text.Len(), Element: raw})
		return nil
	}
	for {
		tok, err := d.RawToken()
		if err == io.EOF {
			return io.ErrUnexpectedEOF
		}
		if err != nil {
			return err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "rPr":
				props := &RunProperties{}
				if err := props.decode(d); err != nil {
					return err
				}
				r.Properties = props
			case "t":
				content, err := readText(d)
				if err != nil {
					return err
				}
				text.WriteString(content)
			case "tab":
				text.WriteByte('\t')
				if err := skipElement(d); err != nil {
					return err
				}
			case "cr":
				text.WriteByte('\n')
				if err := skipElement(d); err != nil {
					return err
				}
			case "br":
				if kind := attrValue(t.Attr, "type"); kind == "" || kind == "textWrapping" {
					text.WriteByte('\n')
					if err := skipElement(d); err != nil {
						return err
					}
					continue
				}
				if err := inline(t); err != nil {
					return err
				}
			default:
				if err := inline(t); err != nil {
					return err
				}
			}
		case xml.EndElement:
			if t.Name.Local == "r" {
				r.Text = text.String()
				return nil
			}
		}
	}
}

// MarshalXML implements custom XML marshaling for Run to ensure proper namespacing
func (r Run) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start = xml.StartElement{Name: xml.Name{Local: "w:r"}, Attr: qualifyAttrs(r.Attrs)}
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	if r.Properties != nil {
		if err := r.Properties.MarshalXML(e, xml.StartElement{}); err != nil {
			return err
		}
	}

	pos := 0
	for _, el := range r.Inline {
		off := runeBoundary(r.Text, el.Offset)
		if off > pos {
			if err := encodeRunText(e, r.Text[pos:off]); err != nil {
				return err
			}
			pos = off
		}
		if err := el.Element.MarshalXML(e, xml.StartElement{}); err != nil {
			return err
		}
	}
	if err := encodeRunText(e, r.Text[pos:]); err != nil {
		return err
	}

	return e.EncodeToken(start.End())
}

// runeBoundary clamps off into s and backs it up to the start of a rune.
func runeBoundary(s string, off int) int {
	if off < 0 {
		return 0
	}
	if off >= len(s) {
		return len(s)
	}
	for off > 0 && !utf8.RuneStart(s[off]) {
		off--
	}
	return off
}

func encodeRunText(e *xml.Encoder, text string) error {
	var segment strings.Builder
	flush := func() error {
		if segment.Len() == 0 {
			return nil
		}
		t := xml.StartElement{
			Name: xml.Name{Local: "w:t"},
			Attr: []xml.Attr{{Name: xml.Name{Local: "xml:space"}, Value: "preserve"}},
		}
		if err := e.EncodeToken(t); err != nil {
			return err
		}
		if err := e.EncodeToken(xml.CharData(segment.String())); err != nil {
			return err
		}
		segment.Reset()
		return e.EncodeToken(t.End())
	}

	for _, ch := range text {
		switch ch {
		case '\t':
			if err := flush(); err != nil {
				return err
			}
			if err := emptyElement(e, "tab"); err != nil {
				return err
			}
		case '\n':
			if err := flush(); err != nil {
				return err
			}
			if err := emptyElement(e, "br"); err != nil {
				return err
			}
		default:
			segment.WriteRune(ch)
		}
	}
	return flush()
}

// runPropertyOrder is the CT_RPr child sequence.
var runPropertyOrder = []string{
	"rStyle", "rFonts", "b", "bCs", "i", "iCs", "caps", "smallCaps", "strike",
	"dstrike", "outline", "shadow", "emboss", "imprint", "noProof", "snapToGrid",
	"vanish", "webHidden", "color", "spacing", "w", "kern", "position", "sz",
	"szCs", "highlight", "u", "effect", "bdr", "shd", "fitText", "vertAlign",
	"rtl", "cs", "em", "lang", "eastAsianLayout", "specVanish", "oMath",
}

// RunProperties represents run formatting properties. The fields the engine
// reads or overrides are typed; every other child element is preserved in Raw.
type RunProperties struct {
	Fonts     *Fonts
	Bold      *OnOff
	Italic    *OnOff
	Color     *Color
	Size      *Size // half-points
	SizeCs    *Size // complex script size, half-points
	Highlight *Highlight
	Raw       []*RawXMLElement
}

// Clone returns a deep copy; nil stays nil.
func (p *RunProperties) Clone() *RunProperties {
	if p == nil {
		return nil
	}
	out := &RunProperties{Raw: cloneRaws(p.Raw)}
	if p.Fonts != nil {
		f := *p.Fonts
		f.Other = copyAttrs(p.Fonts.Other)
		out.Fonts = &f
	}
	if p.Bold != nil {
		b := *p.Bold
		out.Bold = &b
	}
	if p.Italic != nil {
		i := *p.Italic
		out.Italic = &i
	}
	if p.Color != nil {
		c := *p.Color
		out.Color = &c
	}
	if p.Size != nil {
		s := *p.Size
		out.Size = &s
	}
	if p.SizeCs != nil {
		s := *p.SizeCs
		out.SizeCs = &s
	}
	if p.Highlight != nil {
		h := *p.Highlight
		out.Highlight = &h
	}
	return out
}

// SetFontFamily replaces the run fonts with family for every script,
// dropping theme font references that would otherwise take precedence.
func (p *RunProperties) SetFontFamily(family string) {
	p.Fonts = &Fonts{ASCII: family, HAnsi: family, EastAsia: family, CS: family}
}

// SetSizeHalfPoints sets both the regular and complex script size.
func (p *RunProperties) SetSizeHalfPoints(halfPoints int) {
	p.Size = &Size{Val: halfPoints}
	p.SizeCs = &Size{Val: halfPoints}
}

func (p *RunProperties) decode(d *xml.Decoder) error {
	for {
		tok, err := d.RawToken()
		if err != nil {
			if err == io.EOF {
				return io.ErrUnexpectedEOF
			}
			return err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			raw, err := readRaw(d, t)
			if err != nil {
				return err
			}
			switch t.Name.Local {
			case "rFonts":
				p.Fonts = fontsFromAttrs(t.Attr)
			case "b":
				p.Bold = &OnOff{Val: attrValue(t.Attr, "val")}
			case "i":
				p.Italic = &OnOff{Val: attrValue(t.Attr, "val")}
			case "color":
				p.Color = &Color{Val: attrValue(t.Attr, "val"), ThemeColor: attrValue(t.Attr, "themeColor")}
			case "sz":
				p.Size = sizeFromAttrs(t.Attr)
			case "szCs":
				p.SizeCs = sizeFromAttrs(t.Attr)
			case "highlight":
				p.Highlight = &Highlight{Val: attrValue(t.Attr, "val")}
			default:
				p.Raw = append(p.Raw, raw)
			}
		case xml.EndElement:
			if t.Name.Local == "rPr" {
				return nil
			}
		}
	}
}

// MarshalXML implements custom XML marshaling for RunProperties
func (p RunProperties) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	start := xml.StartElement{Name: xml.Name{Local: "w:rPr"}}
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	children := rawChildren(p.Raw)
	if p.Fonts != nil {
		f := p.Fonts
		children = append(children, child{"rFonts", f.encode})
	}
	if p.Bold != nil {
		b := p.Bold
		children = append(children, child{"b", func(e *xml.Encoder) error { return emptyElement(e, "b", "val", b.Val) }})
	}
	if p.Italic != nil {
		i := p.Italic
		children = append(children, child{"i", func(e *xml.Encoder) error { return emptyElement(e, "i", "val", i.Val) }})
	}
	if p.Color != nil {
		c := p.Color
		children = append(children, child{"color", func(e *xml.Encoder) error {
			return emptyElement(e, "color", "val", c.Val, "themeColor", c.ThemeColor)
		}})
	}
	if p.Size != nil {
		s := p.Size
		children = append(children, child{"sz", func(e *xml.Encoder) error {
			return emptyElement(e, "sz", "val", strconv.Itoa(s.Val))
		}})
	}
	if p.SizeCs != nil {
		s := p.SizeCs
		children = append(children, child{"szCs", func(e *xml.Encoder) error {
			return emptyElement(e, "szCs", "val", strconv.Itoa(s.Val))
		}})
	}
	if p.Highlight != nil {
		h := p.Highlight
		children = append(children, child{"highlight", func(e *xml.Encoder) error {
			return emptyElement(e, "highlight", "val", h.Val)
		}})
	}
	if err := encodeInOrder(e, runPropertyOrder, children); err != nil {
		return err
	}

	return e.EncodeToken(start.End())
}

// OnOff is a toggle property such as <w:b/>. An empty Val means on.
type OnOff struct {
	Val string
}

// Enabled reports whether the toggle is on.
func (o *OnOff) Enabled() bool {
	if o == nil {
		return false
	}
	switch o.Val {
	case "0", "false", "off":
		return false
	}
	return true
}

// Fonts represents <w:rFonts>. Theme references and hints are kept in Other.
type Fonts struct {
	ASCII    string
	HAnsi    string
	EastAsia string
	CS       string
	Other    []xml.Attr
}

func fontsFromAttrs(attrs []xml.Attr) *Fonts {
	f := &Fonts{}
	for _, a := range attrs {
		switch a.Name.Local {
		case "ascii":
			f.ASCII = a.Value
		case "hAnsi":
			f.HAnsi = a.Value
		case "eastAsia":
			f.EastAsia = a.Value
		case "cs":
			f.CS = a.Value
		default:
			f.Other = append(f.Other, a)
		}
	}
	return f
}

func (f *Fonts) encode(e *xml.Encoder) error {
	start := xml.StartElement{Name: xml.Name{Local: "w:rFonts"}}
	for _, kv := range [][2]string{{"ascii", f.ASCII}, {"hAnsi", f.HAnsi}, {"eastAsia", f.EastAsia}, {"cs", f.CS}} {
		if kv[1] != "" {
			start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "w:" + kv[0]}, Value: kv[1]})
		}
	}
	start.Attr = append(start.Attr, qualifyAttrs(f.Other)...)
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	return e.EncodeToken(start.End())
}

// Color represents text color
type Color struct {
	Val        string
	ThemeColor string
}

// Size represents font size in half-points
type Size struct {
	Val int
}

func sizeFromAttrs(attrs []xml.Attr) *Size {
	v, err := strconv.Atoi(attrValue(attrs, "val"))
	if err != nil {
		return nil
	}
	return &Size{Val: v}
}

// Highlight represents a text highlight color
type Highlight struct {
	Val string
}
