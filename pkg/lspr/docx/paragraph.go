package docx

import (
	"encoding/xml"
	"io"
	"strings"
)

// Paragraph represents a paragraph in the document
type Paragraph struct {
	Attrs      []xml.Attr
	Properties *ParagraphProperties
	// Content maintains the order of runs and preserved inline elements
	Content []ParagraphContent
}

// isBodyElement implements the BodyElement interface
func (p *Paragraph) isBodyElement() {}

// NewParagraph builds a paragraph holding one run per text.
func NewParagraph(props *RunProperties, texts ...string) *Paragraph {
	p := &Paragraph{}
	for _, t := range texts {
		p.AddRun(&Run{Properties: props.Clone(), Text: t})
	}
	return p
}

// Runs returns the paragraph's direct runs in document order.
func (p *Paragraph) Runs() []*Run {
	runs := make([]*Run, 0, len(p.Content))
	for _, c := range p.Content {
		if r, ok := c.(*Run); ok {
			runs = append(runs, r)
		}
	}
	return runs
}

// Text returns the concatenated text of the paragraph's runs.
func (p *Paragraph) Text() string {
	var sb strings.Builder
	for _, r := range p.Runs() {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// AddRun appends a run.
func (p *Paragraph) AddRun(r *Run) {
	p.Content = append(p.Content, r)
}

// InsertRunAfter places r directly after the run after. If after is not part
// of the paragraph, r is appended.
func (p *Paragraph) InsertRunAfter(after, r *Run) {
	for i, c := range p.Content {
		if c == ParagraphContent(after) {
			p.Content = append(p.Content, nil)
			copy(p.Content[i+2:], p.Content[i+1:])
			p.Content[i+1] = r
			return
		}
	}
	p.AddRun(r)
}

// SetAlignment sets the paragraph justification ("left", "center", ...).
func (p *Paragraph) SetAlignment(val string) {
	if p.Properties == nil {
		p.Properties = &ParagraphProperties{}
	}
	p.Properties.Justification = val
}

// Alignment returns the paragraph justification, or "" when inherited.
func (p *Paragraph) Alignment() string {
	if p.Properties == nil {
		return ""
	}
	return p.Properties.Justification
}

func (p *Paragraph) decode(d *xml.Decoder, start xml.StartElement) error {
	p.Attrs = copyAttrs(start.Attr)
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
			case "pPr":
				props := &ParagraphProperties{}
				if err := props.decode(d); err != nil {
					return err
				}
				p.Properties = props
			case "r":
				run := &Run{}
				if err := run.decode(d, t); err != nil {
					return err
				}
				p.Content = append(p.Content, run)
			default:
				raw, err := readRaw(d, t)
				if err != nil {
					return err
				}
				p.Content = append(p.Content, raw)
			}
		case xml.EndElement:
			if t.Name.Local == "p" {
				return nil
			}
		}
	}
}

// MarshalXML implements custom XML marshaling for Paragraph
func (p Paragraph) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	start := xml.StartElement{Name: xml.Name{Local: "w:p"}, Attr: qualifyAttrs(p.Attrs)}
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	if p.Properties != nil {
		if err := p.Properties.MarshalXML(e, xml.StartElement{}); err != nil {
			return err
		}
	}

	for _, c := range p.Content {
		var err error
		switch v := c.(type) {
		case *Run:
			err = v.MarshalXML(e, xml.StartElement{})
		case *RawXMLElement:
			err = v.MarshalXML(e, xml.StartElement{})
		}
		if err != nil {
			return err
		}
	}

	return e.EncodeToken(start.End())
}

// paragraphPropertyOrder is the CT_PPr child sequence.
var paragraphPropertyOrder = []string{
	"pStyle", "keepNext", "keepLines", "pageBreakBefore", "framePr", "widowControl",
	"numPr", "suppressLineNumbers", "pBdr", "shd", "tabs", "suppressAutoHyphens",
	"kinsoku", "wordWrap", "overflowPunct", "topLinePunct", "autoSpaceDE",
	"autoSpaceDN", "bidi", "adjustRightInd", "snapToGrid", "spacing", "ind",
	"contextualSpacing", "mirrorIndents", "suppressOverlap", "jc", "textDirection",
	"textAlignment", "textboxTightWrap", "outlineLvl", "divId", "cnfStyle", "rPr",
	"sectPr", "pPrChange",
}

// ParagraphProperties represents paragraph formatting properties. Only the
// justification is interpreted; other children are preserved in Raw.
type ParagraphProperties struct {
	Justification string
	// MarkRun is the paragraph mark's run properties (<w:pPr><w:rPr>).
	MarkRun *RunProperties
	Raw     []*RawXMLElement
}

func (p *ParagraphProperties) decode(d *xml.Decoder) error {
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
			switch t.Name.Local {
			case "jc":
				p.Justification = attrValue(t.Attr, "val")
				if err := skipElement(d); err != nil {
					return err
				}
			case "rPr":
				props := &RunProperties{}
				if err := props.decode(d); err != nil {
					return err
				}
				p.MarkRun = props
			default:
				raw, err := readRaw(d, t)
				if err != nil {
					return err
				}
				p.Raw = append(p.Raw, raw)
			}
		case xml.EndElement:
			if t.Name.Local == "pPr" {
				return nil
			}
		}
	}
}

// MarshalXML implements custom XML marshaling for ParagraphProperties
func (p ParagraphProperties) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	start := xml.StartElement{Name: xml.Name{Local: "w:pPr"}}
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	children := rawChildren(p.Raw)
	if p.Justification != "" {
		val := p.Justification
		children = append(children, child{"jc", func(e *xml.Encoder) error {
			return emptyElement(e, "jc", "val", val)
		}})
	}
	if p.MarkRun != nil {
		mark := p.MarkRun
		children = append(children, child{"rPr", func(e *xml.Encoder) error {
			return mark.MarshalXML(e, xml.StartElement{})
		}})
	}
	if err := encodeInOrder(e, paragraphPropertyOrder, children); err != nil {
		return err
	}

	return e.EncodeToken(start.End())
}
