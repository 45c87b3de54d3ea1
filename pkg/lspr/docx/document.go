package docx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

// Document represents a Word document structure
type Document struct {
	// Attrs preserves the root element attributes (namespace declarations,
	// mc:Ignorable, ...).
	Attrs []xml.Attr
	Body  *Body
	// Extra holds root children other than the body (w:background, ...).
	Extra []*RawXMLElement
}

// Body represents the document body
type Body struct {
	// Elements maintains the order of all body elements
	Elements []BodyElement
	// SectionProperties at the end of the body (critical for Word compatibility)
	SectionProperties *RawXMLElement
}

// Paragraphs returns every paragraph of the document in reading order,
// including paragraphs nested in table cells.
func (d *Document) Paragraphs() []*Paragraph {
	if d.Body == nil {
		return nil
	}
	return paragraphsOf(d.Body.Elements)
}

// InsertAt inserts el so that it ends up at index i. An index past the end
// appends.
func (b *Body) InsertAt(i int, el BodyElement) {
	if i < 0 {
		i = 0
	}
	if i >= len(b.Elements) {
		b.Elements = append(b.Elements, el)
		return
	}
	b.Elements = append(b.Elements, nil)
	copy(b.Elements[i+1:], b.Elements[i:])
	b.Elements[i] = el
}

// RemoveAt removes the elements at the given indices in one pass. Indices
// refer to positions before any removal; duplicates and out-of-range values
// are ignored.
func (b *Body) RemoveAt(indices ...int) {
	if len(indices) == 0 {
		return
	}
	drop := make(map[int]bool, len(indices))
	for _, i := range indices {
		if i >= 0 && i < len(b.Elements) {
			drop[i] = true
		}
	}
	kept := b.Elements[:0]
	for i, el := range b.Elements {
		if !drop[i] {
			kept = append(kept, el)
		}
	}
	for i := len(kept); i < len(b.Elements); i++ {
		b.Elements[i] = nil
	}
	b.Elements = kept
}

// IndexOf returns the position of el in the body, or -1.
func (b *Body) IndexOf(el BodyElement) int {
	for i, e := range b.Elements {
		if e == el {
			return i
		}
	}
	return -1
}

func paragraphsOf(elements []BodyElement) []*Paragraph {
	var out []*Paragraph
	for _, el := range elements {
		switch v := el.(type) {
		case *Paragraph:
			out = append(out, v)
		case *Table:
			out = append(out, v.Paragraphs()...)
		}
	}
	return out
}

// ParseDocument parses a Word document XML
func ParseDocument(r io.Reader) (*Document, error) {
	d := xml.NewDecoder(r)

	for {
		tok, err := d.RawToken()
		if err == io.EOF {
			return nil, fmt.Errorf("failed to parse document: no root element")
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse document: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != "document" {
			return nil, fmt.Errorf("failed to parse document: unexpected root <%s>", start.Name.Local)
		}
		doc := &Document{Attrs: copyAttrs(start.Attr)}
		if err := doc.decode(d); err != nil {
			return nil, fmt.Errorf("failed to parse document: %w", err)
		}
		if doc.Body == nil {
			doc.Body = &Body{}
		}
		return doc, nil
	}
}

func (doc *Document) decode(d *xml.Decoder) error {
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
			if t.Name.Local == "body" {
				body := &Body{}
				if err := body.decode(d); err != nil {
					return err
				}
				doc.Body = body
				continue
			}
			raw, err := readRaw(d, t)
			if err != nil {
				return err
			}
			doc.Extra = append(doc.Extra, raw)
		case xml.EndElement:
			if t.Name.Local == "document" {
				return nil
			}
		}
	}
}

func (b *Body) decode(d *xml.Decoder) error {
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
			if t.Name.Local == "sectPr" {
				raw, err := readRaw(d, t)
				if err != nil {
					return err
				}
				b.SectionProperties = raw
				continue
			}
			el, err := decodeBlock(d, t)
			if err != nil {
				return err
			}
			b.Elements = append(b.Elements, el)
		case xml.EndElement:
			if t.Name.Local == "body" {
				return nil
			}
		}
	}
}

// decodeBlock decodes one block-level element opened by start.
func decodeBlock(d *xml.Decoder, start xml.StartElement) (BodyElement, error) {
	switch start.Name.Local {
	case "p":
		p := &Paragraph{}
		if err := p.decode(d, start); err != nil {
			return nil, err
		}
		return p, nil
	case "tbl":
		t := &Table{}
		if err := t.decode(d, start); err != nil {
			return nil, err
		}
		return t, nil
	default:
		return readRaw(d, start)
	}
}

func encodeBlocks(e *xml.Encoder, elements []BodyElement) error {
	for _, el := range elements {
		var err error
		switch v := el.(type) {
		case *Paragraph:
			err = v.MarshalXML(e, xml.StartElement{})
		case *Table:
			err = v.MarshalXML(e, xml.StartElement{})
		case *RawXMLElement:
			err = v.MarshalXML(e, xml.StartElement{})
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// MarshalXML implements custom XML marshaling to preserve element order
func (b Body) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	start := xml.StartElement{Name: xml.Name{Local: "w:body"}}
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	if err := encodeBlocks(e, b.Elements); err != nil {
		return err
	}

	if b.SectionProperties != nil {
		if err := b.SectionProperties.MarshalXML(e, xml.StartElement{}); err != nil {
			return err
		}
	}

	return e.EncodeToken(start.End())
}

// Marshal serializes the document to a complete document.xml part.
func (doc *Document) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xmlHeader)

	e := xml.NewEncoder(&buf)
	start := xml.StartElement{Name: xml.Name{Local: "w:document"}, Attr: qualifyAttrs(doc.Attrs)}
	if err := e.EncodeToken(start); err != nil {
		return nil, err
	}
	for _, raw := range doc.Extra {
		if err := raw.MarshalXML(e, xml.StartElement{}); err != nil {
			return nil, err
		}
	}
	body := doc.Body
	if body == nil {
		body = &Body{}
	}
	if err := body.MarshalXML(e, xml.StartElement{}); err != nil {
		return nil, err
	}
	if err := e.EncodeToken(start.End()); err != nil {
		return nil, err
	}
	if err := e.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
