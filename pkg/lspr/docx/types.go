package docx

import (
	"encoding/xml"
	"fmt"
	"io"
	"sort"
)

// BodyElement represents any element that can appear in a document body or a
// table cell: *Paragraph, *Table, or a preserved *RawXMLElement.
type BodyElement interface {
	isBodyElement()
}

// ParagraphContent represents any content that can appear in a paragraph:
// *Run or a preserved *RawXMLElement (bookmarks, hyperlinks, proofErr, ...).
type ParagraphContent interface {
	isParagraphContent()
}

// RawXMLElement is an element the model does not interpret. It keeps the
// element's full token stream with the literal namespace prefixes of the
// source so it can be written back unchanged.
type RawXMLElement struct {
	XMLName xml.Name
	Tokens  []xml.Token
}

func (r *RawXMLElement) isBodyElement()      {}
func (r *RawXMLElement) isParagraphContent() {}

// Start returns the opening tag of the element.
func (r *RawXMLElement) Start() xml.StartElement {
	if len(r.Tokens) == 0 {
		return xml.StartElement{Name: r.XMLName}
	}
	if se, ok := r.Tokens[0].(xml.StartElement); ok {
		return se
	}
	return xml.StartElement{Name: r.XMLName}
}

// Attr returns the value of the attribute with the given local name on the
// opening tag.
func (r *RawXMLElement) Attr(local string) string {
	return attrValue(r.Start().Attr, local)
}

// Clone returns a deep copy of the element.
func (r *RawXMLElement) Clone() *RawXMLElement {
	if r == nil {
		return nil
	}
	tokens := make([]xml.Token, len(r.Tokens))
	for i, tok := range r.Tokens {
		tokens[i] = xml.CopyToken(tok)
	}
	return &RawXMLElement{XMLName: r.XMLName, Tokens: tokens}
}

// MarshalXML replays the preserved tokens.
func (r RawXMLElement) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	for _, tok := range r.Tokens {
		switch t := tok.(type) {
		case xml.StartElement:
			if err := e.EncodeToken(qualifyStart(t)); err != nil {
				return err
			}
		case xml.EndElement:
			if err := e.EncodeToken(xml.EndElement{Name: qualifiedName(t.Name)}); err != nil {
				return err
			}
		case xml.CharData, xml.Comment:
			if err := e.EncodeToken(t); err != nil {
				return err
			}
		}
	}
	return nil
}

// NewElement builds a self-closing element such as <w:jc w:val="center"/>.
// Attribute names are given as "prefix:local".
func NewElement(prefix, local string, attrs ...string) *RawXMLElement {
	start := xml.StartElement{Name: xml.Name{Space: prefix, Local: local}}
	for i := 0; i+1 < len(attrs); i += 2 {
		start.Attr = append(start.Attr, xml.Attr{Name: splitName(attrs[i]), Value: attrs[i+1]})
	}
	return &RawXMLElement{
		XMLName: start.Name,
		Tokens:  []xml.Token{start, xml.EndElement{Name: start.Name}},
	}
}

// readRaw consumes the remainder of the element opened by start.
func readRaw(d *xml.Decoder, start xml.StartElement) (*RawXMLElement, error) {
	raw := &RawXMLElement{
		XMLName: start.Name,
		Tokens:  []xml.Token{start.Copy()},
	}
	depth := 1
	for depth > 0 {
		tok, err := d.RawToken()
		if err == io.EOF {
			return nil, fmt.Errorf("unexpected end of document inside <%s>", start.Name.Local)
		}
		if err != nil {
			return nil, err
		}
		switch tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		case xml.ProcInst, xml.Directive:
			continue
		}
		raw.Tokens = append(raw.Tokens, xml.CopyToken(tok))
	}
	return raw, nil
}

// skipElement discards the remainder of the element opened by start.
func skipElement(d *xml.Decoder) error {
	depth := 1
	for depth > 0 {
		tok, err := d.RawToken()
		if err != nil {
			return err
		}
		switch tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return nil
}

// readText returns the character data of a leaf element such as <w:t>.
func readText(d *xml.Decoder) (string, error) {
	var text []byte
	depth := 1
	for depth > 0 {
		tok, err := d.RawToken()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			if depth == 1 {
				text = append(text, t...)
			}
		}
	}
	return string(text), nil
}

// qualifiedName turns a raw (prefix, local) name into the "prefix:local"
// form the encoder writes verbatim.
func qualifiedName(n xml.Name) xml.Name {
	if n.Space == "" {
		return xml.Name{Local: n.Local}
	}
	return xml.Name{Local: n.Space + ":" + n.Local}
}

func qualifyStart(se xml.StartElement) xml.StartElement {
	out := xml.StartElement{Name: qualifiedName(se.Name)}
	out.Attr = qualifyAttrs(se.Attr)
	return out
}

func qualifyAttrs(attrs []xml.Attr) []xml.Attr {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]xml.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = xml.Attr{Name: qualifiedName(a.Name), Value: a.Value}
	}
	return out
}

func splitName(s string) xml.Name {
	for i := 0; i < len(s); i++ {
		if s[i] == ':' {
			return xml.Name{Space: s[:i], Local: s[i+1:]}
		}
	}
	return xml.Name{Local: s}
}

func attrValue(attrs []xml.Attr, local string) string {
	for _, a := range attrs {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func copyAttrs(attrs []xml.Attr) []xml.Attr {
	if attrs == nil {
		return nil
	}
	out := make([]xml.Attr, len(attrs))
	copy(out, attrs)
	return out
}

func cloneRaws(raws []*RawXMLElement) []*RawXMLElement {
	if raws == nil {
		return nil
	}
	out := make([]*RawXMLElement, len(raws))
	for i, r := range raws {
		out[i] = r.Clone()
	}
	return out
}

// child is one encodable property element together with its local name,
// used to emit typed and preserved properties in schema order.
type child struct {
	local  string
	encode func(*xml.Encoder) error
}

func rawChildren(raws []*RawXMLElement) []child {
	out := make([]child, 0, len(raws))
	for _, r := range raws {
		r := r
		out = append(out, child{local: r.XMLName.Local, encode: func(e *xml.Encoder) error {
			return r.MarshalXML(e, xml.StartElement{})
		}})
	}
	return out
}

// encodeInOrder writes children sorted by their position in order. Elements
// not listed keep their relative order and go last.
func encodeInOrder(e *xml.Encoder, order []string, children []child) error {
	rank := func(local string) int {
		for i, name := range order {
			if name == local {
				return i
			}
		}
		return len(order)
	}
	sort.SliceStable(children, func(i, j int) bool {
		return rank(children[i].local) < rank(children[j].local)
	})
	for _, c := range children {
		if err := c.encode(e); err != nil {
			return err
		}
	}
	return nil
}

// emptyElement writes <w:local attr.../>.
func emptyElement(e *xml.Encoder, local string, attrs ...string) error {
	start := xml.StartElement{Name: xml.Name{Local: "w:" + local}}
	for i := 0; i+1 < len(attrs); i += 2 {
		if attrs[i+1] == "" {
			continue
		}
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "w:" + attrs[i]}, Value: attrs[i+1]})
	}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	return e.EncodeToken(start.End())
}
