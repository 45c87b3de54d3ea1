package docx

import (
	"encoding/xml"
	"io"
	"strconv"
)

// Table represents a table in the document
type Table struct {
	Attrs      []xml.Attr
	Properties *TableProperties
	Grid       *TableGrid
	Rows       []*TableRow
	// Extra holds other table-level children (bookmarks, custom XML, ...).
	Extra []*RawXMLElement
}

// isBodyElement implements the BodyElement interface
func (t *Table) isBodyElement() {}

// NewTable builds an empty table with one grid column per width (twips).
func NewTable(colWidths ...int) *Table {
	return &Table{
		Properties: &TableProperties{Width: &Width{W: 0, Type: "auto"}},
		Grid:       &TableGrid{Columns: colWidths},
	}
}

// AddRow appends a row built from cells.
func (t *Table) AddRow(cells ...*TableCell) *TableRow {
	row := &TableRow{Cells: cells}
	t.Rows = append(t.Rows, row)
	return row
}

// Paragraphs returns every paragraph of the table, row by row, descending into
// nested tables.
func (t *Table) Paragraphs() []*Paragraph {
	var out []*Paragraph
	for _, row := range t.Rows {
		for _, cell := range row.Cells {
			out = append(out, paragraphsOf(cell.Elements)...)
		}
	}
	return out
}

func (t *Table) decode(d *xml.Decoder, start xml.StartElement) error {
	t.Attrs = copyAttrs(start.Attr)
	for {
		tok, err := d.RawToken()
		if err == io.EOF {
			return io.ErrUnexpectedEOF
		}
		if err != nil {
			return err
		}

		switch tt := tok.(type) {
		case xml.StartElement:
			switch tt.Name.Local {
			case "tblPr":
				props := &TableProperties{}
				if err := props.decode(d); err != nil {
					return err
				}
				t.Properties = props
			case "tblGrid":
				grid := &TableGrid{}
				if err := grid.decode(d); err != nil {
					return err
				}
				t.Grid = grid
			case "tr":
				row := &TableRow{}
				if err := row.decode(d, tt); err != nil {
					return err
				}
				t.Rows = append(t.Rows, row)
			default:
				raw, err := readRaw(d, tt)
				if err != nil {
					return err
				}
				t.Extra = append(t.Extra, raw)
			}
		case xml.EndElement:
			if tt.Name.Local == "tbl" {
				return nil
			}
		}
	}
}

// MarshalXML implements custom XML marshaling for Table to ensure proper namespacing
func (t Table) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	start := xml.StartElement{Name: xml.Name{Local: "w:tbl"}, Attr: qualifyAttrs(t.Attrs)}
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	props := t.Properties
	if props == nil {
		props = &TableProperties{}
	}
	if err := props.MarshalXML(e, xml.StartElement{}); err != nil {
		return err
	}

	grid := t.Grid
	if grid == nil {
		grid = &TableGrid{}
	}
	if err := grid.MarshalXML(e, xml.StartElement{}); err != nil {
		return err
	}

	for _, raw := range t.Extra {
		if err := raw.MarshalXML(e, xml.StartElement{}); err != nil {
			return err
		}
	}

	for _, row := range t.Rows {
		if err := row.MarshalXML(e, xml.StartElement{}); err != nil {
			return err
		}
	}

	return e.EncodeToken(start.End())
}

// tablePropertyOrder is the CT_TblPr child sequence.
var tablePropertyOrder = []string{
	"tblStyle", "tblpPr", "tblOverlap", "bidiVisual", "tblStyleRowBandSize",
	"tblStyleColBandSize", "tblW", "jc", "tblCellSpacing", "tblInd", "tblBorders",
	"shd", "tblLayout", "tblCellMar", "tblLook", "tblCaption", "tblDescription",
}

// TableProperties represents table formatting properties
type TableProperties struct {
	Width   *Width
	Borders *Borders
	Raw     []*RawXMLElement
}

func (p *TableProperties) decode(d *xml.Decoder) error {
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
			case "tblW":
				p.Width = widthFromAttrs(t.Attr)
				if err := skipElement(d); err != nil {
					return err
				}
			case "tblBorders":
				b := &Borders{}
				if err := b.decode(d, "tblBorders"); err != nil {
					return err
				}
				p.Borders = b
			default:
				raw, err := readRaw(d, t)
				if err != nil {
					return err
				}
				p.Raw = append(p.Raw, raw)
			}
		case xml.EndElement:
			if t.Name.Local == "tblPr" {
				return nil
			}
		}
	}
}

// MarshalXML implements custom XML marshaling for TableProperties
func (p TableProperties) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	start := xml.StartElement{Name: xml.Name{Local: "w:tblPr"}}
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	children := rawChildren(p.Raw)
	if p.Width != nil {
		w := p.Width
		children = append(children, child{"tblW", func(e *xml.Encoder) error { return w.encode(e, "tblW") }})
	}
	if p.Borders != nil {
		b := p.Borders
		children = append(children, child{"tblBorders", func(e *xml.Encoder) error { return b.encode(e, "tblBorders") }})
	}
	if err := encodeInOrder(e, tablePropertyOrder, children); err != nil {
		return err
	}

	return e.EncodeToken(start.End())
}

// TableGrid holds the column widths in twips.
type TableGrid struct {
	Columns []int
}

func (g *TableGrid) decode(d *xml.Decoder) error {
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
			if t.Name.Local == "gridCol" {
				w, _ := strconv.Atoi(attrValue(t.Attr, "w"))
				g.Columns = append(g.Columns, w)
			}
			if err := skipElement(d); err != nil {
				return err
			}
		case xml.EndElement:
			if t.Name.Local == "tblGrid" {
				return nil
			}
		}
	}
}

// MarshalXML implements custom XML marshaling for TableGrid
func (g TableGrid) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	start := xml.StartElement{Name: xml.Name{Local: "w:tblGrid"}}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	for _, w := range g.Columns {
		if err := emptyElement(e, "gridCol", "w", strconv.Itoa(w)); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

// TableRow represents a row in a table
type TableRow struct {
	Attrs []xml.Attr
	// Properties is the preserved <w:trPr>.
	Properties *RawXMLElement
	// Extra holds row-level elements other than trPr and cells (tblPrEx, ...).
	Extra []*RawXMLElement
	Cells []*TableCell
}

func (r *TableRow) decode(d *xml.Decoder, start xml.StartElement) error {
	r.Attrs = copyAttrs(start.Attr)
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
			case "tc":
				cell := &TableCell{}
				if err := cell.decode(d, t); err != nil {
					return err
				}
				r.Cells = append(r.Cells, cell)
			case "trPr":
				raw, err := readRaw(d, t)
				if err != nil {
					return err
				}
				r.Properties = raw
			default:
				raw, err := readRaw(d, t)
				if err != nil {
					return err
				}
				r.Extra = append(r.Extra, raw)
			}
		case xml.EndElement:
			if t.Name.Local == "tr" {
				return nil
			}
		}
	}
}

// MarshalXML implements custom XML marshaling for TableRow
func (r TableRow) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	start := xml.StartElement{Name: xml.Name{Local: "w:tr"}, Attr: qualifyAttrs(r.Attrs)}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	for _, raw := range r.Extra {
		if err := raw.MarshalXML(e, xml.StartElement{}); err != nil {
			return err
		}
	}
	if r.Properties != nil {
		if err := r.Properties.MarshalXML(e, xml.StartElement{}); err != nil {
			return err
		}
	}
	for _, cell := range r.Cells {
		if err := cell.MarshalXML(e, xml.StartElement{}); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

// TableCell represents a cell in a table row. A cell is a nested body: it
// holds its own paragraphs and tables.
type TableCell struct {
	Properties *CellProperties
	Elements   []BodyElement
}

// NewTableCell builds a cell of the given width (twips) holding paragraphs.
func NewTableCell(width int, paragraphs ...*Paragraph) *TableCell {
	c := &TableCell{Properties: &CellProperties{Width: &Width{W: width, Type: "dxa"}}}
	for _, p := range paragraphs {
		c.Elements = append(c.Elements, p)
	}
	return c
}

// Paragraphs returns the cell's paragraphs, descending into nested tables.
func (c *TableCell) Paragraphs() []*Paragraph {
	return paragraphsOf(c.Elements)
}

// Text returns the text of the cell's paragraphs joined by newlines.
func (c *TableCell) Text() string {
	var out string
	for i, p := range c.Paragraphs() {
		if i > 0 {
			out += "\n"
		}
		out += p.Text()
	}
	return out
}

func (c *TableCell) decode(d *xml.Decoder, start xml.StartElement) error {
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
			if t.Name.Local == "tcPr" {
				props := &CellProperties{}
				if err := props.decode(d); err != nil {
					return err
				}
				c.Properties = props
				continue
			}
			el, err := decodeBlock(d, t)
			if err != nil {
				return err
			}
			c.Elements = append(c.Elements, el)
		case xml.EndElement:
			if t.Name.Local == start.Name.Local {
				return nil
			}
		}
	}
}

// MarshalXML implements custom XML marshaling for TableCell
func (c TableCell) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	start := xml.StartElement{Name: xml.Name{Local: "w:tc"}}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if c.Properties != nil {
		if err := c.Properties.MarshalXML(e, xml.StartElement{}); err != nil {
			return err
		}
	}
	// A cell must end with a paragraph.
	elements := c.Elements
	if len(elements) == 0 {
		elements = []BodyElement{&Paragraph{}}
	} else if _, ok := elements[len(elements)-1].(*Paragraph); !ok {
		elements = append(elements[:len(elements):len(elements)], &Paragraph{})
	}
	if err := encodeBlocks(e, elements); err != nil {
		return err
	}
	return e.EncodeToken(start.End())
}

// cellPropertyOrder is the CT_TcPr child sequence.
var cellPropertyOrder = []string{
	"cnfStyle", "tcW", "gridSpan", "hMerge", "vMerge", "tcBorders", "shd",
	"noWrap", "tcMar", "textDirection", "tcFitText", "vAlign", "hideMark",
}

// CellProperties represents cell formatting properties
type CellProperties struct {
	Width   *Width
	Borders *Borders
	VAlign  string
	Raw     []*RawXMLElement
}

func (p *CellProperties) decode(d *xml.Decoder) error {
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
			case "tcW":
				p.Width = widthFromAttrs(t.Attr)
				if err := skipElement(d); err != nil {
					return err
				}
			case "vAlign":
				p.VAlign = attrValue(t.Attr, "val")
				if err := skipElement(d); err != nil {
					return err
				}
			case "tcBorders":
				b := &Borders{}
				if err := b.decode(d, "tcBorders"); err != nil {
					return err
				}
				p.Borders = b
			default:
				raw, err := readRaw(d, t)
				if err != nil {
					return err
				}
				p.Raw = append(p.Raw, raw)
			}
		case xml.EndElement:
			if t.Name.Local == "tcPr" {
				return nil
			}
		}
	}
}

// MarshalXML implements custom XML marshaling for CellProperties
func (p CellProperties) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	start := xml.StartElement{Name: xml.Name{Local: "w:tcPr"}}
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	children := rawChildren(p.Raw)
	if p.Width != nil {
		w := p.Width
		children = append(children, child{"tcW", func(e *xml.Encoder) error { return w.encode(e, "tcW") }})
	}
	if p.Borders != nil {
		b := p.Borders
		children = append(children, child{"tcBorders", func(e *xml.Encoder) error { return b.encode(e, "tcBorders") }})
	}
	if p.VAlign != "" {
		v := p.VAlign
		children = append(children, child{"vAlign", func(e *xml.Encoder) error { return emptyElement(e, "vAlign", "val", v) }})
	}
	if err := encodeInOrder(e, cellPropertyOrder, children); err != nil {
		return err
	}

	return e.EncodeToken(start.End())
}

// Width represents a measurement such as <w:tblW w:w="0" w:type="auto"/>.
type Width struct {
	W    int
	Type string
}

func widthFromAttrs(attrs []xml.Attr) *Width {
	w, _ := strconv.Atoi(attrValue(attrs, "w"))
	return &Width{W: w, Type: attrValue(attrs, "type")}
}

func (w *Width) encode(e *xml.Encoder, local string) error {
	start := xml.StartElement{
		Name: xml.Name{Local: "w:" + local},
		Attr: []xml.Attr{{Name: xml.Name{Local: "w:w"}, Value: strconv.Itoa(w.W)}},
	}
	if w.Type != "" {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "w:type"}, Value: w.Type})
	}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	return e.EncodeToken(start.End())
}

// Border is one edge of a table or cell border set. A nil edge means the
// edge is inherited from the table style.
type Border struct {
	// Name is the element the edge was read from ("start" for a left edge,
	// ...). Empty means the canonical name.
	Name  string
	Val   string
	Size  int // eighths of a point
	Space int
	Color string
	// Other holds attributes beyond val, sz, space and color (themeColor,
	// shadow, frame, ...).
	Other []xml.Attr

	hasSize  bool
	hasSpace bool
}

// Borders holds the six border edges of a table or cell. Other edges, such
// as the diagonal tl2br and tr2bl of a cell, are preserved in Extra.
type Borders struct {
	Top     *Border
	Left    *Border
	Bottom  *Border
	Right   *Border
	InsideH *Border
	InsideV *Border
	Extra   []*RawXMLElement
}

// borderOrder is the CT_TblBorders / CT_TcBorders child sequence.
var borderOrder = []string{
	"top", "left", "start", "bottom", "right", "end", "insideH", "insideV", "tl2br", "tr2bl",
}

// NoBorders returns a border set with every edge explicitly set to none.
func NoBorders() *Borders {
	none := func() *Border {
		return &Border{Val: "none", Size: 0, Space: 0, Color: "auto", hasSize: true, hasSpace: true}
	}
	return &Borders{
		Top:     none(),
		Left:    none(),
		Bottom:  none(),
		Right:   none(),
		InsideH: none(),
		InsideV: none(),
	}
}

// Edges returns the edges in schema order keyed by element name.
func (b *Borders) Edges() []struct {
	Name   string
	Border *Border
} {
	return []struct {
		Name   string
		Border *Border
	}{
		{"top", b.Top},
		{"left", b.Left},
		{"bottom", b.Bottom},
		{"right", b.Right},
		{"insideH", b.InsideH},
		{"insideV", b.InsideV},
	}
}

func (b *Borders) edge(local string) **Border {
	switch local {
	case "top":
		return &b.Top
	case "left", "start":
		return &b.Left
	case "bottom":
		return &b.Bottom
	case "right", "end":
		return &b.Right
	case "insideH":
		return &b.InsideH
	case "insideV":
		return &b.InsideV
	}
	return nil
}

func (b *Borders) decode(d *xml.Decoder, local string) error {
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
			slot := b.edge(t.Name.Local)
			if slot == nil {
				raw, err := readRaw(d, t)
				if err != nil {
					return err
				}
				b.Extra = append(b.Extra, raw)
				continue
			}
			*slot = borderFromStart(t)
			if err := skipElement(d); err != nil {
				return err
			}
		case xml.EndElement:
			if t.Name.Local == local {
				return nil
			}
		}
	}
}

func borderFromStart(se xml.StartElement) *Border {
	border := &Border{}
	switch name := se.Name.Local; name {
	case "start", "end":
		border.Name = name
	}
	for _, a := range se.Attr {
		switch a.Name.Local {
		case "val":
			border.Val = a.Value
		case "sz":
			border.Size, _ = strconv.Atoi(a.Value)
			border.hasSize = true
		case "space":
			border.Space, _ = strconv.Atoi(a.Value)
			border.hasSpace = true
		case "color":
			border.Color = a.Value
		default:
			border.Other = append(border.Other, a)
		}
	}
	return border
}

func (b *Borders) encode(e *xml.Encoder, local string) error {
	start := xml.StartElement{Name: xml.Name{Local: "w:" + local}}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	children := rawChildren(b.Extra)
	for _, edge := range b.Edges() {
		if edge.Border == nil {
			continue
		}
		border, name := edge.Border, edge.Name
		if border.Name != "" {
			name = border.Name
		}
		children = append(children, child{name, func(e *xml.Encoder) error {
			return border.encode(e, name)
		}})
	}
	if err := encodeInOrder(e, borderOrder, children); err != nil {
		return err
	}
	return e.EncodeToken(start.End())
}

func (b *Border) encode(e *xml.Encoder, local string) error {
	start := xml.StartElement{Name: xml.Name{Local: "w:" + local}}
	add := func(name, value string) {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "w:" + name}, Value: value})
	}
	if b.Val != "" {
		add("val", b.Val)
	}
	if b.Size != 0 || b.hasSize {
		add("sz", strconv.Itoa(b.Size))
	}
	if b.Space != 0 || b.hasSpace {
		add("space", strconv.Itoa(b.Space))
	}
	if b.Color != "" {
		add("color", b.Color)
	}
	start.Attr = append(start.Attr, qualifyAttrs(b.Other)...)
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	return e.EncodeToken(start.End())
}
