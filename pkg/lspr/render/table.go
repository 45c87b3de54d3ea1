package render

import (
	"strings"

	"github.com/lspr-report/lspr/pkg/lspr/docx"
)

// TableHeader identifies the legacy header paragraph and titles the
// synthesized table's columns.
type TableHeader struct {
	// LeftToken and RightToken must both occur in the header paragraph.
	LeftToken  string
	RightToken string
	LabelTitle string
	ValueTitle string
}

// DefaultTableHeader returns the header of the Portuguese cover templates.
func DefaultTableHeader() TableHeader {
	return TableHeader{
		LeftToken:  "Estilo",
		RightToken: "Pontuação",
		LabelTitle: "Estilo",
		ValueTitle: "Pontuação",
	}
}

// TableResult describes what SynthesizeTable did.
type TableResult struct {
	Synthesized bool
	// Index is the body position of the new table.
	Index int
	// Rows is the number of data rows written.
	Rows int
	// Missing lists the row labels not found within the window.
	Missing []string
}

// Partial reports whether a table was written with fewer data rows than
// labels.
func (r TableResult) Partial() bool {
	return r.Synthesized && len(r.Missing) > 0
}

// rowWindow is how many paragraphs after the header may be row paragraphs.
// Tables and other blocks in between are not counted.
const rowWindow = 4

// Column widths of the synthesized table, in twips.
const (
	labelColumnWidth = 6000
	valueColumnWidth = 2000
)

type scanState int

const (
	stateSeeking scanState = iota
	stateHeaderFound
	stateCollectingRows
	stateDone
)

func (s scanState) String() string {
	switch s {
	case stateSeeking:
		return "seeking"
	case stateHeaderFound:
		return "headerFound"
	case stateCollectingRows:
		return "collectingRows"
	case stateDone:
		return "done"
	}
	return "unknown"
}

// tableScan is the state of one pass over the top-level body blocks.
type tableScan struct {
	state     scanState
	next      int // index of the next block to inspect
	offset    int // paragraphs inspected since the header
	header    int
	headerPar *docx.Paragraph
	marked    []int
	rows      [4]*docx.Paragraph
}

// SynthesizeTable replaces a legacy tab-delimited score listing with a real
// two-column table.
//
// It looks for the first top-level paragraph containing both header tokens,
// then inspects up to four following paragraphs for one naming one of
// rowLabels. The header and matched paragraphs are removed and a borderless
// table is inserted where the header was: a title row, then one row per
// matched label in the order of rowLabels, whatever order the legacy
// paragraphs were in. Labels not found are left out of the table. Without a
// header the document is not touched.
func SynthesizeTable(doc *docx.Document, header TableHeader, rowLabels [4]string, scoreValues [4]string) TableResult {
	if doc == nil || doc.Body == nil || header.LeftToken == "" || header.RightToken == "" {
		return TableResult{}
	}
	body := doc.Body

	scan := &tableScan{state: stateSeeking, header: -1}
	for scan.state != stateDone {
		scan.step(body.Elements, header, rowLabels)
	}
	if scan.header < 0 {
		return TableResult{}
	}

	table, rows := buildScoreTable(header, scan.headerPar, rowLabels, scoreValues, scan.rows)
	body.RemoveAt(scan.marked...)
	body.InsertAt(scan.header, table)

	result := TableResult{Synthesized: true, Index: scan.header, Rows: rows}
	for k, p := range scan.rows {
		if p == nil {
			result.Missing = append(result.Missing, rowLabels[k])
		}
	}
	return result
}

func (s *tableScan) step(blocks []docx.BodyElement, header TableHeader, rowLabels [4]string) {
	switch s.state {
	case stateSeeking:
		if s.next >= len(blocks) {
			s.state = stateDone
			return
		}
		if p, ok := blocks[s.next].(*docx.Paragraph); ok {
			text := p.Text()
			if strings.Contains(text, header.LeftToken) && strings.Contains(text, header.RightToken) {
				s.header, s.headerPar = s.next, p
				s.state = stateHeaderFound
			}
		}
		s.next++

	case stateHeaderFound:
		s.marked = append(s.marked, s.header)
		s.offset = 0
		s.state = stateCollectingRows

	case stateCollectingRows:
		if s.offset >= rowWindow || s.next >= len(blocks) || s.complete() {
			s.state = stateDone
			return
		}
		if p, ok := blocks[s.next].(*docx.Paragraph); ok {
			s.offset++
			if k := s.matchLabel(p.Text(), rowLabels); k >= 0 {
				s.rows[k] = p
				s.marked = append(s.marked, s.next)
			}
		}
		s.next++
	}
}

// matchLabel returns the first label not yet matched that text contains.
func (s *tableScan) matchLabel(text string, rowLabels [4]string) int {
	for k, label := range rowLabels {
		if s.rows[k] == nil && label != "" && strings.Contains(text, label) {
			return k
		}
	}
	return -1
}

func (s *tableScan) complete() bool {
	for _, p := range s.rows {
		if p == nil {
			return false
		}
	}
	return true
}

func buildScoreTable(header TableHeader, headerPar *docx.Paragraph, rowLabels, scoreValues [4]string, rows [4]*docx.Paragraph) (*docx.Table, int) {
	table := docx.NewTable(labelColumnWidth, valueColumnWidth)
	table.Properties.Borders = docx.NoBorders()

	table.AddRow(
		labelCell(header.LabelTitle, firstTextRun(headerPar)),
		valueCell(header.ValueTitle, lastTextRun(headerPar)),
	)

	n := 0
	for k, p := range rows {
		if p == nil {
			continue
		}
		valueFormat, ok := LastNumericRun(p)
		if !ok {
			valueFormat = lastTextRun(p)
		}
		table.AddRow(
			labelCell(rowLabels[k], firstTextRun(p)),
			valueCell(scoreValues[k], valueFormat),
		)
		n++
	}
	return table, n
}

func labelCell(text string, format *docx.Run) *docx.TableCell {
	cell := docx.NewTableCell(labelColumnWidth, cellParagraph(text, format))
	cell.Properties.Borders = docx.NoBorders()
	return cell
}

func valueCell(text string, format *docx.Run) *docx.TableCell {
	p := cellParagraph(text, format)
	p.SetAlignment("center")
	cell := docx.NewTableCell(valueColumnWidth, p)
	cell.Properties.Borders = docx.NoBorders()
	return cell
}

// cellParagraph builds a one-run paragraph whose run copies the properties of
// format, if any.
func cellParagraph(text string, format *docx.Run) *docx.Paragraph {
	var props *docx.RunProperties
	if format != nil {
		props = format.Properties
	}
	return docx.NewParagraph(props, text)
}

func firstTextRun(p *docx.Paragraph) *docx.Run {
	if p == nil {
		return nil
	}
	for _, r := range p.Runs() {
		if strings.TrimSpace(r.Text) != "" {
			return r
		}
	}
	return nil
}

func lastTextRun(p *docx.Paragraph) *docx.Run {
	if p == nil {
		return nil
	}
	runs := p.Runs()
	for i := len(runs) - 1; i >= 0; i-- {
		if strings.TrimSpace(runs[i].Text) != "" {
			return runs[i]
		}
	}
	return nil
}
