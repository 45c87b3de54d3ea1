package render

import (
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/lspr-report/lspr/pkg/lspr/docx"
)

// Anchors is the template text the driver looks for.
type Anchors struct {
	// Name is the participant name placeholder.
	Name string
	// StyleLabels are the short style labels in canonical order. They mark
	// score lines and label the rows of the synthesized table.
	StyleLabels [4]string
	// LongLabels are written after the dominant and least developed markers.
	LongLabels [4]string
	// Dominant and LeastDeveloped start the style lines; everything after
	// them up to the end of the line is replaced.
	Dominant       string
	LeastDeveloped string
	// StyleLineMarker, when set, must also occur in a style line. Templates
	// carry a sample long label there.
	StyleLineMarker string
	Table           TableHeader
}

// DefaultAnchors returns the anchors of the Portuguese cover templates.
func DefaultAnchors() Anchors {
	return Anchors{
		Name: "Nome completo",
		StyleLabels: [4]string{
			"Pessoas (Relacional)",
			"Ação (Processo)",
			"Tempo (Solução imediata)",
			"Mensagem (Conteúdo / Analítico)",
		},
		LongLabels: [4]string{
			"Orientado para Pessoas (Relacional)",
			"Orientado para Ação (Processo)",
			"Orientado para o Tempo (Solução imediata)",
			"Orientado para Mensagem (Conteúdo / Analítico)",
		},
		Dominant:        "Estilo predominante:",
		LeastDeveloped:  "Estilo menos desenvolvido:",
		StyleLineMarker: "Orientado",
		Table:           DefaultTableHeader(),
	}
}

// FormatOverridePolicy selects the formatting rules of a render.
type FormatOverridePolicy struct {
	// Uniform font family and size forced on every run after substitution.
	// Only FontFamily and SizePt are used.
	Uniform FormatSpec
	// ClearHighlight removes run highlighting in the same pass.
	ClearHighlight bool
	// Name, when set, is the exact format of the substituted participant
	// name. Otherwise the name keeps the placeholder's format.
	Name *FormatSpec
}

// DefaultPolicy forces Liberation Sans 12pt and clears highlighting.
func DefaultPolicy() FormatOverridePolicy {
	return FormatOverridePolicy{
		Uniform:        FormatSpec{FontFamily: "Liberation Sans", SizePt: 12},
		ClearHighlight: true,
	}
}

// Report summarizes the substitutions made by Apply.
type Report struct {
	Names         int
	Scores        int
	StyleLines    int
	Table         TableResult
	RunsFormatted int
}

// Substitutions is the total number of text replacements.
func (r Report) Substitutions() int {
	return r.Names + r.Scores + r.StyleLines
}

// scoreWidth is the display width of a score on a tab-stopped line.
const scoreWidth = 2

// Driver applies a substitution request to a cover document.
type Driver struct {
	anchors    Anchors
	policy     FormatOverridePolicy
	logger     *zap.Logger
	dominantRe *regexp.Regexp
	leastRe    *regexp.Regexp
}

// Option configures a Driver
type Option func(*Driver)

// WithAnchors replaces the default anchors.
func WithAnchors(a Anchors) Option {
	return func(d *Driver) {
		d.anchors = a
	}
}

// WithPolicy replaces the default format override policy.
func WithPolicy(p FormatOverridePolicy) Option {
	return func(d *Driver) {
		d.policy = p
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(d *Driver) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDriver creates a driver with the default anchors and policy.
func NewDriver(opts ...Option) *Driver {
	d := &Driver{
		anchors: DefaultAnchors(),
		policy:  DefaultPolicy(),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.dominantRe = styleLinePattern(d.anchors.Dominant)
	d.leastRe = styleLinePattern(d.anchors.LeastDeveloped)
	return d
}

// styleLinePattern matches marker, optional whitespace, then the rest of the
// line in group 1.
func styleLinePattern(marker string) *regexp.Regexp {
	if marker == "" {
		return nil
	}
	return regexp.MustCompile(regexp.QuoteMeta(marker) + `\s*(.+)`)
}

// Anchors returns the anchors in use.
func (d *Driver) Anchors() Anchors {
	return d.anchors
}

// Apply substitutes req into doc in place.
//
// The legacy score listing is turned into a table first. Then every
// paragraph, including those in table cells, is visited once for the name,
// score and style line substitutions. Absent anchors are skipped. Finally the
// uniform font override runs over every run, so runs created by splitting
// and the new table receive it too.
func (d *Driver) Apply(doc *docx.Document, req Request) Report {
	var report Report
	if doc == nil || doc.Body == nil {
		return report
	}
	if ce := d.logger.Check(zap.DebugLevel, "document before substitution"); ce != nil {
		ce.Write(zap.Array("paragraphs", Describe(doc, describeLimit)))
	}

	scores := req.Scores.Values()
	var values [4]string
	for k, v := range scores {
		values[k] = strconv.Itoa(v)
	}

	report.Table = SynthesizeTable(doc, d.anchors.Table, d.anchors.StyleLabels, values)
	switch {
	case report.Table.Partial():
		d.logger.Warn("score table is missing rows",
			zap.Int("rows", report.Table.Rows),
			zap.Strings("missing", report.Table.Missing))
	case report.Table.Synthesized:
		d.logger.Debug("score table synthesized", zap.Int("index", report.Table.Index))
	}

	var synthesized *docx.Table
	if report.Table.Synthesized {
		synthesized, _ = doc.Body.Elements[report.Table.Index].(*docx.Table)
	}
	valueCells := neighborCells(doc.Body.Elements, synthesized)

	dominant := d.longLabel(req.Dominant)
	least := d.longLabel(req.LeastDeveloped)
	for i, p := range doc.Paragraphs() {
		n := d.replaceName(p, req.ParticipantName)
		report.Names += n
		if n > 0 {
			d.logger.Debug("participant name substituted", zap.Int("paragraph", i))
		}

		text := p.Text()
		for k, label := range d.anchors.StyleLabels {
			if label == "" || !strings.Contains(text, label) {
				continue
			}
			run, width, ok := d.scoreRun(p, valueCells)
			if !ok {
				continue
			}
			ReplaceNumeric(run, scores[k], width)
			report.Scores++
			d.logger.Debug("score substituted",
				zap.Int("paragraph", i),
				zap.Stringer("style", Style(k)),
				zap.Int("score", scores[k]))
		}

		if d.replaceStyleLine(p, d.anchors.Dominant, d.dominantRe, dominant) {
			report.StyleLines++
			d.logger.Debug("dominant style substituted", zap.Int("paragraph", i))
		}
		if d.replaceStyleLine(p, d.anchors.LeastDeveloped, d.leastRe, least) {
			report.StyleLines++
			d.logger.Debug("least developed style substituted", zap.Int("paragraph", i))
		}
	}

	report.RunsFormatted = ApplyUniformFormat(doc, d.policy)

	if ce := d.logger.Check(zap.DebugLevel, "document after substitution"); ce != nil {
		ce.Write(zap.Array("paragraphs", Describe(doc, describeLimit)))
	}
	return report
}

// scoreRun picks the run receiving a score for the label paragraph p: its own
// last numeric run on a tab-stopped line, or else the last numeric run of the
// next cell when p sits in a table row.
func (d *Driver) scoreRun(p *docx.Paragraph, valueCells map[*docx.Paragraph]*docx.TableCell) (*docx.Run, int, bool) {
	if run, ok := LastNumericRun(p); ok {
		return run, scoreWidth, true
	}
	cell, ok := valueCells[p]
	if !ok {
		return nil, 0, false
	}
	paragraphs := cell.Paragraphs()
	for i := len(paragraphs) - 1; i >= 0; i-- {
		if run, ok := LastNumericRun(paragraphs[i]); ok {
			return run, 0, true
		}
	}
	d.logger.Warn("score cell holds no number", zap.String("label", p.Text()))
	return nil, 0, false
}

// neighborCells maps every paragraph of a table cell to the cell right of
// it in the same row. Nested tables are included; skip and its content are
// not.
func neighborCells(blocks []docx.BodyElement, skip *docx.Table) map[*docx.Paragraph]*docx.TableCell {
	out := make(map[*docx.Paragraph]*docx.TableCell)
	var walk func(blocks []docx.BodyElement)
	walk = func(blocks []docx.BodyElement) {
		for _, b := range blocks {
			tbl, ok := b.(*docx.Table)
			if !ok || tbl == skip {
				continue
			}
			for _, row := range tbl.Rows {
				for j, cell := range row.Cells {
					if j+1 < len(row.Cells) {
						for _, el := range cell.Elements {
							if p, ok := el.(*docx.Paragraph); ok {
								out[p] = row.Cells[j+1]
							}
						}
					}
					walk(cell.Elements)
				}
			}
		}
	}
	walk(blocks)
	return out
}

func (d *Driver) longLabel(s Style) string {
	if !s.Valid() {
		return ""
	}
	return d.anchors.LongLabels[s]
}

// replaceName replaces every occurrence of the name placeholder in p.
func (d *Driver) replaceName(p *docx.Paragraph, name string) int {
	anchor := d.anchors.Name
	if anchor == "" {
		return 0
	}
	policy := Preserve()
	if d.policy.Name != nil {
		policy = Override(*d.policy.Name)
	}

	n, from := 0, 0
	for {
		span, ok := LocateFrom(p, anchor, from)
		if !ok {
			return n
		}
		start := textOffset(p, span)
		if !Replace(p, span, name, policy) {
			return n
		}
		n++
		from = start + len(name)
	}
}

// replaceStyleLine replaces the tail of the line started by marker with
// label.
func (d *Driver) replaceStyleLine(p *docx.Paragraph, marker string, re *regexp.Regexp, label string) bool {
	if re == nil || label == "" {
		return false
	}
	text := p.Text()
	if !strings.Contains(text, marker) {
		return false
	}
	if m := d.anchors.StyleLineMarker; m != "" && !strings.Contains(text, m) {
		return false
	}
	span, ok := LocatePattern(p, re, 1)
	if !ok {
		return false
	}
	return Replace(p, span, label, Preserve())
}

// textOffset converts the start of span back to a paragraph text offset.
func textOffset(p *docx.Paragraph, span Span) int {
	off := 0
	for i, r := range p.Runs() {
		if i == span.RunStart {
			return off + span.OffsetStart
		}
		off += len(r.Text)
	}
	return off
}

// ApplyUniformFormat forces the policy's font family and size on every run
// of the document and clears highlighting if requested. Bold, italic and
// color are left alone. It returns the number of runs visited and is
// idempotent.
func ApplyUniformFormat(doc *docx.Document, policy FormatOverridePolicy) int {
	uniform := FormatSpec{FontFamily: policy.Uniform.FontFamily, SizePt: policy.Uniform.SizePt}
	if doc == nil || (uniform.IsZero() && !policy.ClearHighlight) {
		return 0
	}

	n := 0
	for _, p := range doc.Paragraphs() {
		for _, r := range p.Runs() {
			props := r.EnsureProperties()
			uniform.Apply(props)
			if policy.ClearHighlight {
				props.Highlight = nil
			}
			n++
		}
	}
	return n
}
