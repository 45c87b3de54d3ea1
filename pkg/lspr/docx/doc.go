// Package docx provides the WordprocessingML document model used by the
// cover-page renderer.
//
// A DOCX file is a ZIP archive; only word/document.xml is parsed; every other
// part is copied through unchanged when the package is written back.
//
// # Structure Organization
//
//   - types.go: Core interfaces (BodyElement, ParagraphContent), RawXMLElement and encoding helpers
//   - document.go: Top-level Document and Body structures
//   - paragraph.go: Paragraph elements and their properties
//   - run.go: Run elements and run properties (fonts, size, highlight, ...)
//   - table.go: Table structures (Table, TableRow, TableCell), borders and widths
//   - package.go: Reading and writing the DOCX archive
//
// # Key Concepts
//
// BodyElement: a block of the body or of a table cell: *Paragraph, *Table,
// or a preserved *RawXMLElement.
//
// Run: a contiguous sequence of text with consistent formatting. A run's text
// maps <w:tab/> to "\t" and <w:br/> to "\n" so that paragraph text can be
// searched as plain text.
//
// RawXMLElement: any element the model does not interpret is kept as its
// token stream, with the literal namespace prefixes of the source, and is
// written back verbatim. Decoding therefore uses xml.Decoder.RawToken
// throughout; no namespace translation takes place.
//
// Usage:
//
//	pkg, err := docx.ReadFile("cover.docx")
//	if err != nil {
//	    return err
//	}
//	for _, p := range pkg.Document.Paragraphs() {
//	    fmt.Println(p.Text())
//	}
//	out, err := pkg.Bytes()
package docx
