// Package render implements field substitution on LSP-R cover templates.
//
// # Structure Organization
//
//   - format.go: FormatSpec, the run formatting the engine reads and overrides
//   - locate.go: Anchor location across run boundaries (Locate, LocatePattern, SpanAt)
//   - splice.go: Text replacement inside located spans (Replace, ReplaceNumeric)
//   - table.go: Synthesis of the score table from the legacy tab-stopped listing
//   - driver.go: The Driver walking a document once and the uniform format pass
//   - describe.go: Debug summaries of a document for structured logging
//
// # Key Functions
//
// Locate maps the first occurrence of an anchor in a paragraph's text back to
// (run, offset) coordinates, so anchors Word split over several runs are
// still found.
//
// Replace substitutes the located text. Runs strictly inside a multi-run span
// are emptied rather than removed, keeping earlier spans of the same
// paragraph valid.
//
// SynthesizeTable turns the header paragraph and up to four labeled score
// paragraphs into a borderless two-column table, rows always in canonical
// style order.
//
// Driver.Apply runs all of the above for one Request and finishes with
// ApplyUniformFormat.
//
// Nothing in this package performs I/O; a document is owned by one caller at
// a time.
package render
