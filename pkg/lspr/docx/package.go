package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
)

// DocumentPartName is the main document part of a DOCX package.
const DocumentPartName = "word/document.xml"

// Package is an opened DOCX file. The main document part is parsed into
// Document; every other part is copied through unchanged by Bytes.
type Package struct {
	source   []byte
	files    []*zip.File
	parts    map[string]*zip.File
	Document *Document
}

// OpenPackage parses a DOCX file held in memory. data is not modified and
// may be shared between packages.
func OpenPackage(data []byte) (*Package, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to read zip file: %w", err)
	}

	pkg := &Package{
		source: data,
		files:  zr.File,
		parts:  make(map[string]*zip.File, len(zr.File)),
	}
	for _, f := range zr.File {
		pkg.parts[f.Name] = f
	}

	if _, ok := pkg.parts[DocumentPartName]; !ok {
		return nil, fmt.Errorf("not a valid DOCX file: missing %s", DocumentPartName)
	}

	rc, err := pkg.parts[DocumentPartName].Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", DocumentPartName, err)
	}
	defer rc.Close()

	doc, err := ParseDocument(rc)
	if err != nil {
		return nil, err
	}
	pkg.Document = doc
	return pkg, nil
}

// ReadFile opens the DOCX file at path.
func ReadFile(path string) (*Package, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return OpenPackage(content)
}

// Part returns the raw content of a part as stored in the source file.
func (p *Package) Part(name string) ([]byte, error) {
	file, ok := p.parts[name]
	if !ok {
		return nil, fmt.Errorf("part %s not found", name)
	}

	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open part %s: %w", name, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read part %s: %w", name, err)
	}
	return content, nil
}

// ListParts returns the part names in archive order.
func (p *Package) ListParts() []string {
	names := make([]string, 0, len(p.files))
	for _, f := range p.files {
		names = append(names, f.Name)
	}
	return names
}

// Bytes serializes the package, replacing the main document part with the
// current state of Document. Other parts are copied without recompression.
func (p *Package) Bytes() ([]byte, error) {
	documentXML, err := p.Document.Marshal()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}

	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)

	for _, file := range p.files {
		if file.Name != DocumentPartName {
			if err := w.Copy(file); err != nil {
				return nil, fmt.Errorf("failed to copy %s: %w", file.Name, err)
			}
			continue
		}

		fw, err := w.CreateHeader(&zip.FileHeader{
			Name:     file.Name,
			Method:   zip.Deflate,
			Modified: file.Modified,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", file.Name, err)
		}
		if _, err := fw.Write(documentXML); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", file.Name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize package: %w", err)
	}
	return buf.Bytes(), nil
}

// MinimalPackage builds a DOCX file holding only the parts Word requires
// around the given document.xml content.
func MinimalPackage(documentXML []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	parts := []struct {
		name    string
		content []byte
	}{
		{"[Content_Types].xml", []byte(xmlHeader + `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
			`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
			`<Default Extension="xml" ContentType="application/xml"/>` +
			`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
			`</Types>`)},
		{"_rels/.rels", []byte(xmlHeader + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
			`</Relationships>`)},
		{"word/_rels/document.xml.rels", []byte(xmlHeader + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`)},
		{DocumentPartName, documentXML},
	}

	for _, part := range parts {
		fw, err := w.Create(part.name)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", part.name, err)
		}
		if _, err := fw.Write(part.content); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", part.name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
