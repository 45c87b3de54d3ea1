package lspr

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Merger concatenates a cover PDF and a body PDF, cover first.
type Merger interface {
	Merge(ctx context.Context, cover, body []byte) ([]byte, error)
}

var disableConfigDir sync.Once

// PDFMerger merges documents in memory with pdfcpu.
type PDFMerger struct {
	Timeout time.Duration
}

// NewPDFMerger creates a merger. pdfcpu's user configuration directory is
// never read or created.
func NewPDFMerger(timeout time.Duration) *PDFMerger {
	disableConfigDir.Do(api.DisableConfigDir)
	return &PDFMerger{Timeout: timeout}
}

func (m *PDFMerger) configuration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

type mergeResult struct {
	data []byte
	err  error
}

// Merge returns cover followed by body. The merge itself cannot be
// interrupted; on timeout the result is abandoned.
func (m *PDFMerger) Merge(ctx context.Context, cover, body []byte) ([]byte, error) {
	if len(cover) == 0 {
		return nil, &MergeError{Reason: "empty cover"}
	}
	if len(body) == 0 {
		return nil, &MergeError{Reason: "empty body"}
	}
	if m.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.Timeout)
		defer cancel()
	}

	done := make(chan mergeResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- mergeResult{err: RecoverError(r)}
			}
		}()
		var out bytes.Buffer
		sources := []io.ReadSeeker{bytes.NewReader(cover), bytes.NewReader(body)}
		err := api.MergeRaw(sources, &out, false, m.configuration())
		done <- mergeResult{data: out.Bytes(), err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return nil, &MergeError{Reason: "merge cover and body", Err: res.err}
		}
		return res.data, nil
	case <-ctx.Done():
		return nil, &MergeError{Reason: "merge interrupted", Err: ctx.Err()}
	}
}

// PageCount returns the number of pages of a PDF.
func (m *PDFMerger) PageCount(pdf []byte) (int, error) {
	n, err := api.PageCount(bytes.NewReader(pdf), m.configuration())
	if err != nil {
		return 0, fmt.Errorf("count pages: %w", err)
	}
	return n, nil
}

// PageCountFile is PageCount for a file on disk.
func (m *PDFMerger) PageCountFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return m.PageCount(data)
}
