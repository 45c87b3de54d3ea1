package lspr

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPDFMergerMerge(t *testing.T) {
	m := NewPDFMerger(0)

	out, err := m.Merge(context.Background(), minimalPDF(1), minimalPDF(3))
	require.NoError(t, err)

	n, err := m.PageCount(out)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestPDFMergerRejectsBadInput(t *testing.T) {
	m := NewPDFMerger(0)
	tests := []struct {
		name        string
		cover, body []byte
	}{
		{"empty cover", nil, minimalPDF(1)},
		{"empty body", minimalPDF(1), nil},
		{"garbage body", minimalPDF(1), []byte("%PDF-1.4 garbage")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Merge(context.Background(), tt.cover, tt.body)
			require.Error(t, err)
			assert.True(t, IsMergeError(err))
		})
	}
}

func TestPDFMergerCanceled(t *testing.T) {
	m := NewPDFMerger(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Merge(ctx, minimalPDF(1), minimalPDF(1))
	if err != nil {
		// the merge may finish before the canceled context is noticed
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestPDFMergerPageCountFile(t *testing.T) {
	m := NewPDFMerger(0)
	path := filepath.Join(t.TempDir(), "corpo.pdf")
	require.NoError(t, os.WriteFile(path, minimalPDF(5), 0o644))

	n, err := m.PageCountFile(path)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	_, err = m.PageCountFile(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = m.PageCount([]byte("not a pdf"))
	assert.Error(t, err)
}
