package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lspr-report/lspr/pkg/lspr"
)

var (
	batchOutputDir  string
	batchConcurrent int
)

var batchCmd = &cobra.Command{
	Use:   "batch <requests.yaml>",
	Short: "Generate a report for every request in a file",
	Long: `Generate a report for every request of a YAML or JSON list. Reports are
rendered concurrently and written to --output-dir. A failed request does
not stop the others; the command fails if any request failed.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&batchOutputDir, "output-dir", "o", ".", "Directory for the generated reports")
	batchCmd.Flags().IntVarP(&batchConcurrent, "concurrency", "j", 0, "Reports rendered at once (default from config)")
}

func readBatch(path string) ([]*lspr.ReportRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read batch: %w", err)
	}
	var reqs []*lspr.ReportRequest
	if err := yaml.Unmarshal(data, &reqs); err != nil {
		return nil, fmt.Errorf("parse batch %s: %w", path, err)
	}
	if len(reqs) == 0 {
		return nil, fmt.Errorf("batch %s has no requests", path)
	}
	return reqs, nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	reqs, err := readBatch(args[0])
	if err != nil {
		return err
	}
	if batchConcurrent > 0 {
		cfg.Concurrency = batchConcurrent
	}
	engine, err := newEngine()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(batchOutputDir, 0o755); err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	results, batchErr := engine.GenerateBatch(ctx, reqs)

	out := cmd.OutOrStdout()
	written := 0
	for i, res := range results {
		if res == nil {
			fmt.Fprintf(out, "[%d] failed\n", i)
			continue
		}
		// the same participant may appear twice in a batch
		name := res.FileName
		if _, err := os.Stat(filepath.Join(batchOutputDir, name)); err == nil {
			name = fmt.Sprintf("%s_%d.pdf", name[:len(name)-len(".pdf")], i)
		}
		path := filepath.Join(batchOutputDir, name)
		if err := os.WriteFile(path, res.PDF, 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		written++
		fmt.Fprintf(out, "[%d] %s\n", i, path)
	}
	fmt.Fprintf(out, "%d of %d reports generated\n", written, len(reqs))
	return batchErr
}
