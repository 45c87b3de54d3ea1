package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/lspr-report/lspr/pkg/lspr"
)

var (
	requestPath    string
	participant    string
	scores         map[string]int
	dominant       string
	leastDeveloped string
	variant        string
	outputPath     string
	coverOnly      bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one report",
	Long: `Generate one report from a request file (--request, JSON or YAML) or from
flags. The PDF is written to --output, or to relatorio_<name>.pdf in the
current directory. Use --output - to write it to stdout.`,
	Example: `  lspr generate --name "Maria da Silva" \
    --scores PESSOAS=42,ACAO=17,TEMPO=8,MENSAGEM=55 \
    --dominant MENSAGEM --least TEMPO
  lspr generate --request maria.yaml --output out/`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&requestPath, "request", "r", "", "Request file (JSON or YAML)")
	generateCmd.Flags().StringVarP(&participant, "name", "n", "", "Participant name")
	generateCmd.Flags().StringToIntVar(&scores, "scores", nil, "Scores per style, e.g. PESSOAS=42,ACAO=17,TEMPO=8,MENSAGEM=55")
	generateCmd.Flags().StringVar(&dominant, "dominant", "", "Dominant style (PESSOAS, ACAO, TEMPO, MENSAGEM)")
	generateCmd.Flags().StringVar(&leastDeveloped, "least", "", "Least developed style")
	generateCmd.Flags().StringVar(&variant, "variant", "", "Template variant (default: derived from the styles)")
	generateCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file or directory, - for stdout")
	generateCmd.Flags().BoolVar(&coverOnly, "cover-only", false, "Write the filled-in DOCX cover and skip conversion")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	req, err := buildRequest()
	if err != nil {
		return err
	}
	engine, err := newEngine()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if coverOnly {
		cover, err := engine.RenderCover(ctx, req)
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(lspr.OutputFileName(req.Participant), ".pdf") + ".docx"
		return writeOutput(cmd.OutOrStdout(), outputPath, name, cover.DOCX)
	}

	result, err := engine.Generate(ctx, req)
	if err != nil {
		return err
	}
	return writeOutput(cmd.OutOrStdout(), outputPath, result.FileName, result.PDF)
}

// buildRequest reads --request, then lets the other flags override it.
func buildRequest() (*lspr.ReportRequest, error) {
	req := &lspr.ReportRequest{}
	if requestPath != "" {
		data, err := os.ReadFile(requestPath)
		if err != nil {
			return nil, fmt.Errorf("read request: %w", err)
		}
		if err := yaml.Unmarshal(data, req); err != nil {
			return nil, fmt.Errorf("parse request %s: %w", requestPath, err)
		}
	}
	if participant != "" {
		req.Participant = participant
	}
	if len(scores) > 0 {
		req.Scores = scores
	}
	if dominant != "" {
		req.Dominant = dominant
	}
	if leastDeveloped != "" {
		req.LeastDeveloped = leastDeveloped
	}
	if variant != "" {
		req.Variant = variant
	}
	return req, nil
}

// writeOutput writes data to stdout for "-", into dir for an existing
// directory or a path ending in a separator, and to the named file
// otherwise.
func writeOutput(stdout io.Writer, target, name string, data []byte) error {
	if target == "-" {
		_, err := io.Copy(stdout, bytes.NewReader(data))
		return err
	}

	path := target
	switch {
	case target == "":
		path = name
	case strings.HasSuffix(target, string(os.PathSeparator)) || isDir(target):
		if err := os.MkdirAll(target, 0o755); err != nil {
			return err
		}
		path = filepath.Join(target, name)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	logger.Info("report written", zap.String("path", path), zap.Int("bytes", len(data)))
	fmt.Fprintln(stdout, path)
	return nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
