package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lspr-report/lspr/pkg/lspr"
)

var (
	listAll    bool
	jsonOutput bool
	strict     bool
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List the template variants whose cover and body both exist",
	Args:  cobra.NoArgs,
	RunE:  runTemplates,
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check directories, converter and report bodies",
	Args:  cobra.NoArgs,
	RunE:  runHealth,
}

func init() {
	templatesCmd.Flags().BoolVarP(&listAll, "all", "a", false, "List every variant with its status")
	templatesCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print JSON")
	healthCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print JSON")
	healthCmd.Flags().BoolVar(&strict, "strict", false, "Fail unless every check passes")
}

type templateList struct {
	Templates []lspr.Template `json:"templates"`
	Total     int             `json:"total"`
}

func runTemplates(cmd *cobra.Command, args []string) error {
	engine, err := newEngine()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	available := engine.AvailableTemplates()

	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(templateList{Templates: available, Total: len(available)})
	}

	if !listAll {
		for _, t := range available {
			fmt.Fprintln(out, t.Variant)
		}
		fmt.Fprintf(out, "%d templates available\n", len(available))
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VARIANT\tCOVER\tBODY")
	for _, v := range lspr.Variants() {
		t := engine.Config().TemplateFor(v)
		fmt.Fprintf(tw, "%s\t%s\t%s\n", v, presence(isFile(t.CoverPath)), presence(isFile(t.BodyPath)))
	}
	return tw.Flush()
}

func runHealth(cmd *cobra.Command, args []string) error {
	engine, err := newEngine()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	report := engine.Health(ctx)
	out := cmd.OutOrStdout()

	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, c := range report.Checks {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Name, checkStatus(c.OK), c.Detail)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(out, "status: %s\n", report.Status)
	}

	if strict && report.Status != lspr.StatusOK {
		return fmt.Errorf("health status %s", report.Status)
	}
	return nil
}

func presence(ok bool) string {
	if ok {
		return "present"
	}
	return "missing"
}

func checkStatus(ok bool) string {
	if ok {
		return "ok"
	}
	return "FAIL"
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
