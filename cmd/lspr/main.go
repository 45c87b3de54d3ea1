package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lspr-report/lspr/pkg/lspr"
)

// Set by the linker.
var (
	version = "dev"
	commit  = "none"
)

var (
	// Global flags
	verbose      bool
	configPath   string
	templatesDir string
	bodiesDir    string
	converterBin string

	// Global logger and configuration, set up in PersistentPreRunE
	logger *zap.Logger
	cfg    *lspr.Config
)

var rootCmd = &cobra.Command{
	Use:   "lspr",
	Short: "Generate LSP-R listening style reports",
	Long: `lspr fills a participant's name, scores and listening styles into
one of the LSP-R cover templates, converts the cover to PDF with a headless
LibreOffice and appends the matching report body.

Configuration is read from --config (YAML), then LSPR_* environment
variables, then command line flags.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = loadConfig(cmd)
		if err != nil {
			return err
		}

		logger, err = newLogger(cfg.LogLevel, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		lspr.SetLogger(logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// newLogger builds the process logger; --verbose forces debug level.
func newLogger(level string, verbose bool) (*zap.Logger, error) {
	if verbose {
		level = "debug"
	}
	return lspr.NewLogger(level)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "lspr %s (%s)\n", version, commit)
	},
}

// loadConfig layers the config file, the environment and the flags.
func loadConfig(cmd *cobra.Command) (*lspr.Config, error) {
	c := lspr.DefaultConfig()
	if configPath != "" {
		loaded, err := lspr.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		c = loaded
	}
	c.ApplyEnvironment()

	flags := cmd.Flags()
	if flags.Changed("templates") {
		c.TemplatesDir = templatesDir
	}
	if flags.Changed("bodies") {
		c.BodiesDir = bodiesDir
	}
	if flags.Changed("converter") {
		c.ConverterBinary = converterBin
	}
	return c, nil
}

func newEngine() (*lspr.Engine, error) {
	return lspr.New(cfg, lspr.WithLogger(logger))
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&templatesDir, "templates", "", "Directory of the DOCX cover templates")
	rootCmd.PersistentFlags().StringVar(&bodiesDir, "bodies", "", "Directory of the report body PDFs")
	rootCmd.PersistentFlags().StringVar(&converterBin, "converter", "", "Office suite binary used for DOCX to PDF")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(templatesCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
