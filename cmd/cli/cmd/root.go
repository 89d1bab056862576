// Package cmd provides the CLI commands for fencecost.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fencecost/core/output"
	"fencecost/core/ui"
	"fencecost/internal/app"
	"fencecost/internal/config"
	"fencecost/internal/logging"
)

// Version is set at build time
var Version = "0.1.0"

var (
	cfgFile       string
	verbose       bool
	pricebookPath string
	outputFormat  string
	outputPath    string
	noColor       bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "fencecost",
	Short: "Price fence jobs from a pricebook",
	Long: `fencecost turns line items or fence dimensions into priced quotes.

Prices come from a CSV or XLSX pricebook, or a Postgres table. Quotes render
as text, JSON, Markdown, PDF or XLSX.

Examples:
  fencecost estimate --item POST-4X4-8=10 --labor-hours 4 --labor-rate 55
  fencecost fence --length 120 --gates 1 --margin 15 --format pdf -o quote.pdf
  fencecost job samples/job.hcl --var length=150
  fencecost serve`,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
}

// Execute runs the CLI until it finishes or the process is interrupted
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (JSON)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&pricebookPath, "pricebook", "", "pricebook file (overrides PRICEBOOK_PATH)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "", "output format (text, json, markdown, pdf, xlsx)")
	rootCmd.PersistentFlags().StringVarP(&outputPath, "output", "o", "", "write output to file instead of stdout")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(versionCmd)
}

func initConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if pricebookPath != "" {
		cfg.Pricebook.Path = pricebookPath
	}
	if outputFormat != "" {
		cfg.Output.DefaultFormat = outputFormat
	}
	config.Set(cfg)

	// Initialize logging
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
	return nil
}

// loadApp builds the engine from the active configuration
func loadApp(ctx context.Context) (*app.App, error) {
	return app.New(ctx, config.Get(), logging.Logger)
}

// writeQuote renders q in the selected format to --output or stdout
func writeQuote(cmd *cobra.Command, q *output.Quote) error {
	f, err := output.DefaultRegistry().Get(output.Format(config.Get().Output.DefaultFormat))
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if outputPath != "" {
		file, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", outputPath, err)
		}
		defer file.Close()
		w = file
	}

	if err := f.Render(w, q); err != nil {
		return err
	}
	if outputPath != "" {
		logging.Logger.Info("quote written", zap.String("path", outputPath), zap.String("format", string(f.Format())))
	}
	return nil
}

// newUI returns a terminal writer on the command's output
func newUI(cmd *cobra.Command) *ui.Writer {
	return ui.NewWriter(cmd.OutOrStdout(), noColor)
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "fencecost version %s\n", Version)
	},
}
