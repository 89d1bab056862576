// Package cmd - job command
package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fencecost/adapters/jobfile"
	"fencecost/core/output"
	"fencecost/internal/config"
	"fencecost/internal/errors"
	"fencecost/internal/logging"
)

var (
	jobVars []string
	jobSave bool
)

// jobCmd prices an HCL job file
var jobCmd = &cobra.Command{
	Use:   "job <file.hcl>",
	Short: "Price a job described in an HCL file",
	Long: `Price a job file holding customer details, labor, margin, an optional
fence block and explicit items. Fence materials come first in the quote.

Job files can reference variables passed with --var as var.<name>.

Examples:
  fencecost job samples/job.hcl
  fencecost job backyard.hcl --var length=140 -f pdf -o backyard.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runJob,
}

func init() {
	jobCmd.Flags().StringArrayVar(&jobVars, "var", nil, "job variable as NAME=VALUE (repeatable)")
	jobCmd.Flags().BoolVar(&jobSave, "save", false, "store the quote in the configured quote store")
	rootCmd.AddCommand(jobCmd)
}

func runJob(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	vars, err := parseVars(jobVars)
	if err != nil {
		return err
	}

	job, err := jobfile.Load(args[0], jobfile.Vars(vars))
	if err != nil {
		return err
	}
	logging.Logger.Debug("job loaded",
		zap.String("path", args[0]),
		zap.Bool("fence", job.Fence != nil),
		zap.Int("items", len(job.Items)))

	a, err := loadApp(ctx)
	if err != nil {
		return err
	}

	lines, err := job.LineItems(a.Engine.Catalog(), config.Get().Estimate.Ratios)
	if err != nil {
		return err
	}
	breakdown, err := a.Engine.Estimate(lines, job.Labor, job.MarginPct)
	if err != nil {
		return err
	}

	q := output.NewQuote(breakdown)
	q.Customer = job.Customer
	q.Project = job.Project
	q.Currency = job.Currency

	if jobSave {
		if err := saveQuote(ctx, q); err != nil {
			return err
		}
	}
	return writeQuote(cmd, q)
}

func parseVars(values []string) (map[string]string, error) {
	vars := make(map[string]string, len(values))
	for _, v := range values {
		name, value, ok := strings.Cut(v, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, errors.Validation("var", "--var %q must be NAME=VALUE", v)
		}
		vars[name] = value
	}
	return vars, nil
}
