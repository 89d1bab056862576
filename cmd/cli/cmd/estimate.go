// Package cmd - estimate, fence and po commands
package cmd

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fencecost/adapters/storage"
	"fencecost/api/envelope"
	"fencecost/core/output"
	"fencecost/core/types"
	"fencecost/internal/app"
	"fencecost/internal/config"
	"fencecost/internal/errors"
	"fencecost/internal/logging"
)

// quoteFlags are shared by every command that produces a quote
type quoteFlags struct {
	items      []string
	laborHours string
	laborRate  string
	margin     string
	customer   string
	project    string
	save       bool
}

func (f *quoteFlags) registerItems(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&f.items, "item", "i", nil, "line item as SKU=QTY (repeatable)")
}

func (f *quoteFlags) registerPricing(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.laborHours, "labor-hours", "0", "labor hours")
	cmd.Flags().StringVar(&f.laborRate, "labor-rate", "0", "labor rate per hour")
	cmd.Flags().StringVar(&f.margin, "margin", "0", "margin percent applied to the subtotal")
}

func (f *quoteFlags) registerQuote(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.customer, "customer", "", "customer name for the quote header")
	cmd.Flags().StringVar(&f.project, "project", "", "project name for the quote header")
	cmd.Flags().BoolVar(&f.save, "save", false, "store the quote in the configured quote store")
}

// raw converts the flags into unnormalized input
func (f *quoteFlags) raw(kind output.Kind) (envelope.RawInput, error) {
	raw := envelope.RawInput{Kind: kind, Customer: f.customer, Project: f.project}

	for _, item := range f.items {
		line, err := parseItem(item)
		if err != nil {
			return raw, err
		}
		raw.Lines = append(raw.Lines, line)
	}

	var err error
	if raw.LaborHours, err = decimalFlag("labor-hours", f.laborHours); err != nil {
		return raw, err
	}
	if raw.LaborRate, err = decimalFlag("labor-rate", f.laborRate); err != nil {
		return raw, err
	}
	if raw.MarginPct, err = decimalFlag("margin", f.margin); err != nil {
		return raw, err
	}
	return raw, nil
}

var (
	estimateFlags quoteFlags
	poFlags       quoteFlags
	fenceFlags    quoteFlags

	fenceLength     string
	fenceStyle      string
	fencePostsPerFt string
	fenceGates      int
)

// estimateCmd represents the estimate command
var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Price explicit line items",
	Long: `Price line items against the pricebook, add labor and margin, and render a quote.

Examples:
  fencecost estimate --item POST-4X4-8=10 --item RAIL-2X4-8=18
  fencecost estimate -i POST-4X4-8=10 --labor-hours 6 --labor-rate 55 --margin 20 -f markdown`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := estimateFlags.raw(output.KindEstimate)
		if err != nil {
			return err
		}
		return runQuote(cmd, raw, estimateFlags.save)
	},
}

// poCmd represents the po command
var poCmd = &cobra.Command{
	Use:   "po",
	Short: "Render a purchase order for line items",
	Long: `Price line items at materials cost only, with no labor or margin.

Examples:
  fencecost po --item POST-4X4-8=10 --item CONCRETE-50=10 -f pdf -o po.pdf`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := poFlags.raw(output.KindPurchaseOrder)
		if err != nil {
			return err
		}
		return runQuote(cmd, raw, poFlags.save)
	},
}

// fenceCmd represents the fence command
var fenceCmd = &cobra.Command{
	Use:   "fence",
	Short: "Size and price a fence from its length",
	Long: `Build a fence bill of materials (posts, rails, pickets, concrete, fasteners
and gates) from the pricebook categories, then price it.

Examples:
  fencecost fence --length 100
  fencecost fence --length 160 --style vinyl --gates 2 --labor-hours 24 --labor-rate 50 --margin 20`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := fenceFlags.raw(output.KindEstimate)
		if err != nil {
			return err
		}

		length, err := decimalFlag("length", fenceLength)
		if err != nil {
			return err
		}
		fence := &envelope.RawFence{LengthFt: length, Style: fenceStyle, Gates: fenceGates}
		if fencePostsPerFt != "" {
			ppf, err := decimalFlag("posts-per-ft", fencePostsPerFt)
			if err != nil {
				return err
			}
			fence.PostsPerFt = &ppf
		}
		raw.Fence = fence
		return runQuote(cmd, raw, fenceFlags.save)
	},
}

func init() {
	estimateFlags.registerItems(estimateCmd)
	estimateFlags.registerPricing(estimateCmd)
	estimateFlags.registerQuote(estimateCmd)

	poFlags.registerItems(poCmd)
	poFlags.registerQuote(poCmd)

	fenceFlags.registerPricing(fenceCmd)
	fenceFlags.registerQuote(fenceCmd)
	fenceCmd.Flags().StringVarP(&fenceLength, "length", "l", "", "fence length in feet [REQUIRED]")
	fenceCmd.Flags().StringVar(&fenceStyle, "style", types.DefaultStyle, "fence style")
	fenceCmd.Flags().StringVar(&fencePostsPerFt, "posts-per-ft", "", "posts per linear foot (default from config)")
	fenceCmd.Flags().IntVar(&fenceGates, "gates", 0, "number of gates")
	_ = fenceCmd.MarkFlagRequired("length")

	rootCmd.AddCommand(estimateCmd)
	rootCmd.AddCommand(poCmd)
	rootCmd.AddCommand(fenceCmd)
}

// runQuote normalizes raw, prices it and writes the quote
func runQuote(cmd *cobra.Command, raw envelope.RawInput, save bool) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := config.Get()

	env, err := envelope.NewNormalizer(cfg.Estimate.DefaultPostsPerFt).Normalize(raw)
	if err != nil {
		return err
	}

	a, err := loadApp(ctx)
	if err != nil {
		return err
	}

	var breakdown *types.EstimateBreakdown
	switch {
	case env.Kind == output.KindPurchaseOrder:
		breakdown, err = a.Engine.PurchaseOrder(env.Lines)
	case env.IsFence():
		breakdown, err = a.Engine.EstimateFence(*env.Fence, env.Labor, env.MarginPct)
	default:
		breakdown, err = a.Engine.Estimate(env.Lines, env.Labor, env.MarginPct)
	}
	if err != nil {
		return err
	}

	q := output.NewQuote(breakdown)
	q.Kind = env.Kind
	q.Customer = env.Customer
	q.Project = env.Project
	q.Currency = cfg.Estimate.Currency

	if save {
		if err := saveQuote(ctx, q); err != nil {
			return err
		}
	}
	return writeQuote(cmd, q)
}

func saveQuote(ctx context.Context, q *output.Quote) error {
	store, err := app.OpenStore(config.Get())
	if err != nil {
		return err
	}
	defer store.Close()

	if config.Get().Storage.Backend == "memory" {
		logging.Logger.Warn("memory quote store does not outlive this process; set storage.backend to file or sqlite")
	}

	stored := storage.NewStoredQuote(q)
	if err := store.Save(ctx, stored); err != nil {
		return err
	}
	logging.Logger.Info("quote saved", zap.String("id", stored.ID))
	return nil
}

// parseItem parses SKU=QTY
func parseItem(value string) (envelope.RawLine, error) {
	i := strings.LastIndex(value, "=")
	if i <= 0 {
		return envelope.RawLine{}, errors.Validation("item", "item %q must be SKU=QTY", value)
	}
	qty, err := decimal.NewFromString(strings.TrimSpace(value[i+1:]))
	if err != nil {
		return envelope.RawLine{}, errors.Validation("item", "item %q has an invalid quantity", value)
	}
	return envelope.RawLine{SKU: value[:i], Quantity: qty}, nil
}

func decimalFlag(name, value string) (decimal.Decimal, error) {
	if strings.TrimSpace(value) == "" {
		return decimal.Zero, nil
	}
	v, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, errors.Validation(name, "--%s must be a number, got %q", name, value)
	}
	return v, nil
}
