// Package cmd - saved quote commands
package cmd

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"fencecost/adapters/storage"
	"fencecost/core/types"
	"fencecost/internal/app"
	"fencecost/internal/config"
)

var (
	quotesCustomer string
	quotesProject  string
	quotesLimit    int
	quotesSince    string
	quotesUntil    string
)

var quotesCmd = &cobra.Command{
	Use:   "quotes",
	Short: "Work with saved quotes",
	Long: `List, show and compare quotes saved with --save.

Quotes persist only with the file or sqlite storage backend.`,
}

var quotesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved quotes, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		since, err := storage.ParseTime(quotesSince, "since")
		if err != nil {
			return err
		}
		until, err := storage.ParseTime(quotesUntil, "until")
		if err != nil {
			return err
		}

		return withStore(cmd.Context(), func(ctx context.Context, s storage.Store) error {
			quotes, err := s.List(ctx, &storage.ListFilter{
				Customer: quotesCustomer,
				Project:  quotesProject,
				Since:    since,
				Until:    until,
				Limit:    quotesLimit,
			})
			if err != nil {
				return err
			}

			w := newUI(cmd)
			if len(quotes) == 0 {
				w.Warning("no saved quotes")
				return nil
			}
			table := w.NewTable("ID", "CREATED", "KIND", "CUSTOMER", "PROJECT", "TOTAL").AlignRight(5)
			for _, q := range quotes {
				table.AddRow(q.ID, q.CreatedAt.Local().Format("2006-01-02 15:04"), string(q.Kind), q.Customer, q.Project,
					money(q.Total))
			}
			table.Render()
			return nil
		})
	},
}

var quotesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Render a saved quote",
	Long: `Render a saved quote. With --project instead of an ID, render the newest
quote for that project.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(ctx context.Context, s storage.Store) error {
			var (
				stored *storage.StoredQuote
				err    error
			)
			switch {
			case len(args) == 1:
				stored, err = s.Get(ctx, args[0])
			case quotesProject != "":
				stored, err = storage.Latest(ctx, s, quotesProject)
			default:
				return fmt.Errorf("quote ID or --project is required")
			}
			if err != nil {
				return err
			}
			return writeQuote(cmd, stored.Quote)
		})
	},
}

var quotesCompareCmd = &cobra.Command{
	Use:   "compare <old-id> <new-id>",
	Short: "Show how the total moved between two saved quotes",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(ctx context.Context, s storage.Store) error {
			result, err := storage.Compare(ctx, s, args[0], args[1])
			if err != nil {
				return err
			}
			view := newUI(cmd).NewTotalChange()
			view.OldTotal = money(result.OldTotal)
			view.NewTotal = money(result.NewTotal)
			view.Change = money(result.Delta)
			view.Percent = result.DeltaPercent.StringFixed(types.MoneyPlaces)
			view.Sign = result.Delta.Sign()
			view.Render()
			return nil
		})
	},
}

var quotesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved quote",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(ctx context.Context, s storage.Store) error {
			if err := s.Delete(ctx, args[0]); err != nil {
				return err
			}
			newUI(cmd).Success("deleted %s", args[0])
			return nil
		})
	},
}

func init() {
	quotesListCmd.Flags().StringVar(&quotesCustomer, "customer", "", "filter by customer")
	quotesListCmd.Flags().StringVar(&quotesProject, "project", "", "filter by project")
	quotesListCmd.Flags().StringVar(&quotesSince, "since", "", "only quotes created at or after this time (RFC 3339 or YYYY-MM-DD)")
	quotesListCmd.Flags().StringVar(&quotesUntil, "until", "", "only quotes created at or before this time (RFC 3339 or YYYY-MM-DD)")
	quotesListCmd.Flags().IntVar(&quotesLimit, "limit", 20, "maximum quotes to list (0 for all)")
	quotesShowCmd.Flags().StringVar(&quotesProject, "project", "", "show the newest quote for project")

	rootCmd.AddCommand(quotesCmd)
	quotesCmd.AddCommand(quotesListCmd)
	quotesCmd.AddCommand(quotesShowCmd)
	quotesCmd.AddCommand(quotesCompareCmd)
	quotesCmd.AddCommand(quotesDeleteCmd)
}

func money(d decimal.Decimal) string {
	return types.RoundMoney(d).StringFixed(types.MoneyPlaces)
}

func withStore(ctx context.Context, fn func(context.Context, storage.Store) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := app.OpenStore(config.Get())
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(ctx, s)
}
