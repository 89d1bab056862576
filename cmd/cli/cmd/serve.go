// Package cmd - serve command
package cmd

import (
	"github.com/spf13/cobra"

	"fencecost/api"
	"fencecost/internal/app"
	"fencecost/internal/config"
	"fencecost/internal/logging"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the estimate HTTP API",
	Long: `Serve POST /estimate, /estimate_fence and /po plus the saved quote,
catalog, health and version endpoints.

Examples:
  fencecost serve
  fencecost serve --addr :9000 --pricebook prices.xlsx`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		if serveAddr != "" {
			cfg.Server.Addr = serveAddr
		}
		return Serve(cmd, cfg)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8000)")
	rootCmd.AddCommand(serveCmd)
}

// Serve builds the API from cfg and serves until the command context ends
func Serve(cmd *cobra.Command, cfg *config.Config) error {
	ctx := cmd.Context()

	a, err := app.New(ctx, cfg, logging.Logger)
	if err != nil {
		return err
	}
	store, err := app.OpenStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	server := api.NewServer(api.Options{
		Version:           Version,
		Engine:            a.Engine,
		Store:             store,
		Currency:          cfg.Estimate.Currency,
		DefaultPostsPerFt: cfg.Estimate.DefaultPostsPerFt,
		RequestTimeout:    cfg.Server.RequestTimeout(),
		Logger:            logging.Logger.Named("api"),
	})
	return server.ListenAndServe(ctx, cfg.Server.Addr, cfg.Server.ReadTimeout(), cfg.Server.WriteTimeout())
}
