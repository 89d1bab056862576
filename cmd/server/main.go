// Package main - Entry point for the fencecost estimate server
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"fencecost/api"
	"fencecost/internal/app"
	"fencecost/internal/config"
	"fencecost/internal/logging"
)

const version = "1.0.0"

func main() {
	configPath := flag.String("config", "", "Config file (JSON)")
	addr := flag.String("addr", "", "Server address (default from config)")
	pricebook := flag.String("pricebook", "", "Pricebook file")
	flag.Parse()

	if err := run(*configPath, *addr, *pricebook); err != nil {
		fmt.Fprintf(os.Stderr, "fencecost-server: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, addr, pricebook string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if pricebook != "" {
		cfg.Pricebook.Path = pricebook
	}

	if err := logging.Initialize(cfg.Logging); err != nil {
		return err
	}
	defer logging.Sync()
	logger := logging.Logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	store, err := app.OpenStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	server := api.NewServer(api.Options{
		Version:           version,
		Engine:            a.Engine,
		Store:             store,
		Currency:          cfg.Estimate.Currency,
		DefaultPostsPerFt: cfg.Estimate.DefaultPostsPerFt,
		RequestTimeout:    cfg.Server.RequestTimeout(),
		Logger:            logger.Named("api"),
	})

	logger.Info("fencecost server starting",
		zap.String("version", version),
		zap.String("pricebook", a.Source),
		zap.String("store", cfg.Storage.Backend))
	return server.ListenAndServe(ctx, cfg.Server.Addr, cfg.Server.ReadTimeout(), cfg.Server.WriteTimeout())
}
