// Package main - Entry point for the lakehouse cost estimation server
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"lakehouse-cost/api"
	"lakehouse-cost/core/ratecard"
	"lakehouse-cost/core/session"
	"lakehouse-cost/internal/config"
	"lakehouse-cost/internal/logging"
)

const version = "1.0.0"

func main() {
	cfgPath := flag.String("config", "", "Config file (.json or .yaml)")
	addr := flag.String("addr", "", "Server address (overrides config)")
	ratesDir := flag.String("rates", "", "Rate card directory (overrides config)")
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	} else {
		cfg.ApplyEnv()
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *ratesDir != "" {
		cfg.Pricing.RatesDir = *ratesDir
	}

	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
	defer logging.Sync()

	// Rate cards are required; the server does not start without them.
	cat, err := ratecard.LoadCatalog(cfg.Pricing)
	if err != nil {
		logging.Error("rate cards failed to load", zap.Error(err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := session.NewStore(cat, cfg.Workload, cfg.Server.MaxSessions)
	server := api.NewServer(version, cat, store)

	fmt.Printf("Lakehouse Cost Estimation Server v%s\n", version)
	fmt.Printf("   API: http://localhost%s/v1\n", cfg.Server.Addr)
	fmt.Println()

	if err := server.ListenAndServe(ctx, cfg.Server.Addr); err != nil {
		logging.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}
