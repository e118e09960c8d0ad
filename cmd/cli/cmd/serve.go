// Package cmd - serve command
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"lakehouse-cost/api"
	"lakehouse-cost/core/ratecard"
	"lakehouse-cost/core/session"
	"lakehouse-cost/internal/config"
)

var (
	serveAddr        string
	serveMaxSessions int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Load the rate cards and serve the session API until interrupted.
The server refuses to start if any rate card fails to load.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().IntVar(&serveMaxSessions, "max-sessions", -1, "session limit, 0 for unbounded (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	if serveMaxSessions >= 0 {
		cfg.Server.MaxSessions = serveMaxSessions
	}
	return Serve(cfg, Version)
}

// Serve loads the catalog and runs the API until SIGINT or SIGTERM
func Serve(cfg *config.Config, version string) error {
	cat, err := ratecard.LoadCatalog(cfg.Pricing)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := session.NewStore(cat, cfg.Workload, cfg.Server.MaxSessions)
	return api.NewServer(version, cat, store).ListenAndServe(ctx, cfg.Server.Addr)
}
