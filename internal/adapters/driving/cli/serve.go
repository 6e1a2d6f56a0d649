package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/sercha-scan/internal/adapters/driving/api"
	"github.com/custodia-labs/sercha-scan/internal/core/domain"
	"github.com/custodia-labs/sercha-scan/internal/logger"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP search API",
	Long: `Starts the HTTP API in front of the configured search backend.

Routes:
  GET  /health   backend health and available resources
  POST /search   {criteria, limit, offset} -> {results, total, partial}
  GET  /sources  searchable sources (requires the server secret)
  GET  /filters  searchable field labels

Background tasks run alongside: catalog refresh for the stream backend,
database sync and directory watching for the index backend.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := requireBackend(ctx); err != nil {
		return err
	}
	cfg := currentSettings()

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	server, err := api.NewServer(api.Config{
		Addr:          addr,
		Secret:        cfg.Server.Secret,
		AllowedOrigin: cfg.Server.AllowedOrigin,
		RateLimit:     cfg.Server.RateLimit,
		RateBurst:     cfg.Server.RateBurst,
	}, api.Ports{
		Search:    searchService,
		Inventory: inventoryService,
	})
	if err != nil {
		return err
	}

	if err := requireScheduler(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(gctx)
	})
	g.Go(func() error {
		if err := scheduler.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("Scheduler stopped: %v", err)
		}
		return nil
	})
	if indexStore != nil && cfg.Search.Backend == domain.SearchBackendIndex && cfg.Index.Watch {
		g.Go(func() error {
			if err := indexStore.Watch(gctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("Index watcher stopped: %v", err)
			}
			return nil
		})
	}

	cmd.Printf("sercha-scan %s serving %s backend on %s\n", version, cfg.Search.Backend, addr)

	err = g.Wait()
	_ = scheduler.Stop()
	if err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}
