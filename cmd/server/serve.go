/*
serve.go - HTTP server startup

STARTUP SEQUENCE:
  1. Load configuration
  2. Initialize SQLite store and seed reference data
  3. Restore the last recorded quote and start the price refresher
  4. Configure HTTP router
  5. Start server with graceful shutdown

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the price refresher
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection
*/
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/warp/vesting-engine/api"
	"github.com/warp/vesting-engine/config"
	"github.com/warp/vesting-engine/price"
	"github.com/warp/vesting-engine/store/sqlite"
)

var (
	flagPort    int
	flagDBPath  string
	flagOffline bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	bindServeFlags(serveCmd)
	rootCmd.AddCommand(serveCmd)
}

func bindServeFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&flagPort, "port", "p", 8080, "HTTP server port")
	cmd.Flags().StringVar(&flagDBPath, "db", "vesting.db", `SQLite database path (":memory:" for in-memory)`)
	cmd.Flags().BoolVar(&flagOffline, "offline", false, "Never call the price API; use the fallback price")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	store, err := sqlite.New(cfg.Server.DBPath)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer store.Close()

	if cfg.Server.Seed {
		if err := api.Seed(context.Background(), store); err != nil {
			log.Printf("Warning: Failed to seed reference data: %v", err)
		}
	}

	tracker := newTracker(cfg, store)
	if err := tracker.Restore(context.Background()); err != nil {
		log.Printf("Warning: Failed to restore last quote: %v", err)
	}

	var refresher *api.PriceRefresher
	if !cfg.Price.Offline {
		refresher = api.NewPriceRefresher(tracker)
		refresher.Interval = cfg.Price.RefreshInterval
		refresher.Timeout = cfg.Price.Timeout
		refresher.Start()
	}

	handler := api.NewHandler(store, tracker)
	handler.DefaultGrowthRate = cfg.Calculator.DefaultGrowthRate
	router := api.NewRouter(handler, cfg.Server.CORSOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost:%d", cfg.Server.Port)
		log.Printf("API available at http://localhost:%d/api", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if refresher != nil {
		refresher.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// newTracker builds the spot price tracker from config. Offline mode has
// no source, so every calculation reports the fallback price.
func newTracker(cfg config.Config, store *sqlite.Store) *price.Tracker {
	var source price.Source
	if !cfg.Price.Offline {
		source = price.NewCoinGeckoSource(cfg.Price.APIURL, cfg.Price.Timeout)
	}
	opts := []price.TrackerOption{
		price.WithFallback(decimal.NewFromFloat(cfg.Price.FallbackUSD)),
		price.WithStaleAfter(cfg.Price.StaleAfter),
	}
	if store != nil {
		opts = append(opts, price.WithStore(store))
	}
	return price.NewTracker(source, opts...)
}
