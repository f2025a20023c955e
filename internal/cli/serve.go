package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/depaym-network/depaym/internal/api"
	"github.com/depaym-network/depaym/internal/app/mining"
	"github.com/depaym-network/depaym/internal/app/rewards"
	"github.com/depaym-network/depaym/internal/daemon"
	"github.com/depaym-network/depaym/internal/infra/exchange"
	"github.com/depaym-network/depaym/internal/infra/sqlite"
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen", "", "listen address, overrides [api] host/port")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the reward engine server",
	Long: `Start the DePaym HTTP server. Opens the sqlite store, runs the
expired-session sweeper, and serves the mining API until interrupted.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := daemon.LoadConfig(configPath)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(cfg.Store.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := sqlite.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	miningSvc := mining.NewService(db, mining.DefaultRates())
	defer miningSvc.Close()
	rewardsSvc := rewards.NewService(db)

	server := api.NewServer(miningSvc, rewardsSvc, db)
	if cfg.API.Metrics {
		server.EnableMetrics()
	}
	if cfg.Exchange.APIKey != "" {
		server.SetRateSource(exchange.NewClient(
			cfg.Exchange.APIKey, db,
			exchange.WithTTL(cfg.Exchange.CacheTTL()),
		))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweeper := daemon.NewSweeper(miningSvc, cfg.Sweep.SweepInterval())
	go sweeper.Run(ctx)

	addr := cfg.API.Addr()
	if flagAddr, _ := cmd.Flags().GetString("listen"); flagAddr != "" {
		addr = flagAddr
	}
	httpServer := &http.Server{
		Addr:    addr,
		Handler: server.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("depaym: listening on %s (store %s)", addr, cfg.Store.Path)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("depaym: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
