package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/bllackjack/walletdash/server"
	"github.com/bllackjack/walletdash/wallet"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard JSON API",
	Long: `Start the dashboard JSON API a browser front end binds to.

The server binds to the chain active when it starts. Account lock/unlock
is picked up live; switching chains requires a restart.

Examples:
  walletdash serve
  walletdash serve --addr :9090 --origins https://dash.example.com`,
	RunE: runServe,
}

func init() {
	cfg := server.DefaultConfig()
	serveCmd.Flags().String("addr", cfg.Address, "listen address")
	serveCmd.Flags().StringSlice("origins", cfg.AllowedOrigins, "allowed CORS origins")
	serveCmd.Flags().Int("rate", cfg.RatePerMinute, "per-IP request limit per minute")
	serveCmd.Flags().Bool("metrics", cfg.EnableMetrics, "expose Prometheus metrics on /metrics")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Str("component", "serve").Logger()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := openCore(ctx)
	if err != nil {
		return err
	}
	defer c.close()

	cfg := server.DefaultConfig()
	cfg.Address, _ = cmd.Flags().GetString("addr")
	cfg.AllowedOrigins, _ = cmd.Flags().GetStringSlice("origins")
	cfg.RatePerMinute, _ = cmd.Flags().GetInt("rate")
	cfg.EnableMetrics, _ = cmd.Flags().GetBool("metrics")

	srv := server.New(cfg, c.manager, c.reg, c.catalogSvc, c.balances, c.dispatcher)

	boundChain := c.manager.ChainID()
	c.manager.Subscribe(func(ev wallet.Event) {
		c.balances.SetContext(ev.Account.Address, ev.ChainID)
		srv.DropCatalog(ev.ChainID)
		if ev.ChainID != boundChain {
			log.Warn().
				Uint64("bound", boundChain).
				Uint64("active", ev.ChainID).
				Msg("chain switched; restart the server to rebind the chain client")
		}
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}

	return nil
}
