package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clockfix/config"
	"clockfix/internal/log"
	"clockfix/resolve"
	"clockfix/web"

	"github.com/spf13/cobra"
)

var (
	servePort   int
	serveHost   string
	serveDBPath string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local JSON API for reviewing and resolving conflicts",
	Long: `Start a local HTTP server exposing conflict groups and the per-group resolution
flow (menu, delete preview, split preview, confirm, cancel) as JSON endpoints.

The server has no authentication of its own and binds to localhost by default.`,
	Example: `
  # Start local server on default port
  clockfix serve

  # Start with explicit db and custom port
  clockfix serve --port 9090 --db ./clockfix.db
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		store, err := openJournal(cfg, serveDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		client, err := newAPIClient(cfg, "clockfix-serve/1.0")
		if err != nil {
			return err
		}

		logger := log.WithComponent("serve")
		addr := fmt.Sprintf("%s:%d", serveHost, servePort)
		server := &http.Server{
			Addr:              addr,
			Handler:           web.NewServer(client, resolve.NewService(client, store), store, cfg.API.Timeout),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.ListenAndServe()
		}()

		fmt.Printf("Listening on http://%s\n", addr)
		logger.Info().Str("addr", addr).Str("api", cfg.API.URL).Msg("server started")

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-sigCh:
			logger.Info().Msg("shutting down")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				return fmt.Errorf("shutdown server: %w", err)
			}
			err := <-errCh
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVar(&servePort, "port", 8080, "HTTP port for the local web server")
	serveCmd.Flags().StringVar(&serveHost, "host", "localhost", "Interface to bind")
	serveCmd.Flags().StringVar(&serveDBPath, "db", "", "Path to local SQLite database (default: storage.db from config)")
}
