package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/moasaja/moasaja/proxy"
)

var proxyPort int

var proxyCmd = &cobra.Command{
	Use:   "proxy",
	Short: "Run a local CORS proxy in front of the backend",
	Long: `Run a local CORS proxy for frontend development. Requests are forwarded to
the backend with the Origin header the backend accepts, and every response
allows any origin.`,
	Args:              cobra.NoArgs,
	PersistentPreRunE: initializeConfig,
	RunE:              runProxy,
}

func init() {
	proxyCmd.Flags().IntVar(&proxyPort, "port", proxy.DefaultPort, "port to listen on")
	rootCmd.AddCommand(proxyCmd)
}

func runProxy(cmd *cobra.Command, args []string) error {
	port := cfg.Proxy.Port
	if cmd.Flags().Changed("port") {
		port = proxyPort
	}

	handler, err := proxy.New(cfg.Proxy.Backend, cfg.Proxy.Origin, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	fmt.Printf("CORS proxy listening on http://localhost:%d\n", port)
	fmt.Printf("Forwarding to %s\n", cfg.Proxy.Backend)
	fmt.Printf("\nPoint the client at it with:\n  moasaja endpoint set http://localhost:%d\n", port)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("proxy server failed: %w", err)
		}
		return nil
	case <-cmd.Context().Done():
		logger.Info().Msg("Shutting down proxy")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
