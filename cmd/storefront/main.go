// Command storefront serves the stand-in demo storefront so the browser
// suite (or a person) can point at it:
//
//	go run ./cmd/storefront --addr :8080
//	E2E_BASE_URL=http://localhost:8080 go test ./tests/browser/...
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kuitang/storefront-e2e/internal/config"
	"github.com/kuitang/storefront-e2e/internal/obs"
	"github.com/kuitang/storefront-e2e/internal/storefront"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "storefront: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	addr := config.ParseFlags()
	cfg, err := config.LoadConfig(addr)
	if err != nil {
		return err
	}
	obs.Init()
	cfg.PrintStartupSummary(os.Stdout)

	srv, err := storefront.New(storefront.Options{GlitchDelay: cfg.GlitchDelay})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		obs.Pkg("main").Info("listening", "addr", cfg.ListenAddr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	obs.Pkg("main").Info("shutting_down")
	return httpServer.Shutdown(shutdownCtx)
}
