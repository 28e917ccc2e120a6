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

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/vectorflow/internal/config"
	"github.com/Aman-CERP/vectorflow/internal/embed"
	"github.com/Aman-CERP/vectorflow/internal/httpapi"
	"github.com/Aman-CERP/vectorflow/internal/logging"
	"github.com/Aman-CERP/vectorflow/internal/vecdb"
)

// shutdownTimeout bounds how long the server waits for in-flight requests
// to finish once a shutdown signal arrives.
const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the vectorflowd HTTP server",
		Long: `Start the HTTP server exposing libraries, documents, chunks, and
search over REST. Configuration is read from the environment; see
internal/config for the full list of variables.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), offline)
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "use the deterministic static embedder instead of Cohere")

	return cmd
}

func runServe(ctx context.Context, offline bool) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.SetupDefault(os.Stdout, cfg.LogLevel)

	provider := embed.ProviderCohere
	if offline {
		provider = embed.ProviderStatic
	}
	embedder, err := embed.NewEmbedder(embed.Config{
		Provider:   provider,
		APIKey:     cfg.Cohere.APIKey,
		Model:      cfg.Cohere.Model,
		Timeout:    cfg.Cohere.Timeout,
		MaxRetries: cfg.Cohere.MaxRetries,
		CacheSize:  cfg.Embed.CacheSize,
	})
	if err != nil {
		return fmt.Errorf("build embedder: %w", err)
	}

	store := vecdb.NewStore()
	server := httpapi.New(store, embedder, logger, cfg.Index)

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: server,
	}

	logger.Info("starting vectorflowd", "addr", cfg.Addr, "embed_provider", string(provider))

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
	case <-quit:
		logger.Info("shutdown signal received")
	case <-ctx.Done():
		logger.Info("context cancelled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed, forcing close", "error", err)
		if closeErr := httpServer.Close(); closeErr != nil {
			return fmt.Errorf("forced close failed: %w", closeErr)
		}
	}

	logger.Info("vectorflowd stopped")
	return nil
}
