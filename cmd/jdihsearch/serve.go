package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/jdih-search/internal/domain"
	chiTransport "github.com/kailas-cloud/jdih-search/internal/transport/chi"
	healthuc "github.com/kailas-cloud/jdih-search/internal/usecase/health"
	"github.com/kailas-cloud/jdih-search/internal/version"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Build the search index and serve POST /process",
	Long: `Loads the corpus, encodes every document, then serves:

  POST /process   {"search": "..."} -> {"results": [ids...]}
  GET  /health
  GET  /metrics

Send SIGHUP to rebuild the index from the database without downtime.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger.Info("Starting jdih-search API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.String("addr", cfg.HTTP.Addr()),
	)

	a, err := newApp(&cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.store.WaitForReady(ctx, time.Duration(cfg.Database.QueryTimeoutSec)*time.Second); err != nil {
		return configError(err)
	}
	if err := a.checkEncoder(ctx, time.Duration(cfg.Embedding.TimeoutMs)*time.Millisecond); err != nil {
		return err
	}
	if err := a.buildAndPublish(ctx, logger); err != nil {
		return err
	}

	healthSvc := healthuc.New(a.search, a.store, embeddingHealthChecker{a.queryEmbedder})
	server := chiTransport.NewServer(a.search, healthSvc, logger)
	handler := chiTransport.NewRouter(server, logger, chiTransport.RouterOptions{
		RateLimitRPS:   cfg.HTTP.RateLimitRPS,
		RateLimitBurst: cfg.HTTP.RateLimitBurst,
	})

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr(),
		Handler:           handler,
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	reload := make(chan os.Signal, 1)
	signal.Notify(reload, syscall.SIGHUP)
	defer signal.Stop(quit)
	defer signal.Stop(reload)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	reloadCtx, cancelReload := context.WithCancel(ctx)
	defer cancelReload()
	go reloadLoop(reloadCtx, a, reload)

	select {
	case <-quit:
		logger.Info("Received shutdown signal")
	case err := <-serveErr:
		logger.Error("HTTP server error", zap.Error(err))
		return err
	}

	cancelReload()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}

// reloadLoop rebuilds the index on every SIGHUP. A failed rebuild keeps the old index.
func reloadLoop(ctx context.Context, a *app, reload <-chan os.Signal) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-reload:
			logger.Info("Reloading search index")
			if err := a.buildAndPublish(ctx, logger); err != nil {
				logger.Error("Index reload failed, keeping previous index", zap.Error(err))
			}
		}
	}
}

// embeddingHealthChecker adapts domain.Embedder to health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func (h embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}
