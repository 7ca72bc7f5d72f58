package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"principia/internal/config"
	"principia/internal/llmclient"
	"principia/internal/server"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if os.Getenv("GEMINI_API_KEY") == "" {
		log.Fatal("GEMINI_API_KEY is not set")
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	// The one process-wide generative client, constructed up front and
	// injected; the stage timeout is enforced at the network-call boundary.
	gemini, err := llmclient.NewGeminiClient(ctx, cfg.Model, cfg.Temperature, cfg.MaxOutputTokens)
	if err != nil {
		logger.Fatal("create gemini client", zap.Error(err))
	}
	llm := llmclient.Wrap(gemini,
		llmclient.WithLogging(logger),
		llmclient.WithTimeout(cfg.StageTimeout),
	)
	defer func() { _ = llm.Close() }()

	srv, err := server.New(logger, cfg, llm)
	if err != nil {
		logger.Fatal("create server", zap.Error(err))
	}

	httpSrv := &http.Server{
		Addr:              cfg.Port,
		Handler:           h2c.NewHandler(srv.Handler(), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting API server", zap.String("port", cfg.Port), zap.String("model", cfg.Model))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "local" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
