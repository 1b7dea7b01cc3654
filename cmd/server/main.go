// Command server starts the assistant chat gateway.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/syntrava/assistant-gateway/internal/adapter/ai"
	"github.com/syntrava/assistant-gateway/internal/adapter/ai/openrouter"
	"github.com/syntrava/assistant-gateway/internal/adapter/ai/tokencount"
	httpserver "github.com/syntrava/assistant-gateway/internal/adapter/httpserver"
	"github.com/syntrava/assistant-gateway/internal/adapter/observability"
	"github.com/syntrava/assistant-gateway/internal/app"
	"github.com/syntrava/assistant-gateway/internal/config"
	"github.com/syntrava/assistant-gateway/internal/i18n"
	"github.com/syntrava/assistant-gateway/internal/prompt"
	"github.com/syntrava/assistant-gateway/internal/service/ratelimiter"
	"github.com/syntrava/assistant-gateway/internal/usecase"
)

func main() {
	envFile := flag.String("env", ".env", "Path to .env file")
	flag.Parse()

	// A missing .env is fine; the process environment still applies.
	envErr := godotenv.Load(*envFile)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)
	if envErr != nil {
		slog.Debug("no .env file loaded", slog.String("path", *envFile), slog.Any("error", envErr))
	}

	observability.InitMetrics()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	catalog, err := prompt.Load()
	if err != nil {
		slog.Error("prompt catalog invalid", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("prompt catalog loaded", slog.Any("modes", catalog.Modes()))
	msgs, err := i18n.NewLocalizer(cfg.Language)
	if err != nil {
		slog.Error("message catalogs invalid", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("message catalogs loaded", slog.String("language", msgs.Lang()))
	if cfg.OpenRouterAPIKey == "" {
		slog.Warn("OPENROUTER_API_KEY is empty; every chat request will fail upstream")
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	limiter := ratelimiter.NewSlidingWindow(cfg.RateLimitMaxRequests, cfg.RateLimitWindow)
	go limiter.RunSweeper(ctx, cfg.RateLimitSweepInterval)

	chat := usecase.NewChatService(
		openrouter.New(cfg),
		catalog,
		ai.NewResponseCleaner(msgs.Get(i18n.MsgEmptyAnswer), cfg.SentenceTruncation),
		tokencount.DefaultCounter,
		usecase.HistoryPolicy{MaxTurns: cfg.HistoryMaxTurns, MaxChars: cfg.MaxContentChars},
		cfg.ChatModel,
	)

	srv := httpserver.NewServer(cfg, chat, msgs, limiter, app.BuildReadinessChecks(cfg)...)
	handler := app.BuildRouter(cfg, srv)

	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting",
			slog.Int("port", cfg.Port),
			slog.String("model", cfg.ChatModel),
			slog.String("cors_mode", cfg.CORSMode),
			slog.Bool("client_tag_enforced", cfg.ClientTagEnforced),
			slog.Int("rate_limit", cfg.RateLimitMaxRequests),
			slog.Duration("rate_window", cfg.RateLimitWindow))
		errCh <- srvHTTP.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.Any("error", err))
		}
	}

	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	if err := srvHTTP.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", slog.Any("error", err))
	}
}
