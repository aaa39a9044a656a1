package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ewilliams-labs/segue/internal/adapters/ollama"
	"github.com/ewilliams-labs/segue/internal/adapters/rest"
	"github.com/ewilliams-labs/segue/internal/adapters/spotify"
	"github.com/ewilliams-labs/segue/internal/config"
	"github.com/ewilliams-labs/segue/internal/core/services"
	"github.com/ewilliams-labs/segue/internal/logging"
	"github.com/ewilliams-labs/segue/internal/worker"
)

func main() {
	// 1. Configuration. Missing credentials fail here rather than on the
	// first request.
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("invalid configuration")
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	// 2. Driven adapters
	httpClient := &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 20,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 5 * time.Second,
		},
	}

	creds := spotify.NewCredentials(httpClient, spotify.CredentialsConfig{
		ClientID:     cfg.Spotify.ClientID,
		ClientSecret: cfg.Spotify.ClientSecret,
		TokenURL:     cfg.Spotify.TokenURL,
		Retries:      cfg.Spotify.TokenRetries,
		Backoff:      cfg.Spotify.RetryBackoff,
	})
	catalog := spotify.NewClient(httpClient, spotify.Options{
		BaseURL:           cfg.Spotify.BaseURL,
		CallTimeout:       cfg.Spotify.CallTimeout,
		MaxRetries:        cfg.Spotify.MaxRetries,
		RetryBackoff:      cfg.Spotify.RetryBackoff,
		RequestsPerSecond: cfg.Spotify.RequestsPerSecond,
		Burst:             cfg.Spotify.Burst,
	})

	pool := worker.NewPool(catalog, cfg.Recommend.FeatureQueue)
	pool.Start(cfg.Recommend.FeatureWorkers)
	defer pool.Stop()

	var caps services.Capabilities
	if cfg.Ollama.Enabled {
		llm := ollama.NewClient(ollama.Config{
			BaseURL:        cfg.Ollama.Host,
			Model:          cfg.Ollama.Model,
			SentimentModel: cfg.Ollama.SentimentModel,
			Timeout:        cfg.Ollama.Timeout,
		})
		caps = services.Capabilities{Generator: llm, Sentiment: llm}
	}

	// 3. Core
	svc := services.NewRecommender(catalog, creds, pool, caps, services.Options{
		Market:               cfg.Spotify.Market,
		RequestTimeout:       cfg.Recommend.RequestTimeout,
		AIBudget:             cfg.Recommend.AIBudget,
		BaselineBudget:       cfg.Recommend.BaselineBudget,
		ExplainConcurrency:   cfg.Recommend.ExplainConcurrency,
		SentimentConcurrency: cfg.Recommend.SentimentConcurrency,
	})

	// 4. Driving adapter
	handler := rest.NewHandler(svc, rest.Options{
		CORSOrigins:       cfg.Server.CORSOrigins,
		RateLimitRequests: cfg.Server.RateLimitRequests,
		RateLimitWindow:   cfg.Server.RateLimitWindow,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}

	logging.Info().
		Str("addr", cfg.Server.Addr).
		Bool("generator", cfg.Ollama.Enabled).
		Str("market", cfg.Spotify.Market).
		Msg("segue api listening")

	serverErr := make(chan error, 1)
	go func() {
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serverErr:
		if err != nil {
			logging.Error().Err(err).Msg("server failed")
			pool.Stop()
			os.Exit(1)
		}
	case <-ctx.Done():
		logging.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Error().Err(err).Msg("shutdown error")
		}
	}
}
