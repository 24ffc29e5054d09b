package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"PerpMirror/internal/feed"
	"PerpMirror/internal/observability"
	"PerpMirror/internal/orders"
)

// Config holds all application configuration, loaded from environment
// variables.
type Config struct {
	NATSURL        string
	ScanSubject    string
	UpdatesSubject string
	WSURL          string

	// Subscription selects "polling" or "push".
	Subscription    string
	PollInterval    time.Duration
	SkipInitialLoad bool

	MetricsAddr string
	StatusEvery time.Duration
}

func DefaultConfig() Config {
	return Config{
		NATSURL:         envOrDefault("MIRROR_NATS_URL", "nats://localhost:4222"),
		ScanSubject:     envOrDefault("MIRROR_SCAN_SUBJECT", feed.DefaultScanSubject),
		UpdatesSubject:  envOrDefault("MIRROR_UPDATES_SUBJECT", feed.DefaultUpdatesSubject),
		WSURL:           envOrDefault("MIRROR_WS_URL", ""),
		Subscription:    envOrDefault("MIRROR_SUBSCRIPTION", "polling"),
		PollInterval:    envDurationOrDefault("MIRROR_POLL_INTERVAL", 5*time.Second),
		SkipInitialLoad: envOrDefault("MIRROR_SKIP_INITIAL_LOAD", "") == "1",
		MetricsAddr:     envOrDefault("MIRROR_METRICS_ADDR", ":9091"),
		StatusEvery:     envDurationOrDefault("MIRROR_STATUS_EVERY", 30*time.Second),
	}
}

func main() {
	log := observability.NewLogger("perpmirror")
	cfg := DefaultConfig()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)

	nc, err := feed.ConnectNATS(cfg.NATSURL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("nats connect")
	}
	defer nc.Close()
	log.Info().Str("url", cfg.NATSURL).Msg("nats connected")

	source := feed.NewNATSSource(nc, cfg.ScanSubject, log)

	subCfg := orders.Config{PollInterval: cfg.PollInterval}
	switch cfg.Subscription {
	case "polling":
		subCfg.Kind = orders.SubscriptionPolling
	case "push":
		subCfg.Kind = orders.SubscriptionPush
		subCfg.SkipInitialLoad = cfg.SkipInitialLoad
		if cfg.WSURL != "" {
			subCfg.Feed = feed.NewWSFeed(cfg.WSURL, log)
		} else {
			subCfg.Feed = feed.NewNATSFeed(nc, cfg.UpdatesSubject, log)
		}
	default:
		log.Fatal().Str("subscription", cfg.Subscription).Msg("unknown subscription kind")
	}

	subscriber, err := orders.NewSubscriber(subCfg, source, feed.JSONDecoder{}, log, metrics)
	if err != nil {
		log.Fatal().Err(err).Msg("build subscriber")
	}

	if err := subscriber.Subscribe(ctx); err != nil {
		log.Fatal().Err(err).Msg("subscribe")
	}
	log.Info().
		Str("id", subscriber.ID().String()).
		Str("mode", cfg.Subscription).
		Msg("subscribed")

	metricsSrv := &http.Server{Addr: cfg.MetricsAddr, Handler: promhttp.Handler()}
	go func() {
		log.Info().Str("addr", cfg.MetricsAddr).Msg("metrics listening")
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server")
		}
	}()

	status := time.NewTicker(cfg.StatusEvery)
	defer status.Stop()

loop:
	for {
		select {
		case <-sigChan:
			log.Info().Msg("shutdown signal received")
			break loop
		case <-status.C:
			log.Info().Int("accounts", subscriber.Cache().Len()).Msg("tracking")
		}
	}

	if err := subscriber.Unsubscribe(); err != nil {
		log.Warn().Err(err).Msg("unsubscribe")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = metricsSrv.Shutdown(shutdownCtx)

	log.Info().Msg("perpmirror stopped")
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDurationOrDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}
