package main

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/valleywatch/news-threat-etl/internal/adapter/gnews"
	httpadapter "github.com/valleywatch/news-threat-etl/internal/adapter/http"
	kafkaadapter "github.com/valleywatch/news-threat-etl/internal/adapter/kafka"
	"github.com/valleywatch/news-threat-etl/internal/adapter/ner"
	"github.com/valleywatch/news-threat-etl/internal/adapter/rss"
	"github.com/valleywatch/news-threat-etl/internal/config"
	"github.com/valleywatch/news-threat-etl/internal/domain"
	"github.com/valleywatch/news-threat-etl/internal/observability"
	"github.com/valleywatch/news-threat-etl/internal/pipeline"
	"github.com/valleywatch/news-threat-etl/internal/rules"
	"github.com/valleywatch/news-threat-etl/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ruleFile, err := rules.Load(cfg.RulesPath)
	if err != nil {
		logger.Error("failed to load rules", "error", err, "path", cfg.RulesPath)
		os.Exit(1)
	}
	gazetteer := ruleFile.Gazetteer()
	classifier := ruleFile.Classifier()
	logger.Info("rules loaded", "places", gazetteer.Len(), "keywords", len(ruleFile.Threat.Keywords))

	// Entity recognition is feature-flagged via NER_URL / NER_ENABLED.
	var recognizer domain.Recognizer
	if cfg.NEREnabled {
		client := ner.NewClient(cfg.NERBaseURL, cfg.NERTimeout, metrics, logger)
		recognizer = ner.NewCachedRecognizer(client, cfg.NERCacheSize, metrics)
		logger.Info("entity recognition enabled", "url", cfg.NERBaseURL, "cache_size", cfg.NERCacheSize)
	} else {
		logger.Info("entity recognition disabled")
	}

	var rng *rand.Rand
	if cfg.ResolverSeed != 0 {
		rng = rand.New(rand.NewSource(cfg.ResolverSeed))
	}
	resolver := domain.NewResolver(gazetteer, ruleFile.FallbackTables(), recognizer, rng, logger)

	sources := []pipeline.Source{
		gnews.NewClient(gnews.Config{
			APIKey:     cfg.GNewsAPIKey,
			Query:      cfg.GNewsQuery,
			Lang:       cfg.GNewsLang,
			Country:    cfg.GNewsCountry,
			MaxResults: cfg.GNewsMaxResults,
			Timeout:    cfg.GNewsTimeout,
		}, logger),
	}
	for _, feed := range cfg.RSSFeeds {
		sources = append(sources, rss.NewSource(feed, cfg.RSSTimeout, logger))
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		logger.Error("failed to create data directory", "error", err, "dir", cfg.DataDir)
		os.Exit(1)
	}
	articles := store.NewArticles(cfg.ArticlesPath(), logger)
	alerts := store.NewAlerts(cfg.AlertsPath(), logger)

	var publisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		publisher = kafkaadapter.NewPublisher(cfg, logger)
		logger.Info("kafka alert fan-out enabled", "topic", cfg.KafkaSinkTopic)
	}

	params := pipeline.Params{
		Sources:     sources,
		Articles:    articles,
		Alerts:      alerts,
		Classifier:  classifier,
		Resolver:    resolver,
		Gazetteer:   gazetteer,
		Logger:      logger,
		Metrics:     metrics,
		MaxArticles: cfg.MaxArticles,
	}
	if publisher != nil {
		params.Publisher = publisher
	}
	processor := pipeline.New(params)

	srv := httpadapter.NewServer(cfg.HTTPAddr, processor, alerts, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Warm the stores on startup so /api/alerts serves immediately and
	// readiness reflects a completed cycle.
	go func() {
		warmCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		defer cancel()
		if err := processor.Reprocess(warmCtx); err != nil {
			logger.Warn("startup reprocess aborted", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
