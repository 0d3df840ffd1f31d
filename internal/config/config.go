package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Flat-file storage.
	DataDir     string
	RulesPath   string // empty = embedded default rules
	MaxArticles int

	// GNews-style search API.
	GNewsAPIKey     string
	GNewsQuery      string
	GNewsLang       string
	GNewsCountry    string
	GNewsMaxResults int
	GNewsTimeout    time.Duration

	// Supplemental RSS feeds.
	RSSFeeds   []string
	RSSTimeout time.Duration

	// External entity-recognition service.
	NERBaseURL   string
	NEREnabled   bool
	NERTimeout   time.Duration
	NERCacheSize int

	// Optional Kafka alert fan-out.
	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string

	// Seed for the resolver's default-pool selection; 0 = time-seeded.
	ResolverSeed int64
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	gnewsTimeout, err := parseDuration("GNEWS_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	rssTimeout, err := parseDuration("RSS_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	nerTimeout, err := parseDuration("NER_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	maxArticles, err := parsePositiveInt("MAX_ARTICLES", 50)
	if err != nil {
		return nil, err
	}
	gnewsMax, err := parsePositiveInt("GNEWS_MAX_RESULTS", 50)
	if err != nil {
		return nil, err
	}
	nerCacheSize, err := parsePositiveInt("NER_CACHE_SIZE", 1000)
	if err != nil {
		return nil, err
	}
	resolverSeed, err := parseInt64("RESOLVER_SEED", 0)
	if err != nil {
		return nil, err
	}

	nerBaseURL := os.Getenv("NER_URL")
	nerEnabled := nerBaseURL != ""
	if v := os.Getenv("NER_ENABLED"); v != "" {
		nerEnabled = v == "true"
	}

	kafkaEnabled := os.Getenv("KAFKA_ENABLED") == "true"

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		DataDir:     envOrDefault("DATA_DIR", "data"),
		RulesPath:   os.Getenv("RULES_PATH"),
		MaxArticles: maxArticles,

		GNewsAPIKey:     os.Getenv("GNEWS_API_KEY"),
		GNewsQuery:      envOrDefault("GNEWS_QUERY", "threat"),
		GNewsLang:       envOrDefault("GNEWS_LANG", "en"),
		GNewsCountry:    envOrDefault("GNEWS_COUNTRY", "in"),
		GNewsMaxResults: gnewsMax,
		GNewsTimeout:    gnewsTimeout,

		RSSFeeds:   parseList(os.Getenv("RSS_FEEDS")),
		RSSTimeout: rssTimeout,

		NERBaseURL:   nerBaseURL,
		NEREnabled:   nerEnabled,
		NERTimeout:   nerTimeout,
		NERCacheSize: nerCacheSize,

		KafkaEnabled:   kafkaEnabled,
		KafkaBrokers:   parseList(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic: envOrDefault("KAFKA_SINK_TOPIC", "threat-alerts"),

		ResolverSeed: resolverSeed,
	}

	if cfg.GNewsAPIKey == "" {
		return nil, errors.New("GNEWS_API_KEY is required")
	}
	if cfg.NEREnabled && cfg.NERBaseURL == "" {
		return nil, errors.New("NER_ENABLED is true but NER_URL is not set")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_SINK_TOPIC is empty")
	}

	return cfg, nil
}

// ArticlesPath is the news collection file inside the data directory.
func (c *Config) ArticlesPath() string {
	return filepath.Join(c.DataDir, "news.json")
}

// AlertsPath is the alert collection file inside the data directory.
func (c *Config) AlertsPath() string {
	return filepath.Join(c.DataDir, "alerts.json")
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDuration(key, def string) (time.Duration, error) {
	s := envOrDefault(key, def)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return n, nil
}

func parseInt64(key string, def int64) (int64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return n, nil
}

// parseList splits a comma-separated value, trimming whitespace and dropping
// empty items.
func parseList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
