// Package pipeline orchestrates ingestion: fetch articles from the
// configured sources, merge them with the stored collection, and drive every
// unseen article through the threat scorer, location resolver, and alert
// builder. No error below the HTTP boundary is fatal; each stage degrades to
// "skip and continue".
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync/atomic"

	"github.com/jonboulle/clockwork"

	"github.com/valleywatch/news-threat-etl/internal/domain"
	"github.com/valleywatch/news-threat-etl/internal/observability"
)

// Source fetches a batch of articles from one upstream feed or API.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]domain.Article, error)
}

// ArticleStore persists the rolling article collection.
type ArticleStore interface {
	Load() []domain.Article
	Replace(articles []domain.Article) error
}

// AlertStore persists alerts with description-keyed deduplication.
type AlertStore interface {
	Load() []domain.Alert
	Insert(alert domain.Alert) (bool, error)
}

// Publisher fans admitted alerts out to an external sink.
type Publisher interface {
	Publish(ctx context.Context, alert domain.Alert) error
}

// Params collects the processor's dependencies.
type Params struct {
	Sources    []Source
	Articles   ArticleStore
	Alerts     AlertStore
	Classifier *domain.Classifier
	Resolver   *domain.Resolver
	Gazetteer  *domain.Gazetteer
	Publisher  Publisher // nil disables fan-out
	Clock      clockwork.Clock
	Logger     *slog.Logger
	Metrics    *observability.Metrics

	// MaxArticles caps the stored collection; 0 means the default of 50.
	MaxArticles int
}

// Processor runs ingestion and reprocessing cycles.
type Processor struct {
	sources     []Source
	articles    ArticleStore
	alerts      AlertStore
	classifier  *domain.Classifier
	resolver    *domain.Resolver
	gaz         *domain.Gazetteer
	publisher   Publisher
	clock       clockwork.Clock
	logger      *slog.Logger
	metrics     *observability.Metrics
	maxArticles int
	ready       atomic.Bool
}

// New creates a Processor.
func New(p Params) *Processor {
	if p.Clock == nil {
		p.Clock = clockwork.NewRealClock()
	}
	if p.MaxArticles <= 0 {
		p.MaxArticles = 50
	}
	if p.Logger == nil {
		p.Logger = slog.Default()
	}
	return &Processor{
		sources:     p.Sources,
		articles:    p.Articles,
		alerts:      p.Alerts,
		classifier:  p.Classifier,
		resolver:    p.Resolver,
		gaz:         p.Gazetteer,
		publisher:   p.Publisher,
		clock:       p.Clock,
		logger:      p.Logger,
		metrics:     p.Metrics,
		maxArticles: p.MaxArticles,
	}
}

// CheckReadiness returns nil once at least one ingestion or reprocessing
// cycle has completed.
func (p *Processor) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no ingestion cycle has completed yet")
	}
	return nil
}

// Ingest fetches from every source, processes unseen articles for alerts,
// and rewrites the article store capped at the configured maximum, sorted
// descending by publishedAt string. Source failures degrade to an empty
// batch; the only returned error is context cancellation.
func (p *Processor) Ingest(ctx context.Context) ([]domain.Article, error) {
	start := p.clock.Now()
	p.metrics.IngestRunning.Set(1)
	defer p.metrics.IngestRunning.Set(0)

	var fetched []domain.Article
	for _, src := range p.sources {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		batch, err := src.Fetch(ctx)
		if err != nil {
			p.logger.Warn("fetch failed, continuing without source", "source", src.Name(), "error", err)
			p.metrics.FetchErrors.WithLabelValues(src.Name()).Inc()
			continue
		}
		p.metrics.ArticlesFetched.WithLabelValues(src.Name()).Add(float64(len(batch)))
		fetched = append(fetched, batch...)
	}

	existing := p.articles.Load()
	seen := make(map[string]bool, len(existing))
	for _, a := range existing {
		seen[a.URL] = true
	}

	var unseen []domain.Article
	for _, a := range fetched {
		if seen[a.URL] {
			continue
		}
		seen[a.URL] = true
		unseen = append(unseen, a)
	}
	p.logger.Info("ingest fetched", "total", len(fetched), "unseen", len(unseen))

	for _, a := range unseen {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		p.processArticle(ctx, a)
	}

	merged := make([]domain.Article, 0, len(existing)+len(unseen))
	merged = append(merged, existing...)
	merged = append(merged, unseen...)
	// Lexical comparison on the raw publishedAt strings: the upstream
	// timestamps are RFC 3339, where string order is time order.
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].PublishedAt > merged[j].PublishedAt
	})
	if len(merged) > p.maxArticles {
		merged = merged[:p.maxArticles]
	}

	if err := p.articles.Replace(merged); err != nil {
		p.logger.Error("article store write failed", "error", err)
	}
	p.metrics.ArticlesStored.Set(float64(len(merged)))
	p.metrics.IngestDuration.Observe(p.clock.Since(start).Seconds())
	p.ready.Store(true)

	return merged, nil
}

// Reprocess re-runs scoring and alert building over every stored article.
// Already-alerted articles are no-ops because the alert store deduplicates
// by description, so repeated calls leave the alert count unchanged.
func (p *Processor) Reprocess(ctx context.Context) error {
	articles := p.articles.Load()
	p.logger.Info("reprocessing stored articles", "count", len(articles))
	for _, a := range articles {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		p.processArticle(ctx, a)
	}
	p.ready.Store(true)
	return nil
}

// processArticle scores one article and stores an alert if it is unsafe and
// resolvable. Missing location or coordinates is insufficient signal, not an
// error: the article is skipped silently.
func (p *Processor) processArticle(ctx context.Context, a domain.Article) {
	text := a.ResolutionText()
	if !p.classifier.Unsafe(text) {
		return
	}
	p.metrics.ArticlesUnsafe.Inc()

	city, tier := p.resolver.Resolve(ctx, text)
	p.metrics.ResolverTier.WithLabelValues(tier).Inc()
	if city == "" {
		p.logger.Debug("no location resolved, skipping alert", "title", a.Title)
		return
	}

	coord, ok := p.gaz.Lookup(city)
	if !ok {
		// The resolver only returns gazetteer names, but the contract
		// does not assume it.
		p.logger.Debug("no coordinates for resolved place, skipping alert", "city", city)
		return
	}

	alert := domain.NewAlert(a, city, coord)
	admitted, err := p.alerts.Insert(alert)
	if err != nil {
		p.logger.Error("alert store write failed", "error", err, "city", city)
		return
	}
	if !admitted {
		p.metrics.AlertsDuplicate.Inc()
		return
	}
	p.metrics.AlertsCreated.Inc()
	p.logger.Info("alert created", "city", city, "tier", tier, "title", a.Title)

	if p.publisher == nil {
		return
	}
	if err := p.publisher.Publish(ctx, alert); err != nil {
		p.logger.Warn("alert publish failed", "error", err, "city", city)
		p.metrics.PublishErrors.Inc()
		return
	}
	p.metrics.AlertsPublished.Inc()
}
