package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valleywatch/news-threat-etl/internal/domain"
	"github.com/valleywatch/news-threat-etl/internal/observability"
	"github.com/valleywatch/news-threat-etl/internal/pipeline"
	"github.com/valleywatch/news-threat-etl/internal/store"
)

// --- mocks ---

type mockSource struct {
	name     string
	articles []domain.Article
	err      error
	calls    int
}

func (m *mockSource) Name() string { return m.name }

func (m *mockSource) Fetch(_ context.Context) ([]domain.Article, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.articles, nil
}

type mockPublisher struct {
	published []domain.Alert
	err       error
}

func (m *mockPublisher) Publish(_ context.Context, alert domain.Alert) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, alert)
	return nil
}

// --- fixtures ---

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testGazetteer() *domain.Gazetteer {
	return domain.NewGazetteer([]domain.GazetteerEntry{
		{Name: "Pahalgam", Lat: 34.0159, Lng: 75.3187},
		{Name: "Srinagar", Lat: 34.0837, Lng: 74.7973},
		{Name: "Anantnag", Lat: 33.7311, Lng: 75.1547},
	})
}

func testClassifier() *domain.Classifier {
	return domain.NewClassifier([]domain.KeywordWeight{
		{Term: "explosion", Weight: 2},
		{Term: "attack", Weight: 2},
		{Term: "threat", Weight: 1},
	}, 2)
}

func testResolver() *domain.Resolver {
	tables := domain.FallbackTables{
		Context: []domain.FallbackRule{
			{Keyword: "attack", Place: "Pahalgam"},
		},
		DefaultPool: []string{"Srinagar"},
	}
	return domain.NewResolver(testGazetteer(), tables, nil, rand.New(rand.NewSource(1)), testLogger())
}

type harness struct {
	processor *pipeline.Processor
	articles  *store.Articles
	alerts    *store.Alerts
	publisher *mockPublisher
}

func newHarness(t *testing.T, sources []pipeline.Source, maxArticles int) *harness {
	t.Helper()
	dir := t.TempDir()
	articles := store.NewArticles(filepath.Join(dir, "news.json"), testLogger())
	alerts := store.NewAlerts(filepath.Join(dir, "alerts.json"), testLogger())
	publisher := &mockPublisher{}

	processor := pipeline.New(pipeline.Params{
		Sources:     sources,
		Articles:    articles,
		Alerts:      alerts,
		Classifier:  testClassifier(),
		Resolver:    testResolver(),
		Gazetteer:   testGazetteer(),
		Publisher:   publisher,
		Clock:       clockwork.NewFakeClock(),
		Logger:      testLogger(),
		Metrics:     observability.NewMetricsForTesting(),
		MaxArticles: maxArticles,
	})
	return &harness{processor: processor, articles: articles, alerts: alerts, publisher: publisher}
}

func unsafeArticle(n int) domain.Article {
	return domain.Article{
		Title:       fmt.Sprintf("Explosion reported near Pahalgam market %d", n),
		Description: "Authorities responding",
		URL:         fmt.Sprintf("https://example.com/unsafe/%d", n),
		PublishedAt: fmt.Sprintf("2026-03-14T%02d:00:00Z", n%24),
		Source:      "Wire",
	}
}

func safeArticle(n int) domain.Article {
	return domain.Article{
		Title:       fmt.Sprintf("Saffron harvest begins %d", n),
		URL:         fmt.Sprintf("https://example.com/safe/%d", n),
		PublishedAt: fmt.Sprintf("2026-03-13T%02d:00:00Z", n%24),
		Source:      "Wire",
	}
}

// --- tests ---

func TestIngest_StoresArticlesAndAlerts(t *testing.T) {
	src := &mockSource{name: "mock", articles: []domain.Article{unsafeArticle(1), safeArticle(2)}}
	h := newHarness(t, []pipeline.Source{src}, 50)

	articles, err := h.processor.Ingest(context.Background())
	require.NoError(t, err)
	assert.Len(t, articles, 2)
	assert.Len(t, h.articles.Load(), 2)

	alerts := h.alerts.Load()
	require.Len(t, alerts, 1)
	assert.Equal(t, "Pahalgam", alerts[0].City)
	assert.Equal(t, domain.SeverityHigh, alerts[0].Severity)
	assert.Equal(t, 34.0159, alerts[0].Lat)
	assert.Len(t, h.publisher.published, 1)

	assert.NoError(t, h.processor.CheckReadiness(context.Background()))
}

func TestIngest_DeduplicatesByURL(t *testing.T) {
	a := unsafeArticle(1)
	src := &mockSource{name: "mock", articles: []domain.Article{a}}
	h := newHarness(t, []pipeline.Source{src}, 50)

	_, err := h.processor.Ingest(context.Background())
	require.NoError(t, err)

	// Same URL again on the next cycle: not re-added, not re-processed.
	_, err = h.processor.Ingest(context.Background())
	require.NoError(t, err)

	assert.Len(t, h.articles.Load(), 1)
	assert.Len(t, h.alerts.Load(), 1)
	assert.Len(t, h.publisher.published, 1)
}

func TestIngest_DuplicateDescriptionSuppressed(t *testing.T) {
	first := unsafeArticle(1)
	second := first
	second.URL = "https://example.com/other" // different URL, same title+description
	src := &mockSource{name: "mock", articles: []domain.Article{first, second}}
	h := newHarness(t, []pipeline.Source{src}, 50)

	_, err := h.processor.Ingest(context.Background())
	require.NoError(t, err)

	assert.Len(t, h.articles.Load(), 2)
	assert.Len(t, h.alerts.Load(), 1)
}

func TestIngest_CapsAndSortsDescending(t *testing.T) {
	var batch []domain.Article
	for i := 0; i < 8; i++ {
		batch = append(batch, domain.Article{
			Title:       fmt.Sprintf("article %d", i),
			URL:         fmt.Sprintf("https://example.com/%d", i),
			PublishedAt: fmt.Sprintf("2026-03-%02dT12:00:00Z", i+1),
		})
	}
	src := &mockSource{name: "mock", articles: batch}
	h := newHarness(t, []pipeline.Source{src}, 5)

	articles, err := h.processor.Ingest(context.Background())
	require.NoError(t, err)

	require.Len(t, articles, 5)
	assert.Equal(t, "2026-03-08T12:00:00Z", articles[0].PublishedAt)
	for i := 1; i < len(articles); i++ {
		assert.GreaterOrEqual(t, articles[i-1].PublishedAt, articles[i].PublishedAt)
	}
	assert.Len(t, h.articles.Load(), 5)
}

func TestIngest_SourceFailureDegrades(t *testing.T) {
	failing := &mockSource{name: "down", err: errors.New("connection refused")}
	working := &mockSource{name: "up", articles: []domain.Article{safeArticle(1)}}
	h := newHarness(t, []pipeline.Source{failing, working}, 50)

	articles, err := h.processor.Ingest(context.Background())
	require.NoError(t, err)
	assert.Len(t, articles, 1)
}

func TestIngest_AllSourcesFailing(t *testing.T) {
	src := &mockSource{name: "down", err: errors.New("network unreachable")}
	h := newHarness(t, []pipeline.Source{src}, 50)

	articles, err := h.processor.Ingest(context.Background())
	require.NoError(t, err)
	assert.Empty(t, articles)
	assert.Empty(t, h.alerts.Load())
}

func TestIngest_ContextCancelled(t *testing.T) {
	src := &mockSource{name: "mock", articles: []domain.Article{unsafeArticle(1)}}
	h := newHarness(t, []pipeline.Source{src}, 50)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.processor.Ingest(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Error(t, h.processor.CheckReadiness(context.Background()))
}

func TestReprocess_Idempotent(t *testing.T) {
	src := &mockSource{name: "mock", articles: []domain.Article{unsafeArticle(1), unsafeArticle(2), safeArticle(3)}}
	h := newHarness(t, []pipeline.Source{src}, 50)

	_, err := h.processor.Ingest(context.Background())
	require.NoError(t, err)
	countAfterIngest := len(h.alerts.Load())
	require.Equal(t, 2, countAfterIngest)

	// Reprocessing runs every stored article again; dedup keeps the alert
	// count stable.
	require.NoError(t, h.processor.Reprocess(context.Background()))
	require.NoError(t, h.processor.Reprocess(context.Background()))
	assert.Len(t, h.alerts.Load(), countAfterIngest)
}

func TestReprocess_MarksReady(t *testing.T) {
	h := newHarness(t, nil, 50)
	require.Error(t, h.processor.CheckReadiness(context.Background()))

	require.NoError(t, h.processor.Reprocess(context.Background()))
	assert.NoError(t, h.processor.CheckReadiness(context.Background()))
}

func TestProcessArticle_PublishFailureDoesNotBlockPersistence(t *testing.T) {
	src := &mockSource{name: "mock", articles: []domain.Article{unsafeArticle(1)}}
	h := newHarness(t, []pipeline.Source{src}, 50)
	h.publisher.err = errors.New("broker unavailable")

	_, err := h.processor.Ingest(context.Background())
	require.NoError(t, err)

	assert.Len(t, h.alerts.Load(), 1)
	assert.Empty(t, h.publisher.published)
}
