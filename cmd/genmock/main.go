// Command genmock generates mock news fixtures for local development and
// test suites: a GNews-shaped search response and, optionally, a
// pre-populated news.json. It uses the actual domain package so the fixture
// articles match real pipeline behavior.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -fixture-out data/mock/gnews_search.json \
//	  -news-out data/news.json \
//	  -count 20 -seed 1
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/valleywatch/news-threat-etl/internal/domain"
)

var baseDate = time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)

// Title templates: roughly half clear the threat threshold, half do not.
var unsafeTitles = []string{
	"Explosion reported near %s market",
	"Security forces respond to gunfire in %s",
	"Terror alert issued for %s district",
	"Protest turns to riot near %s",
	"Bomb threat forces evacuation in %s",
}

var safeTitles = []string{
	"Tourism numbers rise in %s this season",
	"New highway project announced for %s",
	"%s hosts annual saffron festival",
	"Weather improves across %s valley routes",
	"Local crafts from %s gain global buyers",
}

var places = []string{
	"Pahalgam", "Srinagar", "Anantnag", "Gulmarg", "Baramulla",
	"Pulwama", "Sopore", "Kupwara", "Jammu", "Uri",
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	fixtureOut := flag.String("fixture-out", "", "output path for the GNews-shaped search response fixture")
	newsOut := flag.String("news-out", "", "optional output path for a pre-populated news.json")
	count := flag.Int("count", 20, "number of articles to generate")
	seed := flag.Int64("seed", 1, "random seed for reproducible fixtures")
	flag.Parse()

	if *fixtureOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -fixture-out")
	}

	// Fixed clock so publishedAt timestamps are reproducible across runs.
	clock := clockwork.NewFakeClockAt(baseDate)
	rng := rand.New(rand.NewSource(*seed))

	raws := make([]domain.RawArticle, 0, *count)
	for i := 0; i < *count; i++ {
		place := places[rng.Intn(len(places))]
		var title string
		if i%2 == 0 {
			title = fmt.Sprintf(unsafeTitles[rng.Intn(len(unsafeTitles))], place)
		} else {
			title = fmt.Sprintf(safeTitles[rng.Intn(len(safeTitles))], place)
		}

		var raw domain.RawArticle
		raw.Title = title
		raw.Description = fmt.Sprintf("Report %d from the %s area.", i+1, place)
		raw.Content = fmt.Sprintf("Details of report %d covering developments around %s.", i+1, place)
		raw.URL = fmt.Sprintf("https://news.example.com/articles/%d", i+1)
		raw.PublishedAt = clock.Now().Add(-time.Duration(i) * time.Hour).Format(time.RFC3339)
		raw.Source.Name = "Mock Wire"
		raws = append(raws, raw)
	}

	fixture := map[string]any{
		"totalArticles": len(raws),
		"articles":      raws,
	}
	if err := writeJSON(*fixtureOut, fixture); err != nil {
		return err
	}
	fmt.Printf("wrote %d articles to %s\n", len(raws), *fixtureOut)

	if *newsOut != "" {
		articles := make([]domain.Article, len(raws))
		for i, raw := range raws {
			articles[i] = domain.FormatArticle(raw)
		}
		if err := writeJSON(*newsOut, articles); err != nil {
			return err
		}
		fmt.Printf("wrote %d articles to %s\n", len(articles), *newsOut)
	}
	return nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
