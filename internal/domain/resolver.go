package domain

import (
	"context"
	"log/slog"
	"math/rand"
	"strings"
	"time"
)

// Entity labels produced by the external recognizer that count as places.
const (
	LabelGPE      = "GPE"
	LabelLocation = "LOC"
)

// Entity is a typed span extracted from free text by an external recognizer.
type Entity struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// Recognizer extracts typed spans from free text. Implementations call an
// external service and may fail at any time; the resolver degrades rather
// than propagating the error.
type Recognizer interface {
	Extract(ctx context.Context, text string) ([]Entity, error)
}

// FallbackRule maps a broad keyword to a representative gazetteer place.
type FallbackRule struct {
	Keyword string
	Place   string
}

// FallbackTables holds the resolver's keyword tiers and default pool, in
// their defined scan order.
type FallbackTables struct {
	Region      []FallbackRule
	Context     []FallbackRule
	DefaultPool []string
}

// Resolution tier names, reported alongside the resolved place for metrics.
const (
	TierExact   = "exact"
	TierEntity  = "entity"
	TierRegion  = "region"
	TierContext = "context"
	TierDefault = "default"
)

// Resolver maps free text to one gazetteer place through the layered
// fallback chain described in the package documentation.
type Resolver struct {
	gaz        *Gazetteer
	tables     FallbackTables
	recognizer Recognizer // nil when the external recognizer is unavailable
	rng        *rand.Rand
	logger     *slog.Logger
}

// NewResolver creates a resolver. Pass a nil recognizer to mark the external
// collaborator unavailable and a nil rng to seed the default-pool selection
// from the wall clock; tests inject a fixed-seed rng to pin tier 5.
func NewResolver(gaz *Gazetteer, tables FallbackTables, recognizer Recognizer, rng *rand.Rand, logger *slog.Logger) *Resolver {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if logger == nil {
		logger = slog.Default()
	}
	normalize := func(rules []FallbackRule) []FallbackRule {
		out := make([]FallbackRule, len(rules))
		for i, r := range rules {
			out[i] = FallbackRule{Keyword: strings.ToLower(r.Keyword), Place: r.Place}
		}
		return out
	}
	tables.Region = normalize(tables.Region)
	tables.Context = normalize(tables.Context)
	return &Resolver{
		gaz:        gaz,
		tables:     tables,
		recognizer: recognizer,
		rng:        rng,
		logger:     logger,
	}
}

// Resolve returns a gazetteer place name for the text and the tier that
// produced it. The returned name is empty only when every tier misses and
// the default pool is empty. Identical inputs may resolve to different
// tier-5 defaults across calls; that non-determinism is by design.
func (r *Resolver) Resolve(ctx context.Context, text string) (string, string) {
	lower := strings.ToLower(text)

	// Tier 1: exact gazetteer substring, table-definition order. Runs even
	// when the recognizer is down so a literal place mention always wins.
	for _, name := range r.gaz.Names() {
		if strings.Contains(lower, strings.ToLower(name)) {
			return name, TierExact
		}
	}

	if r.recognizer == nil {
		return r.defaultPlace(), TierDefault
	}

	// Tier 2: place-typed spans from the recognizer, re-scanned against the
	// gazetteer. A call-time failure counts as zero spans, not as resolver
	// failure.
	entities, err := r.recognizer.Extract(ctx, text)
	if err != nil {
		r.logger.Warn("entity extraction failed", "error", err)
		entities = nil
	}

	matchedNone := 0
	for _, ent := range entities {
		if ent.Label != LabelGPE && ent.Label != LabelLocation {
			continue
		}
		entLower := strings.ToLower(ent.Text)
		for _, name := range r.gaz.Names() {
			if strings.Contains(entLower, strings.ToLower(name)) {
				return name, TierEntity
			}
		}
		matchedNone++
	}

	// Tier 3: region keywords, only when the recognizer found place spans
	// that matched nothing. The spans themselves are never returned; they
	// only signal that the text is talking about somewhere.
	if matchedNone > 0 {
		for _, rule := range r.tables.Region {
			if strings.Contains(lower, rule.Keyword) {
				return rule.Place, TierRegion
			}
		}
	}

	// Tier 4: context keywords.
	for _, rule := range r.tables.Context {
		if strings.Contains(lower, rule.Keyword) {
			return rule.Place, TierContext
		}
	}

	return r.defaultPlace(), TierDefault
}

func (r *Resolver) defaultPlace() string {
	if len(r.tables.DefaultPool) == 0 {
		return ""
	}
	return r.tables.DefaultPool[r.rng.Intn(len(r.tables.DefaultPool))]
}
