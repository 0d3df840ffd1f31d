// Package rules loads the static matching tables — gazetteer, threat
// vocabulary, and resolver fallback mappings — from a YAML file. The tables
// are ordered lists rather than maps because tier-1 resolution and the
// fallback tiers scan entries in definition order.
package rules

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/valleywatch/news-threat-etl/internal/domain"
)

//go:embed default.yaml
var defaultRules []byte

// File is the top-level rules document.
type File struct {
	Places   []Place       `yaml:"gazetteer"`
	Threat   ThreatRules   `yaml:"threat"`
	Resolver ResolverRules `yaml:"resolver"`
}

// Place is one gazetteer entry.
type Place struct {
	Name string  `yaml:"name"`
	Lat  float64 `yaml:"lat"`
	Lng  float64 `yaml:"lng"`
}

// ThreatRules holds the weighted vocabulary and classification threshold.
type ThreatRules struct {
	Threshold int       `yaml:"threshold"`
	Keywords  []Keyword `yaml:"keywords"`
}

// Keyword is one weighted vocabulary term.
type Keyword struct {
	Term   string `yaml:"term"`
	Weight int    `yaml:"weight"`
}

// ResolverRules holds the fallback keyword tiers and the default pool.
type ResolverRules struct {
	RegionKeywords  []Fallback `yaml:"region_keywords"`
	ContextKeywords []Fallback `yaml:"context_keywords"`
	DefaultPool     []string   `yaml:"default_pool"`
}

// Fallback maps a keyword to a representative gazetteer place.
type Fallback struct {
	Keyword string `yaml:"keyword"`
	Place   string `yaml:"place"`
}

// Validation errors.
var (
	ErrEmptyGazetteer    = errors.New("gazetteer must contain at least one place")
	ErrEmptyPlaceName    = errors.New("gazetteer place name must not be empty")
	ErrNoKeywords        = errors.New("threat vocabulary must contain at least one keyword")
	ErrEmptyKeywordTerm  = errors.New("threat keyword term must not be empty")
	ErrBadKeywordWeight  = errors.New("threat keyword weight must be at least 1")
	ErrBadThreshold      = errors.New("threat threshold must be at least 1")
	ErrEmptyFallbackWord = errors.New("fallback keyword must not be empty")
	ErrUnknownPlace      = errors.New("fallback target is not a gazetteer place")
	ErrEmptyDefaultPool  = errors.New("resolver default pool must not be empty")
)

// LoadDefault parses the embedded rules shipped with the binary.
func LoadDefault() (*File, error) {
	return Parse(defaultRules)
}

// Load reads a rules file from disk, or the embedded default when path is
// empty.
func Load(path string) (*File, error) {
	if path == "" {
		return LoadDefault()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a rules document.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks structural invariants. Duplicate gazetteer names are
// allowed on purpose: the loader preserves the source dataset's last-wins
// semantics instead of rejecting them (cmd/validate reports them as
// warnings).
func (f *File) Validate() error {
	if len(f.Places) == 0 {
		return ErrEmptyGazetteer
	}
	known := make(map[string]bool, len(f.Places))
	for _, p := range f.Places {
		if p.Name == "" {
			return ErrEmptyPlaceName
		}
		known[p.Name] = true
	}

	if len(f.Threat.Keywords) == 0 {
		return ErrNoKeywords
	}
	if f.Threat.Threshold < 1 {
		return ErrBadThreshold
	}
	for _, kw := range f.Threat.Keywords {
		if kw.Term == "" {
			return ErrEmptyKeywordTerm
		}
		if kw.Weight < 1 {
			return fmt.Errorf("%w: %q has weight %d", ErrBadKeywordWeight, kw.Term, kw.Weight)
		}
	}

	for _, tier := range [][]Fallback{f.Resolver.RegionKeywords, f.Resolver.ContextKeywords} {
		for _, fb := range tier {
			if fb.Keyword == "" {
				return ErrEmptyFallbackWord
			}
			if !known[fb.Place] {
				return fmt.Errorf("%w: %q -> %q", ErrUnknownPlace, fb.Keyword, fb.Place)
			}
		}
	}

	if len(f.Resolver.DefaultPool) == 0 {
		return ErrEmptyDefaultPool
	}
	for _, name := range f.Resolver.DefaultPool {
		if !known[name] {
			return fmt.Errorf("%w: default pool entry %q", ErrUnknownPlace, name)
		}
	}
	return nil
}

// Gazetteer builds the domain gazetteer from the ordered place list.
func (f *File) Gazetteer() *domain.Gazetteer {
	entries := make([]domain.GazetteerEntry, len(f.Places))
	for i, p := range f.Places {
		entries[i] = domain.GazetteerEntry{Name: p.Name, Lat: p.Lat, Lng: p.Lng}
	}
	return domain.NewGazetteer(entries)
}

// Classifier builds the domain threat classifier.
func (f *File) Classifier() *domain.Classifier {
	keywords := make([]domain.KeywordWeight, len(f.Threat.Keywords))
	for i, kw := range f.Threat.Keywords {
		keywords[i] = domain.KeywordWeight{Term: kw.Term, Weight: kw.Weight}
	}
	return domain.NewClassifier(keywords, f.Threat.Threshold)
}

// FallbackTables builds the resolver's keyword tiers and default pool.
func (f *File) FallbackTables() domain.FallbackTables {
	convert := func(in []Fallback) []domain.FallbackRule {
		out := make([]domain.FallbackRule, len(in))
		for i, fb := range in {
			out[i] = domain.FallbackRule{Keyword: fb.Keyword, Place: fb.Place}
		}
		return out
	}
	pool := make([]string, len(f.Resolver.DefaultPool))
	copy(pool, f.Resolver.DefaultPool)
	return domain.FallbackTables{
		Region:      convert(f.Resolver.RegionKeywords),
		Context:     convert(f.Resolver.ContextKeywords),
		DefaultPool: pool,
	}
}
