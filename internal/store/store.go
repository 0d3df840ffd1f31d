// Package store persists the article and alert collections as pretty-printed
// JSON array files. Every mutation is a whole-file read-modify-write guarded
// by an in-process mutex and committed with a temp-file rename, so a single
// process never loses updates to itself and a crash mid-write leaves the
// previous file intact. There is no cross-process locking; the deployment
// assumption is one process per data directory.
package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/valleywatch/news-threat-etl/internal/domain"
)

// Articles persists the rolling article collection.
type Articles struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
}

// NewArticles creates an article store backed by the given file path.
func NewArticles(path string, logger *slog.Logger) *Articles {
	if logger == nil {
		logger = slog.Default()
	}
	return &Articles{path: path, logger: logger}
}

// Load returns the stored articles. A missing or unparsable file is treated
// as an empty collection; the next write recreates it.
func (s *Articles) Load() []domain.Article {
	s.mu.Lock()
	defer s.mu.Unlock()
	return loadJSON[domain.Article](s.path, s.logger)
}

// Replace rewrites the full collection.
func (s *Articles) Replace(articles []domain.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if articles == nil {
		articles = []domain.Article{}
	}
	return writeJSON(s.path, articles)
}

// Alerts persists the append-only alert collection with exact-description
// deduplication as the only admission control.
type Alerts struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
}

// NewAlerts creates an alert store backed by the given file path.
func NewAlerts(path string, logger *slog.Logger) *Alerts {
	if logger == nil {
		logger = slog.Default()
	}
	return &Alerts{path: path, logger: logger}
}

// Load returns the stored alerts, empty on any read failure.
func (s *Alerts) Load() []domain.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	return loadJSON[domain.Alert](s.path, s.logger)
}

// Insert appends the alert unless one with a byte-identical description is
// already stored. It reports whether the alert was admitted.
func (s *Alerts) Insert(alert domain.Alert) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	alerts := loadJSON[domain.Alert](s.path, s.logger)
	for _, existing := range alerts {
		if existing.Description == alert.Description {
			return false, nil
		}
	}
	alerts = append(alerts, alert)
	if err := writeJSON(s.path, alerts); err != nil {
		return false, err
	}
	return true, nil
}

// loadJSON reads a JSON array file, degrading to an empty slice when the
// file is absent or corrupt.
func loadJSON[T any](path string, logger *slog.Logger) []T {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("read store file failed, treating as empty", "path", path, "error", err)
		}
		return []T{}
	}
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		logger.Warn("parse store file failed, treating as empty", "path", path, "error", err)
		return []T{}
	}
	if out == nil {
		return []T{}
	}
	return out
}

// writeJSON writes the collection pretty-printed via a temp file and rename
// so readers never observe a partial file.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store file: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write store file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("commit store file: %w", err)
	}
	return nil
}
