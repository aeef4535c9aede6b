package subscription

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/pelletier/go-toml/v2"
	"github.com/samber/lo"

	"mediathekdl/internal/model"
)

// Quality selects which variant of a broadcast item to download.
type Quality string

const (
	QualityLow    Quality = "low"
	QualityMedium Quality = "medium"
	QualityHigh   Quality = "high"
)

func (q Quality) valid() bool {
	switch q {
	case QualityLow, QualityMedium, QualityHigh:
		return true
	}
	return false
}

// ResolveURL picks the download URL for this quality. A missing preferred
// variant falls back to the canonical URL, so every candidate yields a
// usable URL.
func (q Quality) ResolveURL(url, small, hd string) string {
	switch q {
	case QualityLow:
		if small != "" {
			return small
		}
	case QualityHigh:
		if hd != "" {
			return hd
		}
	}
	return url
}

// Subscription is a standing search rule, persisted as one TOML file per
// subscription. It is immutable for the duration of a run.
type Subscription struct {
	// Term is matched verbatim as a SQL LIKE pattern over title and topic.
	Term string `toml:"term"`
	// MinimumLength in seconds; only strictly longer entries match.
	MinimumLength int64   `toml:"minimum_length"`
	Quality       Quality `toml:"quality"`
	// Identifier names both the file and the download folder.
	Identifier string `toml:"identifier"`
}

// CatalogSearcher is the catalog query surface a subscription needs.
type CatalogSearcher interface {
	Search(ctx context.Context, term string, minDuration int64) ([]model.Candidate, error)
}

// Match queries the catalog and resolves the quality URL per candidate.
func (s Subscription) Match(ctx context.Context, catalog CatalogSearcher) ([]model.Match, error) {
	candidates, err := catalog.Search(ctx, s.Term, s.MinimumLength)
	if err != nil {
		return nil, err
	}

	return lo.Map(candidates, func(c model.Candidate, _ int) model.Match {
		return model.Match{
			Title: c.Title,
			Date:  c.Date,
			URL:   s.Quality.ResolveURL(c.URL, c.URLSmall, c.URLHD),
		}
	}), nil
}

// Load reads and validates one subscription file.
func Load(path string) (Subscription, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Subscription{}, fmt.Errorf("read subscription: %w", err)
	}

	var sub Subscription
	if err := toml.Unmarshal(raw, &sub); err != nil {
		return Subscription{}, fmt.Errorf("parse subscription %s: %w", filepath.Base(path), err)
	}

	if sub.Quality == "" {
		sub.Quality = QualityMedium
	}

	if err := sub.validate(); err != nil {
		return Subscription{}, fmt.Errorf("subscription %s: %w", filepath.Base(path), err)
	}

	return sub, nil
}

func (s Subscription) validate() error {
	if s.Term == "" {
		return errors.New("term must not be empty")
	}
	if s.Identifier == "" {
		return errors.New("identifier must not be empty")
	}
	if strings.ContainsAny(s.Identifier, `/\`) {
		return errors.New("identifier must not contain path separators")
	}
	if !s.Quality.valid() {
		return fmt.Errorf("unknown quality %q", s.Quality)
	}
	return nil
}

// LoadDir loads every *.toml file in dir. A malformed file is logged and
// skipped so one broken subscription cannot take down the whole run. A
// missing directory simply means no subscriptions yet.
func LoadDir(dir string, logger *log.Logger) ([]Subscription, error) {
	files, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read subscriptions directory: %w", err)
	}

	var subs []Subscription
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".toml") {
			continue
		}

		sub, err := Load(filepath.Join(dir, file.Name()))
		if err != nil {
			logger.Warn("skipping subscription", "file", file.Name(), "err", err)
			continue
		}

		subs = append(subs, sub)
	}

	return subs, nil
}

// Save writes the subscription to dir as <identifier>.toml and returns the
// written path.
func Save(dir string, sub Subscription) (string, error) {
	if err := sub.validate(); err != nil {
		return "", err
	}

	raw, err := toml.Marshal(sub)
	if err != nil {
		return "", fmt.Errorf("encode subscription: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create subscriptions directory: %w", err)
	}

	path := filepath.Join(dir, sub.Identifier+".toml")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", fmt.Errorf("write subscription: %w", err)
	}

	return path, nil
}
