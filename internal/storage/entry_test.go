package storage_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"mediathekdl/internal/model"
	"mediathekdl/internal/storage"
)

func openStorage(t *testing.T) (*sqlx.DB, *storage.EntryStorage) {
	t.Helper()

	db, err := storage.Open(filepath.Join(t.TempDir(), "mediathek.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	s := storage.NewEntryStorage(db)
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return db, s
}

func date(t *testing.T, value string) *time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		t.Fatalf("parse date %q: %v", value, err)
	}
	return &parsed
}

func seconds(v int64) *int64 { return &v }

func entry(title, topic, url string, day *time.Time, duration *int64) model.Entry {
	return model.Entry{
		Station:  "ARD",
		Topic:    topic,
		Title:    title,
		Date:     day,
		Duration: duration,
		URL:      url,
	}
}

func TestRefreshAndSearch(t *testing.T) {
	_, s := openStorage(t)
	ctx := context.Background()

	err := s.Refresh(ctx, []model.Entry{
		entry("Tatort: Old", "Tatort", "http://example.com/old.mp4", date(t, "2026-08-01"), seconds(5400)),
		entry("Tatort: New", "Tatort", "http://example.com/new.mp4", date(t, "2026-08-29"), seconds(5200)),
		entry("Tatort: Short clip", "Tatort", "http://example.com/clip.mp4", date(t, "2026-08-30"), seconds(120)),
		entry("Weather", "News", "http://example.com/weather.mp4", date(t, "2026-08-30"), seconds(900)),
	})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}

	got, err := s.Search(ctx, "%Tatort%", 3600)
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got))
	}
	// Most recent first.
	if got[0].Title != "Tatort: New" || got[1].Title != "Tatort: Old" {
		t.Fatalf("unexpected order: %q, %q", got[0].Title, got[1].Title)
	}
}

func TestSearchMatchesTopicToo(t *testing.T) {
	_, s := openStorage(t)
	ctx := context.Background()

	err := s.Refresh(ctx, []model.Entry{
		entry("Episode 12", "Sendung mit der Maus", "http://example.com/12.mp4", date(t, "2026-08-10"), seconds(1800)),
	})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}

	got, err := s.Search(ctx, "%Maus%", 600)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected topic match, got %d candidates", len(got))
	}
}

func TestSearchExcludesUnknownDuration(t *testing.T) {
	_, s := openStorage(t)
	ctx := context.Background()

	err := s.Refresh(ctx, []model.Entry{
		entry("No duration", "Tatort", "http://example.com/a.mp4", date(t, "2026-08-10"), nil),
	})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}

	got, err := s.Search(ctx, "%Tatort%", 0)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("unknown duration must not satisfy duration > threshold, got %d", len(got))
	}
}

func TestSearchReturnsVariantURLs(t *testing.T) {
	_, s := openStorage(t)
	ctx := context.Background()

	e := entry("Episode", "Tatort", "http://example.com/video.mp4", date(t, "2026-08-10"), seconds(5400))
	e.URLHD = "http://example.com/hd.mp4"
	// URLSmall deliberately empty: stored as NULL, read back as "".
	if err := s.Refresh(ctx, []model.Entry{e}); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	got, err := s.Search(ctx, "%Episode%", 0)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(got))
	}
	if got[0].URLSmall != "" {
		t.Fatalf("expected empty small url, got %q", got[0].URLSmall)
	}
	if got[0].URLHD != "http://example.com/hd.mp4" {
		t.Fatalf("unexpected hd url: %q", got[0].URLHD)
	}
	if got[0].Date == nil || !got[0].Date.Equal(*date(t, "2026-08-10")) {
		t.Fatalf("unexpected date: %v", got[0].Date)
	}
}

func TestRefreshReplacesWholeCatalog(t *testing.T) {
	_, s := openStorage(t)
	ctx := context.Background()

	first := []model.Entry{
		entry("A", "T", "http://example.com/a.mp4", nil, seconds(60)),
		entry("B", "T", "http://example.com/b.mp4", nil, seconds(60)),
	}
	if err := s.Refresh(ctx, first); err != nil {
		t.Fatalf("first refresh: %v", err)
	}

	second := []model.Entry{
		entry("C", "T", "http://example.com/c.mp4", nil, seconds(60)),
	}
	if err := s.Refresh(ctx, second); err != nil {
		t.Fatalf("second refresh: %v", err)
	}

	count, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 entry after replace, got %d", count)
	}
}

func TestRefreshFailureKeepsPreviousCatalog(t *testing.T) {
	db, s := openStorage(t)
	ctx := context.Background()

	previous := []model.Entry{
		entry("Keep 1", "T", "http://example.com/keep1.mp4", nil, seconds(60)),
		entry("Keep 2", "T", "http://example.com/keep2.mp4", nil, seconds(60)),
	}
	if err := s.Refresh(ctx, previous); err != nil {
		t.Fatalf("seed refresh: %v", err)
	}

	// Force a failure in the second insert chunk: a unique index plus a
	// duplicate far enough in to land past the first chunk.
	if _, err := db.Exec(`CREATE UNIQUE INDEX entries_url ON mediathek_entries (url)`); err != nil {
		t.Fatalf("create index: %v", err)
	}

	var next []model.Entry
	for i := 0; i < 600; i++ {
		next = append(next, entry(
			fmt.Sprintf("Entry %d", i), "T",
			fmt.Sprintf("http://example.com/v%d.mp4", i),
			nil, seconds(60),
		))
	}
	next[550].URL = next[0].URL

	if err := s.Refresh(ctx, next); err == nil {
		t.Fatal("expected refresh to fail on duplicate url")
	}

	count, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("failed refresh must keep previous catalog, got %d entries", count)
	}

	got, err := s.Search(ctx, "Keep 1", 0)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("previous rows must survive the rollback, got %d", len(got))
	}
}
