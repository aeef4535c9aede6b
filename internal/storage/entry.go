package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"

	"mediathekdl/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS mediathek_entries (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	station        TEXT NOT NULL,
	topic          TEXT NOT NULL,
	title          TEXT NOT NULL,
	date           TEXT,
	time           TEXT,
	duration       INTEGER,
	size           TEXT NOT NULL,
	description    TEXT NOT NULL,
	url            TEXT NOT NULL,
	website        TEXT NOT NULL,
	url_subtitles  TEXT NOT NULL,
	url_rtmp       TEXT NOT NULL,
	url_small      TEXT,
	url_rtmp_small TEXT NOT NULL,
	url_hd         TEXT,
	url_rtmp_hd    TEXT NOT NULL,
	datuml         TEXT NOT NULL,
	url_history    TEXT NOT NULL,
	geo            TEXT NOT NULL,
	"new"          TEXT NOT NULL
)`

const insertEntry = `
INSERT INTO mediathek_entries (
	station, topic, title, date, time, duration, size, description,
	url, website, url_subtitles, url_rtmp, url_small, url_rtmp_small,
	url_hd, url_rtmp_hd, datuml, url_history, geo, "new"
) VALUES (
	:station, :topic, :title, :date, :time, :duration, :size, :description,
	:url, :website, :url_subtitles, :url_rtmp, :url_small, :url_rtmp_small,
	:url_hd, :url_rtmp_hd, :datuml, :url_history, :geo, :new
)`

// insertChunkSize keeps one multi-row INSERT well below sqlite's bound
// parameter limit (20 columns per row).
const insertChunkSize = 500

// ISO date text sorts chronologically, which the search ordering relies on.
const (
	dateColumnLayout  = "2006-01-02"
	clockColumnLayout = "15:04:05"
)

type EntryStorage struct {
	db *sqlx.DB
}

func NewEntryStorage(db *sqlx.DB) *EntryStorage {
	return &EntryStorage{db: db}
}

// Init creates the catalog table if it does not exist yet.
func (s *EntryStorage) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create catalog schema: %w", err)
	}
	return nil
}

// Refresh replaces the whole catalog with entries inside one transaction:
// a concurrent reader sees either the previous catalog or the new one,
// never an empty table in between. Any failure rolls back to the previous
// contents.
func (s *EntryStorage) Refresh(ctx context.Context, entries []model.Entry) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin refresh: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM mediathek_entries`); err != nil {
		return fmt.Errorf("clear catalog: %w", err)
	}

	rows := lo.Map(entries, func(e model.Entry, _ int) dbEntry {
		return toDBEntry(e)
	})

	for _, chunk := range lo.Chunk(rows, insertChunkSize) {
		if _, err := tx.NamedExecContext(ctx, insertEntry, chunk); err != nil {
			return fmt.Errorf("insert entries: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit refresh: %w", err)
	}

	return nil
}

// Search returns the catalog rows a subscription matches: term is used
// verbatim as a SQL LIKE pattern (ASCII case-insensitive in sqlite) over
// title or topic, and only entries strictly longer than minDuration
// qualify. Entries with unknown duration never match. Results come most
// recent first; unknown dates sort last, ties stay in insertion order.
func (s *EntryStorage) Search(ctx context.Context, term string, minDuration int64) ([]model.Candidate, error) {
	var rows []dbCandidate
	err := s.db.SelectContext(ctx, &rows, `
		SELECT title, date, url, url_small, url_hd
		FROM mediathek_entries
		WHERE (title LIKE ? OR topic LIKE ?) AND duration > ?
		ORDER BY date DESC, id ASC`,
		term, term, minDuration,
	)
	if err != nil {
		return nil, fmt.Errorf("search catalog: %w", err)
	}

	return lo.Map(rows, func(row dbCandidate, _ int) model.Candidate {
		return model.Candidate{
			Title:    row.Title,
			Date:     dateFromColumn(row.Date),
			URL:      row.URL,
			URLSmall: row.URLSmall.String,
			URLHD:    row.URLHD.String,
		}
	}), nil
}

// Count reports the number of catalog rows.
func (s *EntryStorage) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM mediathek_entries`); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return count, nil
}

// dbEntry mirrors the mediathek_entries columns for sqlx binding.
type dbEntry struct {
	Station      string         `db:"station"`
	Topic        string         `db:"topic"`
	Title        string         `db:"title"`
	Date         sql.NullString `db:"date"`
	AirTime      sql.NullString `db:"time"`
	Duration     sql.NullInt64  `db:"duration"`
	Size         string         `db:"size"`
	Description  string         `db:"description"`
	URL          string         `db:"url"`
	Website      string         `db:"website"`
	URLSubtitles string         `db:"url_subtitles"`
	URLRTMP      string         `db:"url_rtmp"`
	URLSmall     sql.NullString `db:"url_small"`
	URLRTMPSmall string         `db:"url_rtmp_small"`
	URLHD        sql.NullString `db:"url_hd"`
	URLRTMPHD    string         `db:"url_rtmp_hd"`
	DatumL       string         `db:"datuml"`
	URLHistory   string         `db:"url_history"`
	Geo          string         `db:"geo"`
	New          string         `db:"new"`
}

type dbCandidate struct {
	Title    string         `db:"title"`
	Date     sql.NullString `db:"date"`
	URL      string         `db:"url"`
	URLSmall sql.NullString `db:"url_small"`
	URLHD    sql.NullString `db:"url_hd"`
}

func toDBEntry(e model.Entry) dbEntry {
	return dbEntry{
		Station:      e.Station,
		Topic:        e.Topic,
		Title:        e.Title,
		Date:         timeColumn(e.Date, dateColumnLayout),
		AirTime:      timeColumn(e.AirTime, clockColumnLayout),
		Duration:     int64Column(e.Duration),
		Size:         e.Size,
		Description:  e.Description,
		URL:          e.URL,
		Website:      e.Website,
		URLSubtitles: e.URLSubtitles,
		URLRTMP:      e.URLRTMP,
		URLSmall:     stringColumn(e.URLSmall),
		URLRTMPSmall: e.URLRTMPSmall,
		URLHD:        stringColumn(e.URLHD),
		URLRTMPHD:    e.URLRTMPHD,
		DatumL:       e.DatumL,
		URLHistory:   e.URLHistory,
		Geo:          e.Geo,
		New:          e.New,
	}
}

func timeColumn(t *time.Time, layout string) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(layout), Valid: true}
}

func int64Column(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

// stringColumn stores an absent variant URL as NULL rather than "".
func stringColumn(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func dateFromColumn(col sql.NullString) *time.Time {
	if !col.Valid {
		return nil
	}
	t, err := time.Parse(dateColumnLayout, col.String)
	if err != nil {
		return nil
	}
	return &t
}
