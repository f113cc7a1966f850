package pictogram

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaFS embed.FS

// Cache indexes downloaded pictograms by (term, lang, resolution).
type Cache struct {
	db *sql.DB
}

type Entry struct {
	Term        string
	Lang        string
	Resolution  int
	PictogramID int64
	Path        string
	FetchedAt   time.Time
}

func OpenCache(path string) (*Cache, error) {
	if path == "" {
		return nil, fmt.Errorf("cache path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One writer at a time keeps sqlite from reporting SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := applySchema(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Cache{db: db}, nil
}

func applySchema(ctx context.Context, db *sql.DB) error {
	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}

	if _, err := db.ExecContext(ctx, string(schemaSQL)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

func (c *Cache) Get(ctx context.Context, term, lang string, resolution int) (Entry, bool, error) {
	entry := Entry{Term: normalizeTerm(term), Lang: lang, Resolution: resolution}
	err := c.db.QueryRowContext(ctx,
		"SELECT pictogram_id, path, fetched_at FROM pictograms WHERE term = ? AND lang = ? AND resolution = ?",
		entry.Term, lang, resolution,
	).Scan(&entry.PictogramID, &entry.Path, &entry.FetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("lookup pictogram %q: %w", term, err)
	}
	return entry, true, nil
}

func (c *Cache) Put(ctx context.Context, entry Entry) error {
	if entry.FetchedAt.IsZero() {
		entry.FetchedAt = time.Now()
	}
	_, err := c.db.ExecContext(ctx, `INSERT INTO pictograms (term, lang, resolution, pictogram_id, path, fetched_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (term, lang, resolution) DO UPDATE SET
	pictogram_id = excluded.pictogram_id,
	path = excluded.path,
	fetched_at = excluded.fetched_at`,
		normalizeTerm(entry.Term), entry.Lang, entry.Resolution, entry.PictogramID, entry.Path, entry.FetchedAt,
	)
	if err != nil {
		return fmt.Errorf("store pictogram %q: %w", entry.Term, err)
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, term, lang string, resolution int) error {
	_, err := c.db.ExecContext(ctx,
		"DELETE FROM pictograms WHERE term = ? AND lang = ? AND resolution = ?",
		normalizeTerm(term), lang, resolution,
	)
	return err
}

func normalizeTerm(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}
