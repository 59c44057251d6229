package infrastructure

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"

	"github.com/sglre6355/potbot/internal/modules/playlist/domain"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// CacheIndex records materialized media files in sqlite.
// It is the source of truth for eviction order, never for existence: callers stat the file.
type CacheIndex struct {
	db  *sql.DB
	now func() time.Time
}

// OpenCacheIndex opens (or creates) the index database at path and applies pending migrations.
func OpenCacheIndex(path string) (*CacheIndex, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open cache index: %w", err)
	}

	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &CacheIndex{db: db, now: time.Now}, nil
}

func runMigrations(db *sql.DB) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("sqlite driver: %w", err)
	}

	source, err := iofs.New(embeddedMigrations, "migrations")
	if err != nil {
		return fmt.Errorf("iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("migrate init: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (i *CacheIndex) Close() error {
	return i.db.Close()
}

// Touch records an access to key, inserting the entry with size bytes when it is new.
func (i *CacheIndex) Touch(ctx context.Context, key domain.CacheKey, size int64) error {
	extractor, id := key.Segments()
	now := i.now().UnixNano()

	_, err := i.db.ExecContext(ctx, `
		INSERT INTO media_cache (extractor, id, bytes, accessed_at, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (extractor, id) DO UPDATE SET bytes = excluded.bytes, accessed_at = excluded.accessed_at`,
		extractor, id, size, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to touch %s: %w", key, err)
	}
	return nil
}

// Remove deletes the entry for key.
func (i *CacheIndex) Remove(ctx context.Context, key domain.CacheKey) error {
	extractor, id := key.Segments()

	_, err := i.db.ExecContext(ctx, `DELETE FROM media_cache WHERE extractor = ? AND id = ?`, extractor, id)
	if err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

// TotalBytes returns the summed size of every indexed entry.
func (i *CacheIndex) TotalBytes(ctx context.Context) (int64, error) {
	var total int64
	row := i.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(bytes), 0) FROM media_cache`)
	if err := row.Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum cache size: %w", err)
	}
	return total, nil
}

// Oldest returns the least recently used entry not listed in keep.
// The boolean is false when no such entry exists.
func (i *CacheIndex) Oldest(ctx context.Context, keep ...domain.CacheKey) (domain.CacheKey, bool, error) {
	kept := make(map[domain.CacheKey]bool, len(keep))
	for _, key := range keep {
		extractor, id := key.Segments()
		kept[domain.CacheKey{Extractor: extractor, ID: id}] = true
	}

	rows, err := i.db.QueryContext(ctx, `SELECT extractor, id FROM media_cache ORDER BY accessed_at ASC`)
	if err != nil {
		return domain.CacheKey{}, false, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key domain.CacheKey
		if err := rows.Scan(&key.Extractor, &key.ID); err != nil {
			return domain.CacheKey{}, false, fmt.Errorf("failed to scan entry: %w", err)
		}
		if !kept[key] {
			return key, true, nil
		}
	}
	if err := rows.Err(); err != nil {
		return domain.CacheKey{}, false, fmt.Errorf("failed to find oldest entry: %w", err)
	}
	return domain.CacheKey{}, false, nil
}
