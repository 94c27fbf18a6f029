package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pedalworks/rosterd/internal/mapping"
	"github.com/pedalworks/rosterd/internal/roster"
)

// SQLiteCache mirrors field mappings into an embedded local database so
// the import screen can load its configuration even when the canonical
// store is slow or briefly unreachable.
type SQLiteCache struct {
	db *sql.DB
}

var _ Mappings = (*SQLiteCache)(nil)

// OpenSQLiteCache opens (or creates) the cache file and its schema.
func OpenSQLiteCache(path string) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open mapping cache %s: %w", path, err)
	}
	const ddl = `
CREATE TABLE IF NOT EXISTS mappings (
    entity_type TEXT PRIMARY KEY,
    doc         TEXT NOT NULL,
    updated_at  TEXT NOT NULL
);`
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("init mapping cache: %w", err)
	}
	return &SQLiteCache{db: db}, nil
}

func (c *SQLiteCache) Close() error { return c.db.Close() }

func (c *SQLiteCache) LoadMapping(ctx context.Context, entity roster.EntityType) (*mapping.Mapping, error) {
	var doc string
	err := c.db.QueryRowContext(ctx,
		`SELECT doc FROM mappings WHERE entity_type = ?`, string(entity)).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cache load mapping %s: %w", entity, err)
	}
	var m mapping.Mapping
	if err := json.Unmarshal([]byte(doc), &m); err != nil {
		return nil, fmt.Errorf("cache decode mapping %s: %w", entity, err)
	}
	return &m, nil
}

func (c *SQLiteCache) SaveMapping(ctx context.Context, m *mapping.Mapping) error {
	doc, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("cache encode mapping %s: %w", m.EntityType, err)
	}
	_, err = c.db.ExecContext(ctx, `
INSERT INTO mappings (entity_type, doc, updated_at) VALUES (?, ?, ?)
ON CONFLICT (entity_type) DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at`,
		string(m.EntityType), string(doc), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("cache save mapping %s: %w", m.EntityType, err)
	}
	return nil
}

// CachedMappings writes mappings through to the canonical store and
// the local cache, and reads from the cache first. A cache miss or a
// cache read error falls through to the canonical store; a cache write
// error is ignored because the canonical copy already succeeded.
type CachedMappings struct {
	Primary Mappings
	Cache   *SQLiteCache
}

var _ Mappings = (*CachedMappings)(nil)

func (c *CachedMappings) LoadMapping(ctx context.Context, entity roster.EntityType) (*mapping.Mapping, error) {
	if c.Cache != nil {
		if m, err := c.Cache.LoadMapping(ctx, entity); err == nil {
			return m, nil
		}
	}
	m, err := c.Primary.LoadMapping(ctx, entity)
	if err != nil {
		return nil, err
	}
	if c.Cache != nil {
		_ = c.Cache.SaveMapping(ctx, m)
	}
	return m, nil
}

func (c *CachedMappings) SaveMapping(ctx context.Context, m *mapping.Mapping) error {
	if err := c.Primary.SaveMapping(ctx, m); err != nil {
		return err
	}
	if c.Cache != nil {
		_ = c.Cache.SaveMapping(ctx, m)
	}
	return nil
}
