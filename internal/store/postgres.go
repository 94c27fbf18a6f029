package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pedalworks/rosterd/internal/mapping"
	"github.com/pedalworks/rosterd/internal/roster"
)

// Postgres is the canonical store, one row per roster record and one
// row per entity mapping. Records are upserted by ID and never hard
// deleted; removal from the roster is expressed as archiving.
type Postgres struct {
	pool *pgxpool.Pool
}

var (
	_ Roster   = (*Postgres)(nil)
	_ Mappings = (*Postgres)(nil)
)

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// EnsureSchema creates the tables when they do not exist yet.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS roster_records (
    id          UUID PRIMARY KEY,
    entity_type TEXT NOT NULL,
    first_name  TEXT NOT NULL DEFAULT '',
    last_name   TEXT NOT NULL DEFAULT '',
    fields      JSONB NOT NULL DEFAULT '{}'::jsonb,
    additional  JSONB NOT NULL DEFAULT '{}'::jsonb,
    archived    BOOLEAN NOT NULL DEFAULT FALSE,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS roster_records_entity_idx ON roster_records (entity_type, archived);

CREATE TABLE IF NOT EXISTS roster_mappings (
    entity_type TEXT PRIMARY KEY,
    doc         JSONB NOT NULL,
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);`
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *Postgres) List(ctx context.Context, entity roster.EntityType) ([]*roster.Record, error) {
	const query = `
SELECT id, entity_type, first_name, last_name, fields, additional, archived, created_at, updated_at
FROM roster_records
WHERE entity_type = $1
ORDER BY lower(last_name), lower(first_name)`
	rows, err := s.pool.Query(ctx, query, string(entity))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", entity, err)
	}
	defer rows.Close()

	var out []*roster.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Postgres) Get(ctx context.Context, entity roster.EntityType, id string) (*roster.Record, error) {
	const query = `
SELECT id, entity_type, first_name, last_name, fields, additional, archived, created_at, updated_at
FROM roster_records
WHERE entity_type = $1 AND id = $2`
	rec, err := scanRecord(s.pool.QueryRow(ctx, query, string(entity), id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rec, err
}

func (s *Postgres) ReplaceAll(ctx context.Context, entity roster.EntityType, records []*roster.Record) ([]RecordError, error) {
	const query = `
INSERT INTO roster_records (id, entity_type, first_name, last_name, fields, additional, archived, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO UPDATE SET
    first_name = EXCLUDED.first_name,
    last_name  = EXCLUDED.last_name,
    fields     = EXCLUDED.fields,
    additional = EXCLUDED.additional,
    archived   = EXCLUDED.archived,
    updated_at = EXCLUDED.updated_at`

	var failed []RecordError
	for _, rec := range records {
		fields, err := json.Marshal(rec.Fields)
		if err != nil {
			failed = append(failed, RecordError{ID: rec.ID, Name: rec.Name, Err: err.Error()})
			continue
		}
		additional, err := json.Marshal(rec.Additional)
		if err != nil {
			failed = append(failed, RecordError{ID: rec.ID, Name: rec.Name, Err: err.Error()})
			continue
		}
		_, err = s.pool.Exec(ctx, query,
			rec.ID, string(entity), rec.FirstName, rec.LastName,
			fields, additional, rec.Archived, rec.CreatedAt, rec.UpdatedAt)
		if err != nil {
			if ctx.Err() != nil {
				return failed, ctx.Err()
			}
			failed = append(failed, RecordError{ID: rec.ID, Name: rec.Name, Err: err.Error()})
		}
	}
	return failed, nil
}

func (s *Postgres) SetArchived(ctx context.Context, entity roster.EntityType, id string, archived bool) (*roster.Record, error) {
	const query = `
UPDATE roster_records
SET archived = $3, updated_at = now()
WHERE entity_type = $1 AND id = $2
RETURNING id, entity_type, first_name, last_name, fields, additional, archived, created_at, updated_at`
	rec, err := scanRecord(s.pool.QueryRow(ctx, query, string(entity), id, archived))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rec, err
}

func (s *Postgres) LoadMapping(ctx context.Context, entity roster.EntityType) (*mapping.Mapping, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx,
		`SELECT doc FROM roster_mappings WHERE entity_type = $1`, string(entity)).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load mapping %s: %w", entity, err)
	}
	var m mapping.Mapping
	if err := json.Unmarshal(doc, &m); err != nil {
		return nil, fmt.Errorf("decode mapping %s: %w", entity, err)
	}
	return &m, nil
}

func (s *Postgres) SaveMapping(ctx context.Context, m *mapping.Mapping) error {
	doc, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode mapping %s: %w", m.EntityType, err)
	}
	_, err = s.pool.Exec(ctx, `
INSERT INTO roster_mappings (entity_type, doc, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (entity_type) DO UPDATE SET doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at`,
		string(m.EntityType), doc, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save mapping %s: %w", m.EntityType, err)
	}
	return nil
}

func scanRecord(row pgx.Row) (*roster.Record, error) {
	var (
		rec        roster.Record
		entity     string
		fields     []byte
		additional []byte
	)
	err := row.Scan(&rec.ID, &entity, &rec.FirstName, &rec.LastName,
		&fields, &additional, &rec.Archived, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	rec.EntityType = roster.EntityType(entity)
	if err := json.Unmarshal(fields, &rec.Fields); err != nil {
		return nil, fmt.Errorf("decode fields for %s: %w", rec.ID, err)
	}
	if err := json.Unmarshal(additional, &rec.Additional); err != nil {
		return nil, fmt.Errorf("decode additional for %s: %w", rec.ID, err)
	}
	rec.Name = rec.FirstName
	if rec.LastName != "" {
		if rec.Name != "" {
			rec.Name += " "
		}
		rec.Name += rec.LastName
	}
	return &rec, nil
}
