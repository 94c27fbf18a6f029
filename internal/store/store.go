// Package store persists roster records and field mappings. The
// canonical store is Postgres; an embedded SQLite database mirrors
// mappings locally so the import screen can load its configuration
// without a round trip. A memory implementation backs tests.
package store

import (
	"context"
	"errors"

	"github.com/pedalworks/rosterd/internal/mapping"
	"github.com/pedalworks/rosterd/internal/roster"
)

// ErrNotFound is returned when a record or mapping does not exist.
var ErrNotFound = errors.New("store: not found")

// RecordError reports one record that could not be saved during a bulk
// replace. The rest of the batch still goes through.
type RecordError struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Err  string `json:"error"`
}

// Roster is the persistence surface for roster records.
type Roster interface {
	// List returns every record of the entity type, archived included,
	// ordered by last name then first name.
	List(ctx context.Context, entity roster.EntityType) ([]*roster.Record, error)

	// Get returns one record by ID.
	Get(ctx context.Context, entity roster.EntityType, id string) (*roster.Record, error)

	// ReplaceAll saves the given records as the new roster for the
	// entity type, upserting each one. Records absent from the slice
	// are left in place, never deleted. Individual save failures are
	// collected per record; the returned error covers failures that
	// abort the whole batch.
	ReplaceAll(ctx context.Context, entity roster.EntityType, records []*roster.Record) ([]RecordError, error)

	// SetArchived flips the archived flag on one record.
	SetArchived(ctx context.Context, entity roster.EntityType, id string, archived bool) (*roster.Record, error)
}

// Mappings is the persistence surface for field mappings, one per
// entity type.
type Mappings interface {
	LoadMapping(ctx context.Context, entity roster.EntityType) (*mapping.Mapping, error)
	SaveMapping(ctx context.Context, m *mapping.Mapping) error
}
