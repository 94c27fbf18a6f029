package store

import (
	"context"
	"errors"
	"testing"

	"github.com/pedalworks/rosterd/internal/mapping"
	"github.com/pedalworks/rosterd/internal/roster"
)

func newRider(first, last string) *roster.Record {
	rec := roster.NewRecord(roster.Riders)
	rec.SetField(roster.FieldFirstName, first)
	rec.SetField(roster.FieldLastName, last)
	return rec
}

func TestMemoryReplaceAllAndList(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()

	b := newRider("Bob", "Zimmer")
	a := newRider("Alice", "Adams")
	failed, err := mem.ReplaceAll(ctx, roster.Riders, []*roster.Record{b, a})
	if err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}
	if len(failed) != 0 {
		t.Fatalf("ReplaceAll() failed = %v", failed)
	}

	got, err := mem.List(ctx, roster.Riders)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("List() returned %d records", len(got))
	}
	// Ordered by last name.
	if got[0].LastName != "Adams" || got[1].LastName != "Zimmer" {
		t.Errorf("List() order = %q, %q", got[0].LastName, got[1].LastName)
	}

	// Entity types are isolated.
	coaches, err := mem.List(ctx, roster.Coaches)
	if err != nil {
		t.Fatalf("List(coaches) error = %v", err)
	}
	if len(coaches) != 0 {
		t.Errorf("coaches roster should be empty, got %d", len(coaches))
	}
}

func TestMemoryReplaceAllUpserts(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()

	rec := newRider("Alice", "Smith")
	if _, err := mem.ReplaceAll(ctx, roster.Riders, []*roster.Record{rec}); err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}

	// Saving an updated copy under the same ID replaces, not duplicates.
	updated := rec.Clone()
	updated.SetField(roster.FieldPhone, "5550100100")
	if _, err := mem.ReplaceAll(ctx, roster.Riders, []*roster.Record{updated}); err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}

	got, err := mem.Get(ctx, roster.Riders, rec.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Field(roster.FieldPhone) != "5550100100" {
		t.Errorf("upsert lost the update: %q", got.Field(roster.FieldPhone))
	}

	all, _ := mem.List(ctx, roster.Riders)
	if len(all) != 1 {
		t.Errorf("List() = %d records, want 1", len(all))
	}
}

func TestMemoryListReturnsCopies(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	rec := newRider("Alice", "Smith")
	mem.ReplaceAll(ctx, roster.Riders, []*roster.Record{rec})

	got, _ := mem.List(ctx, roster.Riders)
	got[0].SetField(roster.FieldPhone, "tampered")

	fresh, _ := mem.Get(ctx, roster.Riders, rec.ID)
	if fresh.Field(roster.FieldPhone) == "tampered" {
		t.Error("List() must return copies, not store-owned records")
	}
}

func TestMemorySetArchived(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	rec := newRider("Alice", "Smith")
	mem.ReplaceAll(ctx, roster.Riders, []*roster.Record{rec})

	got, err := mem.SetArchived(ctx, roster.Riders, rec.ID, true)
	if err != nil {
		t.Fatalf("SetArchived() error = %v", err)
	}
	if !got.Archived {
		t.Error("SetArchived(true) did not archive")
	}

	if _, err := mem.SetArchived(ctx, roster.Riders, "missing", true); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetArchived(missing) error = %v, want ErrNotFound", err)
	}
}

func TestMemoryMappingRoundTrip(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()

	if _, err := mem.LoadMapping(ctx, roster.Riders); !errors.Is(err, ErrNotFound) {
		t.Fatalf("LoadMapping(empty) error = %v, want ErrNotFound", err)
	}

	m := mapping.Default(roster.Riders)
	col := 0
	m.Fields[roster.FieldFirstName] = &col
	m.CSVHeaders = []string{"First Name"}
	if err := mem.SaveMapping(ctx, m); err != nil {
		t.Fatalf("SaveMapping() error = %v", err)
	}

	got, err := mem.LoadMapping(ctx, roster.Riders)
	if err != nil {
		t.Fatalf("LoadMapping() error = %v", err)
	}
	if got.Fields[roster.FieldFirstName] == nil || *got.Fields[roster.FieldFirstName] != 0 {
		t.Errorf("mapping lost its bindings: %v", got.Fields)
	}

	// Mutating the loaded copy does not touch the stored one.
	one := 1
	got.Fields[roster.FieldFirstName] = &one
	again, _ := mem.LoadMapping(ctx, roster.Riders)
	if *again.Fields[roster.FieldFirstName] != 0 {
		t.Error("LoadMapping() must return copies")
	}
}
