package reconcile

import (
	"context"
	"log/slog"
	"time"

	"github.com/pedalworks/rosterd/internal/notify"
	"github.com/pedalworks/rosterd/internal/store"
)

// ApplyResult summarizes an apply: final roster size, the review
// counts, and any records whose save failed. A non-empty Failed list
// means the apply went through partially; the pending state is kept by
// the caller so the operator can retry.
type ApplyResult struct {
	Counts    Counts              `json:"counts"`
	Total     int                 `json:"total"`
	Failed    []store.RecordError `json:"failed,omitempty"`
	AppliedAt time.Time           `json:"appliedAt"`
}

// Apply resolves the staged reconciliation with the operator's
// decisions and persists the result. The mapping that produced the
// pass is snapshotted alongside so the next import starts from the
// headers that were last applied. Save failures on individual records
// are reported, not fatal; other records still land.
func Apply(ctx context.Context, log *slog.Logger, pending *Pending, decisions Decisions,
	rosterStore store.Roster, mappings store.Mappings, notifier notify.Notifier) (*ApplyResult, error) {

	final := Resolve(pending, decisions)

	failed, err := rosterStore.ReplaceAll(ctx, pending.Entity, final)
	if err != nil {
		return nil, err
	}
	if len(failed) > 0 {
		log.Warn("apply saved with record failures",
			"entity", pending.Entity, "failed", len(failed), "total", len(final))
	}

	if mappings != nil && pending.Mapping != nil {
		if err := mappings.SaveMapping(ctx, pending.Mapping); err != nil {
			log.Warn("mapping snapshot not saved", "entity", pending.Entity, "error", err)
		}
	}

	if notifier != nil {
		ev := notify.Event{
			Entity:   pending.Entity,
			Action:   "reconcile-applied",
			Updated:  pending.Counts.Matched,
			Added:    pending.Counts.Added,
			Archived: pending.Counts.Missing,
		}
		if err := notifier.Publish(ctx, ev); err != nil {
			log.Warn("roster event not published", "entity", pending.Entity, "error", err)
		}
	}

	return &ApplyResult{
		Counts:    pending.Counts,
		Total:     len(final),
		Failed:    failed,
		AppliedAt: time.Now().UTC(),
	}, nil
}
