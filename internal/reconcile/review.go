package reconcile

import (
	"time"

	"github.com/pedalworks/rosterd/internal/roster"
)

// AddedAction decides what happens to an unmatched incoming row:
// import it, skip it, or import it directly into the archive.
type AddedAction string

const (
	AddedImport  AddedAction = "import"
	AddedSkip    AddedAction = "skip"
	AddedArchive AddedAction = "archive"
)

// MissingAction decides what happens to an active record the CSV no
// longer contains.
type MissingAction string

const (
	MissingArchive MissingAction = "archive"
	MissingRetain  MissingAction = "retain"
)

// Decisions carries the operator's review choices. Every map is
// optional; an absent entry means the default: incoming values win on
// matched fields, unmatched incoming rows are imported, and missing
// records are archived.
type Decisions struct {
	// RejectedFields maps record ID to the set of field keys where the
	// operator chose to keep the existing value instead of the
	// incoming one.
	RejectedFields map[string]map[string]bool `json:"rejectedFields,omitempty"`

	Added   map[int]AddedAction      `json:"added,omitempty"`
	Missing map[string]MissingAction `json:"missing,omitempty"`
}

func (d Decisions) rejected(recordID, key string) bool {
	return d.RejectedFields[recordID][key]
}

func (d Decisions) addedAction(row int) AddedAction {
	if a, ok := d.Added[row]; ok {
		return a
	}
	return AddedImport
}

func (d Decisions) missingAction(recordID string) MissingAction {
	if a, ok := d.Missing[recordID]; ok {
		return a
	}
	return MissingArchive
}

// Resolve turns a staged reconciliation plus review decisions into the
// final roster. Matched records keep or take each field per decision,
// unmatched incoming rows become new records unless skipped or sent
// straight to the archive, missing
// records are archived unless retained, and already-archived records
// pass through untouched. Resolve does not mutate the pending state,
// so a failed apply can be retried with different decisions.
func Resolve(pending *Pending, decisions Decisions) []*roster.Record {
	now := time.Now().UTC()
	final := make([]*roster.Record, 0, len(pending.Original)+len(pending.Added))

	for _, mu := range pending.Matches {
		rec := mu.Updated.Clone()
		for _, diff := range mu.Diffs {
			if !decisions.rejected(mu.Existing.ID, diff.Key) {
				continue
			}
			if diff.Additional {
				if diff.Old == "" {
					delete(rec.Additional, diff.Key)
				} else {
					rec.Additional[diff.Key] = diff.Old
				}
				continue
			}
			rec.SetField(diff.Key, diff.Old)
		}
		final = append(final, rec)
	}

	for _, rec := range pending.Missing {
		kept := rec.Clone()
		if decisions.missingAction(rec.ID) == MissingArchive {
			kept.Archived = true
			kept.UpdatedAt = now
		}
		final = append(final, kept)
	}

	for _, inc := range pending.Added {
		action := decisions.addedAction(inc.Row)
		if action == AddedSkip {
			continue
		}
		rec := inc.ToRecord(pending.Entity)
		if action == AddedArchive {
			rec.Archived = true
		}
		final = append(final, rec)
	}

	for _, rec := range pending.Archived {
		final = append(final, rec.Clone())
	}

	return final
}
