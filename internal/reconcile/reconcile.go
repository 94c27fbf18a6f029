// Package reconcile pairs incoming CSV rows with existing roster
// records and turns the result into a staged, reviewable mutation.
// Reconciliation itself is pure: it reads the current roster, produces
// a PendingReconciliation, and touches nothing. Only Apply mutates the
// store, and it does so as one bulk replace.
package reconcile

import (
	"sort"
	"time"

	"github.com/pedalworks/rosterd/internal/mapping"
	"github.com/pedalworks/rosterd/internal/match"
	"github.com/pedalworks/rosterd/internal/roster"
)

// MatchedUpdate is one accepted pairing: the existing record, the
// merged copy carrying the incoming data, and the field-level diffs
// that drive the review screen.
type MatchedUpdate struct {
	Existing *roster.Record  `json:"existing"`
	Updated  *roster.Record  `json:"updated"`
	Incoming roster.Incoming `json:"incoming"`
	Score    float64         `json:"score"`
	Type     match.Type      `json:"matchType"`
	Diffs    []FieldDiff     `json:"diffs"`
}

// Counts summarizes a reconciliation pass.
type Counts struct {
	Incoming int `json:"incoming"`
	Matched  int `json:"matched"`
	Added    int `json:"added"`
	Missing  int `json:"missing"`
	Archived int `json:"archived"`
}

// Pending is the staged output of one reconciliation pass. It is the
// only state bridging the match phase and the apply phase and lives
// until the operator applies or discards it.
type Pending struct {
	Entity  roster.EntityType `json:"entityType"`
	Mapping *mapping.Mapping  `json:"-"`

	// Matches are existing records merged with incoming data.
	Matches []MatchedUpdate `json:"matches"`

	// Missing are active existing records absent from the CSV; their
	// default disposition at apply time is archive.
	Missing []*roster.Record `json:"missing"`

	// Added are incoming rows with no accepted match; their default
	// disposition is import.
	Added []roster.Incoming `json:"added"`

	// Archived records pass through every reconciliation unchanged.
	Archived []*roster.Record `json:"-"`

	// Original snapshots the roster before any change.
	Original []*roster.Record `json:"-"`

	MatchedIDs map[string]bool `json:"-"`
	Counts     Counts          `json:"counts"`
	StagedAt   time.Time       `json:"stagedAt"`
}

// candidateMatch links an incoming row index to a scored candidate
// during the greedy assignment pass.
type candidateMatch struct {
	row    int
	result *match.Result
}

// Reconcile runs the full matching pass: score every incoming record
// against the active pool, assign matches greedily one-to-one with the
// highest score winning conflicts, merge accepted matches, and
// classify the leftovers. Rows with no usable name were already
// dropped by mapping.Apply.
func Reconcile(incoming []roster.Incoming, existing []*roster.Record, m *mapping.Mapping, opts match.Options) *Pending {
	active := make([]*roster.Record, 0, len(existing))
	archived := make([]*roster.Record, 0)
	for _, rec := range existing {
		if rec.Archived {
			archived = append(archived, rec)
		} else {
			active = append(active, rec)
		}
	}

	// Score phase: collect every above-threshold candidate.
	var candidates []candidateMatch
	for i, inc := range incoming {
		if res := match.FindBestMatch(inc, active, opts); res != nil {
			candidates = append(candidates, candidateMatch{row: i, result: res})
		}
	}

	// Greedy one-to-one assignment, highest score first. SliceStable
	// keeps equal scores in row order so reruns are deterministic.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].result.Score > candidates[j].result.Score
	})

	usedRecords := make(map[string]bool)
	usedRows := make(map[int]bool)
	accepted := make(map[int]*match.Result)
	for _, c := range candidates {
		if usedRecords[c.result.Record.ID] || usedRows[c.row] {
			continue
		}
		usedRecords[c.result.Record.ID] = true
		usedRows[c.row] = true
		accepted[c.row] = c.result
	}

	pending := &Pending{
		Entity:     m.EntityType,
		Mapping:    m,
		Archived:   archived,
		MatchedIDs: usedRecords,
		StagedAt:   time.Now().UTC(),
	}
	for _, rec := range existing {
		pending.Original = append(pending.Original, rec.Clone())
	}

	// Merge accepted matches; everything else incoming is an add.
	for i, inc := range incoming {
		res, ok := accepted[i]
		if !ok {
			pending.Added = append(pending.Added, inc)
			continue
		}
		updated := mergeIncoming(res.Record, inc, m)
		pending.Matches = append(pending.Matches, MatchedUpdate{
			Existing: res.Record,
			Updated:  updated,
			Incoming: inc,
			Score:    res.Score,
			Type:     res.Type,
			Diffs:    fieldDiffs(m.EntityType, res.Record, updated),
		})
	}

	// Active records nobody claimed are flagged missing.
	for _, rec := range active {
		if !usedRecords[rec.ID] {
			pending.Missing = append(pending.Missing, rec)
		}
	}

	pending.Counts = Counts{
		Incoming: len(incoming),
		Matched:  len(pending.Matches),
		Added:    len(pending.Added),
		Missing:  len(pending.Missing),
		Archived: len(archived),
	}
	return pending
}

// mergeIncoming folds incoming values into a copy of an existing
// record. A field under the keep action is never touched; a field
// under clear is blanked when it has no mapped column; otherwise an
// incoming value overwrites only when non-empty and different. Name
// parts are always taken from the incoming row when present.
func mergeIncoming(existing *roster.Record, inc roster.Incoming, m *mapping.Mapping) *roster.Record {
	updated := existing.Clone()
	updated.UpdatedAt = time.Now().UTC()

	if inc.FirstName != "" || inc.LastName != "" {
		updated.SetField(roster.FieldFirstName, inc.FirstName)
		updated.SetField(roster.FieldLastName, inc.LastName)
	}

	for _, def := range roster.FieldsFor(m.EntityType) {
		if def.Key == roster.FieldFirstName || def.Key == roster.FieldLastName {
			continue
		}
		switch m.UnmappedFieldActions[def.Key] {
		case mapping.ActionKeep:
			continue
		case mapping.ActionClear:
			if _, bound := inc.Fields[def.Key]; !bound {
				updated.SetField(def.Key, "")
				continue
			}
		}
		incVal, ok := inc.Fields[def.Key]
		if !ok || incVal == "" {
			// Never replace a non-empty existing value with nothing.
			continue
		}
		if incVal != updated.Field(def.Key) {
			updated.SetField(def.Key, incVal)
		}
	}

	for name, val := range inc.Additional {
		if val == "" {
			continue
		}
		if updated.Additional == nil {
			updated.Additional = make(map[string]string)
		}
		updated.Additional[name] = val
	}

	return updated
}
