package reconcile

import (
	"sort"
	"strings"

	"github.com/pedalworks/rosterd/internal/match"
	"github.com/pedalworks/rosterd/internal/roster"
)

// FieldDiff is one visible change on a matched record. Only fields
// whose normalized values actually differ produce a diff; cosmetic
// differences (surrounding whitespace, gender spelled out vs. its
// canonical code) are suppressed.
type FieldDiff struct {
	Key        string `json:"key"`
	Label      string `json:"label"`
	Old        string `json:"old"`
	New        string `json:"new"`
	Additional bool   `json:"additional,omitempty"`
}

// fieldDiffs lists the changes between an existing record and its
// merged update, canonical fields in registry order followed by
// additional fields in name order.
func fieldDiffs(entity roster.EntityType, existing, updated *roster.Record) []FieldDiff {
	var diffs []FieldDiff

	for _, def := range roster.FieldsFor(entity) {
		if def.Key == roster.FieldName {
			// Derived from the parts; diffing it would double-report.
			continue
		}
		oldVal := existing.Field(def.Key)
		newVal := updated.Field(def.Key)
		if equivalent(def.Key, oldVal, newVal) {
			continue
		}
		diffs = append(diffs, FieldDiff{
			Key:   def.Key,
			Label: def.Label,
			Old:   oldVal,
			New:   newVal,
		})
	}

	names := make(map[string]bool)
	for name := range existing.Additional {
		names[name] = true
	}
	for name := range updated.Additional {
		names[name] = true
	}
	ordered := make([]string, 0, len(names))
	for name := range names {
		ordered = append(ordered, name)
	}
	sort.Strings(ordered)
	for _, name := range ordered {
		oldVal := existing.Additional[name]
		newVal := updated.Additional[name]
		if strings.TrimSpace(oldVal) == strings.TrimSpace(newVal) {
			continue
		}
		diffs = append(diffs, FieldDiff{
			Key:        name,
			Label:      name,
			Old:        oldVal,
			New:        newVal,
			Additional: true,
		})
	}

	return diffs
}

// equivalent reports whether two values for a canonical field should
// count as unchanged. Gender and phone compare in canonical form, so
// "Female" vs "F" and "5551234567" vs "555-123-4567" are not diffs.
func equivalent(key, oldVal, newVal string) bool {
	a := strings.TrimSpace(oldVal)
	b := strings.TrimSpace(newVal)
	switch key {
	case roster.FieldGender:
		a = roster.NormalizeGender(a)
		b = roster.NormalizeGender(b)
	case roster.FieldPhone:
		na, nb := match.NormalizePhone(a), match.NormalizePhone(b)
		if na != "" || nb != "" {
			return na == nb
		}
	}
	return a == b
}
