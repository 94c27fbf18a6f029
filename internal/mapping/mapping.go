// Package mapping models how arbitrary spreadsheet columns bind to the
// canonical roster schema: the persisted per-entity FieldMapping, header
// auto-mapping, drift detection against previously saved headers, and
// applying a mapping to parsed rows.
package mapping

import (
	"fmt"
	"strings"

	"github.com/pedalworks/rosterd/internal/csvio"
	"github.com/pedalworks/rosterd/internal/match"
	"github.com/pedalworks/rosterd/internal/roster"
)

// NameFormat selects which name columns a mapping expects.
type NameFormat string

const (
	// NameSingle maps one full-name column onto the "name" key.
	NameSingle NameFormat = "single"
	// NameSplit maps separate firstName/lastName columns.
	NameSplit NameFormat = "split"
)

// FieldAction governs a canonical field with no CSV column mapped, on
// update flows.
type FieldAction string

const (
	ActionKeep  FieldAction = "keep"  // leave the existing value untouched
	ActionClear FieldAction = "clear" // blank the existing value
)

// Mapping is the persisted column-binding configuration for one entity
// type. The JSON shape round-trips losslessly; a nil column pointer is
// serialized as null and means "explicit no-data" for that field.
type Mapping struct {
	EntityType roster.EntityType `json:"entityType"`

	// Fields binds canonical field key -> CSV column index.
	Fields map[string]*int `json:"mapping"`

	// EnabledFields toggles non-core canonical fields. Core fields are
	// always enabled and never appear here.
	EnabledFields map[string]bool `json:"enabledFields"`

	// AdditionalFields binds free-form field name -> CSV column index;
	// nil means a purely manual custom field.
	AdditionalFields map[string]*int `json:"additionalFields"`

	// CustomFieldNames records operator renames of raw CSV headers.
	CustomFieldNames map[string]string `json:"customFieldNames"`

	NameFormat NameFormat `json:"nameFormat"`

	// UnmappedFieldActions: canonical key -> keep|clear for fields with
	// no mapped column.
	UnmappedFieldActions map[string]FieldAction `json:"unmappedFieldActions"`

	// UserCustomFields are operator-added field names with no CSV
	// binding at all, in display order.
	UserCustomFields []string `json:"userCustomFields"`

	// CSVHeaders is the literal header row this mapping was captured
	// against, used to detect header drift on reuse.
	CSVHeaders []string `json:"csvHeaders"`
}

// Default returns an empty split-name mapping for an entity type.
func Default(entity roster.EntityType) *Mapping {
	return &Mapping{
		EntityType:           entity,
		Fields:               make(map[string]*int),
		EnabledFields:        make(map[string]bool),
		AdditionalFields:     make(map[string]*int),
		CustomFieldNames:     make(map[string]string),
		NameFormat:           NameSplit,
		UnmappedFieldActions: make(map[string]FieldAction),
	}
}

// ValidationError is a user-facing mapping problem. It blocks
// reconciliation but is not a programming error.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validate checks the required-name invariant: under the active name
// format at least one of the required name columns must be mapped to a
// real column index.
func (m *Mapping) Validate() error {
	switch m.NameFormat {
	case NameSingle:
		if !m.mapped(roster.FieldName) {
			return &ValidationError{Msg: "single-name format requires a mapped full name column"}
		}
	case NameSplit:
		if !m.mapped(roster.FieldFirstName) && !m.mapped(roster.FieldLastName) {
			return &ValidationError{Msg: "split-name format requires a mapped first or last name column"}
		}
	default:
		return &ValidationError{Msg: fmt.Sprintf("unknown name format %q", m.NameFormat)}
	}
	return nil
}

func (m *Mapping) mapped(key string) bool {
	idx, ok := m.Fields[key]
	return ok && idx != nil
}

// columnIndex returns the bound column for a canonical key, or -1.
func (m *Mapping) columnIndex(key string) int {
	if idx, ok := m.Fields[key]; ok && idx != nil {
		return *idx
	}
	return -1
}

// enabled reports whether a canonical field participates in imports.
// Core fields always do.
func (m *Mapping) enabled(def roster.FieldDef) bool {
	if def.Core {
		return true
	}
	return m.EnabledFields[def.Key]
}

// HeadersReport is the result of comparing fresh CSV headers against
// the headers a mapping was captured with.
type HeadersReport struct {
	IsMatch bool `json:"isMatch"`
	// NewHeaders are columns present now that the mapping has not seen.
	NewHeaders []string `json:"newHeaders"`
	// MissingHeaders were present at capture time but are gone now.
	MissingHeaders []string `json:"missingHeaders"`
}

// HeadersMatch compares headers case-insensitively as sets. New and
// missing columns are reported distinctly so the operator sees drift
// direction, not just a mismatch.
func (m *Mapping) HeadersMatch(headers []string) HeadersReport {
	saved := headerSet(m.CSVHeaders)
	fresh := headerSet(headers)

	report := HeadersReport{IsMatch: true}
	for _, h := range headers {
		if _, ok := saved[canonHeader(h)]; !ok {
			report.NewHeaders = append(report.NewHeaders, h)
		}
	}
	for _, h := range m.CSVHeaders {
		if _, ok := fresh[canonHeader(h)]; !ok {
			report.MissingHeaders = append(report.MissingHeaders, h)
		}
	}
	if len(report.NewHeaders) > 0 || len(report.MissingHeaders) > 0 {
		report.IsMatch = false
	}
	return report
}

func canonHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

func headerSet(headers []string) map[string]struct{} {
	set := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		set[canonHeader(h)] = struct{}{}
	}
	return set
}

// Snapshot returns a copy of m with CSVHeaders replaced by the headers
// in effect now. Successful applies persist the snapshot so the next
// import can detect drift.
func (m *Mapping) Snapshot(headers []string) *Mapping {
	out := m.Clone()
	out.CSVHeaders = append([]string(nil), headers...)
	return out
}

// Clone returns a deep copy.
func (m *Mapping) Clone() *Mapping {
	out := Default(m.EntityType)
	out.NameFormat = m.NameFormat
	for k, v := range m.Fields {
		out.Fields[k] = copyIdx(v)
	}
	for k, v := range m.EnabledFields {
		out.EnabledFields[k] = v
	}
	for k, v := range m.AdditionalFields {
		out.AdditionalFields[k] = copyIdx(v)
	}
	for k, v := range m.CustomFieldNames {
		out.CustomFieldNames[k] = v
	}
	for k, v := range m.UnmappedFieldActions {
		out.UnmappedFieldActions[k] = v
	}
	out.UserCustomFields = append([]string(nil), m.UserCustomFields...)
	out.CSVHeaders = append([]string(nil), m.CSVHeaders...)
	return out
}

func copyIdx(v *int) *int {
	if v == nil {
		return nil
	}
	i := *v
	return &i
}

// Apply maps parsed data rows onto incoming records. Rows that produce
// no usable name are skipped; they are neither matched nor imported.
func (m *Mapping) Apply(rows [][]string) []roster.Incoming {
	out := make([]roster.Incoming, 0, len(rows))

	for i, row := range rows {
		inc := roster.Incoming{
			Row:        i,
			Fields:     make(map[string]string),
			Additional: make(map[string]string),
		}

		if m.NameFormat == NameSingle {
			full := m.cell(row, roster.FieldName)
			inc.FirstName, inc.LastName = roster.SplitName(full)
		} else {
			inc.FirstName = m.cell(row, roster.FieldFirstName)
			inc.LastName = m.cell(row, roster.FieldLastName)
		}
		if inc.FirstName == "" && inc.LastName == "" {
			continue
		}

		for _, def := range roster.FieldsFor(m.EntityType) {
			if def.Key == roster.FieldFirstName || def.Key == roster.FieldLastName {
				continue
			}
			if !m.enabled(def) {
				continue
			}
			if v := m.cell(row, def.Key); v != "" {
				inc.Fields[def.Key] = v
			}
		}

		// Phones are carried in normalized digit form so formatting
		// variants ("555-123-4567") neither diff nor overwrite an
		// equal stored value.
		inc.Phone = match.NormalizePhone(inc.Fields[roster.FieldPhone])
		if inc.Phone != "" {
			inc.Fields[roster.FieldPhone] = inc.Phone
		}
		inc.Email = strings.TrimSpace(inc.Fields[roster.FieldEmail])

		for name, idx := range m.AdditionalFields {
			if idx == nil || *idx < 0 || *idx >= len(row) {
				continue
			}
			if v := csvio.CleanCell(row[*idx]); v != "" {
				inc.Additional[m.renamed(name)] = v
			}
		}

		out = append(out, inc)
	}
	return out
}

func (m *Mapping) cell(row []string, key string) string {
	idx := m.columnIndex(key)
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return csvio.CleanCell(row[idx])
}

func (m *Mapping) renamed(name string) string {
	if renamed, ok := m.CustomFieldNames[name]; ok && renamed != "" {
		return renamed
	}
	return name
}

// ClaimedColumns returns the set of column indexes bound to canonical
// fields. Columns claimed here are removed from the additional-field
// candidate list before choices are presented.
func (m *Mapping) ClaimedColumns() map[int]bool {
	claimed := make(map[int]bool)
	for _, idx := range m.Fields {
		if idx != nil {
			claimed[*idx] = true
		}
	}
	return claimed
}
