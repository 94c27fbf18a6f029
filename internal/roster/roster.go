// Package roster defines the records the system manages (riders and
// coaches) and the canonical field schema imports map onto. It has no
// dependencies on parsing, matching, or storage.
package roster

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// EntityType selects which roster a record belongs to.
type EntityType string

const (
	Riders  EntityType = "riders"
	Coaches EntityType = "coaches"
)

// Valid reports whether t is a known entity type.
func (t EntityType) Valid() bool {
	return t == Riders || t == Coaches
}

// Record is a single roster entry. IDs are assigned at creation and
// never reused. Canonical fields other than the name parts live in
// Fields keyed by canonical key; operator-defined attributes live in
// Additional. Records are archived rather than deleted: no import or
// reconciliation path ever drops one outright.
type Record struct {
	ID         string            `json:"id"`
	EntityType EntityType        `json:"entityType"`
	FirstName  string            `json:"firstName"`
	LastName   string            `json:"lastName"`
	Name       string            `json:"name"`
	Fields     map[string]string `json:"fields,omitempty"`
	Additional map[string]string `json:"additional,omitempty"`
	Archived   bool              `json:"archived"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

// NewRecord creates an empty active record with a fresh ID.
func NewRecord(entity EntityType) *Record {
	now := time.Now().UTC()
	return &Record{
		ID:         uuid.New().String(),
		EntityType: entity,
		Fields:     make(map[string]string),
		Additional: make(map[string]string),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Field returns the value of a canonical field, with the name parts
// addressable through their canonical keys.
func (r *Record) Field(key string) string {
	switch key {
	case FieldFirstName:
		return r.FirstName
	case FieldLastName:
		return r.LastName
	case FieldName:
		return r.Name
	}
	return r.Fields[key]
}

// SetField assigns a canonical field value. Setting a name part also
// recomputes the derived full name.
func (r *Record) SetField(key, value string) {
	switch key {
	case FieldFirstName:
		r.FirstName = value
		r.recomputeName()
	case FieldLastName:
		r.LastName = value
		r.recomputeName()
	case FieldName:
		r.Name = value
	default:
		if r.Fields == nil {
			r.Fields = make(map[string]string)
		}
		r.Fields[key] = value
	}
}

func (r *Record) recomputeName() {
	r.Name = strings.TrimSpace(strings.TrimSpace(r.FirstName) + " " + strings.TrimSpace(r.LastName))
}

// Clone returns a deep copy. Reconciliation merges into copies so the
// staged result never aliases store-owned records.
func (r *Record) Clone() *Record {
	out := *r
	out.Fields = make(map[string]string, len(r.Fields))
	for k, v := range r.Fields {
		out.Fields[k] = v
	}
	out.Additional = make(map[string]string, len(r.Additional))
	for k, v := range r.Additional {
		out.Additional[k] = v
	}
	return &out
}

// SplitName breaks a single full-name value into first and last parts.
// Everything before the final space is the first name; a one-word name
// becomes the first name with an empty last name.
func SplitName(full string) (first, last string) {
	full = strings.TrimSpace(full)
	if full == "" {
		return "", ""
	}
	idx := strings.LastIndexByte(full, ' ')
	if idx < 0 {
		return full, ""
	}
	return strings.TrimSpace(full[:idx]), strings.TrimSpace(full[idx+1:])
}

// NormalizeGender maps the many spellings that show up in exports onto
// the canonical M/F/NB values. Unknown values pass through trimmed so
// nothing is silently discarded.
func NormalizeGender(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m", "male", "boy", "man":
		return "M"
	case "f", "female", "girl", "woman":
		return "F"
	case "nb", "nonbinary", "non-binary", "non binary", "enby":
		return "NB"
	case "":
		return ""
	}
	return strings.TrimSpace(s)
}
