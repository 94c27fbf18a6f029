package roster

import "strings"

// Incoming is the ephemeral view of one CSV row after a field mapping
// has been applied: name parts, normalized contact keys used for
// matching, and the remaining mapped values. It is never persisted.
type Incoming struct {
	// Row is the data-row index this record came from (0-based,
	// header excluded). It identifies the row through review and apply.
	Row int `json:"row"`

	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`

	// Phone is digit-normalized (last ten digits); Email is trimmed.
	// Both are empty when the source cell was empty or unmapped.
	Phone string `json:"phone"`
	Email string `json:"email"`

	Fields     map[string]string `json:"fields,omitempty"`
	Additional map[string]string `json:"additional,omitempty"`
}

// Name returns the derived full name.
func (in Incoming) Name() string {
	return strings.TrimSpace(strings.TrimSpace(in.FirstName) + " " + strings.TrimSpace(in.LastName))
}

// ToRecord builds a fresh roster record from an incoming row. Used when
// an unmatched incoming record is imported as new.
func (in Incoming) ToRecord(entity EntityType) *Record {
	rec := NewRecord(entity)
	rec.FirstName = strings.TrimSpace(in.FirstName)
	rec.LastName = strings.TrimSpace(in.LastName)
	rec.recomputeName()
	for k, v := range in.Fields {
		if k == FieldFirstName || k == FieldLastName || k == FieldName {
			continue
		}
		rec.Fields[k] = v
	}
	for k, v := range in.Additional {
		rec.Additional[k] = v
	}
	return rec
}
