package mapping

// automap.go suggests an initial canonical-field mapping from free-form
// column headers. Matching is substring based over normalized header
// tokens with an explicit ordered rule list per entity type; the first
// rule that fires wins and headers are visited left to right, so the
// same header list always yields the same mapping.

import (
	"strings"

	"github.com/pedalworks/rosterd/internal/roster"
)

// NormalizeHeader lowercases a header and strips every character that
// is not a letter or digit, so "Primary Parent  E-mail" and
// "primaryparentemail" compare equal.
func NormalizeHeader(header string) string {
	var b strings.Builder
	b.Grow(len(header))
	for _, r := range strings.ToLower(header) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// headerRule matches a normalized header when every token in all is
// present and no token in none is.
type headerRule struct {
	key  string
	all  []string
	none []string
}

func (r headerRule) matches(h string) bool {
	for _, tok := range r.all {
		if !strings.Contains(h, tok) {
			return false
		}
	}
	for _, tok := range r.none {
		if strings.Contains(h, tok) {
			return false
		}
	}
	return true
}

// Ordered rule lists. More specific rules come first: a header naming
// a parent or emergency contact must never claim the rider's own
// phone/email keys.
var riderRules = []headerRule{
	{key: roster.FieldPrimaryParentEmail, all: []string{"primaryparent", "email"}},
	{key: roster.FieldPrimaryParentEmail, all: []string{"parent1", "email"}},
	{key: roster.FieldPrimaryParentPhone, all: []string{"primaryparent", "cell"}},
	{key: roster.FieldPrimaryParentPhone, all: []string{"primaryparent", "phone"}},
	{key: roster.FieldPrimaryParentPhone, all: []string{"parent1", "cell"}},
	{key: roster.FieldPrimaryParentPhone, all: []string{"parent1", "phone"}},
	{key: roster.FieldPrimaryParentName, all: []string{"primaryparent", "name"}},
	{key: roster.FieldPrimaryParentName, all: []string{"parent1", "name"}},
	{key: roster.FieldSecondaryParentEmail, all: []string{"secondaryparent", "email"}},
	{key: roster.FieldSecondaryParentEmail, all: []string{"parent2", "email"}},
	{key: roster.FieldSecondaryParentPhone, all: []string{"secondaryparent", "cell"}},
	{key: roster.FieldSecondaryParentPhone, all: []string{"secondaryparent", "phone"}},
	{key: roster.FieldSecondaryParentPhone, all: []string{"parent2", "cell"}},
	{key: roster.FieldSecondaryParentPhone, all: []string{"parent2", "phone"}},
	{key: roster.FieldSecondaryParentName, all: []string{"secondaryparent", "name"}},
	{key: roster.FieldSecondaryParentName, all: []string{"parent2", "name"}},
	{key: roster.FieldEmergencyContactPhone, all: []string{"emergency", "phone"}},
	{key: roster.FieldEmergencyContactPhone, all: []string{"emergency", "cell"}},
	{key: roster.FieldEmergencyContactName, all: []string{"emergency", "name"}},
	{key: roster.FieldEmergencyContactName, all: []string{"emergency"}, none: []string{"phone", "cell", "email"}},
	{key: roster.FieldEmail, all: []string{"rideremail"}},
	{key: roster.FieldEmail, all: []string{"email"}, none: []string{"parent", "guardian", "emergency"}},
	{key: roster.FieldPhone, all: []string{"ridercell"}},
	{key: roster.FieldPhone, all: []string{"riderphone"}},
	{key: roster.FieldPhone, all: []string{"cell"}, none: []string{"parent", "guardian", "emergency"}},
	{key: roster.FieldPhone, all: []string{"phone"}, none: []string{"parent", "guardian", "emergency"}},
	{key: roster.FieldFirstName, all: []string{"firstname"}},
	{key: roster.FieldFirstName, all: []string{"first"}, none: []string{"parent"}},
	{key: roster.FieldLastName, all: []string{"lastname"}},
	{key: roster.FieldLastName, all: []string{"last"}, none: []string{"parent"}},
	{key: roster.FieldName, all: []string{"fullname"}},
	{key: roster.FieldName, all: []string{"ridername"}},
	{key: roster.FieldName, all: []string{"name"}, none: []string{"first", "last", "parent", "guardian", "emergency", "school", "team"}},
	{key: roster.FieldGender, all: []string{"gender"}},
	{key: roster.FieldGender, all: []string{"sex"}},
	{key: roster.FieldBirthdate, all: []string{"birth"}},
	{key: roster.FieldBirthdate, all: []string{"dob"}},
	{key: roster.FieldGrade, all: []string{"grade"}},
	{key: roster.FieldSchool, all: []string{"school"}},
	{key: roster.FieldSkillLevel, all: []string{"skill"}},
	{key: roster.FieldSkillLevel, all: []string{"ability"}},
	{key: roster.FieldMedicalNotes, all: []string{"medical"}},
	{key: roster.FieldMedicalNotes, all: []string{"allerg"}},
}

var coachRules = []headerRule{
	{key: roster.FieldEmergencyContactPhone, all: []string{"emergency", "phone"}},
	{key: roster.FieldEmergencyContactPhone, all: []string{"emergency", "cell"}},
	{key: roster.FieldEmergencyContactName, all: []string{"emergency", "name"}},
	{key: roster.FieldEmail, all: []string{"coachemail"}},
	{key: roster.FieldEmail, all: []string{"email"}, none: []string{"emergency"}},
	{key: roster.FieldPhone, all: []string{"cell"}, none: []string{"emergency"}},
	{key: roster.FieldPhone, all: []string{"phone"}, none: []string{"emergency"}},
	{key: roster.FieldFirstName, all: []string{"firstname"}},
	{key: roster.FieldFirstName, all: []string{"first"}},
	{key: roster.FieldLastName, all: []string{"lastname"}},
	{key: roster.FieldLastName, all: []string{"last"}},
	{key: roster.FieldName, all: []string{"fullname"}},
	{key: roster.FieldName, all: []string{"coachname"}},
	{key: roster.FieldName, all: []string{"name"}, none: []string{"first", "last", "emergency"}},
	{key: roster.FieldGender, all: []string{"gender"}},
	{key: roster.FieldRole, all: []string{"role"}},
	{key: roster.FieldRole, all: []string{"title"}},
	{key: roster.FieldCertification, all: []string{"cert"}},
	{key: roster.FieldCertification, all: []string{"license"}},
}

func rulesFor(entity roster.EntityType) []headerRule {
	if entity == roster.Coaches {
		return coachRules
	}
	return riderRules
}

// AutoMap suggests canonical key -> column index bindings for a header
// row. Each canonical key claims at most one column (the leftmost
// matching header) and each column maps to at most one key. Headers
// that match nothing stay unmapped and become additional-field
// candidates.
func AutoMap(entity roster.EntityType, headers []string) map[string]int {
	suggested := make(map[string]int)
	for col, header := range headers {
		h := NormalizeHeader(header)
		if h == "" {
			continue
		}
		for _, rule := range rulesFor(entity) {
			if _, taken := suggested[rule.key]; taken {
				continue
			}
			if rule.matches(h) {
				suggested[rule.key] = col
				break
			}
		}
	}
	return suggested
}

// Suggest builds a full mapping suggestion: the auto-mapped canonical
// bindings plus the leftover columns as additional-field candidates.
// The name format is inferred from which name keys were claimed.
func Suggest(entity roster.EntityType, headers []string) *Mapping {
	m := Default(entity)
	auto := AutoMap(entity, headers)

	for key, col := range auto {
		c := col
		m.Fields[key] = &c
		if def, ok := roster.FieldDefFor(entity, key); ok && !def.Core {
			m.EnabledFields[key] = true
		}
	}

	_, hasFull := auto[roster.FieldName]
	_, hasFirst := auto[roster.FieldFirstName]
	_, hasLast := auto[roster.FieldLastName]
	if hasFull && !hasFirst && !hasLast {
		m.NameFormat = NameSingle
	}

	claimed := m.ClaimedColumns()
	for col, header := range headers {
		if claimed[col] || strings.TrimSpace(header) == "" {
			continue
		}
		c := col
		m.AdditionalFields[header] = &c
	}

	m.CSVHeaders = append([]string(nil), headers...)
	return m
}
