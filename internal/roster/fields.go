package roster

// fields.go is the canonical field registry. Each entity type carries a
// fixed, ordered list of field definitions; imports map CSV columns
// onto these keys and anything left over becomes an additional field.

// Canonical keys shared by both entity types.
const (
	FieldName      = "name"
	FieldFirstName = "firstName"
	FieldLastName  = "lastName"
	FieldPhone     = "phone"
	FieldEmail     = "email"
	FieldGender    = "gender"
)

// Rider-specific canonical keys.
const (
	FieldBirthdate             = "birthdate"
	FieldGrade                 = "grade"
	FieldSchool                = "school"
	FieldSkillLevel            = "skillLevel"
	FieldMedicalNotes          = "medicalNotes"
	FieldPrimaryParentName     = "primaryParentName"
	FieldPrimaryParentPhone    = "primaryParentPhone"
	FieldPrimaryParentEmail    = "primaryParentEmail"
	FieldSecondaryParentName   = "secondaryParentName"
	FieldSecondaryParentPhone  = "secondaryParentPhone"
	FieldSecondaryParentEmail  = "secondaryParentEmail"
	FieldEmergencyContactName  = "emergencyContactName"
	FieldEmergencyContactPhone = "emergencyContactPhone"
)

// Coach-specific canonical keys.
const (
	FieldRole          = "role"
	FieldCertification = "certification"
)

// FieldDef describes one canonical field.
type FieldDef struct {
	Key   string // canonical key, stable across imports
	Label string // operator-facing label
	// Core fields are always enabled; non-core fields are subject to
	// the mapping's enabledFields toggles.
	Core bool
}

var riderFields = []FieldDef{
	{Key: FieldFirstName, Label: "First Name", Core: true},
	{Key: FieldLastName, Label: "Last Name", Core: true},
	{Key: FieldPhone, Label: "Rider Cell", Core: true},
	{Key: FieldEmail, Label: "Rider Email", Core: true},
	{Key: FieldGender, Label: "Gender"},
	{Key: FieldBirthdate, Label: "Birthdate"},
	{Key: FieldGrade, Label: "Grade"},
	{Key: FieldSchool, Label: "School"},
	{Key: FieldSkillLevel, Label: "Skill Level"},
	{Key: FieldMedicalNotes, Label: "Medical Notes"},
	{Key: FieldPrimaryParentName, Label: "Primary Parent Name"},
	{Key: FieldPrimaryParentPhone, Label: "Primary Parent Cell"},
	{Key: FieldPrimaryParentEmail, Label: "Primary Parent Email"},
	{Key: FieldSecondaryParentName, Label: "Secondary Parent Name"},
	{Key: FieldSecondaryParentPhone, Label: "Secondary Parent Cell"},
	{Key: FieldSecondaryParentEmail, Label: "Secondary Parent Email"},
	{Key: FieldEmergencyContactName, Label: "Emergency Contact Name"},
	{Key: FieldEmergencyContactPhone, Label: "Emergency Contact Phone"},
}

var coachFields = []FieldDef{
	{Key: FieldFirstName, Label: "First Name", Core: true},
	{Key: FieldLastName, Label: "Last Name", Core: true},
	{Key: FieldPhone, Label: "Cell", Core: true},
	{Key: FieldEmail, Label: "Email", Core: true},
	{Key: FieldGender, Label: "Gender"},
	{Key: FieldRole, Label: "Role"},
	{Key: FieldCertification, Label: "Certification"},
	{Key: FieldEmergencyContactName, Label: "Emergency Contact Name"},
	{Key: FieldEmergencyContactPhone, Label: "Emergency Contact Phone"},
}

// FieldsFor returns the ordered canonical field definitions for an
// entity type. The returned slice is shared; callers must not mutate it.
func FieldsFor(entity EntityType) []FieldDef {
	if entity == Coaches {
		return coachFields
	}
	return riderFields
}

// FieldDefFor looks up a single definition by canonical key.
func FieldDefFor(entity EntityType, key string) (FieldDef, bool) {
	for _, def := range FieldsFor(entity) {
		if def.Key == key {
			return def, true
		}
	}
	return FieldDef{}, false
}

// IsCanonical reports whether key names a canonical field for the
// entity type (the name keys included).
func IsCanonical(entity EntityType, key string) bool {
	if key == FieldName {
		return true
	}
	_, ok := FieldDefFor(entity, key)
	return ok
}
