package roster

import "testing"

// ----------------------------------------------------------------------------
// SplitName Tests
// ----------------------------------------------------------------------------

func TestSplitName(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantFirst string
		wantLast  string
	}{
		{name: "two parts", input: "Alice Smith", wantFirst: "Alice", wantLast: "Smith"},
		{name: "three parts", input: "Mary Jo Harper", wantFirst: "Mary Jo", wantLast: "Harper"},
		{name: "single word", input: "Cher", wantFirst: "Cher", wantLast: ""},
		{name: "extra whitespace", input: "  Alice   Smith  ", wantFirst: "Alice", wantLast: "Smith"},
		{name: "empty", input: "", wantFirst: "", wantLast: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, last := SplitName(tt.input)
			if first != tt.wantFirst || last != tt.wantLast {
				t.Errorf("SplitName(%q) = (%q, %q), want (%q, %q)",
					tt.input, first, last, tt.wantFirst, tt.wantLast)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// Record Tests
// ----------------------------------------------------------------------------

func TestSetFieldRecomputesName(t *testing.T) {
	rec := NewRecord(Riders)
	rec.SetField(FieldFirstName, "Alice")
	rec.SetField(FieldLastName, "Smith")
	if rec.Name != "Alice Smith" {
		t.Errorf("Name = %q, want %q", rec.Name, "Alice Smith")
	}

	rec.SetField(FieldLastName, "")
	if rec.Name != "Alice" {
		t.Errorf("Name after clearing last = %q, want %q", rec.Name, "Alice")
	}
}

func TestFieldAccessorsCoverNameParts(t *testing.T) {
	rec := NewRecord(Coaches)
	rec.SetField(FieldFirstName, "Bob")
	rec.SetField(FieldPhone, "555-0100")

	if got := rec.Field(FieldFirstName); got != "Bob" {
		t.Errorf("Field(firstName) = %q", got)
	}
	if got := rec.Field(FieldName); got != "Bob" {
		t.Errorf("Field(name) = %q", got)
	}
	if got := rec.Field(FieldPhone); got != "555-0100" {
		t.Errorf("Field(phone) = %q", got)
	}
}

func TestCloneIsDeep(t *testing.T) {
	rec := NewRecord(Riders)
	rec.SetField(FieldSchool, "Hillside")
	rec.Additional["Bike Size"] = "M"

	cp := rec.Clone()
	cp.SetField(FieldSchool, "Valley")
	cp.Additional["Bike Size"] = "L"

	if rec.Field(FieldSchool) != "Hillside" {
		t.Error("Clone() shares Fields map")
	}
	if rec.Additional["Bike Size"] != "M" {
		t.Error("Clone() shares Additional map")
	}
}

func TestIncomingToRecord(t *testing.T) {
	inc := Incoming{
		FirstName: "Alice",
		LastName:  "Smith",
		Fields: map[string]string{
			FieldPhone:  "555-0100",
			FieldSchool: "Hillside",
		},
		Additional: map[string]string{"Bike Size": "M"},
	}
	rec := inc.ToRecord(Riders)

	if rec.ID == "" {
		t.Error("ToRecord() should assign an ID")
	}
	if rec.Name != "Alice Smith" {
		t.Errorf("Name = %q", rec.Name)
	}
	if rec.Field(FieldSchool) != "Hillside" {
		t.Errorf("school = %q", rec.Field(FieldSchool))
	}
	if rec.Additional["Bike Size"] != "M" {
		t.Errorf("additional = %v", rec.Additional)
	}
	if rec.Archived {
		t.Error("new records start active")
	}
}

// ----------------------------------------------------------------------------
// NormalizeGender Tests
// ----------------------------------------------------------------------------

func TestNormalizeGender(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"M", "M"},
		{"male", "M"},
		{" Boy ", "M"},
		{"F", "F"},
		{"Female", "F"},
		{"girl", "F"},
		{"nb", "NB"},
		{"Non-Binary", "NB"},
		{"non binary", "NB"},
		{"", ""},
		{"prefer not to say", "prefer not to say"},
	}

	for _, tt := range tests {
		if got := NormalizeGender(tt.input); got != tt.want {
			t.Errorf("NormalizeGender(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

// ----------------------------------------------------------------------------
// Field registry Tests
// ----------------------------------------------------------------------------

func TestFieldsForDistinctSchemas(t *testing.T) {
	riders := FieldsFor(Riders)
	coaches := FieldsFor(Coaches)

	if len(riders) == 0 || len(coaches) == 0 {
		t.Fatal("field registries must not be empty")
	}

	riderKeys := make(map[string]bool)
	for _, def := range riders {
		riderKeys[def.Key] = true
	}
	if !riderKeys[FieldBirthdate] {
		t.Error("riders should carry birthdate")
	}
	if riderKeys[FieldRole] {
		t.Error("riders should not carry the coach role field")
	}

	if _, ok := FieldDefFor(Coaches, FieldCertification); !ok {
		t.Error("coaches should carry certification")
	}
}

func TestEntityTypeValid(t *testing.T) {
	if !Riders.Valid() || !Coaches.Valid() {
		t.Error("known entity types must validate")
	}
	if EntityType("horses").Valid() {
		t.Error("unknown entity type must not validate")
	}
}
