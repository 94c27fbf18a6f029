package mapping

import (
	"reflect"
	"testing"

	"github.com/pedalworks/rosterd/internal/roster"
)

func intp(i int) *int { return &i }

// ----------------------------------------------------------------------------
// Validate Tests
// ----------------------------------------------------------------------------

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		build   func() *Mapping
		wantErr bool
	}{
		{
			name: "split with first name mapped",
			build: func() *Mapping {
				m := Default(roster.Riders)
				m.Fields[roster.FieldFirstName] = intp(0)
				return m
			},
		},
		{
			name: "split with only last name mapped",
			build: func() *Mapping {
				m := Default(roster.Riders)
				m.Fields[roster.FieldLastName] = intp(1)
				return m
			},
		},
		{
			name: "split with neither name mapped",
			build: func() *Mapping {
				m := Default(roster.Riders)
				m.Fields[roster.FieldPhone] = intp(0)
				return m
			},
			wantErr: true,
		},
		{
			name: "split with explicit nil name binding",
			build: func() *Mapping {
				m := Default(roster.Riders)
				m.Fields[roster.FieldFirstName] = nil
				return m
			},
			wantErr: true,
		},
		{
			name: "single with full name mapped",
			build: func() *Mapping {
				m := Default(roster.Riders)
				m.NameFormat = NameSingle
				m.Fields[roster.FieldName] = intp(0)
				return m
			},
		},
		{
			name: "single without full name mapped",
			build: func() *Mapping {
				m := Default(roster.Riders)
				m.NameFormat = NameSingle
				return m
			},
			wantErr: true,
		},
		{
			name: "unknown name format",
			build: func() *Mapping {
				m := Default(roster.Riders)
				m.NameFormat = "sideways"
				return m
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.build().Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if _, ok := err.(*ValidationError); !ok {
					t.Errorf("Validate() error type = %T, want *ValidationError", err)
				}
			}
		})
	}
}

// ----------------------------------------------------------------------------
// HeadersMatch Tests
// ----------------------------------------------------------------------------

func TestHeadersMatch(t *testing.T) {
	m := Default(roster.Riders)
	m.CSVHeaders = []string{"First Name", "Last Name", "School"}

	tests := []struct {
		name        string
		headers     []string
		wantMatch   bool
		wantNew     []string
		wantMissing []string
	}{
		{
			name:      "identical",
			headers:   []string{"First Name", "Last Name", "School"},
			wantMatch: true,
		},
		{
			name:      "case and order insensitive",
			headers:   []string{"school", "LAST NAME", "first name"},
			wantMatch: true,
		},
		{
			name:        "column renamed",
			headers:     []string{"First Name", "Last Name", "Campus"},
			wantMatch:   false,
			wantNew:     []string{"Campus"},
			wantMissing: []string{"School"},
		},
		{
			name:      "column added",
			headers:   []string{"First Name", "Last Name", "School", "Grade"},
			wantMatch: false,
			wantNew:   []string{"Grade"},
		},
		{
			name:        "column removed",
			headers:     []string{"First Name", "Last Name"},
			wantMatch:   false,
			wantMissing: []string{"School"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := m.HeadersMatch(tt.headers)
			if report.IsMatch != tt.wantMatch {
				t.Errorf("IsMatch = %v, want %v", report.IsMatch, tt.wantMatch)
			}
			if !reflect.DeepEqual(report.NewHeaders, tt.wantNew) {
				t.Errorf("NewHeaders = %v, want %v", report.NewHeaders, tt.wantNew)
			}
			if !reflect.DeepEqual(report.MissingHeaders, tt.wantMissing) {
				t.Errorf("MissingHeaders = %v, want %v", report.MissingHeaders, tt.wantMissing)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// Apply Tests
// ----------------------------------------------------------------------------

func TestApplySplitNames(t *testing.T) {
	m := Default(roster.Riders)
	m.Fields[roster.FieldFirstName] = intp(0)
	m.Fields[roster.FieldLastName] = intp(1)
	m.Fields[roster.FieldPhone] = intp(2)

	rows := [][]string{
		{"Alice", "Smith", "(555) 010-0100"},
		{"", "", "555"}, // no name, skipped
		{"Bob", "Jones"}, // short row survives
	}

	got := m.Apply(rows)
	if len(got) != 2 {
		t.Fatalf("Apply() produced %d records, want 2", len(got))
	}

	if got[0].FirstName != "Alice" || got[0].LastName != "Smith" {
		t.Errorf("record 0 = %q %q", got[0].FirstName, got[0].LastName)
	}
	if got[0].Phone != "5550100100" {
		t.Errorf("normalized phone = %q, want %q", got[0].Phone, "5550100100")
	}
	if got[0].Fields[roster.FieldPhone] != "5550100100" {
		t.Errorf("phone field = %q, want the normalized form", got[0].Fields[roster.FieldPhone])
	}
	if got[0].Row != 0 {
		t.Errorf("record 0 row = %d", got[0].Row)
	}
	if got[1].FirstName != "Bob" || got[1].Row != 2 {
		t.Errorf("record 1 = %q row %d", got[1].FirstName, got[1].Row)
	}
}

func TestApplySingleName(t *testing.T) {
	m := Default(roster.Riders)
	m.NameFormat = NameSingle
	m.Fields[roster.FieldName] = intp(0)

	got := m.Apply([][]string{{"Mary Jo Harper"}})
	if len(got) != 1 {
		t.Fatalf("Apply() produced %d records", len(got))
	}
	if got[0].FirstName != "Mary Jo" || got[0].LastName != "Harper" {
		t.Errorf("split = %q %q", got[0].FirstName, got[0].LastName)
	}
}

func TestApplyRespectsEnabledFields(t *testing.T) {
	m := Default(roster.Riders)
	m.Fields[roster.FieldFirstName] = intp(0)
	m.Fields[roster.FieldSchool] = intp(1)

	rows := [][]string{{"Alice", "Hillside"}}

	// school is non-core and disabled by default.
	got := m.Apply(rows)
	if _, ok := got[0].Fields[roster.FieldSchool]; ok {
		t.Error("disabled field should not be imported")
	}

	m.EnabledFields[roster.FieldSchool] = true
	got = m.Apply(rows)
	if got[0].Fields[roster.FieldSchool] != "Hillside" {
		t.Errorf("enabled field = %q", got[0].Fields[roster.FieldSchool])
	}
}

func TestApplyAdditionalFieldsRenamed(t *testing.T) {
	m := Default(roster.Riders)
	m.Fields[roster.FieldFirstName] = intp(0)
	m.AdditionalFields["Bike Size"] = intp(1)
	m.AdditionalFields["Manual Only"] = nil
	m.CustomFieldNames["Bike Size"] = "Frame"

	got := m.Apply([][]string{{"Alice", "M"}})
	if got[0].Additional["Frame"] != "M" {
		t.Errorf("Additional = %v, want renamed Frame=M", got[0].Additional)
	}
	if _, ok := got[0].Additional["Bike Size"]; ok {
		t.Error("raw header should not appear once renamed")
	}
}

// ----------------------------------------------------------------------------
// AutoMap Tests
// ----------------------------------------------------------------------------

func TestAutoMapRiderHeaders(t *testing.T) {
	headers := []string{
		"First Name", "Last Name", "Rider Cell", "Rider Email",
		"Primary Parent Name", "Primary Parent Cell", "Primary Parent Email",
		"Emergency Contact Name", "Emergency Contact Phone",
		"Gender", "Date of Birth", "School", "T-Shirt Size",
	}

	got := AutoMap(roster.Riders, headers)

	want := map[string]int{
		roster.FieldFirstName:             0,
		roster.FieldLastName:              1,
		roster.FieldPhone:                 2,
		roster.FieldEmail:                 3,
		roster.FieldPrimaryParentName:     4,
		roster.FieldPrimaryParentPhone:    5,
		roster.FieldPrimaryParentEmail:    6,
		roster.FieldEmergencyContactName:  7,
		roster.FieldEmergencyContactPhone: 8,
		roster.FieldGender:                9,
		roster.FieldBirthdate:             10,
		roster.FieldSchool:                11,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AutoMap() = %v, want %v", got, want)
	}
	if _, ok := got["T-Shirt Size"]; ok {
		t.Error("unknown headers must stay unmapped")
	}
}

func TestAutoMapParentEmailDoesNotClaimRiderEmail(t *testing.T) {
	headers := []string{"Parent 1 Email", "Email"}
	got := AutoMap(roster.Riders, headers)

	if got[roster.FieldPrimaryParentEmail] != 0 {
		t.Errorf("primaryParentEmail = %d, want 0", got[roster.FieldPrimaryParentEmail])
	}
	if got[roster.FieldEmail] != 1 {
		t.Errorf("email = %d, want 1", got[roster.FieldEmail])
	}
}

func TestAutoMapDeterministic(t *testing.T) {
	headers := []string{"Name", "Phone", "Email", "Gender", "Grade"}
	first := AutoMap(roster.Riders, headers)
	for i := 0; i < 10; i++ {
		if got := AutoMap(roster.Riders, headers); !reflect.DeepEqual(got, first) {
			t.Fatalf("AutoMap() run %d = %v, first run = %v", i, got, first)
		}
	}
}

func TestAutoMapOneColumnPerKey(t *testing.T) {
	headers := []string{"Phone", "Phone Number"}
	got := AutoMap(roster.Riders, headers)
	if got[roster.FieldPhone] != 0 {
		t.Errorf("phone = %d, want leftmost column 0", got[roster.FieldPhone])
	}
}

// ----------------------------------------------------------------------------
// Suggest Tests
// ----------------------------------------------------------------------------

func TestSuggestInfersSingleNameFormat(t *testing.T) {
	m := Suggest(roster.Riders, []string{"Name", "Phone"})
	if m.NameFormat != NameSingle {
		t.Errorf("NameFormat = %q, want %q", m.NameFormat, NameSingle)
	}
	if err := m.Validate(); err != nil {
		t.Errorf("suggested mapping should validate: %v", err)
	}
}

func TestSuggestLeftoversBecomeAdditional(t *testing.T) {
	m := Suggest(roster.Riders, []string{"First Name", "Last Name", "T-Shirt Size"})
	idx, ok := m.AdditionalFields["T-Shirt Size"]
	if !ok || idx == nil || *idx != 2 {
		t.Errorf("AdditionalFields = %v, want T-Shirt Size -> 2", m.AdditionalFields)
	}
}

func TestSuggestEnablesMatchedNonCoreFields(t *testing.T) {
	m := Suggest(roster.Riders, []string{"First Name", "Last Name", "School"})
	if !m.EnabledFields[roster.FieldSchool] {
		t.Error("matched non-core field should be enabled")
	}
	if len(m.CSVHeaders) != 3 {
		t.Errorf("CSVHeaders = %v", m.CSVHeaders)
	}
}
