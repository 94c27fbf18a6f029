package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pedalworks/rosterd/internal/roster"
)

func record(first, last string, fields map[string]string) *roster.Record {
	rec := roster.NewRecord(roster.Riders)
	rec.SetField(roster.FieldFirstName, first)
	rec.SetField(roster.FieldLastName, last)
	for k, v := range fields {
		rec.SetField(k, v)
	}
	return rec
}

// ----------------------------------------------------------------------------
// Similarity primitives
// ----------------------------------------------------------------------------

func TestFold(t *testing.T) {
	assert.Equal(t, "jose", Fold("José"))
	assert.Equal(t, "jose", Fold("  JOSE "))
	assert.Equal(t, "francois", Fold("François"))
	assert.Equal(t, "", Fold("   "))
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"smith", "smyth", 1},
		{"José", "Jose", 0},
		{"CASE", "case", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Levenshtein(tt.a, tt.b), "Levenshtein(%q, %q)", tt.a, tt.b)
	}
}

func TestNameSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, NameSimilarity("", ""))
	assert.Equal(t, 0.0, NameSimilarity("alice", ""))
	assert.Equal(t, 1.0, NameSimilarity("Smith", "smith"))
	assert.InDelta(t, 0.8, NameSimilarity("smith", "smyth"), 1e-9)

	// Symmetric and bounded.
	for _, pair := range [][2]string{{"katherine", "kathrine"}, {"alice", "bob"}, {"x", "xyzzy"}} {
		ab := NameSimilarity(pair[0], pair[1])
		ba := NameSimilarity(pair[1], pair[0])
		assert.Equal(t, ab, ba)
		assert.GreaterOrEqual(t, ab, 0.0)
		assert.LessOrEqual(t, ab, 1.0)
	}
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "5550100100", NormalizePhone("(555) 010-0100"))
	assert.Equal(t, "5550100100", NormalizePhone("+1 555 010 0100"))
	assert.Equal(t, "", NormalizePhone("n/a"))
	assert.True(t, PhonesEqual("(555) 010-0100", "+1 5550100100"))
	assert.False(t, PhonesEqual("", ""))
}

func TestEmailsEqual(t *testing.T) {
	assert.True(t, EmailsEqual(" Alice@Example.COM ", "alice@example.com"))
	assert.False(t, EmailsEqual("", ""))
	assert.False(t, EmailsEqual("a@example.com", "b@example.com"))
}

// ----------------------------------------------------------------------------
// Tier scoring
// ----------------------------------------------------------------------------

func TestExactNameBeatsEverything(t *testing.T) {
	inc := roster.Incoming{FirstName: "Alice", LastName: "Smith"}
	cand := record("alice", "SMITH", nil)

	res := FindBestMatch(inc, []*roster.Record{cand}, Options{})
	require.NotNil(t, res)
	assert.Equal(t, 1.0, res.Score)
	assert.Equal(t, TypeExactName, res.Type)
}

func TestPhoneTier(t *testing.T) {
	inc := roster.Incoming{FirstName: "Allie", LastName: "Smith", Phone: "5550100100"}
	cand := record("Alice", "Smith", map[string]string{roster.FieldPhone: "(555) 010-0100"})

	res := FindBestMatch(inc, []*roster.Record{cand}, Options{})
	require.NotNil(t, res)
	assert.Equal(t, TypePhone, res.Type)
	// Base 0.95 plus the name-similarity boost, capped at 1.
	assert.GreaterOrEqual(t, res.Score, 0.95)
	assert.LessOrEqual(t, res.Score, 1.0)
}

func TestEmailTier(t *testing.T) {
	inc := roster.Incoming{FirstName: "Al", LastName: "Smith", Email: "alice@example.com"}
	cand := record("Alice", "Smith", map[string]string{roster.FieldEmail: "ALICE@example.com"})

	res := FindBestMatch(inc, []*roster.Record{cand}, Options{})
	require.NotNil(t, res)
	assert.Equal(t, TypeEmail, res.Type)
	assert.GreaterOrEqual(t, res.Score, 0.93)
}

func TestFuzzyNameTier(t *testing.T) {
	// Katherine vs Kathrine: one transposition-ish edit, same last name.
	inc := roster.Incoming{FirstName: "Katherine", LastName: "Wells"}
	cand := record("Kathrine", "Wells", nil)

	res := FindBestMatch(inc, []*roster.Record{cand}, Options{})
	require.NotNil(t, res)
	assert.Equal(t, TypeFuzzyName, res.Type)
	assert.GreaterOrEqual(t, res.Score, Threshold)
	// Fuzzy matches never reach the phone/email tier scores.
	assert.LessOrEqual(t, res.Score, 0.9)
}

func TestFuzzyNameBelowThresholdIsNoMatch(t *testing.T) {
	inc := roster.Incoming{FirstName: "Alice", LastName: "Smith"}
	cand := record("Benjamin", "Oduya", nil)

	res := FindBestMatch(inc, []*roster.Record{cand}, Options{})
	assert.Nil(t, res)
}

func TestSwappedNameTier(t *testing.T) {
	inc := roster.Incoming{FirstName: "Smith", LastName: "Alice"}
	cand := record("Alice", "Smith", nil)

	res := FindBestMatch(inc, []*roster.Record{cand}, Options{})
	require.NotNil(t, res)
	assert.Equal(t, TypeSwappedName, res.Type)
	assert.InDelta(t, swapScale, res.Score, 1e-9)
}

func TestScoresNeverExceedOne(t *testing.T) {
	inc := roster.Incoming{FirstName: "Alicia", LastName: "Smith", Phone: "5550100100"}
	cand := record("Alicela", "Smith", map[string]string{roster.FieldPhone: "5550100100"})

	res := FindBestMatch(inc, []*roster.Record{cand}, Options{})
	require.NotNil(t, res)
	assert.LessOrEqual(t, res.Score, 1.0)
}

// ----------------------------------------------------------------------------
// Best-match selection
// ----------------------------------------------------------------------------

func TestFindBestMatchPicksHighestScore(t *testing.T) {
	inc := roster.Incoming{FirstName: "Alice", LastName: "Smith"}
	fuzzy := record("Alyce", "Smith", nil)
	exact := record("Alice", "Smith", nil)

	res := FindBestMatch(inc, []*roster.Record{fuzzy, exact}, Options{})
	require.NotNil(t, res)
	assert.Equal(t, exact.ID, res.Record.ID)
}

func TestFindBestMatchTieBreaksOnInputOrder(t *testing.T) {
	inc := roster.Incoming{FirstName: "Alice", LastName: "Smith"}
	first := record("Alice", "Smith", nil)
	second := record("Alice", "Smith", nil)

	candidates := []*roster.Record{first, second}
	for i := 0; i < 10; i++ {
		res := FindBestMatch(inc, candidates, Options{})
		require.NotNil(t, res)
		assert.Equal(t, first.ID, res.Record.ID, "equal scores must keep the earlier candidate")
	}
}

func TestThresholdOption(t *testing.T) {
	inc := roster.Incoming{FirstName: "Katherine", LastName: "Wells"}
	cand := record("Kathrine", "Wells", nil)

	// Default threshold accepts the fuzzy match; a stricter one rejects it.
	assert.NotNil(t, FindBestMatch(inc, []*roster.Record{cand}, Options{}))
	assert.Nil(t, FindBestMatch(inc, []*roster.Record{cand}, Options{Threshold: 0.95}))
}

func TestExactOnlyMode(t *testing.T) {
	opts := Options{ExactOnly: true}

	exactInc := roster.Incoming{FirstName: "Alice", LastName: "Smith"}
	fuzzyInc := roster.Incoming{FirstName: "Alyce", LastName: "Smith", Phone: "5550100100"}
	cand := record("Alice", "Smith", map[string]string{roster.FieldPhone: "5550100100"})

	res := FindBestMatch(exactInc, []*roster.Record{cand}, opts)
	require.NotNil(t, res)
	assert.Equal(t, TypeExactName, res.Type)

	// Phone and fuzzy tiers are disabled outright.
	assert.Nil(t, FindBestMatch(fuzzyInc, []*roster.Record{cand}, opts))
}

func TestEmptyNamesNeverExactMatch(t *testing.T) {
	inc := roster.Incoming{}
	cand := record("", "", nil)

	assert.Nil(t, FindBestMatch(inc, []*roster.Record{cand}, Options{}))
}
