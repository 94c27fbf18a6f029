package match

import (
	"strings"

	"github.com/pedalworks/rosterd/internal/roster"
)

// Type tags how a match was established, in decreasing order of
// confidence.
type Type string

const (
	TypeExactName      Type = "exact-name"
	TypePhone          Type = "phone"
	TypeEmail          Type = "email"
	TypeFuzzyName      Type = "fuzzy-name"
	TypeFuzzyNamePhone Type = "fuzzy-name+phone"
	TypeFuzzyNameEmail Type = "fuzzy-name+email"
	TypeSwappedName    Type = "swapped-name"
)

// Scoring constants. The tier bases are chosen so that a higher tier
// always beats a lower one even after boosts.
const (
	// Threshold is the minimum best-candidate score that counts as a
	// match; anything below it means the incoming record is new.
	Threshold = 0.7

	scoreExactName  = 1.0
	scorePhoneBase  = 0.95
	scoreEmailBase  = 0.93
	fuzzyThreshold  = 0.85
	fuzzyScale      = 0.9
	swapScale       = 0.85
	nameBoostFactor = 0.05
	nameBoostFloor  = 0.5
	phoneBoost      = 0.1
	emailBoost      = 0.08

	firstNameWeight = 0.4
	lastNameWeight  = 0.6
)

// Options tunes the matcher. The zero value gives the standard fuzzy
// behavior with Threshold.
type Options struct {
	// Threshold overrides the default minimum score when positive.
	Threshold float64

	// ExactOnly disables every tier except the exact first+last name
	// match and forces the threshold to 1.0. It is the degenerate
	// replacement for the historical exact-key sync path.
	ExactOnly bool
}

func (o Options) threshold() float64 {
	if o.ExactOnly {
		return 1.0
	}
	if o.Threshold > 0 {
		return o.Threshold
	}
	return Threshold
}

// Result is the outcome of a best-match search for one incoming record.
type Result struct {
	Record *roster.Record
	Score  float64
	Type   Type
}

// FindBestMatch scores incoming against every candidate and returns
// the single best result, or nil when no candidate reaches the
// threshold. Candidates are expected to exclude archived records. Ties
// are broken by input order: a later candidate replaces the current
// best only with a strictly greater score, so identical inputs always
// produce identical output.
func FindBestMatch(inc roster.Incoming, candidates []*roster.Record, opts Options) *Result {
	var best *Result
	for _, cand := range candidates {
		score, typ := scoreCandidate(inc, cand, opts)
		if score <= 0 {
			continue
		}
		if best == nil || score > best.Score {
			best = &Result{Record: cand, Score: score, Type: typ}
		}
	}
	if best == nil || best.Score < opts.threshold() {
		return nil
	}
	return best
}

// scoreCandidate evaluates the tiers top to bottom; the first tier
// that fires determines the score.
func scoreCandidate(inc roster.Incoming, cand *roster.Record, opts Options) (float64, Type) {
	incFirst := strings.TrimSpace(inc.FirstName)
	incLast := strings.TrimSpace(inc.LastName)
	candFirst := strings.TrimSpace(cand.FirstName)
	candLast := strings.TrimSpace(cand.LastName)

	// Tier 1: exact first+last name.
	if (incFirst != "" || incLast != "") &&
		strings.EqualFold(incFirst, candFirst) && strings.EqualFold(incLast, candLast) {
		return scoreExactName, TypeExactName
	}
	if opts.ExactOnly {
		return 0, ""
	}

	candPhone := cand.Field(roster.FieldPhone)
	candEmail := cand.Field(roster.FieldEmail)
	nameSim := NameSimilarity(inc.Name(), cand.Name)

	// Tier 2: phone match, boosted when the names also resemble each
	// other.
	if PhonesEqual(inc.Phone, candPhone) {
		return boostedBase(scorePhoneBase, nameSim), TypePhone
	}

	// Tier 3: email match, same boost.
	if EmailsEqual(inc.Email, candEmail) {
		return boostedBase(scoreEmailBase, nameSim), TypeEmail
	}

	// The name tiers need a name on both sides: two empty names are
	// trivially similar, not the same person.
	if (incFirst == "" && incLast == "") || (candFirst == "" && candLast == "") {
		return 0, ""
	}

	// Tier 4: fuzzy name. Weighted part similarity leans on the last
	// name; the full-name comparison catches part misalignment.
	weighted := NameSimilarity(incFirst, candFirst)*firstNameWeight +
		NameSimilarity(incLast, candLast)*lastNameWeight
	if nameSim > weighted {
		weighted = nameSim
	}
	if weighted >= fuzzyThreshold {
		score := weighted * fuzzyScale
		typ := TypeFuzzyName
		if PhonesEqual(inc.Phone, candPhone) {
			score += phoneBoost
			typ = TypeFuzzyNamePhone
		} else if EmailsEqual(inc.Email, candEmail) {
			score += emailBoost
			typ = TypeFuzzyNameEmail
		}
		return capScore(score), typ
	}

	// Tier 5: swapped first/last names.
	swapped := NameSimilarity(incFirst, candLast)*firstNameWeight +
		NameSimilarity(incLast, candFirst)*lastNameWeight
	if swapped >= fuzzyThreshold {
		return swapped * swapScale, TypeSwappedName
	}

	return 0, ""
}

// boostedBase adds the small name-similarity boost used by the phone
// and email tiers: similarity above the floor contributes up to 0.05.
func boostedBase(base, nameSim float64) float64 {
	if nameSim > nameBoostFloor {
		base += nameSim * nameBoostFactor
	}
	return capScore(base)
}

func capScore(s float64) float64 {
	if s > 1.0 {
		return 1.0
	}
	return s
}
