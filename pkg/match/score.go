package match

import (
	"regexp"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

const (
	jaccardWeight  = 0.62
	sequenceWeight = 0.38
)

// ForeignSuffixes lists exchange suffixes that mark a non-domestic listing.
var ForeignSuffixes = []string{
	".TO", ".V", ".SA", ".L", ".AS", ".PA", ".SW", ".F", ".DE", ".HK",
	".SS", ".SZ", ".AX", ".NZ", ".BK", ".TW", ".T", ".KL", ".IS", ".ME",
	".MI", ".MC", ".VI", ".SG", ".JK", ".KS", ".KQ", ".SR", ".CR", ".NE",
	".NS", ".BO",
}

var (
	domesticTickRe = regexp.MustCompile(`^[A-Z]{1,5}$`)
	classDotRe     = regexp.MustCompile(`^[A-Z]{1,5}\.[AB]$`)
	otcRe          = regexp.MustCompile(`^[A-Z]{5}$`)
)

// Jaccard returns token-set overlap between two names in [0,1].
func Jaccard(a, b string) float64 {
	as, bs := TokenSet(a), TokenSet(b)
	if len(as) == 0 || len(bs) == 0 {
		return 0
	}
	inter := 0
	for t := range as {
		if bs[t] {
			inter++
		}
	}
	union := len(as) + len(bs) - inter
	return float64(inter) / float64(union)
}

// SequenceRatio is the character-level similarity ratio of two strings.
func SequenceRatio(a, b string) float64 {
	m := difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, ""))
	return m.Ratio()
}

// FuzzyScore blends token overlap of the raw names with the character
// ratio of their simplified forms, clamped to [0,1]. It is a pure
// function of its two arguments.
func FuzzyScore(a, b string) float64 {
	score := jaccardWeight*Jaccard(a, b) + sequenceWeight*SequenceRatio(Simplify(a), Simplify(b))
	return clamp01(score)
}

// IsDomesticSymbol reports whether sym looks like a domestic listing:
// 1-5 letters, an optional .A/.B class suffix, or (when OTC listings are
// preferred) a 5-letter ADR/foreign-ordinary pattern ending in Y or F.
func IsDomesticSymbol(sym string, preferOTC bool) bool {
	if sym == "" {
		return false
	}
	if domesticTickRe.MatchString(sym) {
		return true
	}
	if classDotRe.MatchString(sym) {
		return true
	}
	if preferOTC && otcRe.MatchString(sym) {
		last := sym[len(sym)-1]
		return last == 'Y' || last == 'F'
	}
	return false
}

// ForeignSuffix returns the matching foreign exchange suffix of sym, or "".
func ForeignSuffix(sym string) string {
	for _, suf := range ForeignSuffixes {
		if strings.HasSuffix(sym, suf) {
			return suf
		}
	}
	return ""
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
