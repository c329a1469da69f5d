package resolver

import (
	"regexp"
	"strings"

	"tickerlens-api/pkg/match"
)

const (
	usHypothesisPenalty    = 0.02
	classHypothesisPenalty = 0.03
)

var stemRe = regexp.MustCompile(`^[A-Z]{1,5}$`)

// rescoreHypothesis prices a synthetic symbol as if the provider had
// returned it under the source hit's display name: fresh fuzzy score,
// full bias pass for the new symbol, then a small penalty so a real hit
// at the same symbol always outranks the guess. A domestic stem picks up
// the listing-preference bonuses its foreign source never could, which
// is the whole point of synthesizing it.
func rescoreHypothesis(inputName, symbol string, c Candidate, prefs match.BiasPrefs, penalty float64, tag string) (Candidate, bool) {
	base := match.FuzzyScore(inputName, c.DisplayName)
	score := match.ApplyBiases(base, match.BiasInput{
		Symbol:         symbol,
		SimplifiedName: match.Simplify(inputName),
		InputName:      inputName,
		CandidateName:  c.DisplayName,
		CandidateType:  c.Type,
		ExpectedType:   match.InferExpectedType(inputName),
		Prefs:          prefs,
	}) - penalty
	if score <= 0 {
		return Candidate{}, false
	}
	return NewCandidate(symbol, c.DisplayName, c.Type, score, c.Source+tag), true
}

// domesticHypotheses synthesizes a bare-stem candidate for every
// foreign-suffixed hit, on the theory that a dual-listed security trades
// domestically under the stem.
func domesticHypotheses(inputName string, cands []Candidate, prefs match.BiasPrefs) []Candidate {
	var extra []Candidate
	for _, c := range cands {
		suffix := match.ForeignSuffix(c.Symbol)
		if suffix == "" {
			continue
		}
		stem := strings.TrimSuffix(c.Symbol, suffix)
		if !stemRe.MatchString(stem) {
			continue
		}
		if hyp, ok := rescoreHypothesis(inputName, stem, c, prefs, usHypothesisPenalty, "+USHyp"); ok {
			extra = append(extra, hyp)
		}
	}
	return extra
}

// classSibling maps a dot-class symbol to its sibling class. Only the
// A and B classes pair off; other letters have no reliable twin.
// Alphabet's split listing does not follow the dot convention, so it
// gets its own mapping.
func classSibling(symbol string) string {
	sym := strings.ToUpper(symbol)
	switch sym {
	case "GOOGL":
		return "GOOG"
	case "GOOG":
		return "GOOGL"
	}
	switch {
	case strings.HasSuffix(sym, ".A"):
		return sym[:len(sym)-1] + "B"
	case strings.HasSuffix(sym, ".B"):
		return sym[:len(sym)-1] + "A"
	}
	return ""
}

// classHypotheses synthesizes the sibling class for every dot-class hit,
// so a provider that only lists one class still surfaces the other.
func classHypotheses(inputName string, cands []Candidate, prefs match.BiasPrefs) []Candidate {
	var extra []Candidate
	seen := make(map[string]bool)
	for _, c := range cands {
		sib := classSibling(c.Symbol)
		if sib == "" || sib == c.Symbol || seen[sib] {
			continue
		}
		seen[sib] = true
		if hyp, ok := rescoreHypothesis(inputName, sib, c, prefs, classHypothesisPenalty, "+ClassHyp"); ok {
			extra = append(extra, hyp)
		}
	}
	return extra
}

// symbolClass is the share class a symbol itself encodes, lowercase, or
// "" for unclassed symbols.
func symbolClass(symbol string) string {
	sym := strings.ToUpper(symbol)
	switch sym {
	case "GOOGL":
		return "a"
	case "GOOG":
		return "c"
	}
	if n := len(sym); n > 2 && sym[n-2] == '.' && match.ForeignSuffix(sym) == "" {
		letter := sym[n-1]
		if letter >= 'A' && letter <= 'Z' {
			return strings.ToLower(string(letter))
		}
	}
	return ""
}

// ClassHint extracts a share-class letter from a simplified name, e.g.
// "alphabet inc classc" yields "c". Empty when no class marker appears.
func ClassHint(simplified string) string {
	for _, tok := range strings.Fields(simplified) {
		if len(tok) == 6 && strings.HasPrefix(tok, "class") {
			letter := tok[5]
			if letter >= 'a' && letter <= 'z' {
				return string(letter)
			}
		}
	}
	return ""
}
