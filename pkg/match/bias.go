package match

import (
	"regexp"
	"strings"
)

var (
	bankWords    = map[string]bool{"bank": true, "banking": true, "financial": true, "finance": true, "wealth": true, "lending": true, "credit": true, "capital": true}
	brewWords    = map[string]bool{"brew": true, "brewer": true, "beer": true, "drinks": true}
	cruiseStems  = []string{"cruise", "cruises", "cruiseline", "cruiselines"}
	bottlerStems = []string{"bottl", "bottler", "bottling", "embonor", "femsa", "hbc"}

	classASuffixRe = regexp.MustCompile(`\.A$`)
	classBSuffixRe = regexp.MustCompile(`\.B$`)
	classCWordRe   = regexp.MustCompile(`\bclass\s*c\b`)
)

// BiasPrefs controls the listing-preference adjustments.
type BiasPrefs struct {
	PreferDomestic bool
	PreferOTC      bool
}

func containsStem(tokens map[string]bool, stems []string) bool {
	for t := range tokens {
		for _, p := range stems {
			if strings.HasPrefix(t, p) {
				return true
			}
		}
	}
	return false
}

// HasContradiction detects candidate names that plainly describe a
// different business than the input: a bank input against cruise or
// brewing vocabulary, a Coca-Cola input against bottler vocabulary, or
// two names whose strong (non-generic, non-stopword) token sets are
// completely disjoint.
func HasContradiction(inputName, candName string) bool {
	in, cand := TokenSet(inputName), TokenSet(candName)

	if in["bank"] && (containsStem(cand, cruiseStems) || anyIn(cand, brewWords)) {
		return true
	}
	if in["coca"] && in["cola"] && containsStem(cand, bottlerStems) {
		return true
	}

	strongIn := strongTokens(in)
	strongCand := strongTokens(cand)
	if len(strongIn) > 0 && disjoint(strongIn, strongCand) {
		return true
	}
	return false
}

func strongTokens(set map[string]bool) map[string]bool {
	out := make(map[string]bool, len(set))
	for t := range set {
		if stopwords[t] || genericWords[t] {
			continue
		}
		out[t] = true
	}
	return out
}

func anyIn(set, words map[string]bool) bool {
	for t := range set {
		if words[t] {
			return true
		}
	}
	return false
}

func disjoint(a, b map[string]bool) bool {
	for t := range a {
		if b[t] {
			return false
		}
	}
	return true
}

// BiasInput bundles everything ApplyBiases needs besides the base score.
type BiasInput struct {
	Symbol         string
	SimplifiedName string
	InputName      string
	CandidateName  string
	CandidateType  AssetType
	ExpectedType   AssetType
	Prefs          BiasPrefs
}

// ApplyBiases adjusts a base fuzzy score with the domain rules, applied in
// a fixed order: contradiction veto, bank-vocabulary mismatch, low-score
// penalty, share-class bonus, asset-type agreement, listing preference,
// then a final clamp to [0,1].
func ApplyBiases(base float64, in BiasInput) float64 {
	score := base

	if in.InputName != "" && in.CandidateName != "" && HasContradiction(in.InputName, in.CandidateName) {
		return 0
	}

	if in.InputName != "" && TokenSet(in.InputName)["bank"] {
		if in.CandidateName != "" && !anyIn(TokenSet(in.CandidateName), bankWords) {
			score -= 0.60
		}
	}

	if base < 0.40 {
		score -= 0.35
		if base < 0.30 {
			return 0
		}
	}

	if base >= 0.55 {
		if strings.Contains(in.SimplifiedName, "classa") && classASuffixRe.MatchString(in.Symbol) {
			score += 0.06
		}
		if strings.Contains(in.SimplifiedName, "classb") && classBSuffixRe.MatchString(in.Symbol) {
			score += 0.06
		}
		if strings.Contains(in.SimplifiedName, "classc") && classCWordRe.MatchString(strings.ToLower(in.CandidateName)) {
			score += 0.06
		}
	}

	if in.ExpectedType != "" && in.CandidateType != "" {
		if (in.ExpectedType == AssetETF) == (in.CandidateType == AssetETF) {
			score += 0.12
		} else {
			score -= 0.40
		}
	}

	if in.Prefs.PreferDomestic && base >= 0.55 {
		if IsDomesticSymbol(in.Symbol, in.Prefs.PreferOTC) {
			score += 0.10
		}
		if ForeignSuffix(in.Symbol) != "" {
			score -= 0.20
		}
		if strings.Contains(in.Symbol, ".") && !classDotRe.MatchString(in.Symbol) {
			score -= 0.35
		}
	}

	return clamp01(score)
}
