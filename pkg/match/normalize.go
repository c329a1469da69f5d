// Package match implements name normalization, fuzzy scoring with
// domain bias rules, and query-variant generation for security names.
// Every function here is a pure function of its inputs.
package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// AssetType classifies a candidate or an expected instrument kind.
type AssetType string

const (
	AssetCommonStock AssetType = "Common Stock"
	AssetETF         AssetType = "ETF"
)

var stopwords = map[string]bool{
	"inc": true, "inc.": true, "corporation": true, "corp": true, "co": true,
	"company": true, "plc": true, "sa": true, "nv": true, "ag": true, "se": true,
	"the": true, "ltd": true, "limited": true, "holdings": true, "holding": true,
	"group": true, "class": true,
}

var genericWords = map[string]bool{
	"bank": true, "group": true, "holdings": true, "holding": true, "plc": true,
	"company": true, "corporation": true, "sa": true, "nv": true, "ag": true,
	"se": true,
}

var familyNoise = map[string]bool{
	"sp": true, "spon": true, "sponsored": true, "adr": true, "ads": true,
	"pref": true, "preferred": true, "share": true, "shares": true,
	"classa": true, "classb": true, "classc": true,
}

var unaccenter = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Unaccent strips diacritics and any remaining non-ASCII runes.
func Unaccent(s string) string {
	out, _, err := transform.String(unaccenter, s)
	if err != nil {
		out = s
	}
	var sb strings.Builder
	sb.Grow(len(out))
	for _, r := range out {
		if r < 128 {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// Tokenize lowercases, strips diacritics, replaces non-alphanumerics with
// spaces and splits on whitespace.
func Tokenize(s string) []string {
	s = strings.ToLower(Unaccent(s))
	mapped := strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		return ' '
	}, s)
	return strings.Fields(mapped)
}

// TokenSet returns the distinct tokens of s.
func TokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, t := range Tokenize(s) {
		set[t] = true
	}
	return set
}

// Simplify removes corporate stopwords. A "class" token followed by a
// single letter a/b/c fuses into classa/classb/classc so the share-class
// signal survives stopword removal.
func Simplify(name string) string {
	toks := Tokenize(name)
	out := make([]string, 0, len(toks))
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		if stopwords[t] {
			if t == "class" && i+1 < len(toks) {
				switch toks[i+1] {
				case "a", "b", "c":
					out = append(out, "class"+toks[i+1])
					i++
					continue
				}
			}
			continue
		}
		out = append(out, t)
	}
	return strings.Join(out, " ")
}

// FamilyKey reduces a candidate display name to a normalized company
// identity: simplified name with share-class, ADR and preferred-share
// markers stripped. Used to collapse multi-listing duplicates.
func FamilyKey(desc string) string {
	toks := strings.Fields(Simplify(desc))
	out := make([]string, 0, len(toks))
	for _, t := range toks {
		if familyNoise[t] {
			continue
		}
		out = append(out, t)
	}
	return strings.Join(out, " ")
}

// IsGenericWord reports whether t carries no distinctive company signal.
func IsGenericWord(t string) bool {
	return genericWords[t]
}

// IsStopword reports whether t is a corporate filler token.
func IsStopword(t string) bool {
	return stopwords[t]
}

// IsGenericName reports whether a name is composed only of generic and
// filler words (e.g. "Bank Holdings"). Such names need a stricter
// acceptance threshold downstream.
func IsGenericName(name string) bool {
	toks := Tokenize(name)
	meaningful := 0
	for _, t := range toks {
		if stopwords[t] {
			continue
		}
		if !genericWords[t] {
			return false
		}
		meaningful++
	}
	return meaningful > 0
}

// InferExpectedType guesses the instrument kind from the input name.
// Names mentioning etf/trust/fund are expected to be funds.
func InferExpectedType(name string) AssetType {
	for _, t := range Tokenize(name) {
		switch t {
		case "etf", "trust", "fund":
			return AssetETF
		}
	}
	return AssetCommonStock
}
