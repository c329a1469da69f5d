package match

import (
	"regexp"
	"strings"
)

// DefaultMaxVariants caps how many derived queries one name may produce.
const DefaultMaxVariants = 8

const maxQueryLen = 48

var abbreviations = map[string]string{
	"mfg":   "manufacturing",
	"tech":  "technology",
	"intl":  "international",
	"int'l": "international",
	"grp":   "group",
	"co":    "company",
	"corp":  "corporation",
}

var classMarkerRe = regexp.MustCompile(`\bclass[abc]\b`)

// ExpandAbbrev rewrites known abbreviations token by token.
func ExpandAbbrev(s string) string {
	toks := Tokenize(s)
	for i, t := range toks {
		if full, ok := abbreviations[t]; ok {
			toks[i] = full
		}
	}
	return strings.Join(toks, " ")
}

// Acronym builds an initials acronym from the tokens of s. Only acronyms
// of 3 to 8 letters are useful as search queries; anything else returns "".
func Acronym(s string) string {
	toks := Tokenize(s)
	if len(toks) < 2 {
		return ""
	}
	var sb strings.Builder
	for _, t := range toks {
		sb.WriteByte(t[0])
	}
	ac := sb.String()
	if len(ac) < 3 || len(ac) > 8 {
		return ""
	}
	return ac
}

// SanitizeQuery prepares a derived string for use as an API query:
// diacritics stripped, non-alphanumerics collapsed to spaces, and long
// queries truncated to their first 8 tokens.
func SanitizeQuery(q string) string {
	q = strings.Join(Tokenize(q), " ")
	if len(q) > maxQueryLen {
		toks := strings.Fields(q)
		if len(toks) > 8 {
			toks = toks[:8]
		}
		q = strings.Join(toks, " ")
	}
	return q
}

func trimGenericEnds(toks []string) []string {
	if n := len(toks); n > 0 && genericWords[toks[n-1]] {
		toks = toks[:n-1]
	}
	if len(toks) > 0 && genericWords[toks[0]] {
		toks = toks[1:]
	}
	return toks
}

// QueryVariants derives a de-duplicated, ordered, length-capped list of
// alternate search strings for name. The extra list carries alias-driven
// expansion terms keyed off the simplified name (supplied by the caller).
// Any non-empty input yields at least one variant.
func QueryVariants(name string, extra []string, max int) []string {
	if max <= 0 {
		max = DefaultMaxVariants
	}
	raw := strings.TrimSpace(name)
	if raw == "" {
		return nil
	}

	simple := Simplify(raw)
	simpleNoClass := strings.Join(strings.Fields(classMarkerRe.ReplaceAllString(simple, " ")), " ")

	toks := trimGenericEnds(Tokenize(raw))
	compact3 := strings.Join(firstN(toks, 3), " ")
	compact2 := ""
	if head := firstN(toks, 2); len(head) == 2 && !genericWords[head[0]] && !genericWords[head[1]] {
		compact2 = strings.Join(head, " ")
	}

	var variants []string
	seen := make(map[string]bool)
	add := func(v string) {
		v = SanitizeQuery(v)
		if v != "" && !seen[v] {
			seen[v] = true
			variants = append(variants, v)
		}
	}

	add(ExpandAbbrev(raw))
	add(simple)
	add(simpleNoClass)
	add(compact3)
	add(compact2)
	add(Acronym(raw))
	for _, e := range extra {
		add(e)
	}

	if len(variants) == 0 {
		add(raw)
	}
	if len(variants) > max {
		variants = variants[:max]
	}
	return variants
}

func firstN(toks []string, n int) []string {
	if len(toks) < n {
		n = len(toks)
	}
	return toks[:n]
}
