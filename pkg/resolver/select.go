package resolver

import (
	"context"
	"fmt"
	"strings"

	"tickerlens-api/pkg/match"
)

// Reason codes carried alongside every decision. Score-bearing reasons
// append ":<score>" with two decimals.
const (
	ReasonNoCandidates   = "no_candidates"
	ReasonAmbiguous      = "ambiguous"
	ReasonAmbiguousClass = "ambiguous_class_hint"
)

// Resolution is the full outcome of resolving one name.
type Resolution struct {
	Input      string
	Symbol     string
	Reason     string
	Candidates []Candidate
	Meta       Meta
}

// Accepted reports whether a symbol was chosen.
func (r Resolution) Accepted() bool { return r.Symbol != "" }

// Resolve searches and selects in one call.
func (e *Engine) Resolve(ctx context.Context, name string) Resolution {
	cands, meta := e.SearchWithMeta(ctx, name)
	sym, reason := e.ChooseSymbol(name, cands)
	return Resolution{
		Input:      name,
		Symbol:     sym,
		Reason:     reason,
		Candidates: cands,
		Meta:       meta,
	}
}

// ChooseSymbol applies the selection policy to an already-ranked
// candidate list. Accepting a symbol persists it to the durable cache
// unless the list itself came from the cache.
func (e *Engine) ChooseSymbol(name string, cands []Candidate) (string, string) {
	sym, reason := chooseSymbol(name, cands, e.cfg.AcceptScore, e.cfg.GenericAcceptScore)
	if sym != "" && e.cfg.CacheWrite && e.store != nil && !fromCache(cands, sym) {
		e.store.Put(match.Simplify(name), sym)
	}
	return sym, reason
}

func fromCache(cands []Candidate, sym string) bool {
	for _, c := range cands {
		if c.Symbol == sym && c.Source == "Cache" {
			return true
		}
	}
	return false
}

// chooseSymbol picks at most one symbol. Rules, in order: share-class
// hint, Berkshire default, single candidate, score threshold. Anything
// else is ambiguous and stays unresolved.
func chooseSymbol(name string, cands []Candidate, accept, genericAccept float64) (string, string) {
	if len(cands) == 0 {
		return "", ReasonNoCandidates
	}
	simplified := match.Simplify(name)
	tokens := match.TokenSet(name)

	if hint := ClassHint(simplified); hint != "" {
		var matches []Candidate
		for _, c := range cands {
			if encodesClass(c, hint, tokens) {
				matches = append(matches, c)
			}
		}
		switch len(matches) {
		case 0:
			return "", ReasonAmbiguousClass
		case 1:
			return matches[0].Symbol, fmt.Sprintf("class_match:%.2f", matches[0].Score)
		default:
			SortCandidates(matches)
			return matches[0].Symbol, fmt.Sprintf("class_match_top:%.2f", matches[0].Score)
		}
	}

	if tokens["berkshire"] {
		for _, c := range cands {
			if strings.HasSuffix(c.Symbol, ".B") {
				return c.Symbol, fmt.Sprintf("berkshire_default_B:%.2f", c.Score)
			}
		}
	}

	if len(cands) == 1 {
		return cands[0].Symbol, fmt.Sprintf("single_candidate:%.2f", cands[0].Score)
	}

	threshold := accept
	if match.IsGenericName(name) {
		threshold = genericAccept
	}
	top := cands[0]
	if top.Score >= threshold {
		return top.Symbol, fmt.Sprintf("top>=%.2f:%.2f", threshold, top.Score)
	}
	return "", ReasonAmbiguous
}

// encodesClass reports whether a candidate can satisfy a share-class
// hint. Alphabet does not follow the dot-suffix convention: class C is
// GOOG and class A is GOOGL, nothing else.
func encodesClass(c Candidate, hint string, inputTokens map[string]bool) bool {
	if inputTokens["alphabet"] {
		switch hint {
		case "a":
			return c.Symbol == "GOOGL"
		case "c":
			return c.Symbol == "GOOG"
		}
	}
	if strings.HasSuffix(c.Symbol, "."+strings.ToUpper(hint)) {
		return true
	}
	return strings.Contains(strings.ToLower(c.DisplayName), "class "+hint)
}
