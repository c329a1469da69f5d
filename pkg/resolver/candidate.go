// Package resolver implements the name-to-ticker resolution engine:
// provider fan-out, candidate aggregation with family collapse and a
// second refinement pass, the durable resolution cache, and the final
// symbol-selection policy.
package resolver

import (
	"math"
	"sort"
	"strings"

	"tickerlens-api/pkg/match"
)

// Candidate is a scored, named, typed ticker-symbol hypothesis for an
// input name. Candidates are immutable once emitted; all score
// adjustments happen before construction.
type Candidate struct {
	Symbol      string
	DisplayName string
	Type        match.AssetType
	Score       float64 // rounded to 2 decimals, in [0,1]
	Source      string  // origin tag, e.g. "Finnhub", "Local", "Finnhub+USHyp"
}

// NewCandidate builds a candidate with the score rounded and clamped.
func NewCandidate(symbol, name string, typ match.AssetType, score float64, source string) Candidate {
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return Candidate{
		Symbol:      strings.ToUpper(symbol),
		DisplayName: name,
		Type:        typ,
		Score:       round2(score),
		Source:      source,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// SortCandidates orders by descending score, then ascending symbol, so
// equal inputs always produce identical output.
func SortCandidates(cands []Candidate) {
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].Score != cands[j].Score {
			return cands[i].Score > cands[j].Score
		}
		return cands[i].Symbol < cands[j].Symbol
	})
}

// MergeBest combines candidate lists by symbol, keeping the highest score
// seen for each symbol regardless of source, and returns a sorted list.
func MergeBest(lists ...[]Candidate) []Candidate {
	best := make(map[string]Candidate)
	for _, list := range lists {
		for _, c := range list {
			sym := strings.ToUpper(c.Symbol)
			if cur, ok := best[sym]; !ok || c.Score > cur.Score {
				best[sym] = c
			}
		}
	}
	out := make([]Candidate, 0, len(best))
	for _, c := range best {
		out = append(out, c)
	}
	SortCandidates(out)
	return out
}

func capList(cands []Candidate, max int) []Candidate {
	if max > 0 && len(cands) > max {
		return cands[:max]
	}
	return cands
}
