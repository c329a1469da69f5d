package refdata

import (
	"tickerlens-api/pkg/match"
)

// invertedIndex maps distinctive tokens to row offsets for fast local
// candidate lookup. Built once on first use from the master plus the
// canon tables.
type invertedIndex struct {
	rows     []Security
	postings map[string][]int
}

func (s *Store) buildIndex() {
	idx := &invertedIndex{postings: make(map[string][]int)}

	idx.rows = append(idx.rows, s.MasterRows()...)
	for name, sym := range canonCommon {
		idx.rows = append(idx.rows, Security{Symbol: sym, Name: name, Type: match.AssetCommonStock})
	}
	for name, sym := range etfCanonBuiltin {
		idx.rows = append(idx.rows, Security{Symbol: sym, Name: name, Type: match.AssetETF})
	}
	s.mu.RLock()
	for name, sym := range s.etfCanonExt {
		idx.rows = append(idx.rows, Security{Symbol: sym, Name: name, Type: match.AssetETF})
	}
	s.mu.RUnlock()

	for i, row := range idx.rows {
		for t := range match.TokenSet(row.Name) {
			if match.IsStopword(t) || match.IsGenericWord(t) {
				continue
			}
			idx.postings[t] = append(idx.postings[t], i)
		}
	}
	s.index = idx
}

// FastLookup returns master/canon rows sharing at least one distinctive
// token with name. Scoring is left to the caller.
func (s *Store) FastLookup(name string) []Security {
	s.indexOnce.Do(s.buildIndex)

	var toks []string
	for _, t := range match.Tokenize(name) {
		if match.IsStopword(t) || match.IsGenericWord(t) {
			continue
		}
		toks = append(toks, t)
	}
	if len(toks) == 0 {
		return nil
	}

	seen := make(map[int]bool)
	var out []Security
	for _, t := range toks {
		for _, i := range s.index.postings[t] {
			if seen[i] {
				continue
			}
			seen[i] = true
			out = append(out, s.index.rows[i])
		}
	}
	return out
}
