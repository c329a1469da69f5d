package resolver

import (
	"context"
	"sync"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/mr"

	"tickerlens-api/pkg/match"
	"tickerlens-api/pkg/provider"
)

// scoreHits turns raw provider hits into scored candidates for the given
// input name.
func scoreHits(inputName string, hits []provider.Hit, source string, prefs match.BiasPrefs) []Candidate {
	simplified := match.Simplify(inputName)
	expected := match.InferExpectedType(inputName)
	out := make([]Candidate, 0, len(hits))
	for _, h := range hits {
		if h.Symbol == "" {
			continue
		}
		base := match.FuzzyScore(inputName, h.Name)
		score := match.ApplyBiases(base, match.BiasInput{
			Symbol:         h.Symbol,
			SimplifiedName: simplified,
			InputName:      inputName,
			CandidateName:  h.Name,
			CandidateType:  h.Type,
			ExpectedType:   expected,
			Prefs:          prefs,
		})
		if score <= 0 {
			continue
		}
		out = append(out, NewCandidate(h.Symbol, h.Name, h.Type, score, source))
	}
	return out
}

// searchProvider runs the query variants against one provider, scores
// everything that comes back, adds listing and share-class hypotheses,
// and returns the deduplicated top candidates. The variant loop exits
// early once a sufficiently strong preferred-listing candidate appears;
// later variants only reformulate the same name and cannot beat it by
// enough to matter.
func searchProvider(ctx context.Context, s provider.Searcher, name string, variants []string, cfg Config) []Candidate {
	if s == nil || !s.Enabled() || len(variants) == 0 {
		return nil
	}
	prefs := match.BiasPrefs{PreferDomestic: cfg.PreferDomestic, PreferOTC: cfg.PreferOTC}

	var all []Candidate
	if cfg.VariantConcurrency > 1 {
		all = searchVariantsParallel(ctx, s, name, variants, prefs, cfg.VariantConcurrency)
	} else {
		for _, q := range variants {
			hits, err := s.Search(ctx, q)
			if err != nil {
				logx.WithContext(ctx).Errorf("resolver: %s search %q: %v", s.Name(), q, err)
				continue
			}
			all = append(all, scoreHits(name, hits, s.Name(), prefs)...)
			if hasEarlyExit(all, cfg) {
				break
			}
		}
	}

	if cfg.PreferDomestic {
		all = append(all, domesticHypotheses(name, all, prefs)...)
	}
	all = append(all, classHypotheses(name, all, prefs)...)

	return capList(MergeBest(all), cfg.TopK)
}

// searchVariantsParallel fans the variants out over a bounded worker
// pool. There is no early exit on this path; all variants run.
func searchVariantsParallel(ctx context.Context, s provider.Searcher, name string, variants []string, prefs match.BiasPrefs, workers int) []Candidate {
	var (
		mu  sync.Mutex
		all []Candidate
	)
	mr.ForEach(func(source chan<- string) {
		for _, q := range variants {
			source <- q
		}
	}, func(q string) {
		hits, err := s.Search(ctx, q)
		if err != nil {
			logx.WithContext(ctx).Errorf("resolver: %s search %q: %v", s.Name(), q, err)
			return
		}
		scored := scoreHits(name, hits, s.Name(), prefs)
		mu.Lock()
		all = append(all, scored...)
		mu.Unlock()
	}, mr.WithWorkers(workers))
	return all
}

func hasEarlyExit(cands []Candidate, cfg Config) bool {
	for _, c := range cands {
		if c.Score < cfg.EarlyExitScore {
			continue
		}
		if !cfg.PreferDomestic || match.IsDomesticSymbol(c.Symbol, cfg.PreferOTC) {
			return true
		}
	}
	return false
}
