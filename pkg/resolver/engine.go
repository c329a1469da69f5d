package resolver

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/zeromicro/go-zero/core/collection"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/mr"

	"tickerlens-api/pkg/match"
	"tickerlens-api/pkg/provider"
	"tickerlens-api/pkg/refdata"
)

const (
	canonScore = 0.97
	aliasScore = 0.96
	cacheScore = 1.0

	// shouldQueryMore thresholds. Once the first provider produced a
	// candidate this strong, querying further providers cannot change
	// the outcome.
	enoughETFScore      = 0.94
	enoughDomesticScore = 0.95

	// familyCollapseMargin is how far behind the family best a domestic
	// listing may sit and still represent the family.
	familyCollapseMargin = 0.04

	// secondPassWeakScore triggers the refinement pass when the first
	// pass topped out below it.
	secondPassWeakScore = 0.88
)

// Meta is the audit trail for one search.
type Meta struct {
	Input      string
	Simplified string
	Version    string
	Variants   []string
	CacheHit   bool
	MemoHit    bool
	LocalOnly  bool
	SecondPass bool
	Providers  []string
	ElapsedMS  int64
}

// Engine aggregates candidates from the local reference data and the
// configured providers, and applies the selection policy.
type Engine struct {
	cfg       Config
	searchers []provider.Searcher
	ref       *refdata.Store
	store     *SymbolStore
	memo      *collection.Cache
}

// NewEngine wires an engine. ref may be empty but not nil; store may be
// nil to disable the durable cache entirely.
func NewEngine(cfg Config, searchers []provider.Searcher, ref *refdata.Store, store *SymbolStore) *Engine {
	cfg.withDefaults()
	memo, err := collection.NewCache(defaultMemoExpire,
		collection.WithLimit(cfg.MemoCapacity),
		collection.WithName("resolver-memo"))
	if err != nil {
		logx.Errorf("resolver: memo cache init: %v", err)
	}
	if ref == nil {
		ref = refdata.NewStore()
	}
	return &Engine{
		cfg:       cfg,
		searchers: searchers,
		ref:       ref,
		store:     store,
		memo:      memo,
	}
}

// Config returns the engine's effective configuration.
func (e *Engine) Config() Config { return e.cfg }

// Store exposes the durable resolution cache, for callers that persist
// accepted symbols.
func (e *Engine) Store() *SymbolStore { return e.store }

// SearchCandidates returns the ranked candidates for a security name.
func (e *Engine) SearchCandidates(ctx context.Context, name string) []Candidate {
	cands, _ := e.SearchWithMeta(ctx, name)
	return cands
}

// Version is the resolver generation, also embedded in the durable
// cache path.
func Version() string {
	return fmt.Sprintf("v%d", cacheVersion)
}

// SearchWithMeta is SearchCandidates plus the audit trail of how the
// list was produced.
func (e *Engine) SearchWithMeta(ctx context.Context, name string) (cands []Candidate, meta Meta) {
	start := time.Now()
	defer func() { meta.ElapsedMS = time.Since(start).Milliseconds() }()

	simplified := match.Simplify(name)
	meta = Meta{Input: name, Simplified: simplified, Version: Version()}
	if simplified == "" {
		return nil, meta
	}

	if e.memo != nil {
		if v, ok := e.memo.Get(simplified); ok {
			meta.MemoHit = true
			return v.([]Candidate), meta
		}
	}

	if e.cfg.CacheRead && e.store != nil {
		if sym, ok := e.store.Get(simplified); ok {
			meta.CacheHit = true
			cands := []Candidate{NewCandidate(sym, name, match.InferExpectedType(name), cacheScore, "Cache")}
			return cands, meta
		}
	}

	var local []Candidate
	if e.cfg.UseLocalMaps {
		if c, ok := e.canonCandidate(name, simplified); ok {
			return []Candidate{c}, meta
		}
		local = e.localCandidates(name)
		if e.cfg.LocalFirst && e.localAccept(local) {
			meta.LocalOnly = true
			out := capList(MergeBest(local), e.cfg.TopK)
			e.memoize(simplified, out)
			return out, meta
		}
	}

	maxVariants := e.cfg.MaxVariants
	if maxVariants <= 0 {
		maxVariants = match.DefaultMaxVariants
	}
	var expansions []string
	if e.cfg.UseLocalMaps {
		expansions = e.ref.AliasExpansions(simplified)
	}
	variants := match.QueryVariants(name, expansions, maxVariants)
	meta.Variants = variants

	lists := [][]Candidate{local}
	if e.cfg.UseLocalMaps {
		lists = append(lists, e.aliasCandidates(name, simplified))
	}
	fromProviders, queried := e.searchProviders(ctx, name, variants)
	meta.Providers = queried
	lists = append(lists, fromProviders...)

	merged := e.collapseFamilies(MergeBest(lists...))

	if e.secondPassNeeded(merged) {
		meta.SecondPass = true
		merged = e.secondPass(ctx, merged)
	}

	out := capList(merged, e.cfg.TopK)
	e.memoize(simplified, out)
	return out, meta
}

func (e *Engine) memoize(key string, cands []Candidate) {
	if e.memo != nil {
		e.memo.Set(key, cands)
	}
}

// canonCandidate consults the curated name-to-symbol tables. A canon hit
// is authoritative enough to return alone.
func (e *Engine) canonCandidate(name, simplified string) (Candidate, bool) {
	if match.InferExpectedType(name) == match.AssetETF {
		if sym, _, ok := e.ref.ETFCanonSymbol(simplified); ok {
			return NewCandidate(sym, name, match.AssetETF, canonScore, "Canon"), true
		}
	}
	if sym, ok := e.ref.CommonCanonSymbol(simplified); ok {
		return NewCandidate(sym, name, match.AssetCommonStock, canonScore, "Canon"), true
	}
	if sym, _, ok := e.ref.ETFCanonSymbol(simplified); ok {
		return NewCandidate(sym, name, match.AssetETF, canonScore, "Canon"), true
	}
	return Candidate{}, false
}

// aliasCandidates turns explicit alias symbols into high-confidence
// candidates.
func (e *Engine) aliasCandidates(name, simplified string) []Candidate {
	syms := e.ref.AliasSymbols(simplified)
	out := make([]Candidate, 0, len(syms))
	for _, sym := range syms {
		out = append(out, NewCandidate(sym, name, "", aliasScore, "Alias"))
	}
	return out
}

// localCandidates scores the fast local index rows like provider hits.
func (e *Engine) localCandidates(name string) []Candidate {
	rows := e.ref.FastLookup(name)
	if len(rows) == 0 {
		return nil
	}
	hits := make([]provider.Hit, 0, len(rows))
	for _, r := range rows {
		hits = append(hits, provider.Hit{Symbol: r.Symbol, Name: r.Name, Type: r.Type})
	}
	prefs := match.BiasPrefs{PreferDomestic: e.cfg.PreferDomestic, PreferOTC: e.cfg.PreferOTC}
	return scoreHits(name, hits, "Local", prefs)
}

func (e *Engine) localAccept(local []Candidate) bool {
	for _, c := range local {
		if c.Score >= e.cfg.LocalAcceptScore && match.IsDomesticSymbol(c.Symbol, e.cfg.PreferOTC) {
			return true
		}
	}
	return false
}

// searchProviders runs the variant loop against every enabled provider.
// In parallel mode all providers run concurrently; in sequential mode
// each provider only runs while the accumulated best is not yet good
// enough.
func (e *Engine) searchProviders(ctx context.Context, name string, variants []string) ([][]Candidate, []string) {
	enabled := make([]provider.Searcher, 0, len(e.searchers))
	for _, s := range e.searchers {
		if s != nil && s.Enabled() {
			enabled = append(enabled, s)
		}
	}
	if len(enabled) == 0 {
		return nil, nil
	}

	expected := match.InferExpectedType(name)
	lists := make([][]Candidate, len(enabled))
	queried := make([]string, 0, len(enabled))

	if e.cfg.ParallelProviders && len(enabled) > 1 {
		var mu sync.Mutex
		fns := make([]func() error, len(enabled))
		for i, s := range enabled {
			i, s := i, s
			fns[i] = func() error {
				got := searchProvider(ctx, s, name, variants, e.cfg)
				mu.Lock()
				lists[i] = got
				queried = append(queried, s.Name())
				mu.Unlock()
				return nil
			}
		}
		if err := mr.Finish(fns...); err != nil {
			logx.WithContext(ctx).Errorf("resolver: provider fan-out: %v", err)
		}
		return lists, queried
	}

	var acc []Candidate
	for i, s := range enabled {
		if i > 0 && !shouldQueryMore(acc, expected) {
			break
		}
		lists[i] = searchProvider(ctx, s, name, variants, e.cfg)
		queried = append(queried, s.Name())
		acc = MergeBest(acc, lists[i])
	}
	return lists, queried
}

// shouldQueryMore reports whether another provider could still improve
// the outcome given what the previous ones returned.
func shouldQueryMore(cands []Candidate, expected match.AssetType) bool {
	if len(cands) == 0 {
		return true
	}
	top := cands[0]
	if expected == match.AssetETF {
		return !(top.Type == match.AssetETF && top.Score >= enoughETFScore)
	}
	return !(match.IsDomesticSymbol(top.Symbol, false) && top.Score >= enoughDomesticScore)
}

// collapseFamilies keeps one candidate per issuer family. Within a
// family the best score wins, except that a domestic listing close
// behind a foreign one represents the family instead. Symbols encoding
// distinct share classes stay separate; the selector decides between
// classes, not the collapse.
func (e *Engine) collapseFamilies(cands []Candidate) []Candidate {
	if len(cands) <= 1 {
		return cands
	}
	type family struct {
		rep  Candidate
		best float64
	}
	var (
		order []string
		fams  = make(map[string]*family)
		loose []Candidate
	)
	for _, c := range cands {
		key := match.FamilyKey(c.DisplayName)
		if key == "" {
			loose = append(loose, c)
			continue
		}
		if class := symbolClass(c.Symbol); class != "" {
			key += ":" + class
		}
		f, ok := fams[key]
		if !ok {
			fams[key] = &family{rep: c, best: c.Score}
			order = append(order, key)
			continue
		}
		if c.Score > f.best {
			f.best = c.Score
		}
		better := c.Score > f.rep.Score
		if e.cfg.PreferDomestic {
			cDom := match.IsDomesticSymbol(c.Symbol, e.cfg.PreferOTC)
			repDom := match.IsDomesticSymbol(f.rep.Symbol, e.cfg.PreferOTC)
			switch {
			case cDom && !repDom && c.Score >= f.best-familyCollapseMargin:
				better = true
			case !cDom && repDom && f.rep.Score >= f.best-familyCollapseMargin:
				better = false
			}
		}
		if better {
			f.rep = c
		}
	}
	out := make([]Candidate, 0, len(order)+len(loose))
	for _, key := range order {
		out = append(out, fams[key].rep)
	}
	out = append(out, loose...)
	SortCandidates(out)
	return out
}

// secondPassNeeded triggers the refinement pass when domestic listings
// are preferred but the first pass ended on a foreign-suffixed or weak
// top candidate.
func (e *Engine) secondPassNeeded(cands []Candidate) bool {
	if !e.cfg.SecondPass.Enabled || !e.cfg.PreferDomestic || len(cands) == 0 {
		return false
	}
	top := cands[0]
	return match.ForeignSuffix(top.Symbol) != "" || top.Score < secondPassWeakScore
}

// secondPass re-queries the providers using the top candidate's own
// listing identity: its raw name, the simplified form of that name,
// and the bare domestic stem when the symbol carries a foreign
// exchange suffix. MaxQueries bounds the total number of provider
// queries issued across the whole pass.
func (e *Engine) secondPass(ctx context.Context, first []Candidate) []Candidate {
	rep := first[0]
	queries := secondPassQueries(rep)
	if len(queries) == 0 {
		return first
	}
	budget := e.cfg.SecondPass.MaxQueries
	if budget <= 0 {
		budget = defaultSecondPassMaxQueries
	}
	prefs := match.BiasPrefs{PreferDomestic: e.cfg.PreferDomestic, PreferOTC: e.cfg.PreferOTC}
	lists := [][]Candidate{first}
	for _, s := range e.searchers {
		if s == nil || !s.Enabled() || budget <= 0 {
			continue
		}
		for _, q := range queries {
			if budget <= 0 {
				break
			}
			budget--
			hits, err := s.Search(ctx, q)
			if err != nil {
				logx.WithContext(ctx).Errorf("resolver: %s second pass %q: %v", s.Name(), q, err)
				continue
			}
			scored := scoreHits(rep.DisplayName, hits, s.Name(), prefs)
			if e.cfg.PreferDomestic {
				scored = append(scored, domesticHypotheses(rep.DisplayName, scored, prefs)...)
			}
			lists = append(lists, scored)
		}
	}
	return e.collapseFamilies(MergeBest(lists...))
}

// secondPassQueries derives the refinement queries from the family
// representative.
func secondPassQueries(rep Candidate) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(q string) {
		q = match.SanitizeQuery(q)
		if q == "" || seen[q] {
			return
		}
		seen[q] = true
		out = append(out, q)
	}
	if rep.DisplayName != "" {
		add(rep.DisplayName)
		add(match.Simplify(rep.DisplayName))
	}
	if suffix := match.ForeignSuffix(rep.Symbol); suffix != "" {
		stem := strings.TrimSuffix(rep.Symbol, suffix)
		if stemRe.MatchString(stem) {
			add(strings.ToLower(stem))
		}
	}
	return out
}
