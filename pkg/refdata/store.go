// Package refdata loads the optional local reference data consulted when
// local maps are enabled: a securities master, an ETF canonical-name map,
// and an alias map. Every source is optional; a missing or malformed file
// is logged and skipped so resolution can continue API-only.
package refdata

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/zeromicro/go-zero/core/logx"

	"tickerlens-api/pkg/match"
)

// Security is one row of the securities master.
type Security struct {
	Symbol string
	Name   string
	Type   match.AssetType
}

// Paths names the optional reference data files.
type Paths struct {
	Master   string `yaml:"master"`
	ETFCanon string `yaml:"etf_canon"`
	Aliases  string `yaml:"aliases"`
}

// Store holds the loaded reference data. Lookups key off simplified names.
type Store struct {
	mu          sync.RWMutex
	master      []Security
	etfCanonExt map[string]string
	aliasSyms   map[string][]string
	aliasExpand map[string][]string

	indexOnce sync.Once
	index     *invertedIndex
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{
		etfCanonExt: make(map[string]string),
		aliasSyms:   make(map[string][]string),
		aliasExpand: make(map[string][]string),
	}
}

// Load reads every configured file best-effort and returns the store.
func Load(paths Paths) *Store {
	s := NewStore()
	if paths.Master != "" {
		s.loadMaster(paths.Master)
	}
	if paths.ETFCanon != "" {
		s.loadETFCanon(paths.ETFCanon)
	}
	if paths.Aliases != "" {
		s.loadAliases(paths.Aliases)
	}
	return s
}

// SetMasterRows replaces the securities master, e.g. with rows read from
// Postgres instead of the CSV file.
func (s *Store) SetMasterRows(rows []Security) {
	s.mu.Lock()
	s.master = append([]Security(nil), rows...)
	s.mu.Unlock()
}

// MasterRows returns the loaded securities master.
func (s *Store) MasterRows() []Security {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.master
}

// ETFCanonSymbol looks up the external then built-in ETF canon. The bool
// result distinguishes the two sources: true for the external file.
func (s *Store) ETFCanonSymbol(simplified string) (string, bool, bool) {
	s.mu.RLock()
	sym, ok := s.etfCanonExt[simplified]
	s.mu.RUnlock()
	if ok {
		return sym, true, true
	}
	if sym, ok := etfCanonBuiltin[simplified]; ok {
		return sym, false, true
	}
	return "", false, false
}

// CommonCanonSymbol looks up the built-in common-stock canon.
func (s *Store) CommonCanonSymbol(simplified string) (string, bool) {
	sym, ok := canonCommon[simplified]
	return sym, ok
}

// AliasSymbols returns explicit preferred symbols for a simplified name.
func (s *Store) AliasSymbols(simplified string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.aliasSyms[simplified]
}

// AliasExpansions returns extra query terms for a simplified name.
func (s *Store) AliasExpansions(simplified string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.aliasExpand[simplified]
}

func (s *Store) loadMaster(path string) {
	f, err := os.Open(path)
	if err != nil {
		logx.Infof("refdata: securities master not found at %s (optional)", path)
		return
	}
	defer f.Close()

	rows, err := parseMasterCSV(f)
	if err != nil {
		logx.Errorf("refdata: failed to load securities master %s: %v", path, err)
		return
	}
	s.mu.Lock()
	s.master = rows
	s.mu.Unlock()
	logx.Infof("refdata: loaded securities master %s with %d rows", path, len(rows))
}

func parseMasterCSV(r io.Reader) ([]Security, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	head := records[0]
	col := map[string]int{}
	for i, h := range head {
		col[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF")))] = i
	}
	symIdx, okSym := col["symbol"]
	nameIdx, okName := col["name"]
	typeIdx, okType := col["type"]

	var rows []Security
	for _, rec := range records[1:] {
		if !okSym || !okName || symIdx >= len(rec) || nameIdx >= len(rec) {
			continue
		}
		sym := strings.ToUpper(strings.TrimSpace(rec[symIdx]))
		name := strings.TrimSpace(rec[nameIdx])
		if sym == "" || name == "" {
			continue
		}
		typ := match.AssetCommonStock
		if okType && typeIdx < len(rec) {
			if strings.EqualFold(strings.TrimSpace(rec[typeIdx]), "ETF") {
				typ = match.AssetETF
			}
		}
		rows = append(rows, Security{Symbol: sym, Name: name, Type: typ})
	}
	return rows, nil
}

func (s *Store) loadETFCanon(path string) {
	raw := map[string]any{}
	if !readJSONFile(path, &raw, "ETF canon") {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range raw {
		sym, ok := v.(string)
		if !ok {
			continue
		}
		s.etfCanonExt[match.Simplify(k)] = strings.ToUpper(sym)
	}
}

// loadAliases accepts either {"name": "SYM"} or
// {"name": {"symbols": [...], "expand": [...]}} entries.
func (s *Store) loadAliases(path string) {
	raw := map[string]any{}
	if !readJSONFile(path, &raw, "aliases") {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range raw {
		key := match.Simplify(k)
		switch val := v.(type) {
		case string:
			s.aliasSyms[key] = []string{strings.ToUpper(val)}
		case map[string]any:
			if syms, ok := val["symbols"].([]any); ok {
				var out []string
				for _, sv := range syms {
					if str, ok := sv.(string); ok && str != "" {
						out = append(out, strings.ToUpper(str))
					}
				}
				if len(out) > 0 {
					s.aliasSyms[key] = out
				}
			}
			if exp, ok := val["expand"].([]any); ok {
				var out []string
				for _, ev := range exp {
					if str, ok := ev.(string); ok && str != "" {
						out = append(out, str)
					}
				}
				if len(out) > 0 {
					s.aliasExpand[key] = out
				}
			}
		}
	}
}

func readJSONFile(path string, into any, what string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logx.Errorf("refdata: failed reading %s %s: %v", what, path, err)
		}
		return false
	}
	if err := json.Unmarshal(data, into); err != nil {
		logx.Errorf("refdata: failed loading %s %s: %v", what, path, err)
		return false
	}
	return true
}
