package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// CandidateRecord is the audit view of one scored candidate.
type CandidateRecord struct {
	Symbol string  `json:"symbol"`
	Score  float64 `json:"score"`
	Source string  `json:"source"`
	Name   string  `json:"name,omitempty"`
}

// Record captures one end-to-end resolution for audit and analysis.
type Record struct {
	Timestamp  time.Time         `json:"timestamp"`
	Input      string            `json:"input"`
	Simplified string            `json:"simplified,omitempty"`
	Symbol     string            `json:"symbol,omitempty"`
	Reason     string            `json:"reason"`
	CacheHit   bool              `json:"cache_hit,omitempty"`
	SecondPass bool              `json:"second_pass,omitempty"`
	Providers  []string          `json:"providers,omitempty"`
	Variants   []string          `json:"variants,omitempty"`
	Candidates []CandidateRecord `json:"candidates,omitempty"`
	Extra      map[string]any    `json:"extra,omitempty"`
}

// Writer persists resolution records to a directory as JSON files.
type Writer struct {
	dir   string
	seq   int
	nowFn func() time.Time
}

// NewWriter constructs a journal writer rooted at dir.
func NewWriter(dir string) *Writer {
	if dir == "" {
		dir = "journal"
	}
	_ = os.MkdirAll(dir, 0o755)
	return &Writer{dir: dir, nowFn: time.Now}
}

// Write persists one record to a timestamped JSON file and returns its path.
func (w *Writer) Write(rec *Record) (string, error) {
	if rec == nil {
		return "", fmt.Errorf("journal: nil record")
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = w.nowFn()
	}
	w.seq++
	name := fmt.Sprintf("resolve_%s_%05d.json", rec.Timestamp.UTC().Format("20060102_150405"), w.seq)
	path := filepath.Join(w.dir, name)
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
