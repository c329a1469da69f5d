package journal

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterWritesRecord(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)
	w.nowFn = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

	path, err := w.Write(&Record{
		Input:  "Widget Industries",
		Symbol: "WID",
		Reason: "single_candidate:0.92",
		Candidates: []CandidateRecord{
			{Symbol: "WID", Score: 0.92, Source: "Finnhub"},
		},
	})
	require.NoError(t, err)
	assert.Contains(t, path, "resolve_20250601_120000_00001.json")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var got Record
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "WID", got.Symbol)
	assert.False(t, got.Timestamp.IsZero())
}

func TestWriterRejectsNil(t *testing.T) {
	w := NewWriter(t.TempDir())
	_, err := w.Write(nil)
	assert.Error(t, err)
}
