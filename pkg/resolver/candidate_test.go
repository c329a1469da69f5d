package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tickerlens-api/pkg/match"
)

func TestNewCandidateRoundsAndClamps(t *testing.T) {
	c := NewCandidate("msft", "Microsoft Corporation", match.AssetCommonStock, 0.9271, "Finnhub")
	assert.Equal(t, "MSFT", c.Symbol)
	assert.Equal(t, 0.93, c.Score)

	assert.Equal(t, 1.0, NewCandidate("A", "a", "", 1.7, "x").Score)
	assert.Equal(t, 0.0, NewCandidate("A", "a", "", -0.2, "x").Score)
}

func TestSortCandidatesDeterministic(t *testing.T) {
	cands := []Candidate{
		{Symbol: "BBB", Score: 0.80},
		{Symbol: "AAA", Score: 0.80},
		{Symbol: "CCC", Score: 0.95},
	}
	SortCandidates(cands)
	assert.Equal(t, "CCC", cands[0].Symbol)
	assert.Equal(t, "AAA", cands[1].Symbol)
	assert.Equal(t, "BBB", cands[2].Symbol)
}

func TestMergeBestKeepsHighestPerSymbol(t *testing.T) {
	a := []Candidate{{Symbol: "MSFT", Score: 0.70, Source: "Finnhub"}}
	b := []Candidate{
		{Symbol: "MSFT", Score: 0.91, Source: "Polygon"},
		{Symbol: "AAPL", Score: 0.50, Source: "Polygon"},
	}
	merged := MergeBest(a, b)
	assert.Len(t, merged, 2)
	assert.Equal(t, "MSFT", merged[0].Symbol)
	assert.Equal(t, 0.91, merged[0].Score)
	assert.Equal(t, "Polygon", merged[0].Source)
}

func TestCapList(t *testing.T) {
	cands := []Candidate{{Symbol: "A"}, {Symbol: "B"}, {Symbol: "C"}}
	assert.Len(t, capList(cands, 2), 2)
	assert.Len(t, capList(cands, 0), 3)
}
