package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasContradiction(t *testing.T) {
	assert.True(t, HasContradiction("Acme Bank Holdings", "Acme Cruise Lines"))
	assert.True(t, HasContradiction("First Bank Corp", "First Brewer PLC"))
	assert.True(t, HasContradiction("Coca-Cola Company", "Coca-Cola Femsa SAB"))
	assert.True(t, HasContradiction("Widget Corp", "Gadget Industries"), "disjoint strong tokens")
	assert.False(t, HasContradiction("Alphabet Inc Class C", "Alphabet Inc Class A"))
	assert.False(t, HasContradiction("Coca-Cola Company", "Coca-Cola Company"))
}

func TestApplyBiases_ContradictionVeto(t *testing.T) {
	score := ApplyBiases(0.70, BiasInput{
		Symbol:         "ACR",
		SimplifiedName: Simplify("Acme Bank Holdings"),
		InputName:      "Acme Bank Holdings",
		CandidateName:  "Acme Cruise Lines",
		CandidateType:  AssetCommonStock,
		ExpectedType:   AssetCommonStock,
	})
	assert.Equal(t, 0.0, score)
}

func TestApplyBiases_LowScorePenalty(t *testing.T) {
	in := BiasInput{
		Symbol:         "WBC",
		SimplifiedName: "widget bakers",
		InputName:      "Widget Bakers Corp",
		CandidateName:  "Widget Bread Company",
		CandidateType:  AssetCommonStock,
		ExpectedType:   AssetCommonStock,
	}
	// Below 0.30 zeroes outright.
	assert.Equal(t, 0.0, ApplyBiases(0.25, in))
	// Between 0.30 and 0.40 gets the -0.35 penalty before the type bonus.
	got := ApplyBiases(0.35, in)
	assert.InDelta(t, 0.35-0.35+0.12, got, 1e-9)
}

func TestApplyBiases_ShareClassBonus(t *testing.T) {
	base := 0.80
	in := BiasInput{
		Symbol:         "BRK.B",
		SimplifiedName: Simplify("Berkshire Hathaway Inc Class B"),
		InputName:      "Berkshire Hathaway Inc Class B",
		CandidateName:  "Berkshire Hathaway Inc",
		CandidateType:  AssetCommonStock,
		ExpectedType:   AssetCommonStock,
	}
	plain := in
	plain.Symbol = "BRK"
	assert.InDelta(t, 0.06,
		ApplyBiases(base, in)-ApplyBiases(base, plain), 1e-9,
		"matching .B suffix earns the class bonus")

	// No bonus under the 0.55 base floor.
	weak := ApplyBiases(0.50, in)
	weakPlain := ApplyBiases(0.50, plain)
	assert.InDelta(t, 0.0, weak-weakPlain, 1e-9)
}

func TestApplyBiases_TypeAgreement(t *testing.T) {
	in := BiasInput{
		Symbol:         "VOO",
		SimplifiedName: "vanguard s p 500 etf",
		InputName:      "Vanguard S&P 500 ETF",
		CandidateName:  "Vanguard S&P 500 ETF",
		ExpectedType:   AssetETF,
	}
	agree := in
	agree.CandidateType = AssetETF
	disagree := in
	disagree.CandidateType = AssetCommonStock
	assert.InDelta(t, 0.52, ApplyBiases(0.80, agree)-ApplyBiases(0.80, disagree), 1e-9)
}

func TestApplyBiases_ListingPreference(t *testing.T) {
	prefs := BiasPrefs{PreferDomestic: true, PreferOTC: true}
	mk := func(sym string) float64 {
		return ApplyBiases(0.80, BiasInput{
			Symbol:         sym,
			SimplifiedName: "royal bank canada",
			InputName:      "Royal Bank of Canada",
			CandidateName:  "Royal Bank of Canada",
			CandidateType:  AssetCommonStock,
			ExpectedType:   AssetCommonStock,
			Prefs:          prefs,
		})
	}
	assert.Greater(t, mk("RY"), mk("RY.TO"), "domestic shape outranks a foreign-suffixed twin")
	assert.LessOrEqual(t, mk("RY.TO"), 1.0)
	assert.GreaterOrEqual(t, mk("RY.TO"), 0.0)
}

func TestApplyBiases_Clamped(t *testing.T) {
	got := ApplyBiases(0.97, BiasInput{
		Symbol:         "GOOG",
		SimplifiedName: "alphabet classc",
		InputName:      "Alphabet Inc Class C",
		CandidateName:  "Alphabet Inc Class C",
		CandidateType:  AssetCommonStock,
		ExpectedType:   AssetCommonStock,
		Prefs:          BiasPrefs{PreferDomestic: true, PreferOTC: true},
	})
	assert.LessOrEqual(t, got, 1.0)
	assert.GreaterOrEqual(t, got, 0.97)
}
