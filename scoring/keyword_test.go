package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreKeywordsEssentialOnly(t *testing.T) {
	// 2/2 essential on a 10-mark question: full 80% weight, no bonus group
	score, analysis := ScoreKeywords(
		"Photosynthesis converts light energy into chemical energy.",
		`["photosynthesis","light energy"]`,
		10,
	)
	assert.Equal(t, 8.0, score)
	assert.Equal(t, 2, analysis.FoundEssential)
	assert.Equal(t, 2, analysis.TotalEssential)
	assert.Equal(t, 0, analysis.TotalBonus)
	assert.Empty(t, analysis.Error)
	assert.ElementsMatch(t, []string{"photosynthesis", "light energy"}, analysis.FoundKeywords())
	assert.Empty(t, analysis.MissingKeywords())
}

func TestScoreKeywordsEssentialAndBonus(t *testing.T) {
	// 1/2 essential + 1/1 bonus on 10 marks: 0.5*10*0.8 + 1*10*0.2 = 6.0
	score, analysis := ScoreKeywords(
		"Chlorophyll absorbs sunlight.",
		`{"essential":["chlorophyll","stomata"],"bonus":["sunlight"]}`,
		10,
	)
	assert.Equal(t, 6.0, score)
	assert.Equal(t, 1, analysis.FoundEssential)
	assert.Equal(t, 2, analysis.TotalEssential)
	assert.Equal(t, 1, analysis.FoundBonus)
	assert.Equal(t, 1, analysis.TotalBonus)
	assert.Equal(t, []string{"stomata"}, analysis.MissingKeywords())
}

func TestScoreKeywordsNoEssentialFound(t *testing.T) {
	score, analysis := ScoreKeywords("completely unrelated text", `["mitochondria"]`, 10)
	assert.Equal(t, 0.0, score)
	assert.Equal(t, 0, analysis.FoundEssential)
}

func TestScoreKeywordsCappedAtMax(t *testing.T) {
	score, _ := ScoreKeywords(
		"alpha beta",
		`{"essential":["alpha"],"bonus":["beta"]}`,
		10,
	)
	// 1*10*0.8 + 1*10*0.2 is exactly the max
	assert.Equal(t, 10.0, score)
}

func TestScoreKeywordsNormalization(t *testing.T) {
	// case, punctuation and whitespace noise must not break matching;
	// hyphens are preserved
	score, analysis := ScoreKeywords(
		"The  KREBS   cycle!!! is, in fact, a well-known pathway.",
		`["krebs cycle","well-known"]`,
		10,
	)
	assert.Equal(t, 8.0, score)
	assert.Equal(t, 2, analysis.FoundEssential)
	for _, m := range analysis.Essential {
		require.True(t, m.Found)
		require.NotEmpty(t, m.Positions)
	}
}

func TestScoreKeywordsSubstringContainment(t *testing.T) {
	// partial containment matches: "synthesis" is inside "photosynthesis"
	_, analysis := ScoreKeywords("photosynthesis", `["synthesis"]`, 10)
	assert.Equal(t, 1, analysis.FoundEssential)
}

func TestScoreKeywordsRecordsAllPositions(t *testing.T) {
	_, analysis := ScoreKeywords("cell wall and cell membrane", `["cell"]`, 10)
	require.Len(t, analysis.Essential, 1)
	assert.Equal(t, []int{0, 14}, analysis.Essential[0].Positions)
}

func TestScoreKeywordsCommaFallback(t *testing.T) {
	// not valid JSON: falls back to comma splitting, all essential
	score, analysis := ScoreKeywords("osmosis and diffusion", "osmosis, diffusion", 10)
	assert.Equal(t, 8.0, score)
	assert.Equal(t, 2, analysis.TotalEssential)
	assert.Empty(t, analysis.Error)
}

func TestScoreKeywordsUnusableConfig(t *testing.T) {
	// nothing parseable: zero score with the error marker, never a panic
	score, analysis := ScoreKeywords("any answer", "   ", 10)
	assert.Equal(t, 0.0, score)
	assert.NotEmpty(t, analysis.Error)

	score, analysis = ScoreKeywords("any answer", ",,,", 10)
	assert.Equal(t, 0.0, score)
	assert.NotEmpty(t, analysis.Error)
}

func TestScoreKeywordsRoundsToTwoDecimals(t *testing.T) {
	// 1/3 essential on 10 marks: 10*0.8/3 = 2.666... -> 2.67
	score, _ := ScoreKeywords("alpha", `["alpha","beta","gamma"]`, 10)
	assert.Equal(t, 2.67, score)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "hello world", Normalize("  Hello,   WORLD!  "))
	assert.Equal(t, "well-known fact", Normalize("Well-Known; fact."))
	assert.Equal(t, "", Normalize("!!! ... ???"))
}

func TestValidateKeywordConfig(t *testing.T) {
	require.NoError(t, ValidateKeywordConfig(`["a","b"]`))
	require.NoError(t, ValidateKeywordConfig(`{"essential":["a"],"bonus":["b"]}`))
	require.NoError(t, ValidateKeywordConfig(`{"bonus":["b"]}`))
	require.NoError(t, ValidateKeywordConfig("a, b, c"))

	assert.Error(t, ValidateKeywordConfig(""))
	assert.Error(t, ValidateKeywordConfig("   "))
	assert.Error(t, ValidateKeywordConfig(`[]`))
	assert.Error(t, ValidateKeywordConfig(`{"essential":[],"bonus":[]}`))
	assert.Error(t, ValidateKeywordConfig(`["  ", ""]`))
}
