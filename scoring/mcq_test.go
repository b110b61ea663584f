package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreMCQ(t *testing.T) {
	correct := map[string]bool{"A": true, "C": true}

	tests := []struct {
		name     string
		selected []string
		want     float64
	}{
		{"exact match", []string{"A", "C"}, 5},
		{"exact match different order", []string{"C", "A"}, 5},
		{"duplicates collapse", []string{"A", "A", "C"}, 5},
		{"subset scores zero", []string{"A"}, 0},
		{"superset scores zero", []string{"A", "B", "C"}, 0},
		{"disjoint scores zero", []string{"B", "D"}, 0},
		{"empty selection scores zero", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, isCorrect := ScoreMCQ(tt.selected, correct, 5)
			assert.Equal(t, tt.want, score)
			assert.Equal(t, tt.want == 5, isCorrect)
		})
	}
}

func TestScoreMCQEmptyCorrectSet(t *testing.T) {
	// a question with no key cannot be answered correctly, even by an
	// empty selection
	score, isCorrect := ScoreMCQ(nil, map[string]bool{}, 5)
	assert.Equal(t, 0.0, score)
	assert.False(t, isCorrect)

	score, isCorrect = ScoreMCQ([]string{"A"}, map[string]bool{}, 5)
	assert.Equal(t, 0.0, score)
	assert.False(t, isCorrect)
}
