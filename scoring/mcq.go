package scoring

// ScoreMCQ awards full marks iff the selected option set equals the correct
// set exactly. No partial credit: a subset or superset of the correct
// options scores zero. Duplicate selections collapse before comparison.
// An empty correct set never matches; a question without a key cannot be
// answered correctly, and authoring rejects such questions up front.
func ScoreMCQ(selected []string, correct map[string]bool, marks float64) (score float64, isCorrect bool) {
	if len(correct) == 0 {
		return 0, false
	}
	selectedSet := make(map[string]bool, len(selected))
	for _, opt := range selected {
		selectedSet[opt] = true
	}
	if len(selectedSet) != len(correct) {
		return 0, false
	}
	for opt := range selectedSet {
		if !correct[opt] {
			return 0, false
		}
	}
	return marks, true
}
