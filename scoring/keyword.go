// Package scoring holds the pure scoring algorithms: exact-set matching for
// multiple-choice answers and weighted keyword matching for free-text
// answers. Everything here is a pure function over (answer, key); scoring
// never touches storage and never fails for well-formed input.
package scoring

import (
	"math"
	"strings"
)

// Weight split between the required and the extra-credit keyword groups.
const (
	essentialWeight = 0.8
	bonusWeight     = 0.2
)

// KeywordMatch records whether one keyword was found in the answer and at
// which byte offsets of the normalized answer text. Positions are kept for
// the review UI.
type KeywordMatch struct {
	Keyword   string `json:"keyword"`
	Found     bool   `json:"found"`
	Positions []int  `json:"positions,omitempty"`
}

// KeywordAnalysis is the full audit trail of one keyword-scoring run. It is
// persisted alongside the score so that reviewers see what matched and so
// that rescoring stays explainable.
type KeywordAnalysis struct {
	Essential []KeywordMatch `json:"essential"`
	Bonus     []KeywordMatch `json:"bonus,omitempty"`

	FoundEssential int `json:"found_essential"`
	TotalEssential int `json:"total_essential"`
	FoundBonus     int `json:"found_bonus"`
	TotalBonus     int `json:"total_bonus"`

	EssentialScore float64 `json:"essential_score"`
	BonusScore     float64 `json:"bonus_score"`

	// Error is set when the keyword configuration was unusable. The score
	// is zero and the item is flagged for mandatory human review.
	Error string `json:"error,omitempty"`
}

// FoundKeywords lists every matched keyword across both groups.
func (a KeywordAnalysis) FoundKeywords() []string {
	var found []string
	for _, m := range a.Essential {
		if m.Found {
			found = append(found, m.Keyword)
		}
	}
	for _, m := range a.Bonus {
		if m.Found {
			found = append(found, m.Keyword)
		}
	}
	return found
}

// MissingKeywords lists every keyword that did not match.
func (a KeywordAnalysis) MissingKeywords() []string {
	var missing []string
	for _, m := range a.Essential {
		if !m.Found {
			missing = append(missing, m.Keyword)
		}
	}
	for _, m := range a.Bonus {
		if !m.Found {
			missing = append(missing, m.Keyword)
		}
	}
	return missing
}

// MatchAccuracy is the fraction of all configured keywords that matched.
func (a KeywordAnalysis) MatchAccuracy() float64 {
	total := a.TotalEssential + a.TotalBonus
	if total == 0 {
		return 0
	}
	return float64(a.FoundEssential+a.FoundBonus) / float64(total)
}

// ScoreKeywords computes the weighted keyword score of a free-text answer.
//
//	essential = (found / total) * maxScore * 0.8   (0 if no essential keywords)
//	bonus     = (found / total) * maxScore * 0.2   (0 if no bonus keywords)
//	score     = min(essential + bonus, maxScore), rounded to 2 decimals
//
// Keywords and answer are normalized (lowercase, punctuation stripped except
// hyphens, whitespace collapsed) and matched by substring containment. An
// unusable configuration degrades to a zero score with the error marker set;
// this function never returns an error.
func ScoreKeywords(answer string, rawConfig string, maxScore float64) (float64, KeywordAnalysis) {
	essential, bonus, err := ParseKeywordConfig(rawConfig)
	if err != nil {
		return 0, KeywordAnalysis{Error: err.Error()}
	}

	normAnswer := Normalize(answer)

	analysis := KeywordAnalysis{
		TotalEssential: len(essential),
		TotalBonus:     len(bonus),
	}
	analysis.Essential, analysis.FoundEssential = matchGroup(normAnswer, essential)
	analysis.Bonus, analysis.FoundBonus = matchGroup(normAnswer, bonus)

	if analysis.TotalEssential > 0 {
		ratio := float64(analysis.FoundEssential) / float64(analysis.TotalEssential)
		analysis.EssentialScore = ratio * maxScore * essentialWeight
	}
	if analysis.TotalBonus > 0 {
		ratio := float64(analysis.FoundBonus) / float64(analysis.TotalBonus)
		analysis.BonusScore = ratio * maxScore * bonusWeight
	}

	score := analysis.EssentialScore + analysis.BonusScore
	if score > maxScore {
		score = maxScore
	}
	return round2(score), analysis
}

func matchGroup(normAnswer string, keywords []string) ([]KeywordMatch, int) {
	if len(keywords) == 0 {
		return nil, 0
	}
	matches := make([]KeywordMatch, 0, len(keywords))
	found := 0
	for _, kw := range keywords {
		positions := substringPositions(normAnswer, Normalize(kw))
		m := KeywordMatch{Keyword: kw, Found: len(positions) > 0, Positions: positions}
		if m.Found {
			found++
		}
		matches = append(matches, m)
	}
	return matches, found
}

// substringPositions returns the byte offset of every (possibly overlapping)
// occurrence of needle in haystack.
func substringPositions(haystack, needle string) []int {
	if needle == "" {
		return nil
	}
	var positions []int
	offset := 0
	for {
		idx := strings.Index(haystack[offset:], needle)
		if idx < 0 {
			return positions
		}
		positions = append(positions, offset+idx)
		offset += idx + 1
	}
}

// Normalize lowercases, strips punctuation except hyphens and collapses all
// whitespace runs to single spaces. Answer and keywords go through the same
// normalization so matching is insensitive to case and punctuation noise.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		case isWordRune(r):
			b.WriteRune(r)
			lastSpace = false
		}
	}
	return strings.TrimRight(b.String(), " ")
}

func isWordRune(r rune) bool {
	if r == '-' {
		return true
	}
	if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
		return true
	}
	// non-ASCII letters pass through untouched
	return r > 127
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
