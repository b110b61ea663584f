package scoring

import (
	"encoding/json"
	"errors"
	"strings"
)

// ParseKeywordConfig accepts the three keyword configuration shapes:
//
//   - a JSON array of strings (all keywords essential),
//   - a JSON object {"essential": [...], "bonus": [...]},
//   - a plain comma-separated string (fallback for legacy rows).
//
// Malformed JSON falls back to comma splitting; if that also yields nothing
// the config is unusable and an error is returned.
func ParseKeywordConfig(raw string) (essential, bonus []string, err error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil, errors.New("keyword configuration is empty")
	}

	var flat []string
	if json.Unmarshal([]byte(trimmed), &flat) == nil {
		essential = cleanKeywords(flat)
		if len(essential) == 0 {
			return nil, nil, errors.New("keyword list contains no usable keywords")
		}
		return essential, nil, nil
	}

	var grouped struct {
		Essential []string `json:"essential"`
		Bonus     []string `json:"bonus"`
	}
	if json.Unmarshal([]byte(trimmed), &grouped) == nil {
		essential = cleanKeywords(grouped.Essential)
		bonus = cleanKeywords(grouped.Bonus)
		if len(essential) == 0 && len(bonus) == 0 {
			return nil, nil, errors.New("keyword object contains no usable keywords")
		}
		return essential, bonus, nil
	}

	// comma-split fallback for non-JSON values
	essential = cleanKeywords(strings.Split(trimmed, ","))
	if len(essential) == 0 {
		return nil, nil, errors.New("keyword configuration could not be parsed")
	}
	return essential, nil, nil
}

// ValidateKeywordConfig is the authoring-time check: it rejects
// configurations that would degrade to a zero score at grading time, with a
// reason the author can act on.
func ValidateKeywordConfig(raw string) error {
	_, _, err := ParseKeywordConfig(raw)
	return err
}

func cleanKeywords(keywords []string) []string {
	var out []string
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		if Normalize(kw) == "" {
			continue
		}
		out = append(out, kw)
	}
	return out
}
