// Package entropy adds a guess-based estimate next to the rule-based score.
// It is informational only and never changes a strength.Result.
package entropy

import (
	"strings"

	zxcvbn "github.com/nbutton23/zxcvbn-go"
)

// MaxEstimateRunes bounds the input handed to zxcvbn, whose matching cost
// grows superlinearly with length. Longer candidates are estimated on their
// prefix.
const MaxEstimateRunes = 100

// Estimate is the zxcvbn view of a candidate
type Estimate struct {
	Score     int     `json:"score"`
	Entropy   float64 `json:"entropy"`
	CrackTime string  `json:"crack_time"`
}

// Estimator runs zxcvbn with a fixed set of extra dictionary words
type Estimator struct {
	dictionary []string
}

// NewEstimator creates an estimator that always penalises the given words,
// typically product and brand names.
func NewEstimator(dictionary ...string) *Estimator {
	words := make([]string, 0, len(dictionary))
	for _, w := range dictionary {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, w)
		}
	}
	return &Estimator{dictionary: words}
}

// Estimate scores the candidate. userInputs (username, email, ...) are treated
// as known words for this call only.
func (e *Estimator) Estimate(candidate string, userInputs ...string) Estimate {
	if candidate == "" {
		return Estimate{CrackTime: "instant"}
	}

	inputs := make([]string, 0, len(e.dictionary)+len(userInputs))
	inputs = append(inputs, e.dictionary...)
	for _, in := range userInputs {
		if in = strings.TrimSpace(in); in != "" {
			inputs = append(inputs, in)
		}
	}

	match := zxcvbn.PasswordStrength(truncate(candidate, MaxEstimateRunes), inputs)
	return Estimate{
		Score:     match.Score,
		Entropy:   match.Entropy,
		CrackTime: match.CrackTimeDisplay,
	}
}

func truncate(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
