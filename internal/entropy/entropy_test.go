package entropy

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEstimateEmpty(t *testing.T) {
	est := NewEstimator().Estimate("")
	assert.Equal(t, 0, est.Score)
	assert.Zero(t, est.Entropy)
	assert.Equal(t, "instant", est.CrackTime)
}

func TestEstimateOrdersCandidates(t *testing.T) {
	e := NewEstimator()

	weak := e.Estimate("password")
	strong := e.Estimate("C0mplex!Passphrase#2025")

	assert.Less(t, weak.Score, strong.Score)
	assert.Less(t, weak.Entropy, strong.Entropy)
	assert.NotEmpty(t, strong.CrackTime)
}

func TestEstimateUserInputsLowerEntropy(t *testing.T) {
	e := NewEstimator("  ", "marketplace")

	plain := e.Estimate("jordansmith2024")
	withInputs := e.Estimate("jordansmith2024", "jordansmith", "")

	assert.LessOrEqual(t, withInputs.Entropy, plain.Entropy)
	assert.Equal(t, []string{"marketplace"}, e.dictionary)
}

func TestEstimateLongCandidateUsesPrefix(t *testing.T) {
	e := NewEstimator()
	long := strings.Repeat("aB3$xq", 2000)

	start := time.Now()
	est := e.Estimate(long)
	assert.Less(t, time.Since(start), 5*time.Second)

	assert.Equal(t, e.Estimate(long[:MaxEstimateRunes]), est)
}

func TestTruncateCountsRunes(t *testing.T) {
	assert.Equal(t, "äöü", truncate("äöüß", 3))
	assert.Equal(t, "ab", truncate("ab", 3))
	assert.Equal(t, "", truncate("abc", 0))
}
