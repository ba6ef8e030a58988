package strength

import (
	"math"
	"strings"
	"unicode/utf8"
)

const (
	// MinLength is the shortest candidate that satisfies the length requirement
	MinLength = 8
	// MaxScore is the highest score a candidate can reach
	MaxScore = 4

	longBonusLength      = 12
	extraLongBonusLength = 16
	lengthBonus          = 0.5
	penalty              = 1.0
)

// SpecialChars is the punctuation set accepted by the special character requirement
const SpecialChars = "!@#$%^&*()_+-=[]{};':\"\\|,.<>/?~`"

// Feedback messages, in the order they can appear in a Result
const (
	MsgLength      = "Password must be at least 8 characters long"
	MsgLowercase   = "Password must contain at least one lowercase letter"
	MsgUppercase   = "Password must contain at least one uppercase letter"
	MsgNumber      = "Password must contain at least one number"
	MsgSpecialChar = "Password must contain at least one special character (!@#$%^&*()_+-=[]{}|;:,.<>?~`)"
	MsgRepeat      = "Avoid repeating characters (e.g., \"aaa\", \"111\")"
	MsgSequence    = "Avoid common sequences (e.g., \"123\", \"abc\")"
	MsgCommonWord  = "Avoid common words or patterns"
)

var (
	commonSequences = []string{"123", "abc", "qwe", "asd", "zxc"}
	commonWords     = []string{"password", "123456", "qwerty", "admin", "letmein", "welcome"}
)

// Requirements holds the five independent character checks
type Requirements struct {
	Length      bool `json:"length"`
	Lowercase   bool `json:"lowercase"`
	Uppercase   bool `json:"uppercase"`
	Number      bool `json:"number"`
	SpecialChar bool `json:"specialChar"`
}

// All reports whether every requirement holds
func (r Requirements) All() bool {
	return r.Length && r.Lowercase && r.Uppercase && r.Number && r.SpecialChar
}

// Result is the outcome of a single evaluation
type Result struct {
	Score        int          `json:"score"`
	Feedback     []string     `json:"feedback"`
	IsValid      bool         `json:"isValid"`
	Requirements Requirements `json:"requirements"`
}

// Evaluate scores a candidate password. It never fails: every string,
// including the empty one, produces a Result.
func Evaluate(candidate string) Result {
	length := utf8.RuneCountInString(candidate)
	reqs := checkRequirements(candidate, length)

	var raw float64
	feedback := make([]string, 0, 8)

	for _, check := range []struct {
		met bool
		msg string
	}{
		{reqs.Length, MsgLength},
		{reqs.Lowercase, MsgLowercase},
		{reqs.Uppercase, MsgUppercase},
		{reqs.Number, MsgNumber},
		{reqs.SpecialChar, MsgSpecialChar},
	} {
		if check.met {
			raw++
		} else {
			feedback = append(feedback, check.msg)
		}
	}

	if length >= longBonusLength {
		raw += lengthBonus
	}
	if length >= extraLongBonusLength {
		raw += lengthBonus
	}

	lowered := strings.ToLower(candidate)

	if hasRepeatedRun(candidate) {
		feedback = append(feedback, MsgRepeat)
		raw = math.Max(0, raw-penalty)
	}
	if containsAny(lowered, commonSequences) {
		feedback = append(feedback, MsgSequence)
		raw = math.Max(0, raw-penalty)
	}
	if containsAny(lowered, commonWords) {
		feedback = append(feedback, MsgCommonWord)
		raw = math.Max(0, raw-penalty)
	}

	score := int(math.Floor(raw))
	if score < 0 {
		score = 0
	}
	if score > MaxScore {
		score = MaxScore
	}

	return Result{
		Score:        score,
		Feedback:     feedback,
		IsValid:      reqs.All(),
		Requirements: reqs,
	}
}

func checkRequirements(candidate string, length int) Requirements {
	reqs := Requirements{Length: length >= MinLength}
	for _, r := range candidate {
		switch {
		case r >= 'a' && r <= 'z':
			reqs.Lowercase = true
		case r >= 'A' && r <= 'Z':
			reqs.Uppercase = true
		case r >= '0' && r <= '9':
			reqs.Number = true
		case strings.ContainsRune(SpecialChars, r):
			reqs.SpecialChar = true
		}
	}
	return reqs
}

// hasRepeatedRun reports a run of three or more identical characters.
// Line terminators never start or extend a run.
func hasRepeatedRun(s string) bool {
	var prev rune
	run := 0
	for _, r := range s {
		if isLineTerminator(r) {
			run = 0
			continue
		}
		if run > 0 && r == prev {
			run++
		} else {
			prev = r
			run = 1
		}
		if run >= 3 {
			return true
		}
	}
	return false
}

func isLineTerminator(r rune) bool {
	return r == '\n' || r == '\r' || r == '\u2028' || r == '\u2029'
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
