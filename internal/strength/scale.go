package strength

// Label values shown next to the strength bar
const (
	LabelVeryWeak = "Very Weak"
	LabelWeak     = "Weak"
	LabelGood     = "Good"
	LabelStrong   = "Strong"
)

// Bar colors as RGB hex tokens
const (
	ColorRed     = "#EF4444"
	ColorAmber   = "#F59E0B"
	ColorGreen   = "#10B981"
	ColorEmerald = "#059669"
)

// Label maps a score to its display label. Scores outside [0,4] read as "Very Weak".
func Label(score int) string {
	switch score {
	case 2:
		return LabelWeak
	case 3:
		return LabelGood
	case 4:
		return LabelStrong
	default:
		return LabelVeryWeak
	}
}

// Color maps a score to its bar color. Scores outside [0,4] use the score-0 color.
func Color(score int) string {
	switch score {
	case 2:
		return ColorAmber
	case 3:
		return ColorGreen
	case 4:
		return ColorEmerald
	default:
		return ColorRed
	}
}

// Level is one row of the strength scale
type Level struct {
	Score int    `json:"score"`
	Label string `json:"label"`
	Color string `json:"color"`
}

// Scale returns the label/color table for every reachable score
func Scale() []Level {
	levels := make([]Level, 0, MaxScore+1)
	for s := 0; s <= MaxScore; s++ {
		levels = append(levels, Level{Score: s, Label: Label(s), Color: Color(s)})
	}
	return levels
}

// ChecklistItem is one line of the requirements checklist
type ChecklistItem struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Met   bool   `json:"met"`
}

// Assessment is a Result decorated with everything a strength meter renders
type Assessment struct {
	Result
	Label     string          `json:"label"`
	Color     string          `json:"color"`
	Segments  int             `json:"segments"`
	MaxScore  int             `json:"maxScore"`
	Checklist []ChecklistItem `json:"checklist"`
}

// Assess evaluates the candidate and attaches label, color, bar fill and checklist
func Assess(candidate string) Assessment {
	res := Evaluate(candidate)
	return Assessment{
		Result:    res,
		Label:     Label(res.Score),
		Color:     Color(res.Score),
		Segments:  res.Score,
		MaxScore:  MaxScore,
		Checklist: Checklist(res.Requirements),
	}
}

// Checklist lists the requirements in their fixed evaluation order
func Checklist(r Requirements) []ChecklistItem {
	return []ChecklistItem{
		{Key: "length", Label: "At least 8 characters", Met: r.Length},
		{Key: "lowercase", Label: "One lowercase letter", Met: r.Lowercase},
		{Key: "uppercase", Label: "One uppercase letter", Met: r.Uppercase},
		{Key: "number", Label: "One number", Met: r.Number},
		{Key: "specialChar", Label: "One special character", Met: r.SpecialChar},
	}
}

// Failed returns the keys of the requirements that did not hold, in order
func (r Requirements) Failed() []string {
	var failed []string
	for _, item := range Checklist(r) {
		if !item.Met {
			failed = append(failed, item.Key)
		}
	}
	return failed
}

// Penalty keys reported by Penalties
const (
	PenaltyRepeat     = "repeat"
	PenaltySequence   = "sequence"
	PenaltyCommonWord = "common_word"
)

// Penalties returns the keys of the penalties that fired, in evaluation order
func (r Result) Penalties() []string {
	var keys []string
	for _, msg := range r.Feedback {
		switch msg {
		case MsgRepeat:
			keys = append(keys, PenaltyRepeat)
		case MsgSequence:
			keys = append(keys, PenaltySequence)
		case MsgCommonWord:
			keys = append(keys, PenaltyCommonWord)
		}
	}
	return keys
}
