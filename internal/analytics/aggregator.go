package analytics

import (
	"strconv"
	"sync"
	"time"

	"github.com/enterprise/strength-service/internal/events"
	"github.com/enterprise/strength-service/internal/strength"
)

// Snapshot is a point-in-time copy of the aggregated counters
type Snapshot struct {
	Total              int64            `json:"total"`
	Valid              int64            `json:"valid"`
	Invalid            int64            `json:"invalid"`
	ScoreDistribution  map[string]int64 `json:"score_distribution"`
	FailedRequirements map[string]int64 `json:"failed_requirements"`
	Penalties          map[string]int64 `json:"penalties"`
	Sources            map[string]int64 `json:"sources"`
	AverageLength      float64          `json:"average_length"`
	EventsPerSecond    float64          `json:"events_per_second"`
	LastEventTime      time.Time        `json:"last_event_time"`
}

const minRateElapsed = time.Second

// Aggregator tracks live assessment metrics
type Aggregator struct {
	mu                 sync.RWMutex
	total              int64
	valid              int64
	lengthSum          int64
	scores             map[int]int64
	failedRequirements map[string]int64
	penalties          map[string]int64
	sources            map[string]int64
	lastEventTime      time.Time
	eventsPerSecond    float64
	windowStart        time.Time
	windowCount        int64
	windowClosed       bool
	window             time.Duration
	now                func() time.Time
}

// NewAggregator creates an aggregator whose rate window resets every minute
func NewAggregator() *Aggregator {
	a := &Aggregator{
		scores:             make(map[int]int64),
		failedRequirements: make(map[string]int64),
		penalties:          make(map[string]int64),
		sources:            make(map[string]int64),
		window:             time.Minute,
		now:                time.Now,
	}
	a.windowStart = a.now()
	return a
}

// Record folds one event into the counters
func (a *Aggregator) Record(event *events.AssessmentEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	a.lastEventTime = now

	// the rate is reported over the last closed window; before the first one
	// closes it is the running rate once minRateElapsed has passed
	if elapsed := now.Sub(a.windowStart); elapsed >= a.window {
		a.eventsPerSecond = float64(a.windowCount) / elapsed.Seconds()
		a.windowStart = now
		a.windowCount = 0
		a.windowClosed = true
	}
	a.windowCount++
	if !a.windowClosed {
		if elapsed := now.Sub(a.windowStart); elapsed >= minRateElapsed {
			a.eventsPerSecond = float64(a.windowCount) / elapsed.Seconds()
		}
	}

	a.total++
	if event.IsValid {
		a.valid++
	}
	a.lengthSum += int64(event.Length)
	a.scores[event.Score]++
	for _, r := range event.FailedRequirements {
		a.failedRequirements[r]++
	}
	for _, p := range event.Penalties {
		a.penalties[p]++
	}
	if event.Source != "" {
		a.sources[event.Source]++
	}
}

// Snapshot copies the current counters
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()

	s := Snapshot{
		Total:              a.total,
		Valid:              a.valid,
		Invalid:            a.total - a.valid,
		ScoreDistribution:  make(map[string]int64, strength.MaxScore+1),
		FailedRequirements: copyCounts(a.failedRequirements),
		Penalties:          copyCounts(a.penalties),
		Sources:            copyCounts(a.sources),
		EventsPerSecond:    a.eventsPerSecond,
		LastEventTime:      a.lastEventTime,
	}
	for score := 0; score <= strength.MaxScore; score++ {
		s.ScoreDistribution[strconv.Itoa(score)] = a.scores[score]
	}
	if a.total > 0 {
		s.AverageLength = float64(a.lengthSum) / float64(a.total)
	}
	return s
}

func copyCounts(src map[string]int64) map[string]int64 {
	dst := make(map[string]int64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
