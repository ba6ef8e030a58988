package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/enterprise/strength-service/internal/strength"
)

const EventTypeAssessed = "strength.assessed"

// AssessmentEvent describes one evaluation without the candidate itself
type AssessmentEvent struct {
	ID                 string    `json:"id"`
	Type               string    `json:"type"`
	Score              int       `json:"score"`
	Label              string    `json:"label"`
	IsValid            bool      `json:"is_valid"`
	Length             int       `json:"length"`
	FailedRequirements []string  `json:"failed_requirements,omitempty"`
	Penalties          []string  `json:"penalties,omitempty"`
	Source             string    `json:"source,omitempty"`
	Timestamp          time.Time `json:"timestamp"`
}

// NewAssessmentEvent builds an event from an assessment
func NewAssessmentEvent(a strength.Assessment, length int, source string) *AssessmentEvent {
	return &AssessmentEvent{
		ID:                 uuid.NewString(),
		Type:               EventTypeAssessed,
		Score:              a.Score,
		Label:              a.Label,
		IsValid:            a.IsValid,
		Length:             length,
		FailedRequirements: a.Requirements.Failed(),
		Penalties:          a.Penalties(),
		Source:             source,
		Timestamp:          time.Now().UTC(),
	}
}

// Decode parses a JSON encoded event
func Decode(data []byte) (*AssessmentEvent, error) {
	var event AssessmentEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	if event.Type != EventTypeAssessed {
		return nil, fmt.Errorf("unexpected event type %q", event.Type)
	}
	return &event, nil
}

// Publisher delivers assessment events
type Publisher interface {
	Publish(ctx context.Context, event *AssessmentEvent) error
	Close() error
}

// LogPublisher writes events to the debug log instead of a broker
type LogPublisher struct{}

// NewLogPublisher is used when Kafka is disabled
func NewLogPublisher() *LogPublisher {
	return &LogPublisher{}
}

func (p *LogPublisher) Publish(_ context.Context, event *AssessmentEvent) error {
	log.Debug().
		Str("event_id", event.ID).
		Int("score", event.Score).
		Bool("is_valid", event.IsValid).
		Strs("penalties", event.Penalties).
		Msg("Assessment event")
	return nil
}

func (p *LogPublisher) Close() error { return nil }
