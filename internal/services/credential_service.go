package services

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/enterprise/strength-service/internal/auth"
	"github.com/enterprise/strength-service/internal/entropy"
	"github.com/enterprise/strength-service/internal/events"
	"github.com/enterprise/strength-service/internal/strength"
)

const (
	// MaxBatchSize caps the number of candidates in one batch request
	MaxBatchSize = 100
	// MaxHashBytes is the longest input bcrypt accepts
	MaxHashBytes = 72
)

var (
	ErrEmptyBatch      = errors.New("batch contains no passwords")
	ErrBatchTooLarge   = fmt.Errorf("batch exceeds %d passwords", MaxBatchSize)
	ErrWeakPassword    = errors.New("password does not meet requirements")
	ErrPasswordTooLong = fmt.Errorf("password exceeds %d bytes", MaxHashBytes)
)

// WeakPasswordError carries the evaluation that failed the policy
type WeakPasswordError struct {
	Assessment strength.Assessment
}

func (e *WeakPasswordError) Error() string {
	return ErrWeakPassword.Error()
}

func (e *WeakPasswordError) Unwrap() error {
	return ErrWeakPassword
}

// Hasher turns an accepted password into a storable hash
type Hasher func(password string) (string, error)

// CredentialService evaluates and hashes candidate passwords
type CredentialService struct {
	estimator *entropy.Estimator
	publisher events.Publisher
	hash      Hasher
}

// NewCredentialService creates a new credential service
func NewCredentialService(estimator *entropy.Estimator, publisher events.Publisher, hash Hasher) *CredentialService {
	if publisher == nil {
		publisher = events.NewLogPublisher()
	}
	if hash == nil {
		hash = auth.HashPassword
	}
	return &CredentialService{
		estimator: estimator,
		publisher: publisher,
		hash:      hash,
	}
}

// AssessRequest represents a single strength check
type AssessRequest struct {
	Password   string   `json:"password"`
	UserInputs []string `json:"user_inputs,omitempty"`
}

// AssessResponse is the assessment plus the optional guess-based estimate
type AssessResponse struct {
	strength.Assessment
	Estimate *entropy.Estimate `json:"estimate,omitempty"`
}

// BatchAssessRequest represents several strength checks
type BatchAssessRequest struct {
	Passwords []string `json:"passwords"`
}

// BatchAssessResponse keeps results in request order
type BatchAssessResponse struct {
	Results []AssessResponse `json:"results"`
	Valid   int              `json:"valid"`
	Invalid int              `json:"invalid"`
}

// HashRequest represents a request to accept and hash a password
type HashRequest struct {
	Password string `json:"password"`
}

// HashResponse carries the bcrypt hash of an accepted password
type HashResponse struct {
	Hash       string              `json:"hash"`
	Assessment strength.Assessment `json:"assessment"`
}

// Assess evaluates one candidate and publishes an assessment event
func (s *CredentialService) Assess(ctx context.Context, req *AssessRequest, source string) (*AssessResponse, error) {
	resp := s.assess(req.Password, req.UserInputs)
	s.publish(ctx, resp.Assessment, req.Password, source)
	return resp, nil
}

// AssessBatch evaluates each candidate independently
func (s *CredentialService) AssessBatch(ctx context.Context, req *BatchAssessRequest, source string) (*BatchAssessResponse, error) {
	if len(req.Passwords) == 0 {
		return nil, ErrEmptyBatch
	}
	if len(req.Passwords) > MaxBatchSize {
		return nil, ErrBatchTooLarge
	}

	out := &BatchAssessResponse{Results: make([]AssessResponse, 0, len(req.Passwords))}
	for _, pw := range req.Passwords {
		resp := s.assess(pw, nil)
		if resp.IsValid {
			out.Valid++
		} else {
			out.Invalid++
		}
		s.publish(ctx, resp.Assessment, pw, source)
		out.Results = append(out.Results, *resp)
	}
	return out, nil
}

// Hash accepts the password only when every requirement holds
func (s *CredentialService) Hash(ctx context.Context, req *HashRequest, source string) (*HashResponse, error) {
	assessment := strength.Assess(req.Password)
	s.publish(ctx, assessment, req.Password, source)

	if !assessment.IsValid {
		return nil, &WeakPasswordError{Assessment: assessment}
	}
	if len(req.Password) > MaxHashBytes {
		return nil, ErrPasswordTooLong
	}

	hashed, err := s.hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	return &HashResponse{Hash: hashed, Assessment: assessment}, nil
}

func (s *CredentialService) assess(candidate string, userInputs []string) *AssessResponse {
	resp := &AssessResponse{Assessment: strength.Assess(candidate)}
	if s.estimator != nil {
		est := s.estimator.Estimate(candidate, userInputs...)
		resp.Estimate = &est
	}
	return resp
}

func (s *CredentialService) publish(ctx context.Context, a strength.Assessment, candidate, source string) {
	event := events.NewAssessmentEvent(a, utf8.RuneCountInString(candidate), source)
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Warn().Err(err).Str("event_id", event.ID).Msg("Failed to publish assessment event")
	}
}
