package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/enterprise/strength-service/internal/auth"
	"github.com/enterprise/strength-service/internal/entropy"
	"github.com/enterprise/strength-service/internal/events"
	"github.com/enterprise/strength-service/internal/strength"
)

type recordingPublisher struct {
	events []*events.AssessmentEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e *events.AssessmentEvent) error {
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func fastHash(pw string) (string, error) {
	return auth.HashPasswordWithCost(pw, bcrypt.MinCost)
}

func TestAssess(t *testing.T) {
	pub := &recordingPublisher{}
	svc := NewCredentialService(entropy.NewEstimator(), pub, fastHash)

	resp, err := svc.Assess(context.Background(), &AssessRequest{Password: "Secure1!"}, "api")
	require.NoError(t, err)

	assert.Equal(t, 4, resp.Score)
	assert.True(t, resp.IsValid)
	assert.Equal(t, strength.LabelStrong, resp.Label)
	require.NotNil(t, resp.Estimate)

	require.Len(t, pub.events, 1)
	assert.Equal(t, 8, pub.events[0].Length)
	assert.Equal(t, "api", pub.events[0].Source)
}

func TestAssessPublishFailureIsNotFatal(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := NewCredentialService(nil, pub, fastHash)

	resp, err := svc.Assess(context.Background(), &AssessRequest{Password: ""}, "api")
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Score)
	assert.Nil(t, resp.Estimate)
}

func TestAssessBatch(t *testing.T) {
	pub := &recordingPublisher{}
	svc := NewCredentialService(nil, pub, fastHash)
	ctx := context.Background()

	resp, err := svc.AssessBatch(ctx, &BatchAssessRequest{Passwords: []string{"Secure1!", "", "aaaaaaaa"}}, "api")
	require.NoError(t, err)

	require.Len(t, resp.Results, 3)
	assert.Equal(t, 4, resp.Results[0].Score)
	assert.Equal(t, 0, resp.Results[1].Score)
	assert.Equal(t, 1, resp.Results[2].Score)
	assert.Equal(t, 1, resp.Valid)
	assert.Equal(t, 2, resp.Invalid)
	assert.Len(t, pub.events, 3)

	_, err = svc.AssessBatch(ctx, &BatchAssessRequest{}, "api")
	assert.ErrorIs(t, err, ErrEmptyBatch)

	tooMany := make([]string, MaxBatchSize+1)
	_, err = svc.AssessBatch(ctx, &BatchAssessRequest{Passwords: tooMany}, "api")
	assert.ErrorIs(t, err, ErrBatchTooLarge)
}

func TestHash(t *testing.T) {
	svc := NewCredentialService(nil, &recordingPublisher{}, fastHash)

	resp, err := svc.Hash(context.Background(), &HashRequest{Password: "Secure1!"}, "api")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.Hash, "$2a$"))
	assert.True(t, auth.CheckPassword("Secure1!", resp.Hash))
}

func TestHashAcceptsPenalisedButValidPassword(t *testing.T) {
	svc := NewCredentialService(nil, &recordingPublisher{}, fastHash)

	resp, err := svc.Hash(context.Background(), &HashRequest{Password: "Password123!"}, "api")
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Assessment.Score)
}

func TestHashRejectsWeakPassword(t *testing.T) {
	svc := NewCredentialService(nil, &recordingPublisher{}, func(string) (string, error) {
		t.Fatal("weak password must not be hashed")
		return "", nil
	})

	_, err := svc.Hash(context.Background(), &HashRequest{Password: "short"}, "api")
	require.ErrorIs(t, err, ErrWeakPassword)

	var weak *WeakPasswordError
	require.True(t, errors.As(err, &weak))
	assert.Contains(t, weak.Assessment.Feedback, strength.MsgLength)
}

func TestHashRejectsInputBeyondBcryptLimit(t *testing.T) {
	svc := NewCredentialService(nil, &recordingPublisher{}, fastHash)
	long := "Aa1!" + strings.Repeat("xy", 40)
	require.Greater(t, len(long), MaxHashBytes)
	require.True(t, strength.Evaluate(long).IsValid)

	_, err := svc.Hash(context.Background(), &HashRequest{Password: long}, "api")
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	atLimit := "Aa1!" + strings.Repeat("x", MaxHashBytes-4)
	resp, err := svc.Hash(context.Background(), &HashRequest{Password: atLimit}, "api")
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(atLimit, resp.Hash))
}

func TestHashError(t *testing.T) {
	boom := errors.New("boom")
	svc := NewCredentialService(nil, &recordingPublisher{}, func(string) (string, error) { return "", boom })

	_, err := svc.Hash(context.Background(), &HashRequest{Password: "Secure1!"}, "api")
	assert.ErrorIs(t, err, boom)
}
