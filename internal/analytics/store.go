package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/enterprise/strength-service/internal/cache"
	"github.com/enterprise/strength-service/internal/events"
)

const (
	snapshotKey     = "analytics:snapshot"
	recentEventsKey = "analytics:recent_events"
)

// ErrNoSnapshot means the analytics worker has not written a snapshot yet
var ErrNoSnapshot = errors.New("no analytics snapshot available")

// KV is the subset of the cache client the store needs
type KV interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	PushCapped(ctx context.Context, key string, max int64, values ...interface{}) error
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
}

// Store keeps the latest snapshot and a capped list of recent events in Redis
type Store struct {
	kv        KV
	maxRecent int64
}

// NewStore creates a store that keeps at most maxRecent events
func NewStore(kv KV, maxRecent int) *Store {
	if maxRecent <= 0 {
		maxRecent = 1000
	}
	return &Store{kv: kv, maxRecent: int64(maxRecent)}
}

// SaveSnapshot overwrites the stored snapshot
func (s *Store) SaveSnapshot(ctx context.Context, snap Snapshot) error {
	if err := s.kv.Set(ctx, snapshotKey, snap, 0); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads the stored snapshot
func (s *Store) LoadSnapshot(ctx context.Context) (*Snapshot, error) {
	var snap Snapshot
	if err := s.kv.Get(ctx, snapshotKey, &snap); err != nil {
		if errors.Is(err, cache.ErrMiss) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return &snap, nil
}

// AppendRecent pushes an event onto the recent list
func (s *Store) AppendRecent(ctx context.Context, event *events.AssessmentEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return s.kv.PushCapped(ctx, recentEventsKey, s.maxRecent, string(data))
}

// Recent returns up to n of the newest events, newest first
func (s *Store) Recent(ctx context.Context, n int) ([]*events.AssessmentEvent, error) {
	if n <= 0 {
		return nil, nil
	}
	raw, err := s.kv.LRange(ctx, recentEventsKey, 0, int64(n-1))
	if err != nil {
		return nil, fmt.Errorf("failed to read recent events: %w", err)
	}

	out := make([]*events.AssessmentEvent, 0, len(raw))
	for _, item := range raw {
		event, err := events.Decode([]byte(item))
		if err != nil {
			continue
		}
		out = append(out, event)
	}
	return out, nil
}
