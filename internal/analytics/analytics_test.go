package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enterprise/strength-service/internal/cache"
	"github.com/enterprise/strength-service/internal/events"
	"github.com/enterprise/strength-service/internal/strength"
)

func event(candidate, source string) *events.AssessmentEvent {
	return events.NewAssessmentEvent(strength.Assess(candidate), len([]rune(candidate)), source)
}

func TestAggregatorRecord(t *testing.T) {
	agg := NewAggregator()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	agg.now = func() time.Time { return start }
	agg.windowStart = start.Add(-2 * time.Second)

	agg.Record(event("Secure1!", "api"))
	agg.Record(event("aaa123password", "api"))
	agg.Record(event("", "cli"))

	snap := agg.Snapshot()
	assert.EqualValues(t, 3, snap.Total)
	assert.EqualValues(t, 1, snap.Valid)
	assert.EqualValues(t, 2, snap.Invalid)
	assert.Equal(t, map[string]int64{"0": 2, "1": 0, "2": 0, "3": 0, "4": 1}, snap.ScoreDistribution)
	assert.EqualValues(t, 1, snap.Penalties[strength.PenaltyRepeat])
	assert.EqualValues(t, 2, snap.FailedRequirements["uppercase"])
	assert.EqualValues(t, 1, snap.FailedRequirements["length"])
	assert.Equal(t, map[string]int64{"api": 2, "cli": 1}, snap.Sources)
	assert.InDelta(t, (8.0+14.0)/3.0, snap.AverageLength, 0.0001)
	assert.InDelta(t, 1.5, snap.EventsPerSecond, 0.0001)
	assert.Equal(t, start, snap.LastEventTime)
}

func TestAggregatorRateHasNoSpikeAfterWindowReset(t *testing.T) {
	agg := NewAggregator()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	now := start
	agg.now = func() time.Time { return now }
	agg.windowStart = start

	// too early for a meaningful rate
	agg.Record(event("Secure1!", "api"))
	assert.Zero(t, agg.Snapshot().EventsPerSecond)

	now = start.Add(30 * time.Second)
	for i := 0; i < 119; i++ {
		agg.Record(event("Secure1!", "api"))
	}
	assert.InDelta(t, 4.0, agg.Snapshot().EventsPerSecond, 0.0001)

	// closing the window reports 120 events over 60s
	now = start.Add(time.Minute)
	agg.Record(event("Secure1!", "api"))
	assert.InDelta(t, 2.0, agg.Snapshot().EventsPerSecond, 0.0001)

	now = now.Add(time.Millisecond)
	agg.Record(event("Secure1!", "api"))
	assert.InDelta(t, 2.0, agg.Snapshot().EventsPerSecond, 0.0001)
}

func TestAggregatorSnapshotIsCopy(t *testing.T) {
	agg := NewAggregator()
	agg.Record(event("aaa", "api"))

	snap := agg.Snapshot()
	snap.Penalties[strength.PenaltyRepeat] = 99

	assert.EqualValues(t, 1, agg.Snapshot().Penalties[strength.PenaltyRepeat])
}

func TestAggregatorConcurrent(t *testing.T) {
	agg := NewAggregator()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				agg.Record(event("Secure1!", "api"))
				_ = agg.Snapshot()
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 400, agg.Snapshot().Total)
}

type memoryKV struct {
	values map[string][]byte
	lists  map[string][]string
	err    error
}

func newMemoryKV() *memoryKV {
	return &memoryKV{values: map[string][]byte{}, lists: map[string][]string{}}
}

func (m *memoryKV) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if m.err != nil {
		return m.err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.values[key] = data
	return nil
}

func (m *memoryKV) Get(_ context.Context, key string, dest interface{}) error {
	if m.err != nil {
		return m.err
	}
	data, ok := m.values[key]
	if !ok {
		return cache.ErrMiss
	}
	return json.Unmarshal(data, dest)
}

func (m *memoryKV) PushCapped(_ context.Context, key string, max int64, values ...interface{}) error {
	for _, v := range values {
		m.lists[key] = append([]string{v.(string)}, m.lists[key]...)
	}
	if int64(len(m.lists[key])) > max {
		m.lists[key] = m.lists[key][:max]
	}
	return nil
}

func (m *memoryKV) LRange(_ context.Context, key string, start, stop int64) ([]string, error) {
	list := m.lists[key]
	if stop >= int64(len(list)) {
		stop = int64(len(list)) - 1
	}
	if start > stop {
		return nil, nil
	}
	return list[start : stop+1], nil
}

func TestStoreSnapshot(t *testing.T) {
	kv := newMemoryKV()
	store := NewStore(kv, 10)
	ctx := context.Background()

	_, err := store.LoadSnapshot(ctx)
	assert.ErrorIs(t, err, ErrNoSnapshot)

	agg := NewAggregator()
	agg.Record(event("Secure1!", "api"))
	require.NoError(t, store.SaveSnapshot(ctx, agg.Snapshot()))

	snap, err := store.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, snap.Total)
	assert.EqualValues(t, 1, snap.ScoreDistribution["4"])
}

func TestStoreSnapshotError(t *testing.T) {
	kv := newMemoryKV()
	kv.err = errors.New("connection refused")
	store := NewStore(kv, 10)

	_, err := store.LoadSnapshot(context.Background())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoSnapshot)
}

func TestStoreRecentIsCapped(t *testing.T) {
	store := NewStore(newMemoryKV(), 3)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 5; i++ {
		e := event("Secure1!", "api")
		ids = append(ids, e.ID)
		require.NoError(t, store.AppendRecent(ctx, e))
	}

	recent, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, ids[4], recent[0].ID)
	assert.Equal(t, ids[2], recent[2].ID)

	none, err := store.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}
