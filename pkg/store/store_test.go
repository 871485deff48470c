package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/chenBenjamin97/lunge-classifier/pkg/config"
	"github.com/chenBenjamin97/lunge-classifier/pkg/pose"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreLatest(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.Latest(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))

	first := Record{SessionID: "a", Frame: 1, CapturedAt: time.Now(), Result: pose.Result{Label: pose.LabelUnknown}}
	second := Record{SessionID: "a", Frame: 2, CapturedAt: time.Now(), Result: pose.Result{Label: pose.LabelFullLunge}}
	other := Record{SessionID: "b", Frame: 7, Result: pose.Result{Label: pose.LabelHalfLungeLeft}}

	require.NoError(t, s.SetLatest(ctx, first))
	require.NoError(t, s.SetLatest(ctx, second))
	require.NoError(t, s.SetLatest(ctx, other))

	got, err := s.Latest(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, second, got)

	got, err = s.Latest(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, pose.LabelHalfLungeLeft, got.Result.Label)

	assert.NoError(t, s.Close())
}

func TestMemoryStoreConcurrent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.SetLatest(ctx, Record{SessionID: "live", Frame: i})
			_, _ = s.Latest(ctx, "live")
		}(i)
	}
	wg.Wait()

	_, err := s.Latest(ctx, "live")
	assert.NoError(t, err)
}

func newTestRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	s := NewRedisStore(&config.RedisConfig{Addr: mr.Addr(), TTL: ttl})
	t.Cleanup(func() { s.Close() })
	return s, mr
}

func TestRedisStoreLatest(t *testing.T) {
	s, mr := newTestRedisStore(t, 10*time.Minute)
	ctx := context.Background()

	require.NoError(t, s.Ping(ctx))

	_, err := s.Latest(ctx, "unknown")
	assert.True(t, errors.Is(err, ErrNotFound))

	rec := Record{
		SessionID:  "live-1",
		Frame:      12,
		CapturedAt: time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC),
		Result: pose.Result{
			Label:           pose.LabelFullLunge,
			LeftKneeAngle:   91.5,
			RightKneeAngle:  88.25,
			LeftWaistAngle:  170.125,
			RightWaistAngle: 95,
		},
	}
	require.NoError(t, s.SetLatest(ctx, rec))

	got, err := s.Latest(ctx, "live-1")
	require.NoError(t, err)
	assert.Equal(t, rec.SessionID, got.SessionID)
	assert.Equal(t, rec.Frame, got.Frame)
	assert.True(t, rec.CapturedAt.Equal(got.CapturedAt))
	assert.Equal(t, rec.Result, got.Result)

	assert.True(t, mr.Exists("pose:latest:live-1"))
	assert.Equal(t, 10*time.Minute, mr.TTL("pose:latest:live-1"))
}

func TestRedisStoreOverwritesAndExpires(t *testing.T) {
	s, mr := newTestRedisStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, s.SetLatest(ctx, Record{SessionID: "live-1", Frame: 1}))
	require.NoError(t, s.SetLatest(ctx, Record{SessionID: "live-1", Frame: 2}))

	got, err := s.Latest(ctx, "live-1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Frame)

	mr.FastForward(2 * time.Minute)

	_, err = s.Latest(ctx, "live-1")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRedisStoreCorruptValue(t *testing.T) {
	s, mr := newTestRedisStore(t, time.Minute)

	require.NoError(t, mr.Set("pose:latest:broken", "not json"))

	_, err := s.Latest(context.Background(), "broken")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestRedisStoreKeyAndTTL(t *testing.T) {
	s := NewRedisStore(&config.RedisConfig{Addr: "localhost:6379", TTL: time.Minute})
	defer s.Close()

	assert.Equal(t, "pose:latest:abc", latestKey("abc"))
	assert.Equal(t, time.Minute, s.ttl)
}
