package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bilgisen/autostudio/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestEnableReplacesExistingJob(t *testing.T) {
	s := New(5*time.Minute, func(context.Context, Params) ([]models.Trend, error) { return nil, nil })
	s.Start()
	defer s.Stop()

	require.NoError(t, s.Enable(Params{Niche: "coffee"}))
	require.NoError(t, s.Enable(Params{Niche: "tea"}))
	require.NoError(t, s.Enable(Params{Niche: "juice"}))

	assert.Len(t, s.cron.Entries(), 1)
	snap := s.Latest()
	assert.True(t, snap.Enabled)
	assert.Equal(t, "juice", snap.Params.Niche)
	assert.Equal(t, "5m0s", snap.Interval)

	s.Disable()
	assert.Empty(t, s.cron.Entries())
	assert.False(t, s.Latest().Enabled)
	s.Disable()
}

func TestTickStoresResults(t *testing.T) {
	var got Params
	s := New(time.Minute, func(ctx context.Context, p Params) ([]models.Trend, error) {
		got = p
		return []models.Trend{{Topic: "AI"}}, nil
	})
	defer s.Stop()

	s.tick()
	assert.Nil(t, s.Latest().LastSync, "disabled scheduler must not sync")

	require.NoError(t, s.Enable(Params{Niche: "tech", Country: "US", APIKey: "k"}))
	s.tick()

	snap := s.Latest()
	assert.Equal(t, "k", got.APIKey)
	assert.Equal(t, []models.Trend{{Topic: "AI"}}, snap.Trends)
	require.NotNil(t, snap.LastSync)
	assert.Empty(t, snap.LastError)
}

func TestTickKeepsPreviousTrendsOnError(t *testing.T) {
	calls := 0
	s := New(time.Minute, func(ctx context.Context, p Params) ([]models.Trend, error) {
		calls++
		if calls == 1 {
			return []models.Trend{{Topic: "first"}}, nil
		}
		return nil, errors.New("AI Engine: Rate limit exceeded.")
	})
	defer s.Stop()
	require.NoError(t, s.Enable(Params{}))

	s.tick()
	s.tick()

	snap := s.Latest()
	assert.Equal(t, "first", snap.Trends[0].Topic)
	assert.Equal(t, "AI Engine: Rate limit exceeded.", snap.LastError)
}

func TestJobRunsOnInterval(t *testing.T) {
	var runs atomic.Int32
	s := New(time.Second, func(ctx context.Context, p Params) ([]models.Trend, error) {
		runs.Add(1)
		return nil, nil
	})
	s.Start()
	require.NoError(t, s.Enable(Params{Niche: "x"}))

	assert.Eventually(t, func() bool { return runs.Load() >= 1 }, 5*time.Second, 50*time.Millisecond)
	s.Stop()
}

func TestStopCancelsRunningSync(t *testing.T) {
	started := make(chan struct{})
	var once sync.Once
	s := New(time.Second, func(ctx context.Context, p Params) ([]models.Trend, error) {
		once.Do(func() { close(started) })
		<-ctx.Done()
		return nil, ctx.Err()
	})
	s.Start()
	require.NoError(t, s.Enable(Params{}))

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("sync never started")
	}
	s.Stop()
	assert.Contains(t, s.Latest().LastError, "context canceled")
}
