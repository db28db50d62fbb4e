package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingTicker struct {
	ticks atomic.Int32
}

func (c *countingTicker) Tick(context.Context) { c.ticks.Add(1) }

func TestRefreshJobTicks(t *testing.T) {
	s := New(nil)
	ticker := &countingTicker{}
	require.NoError(t, s.AddRefresh("* * * * * *", ticker))

	s.Start()
	defer s.Stop()

	require.Eventually(t, func() bool { return ticker.ticks.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
}

func TestAddRejectsBadSpec(t *testing.T) {
	s := New(nil)
	err := s.Add("refresh", "every five minutes", func(context.Context) {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refresh")
	assert.Empty(t, s.Jobs())
}

func TestAddReplacesAndRemoves(t *testing.T) {
	s := New(nil)
	require.NoError(t, s.Add("refresh", "", func(context.Context) {}))
	require.NoError(t, s.Add("refresh", "@every 1m", func(context.Context) {}))
	assert.Equal(t, []string{"refresh"}, s.Jobs())
	assert.Len(t, s.cron.Entries(), 1)

	s.Remove("refresh")
	s.Remove("unknown")
	assert.Empty(t, s.Jobs())
	assert.Empty(t, s.cron.Entries())
	assert.True(t, s.NextRun("refresh").IsZero())
}

func TestStopCancelsJobContext(t *testing.T) {
	s := New(nil)
	started := make(chan struct{})
	var cancelled atomic.Bool
	require.NoError(t, s.Add("slow", "* * * * * *", func(ctx context.Context) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-ctx.Done()
		cancelled.Store(true)
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case <-started:
	case <-time.After(3 * time.Second):
		t.Fatal("job never started")
	}
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return")
	}
	assert.True(t, cancelled.Load())
}
