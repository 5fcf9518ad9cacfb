package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestScheduler_Add(t *testing.T) {
	s := New(zap.NewNop(), 0)
	noop := func(context.Context) error { return nil }

	require.NoError(t, s.Add("advance", "@every 10m", noop))
	require.NoError(t, s.Add("notify", "@daily", noop))
	assert.Error(t, s.Add("advance", "@every 1m", noop), "duplicate name")
	assert.Error(t, s.Add("broken", "every tuesday", noop))
	assert.Equal(t, []string{"advance", "notify"}, s.Jobs())
}

func TestScheduler_Trigger(t *testing.T) {
	s := New(zap.NewNop(), time.Second)
	boom := errors.New("boom")
	var runs atomic.Int32
	require.NoError(t, s.Add("relay", "@every 1m", func(ctx context.Context) error {
		runs.Add(1)
		_, ok := ctx.Deadline()
		assert.True(t, ok)
		return boom
	}))

	assert.ErrorIs(t, s.Trigger(context.Background(), "relay"), boom)
	assert.EqualValues(t, 1, runs.Load())
	assert.ErrorIs(t, s.Trigger(context.Background(), "missing"), ErrUnknownJob)
}

func TestScheduler_Run(t *testing.T) {
	s := New(zap.NewNop(), 0)
	var runs atomic.Int32
	require.NoError(t, s.Add("tick", "@every 1s", func(context.Context) error {
		runs.Add(1)
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	assert.Eventually(t, func() bool { return runs.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
	cancel()
	assert.NoError(t, <-done)
}
