package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type countingDeleter struct {
	calls atomic.Int32
	err   error
}

func (c *countingDeleter) DeleteExpired() (int64, error) {
	c.calls.Add(1)
	return 2, c.err
}

func TestSessionSweeperRunsUntilStopped(t *testing.T) {
	store := &countingDeleter{}
	sweeper := NewSessionSweeper(store, 5*time.Millisecond, zap.NewNop())

	sweeper.Start(context.Background())
	assert.Eventually(t, func() bool { return store.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	sweeper.Stop()

	after := store.calls.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, store.calls.Load())

	// stopping twice is harmless
	sweeper.Stop()
}

func TestSessionSweeperSurvivesErrors(t *testing.T) {
	store := &countingDeleter{err: errors.New("db down")}
	sweeper := NewSessionSweeper(store, 5*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	sweeper.Start(ctx)
	assert.Eventually(t, func() bool { return store.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()
	sweeper.Stop()
}
