package service

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSweeper_RunsTasksUntilCancelled(t *testing.T) {
	var sessions, cache, hooks atomic.Int32

	s := NewSweeper(slog.Default(), 5*time.Millisecond,
		SweepTask{Name: "sessions", Run: func() int { sessions.Add(1); return 1 }},
		SweepTask{Name: "idempotency", Run: func() int { cache.Add(1); return 0 }},
	)
	s.OnSweep(func() { hooks.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return sessions.Load() >= 2 && cache.Load() >= 2 && hooks.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
