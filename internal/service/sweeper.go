package service

import (
	"context"
	"log/slog"
	"time"
)

// SweepTask removes expired entries from one in-memory table and reports
// how many it dropped.
type SweepTask struct {
	Name string
	Run  func() int
}

// Sweeper runs every task on a fixed interval until its context ends.
type Sweeper struct {
	tasks    []SweepTask
	logger   *slog.Logger
	interval time.Duration
	after    func()
}

func NewSweeper(logger *slog.Logger, interval time.Duration, tasks ...SweepTask) *Sweeper {
	return &Sweeper{
		tasks:    tasks,
		logger:   logger,
		interval: interval,
	}
}

// OnSweep registers a hook called after each pass, e.g. to refresh gauges.
func (s *Sweeper) OnSweep(fn func()) {
	s.after = fn
}

func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info("sweeper started", "interval", s.interval, "tasks", len(s.tasks))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sweeper stopped")
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Sweeper) sweep() {
	for _, task := range s.tasks {
		if n := task.Run(); n > 0 {
			s.logger.Debug("expired entries removed", "table", task.Name, "count", n)
		}
	}
	if s.after != nil {
		s.after()
	}
}
