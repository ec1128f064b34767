package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler fires drain cycles at a fixed interval. Ticks are single-flight:
// if a drain is still running when the next tick arrives, that tick is
// skipped rather than overlapped. The processor and its shared clients are
// not reentrant.
type Scheduler struct {
	cron     *cron.Cron
	interval time.Duration
	drain    func(context.Context)
}

func NewScheduler(interval time.Duration, drain func(context.Context)) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger{}))),
		interval: interval,
		drain:    drain,
	}
}

// Start runs one immediate drain, then schedules the interval. The given
// context is the lifetime of all future cycles.
func (s *Scheduler) Start(ctx context.Context) {
	s.cron.Schedule(cron.Every(s.interval), cron.FuncJob(func() {
		s.drain(ctx)
	}))

	slog.Info("scheduler started", "interval", s.interval)
	s.drain(ctx)
	s.cron.Start()
}

// Stop halts scheduling and blocks until a running drain, if any, has
// finished.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	slog.Info("scheduler stopped")
}

// cronLogger routes the cron library's skip notices through slog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	slog.Info(msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	slog.Error(msg, append(keysAndValues, "error", err)...)
}
