package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ErrUnknownJob is returned by Trigger for a name that was never added.
var ErrUnknownJob = errors.New("unknown job")

// JobFunc is one run of a periodic job.
type JobFunc func(ctx context.Context) error

// Scheduler runs named jobs on cron specs. A job still running when its
// next tick fires is skipped for that tick.
type Scheduler struct {
	cron    *cron.Cron
	jobs    map[string]JobFunc
	logger  *zap.Logger
	timeout time.Duration
	ctx     context.Context
}

// New creates a Scheduler. timeout bounds a single job run; zero means no
// bound.
func New(logger *zap.Logger, timeout time.Duration) *Scheduler {
	cl := cronLogger{l: logger.Sugar()}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		jobs:    make(map[string]JobFunc),
		logger:  logger,
		timeout: timeout,
		ctx:     context.Background(),
	}
}

// Add registers fn under name on the cron spec.
func (s *Scheduler) Add(name, spec string, fn JobFunc) error {
	if _, ok := s.jobs[name]; ok {
		return fmt.Errorf("job %q already registered", name)
	}
	if _, err := s.cron.AddFunc(spec, func() { s.run(s.ctx, name, fn) }); err != nil {
		return fmt.Errorf("job %q: invalid spec %q: %w", name, spec, err)
	}
	s.jobs[name] = fn
	return nil
}

// Jobs returns the registered job names in order.
func (s *Scheduler) Jobs() []string {
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Trigger runs the named job once, synchronously, outside the schedule.
func (s *Scheduler) Trigger(ctx context.Context, name string) error {
	fn, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	return s.run(ctx, name, fn)
}

// Run starts the schedule and blocks until ctx is done, then waits for
// running jobs to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	s.ctx = ctx
	s.cron.Start()
	s.logger.Info("scheduler started", zap.Strings("jobs", s.Jobs()))

	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
	return nil
}

func (s *Scheduler) run(ctx context.Context, name string, fn JobFunc) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	err := fn(ctx)
	if err != nil {
		s.logger.Error("job failed",
			zap.String("job", name),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return err
	}
	s.logger.Debug("job finished",
		zap.String("job", name),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
