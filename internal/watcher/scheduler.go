package watcher

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultMinInterval is the shortest period a job may be scheduled with
const DefaultMinInterval = 15 * time.Minute

// Job is one activation of periodic work
type Job func(ctx context.Context) error

// Constraint decides whether the device currently allows background work
type Constraint interface {
	Satisfied() (ok bool, reason string)
}

// SchedulerOptions tune a Scheduler
type SchedulerOptions struct {
	// MinInterval is the lower bound for every schedule
	MinInterval time.Duration

	// RetryDelay is the first backoff after a job returned ErrRetryLater
	RetryDelay time.Duration

	Constraints []Constraint
}

type scheduledJob struct {
	name     string
	interval time.Duration
	job      Job
	cancel   context.CancelFunc
}

// Scheduler runs named periodic jobs. Scheduling a name that is already
// scheduled keeps the existing schedule.
type Scheduler struct {
	ctx  context.Context
	opts SchedulerOptions
	log  *zap.Logger

	mu   sync.Mutex
	jobs map[string]*scheduledJob
	wg   sync.WaitGroup
}

// NewScheduler creates a scheduler whose jobs stop when ctx is canceled
func NewScheduler(ctx context.Context, opts SchedulerOptions, log *zap.Logger) *Scheduler {
	if opts.MinInterval <= 0 {
		opts.MinInterval = DefaultMinInterval
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 30 * time.Second
	}

	return &Scheduler{
		ctx:  ctx,
		opts: opts,
		log:  log.Named("scheduler"),
		jobs: make(map[string]*scheduledJob),
	}
}

// SchedulePeriodic starts running job every interval, beginning immediately.
// It returns false and leaves the existing schedule alone when name is taken.
func (s *Scheduler) SchedulePeriodic(name string, interval time.Duration, job Job) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		s.log.Info("Job already scheduled, keeping existing schedule", zap.String("job", name))
		return false
	}

	if interval < s.opts.MinInterval {
		s.log.Warn("Interval below minimum, using minimum",
			zap.String("job", name),
			zap.Duration("requested", interval),
			zap.Duration("minimum", s.opts.MinInterval))
		interval = s.opts.MinInterval
	}

	ctx, cancel := context.WithCancel(s.ctx)
	sj := &scheduledJob{name: name, interval: interval, job: job, cancel: cancel}
	s.jobs[name] = sj

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop(ctx, sj)
	}()

	return true
}

// Cancel stops the job called name. It reports whether such a job existed.
func (s *Scheduler) Cancel(name string) bool {
	s.mu.Lock()
	sj, ok := s.jobs[name]
	delete(s.jobs, name)
	s.mu.Unlock()

	if ok {
		sj.cancel()
	}
	return ok
}

// Scheduled reports whether a job called name is scheduled
func (s *Scheduler) Scheduled(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.jobs[name]
	return ok
}

// Wait blocks until every job loop has stopped
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context, sj *scheduledJob) {
	ticker := time.NewTicker(sj.interval)
	defer ticker.Stop()

	s.log.Info("Starting scheduled runs", zap.String("job", sj.name), zap.Duration("interval", sj.interval))

	// Run immediately
	s.activate(ctx, sj)

	// Then run on schedule
	for {
		select {
		case <-ticker.C:
			s.activate(ctx, sj)
		case <-ctx.Done():
			s.log.Info("Stopping scheduled runs", zap.String("job", sj.name))
			return
		}
	}
}

// activate runs the job once if the constraints allow it, retrying with
// exponential backoff while it asks to be retried and the next period has not come yet
func (s *Scheduler) activate(ctx context.Context, sj *scheduledJob) {
	for _, c := range s.opts.Constraints {
		if ok, reason := c.Satisfied(); !ok {
			s.log.Info("Constraint not met, deferring run", zap.String("job", sj.name), zap.String("reason", reason))
			return
		}
	}

	delay := s.opts.RetryDelay
	var waited time.Duration

	for attempt := 1; ; attempt++ {
		err := sj.job(ctx)
		if err == nil {
			return
		}

		if !errors.Is(err, ErrRetryLater) {
			s.log.Error("Scheduled run failed", zap.String("job", sj.name), zap.Error(err))
			return
		}

		if waited+delay >= sj.interval {
			s.log.Warn("Giving up retries until next period",
				zap.String("job", sj.name),
				zap.Int("attempts", attempt),
				zap.Error(err))
			return
		}

		s.log.Warn("Scheduled run will be retried",
			zap.String("job", sj.name),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", delay),
			zap.Error(err))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return
		}

		waited += delay
		delay *= 2
	}
}
