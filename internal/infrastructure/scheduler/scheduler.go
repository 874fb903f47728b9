// Package scheduler runs the periodic ledger jobs on robfig/cron.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/AkramSamirElhayani/IMS/internal/infrastructure/logger"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// JobStatus represents the outcome of a job run
type JobStatus string

const (
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// JobFunc is the work a scheduled job performs
type JobFunc func(ctx context.Context) error

// JobRun records one execution of a job
type JobRun struct {
	ID          uuid.UUID
	Job         string
	Status      JobStatus
	StartedAt   time.Time
	CompletedAt time.Time
	Error       string
}

// JobMetrics receives the duration and outcome of every run
type JobMetrics interface {
	RecordJob(ctx context.Context, job string, d time.Duration, err error)
}

// Config holds scheduler configuration
type Config struct {
	JobTimeout time.Duration
	Location   *time.Location
}

// DefaultConfig returns the default scheduler configuration
func DefaultConfig() Config {
	return Config{
		JobTimeout: 5 * time.Minute,
		Location:   time.UTC,
	}
}

type job struct {
	name    string
	spec    string
	fn      JobFunc
	entryID cron.EntryID
}

// Scheduler runs named jobs on cron schedules.
// Runs of the same job never overlap; a panicking job is recorded as failed.
type Scheduler struct {
	cron    *cron.Cron
	config  Config
	logger  *zap.Logger
	metrics JobMetrics

	mu      sync.Mutex
	jobs    map[string]*job
	lastRun map[string]JobRun
	running bool
	baseCtx context.Context
	cancel  context.CancelFunc
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithJobMetrics reports job runs to m
func WithJobMetrics(m JobMetrics) Option {
	return func(s *Scheduler) {
		s.metrics = m
	}
}

// New creates a scheduler. Jobs are added with AddJob before or after Start.
func New(cfg Config, logger *zap.Logger, opts ...Option) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = DefaultConfig().JobTimeout
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	s := &Scheduler{
		config:  cfg,
		logger:  logger.Named("scheduler"),
		jobs:    make(map[string]*job),
		lastRun: make(map[string]JobRun),
		baseCtx: context.Background(),
	}
	s.cron = cron.New(
		cron.WithLocation(cfg.Location),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{s.logger})),
	)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddJob registers fn under name on a standard five-field cron spec (descriptors such as @every are accepted)
func (s *Scheduler) AddJob(name, spec string, fn JobFunc) error {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return fmt.Errorf("%w %q for job %s: %v", ErrInvalidSchedule, spec, name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateJob, name)
	}

	j := &job{name: name, spec: spec, fn: fn}
	j.entryID = s.cron.Schedule(schedule, cron.FuncJob(func() {
		_ = s.run(s.context(), j)
	}))
	s.jobs[name] = j

	s.logger.Info("Job scheduled", zap.String("job", name), zap.String("schedule", spec))
	return nil
}

// RunNow executes the named job synchronously and returns its error
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	j, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	return s.run(ctx, j)
}

// Start begins firing jobs on their schedules
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.baseCtx, s.cancel = context.WithCancel(context.WithoutCancel(ctx))
	s.running = true
	s.cron.Start()
	s.logger.Info("Scheduler started", zap.Int("jobs", len(s.jobs)), zap.Duration("job_timeout", s.config.JobTimeout))
}

// Stop stops firing jobs and waits for running ones until ctx is done.
// Running jobs see their context cancelled when ctx expires.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	cancel := s.cancel
	s.mu.Unlock()

	done := s.cron.Stop()
	select {
	case <-done.Done():
		cancel()
		s.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		cancel()
		s.logger.Warn("Scheduler stop timed out; running jobs were cancelled")
		return ctx.Err()
	}
}

// IsRunning reports whether the scheduler was started and not stopped
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Jobs returns the registered job names in order
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LastRun returns the most recent run of the named job
func (s *Scheduler) LastRun(name string) (JobRun, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.lastRun[name]
	return run, ok
}

// NextRun returns when the named job fires next; zero before Start
func (s *Scheduler) NextRun(name string) (time.Time, bool) {
	s.mu.Lock()
	j, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return time.Time{}, false
	}
	return s.cron.Entry(j.entryID).Next, true
}

func (s *Scheduler) context() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baseCtx
}

func (s *Scheduler) run(ctx context.Context, j *job) (err error) {
	run := JobRun{ID: uuid.New(), Job: j.name, Status: JobStatusRunning, StartedAt: time.Now().UTC()}
	s.record(run)

	// The run ID correlates every statement and log line of the run
	jobCtx, log := logger.WithOperation(ctx, s.logger.With(zap.String("job", j.name)), "job."+j.name)
	jobCtx, log = logger.WithCorrelationID(jobCtx, log, run.ID.String())
	log.Info("Job started")

	jobCtx, cancel := context.WithTimeout(jobCtx, s.config.JobTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", j.name, r)
		}
		run.CompletedAt = time.Now().UTC()
		elapsed := run.CompletedAt.Sub(run.StartedAt)
		if err != nil {
			run.Status = JobStatusFailed
			run.Error = err.Error()
			log.Error("Job failed", zap.Duration("duration", elapsed), zap.Error(err))
		} else {
			run.Status = JobStatusSuccess
			log.Info("Job completed", zap.Duration("duration", elapsed))
		}
		s.record(run)
		if s.metrics != nil {
			s.metrics.RecordJob(ctx, j.name, elapsed, err)
		}
	}()

	return j.fn(jobCtx)
}

func (s *Scheduler) record(run JobRun) {
	s.mu.Lock()
	s.lastRun[run.Job] = run
	s.mu.Unlock()
}

// cronLogger adapts zap to cron.Logger
type cronLogger struct {
	l *zap.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Sugar().Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
