package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job represents a scheduled scraper job
type Job interface {
	Run() error
	Name() string
}

// RunInfo records the outcome of a job's most recent run
type RunInfo struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Error      string    `json:"error,omitempty"`
}

// JobStatus is the introspection view of one registered job
type JobStatus struct {
	Name     string    `json:"name"`
	Schedule string    `json:"schedule"`
	NextRun  time.Time `json:"next_run"`
	LastRun  *RunInfo  `json:"last_run,omitempty"`
}

type entry struct {
	job      Job
	schedule string
	cronID   cron.EntryID

	mu      sync.Mutex
	lastRun *RunInfo
}

// Scheduler manages background scraper jobs on independent cadences
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger

	mu      sync.Mutex
	entries []*entry
}

// New creates a new scheduler
func New(log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithSeconds()),
		log:  log.With().Str("component", "scheduler").Logger(),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("Scheduler started")
}

// Stop stops the scheduler and waits for in-flight jobs
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopped")
}

// AddJob registers a new job with a cron schedule
/// Schedule examples:
//   - "0 */5 * * * *"      - Every 5 minutes
//   - "@hourly"            - Every hour
//   - "0 0 9 * * MON-FRI"  - 9 AM weekdays
func (s *Scheduler) AddJob(schedule string, job Job) error {
	e := &entry{job: job, schedule: schedule}

	id, err := s.cron.AddFunc(schedule, func() {
		_ = s.execute(e)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule %s: %w", job.Name(), err)
	}
	e.cronID = id

	s.mu.Lock()
	s.entries = append(s.entries, e)
	s.mu.Unlock()

	s.log.Info().
		Str("schedule", schedule).
		Str("job", job.Name()).
		Msg("Job registered")

	return nil
}

// execute runs one job, recording its outcome. Panics are contained here so
// one misbehaving scraper can never take down the scheduler or a batch run.
func (s *Scheduler) execute(e *entry) (err error) {
	run := &RunInfo{
		RunID:     uuid.New().String(),
		StartedAt: time.Now(),
	}
	log := s.log.With().Str("job", e.job.Name()).Str("run_id", run.RunID).Logger()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		run.FinishedAt = time.Now()
		elapsed := run.FinishedAt.Sub(run.StartedAt)
		if err != nil {
			run.Error = err.Error()
			log.Error().Err(err).Dur("elapsed", elapsed).Msg("Job failed")
		} else {
			log.Info().Dur("elapsed", elapsed).Msg("Job completed")
		}

		e.mu.Lock()
		e.lastRun = run
		e.mu.Unlock()
	}()

	log.Debug().Msg("Running job")
	return e.job.Run()
}

// RunNow executes a job immediately, outside its schedule
func (s *Scheduler) RunNow(job Job) error {
	s.log.Info().Str("job", job.Name()).Msg("Running job immediately")
	return s.execute(&entry{job: job})
}

// TriggerAll runs every registered job once, sequentially, and reports a
// per-job outcome. One job's failure never aborts the rest of the batch.
func (s *Scheduler) TriggerAll() map[string]string {
	s.mu.Lock()
	entries := make([]*entry, len(s.entries))
	copy(entries, s.entries)
	s.mu.Unlock()

	results := make(map[string]string, len(entries))
	for _, e := range entries {
		if err := s.execute(e); err != nil {
			results[e.job.Name()] = "failed: " + err.Error()
		} else {
			results[e.job.Name()] = "success"
		}
	}

	return results
}

// Jobs reports name, schedule, next run time and last outcome per job
func (s *Scheduler) Jobs() []JobStatus {
	s.mu.Lock()
	entries := make([]*entry, len(s.entries))
	copy(entries, s.entries)
	s.mu.Unlock()

	statuses := make([]JobStatus, 0, len(entries))
	for _, e := range entries {
		status := JobStatus{
			Name:     e.job.Name(),
			Schedule: e.schedule,
			NextRun:  s.cron.Entry(e.cronID).Next,
		}
		e.mu.Lock()
		if e.lastRun != nil {
			run := *e.lastRun
			status.LastRun = &run
		}
		e.mu.Unlock()
		statuses = append(statuses, status)
	}

	return statuses
}
