package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"
)

var (
	ErrFailedToCreateScheduler = errors.New("failed to create scheduler")
	ErrJobAlreadyExists        = errors.New("job already registered")
	ErrFailedToCreateJob       = errors.New("failed to create job")
)

// Task is one maintenance unit. Tasks must be safe to run concurrently
// with normal request traffic.
type Task func(ctx context.Context) error

// Runner manages scheduled maintenance executions
type Runner struct {
	scheduler gocron.Scheduler
	jobs      map[string]gocron.Job
	tasks     map[string]Task
	mu        sync.RWMutex
}

// NewRunner creates a new scheduler runner
func NewRunner() (*Runner, error) {
	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(time.UTC),
		gocron.WithGlobalJobOptions(
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		),
	)

	if err != nil {
		log.Error().Err(err).Msg("Failed to create scheduler")
		return nil, ErrFailedToCreateScheduler
	}

	return &Runner{
		scheduler: scheduler,
		jobs:      make(map[string]gocron.Job),
		tasks:     make(map[string]Task),
	}, nil
}

// Register adds a task to the runner with a cron schedule. An empty
// schedule registers the task for manual runs only.
func (r *Runner) Register(name, cronSchedule string, task Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tasks[name]; exists {
		log.Error().Str("job", name).Msg("Job already registered")
		return ErrJobAlreadyExists
	}
	r.tasks[name] = task

	if cronSchedule == "" {
		log.Warn().Str("job", name).Msg("No cron schedule provided, manual runs only")
		return nil
	}

	job, err := r.scheduler.NewJob(
		gocron.CronJob(
			cronSchedule,
			false,
		),
		gocron.NewTask(
			r.executeJob,
			name,
		),
		gocron.WithName(strings.Join([]string{"maintenance", name}, "_")),
		gocron.WithTags([]string{"maintenance", name}...),
	)

	if err != nil {
		log.Error().Err(err).Str("job", name).Msg("Failed to schedule job")
		return ErrFailedToCreateJob
	}

	r.jobs[name] = job
	nextRun, e := job.NextRun()

	if e != nil {
		log.Error().Err(e).Str("job", name).Msg("Failed to get next run time")
		return e
	}

	log.Info().
		Str("job", name).
		Str("cron", cronSchedule).
		Time("next_run", nextRun).
		Msg("Job registered with scheduler")

	return nil
}

// executeJob is the function that gets called on schedule
func (r *Runner) executeJob(name string) {
	r.mu.RLock()
	task, exists := r.tasks[name]
	r.mu.RUnlock()

	if !exists {
		log.Error().Str("job", name).Msg("Job not found in registry")
		return
	}

	startedAt := time.Now()
	log.Info().
		Str("job", name).
		Msg("Starting scheduled maintenance job")

	if err := task(context.Background()); err != nil {
		log.Error().
			Err(err).
			Str("job", name).
			Msg("Error executing maintenance job")
		return
	}

	log.Info().
		Str("job", name).
		Dur("duration", time.Since(startedAt)).
		Msg("Completed maintenance job")
}

// Start begins the scheduler
func (r *Runner) Start() {
	r.scheduler.Start()
	log.Info().Int("jobs", len(r.jobs)).Msg("Scheduler started")
}

// Stop halts the scheduler
func (r *Runner) Stop(ctx context.Context) error {
	return r.scheduler.Shutdown()
}

// RunNow executes a job right now without waiting for its schedule
func (r *Runner) RunNow(ctx context.Context, name string) error {
	r.mu.RLock()
	task, exists := r.tasks[name]
	r.mu.RUnlock()

	if !exists {
		return fmt.Errorf("job %s not registered", name)
	}

	if err := task(ctx); err != nil {
		log.Error().
			Err(err).
			Str("job", name).
			Msg("Error executing job immediately")
		return err
	}

	return nil
}

// RunAllNow executes every registered job once, immediately
func (r *Runner) RunAllNow(ctx context.Context) error {
	r.mu.RLock()
	names := make([]string, 0, len(r.tasks))
	for name := range r.tasks {
		names = append(names, name)
	}
	r.mu.RUnlock()

	var errs []error
	for _, name := range names {
		if err := r.RunNow(ctx, name); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// NextRuns returns the next scheduled run time by job
func (r *Runner) NextRuns() map[string]time.Time {
	result := make(map[string]time.Time)

	r.mu.RLock()
	defer r.mu.RUnlock()

	for name, job := range r.jobs {
		nr, err := job.NextRun()
		if err != nil {
			log.Error().Err(err).Str("job", name).Msg("Error getting next run time")
			result[name] = time.Time{}
			continue
		}
		result[name] = nr
	}

	return result
}
