// Package scheduler runs periodic maintenance jobs on cron schedules
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// ErrJobNotFound is returned when a job cannot be found by name
var ErrJobNotFound = errors.New("job not found")

// Config represents the schedule of a job
type Config struct {
	// Schedule in cron format (e.g. "*/5 * * * *" for every 5 minutes)
	Schedule string `json:"schedule"`
	// Enabled determines if the job should run on schedule
	Enabled bool `json:"enabled"`
}

// Job is the interface every scheduled job implements
type Job interface {
	// Name returns the unique name of the job
	Name() string
	// Run executes one pass of the job
	Run(ctx context.Context) error
}

type entry struct {
	job    Job
	config Config
}

// Manager handles the scheduling and execution of jobs
type Manager struct {
	jobs []entry
	cron *cron.Cron
}

// NewManager creates a new job manager
func NewManager() *Manager {
	// Create a new cron scheduler with seconds disabled
	c := cron.New(cron.WithParser(cron.NewParser(
		cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow,
	)))

	return &Manager{
		jobs: make([]entry, 0),
		cron: c,
	}
}

// Register adds a job to the manager
func (m *Manager) Register(job Job, config Config) {
	m.jobs = append(m.jobs, entry{job: job, config: config})
}

// Get returns a job by name
func (m *Manager) Get(name string) (Job, bool) {
	for _, e := range m.jobs {
		if e.job.Name() == name {
			return e.job, true
		}
	}
	return nil, false
}

// RunJob executes a specific job by name, regardless of its schedule
func (m *Manager) RunJob(ctx context.Context, name string) error {
	job, found := m.Get(name)
	if !found {
		return ErrJobNotFound
	}
	return job.Run(ctx)
}

// Schedule adds every enabled job to the cron scheduler without starting it
func (m *Manager) Schedule(ctx context.Context) error {
	for _, e := range m.jobs {
		if !e.config.Enabled {
			log.Printf("Job %s is disabled, skipping scheduler", e.job.Name())
			continue
		}

		if e.config.Schedule == "" {
			return fmt.Errorf("job %s has no schedule configured", e.job.Name())
		}

		job := e.job
		_, err := m.cron.AddFunc(e.config.Schedule, func() {
			if err := job.Run(ctx); err != nil {
				log.Printf("Error running job %s: %v", job.Name(), err)
			}
		})
		if err != nil {
			return fmt.Errorf("failed to schedule job %s: %w", job.Name(), err)
		}

		log.Printf("Scheduled job %s with schedule %s", job.Name(), e.config.Schedule)
	}
	return nil
}

// Start schedules all enabled jobs and runs them until ctx is cancelled
func (m *Manager) Start(ctx context.Context) error {
	if err := m.Schedule(ctx); err != nil {
		return err
	}

	m.cron.Start()
	log.Println("Job scheduler started")

	// Wait for context cancellation
	<-ctx.Done()
	log.Println("Stopping job scheduler...")
	<-m.cron.Stop().Done()

	return nil
}

// Entries returns the number of scheduled jobs
func (m *Manager) Entries() int {
	return len(m.cron.Entries())
}
