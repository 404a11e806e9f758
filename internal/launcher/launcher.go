// Package launcher executes queued jobs: it claims pending jobs, drives their
// state transitions, records attempts with failure reasons, and publishes
// lifecycle events.
package launcher

import (
	"context"
	"log"
	"time"

	"github.com/lj-michale/airbyte-platform/internal/discovery"
	"github.com/lj-michale/airbyte-platform/internal/events"
	"github.com/lj-michale/airbyte-platform/internal/metrics"
	"github.com/lj-michale/airbyte-platform/internal/models"
)

// JobRunner performs the actual work of one job.
type JobRunner interface {
	Run(ctx context.Context, job *models.Job, source *models.Source) error
}

// ConnectorCheckRunner verifies the job's source is reachable through its
// connector. Data movement itself happens outside this service; the run is
// recorded as succeeded once the source checks out.
type ConnectorCheckRunner struct {
	Discovery *discovery.Service
}

// Run checks source connectivity for the job.
func (r *ConnectorCheckRunner) Run(ctx context.Context, job *models.Job, source *models.Source) error {
	return r.Discovery.CheckSource(ctx, source)
}

// Launcher polls for pending jobs and executes them one at a time.
type Launcher struct {
	store        *JobStore
	runner       JobRunner
	publisher    events.Publisher
	pollInterval time.Duration
	jobTimeout   time.Duration

	stop chan struct{}
	done chan struct{}
}

// NewLauncher creates a Launcher.
func NewLauncher(store *JobStore, runner JobRunner, publisher events.Publisher, pollInterval time.Duration) *Launcher {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Launcher{
		store:        store,
		runner:       runner,
		publisher:    publisher,
		pollInterval: pollInterval,
		jobTimeout:   5 * time.Minute,
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
}

// Start begins polling for pending jobs in a background goroutine.
func (l *Launcher) Start() {
	log.Printf("Launcher started, polling every %s", l.pollInterval)
	go func() {
		defer close(l.done)
		ticker := time.NewTicker(l.pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-l.stop:
				return
			case <-ticker.C:
				l.drainPending()
			}
		}
	}()
}

// Stop halts polling and waits for the in-flight job, if any, to finish.
func (l *Launcher) Stop() {
	log.Println("Launcher stopping...")
	close(l.stop)
	select {
	case <-l.done:
		log.Println("Launcher stopped gracefully.")
	case <-time.After(30 * time.Second):
		log.Println("Launcher shutdown timed out.")
	}
}

// drainPending claims and executes pending jobs until the queue is empty.
func (l *Launcher) drainPending() {
	for {
		select {
		case <-l.stop:
			return
		default:
		}

		job, err := l.store.ClaimNextPending()
		if err != nil {
			log.Printf("Error claiming pending job: %v", err)
			return
		}
		if job == nil {
			return
		}
		l.runJob(job)
	}
}

// RunOnce claims at most one pending job and executes it. Returns whether a
// job was executed.
func (l *Launcher) RunOnce() (bool, error) {
	job, err := l.store.ClaimNextPending()
	if err != nil {
		return false, err
	}
	if job == nil {
		return false, nil
	}
	l.runJob(job)
	return true, nil
}

func (l *Launcher) runJob(job *models.Job) {
	log.Printf("Running job %s (%s)", job.ID, job.ConfigType)
	metrics.JobsRunning.Inc()
	defer metrics.JobsRunning.Dec()
	l.publish(job, models.JobStatusRunning)

	source, err := l.store.SourceForJob(job)
	if err != nil {
		log.Printf("Job %s failed before execution: %v", job.ID, err)
		l.finish(job, models.JobStatusFailed, "", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), l.jobTimeout)
	defer cancel()

	if err := l.runner.Run(ctx, job, source); err != nil {
		external, internal := failureReasons(err)
		log.Printf("Job %s failed: %v", job.ID, err)
		l.finish(job, models.JobStatusFailed, external, internal)
		return
	}

	l.finish(job, models.JobStatusSucceeded, "", "")
}

func (l *Launcher) finish(job *models.Job, status, externalFailure, internalFailure string) {
	if err := l.store.Complete(job.ID, status, externalFailure, internalFailure); err != nil {
		log.Printf("Error completing job %s: %v", job.ID, err)
		return
	}

	// A cancel racing the completion wins the guarded update; report the
	// status the job actually ended with.
	final, err := l.store.Get(job.ID)
	if err != nil {
		log.Printf("Error reloading job %s after completion: %v", job.ID, err)
		return
	}

	metrics.JobsCompleted.WithLabelValues(final.ConfigType, final.Status).Inc()
	l.publish(final, final.Status)
	log.Printf("Job %s finished with status %s", final.ID, final.Status)
}

func (l *Launcher) publish(job *models.Job, status string) {
	event := events.JobEvent{
		JobID:        job.ID,
		ConfigType:   job.ConfigType,
		ConnectionID: job.ConnectionID,
		SourceID:     job.SourceID,
		Status:       status,
		Timestamp:    time.Now().UTC(),
	}
	if err := l.publisher.PublishJobEvent(event); err != nil {
		log.Printf("Error publishing %s event for job %s: %v", status, job.ID, err)
	}
}

// failureReasons splits an execution error into the connector's external
// message and the internal detail.
func failureReasons(err error) (external, internal string) {
	if ce, ok := discovery.AsError(err); ok {
		return ce.ExternalMessage, ce.InternalMessage
	}
	return "", err.Error()
}
