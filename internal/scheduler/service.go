// Package scheduler turns enabled connection schedules into cron entries that
// enqueue sync jobs.
package scheduler

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/lj-michale/airbyte-platform/internal/models"
)

// specParser matches the options the cron runner is built with: six-field
// expressions with a seconds column, plus @-descriptors.
var specParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ValidateCronExpression reports whether the expression is accepted by the
// scheduler's parser.
func ValidateCronExpression(expression string) error {
	_, err := specParser.Parse(expression)
	return err
}

// ScheduleStore lists the connections the scheduler should run.
type ScheduleStore interface {
	ListEnabledConnections() ([]models.Connection, error)
}

// SyncEnqueuer enqueues sync jobs for connections.
type SyncEnqueuer interface {
	HasActiveJob(connectionID uuid.UUID) (bool, error)
	Enqueue(connectionID uuid.UUID, sourceID uuid.UUID, configType string) (*models.Job, error)
}

// SchedulerService loads enabled connection schedules and enqueues sync jobs
// on their cron cadence.
type SchedulerService struct {
	cronRunner *cron.Cron
	store      ScheduleStore
	enqueuer   SyncEnqueuer
}

// NewSchedulerService creates a SchedulerService.
func NewSchedulerService(store ScheduleStore, enqueuer SyncEnqueuer) *SchedulerService {
	log.Println("Initializing Scheduler Service...")
	return &SchedulerService{
		store:    store,
		enqueuer: enqueuer,
		cronRunner: cron.New(
			cron.WithSeconds(), // Use seconds field in cron expressions
			cron.WithChain(
				cron.SkipIfStillRunning(cron.DefaultLogger),
				cron.Recover(cron.DefaultLogger),
			),
		),
	}
}

// runSyncTask is called by a cron job to enqueue a sync for one connection.
func (s *SchedulerService) runSyncTask(connectionID uuid.UUID, connectionName string, sourceID uuid.UUID) {
	active, err := s.enqueuer.HasActiveJob(connectionID)
	if err != nil {
		log.Printf("Error checking active jobs for connection %s (%s): %v", connectionID, connectionName, err)
		return
	}
	if active {
		log.Printf("Connection %s (%s) already has a pending or running job. Skipping this tick.", connectionID, connectionName)
		return
	}

	job, err := s.enqueuer.Enqueue(connectionID, sourceID, models.JobConfigSync)
	if err != nil {
		log.Printf("Error enqueuing sync for connection %s (%s): %v", connectionID, connectionName, err)
		return
	}
	log.Printf("Enqueued sync job %s for connection %s (%s)", job.ID, connectionID, connectionName)
}

// Start loads enabled connection schedules and starts the cron runner.
func (s *SchedulerService) Start() error {
	log.Println("Loading connection schedules...")
	connections, err := s.store.ListEnabledConnections()
	if err != nil {
		return fmt.Errorf("failed to load enabled connections: %w", err)
	}

	log.Printf("Found %d enabled connection schedules to process.", len(connections))
	for _, connection := range connections {
		// Capture for the closure
		currentConnection := connection

		entryID, err := s.cronRunner.AddFunc(currentConnection.CronExpression, func() {
			s.runSyncTask(currentConnection.ID, currentConnection.Name, currentConnection.SourceID)
		})
		if err != nil {
			log.Printf("Error adding job for connection %s (%s) with cron '%s': %v",
				currentConnection.ID, currentConnection.Name, currentConnection.CronExpression, err)
			continue
		}
		log.Printf("Scheduled connection %s (%s), EntryID: %d, Cron: '%s'",
			currentConnection.ID, currentConnection.Name, entryID, currentConnection.CronExpression)
	}

	s.cronRunner.Start() // non-blocking
	log.Println("Cron runner started. Scheduler Service is active.")
	return nil
}

// Entries returns the scheduled cron entries.
func (s *SchedulerService) Entries() []cron.Entry {
	return s.cronRunner.Entries()
}

// Stop gracefully shuts down the cron runner.
func (s *SchedulerService) Stop() {
	log.Println("Stopping cron runner... waiting for jobs to complete.")
	ctx := s.cronRunner.Stop()
	select {
	case <-ctx.Done():
		log.Println("Cron runner stopped gracefully.")
	case <-time.After(15 * time.Second):
		log.Println("Cron runner shutdown timed out.")
	}
}
