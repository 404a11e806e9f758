package launcher

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lj-michale/airbyte-platform/internal/models"
)

// JobStore provides job persistence for the launcher, the scheduler and the
// API handlers that enqueue work.
type JobStore struct {
	db *gorm.DB
}

// NewJobStore creates a JobStore on top of the given database handle.
func NewJobStore(db *gorm.DB) *JobStore {
	return &JobStore{db: db}
}

// Enqueue creates a pending job for a connection.
func (s *JobStore) Enqueue(connectionID uuid.UUID, sourceID uuid.UUID, configType string) (*models.Job, error) {
	job := models.Job{
		ID:           uuid.New(),
		ConfigType:   configType,
		ConnectionID: &connectionID,
		SourceID:     &sourceID,
		Status:       models.JobStatusPending,
	}
	if err := s.db.Create(&job).Error; err != nil {
		return nil, fmt.Errorf("failed to enqueue %s job for connection %s: %w", configType, connectionID, err)
	}
	return &job, nil
}

// HasActiveJob reports whether a pending or running job already exists for
// the connection. Used to avoid piling up overlapping sync runs.
func (s *JobStore) HasActiveJob(connectionID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.Model(&models.Job{}).
		Where("connection_id = ? AND status IN ?", connectionID, []string{models.JobStatusPending, models.JobStatusRunning}).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to count active jobs for connection %s: %w", connectionID, err)
	}
	return count > 0, nil
}

// ClaimNextPending atomically moves the oldest pending job to running and
// returns it. Returns nil when no pending job exists.
func (s *JobStore) ClaimNextPending() (*models.Job, error) {
	var job models.Job
	err := s.db.Where("status = ?", models.JobStatusPending).
		Order("created_at asc").
		First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up pending jobs: %w", err)
	}

	now := time.Now().UTC()
	// Guarded update so a concurrent cancel (or another launcher) loses at
	// most one of the two writes, never both.
	res := s.db.Model(&models.Job{}).
		Where("id = ? AND status = ?", job.ID, models.JobStatusPending).
		Updates(map[string]interface{}{
			"status":     models.JobStatusRunning,
			"started_at": now,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to claim job %s: %w", job.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		// Lost the race; the caller just polls again.
		return nil, nil
	}

	job.Status = models.JobStatusRunning
	job.StartedAt = &now
	return &job, nil
}

// Complete transitions a running job to its terminal status and records the
// execution attempt. The transition is guarded on the running state, so a job
// cancelled mid-flight keeps its cancelled status.
func (s *JobStore) Complete(jobID uuid.UUID, status, externalFailure, internalFailure string) error {
	now := time.Now().UTC()
	res := s.db.Model(&models.Job{}).
		Where("id = ? AND status = ?", jobID, models.JobStatusRunning).
		Updates(map[string]interface{}{
			"status":   status,
			"ended_at": now,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to complete job %s: %w", jobID, res.Error)
	}

	var attemptCount int64
	if err := s.db.Model(&models.JobAttempt{}).Where("job_id = ?", jobID).Count(&attemptCount).Error; err != nil {
		return fmt.Errorf("failed to count attempts for job %s: %w", jobID, err)
	}

	attemptStatus := status
	if res.RowsAffected == 0 {
		// The job left the running state underneath us (cancelled). Record
		// the attempt against the actual final state.
		var current models.Job
		if err := s.db.First(&current, "id = ?", jobID).Error; err != nil {
			return fmt.Errorf("failed to reload job %s after completion race: %w", jobID, err)
		}
		attemptStatus = current.Status
	}

	attempt := models.JobAttempt{
		ID:                    uuid.New(),
		JobID:                 jobID,
		Number:                int(attemptCount) + 1,
		Status:                attemptStatus,
		ExternalFailureReason: externalFailure,
		InternalFailureReason: internalFailure,
	}
	if err := s.db.Create(&attempt).Error; err != nil {
		return fmt.Errorf("failed to record attempt for job %s: %w", jobID, err)
	}
	return nil
}

// Get fetches a job by id.
func (s *JobStore) Get(jobID uuid.UUID) (*models.Job, error) {
	var job models.Job
	if err := s.db.First(&job, "id = ?", jobID).Error; err != nil {
		return nil, fmt.Errorf("failed to load job %s: %w", jobID, err)
	}
	return &job, nil
}

// SourceForJob resolves the source a job operates on, either directly or via
// its connection.
func (s *JobStore) SourceForJob(job *models.Job) (*models.Source, error) {
	sourceID := job.SourceID
	if sourceID == nil {
		if job.ConnectionID == nil {
			return nil, fmt.Errorf("job %s has neither a source nor a connection", job.ID)
		}
		var connection models.Connection
		if err := s.db.First(&connection, "id = ?", *job.ConnectionID).Error; err != nil {
			return nil, fmt.Errorf("failed to load connection %s for job %s: %w", *job.ConnectionID, job.ID, err)
		}
		sourceID = &connection.SourceID
	}

	var source models.Source
	if err := s.db.First(&source, "id = ?", *sourceID).Error; err != nil {
		return nil, fmt.Errorf("failed to load source %s for job %s: %w", *sourceID, job.ID, err)
	}
	return &source, nil
}

// ListEnabledConnections returns connections that carry an enabled schedule.
func (s *JobStore) ListEnabledConnections() ([]models.Connection, error) {
	var connections []models.Connection
	err := s.db.Where("is_enabled = ? AND cron_expression <> ''", true).Find(&connections).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list enabled connections: %w", err)
	}
	return connections, nil
}
