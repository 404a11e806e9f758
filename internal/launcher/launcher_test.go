package launcher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lj-michale/airbyte-platform/internal/discovery"
	"github.com/lj-michale/airbyte-platform/internal/events"
	"github.com/lj-michale/airbyte-platform/internal/models"
)

// --- Mock JobRunner ---
type MockJobRunner struct {
	mock.Mock
}

func (m *MockJobRunner) Run(ctx context.Context, job *models.Job, source *models.Source) error {
	args := m.Called(ctx, job, source)
	return args.Error(0)
}

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.JobEvent
}

func (p *recordingPublisher) PublishJobEvent(event events.JobEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) statuses() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	statuses := make([]string, 0, len(p.events))
	for _, e := range p.events {
		statuses = append(statuses, e.Status)
	}
	return statuses
}

func TestRunOnce_Success(t *testing.T) {
	clearTables(t)
	_, connection := seedConnection(t, "launch ok", true, "@every 1m")

	job, err := store.Enqueue(connection.ID, connection.SourceID, models.JobConfigSync)
	require.NoError(t, err)

	runner := new(MockJobRunner)
	runner.On("Run", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	publisher := &recordingPublisher{}

	l := NewLauncher(store, runner, publisher, time.Second)
	ran, err := l.RunOnce()
	require.NoError(t, err)
	assert.True(t, ran)

	final, err := store.Get(job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusSucceeded, final.Status)
	assert.NotNil(t, final.EndedAt)

	assert.Equal(t, []string{models.JobStatusRunning, models.JobStatusSucceeded}, publisher.statuses())
	runner.AssertExpectations(t)
}

func TestRunOnce_ConnectorFailure(t *testing.T) {
	clearTables(t)
	_, connection := seedConnection(t, "launch fail", true, "@every 1m")

	job, err := store.Enqueue(connection.ID, connection.SourceID, models.JobConfigSync)
	require.NoError(t, err)

	runner := new(MockJobRunner)
	runner.On("Run", mock.Anything, mock.Anything, mock.Anything).Return(&discovery.Error{
		ExternalMessage: "Could not open CSV file /tmp/data.csv.",
		InternalMessage: "open /tmp/data.csv: no such file or directory",
	}).Once()
	publisher := &recordingPublisher{}

	l := NewLauncher(store, runner, publisher, time.Second)
	ran, err := l.RunOnce()
	require.NoError(t, err)
	assert.True(t, ran)

	final, err := store.Get(job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusFailed, final.Status)

	var attempt models.JobAttempt
	require.NoError(t, testDB.First(&attempt, "job_id = ?", job.ID).Error)
	assert.Equal(t, "Could not open CSV file /tmp/data.csv.", attempt.ExternalFailureReason)
	assert.Equal(t, "open /tmp/data.csv: no such file or directory", attempt.InternalFailureReason)

	assert.Equal(t, []string{models.JobStatusRunning, models.JobStatusFailed}, publisher.statuses())
	runner.AssertExpectations(t)
}

func TestRunOnce_PlainErrorIsInternal(t *testing.T) {
	clearTables(t)
	_, connection := seedConnection(t, "plain error", true, "@every 1m")

	job, err := store.Enqueue(connection.ID, connection.SourceID, models.JobConfigSync)
	require.NoError(t, err)

	runner := new(MockJobRunner)
	runner.On("Run", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("boom")).Once()

	l := NewLauncher(store, runner, nil, time.Second)
	ran, err := l.RunOnce()
	require.NoError(t, err)
	assert.True(t, ran)

	var attempt models.JobAttempt
	require.NoError(t, testDB.First(&attempt, "job_id = ?", job.ID).Error)
	assert.Empty(t, attempt.ExternalFailureReason)
	assert.Equal(t, "boom", attempt.InternalFailureReason)
}

func TestRunOnce_NoPendingJobs(t *testing.T) {
	clearTables(t)

	runner := new(MockJobRunner)
	l := NewLauncher(store, runner, nil, time.Second)

	ran, err := l.RunOnce()
	require.NoError(t, err)
	assert.False(t, ran)
	runner.AssertNotCalled(t, "Run", mock.Anything, mock.Anything, mock.Anything)
}
