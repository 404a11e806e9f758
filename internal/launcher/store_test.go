package launcher

import (
	"log"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lj-michale/airbyte-platform/internal/models"
)

var testDB *gorm.DB
var store *JobStore

func TestMain(m *testing.M) {
	var err error
	testDB, err = gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to test database: %v", err)
	}

	err = testDB.AutoMigrate(&models.Source{}, &models.Connection{}, &models.Job{}, &models.JobAttempt{})
	if err != nil {
		log.Fatalf("Failed to migrate test database schema: %v", err)
	}
	store = NewJobStore(testDB)

	exitCode := m.Run()

	sqlDB, err := testDB.DB()
	if err == nil {
		sqlDB.Close()
	}
	os.Exit(exitCode)
}

func clearTables(t *testing.T) {
	t.Helper()
	for _, table := range []string{"job_attempts", "jobs", "connections", "sources"} {
		require.NoError(t, testDB.Exec("DELETE FROM "+table).Error)
	}
}

func seedConnection(t *testing.T, name string, enabled bool, cron string) (models.Source, models.Connection) {
	t.Helper()
	source := models.Source{
		ID:            uuid.New(),
		Name:          name + " source",
		SourceType:    "csv",
		Configuration: `{"filepath":"/tmp/data.csv"}`,
	}
	require.NoError(t, testDB.Create(&source).Error)

	connection := models.Connection{
		ID:              uuid.New(),
		SourceID:        source.ID,
		Name:            name,
		DestinationName: "warehouse",
		CronExpression:  cron,
		IsEnabled:       enabled,
	}
	require.NoError(t, testDB.Create(&connection).Error)
	return source, connection
}

func TestEnqueueAndClaim(t *testing.T) {
	clearTables(t)
	_, connection := seedConnection(t, "claim", true, "@every 1m")

	job, err := store.Enqueue(connection.ID, connection.SourceID, models.JobConfigSync)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusPending, job.Status)

	claimed, err := store.ClaimNextPending()
	require.NoError(t, err)
	require.NotNil(t, claimed)
	assert.Equal(t, job.ID, claimed.ID)
	assert.Equal(t, models.JobStatusRunning, claimed.Status)
	assert.NotNil(t, claimed.StartedAt)

	// Nothing left to claim.
	claimed, err = store.ClaimNextPending()
	require.NoError(t, err)
	assert.Nil(t, claimed)
}

func TestClaimOldestFirst(t *testing.T) {
	clearTables(t)
	_, connection := seedConnection(t, "order", true, "@every 1m")

	first, err := store.Enqueue(connection.ID, connection.SourceID, models.JobConfigSync)
	require.NoError(t, err)
	second, err := store.Enqueue(connection.ID, connection.SourceID, models.JobConfigResetConnection)
	require.NoError(t, err)

	// Make the ordering unambiguous.
	require.NoError(t, testDB.Model(&models.Job{}).Where("id = ?", first.ID).
		UpdateColumn("created_at", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)).Error)
	require.NoError(t, testDB.Model(&models.Job{}).Where("id = ?", second.ID).
		UpdateColumn("created_at", time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)).Error)

	claimed, err := store.ClaimNextPending()
	require.NoError(t, err)
	require.NotNil(t, claimed)
	assert.Equal(t, first.ID, claimed.ID)
}

func TestComplete(t *testing.T) {
	clearTables(t)
	_, connection := seedConnection(t, "complete", true, "@every 1m")

	job, err := store.Enqueue(connection.ID, connection.SourceID, models.JobConfigSync)
	require.NoError(t, err)
	_, err = store.ClaimNextPending()
	require.NoError(t, err)

	require.NoError(t, store.Complete(job.ID, models.JobStatusSucceeded, "", ""))

	final, err := store.Get(job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusSucceeded, final.Status)
	assert.NotNil(t, final.EndedAt)

	var attempt models.JobAttempt
	require.NoError(t, testDB.First(&attempt, "job_id = ?", job.ID).Error)
	assert.Equal(t, 1, attempt.Number)
	assert.Equal(t, models.JobStatusSucceeded, attempt.Status)
}

func TestComplete_RecordsFailureReasons(t *testing.T) {
	clearTables(t)
	_, connection := seedConnection(t, "failure", true, "@every 1m")

	job, err := store.Enqueue(connection.ID, connection.SourceID, models.JobConfigSync)
	require.NoError(t, err)
	_, err = store.ClaimNextPending()
	require.NoError(t, err)

	require.NoError(t, store.Complete(job.ID, models.JobStatusFailed, "Could not open file.", "open /tmp/x: no such file"))

	var attempt models.JobAttempt
	require.NoError(t, testDB.First(&attempt, "job_id = ?", job.ID).Error)
	assert.Equal(t, "Could not open file.", attempt.ExternalFailureReason)
	assert.Equal(t, "open /tmp/x: no such file", attempt.InternalFailureReason)
}

func TestComplete_CancelledJobKeepsCancelledStatus(t *testing.T) {
	clearTables(t)
	_, connection := seedConnection(t, "race", true, "@every 1m")

	job, err := store.Enqueue(connection.ID, connection.SourceID, models.JobConfigSync)
	require.NoError(t, err)
	_, err = store.ClaimNextPending()
	require.NoError(t, err)

	// A cancel landed while the job was running.
	require.NoError(t, testDB.Model(&models.Job{}).Where("id = ?", job.ID).
		Update("status", models.JobStatusCancelled).Error)

	require.NoError(t, store.Complete(job.ID, models.JobStatusSucceeded, "", ""))

	final, err := store.Get(job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCancelled, final.Status)

	// The attempt reflects the actual final state, not the runner's verdict.
	var attempt models.JobAttempt
	require.NoError(t, testDB.First(&attempt, "job_id = ?", job.ID).Error)
	assert.Equal(t, models.JobStatusCancelled, attempt.Status)
}

func TestHasActiveJob(t *testing.T) {
	clearTables(t)
	_, connection := seedConnection(t, "active", true, "@every 1m")

	active, err := store.HasActiveJob(connection.ID)
	require.NoError(t, err)
	assert.False(t, active)

	job, err := store.Enqueue(connection.ID, connection.SourceID, models.JobConfigSync)
	require.NoError(t, err)

	active, err = store.HasActiveJob(connection.ID)
	require.NoError(t, err)
	assert.True(t, active)

	require.NoError(t, testDB.Model(&models.Job{}).Where("id = ?", job.ID).
		Update("status", models.JobStatusSucceeded).Error)

	active, err = store.HasActiveJob(connection.ID)
	require.NoError(t, err)
	assert.False(t, active)
}

func TestSourceForJob(t *testing.T) {
	clearTables(t)
	source, connection := seedConnection(t, "resolve", true, "@every 1m")

	// Via the connection.
	connID := connection.ID
	job := &models.Job{ID: uuid.New(), ConfigType: models.JobConfigSync, ConnectionID: &connID, Status: models.JobStatusPending}
	require.NoError(t, testDB.Create(job).Error)

	resolved, err := store.SourceForJob(job)
	require.NoError(t, err)
	assert.Equal(t, source.ID, resolved.ID)

	// Directly attached.
	direct := &models.Job{ID: uuid.New(), ConfigType: models.JobConfigDiscoverSchema, SourceID: &source.ID, Status: models.JobStatusPending}
	require.NoError(t, testDB.Create(direct).Error)

	resolved, err = store.SourceForJob(direct)
	require.NoError(t, err)
	assert.Equal(t, source.ID, resolved.ID)

	// Neither attached.
	orphan := &models.Job{ID: uuid.New(), ConfigType: models.JobConfigSync, Status: models.JobStatusPending}
	_, err = store.SourceForJob(orphan)
	assert.Error(t, err)
}

func TestListEnabledConnections(t *testing.T) {
	clearTables(t)
	seedConnection(t, "scheduled", true, "@every 1m")
	seedConnection(t, "disabled", false, "@every 1m")
	seedConnection(t, "manual only", true, "")

	connections, err := store.ListEnabledConnections()
	require.NoError(t, err)
	require.Len(t, connections, 1)
	assert.Equal(t, "scheduled", connections[0].Name)
}
