package usecase

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"productimporter/internal/domain/entity"
	"productimporter/internal/repository/memory"
)

func newUploadFixture(t *testing.T, maxRows int) (*UploadUseCase, *fakeJobLedger, *fakePublisher, *memory.ProgressRepo, string) {
	t.Helper()
	ledger := newFakeJobLedger()
	pub := &fakePublisher{}
	tracker := memory.NewProgressRepo()
	tempDir := t.TempDir()
	uc := NewUploadUseCase(ledger, pub, tracker, tempDir, maxRows)
	return uc, ledger, pub, tracker, tempDir
}

func dirEntries(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	return len(entries)
}

func TestCreateJobRejectsNonCSVExtension(t *testing.T) {
	uc, _, pub, _, tempDir := newUploadFixture(t, 500000)

	_, err := uc.CreateJob(context.Background(), strings.NewReader("sku\nabc-1\n"), "products.txt")
	assert.ErrorIs(t, err, ErrNotCSV)
	assert.Equal(t, 0, dirEntries(t, tempDir), "nothing is written for a rejected extension")
	assert.Equal(t, 0, pub.count())
}

func TestCreateJobRejectsRowCeiling(t *testing.T) {
	uc, _, pub, _, tempDir := newUploadFixture(t, 3)

	csv := "sku\nabc-1\nabc-2\nabc-3\nabc-4\n"
	_, err := uc.CreateJob(context.Background(), strings.NewReader(csv), "products.csv")
	assert.ErrorIs(t, err, ErrTooManyRows)
	assert.Equal(t, 0, dirEntries(t, tempDir), "temp file is removed on rejection")
	assert.Equal(t, 0, pub.count())
}

func TestCreateJobRejectsMalformedCSV(t *testing.T) {
	uc, _, _, _, tempDir := newUploadFixture(t, 500000)

	malformed := "sku,name\nabc-1,First,too,many,fields\n"
	_, err := uc.CreateJob(context.Background(), strings.NewReader(malformed), "products.csv")
	assert.ErrorIs(t, err, ErrInvalidCSV)
	assert.Equal(t, 0, dirEntries(t, tempDir))
}

func TestCreateJobAcceptsValidUpload(t *testing.T) {
	uc, ledger, pub, tracker, tempDir := newUploadFixture(t, 500000)

	csv := "sku,name\nabc-1,First\nabc-2,Second\n"
	jobID, err := uc.CreateJob(context.Background(), strings.NewReader(csv), "products.csv")
	require.NoError(t, err)
	require.NotEmpty(t, jobID)

	assert.Equal(t, 1, dirEntries(t, tempDir), "accepted upload stays for the worker")

	job, err := ledger.GetJob(context.Background(), jobID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPending, job.Status)
	assert.Equal(t, 2, job.TotalRows)
	assert.NotEmpty(t, job.FilePath)

	require.Equal(t, 1, pub.count())
	var msg entity.ImportJobMessage
	require.NoError(t, json.Unmarshal(pub.published[0], &msg))
	assert.Equal(t, jobID, msg.JobID)
	assert.Equal(t, job.FilePath, msg.FilePath)
	assert.Equal(t, 2, msg.TotalRows)

	p, found, err := tracker.Get(context.Background(), jobID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, entity.ProgressQueued, p.Status)
	assert.Equal(t, 0, p.Processed)
	assert.Equal(t, 2, p.Total)
	assert.Equal(t, 0.0, p.Percent)
}

func TestCreateJobCleansUpOnPublishFailure(t *testing.T) {
	uc, ledger, pub, _, tempDir := newUploadFixture(t, 500000)
	pub.failAll = true

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := uc.CreateJob(ctx, strings.NewReader("sku\nabc-1\n"), "products.csv")
	require.Error(t, err)

	assert.Equal(t, 0, dirEntries(t, tempDir), "temp file is removed when enqueue fails")

	var failed *entity.ImportJob
	for id := range ledger.jobs {
		failed, _ = ledger.GetJob(context.Background(), id)
	}
	require.NotNil(t, failed)
	assert.Equal(t, entity.StatusFailed, failed.Status)
}

func TestGetStatusPrefersTracker(t *testing.T) {
	uc, _, _, tracker, _ := newUploadFixture(t, 500000)

	want := entity.NewProgress(entity.ProgressProcessing, 10, 30, "Processed 10 rows")
	require.NoError(t, tracker.Set(context.Background(), "job-1", want))

	got, err := uc.GetStatus(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestGetStatusFallsBackToLedger(t *testing.T) {
	uc, ledger, _, _, _ := newUploadFixture(t, 500000)

	require.NoError(t, ledger.CreateJob(context.Background(), &entity.ImportJob{
		JobID:         "job-1",
		TotalRows:     100,
		ProcessedRows: 100,
		Status:        entity.StatusCompleted,
	}))

	got, err := uc.GetStatus(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, entity.ProgressCompleted, got.Status)
	assert.Equal(t, 100, got.Processed)
	assert.Equal(t, 100.0, got.Percent)
}

func TestGetStatusUnknownJob(t *testing.T) {
	uc, _, _, _, _ := newUploadFixture(t, 500000)

	_, err := uc.GetStatus(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrJobNotFound)
}
