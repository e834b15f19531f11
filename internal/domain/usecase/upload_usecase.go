package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"productimporter/internal/domain/entity"
	"productimporter/pkg/csvutil"
	"productimporter/pkg/utils"
)

var (
	ErrNotCSV      = errors.New("only CSV files are accepted")
	ErrInvalidCSV  = errors.New("invalid CSV file")
	ErrTooManyRows = errors.New("CSV exceeds max allowed rows")
	ErrJobNotFound = errors.New("job not found")
)

type JobLedger interface {
	CreateJob(ctx context.Context, job *entity.ImportJob) error
	UpdateJobStatus(ctx context.Context, jobID string, status entity.JobStatus, processed int, errText string) error
	GetJob(ctx context.Context, jobID string) (*entity.ImportJob, error)
}

type Publisher interface {
	Publish(ctx context.Context, body json.RawMessage) error
}

type ProgressTracker interface {
	Set(ctx context.Context, jobID string, p entity.Progress) error
	Get(ctx context.Context, jobID string) (entity.Progress, bool, error)
}

// UploadUseCase is the admission boundary of the import pipeline. It accepts
// an uploaded CSV, enforces the extension and row-count ceiling, persists the
// file to a temp path and hands the job off to the queue.
type UploadUseCase struct {
	Jobs      JobLedger
	Publisher Publisher
	Tracker   ProgressTracker
	TempDir   string
	MaxRows   int
}

func NewUploadUseCase(jobs JobLedger, pub Publisher, tracker ProgressTracker, tempDir string, maxRows int) *UploadUseCase {
	return &UploadUseCase{
		Jobs:      jobs,
		Publisher: pub,
		Tracker:   tracker,
		TempDir:   tempDir,
		MaxRows:   maxRows,
	}
}

// CreateJob runs the admission checks and enqueues the import. The pre-scan
// row count is the dominant cost of the call: O(rows) time, O(1) memory,
// intentionally paid before a worker is committed.
func (u *UploadUseCase) CreateJob(ctx context.Context, file io.Reader, fileName string) (string, error) {
	if strings.ToLower(filepath.Ext(fileName)) != ".csv" {
		return "", ErrNotCSV
	}

	tempPath, err := u.saveUpload(file, fileName)
	if err != nil {
		return "", err
	}

	totalRows, err := u.countRows(tempPath)
	if err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("%w: %v", ErrInvalidCSV, err)
	}
	if totalRows > u.MaxRows {
		os.Remove(tempPath)
		return "", fmt.Errorf("%w (%d)", ErrTooManyRows, u.MaxRows)
	}

	jobID := uuid.New().String()
	job := &entity.ImportJob{
		JobID:     jobID,
		FilePath:  tempPath,
		TotalRows: totalRows,
		Status:    entity.StatusPending,
	}
	if err := u.Jobs.CreateJob(ctx, job); err != nil {
		os.Remove(tempPath)
		return "", err
	}

	msg, err := utils.ToRawMessage(entity.ImportJobMessage{
		JobID:     jobID,
		FilePath:  tempPath,
		TotalRows: totalRows,
	})
	if err != nil {
		os.Remove(tempPath)
		return "", err
	}

	if err := publishWithRetry(ctx, u.Publisher, msg); err != nil {
		os.Remove(tempPath)
		if updErr := u.Jobs.UpdateJobStatus(ctx, jobID, entity.StatusFailed, 0, err.Error()); updErr != nil {
			log.Printf("failed to mark job %s failed after publish error: %v", jobID, updErr)
		}
		return "", err
	}

	if err := u.Tracker.Set(ctx, jobID, entity.NewProgress(entity.ProgressQueued, 0, totalRows, "Queued")); err != nil {
		log.Printf("failed to seed progress for job %s: %v", jobID, err)
	}

	return jobID, nil
}

// GetStatus reads the authoritative progress record; once it has expired a
// terminal ledger row still answers the query.
func (u *UploadUseCase) GetStatus(ctx context.Context, jobID string) (entity.Progress, error) {
	p, ok, err := u.Tracker.Get(ctx, jobID)
	if err != nil {
		return entity.Progress{}, err
	}
	if ok {
		return p, nil
	}

	job, err := u.Jobs.GetJob(ctx, jobID)
	if err != nil {
		return entity.Progress{}, ErrJobNotFound
	}

	switch job.Status {
	case entity.StatusCompleted:
		return entity.NewProgress(entity.ProgressCompleted, job.ProcessedRows, job.ProcessedRows, "Import completed"), nil
	case entity.StatusFailed:
		return entity.NewErrorProgress(job.ProcessedRows, job.TotalRows, "Import failed", job.Error), nil
	default:
		return entity.NewProgress(entity.ProgressQueued, 0, job.TotalRows, "Queued"), nil
	}
}

func (u *UploadUseCase) saveUpload(file io.Reader, fileName string) (string, error) {
	if err := os.MkdirAll(u.TempDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	tempPath := filepath.Join(u.TempDir, uuid.New().String()+"_"+filepath.Base(fileName))
	dst, err := os.Create(tempPath)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		os.Remove(tempPath)
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("close temp file: %w", err)
	}

	return tempPath, nil
}

func (u *UploadUseCase) countRows(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return csvutil.CountRows(f)
}

func publishWithRetry(ctx context.Context, pub Publisher, msg json.RawMessage) error {
	var (
		baseDelay   = 500 * time.Millisecond
		maxDelay    = 10 * time.Second
		maxAttempts = 5
	)

	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := pub.Publish(ctx, msg); err == nil {
			return nil
		} else {
			lastErr = err
		}

		if attempt == maxAttempts {
			break
		}

		backoff := baseDelay << (attempt - 1)
		if backoff > maxDelay {
			backoff = maxDelay
		}

		select {
		case <-time.After(backoff):

		case <-ctx.Done():
			return errors.New("publish canceled by context")
		}
	}

	return lastErr
}
