package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"productimporter/internal/domain/entity"
	"productimporter/pkg/csvutil"
)

type ProductStore interface {
	UpsertBatch(ctx context.Context, rows []csvutil.Row) (int, error)
}

// ImporterUseCase drives one import job: streams the CSV in bounded batches,
// upserts each batch in its own transaction and publishes progress after
// every batch. A failure on batch N leaves batches 1..N-1 committed.
type ImporterUseCase struct {
	Products  ProductStore
	Jobs      JobLedger
	Tracker   ProgressTracker
	ChunkSize int
}

func NewImporterUseCase(products ProductStore, jobs JobLedger, tracker ProgressTracker, chunkSize int) *ImporterUseCase {
	return &ImporterUseCase{
		Products:  products,
		Jobs:      jobs,
		Tracker:   tracker,
		ChunkSize: chunkSize,
	}
}

func (u *ImporterUseCase) ProcessJob(ctx context.Context, msg entity.ImportJobMessage) error {
	log.Printf("Processing import job %s", msg.JobID)

	if err := u.Jobs.UpdateJobStatus(ctx, msg.JobID, entity.StatusRunning, 0, ""); err != nil {
		log.Printf("failed to mark job %s running: %v", msg.JobID, err)
	}
	u.publish(ctx, msg.JobID, entity.NewProgress(entity.ProgressProcessing, 0, msg.TotalRows, "Starting"))

	processed, err := u.run(ctx, msg)
	if err != nil {
		u.publish(ctx, msg.JobID, entity.NewErrorProgress(processed, effectiveTotal(msg.TotalRows, processed), "Import failed", err.Error()))
		if updErr := u.Jobs.UpdateJobStatus(ctx, msg.JobID, entity.StatusFailed, processed, err.Error()); updErr != nil {
			log.Printf("failed to mark job %s failed: %v", msg.JobID, updErr)
		}
		u.removeFile(msg)
		return err
	}

	// The completed record reports the rows actually processed; blank-sku
	// rows dropped by the decoder never count, so total is recomputed from
	// processed to keep percent at 100 on a clean finish.
	u.publish(ctx, msg.JobID, entity.NewProgress(entity.ProgressCompleted, processed, processed, "Import completed"))
	if err := u.Jobs.UpdateJobStatus(ctx, msg.JobID, entity.StatusCompleted, processed, ""); err != nil {
		log.Printf("failed to mark job %s completed: %v", msg.JobID, err)
	}
	u.removeFile(msg)

	log.Printf("Import job %s completed, %d rows", msg.JobID, processed)
	return nil
}

func (u *ImporterUseCase) run(ctx context.Context, msg entity.ImportJobMessage) (int, error) {
	f, err := os.Open(msg.FilePath)
	if err != nil {
		return 0, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	dec, err := csvutil.NewDecoder(f, u.ChunkSize)
	if err != nil {
		return 0, err
	}

	processed := 0
	for {
		// Cancellation can only take effect between batches.
		if err := ctx.Err(); err != nil {
			return processed, err
		}

		batch, err := dec.Next()
		if errors.Is(err, io.EOF) {
			return processed, nil
		}
		if err != nil {
			return processed, err
		}

		n, err := u.Products.UpsertBatch(ctx, batch)
		if err != nil {
			return processed, err
		}
		processed += n

		total := effectiveTotal(msg.TotalRows, processed)
		u.publish(ctx, msg.JobID, entity.NewProgress(entity.ProgressProcessing, processed, total,
			fmt.Sprintf("Processed %d rows", processed)))
	}
}

func (u *ImporterUseCase) publish(ctx context.Context, jobID string, p entity.Progress) {
	if err := u.Tracker.Set(ctx, jobID, p); err != nil {
		log.Printf("failed to publish progress for job %s: %v", jobID, err)
	}
}

func (u *ImporterUseCase) removeFile(msg entity.ImportJobMessage) {
	if err := os.Remove(msg.FilePath); err != nil {
		log.Printf("failed to remove upload %s for job %s: %v", msg.FilePath, msg.JobID, err)
	}
}

func effectiveTotal(hint, processed int) int {
	if hint > 0 {
		return hint
	}
	return processed
}
