package psql

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"productimporter/internal/domain/entity"
)

type GormJobRepo struct {
	db *gorm.DB
}

func NewGormJobRepo(db *gorm.DB) *GormJobRepo {
	return &GormJobRepo{db: db}
}

func (r *GormJobRepo) CreateJob(ctx context.Context, job *entity.ImportJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *GormJobRepo) UpdateJobStatus(ctx context.Context, jobID string, status entity.JobStatus, processed int, errText string) error {
	res := r.db.WithContext(ctx).Model(&entity.ImportJob{}).
		Where("job_id = ?", jobID).
		Updates(map[string]interface{}{
			"status":         status,
			"processed_rows": processed,
			"error":          errText,
			"updated_at":     time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("job %s not found", jobID)
	}
	return nil
}

func (r *GormJobRepo) GetJob(ctx context.Context, jobID string) (*entity.ImportJob, error) {
	job := &entity.ImportJob{}
	if err := r.db.WithContext(ctx).First(job, "job_id = ?", jobID).Error; err != nil {
		return nil, fmt.Errorf("job not found: %w", err)
	}
	return job, nil
}
