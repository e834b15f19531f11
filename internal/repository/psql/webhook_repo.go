package psql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"productimporter/internal/domain/entity"
)

type GormWebhookRepo struct {
	db *gorm.DB
}

func NewGormWebhookRepo(db *gorm.DB) *GormWebhookRepo {
	return &GormWebhookRepo{db: db}
}

func (r *GormWebhookRepo) List(ctx context.Context) ([]entity.Webhook, error) {
	var webhooks []entity.Webhook
	if err := r.db.WithContext(ctx).Order("id").Find(&webhooks).Error; err != nil {
		return nil, err
	}
	return webhooks, nil
}

func (r *GormWebhookRepo) GetByID(ctx context.Context, id uint) (*entity.Webhook, error) {
	var w entity.Webhook
	err := r.db.WithContext(ctx).First(&w, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *GormWebhookRepo) Create(ctx context.Context, w *entity.Webhook) error {
	return r.db.WithContext(ctx).Create(w).Error
}

func (r *GormWebhookRepo) Save(ctx context.Context, w *entity.Webhook) error {
	return r.db.WithContext(ctx).Save(w).Error
}

func (r *GormWebhookRepo) Delete(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&entity.Webhook{}, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
