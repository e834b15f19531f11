package psql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"productimporter/internal/domain/entity"
	"productimporter/internal/domain/usecase"
	"productimporter/pkg/csvutil"
)

type GormProductRepo struct {
	db *gorm.DB
}

func NewGormProductRepo(db *gorm.DB) *GormProductRepo {
	return &GormProductRepo{db: db}
}

// UpsertBatch reconciles one batch against the products table inside a
// single transaction. An error rolls back this batch only; previously
// committed batches stay committed. Returns the number of rows in the batch.
func (r *GormProductRepo) UpsertBatch(ctx context.Context, rows []csvutil.Row) (int, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			sku := entity.NormalizeSku(row.Sku)

			var p entity.Product
			err := tx.First(&p, "sku = ?", sku).Error
			switch {
			case err == nil:
				entity.ApplyRow(&p, row)
				if err := tx.Save(&p).Error; err != nil {
					return err
				}
			case errors.Is(err, gorm.ErrRecordNotFound):
				p = entity.NewProduct(row)
				if err := tx.Create(&p).Error; err != nil {
					return err
				}
			default:
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (r *GormProductRepo) List(ctx context.Context, filter usecase.ProductFilter) ([]entity.Product, int64, error) {
	q := r.db.WithContext(ctx).Model(&entity.Product{})

	if filter.Sku != "" {
		q = q.Where("sku = ?", filter.Sku)
	}
	if filter.Name != "" {
		q = q.Where("name ILIKE ?", "%"+filter.Name+"%")
	}
	if filter.Description != "" {
		q = q.Where("description ILIKE ?", "%"+filter.Description+"%")
	}
	if filter.Active != nil {
		q = q.Where("active = ?", *filter.Active)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []entity.Product
	offset := (filter.Page - 1) * filter.Limit
	if err := q.Order("id").Offset(offset).Limit(filter.Limit).Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (r *GormProductRepo) GetByID(ctx context.Context, id uint) (*entity.Product, error) {
	var p entity.Product
	err := r.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormProductRepo) GetBySku(ctx context.Context, sku string) (*entity.Product, error) {
	var p entity.Product
	err := r.db.WithContext(ctx).First(&p, "sku = ?", sku).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormProductRepo) Create(ctx context.Context, p *entity.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *GormProductRepo) Save(ctx context.Context, p *entity.Product) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *GormProductRepo) Delete(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&entity.Product{}, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *GormProductRepo) DeleteAll(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Where("1 = 1").Delete(&entity.Product{})
	return res.RowsAffected, res.Error
}
