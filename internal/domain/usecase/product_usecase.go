package usecase

import (
	"context"
	"errors"
	"math"

	"productimporter/internal/domain/entity"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrSkuRequired     = errors.New("sku is required")
	ErrSkuExists       = errors.New("product with this sku already exists")
)

// ProductFilter narrows a product listing. Sku matches the normalized value
// exactly; name and description match as substrings.
type ProductFilter struct {
	Sku         string
	Name        string
	Description string
	Active      *bool
	Page        int
	Limit       int
}

type ProductInput struct {
	Sku         string   `json:"sku"`
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Active      *bool    `json:"active"`
}

// ProductUpdate carries a partial update; nil fields are left unchanged.
type ProductUpdate struct {
	Sku         *string  `json:"sku"`
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Active      *bool    `json:"active"`
}

type ProductRepo interface {
	List(ctx context.Context, filter ProductFilter) ([]entity.Product, int64, error)
	GetByID(ctx context.Context, id uint) (*entity.Product, error)
	GetBySku(ctx context.Context, sku string) (*entity.Product, error)
	Create(ctx context.Context, p *entity.Product) error
	Save(ctx context.Context, p *entity.Product) error
	Delete(ctx context.Context, id uint) (bool, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type ProductUseCase struct {
	Products ProductRepo
}

func NewProductUseCase(products ProductRepo) *ProductUseCase {
	return &ProductUseCase{Products: products}
}

func (u *ProductUseCase) List(ctx context.Context, filter ProductFilter) ([]entity.Product, int64, int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	filter.Sku = normalizeFilterSku(filter.Sku)

	items, total, err := u.Products.List(ctx, filter)
	if err != nil {
		return nil, 0, 0, err
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	return items, total, totalPages, nil
}

func (u *ProductUseCase) Create(ctx context.Context, input ProductInput) (*entity.Product, error) {
	sku := entity.NormalizeSku(input.Sku)
	if sku == "" {
		return nil, ErrSkuRequired
	}

	if existing, err := u.Products.GetBySku(ctx, sku); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrSkuExists
	}

	p := &entity.Product{
		Sku:         sku,
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Active:      true,
	}
	if input.Active != nil {
		p.Active = *input.Active
	}

	if err := u.Products.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (u *ProductUseCase) Update(ctx context.Context, id uint, input ProductUpdate) (*entity.Product, error) {
	p, err := u.Products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}

	if input.Sku != nil {
		sku := entity.NormalizeSku(*input.Sku)
		if sku == "" {
			return nil, ErrSkuRequired
		}
		if sku != p.Sku {
			if existing, err := u.Products.GetBySku(ctx, sku); err != nil {
				return nil, err
			} else if existing != nil {
				return nil, ErrSkuExists
			}
		}
		p.Sku = sku
	}
	if input.Name != nil {
		p.Name = input.Name
	}
	if input.Description != nil {
		p.Description = input.Description
	}
	if input.Price != nil {
		p.Price = input.Price
	}
	if input.Active != nil {
		p.Active = *input.Active
	}

	if err := u.Products.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (u *ProductUseCase) Delete(ctx context.Context, id uint) error {
	deleted, err := u.Products.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrProductNotFound
	}
	return nil
}

func (u *ProductUseCase) DeleteAll(ctx context.Context) (int64, error) {
	return u.Products.DeleteAll(ctx)
}

func normalizeFilterSku(sku string) string {
	if sku == "" {
		return ""
	}
	return entity.NormalizeSku(sku)
}
