package entity

import (
	"strings"
	"time"

	"productimporter/pkg/csvutil"
)

// Product is a catalog row. SKU is the business key and is globally unique
// under case-insensitive comparison; it is normalized to lowercase on every
// write path so the database index only ever sees the normalized form.
type Product struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Sku         string    `gorm:"uniqueIndex;not null" json:"sku"`
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Price       *float64  `gorm:"type:numeric(10,2)" json:"price"`
	Active      bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NormalizeSku(sku string) string {
	return strings.ToLower(strings.TrimSpace(sku))
}

// ApplyRow merges an import row into an existing product. A field absent in
// the row leaves the stored value untouched; a present field overwrites it.
func ApplyRow(p *Product, row csvutil.Row) {
	p.Sku = NormalizeSku(row.Sku)
	if row.Name != nil {
		p.Name = row.Name
	}
	if row.Description != nil {
		p.Description = row.Description
	}
	if row.Price != nil {
		p.Price = row.Price
	}
	if row.Active != nil {
		p.Active = *row.Active
	}
}

// NewProduct builds a product for the insert path of an upsert. Active
// defaults to true when the row does not carry a value.
func NewProduct(row csvutil.Row) Product {
	p := Product{
		Sku:         NormalizeSku(row.Sku),
		Name:        row.Name,
		Description: row.Description,
		Price:       row.Price,
		Active:      true,
	}
	if row.Active != nil {
		p.Active = *row.Active
	}
	return p
}
