package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product prices are stored in minor currency units (cents) to keep money math
// exact; Stripe takes the same representation.
type Product struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string         `gorm:"not null" json:"name"`
	Slug        string         `gorm:"uniqueIndex;not null" json:"slug"`
	Description string         `gorm:"not null" json:"description"`
	Price       int64          `gorm:"not null" json:"price"`
	CompareAt   *int64         `json:"compare_at,omitempty"`
	Images      []string       `gorm:"serializer:json" json:"images"`
	Stock       int            `gorm:"not null;default:0" json:"stock"`
	MinOrder    int            `gorm:"not null;default:1" json:"min_order"`
	SKU         *string        `json:"sku,omitempty"`
	Tags        []string       `gorm:"serializer:json" json:"tags"`
	Published   bool           `gorm:"not null;default:true" json:"published"`
	SellerID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"seller_id"`
	CategoryID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"category_id"`
	Category    *Category      `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

type Category struct {
	ID       uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name     string     `gorm:"not null" json:"name"`
	Slug     string     `gorm:"uniqueIndex;not null" json:"slug"`
	Image    *string    `json:"image,omitempty"`
	ParentID *uuid.UUID `gorm:"type:uuid;index" json:"parent_id,omitempty"`
	Children []Category `gorm:"foreignKey:ParentID" json:"children,omitempty"`
}

// ProductSummary is the slim projection embedded in cart, wishlist and order
// responses.
type ProductSummary struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Slug   string    `json:"slug"`
	Price  int64     `json:"price"`
	Images []string  `json:"images"`
	Stock  int       `json:"stock"`
}

func (p *Product) Summary() ProductSummary {
	return ProductSummary{
		ID:     p.ID,
		Name:   p.Name,
		Slug:   p.Slug,
		Price:  p.Price,
		Images: p.Images,
		Stock:  p.Stock,
	}
}
