package models

import (
	"time"

	"github.com/google/uuid"
)

// One review per (product, user); re-submitting updates the existing row.
type Review struct {
	ID        uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProductID uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_product_user" json:"product_id"`
	UserID    uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_product_user" json:"user_id"`
	Rating    int         `gorm:"not null" json:"rating"`
	Comment   *string     `json:"comment,omitempty"`
	CreatedAt time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
	User      *PublicUser `gorm:"-" json:"user,omitempty"`
}
