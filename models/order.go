package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Order status vocabulary. PENDING is the initial state; DELIVERED and
// CANCELLED are terminal.
const (
	OrderStatusPending   = "PENDING"
	OrderStatusPaid      = "PAID"
	OrderStatusShipped   = "SHIPPED"
	OrderStatusDelivered = "DELIVERED"
	OrderStatusCancelled = "CANCELLED"
)

// ValidOrderStatuses is the fixed five-value set accepted by status updates.
var ValidOrderStatuses = map[string]bool{
	OrderStatusPending:   true,
	OrderStatusPaid:      true,
	OrderStatusShipped:   true,
	OrderStatusDelivered: true,
	OrderStatusCancelled: true,
}

// Order content is immutable once created; only Status and the payment
// references may change afterwards.
type Order struct {
	ID                uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BuyerID           uuid.UUID         `gorm:"type:uuid;not null;index" json:"buyer_id"`
	Total             int64             `gorm:"not null" json:"total"`
	Status            string            `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	ShippingAddress   map[string]string `gorm:"serializer:json" json:"shipping_address,omitempty"`
	PaymentIntentID   *string           `json:"payment_intent_id,omitempty"`
	CheckoutSessionID *string           `gorm:"index" json:"checkout_session_id,omitempty"`
	CreatedAt         time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt         gorm.DeletedAt    `gorm:"index" json:"-"`
	Items             []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

// OrderItem snapshots the product price at order time; later price changes do
// not touch it.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null" json:"product_id"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Price     int64           `gorm:"not null" json:"price"`
	Product   *ProductSummary `gorm:"-" json:"product,omitempty"`
}
