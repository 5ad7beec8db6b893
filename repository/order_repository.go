package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Rvd99/ali-baba/models"
)

// OrderQuery scopes order listings per role: a buyer sees their own orders, a
// seller sees orders containing their products, an admin sees everything.
type OrderQuery struct {
	BuyerID  *uuid.UUID
	SellerID *uuid.UUID
	Status   string
}

type OrderRepository interface {
	// CreateWithItems runs the order-creation transaction: insert the order
	// and its items, decrement stock for each line when reserveStock is set
	// (conditionally, aborting on shortfall), and clear the buyer's cart.
	CreateWithItems(ctx context.Context, order *models.Order, reserveStock bool) error

	// MarkPaid runs the webhook reconciliation transaction. The status flip
	// PENDING->PAID is a conditional update; when it affects no row the order
	// was already reconciled (or cancelled) and the whole call is a no-op
	// returning applied=false. Stock decrements and cart clearing commit
	// atomically with the flip.
	MarkPaid(ctx context.Context, orderID uuid.UUID, paymentIntentID string) (applied bool, err error)

	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, q OrderQuery, page, limit int) ([]models.Order, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	SetCheckoutSession(ctx context.Context, id uuid.UUID, sessionID string, paymentIntentID *string) error

	// CancelStaleCheckoutOrders flips PENDING gateway orders (checkout session
	// present, stock never reserved) older than cutoff to CANCELLED.
	CancelStaleCheckoutOrders(ctx context.Context, cutoff time.Time) (int64, error)
}

type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) CreateWithItems(ctx context.Context, order *models.Order, reserveStock bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}

		if reserveStock {
			for _, item := range order.Items {
				if err := decrementStock(tx, item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
		}

		return clearCartByUser(tx, order.BuyerID)
	})
}

func (r *GormOrderRepository) MarkPaid(ctx context.Context, orderID uuid.UUID, paymentIntentID string) (bool, error) {
	applied := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", orderID, models.OrderStatusPending).
			Updates(map[string]interface{}{
				"status":            models.OrderStatusPaid,
				"payment_intent_id": paymentIntentID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Distinguish "already reconciled" from an order that never
			// existed; either way nothing else may run.
			var count int64
			if err := tx.Model(&models.Order{}).Where("id = ?", orderID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return gorm.ErrRecordNotFound
			}
			return nil
		}
		applied = true

		var order models.Order
		if err := tx.Preload("Items").First(&order, "id = ?", orderID).Error; err != nil {
			return err
		}

		// Stock was not reserved at session creation; it is taken now. No
		// re-validation happens here, matching the checkout flow's contract.
		for _, item := range order.Items {
			res := tx.Model(&models.Product{}).
				Where("id = ?", item.ProductID).
				UpdateColumn("stock", gorm.Expr("stock - ?", item.Quantity))
			if res.Error != nil {
				return res.Error
			}
		}

		return clearCartByUser(tx, order.BuyerID)
	})
	return applied, err
}

func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormOrderRepository) List(ctx context.Context, q OrderQuery, page, limit int) ([]models.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{})

	if q.BuyerID != nil {
		query = query.Where("buyer_id = ?", *q.BuyerID)
	}
	if q.SellerID != nil {
		query = query.Where("id IN (?)", r.db.
			Table("order_items").
			Select("order_items.order_id").
			Joins("JOIN products ON products.id = order_items.product_id").
			Where("products.seller_id = ?", *q.SellerID))
	}
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	offset := (page - 1) * limit
	if err := query.
		Preload("Items").
		Offset(offset).
		Limit(limit).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (r *GormOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *GormOrderRepository) SetCheckoutSession(ctx context.Context, id uuid.UUID, sessionID string, paymentIntentID *string) error {
	updates := map[string]interface{}{"checkout_session_id": sessionID}
	if paymentIntentID != nil {
		updates["payment_intent_id"] = *paymentIntentID
	}
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *GormOrderRepository) CancelStaleCheckoutOrders(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("status = ? AND checkout_session_id IS NOT NULL AND created_at < ?",
			models.OrderStatusPending, cutoff).
		Update("status", models.OrderStatusCancelled)
	return res.RowsAffected, res.Error
}

// clearCartByUser deletes the cart items of the user's cart inside the given
// transaction. Having no cart yet is not an error.
func clearCartByUser(tx *gorm.DB, userID uuid.UUID) error {
	var cart models.Cart
	err := tx.Where("user_id = ?", userID).First(&cart).Error
	if err == gorm.ErrRecordNotFound {
		return nil
	}
	if err != nil {
		return err
	}
	return tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error
}
