package services

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Rvd99/ali-baba/models"
	"github.com/Rvd99/ali-baba/repository"
)

type CheckoutResponse struct {
	SessionID string    `json:"session_id"`
	URL       string    `json:"url"`
	OrderID   uuid.UUID `json:"order_id"`
}

type CheckoutService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	gateway     PaymentGateway
	logger      *zap.Logger
}

func NewCheckoutService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository, gateway PaymentGateway, logger *zap.Logger) *CheckoutService {
	return &CheckoutService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		gateway:     gateway,
		logger:      logger,
	}
}

// Checkout is the hosted-payment path. The order is committed PENDING with its
// items but stock is NOT reserved: the buyer may abandon the payment page, and
// reserving here would strand inventory. Stock is taken when the gateway
// confirms payment (HandlePaymentCompleted). This deliberately diverges from
// the direct path, which reserves at creation.
func (s *CheckoutService) Checkout(ctx context.Context, buyerID uuid.UUID, req *CreateOrderRequest) (*CheckoutResponse, *ServiceError) {
	items, productMap, total, svcErr := buildOrderItems(ctx, s.productRepo, req.Items)
	if svcErr != nil {
		return nil, svcErr
	}

	order := &models.Order{
		BuyerID:         buyerID,
		Total:           total,
		Status:          models.OrderStatusPending,
		ShippingAddress: req.ShippingAddress,
		Items:           items,
	}
	if err := s.orderRepo.CreateWithItems(ctx, order, false); err != nil {
		s.logger.Error("Checkout order creation failed",
			zap.String("buyer_id", buyerID.String()),
			zap.Error(err),
		)
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to create order"}
	}

	lines := make([]CheckoutLine, 0, len(items))
	for _, item := range items {
		product := productMap[item.ProductID]
		lines = append(lines, CheckoutLine{
			Name:        product.Name,
			Description: truncate(product.Description, 200),
			UnitAmount:  item.Price,
			Quantity:    int64(item.Quantity),
		})
	}

	sess, err := s.gateway.CreateCheckoutSession(ctx, order.ID, buyerID, lines)
	if err != nil {
		// The PENDING order stays behind with no session reference. It is
		// economically inert (no stock reserved) and the sweeper will
		// eventually cancel it.
		s.logger.Error("Checkout session creation failed",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
		return nil, &ServiceError{StatusCode: http.StatusBadGateway, Message: "Failed to create checkout session"}
	}

	var intentID *string
	if sess.PaymentIntentID != "" {
		intentID = &sess.PaymentIntentID
	}
	if err := s.orderRepo.SetCheckoutSession(ctx, order.ID, sess.ID, intentID); err != nil {
		s.logger.Error("Failed to persist checkout session reference",
			zap.String("order_id", order.ID.String()),
			zap.String("session_id", sess.ID),
			zap.Error(err),
		)
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to save checkout session"}
	}

	return &CheckoutResponse{SessionID: sess.ID, URL: sess.URL, OrderID: order.ID}, nil
}

// HandlePaymentCompleted applies a verified payment confirmation. Safe under
// at-least-once delivery: the PENDING guard inside MarkPaid makes redelivery a
// no-op, and callers return success to the gateway either way so it stops
// retrying.
func (s *CheckoutService) HandlePaymentCompleted(ctx context.Context, orderID uuid.UUID, paymentIntentID string) *ServiceError {
	applied, err := s.orderRepo.MarkPaid(ctx, orderID, paymentIntentID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			s.logger.Warn("Payment completed for unknown order", zap.String("order_id", orderID.String()))
			return nil
		}
		s.logger.Error("Payment reconciliation failed",
			zap.String("order_id", orderID.String()),
			zap.Error(err),
		)
		return &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to reconcile payment"}
	}

	if !applied {
		s.logger.Info("Skipping duplicate payment confirmation",
			zap.String("order_id", orderID.String()),
		)
		return nil
	}

	s.logger.Info("Order marked paid",
		zap.String("order_id", orderID.String()),
		zap.String("payment_intent_id", paymentIntentID),
	)
	return nil
}

// HandlePaymentFailed only observes the event. The order stays PENDING; the
// sweeper handles eventual cleanup of abandoned gateway orders.
func (s *CheckoutService) HandlePaymentFailed(ctx context.Context, paymentIntentID string) {
	s.logger.Warn("Payment failed", zap.String("payment_intent_id", paymentIntentID))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
