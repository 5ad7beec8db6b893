package services_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Rvd99/ali-baba/models"
	"github.com/Rvd99/ali-baba/services"
)

type mockGateway struct {
	session     *services.CheckoutSession
	err         error
	gotOrderID  uuid.UUID
	gotUserID   uuid.UUID
	gotLines    []services.CheckoutLine
	timesCalled int
}

func (m *mockGateway) CreateCheckoutSession(_ context.Context, orderID, userID uuid.UUID, lines []services.CheckoutLine) (*services.CheckoutSession, error) {
	m.timesCalled++
	m.gotOrderID = orderID
	m.gotUserID = userID
	m.gotLines = lines
	return m.session, m.err
}

func TestCheckout_CreatesPendingOrderWithoutReservingStock(t *testing.T) {
	chair := newTestProduct("chair", 7999, 4)
	orderRepo := &mockOrderRepo{}
	productRepo := &mockProductRepo{products: []models.Product{chair}}
	gateway := &mockGateway{session: &services.CheckoutSession{
		ID:  "cs_test_123",
		URL: "https://checkout.stripe.com/pay/cs_test_123",
	}}
	svc := services.NewCheckoutService(orderRepo, productRepo, gateway, zap.NewNop())

	buyerID := uuid.New()
	resp, svcErr := svc.Checkout(context.Background(), buyerID, &services.CreateOrderRequest{
		Items: []services.OrderLine{{ProductID: chair.ID, Quantity: 2}},
	})

	assert.Nil(t, svcErr)
	assert.Equal(t, "cs_test_123", resp.SessionID)
	assert.Equal(t, orderRepo.createdOrder.ID, resp.OrderID)

	assert.False(t, orderRepo.createdReserve, "gateway orders must not reserve stock at creation")
	assert.Equal(t, models.OrderStatusPending, orderRepo.createdOrder.Status)
	assert.Equal(t, int64(2*7999), orderRepo.createdOrder.Total)

	assert.Equal(t, buyerID, gateway.gotUserID)
	assert.Len(t, gateway.gotLines, 1)
	assert.Equal(t, int64(7999), gateway.gotLines[0].UnitAmount)
	assert.Equal(t, int64(2), gateway.gotLines[0].Quantity)

	assert.Equal(t, "cs_test_123", orderRepo.setSessionID)
}

func TestCheckout_GatewayFailureLeavesOrderForSweeper(t *testing.T) {
	chair := newTestProduct("chair", 7999, 4)
	orderRepo := &mockOrderRepo{}
	productRepo := &mockProductRepo{products: []models.Product{chair}}
	gateway := &mockGateway{err: errors.New("stripe is down")}
	svc := services.NewCheckoutService(orderRepo, productRepo, gateway, zap.NewNop())

	_, svcErr := svc.Checkout(context.Background(), uuid.New(), &services.CreateOrderRequest{
		Items: []services.OrderLine{{ProductID: chair.ID, Quantity: 1}},
	})

	assert.NotNil(t, svcErr)
	assert.Equal(t, http.StatusBadGateway, svcErr.StatusCode)
	// The PENDING order was committed before the gateway call and stays.
	assert.NotNil(t, orderRepo.createdOrder)
	assert.Empty(t, orderRepo.setSessionID)
}

func TestCheckout_RejectsUnknownProduct(t *testing.T) {
	orderRepo := &mockOrderRepo{}
	gateway := &mockGateway{}
	svc := services.NewCheckoutService(orderRepo, &mockProductRepo{}, gateway, zap.NewNop())

	_, svcErr := svc.Checkout(context.Background(), uuid.New(), &services.CreateOrderRequest{
		Items: []services.OrderLine{{ProductID: uuid.New(), Quantity: 1}},
	})

	assert.NotNil(t, svcErr)
	assert.Equal(t, http.StatusBadRequest, svcErr.StatusCode)
	assert.Zero(t, gateway.timesCalled)
	assert.Nil(t, orderRepo.createdOrder)
}

func TestHandlePaymentCompleted_AppliesOnce(t *testing.T) {
	orderRepo := &mockOrderRepo{markPaidApplied: true}
	svc := services.NewCheckoutService(orderRepo, &mockProductRepo{}, &mockGateway{}, zap.NewNop())

	svcErr := svc.HandlePaymentCompleted(context.Background(), uuid.New(), "pi_123")
	assert.Nil(t, svcErr)
	assert.Equal(t, 1, orderRepo.markPaidCalls)
}

func TestHandlePaymentCompleted_DuplicateDeliveryIsNoOp(t *testing.T) {
	orderRepo := &mockOrderRepo{markPaidApplied: false}
	svc := services.NewCheckoutService(orderRepo, &mockProductRepo{}, &mockGateway{}, zap.NewNop())

	// A second delivery of the same event must succeed without side effects.
	svcErr := svc.HandlePaymentCompleted(context.Background(), uuid.New(), "pi_123")
	assert.Nil(t, svcErr)
}

func TestHandlePaymentCompleted_UnknownOrderAcknowledged(t *testing.T) {
	orderRepo := &mockOrderRepo{markPaidErr: gorm.ErrRecordNotFound}
	svc := services.NewCheckoutService(orderRepo, &mockProductRepo{}, &mockGateway{}, zap.NewNop())

	// Unknown order ids are logged, not retried: returning an error would make
	// the gateway redeliver forever.
	svcErr := svc.HandlePaymentCompleted(context.Background(), uuid.New(), "pi_123")
	assert.Nil(t, svcErr)
}

func TestHandlePaymentCompleted_DatabaseErrorPropagates(t *testing.T) {
	orderRepo := &mockOrderRepo{markPaidErr: errors.New("connection reset")}
	svc := services.NewCheckoutService(orderRepo, &mockProductRepo{}, &mockGateway{}, zap.NewNop())

	svcErr := svc.HandlePaymentCompleted(context.Background(), uuid.New(), "pi_123")
	assert.NotNil(t, svcErr)
	assert.Equal(t, http.StatusInternalServerError, svcErr.StatusCode)
}
