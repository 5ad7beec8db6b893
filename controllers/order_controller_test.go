package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/Rvd99/ali-baba/controllers"
	"github.com/Rvd99/ali-baba/middleware"
	"github.com/Rvd99/ali-baba/models"
	"github.com/Rvd99/ali-baba/repository"
	"github.com/Rvd99/ali-baba/services"
)

// stub repos backing a real OrderService; the controller is exercised through
// the gin router with identity injected the way the auth middleware would.

type stubOrderRepo struct {
	created         *models.Order
	markPaidCalls   int
	markPaidOrderID uuid.UUID
	markPaidApplied bool
}

func (s *stubOrderRepo) CreateWithItems(_ context.Context, order *models.Order, _ bool) error {
	order.ID = uuid.New()
	s.created = order
	return nil
}
func (s *stubOrderRepo) MarkPaid(_ context.Context, orderID uuid.UUID, _ string) (bool, error) {
	s.markPaidCalls++
	s.markPaidOrderID = orderID
	return s.markPaidApplied, nil
}
func (s *stubOrderRepo) FindByID(_ context.Context, _ uuid.UUID) (*models.Order, error) {
	return s.created, nil
}
func (s *stubOrderRepo) List(_ context.Context, _ repository.OrderQuery, _, _ int) ([]models.Order, int64, error) {
	return nil, 0, nil
}
func (s *stubOrderRepo) UpdateStatus(_ context.Context, _ uuid.UUID, _ string) error { return nil }
func (s *stubOrderRepo) SetCheckoutSession(_ context.Context, _ uuid.UUID, _ string, _ *string) error {
	return nil
}
func (s *stubOrderRepo) CancelStaleCheckoutOrders(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

type stubProductRepo struct {
	products []models.Product
}

func (s *stubProductRepo) FindByID(_ context.Context, _ uuid.UUID) (*models.Product, error) {
	return nil, nil
}
func (s *stubProductRepo) FindBySlug(_ context.Context, _ string) (*models.Product, error) {
	return nil, nil
}
func (s *stubProductRepo) FindByIDs(_ context.Context, _ []uuid.UUID) ([]models.Product, error) {
	return s.products, nil
}
func (s *stubProductRepo) List(_ context.Context, _ repository.ProductFilter, _, _ int) ([]models.Product, int64, error) {
	return nil, 0, nil
}
func (s *stubProductRepo) Create(_ context.Context, _ *models.Product) error { return nil }
func (s *stubProductRepo) Update(_ context.Context, _ *models.Product) error { return nil }
func (s *stubProductRepo) Delete(_ context.Context, _ uuid.UUID) error       { return nil }
func (s *stubProductRepo) CountByCategory(_ context.Context, _ uuid.UUID) (int64, error) {
	return 0, nil
}

func identityInjector(userID uuid.UUID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserContextKey, userID)
		c.Set(middleware.RoleContextKey, role)
		c.Next()
	}
}

func newOrderRouter(orderRepo *stubOrderRepo, productRepo *stubProductRepo, userID uuid.UUID, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := services.NewOrderService(orderRepo, productRepo, zap.NewNop())
	ctrl := controllers.NewOrderController(svc)

	r := gin.New()
	group := r.Group("/orders", identityInjector(userID, role))
	group.POST("", ctrl.CreateOrder)
	group.GET("/:id", ctrl.GetOrderByID)
	return r
}

func TestCreateOrderEndpoint_Created(t *testing.T) {
	product := models.Product{ID: uuid.New(), Name: "chair", Price: 7999, Stock: 5}
	orderRepo := &stubOrderRepo{}
	productRepo := &stubProductRepo{products: []models.Product{product}}
	buyerID := uuid.New()
	r := newOrderRouter(orderRepo, productRepo, buyerID, models.RoleBuyer)

	body, _ := json.Marshal(map[string]interface{}{
		"items": []map[string]interface{}{
			{"product_id": product.ID, "quantity": 2},
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var out models.Order
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, buyerID, out.BuyerID)
	assert.Equal(t, int64(2*7999), out.Total)
	assert.Equal(t, models.OrderStatusPending, out.Status)
}

func TestCreateOrderEndpoint_EmptyItems(t *testing.T) {
	r := newOrderRouter(&stubOrderRepo{}, &stubProductRepo{}, uuid.New(), models.RoleBuyer)

	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewReader([]byte(`{"items":[]}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateOrderEndpoint_ZeroQuantity(t *testing.T) {
	r := newOrderRouter(&stubOrderRepo{}, &stubProductRepo{}, uuid.New(), models.RoleBuyer)

	body := fmt.Sprintf(`{"items":[{"product_id":"%s","quantity":0}]}`, uuid.New())
	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetOrderEndpoint_InvalidID(t *testing.T) {
	r := newOrderRouter(&stubOrderRepo{}, &stubProductRepo{}, uuid.New(), models.RoleBuyer)

	req := httptest.NewRequest(http.MethodGet, "/orders/not-a-uuid", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
