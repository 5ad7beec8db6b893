package services_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Rvd99/ali-baba/models"
	"github.com/Rvd99/ali-baba/services"
)

// mockCartRepo keeps one in-memory cart and mirrors the repository contract:
// AddItem coalesces into an existing row, SetItemQuantity is absolute and
// removes at zero or below.
type mockCartRepo struct {
	cart     models.Cart
	addCalls int
}

func (m *mockCartRepo) GetOrCreate(_ context.Context, userID uuid.UUID) (*models.Cart, error) {
	if m.cart.ID == uuid.Nil {
		m.cart = models.Cart{ID: uuid.New(), UserID: userID, Items: []models.CartItem{}}
	}
	return &m.cart, nil
}

func (m *mockCartRepo) AddItem(_ context.Context, cartID, productID uuid.UUID, quantity int) error {
	m.addCalls++
	for i := range m.cart.Items {
		if m.cart.Items[i].ProductID == productID {
			m.cart.Items[i].Quantity += quantity
			return nil
		}
	}
	m.cart.Items = append(m.cart.Items, models.CartItem{
		ID:        uuid.New(),
		CartID:    cartID,
		ProductID: productID,
		Quantity:  quantity,
	})
	return nil
}

func (m *mockCartRepo) SetItemQuantity(ctx context.Context, cartID, productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return m.RemoveItem(ctx, cartID, productID)
	}
	for i := range m.cart.Items {
		if m.cart.Items[i].ProductID == productID {
			m.cart.Items[i].Quantity = quantity
			return nil
		}
	}
	m.cart.Items = append(m.cart.Items, models.CartItem{
		ID:        uuid.New(),
		CartID:    cartID,
		ProductID: productID,
		Quantity:  quantity,
	})
	return nil
}

func (m *mockCartRepo) RemoveItem(_ context.Context, _, productID uuid.UUID) error {
	items := m.cart.Items[:0]
	for _, item := range m.cart.Items {
		if item.ProductID != productID {
			items = append(items, item)
		}
	}
	m.cart.Items = items
	return nil
}

func (m *mockCartRepo) Clear(_ context.Context, _ uuid.UUID) error {
	m.cart.Items = []models.CartItem{}
	return nil
}

func newCartService(cartRepo *mockCartRepo, product models.Product) *services.CartService {
	productRepo := &mockProductRepo{byID: &product, products: []models.Product{product}}
	return services.NewCartService(cartRepo, productRepo, zap.NewNop())
}

func TestCartAddItem_CoalescesQuantity(t *testing.T) {
	mug := newTestProduct("mug", 1500, 10)
	cartRepo := &mockCartRepo{}
	svc := newCartService(cartRepo, mug)
	userID := uuid.New()

	_, svcErr := svc.AddItem(context.Background(), userID, &services.AddCartItemRequest{ProductID: mug.ID, Quantity: 2})
	assert.Nil(t, svcErr)

	resp, svcErr := svc.AddItem(context.Background(), userID, &services.AddCartItemRequest{ProductID: mug.ID, Quantity: 3})
	assert.Nil(t, svcErr)

	assert.Len(t, resp.Items, 1, "re-adding the same product must merge into one row")
	assert.Equal(t, 5, resp.Items[0].Quantity)
	assert.Equal(t, int64(5*1500), resp.Total)
}

func TestCartAddItem_UnknownProduct(t *testing.T) {
	cartRepo := &mockCartRepo{}
	productRepo := &mockProductRepo{byIDErr: gorm.ErrRecordNotFound}
	svc := services.NewCartService(cartRepo, productRepo, zap.NewNop())

	_, svcErr := svc.AddItem(context.Background(), uuid.New(), &services.AddCartItemRequest{ProductID: uuid.New(), Quantity: 1})
	assert.NotNil(t, svcErr)
	assert.Equal(t, http.StatusBadRequest, svcErr.StatusCode)
	assert.Equal(t, 0, cartRepo.addCalls)
}

func TestCartAddItem_InsufficientStock(t *testing.T) {
	lamp := newTestProduct("lamp", 2500, 1)
	cartRepo := &mockCartRepo{}
	svc := newCartService(cartRepo, lamp)

	_, svcErr := svc.AddItem(context.Background(), uuid.New(), &services.AddCartItemRequest{ProductID: lamp.ID, Quantity: 2})
	assert.NotNil(t, svcErr)
	assert.Equal(t, http.StatusConflict, svcErr.StatusCode)
	assert.Equal(t, 0, cartRepo.addCalls, "a rejected add must not reach the cart")
}

func TestCartAddItem_StockCheckIsAdvisory(t *testing.T) {
	// Each add is checked against current stock in isolation; the cart itself
	// never reserves anything, so the accumulated quantity may exceed stock.
	lamp := newTestProduct("lamp", 2500, 5)
	cartRepo := &mockCartRepo{}
	svc := newCartService(cartRepo, lamp)
	userID := uuid.New()

	_, svcErr := svc.AddItem(context.Background(), userID, &services.AddCartItemRequest{ProductID: lamp.ID, Quantity: 5})
	assert.Nil(t, svcErr)

	resp, svcErr := svc.AddItem(context.Background(), userID, &services.AddCartItemRequest{ProductID: lamp.ID, Quantity: 5})
	assert.Nil(t, svcErr)
	assert.Equal(t, 10, resp.Items[0].Quantity)
}

func TestCartUpdateItem_SetsAbsoluteQuantity(t *testing.T) {
	mug := newTestProduct("mug", 1500, 10)
	cartRepo := &mockCartRepo{}
	svc := newCartService(cartRepo, mug)
	userID := uuid.New()

	_, svcErr := svc.AddItem(context.Background(), userID, &services.AddCartItemRequest{ProductID: mug.ID, Quantity: 2})
	assert.Nil(t, svcErr)

	resp, svcErr := svc.UpdateItem(context.Background(), userID, mug.ID, 7)
	assert.Nil(t, svcErr)
	assert.Equal(t, 7, resp.Items[0].Quantity)
}

func TestCartUpdateItem_ZeroQuantityRemoves(t *testing.T) {
	mug := newTestProduct("mug", 1500, 10)
	cartRepo := &mockCartRepo{}
	svc := newCartService(cartRepo, mug)
	userID := uuid.New()

	_, svcErr := svc.AddItem(context.Background(), userID, &services.AddCartItemRequest{ProductID: mug.ID, Quantity: 2})
	assert.Nil(t, svcErr)

	resp, svcErr := svc.UpdateItem(context.Background(), userID, mug.ID, 0)
	assert.Nil(t, svcErr)
	assert.Empty(t, resp.Items)
	assert.Equal(t, int64(0), resp.Total)
}
