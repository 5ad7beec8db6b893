package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Rvd99/ali-baba/models"
	"github.com/Rvd99/ali-baba/repository"
)

type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

type CartResponse struct {
	ID    uuid.UUID             `json:"id"`
	Items []models.CartItemView `json:"items"`
	Total int64                 `json:"total"`
}

type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	logger      *zap.Logger
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository, logger *zap.Logger) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		logger:      logger,
	}
}

// GetCart returns the user's cart with product summaries and a running total.
// The total is informational; authoritative pricing happens at order time.
func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*CartResponse, *ServiceError) {
	cart, err := s.cartRepo.GetOrCreate(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to load cart", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to fetch cart"}
	}
	return s.buildResponse(ctx, cart), nil
}

// AddItem validates the product and its current stock, then coalesces the
// quantity into the cart. The stock check is advisory: nothing is reserved
// until an order is placed.
func (s *CartService) AddItem(ctx context.Context, userID uuid.UUID, req *AddCartItemRequest) (*CartResponse, *ServiceError) {
	product, err := s.productRepo.FindByID(ctx, req.ProductID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &ServiceError{StatusCode: http.StatusBadRequest, Message: "Product not found"}
		}
		s.logger.Error("Failed to fetch product", zap.String("product_id", req.ProductID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to add item"}
	}
	if product.Stock < req.Quantity {
		return nil, &ServiceError{
			StatusCode: http.StatusConflict,
			Message:    fmt.Sprintf("Insufficient stock for %q. Available: %d", product.Name, product.Stock),
		}
	}

	cart, err := s.cartRepo.GetOrCreate(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to load cart", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to add item"}
	}

	if err := s.cartRepo.AddItem(ctx, cart.ID, req.ProductID, req.Quantity); err != nil {
		s.logger.Error("Failed to add cart item", zap.String("cart_id", cart.ID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to add item"}
	}

	return s.reload(ctx, userID)
}

// UpdateItem sets an absolute quantity; zero or negative removes the row.
func (s *CartService) UpdateItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*CartResponse, *ServiceError) {
	cart, err := s.cartRepo.GetOrCreate(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to load cart", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to update cart"}
	}

	if err := s.cartRepo.SetItemQuantity(ctx, cart.ID, productID, quantity); err != nil {
		s.logger.Error("Failed to update cart item", zap.String("cart_id", cart.ID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to update cart"}
	}

	return s.reload(ctx, userID)
}

func (s *CartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*CartResponse, *ServiceError) {
	cart, err := s.cartRepo.GetOrCreate(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to load cart", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to update cart"}
	}

	if err := s.cartRepo.RemoveItem(ctx, cart.ID, productID); err != nil {
		s.logger.Error("Failed to remove cart item", zap.String("cart_id", cart.ID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to update cart"}
	}

	return s.reload(ctx, userID)
}

func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) *ServiceError {
	cart, err := s.cartRepo.GetOrCreate(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to load cart", zap.String("user_id", userID.String()), zap.Error(err))
		return &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to clear cart"}
	}
	if err := s.cartRepo.Clear(ctx, cart.ID); err != nil {
		s.logger.Error("Failed to clear cart", zap.String("cart_id", cart.ID.String()), zap.Error(err))
		return &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to clear cart"}
	}
	return nil
}

func (s *CartService) reload(ctx context.Context, userID uuid.UUID) (*CartResponse, *ServiceError) {
	cart, err := s.cartRepo.GetOrCreate(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to reload cart", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to fetch cart"}
	}
	return s.buildResponse(ctx, cart), nil
}

// buildResponse joins cart rows with product summaries. Products deleted since
// they were added render with a nil summary and contribute nothing to the
// total.
func (s *CartService) buildResponse(ctx context.Context, cart *models.Cart) *CartResponse {
	resp := &CartResponse{ID: cart.ID, Items: make([]models.CartItemView, 0, len(cart.Items))}
	if len(cart.Items) == 0 {
		return resp
	}

	ids := make([]uuid.UUID, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn("Failed to enrich cart items", zap.String("cart_id", cart.ID.String()), zap.Error(err))
		products = nil
	}
	productMap := make(map[uuid.UUID]models.Product, len(products))
	for _, p := range products {
		productMap[p.ID] = p
	}

	for _, item := range cart.Items {
		view := models.CartItemView{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
		if p, ok := productMap[item.ProductID]; ok {
			summary := p.Summary()
			view.Product = &summary
			resp.Total += p.Price * int64(item.Quantity)
		}
		resp.Items = append(resp.Items, view)
	}
	return resp
}
