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

type OrderLine struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

type CreateOrderRequest struct {
	Items           []OrderLine       `json:"items" binding:"required,min=1,dive"`
	ShippingAddress map[string]string `json:"shipping_address"`
}

type OrderListResponse struct {
	Orders []models.Order `json:"orders"`
	Meta   MetaData       `json:"meta"`
}

type MetaData struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasMore    bool  `json:"has_more"`
}

// Per-role allow-list of statuses an actor may set. Sellers and admins keep
// the full five-value set; tightening the machine later means editing this
// table only.
var allowedStatusByRole = map[string]map[string]bool{
	models.RoleBuyer: {
		models.OrderStatusCancelled: true,
	},
	models.RoleSeller: models.ValidOrderStatuses,
	models.RoleAdmin:  models.ValidOrderStatuses,
}

type OrderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	logger      *zap.Logger
}

func NewOrderService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository, logger *zap.Logger) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		logger:      logger,
	}
}

// buildOrderItems runs the shared validation both order paths use: one batch
// product fetch, then per-line existence and stock checks. All-or-nothing; the
// first failing line aborts everything. Prices are snapshotted server-side so
// a caller can never supply their own. Duplicate product lines stay separate
// lines and are validated independently.
func buildOrderItems(ctx context.Context, productRepo repository.ProductRepository, lines []OrderLine) ([]models.OrderItem, map[uuid.UUID]models.Product, int64, *ServiceError) {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}

	products, err := productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, nil, 0, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to fetch products"}
	}

	productMap := make(map[uuid.UUID]models.Product, len(products))
	for _, p := range products {
		productMap[p.ID] = p
	}

	items := make([]models.OrderItem, 0, len(lines))
	var total int64
	for _, line := range lines {
		product, ok := productMap[line.ProductID]
		if !ok {
			return nil, nil, 0, &ServiceError{
				StatusCode: http.StatusBadRequest,
				Message:    fmt.Sprintf("Product %s not found", line.ProductID),
			}
		}
		if product.Stock < line.Quantity {
			return nil, nil, 0, &ServiceError{
				StatusCode: http.StatusConflict,
				Message:    fmt.Sprintf("Insufficient stock for %q. Available: %d", product.Name, product.Stock),
			}
		}
		items = append(items, models.OrderItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     product.Price,
		})
		total += product.Price * int64(line.Quantity)
	}

	return items, productMap, total, nil
}

// CreateOrder is the direct "pay later" path: stock is reserved inside the
// creation transaction and the buyer's cart is cleared with it.
func (s *OrderService) CreateOrder(ctx context.Context, buyerID uuid.UUID, req *CreateOrderRequest) (*models.Order, *ServiceError) {
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

	if err := s.orderRepo.CreateWithItems(ctx, order, true); err != nil {
		if err == repository.ErrInsufficientStock {
			// A concurrent order won the stock between validation and commit.
			return nil, &ServiceError{StatusCode: http.StatusConflict, Message: "Insufficient stock"}
		}
		s.logger.Error("Order creation transaction failed",
			zap.String("buyer_id", buyerID.String()),
			zap.Error(err),
		)
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to create order"}
	}

	attachProductSummaries(order, productMap)
	return order, nil
}

// UpdateStatus applies the per-role transition table. Buyers may only cancel
// their own orders; sellers and admins may set any status on any order.
func (s *OrderService) UpdateStatus(ctx context.Context, actorID uuid.UUID, role string, orderID uuid.UUID, status string) (*models.Order, *ServiceError) {
	if !models.ValidOrderStatuses[status] {
		return nil, &ServiceError{
			StatusCode: http.StatusBadRequest,
			Message:    "Status must be one of: PENDING, PAID, SHIPPED, DELIVERED, CANCELLED",
		}
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &ServiceError{StatusCode: http.StatusNotFound, Message: "Order not found"}
		}
		s.logger.Error("Failed to fetch order", zap.String("order_id", orderID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to fetch order"}
	}

	if role == models.RoleBuyer && order.BuyerID != actorID {
		return nil, &ServiceError{StatusCode: http.StatusForbidden, Message: "Access denied"}
	}
	if !allowedStatusByRole[role][status] {
		return nil, &ServiceError{StatusCode: http.StatusForbidden, Message: "Buyers can only cancel orders"}
	}

	if err := s.orderRepo.UpdateStatus(ctx, orderID, status); err != nil {
		s.logger.Error("Failed to update order status",
			zap.String("order_id", orderID.String()),
			zap.String("status", status),
			zap.Error(err),
		)
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to update order"}
	}

	order.Status = status
	s.enrichItems(ctx, order)
	return order, nil
}

// GetOrder returns a single order; readable by its buyer or an admin.
func (s *OrderService) GetOrder(ctx context.Context, actorID uuid.UUID, role string, orderID uuid.UUID) (*models.Order, *ServiceError) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &ServiceError{StatusCode: http.StatusNotFound, Message: "Order not found"}
		}
		s.logger.Error("Failed to fetch order", zap.String("order_id", orderID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to fetch order"}
	}

	if order.BuyerID != actorID && role != models.RoleAdmin {
		return nil, &ServiceError{StatusCode: http.StatusForbidden, Message: "Access denied"}
	}

	s.enrichItems(ctx, order)
	return order, nil
}

// ListOrders scopes the listing by role: buyers see their own orders, sellers
// see orders containing their products, admins see all.
func (s *OrderService) ListOrders(ctx context.Context, actorID uuid.UUID, role, status string, page, limit int) (*OrderListResponse, *ServiceError) {
	q := repository.OrderQuery{Status: status}
	switch role {
	case models.RoleBuyer:
		q.BuyerID = &actorID
	case models.RoleSeller:
		q.SellerID = &actorID
	}

	orders, total, err := s.orderRepo.List(ctx, q, page, limit)
	if err != nil {
		s.logger.Error("Failed to list orders", zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to fetch orders"}
	}

	for i := range orders {
		s.enrichItems(ctx, &orders[i])
	}

	return &OrderListResponse{
		Orders: orders,
		Meta: MetaData{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: calculateTotalPages(total, limit),
			HasMore:    total > int64(page*limit),
		},
	}, nil
}

// enrichItems attaches product summaries to order items; best effort, a
// deleted product leaves its item bare.
func (s *OrderService) enrichItems(ctx context.Context, order *models.Order) {
	if len(order.Items) == 0 {
		return
	}
	ids := make([]uuid.UUID, 0, len(order.Items))
	for _, item := range order.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return
	}
	productMap := make(map[uuid.UUID]models.Product, len(products))
	for _, p := range products {
		productMap[p.ID] = p
	}
	attachProductSummaries(order, productMap)
}

func attachProductSummaries(order *models.Order, productMap map[uuid.UUID]models.Product) {
	for i := range order.Items {
		if p, ok := productMap[order.Items[i].ProductID]; ok {
			summary := p.Summary()
			order.Items[i].Product = &summary
		}
	}
}

func calculateTotalPages(total int64, limit int) int64 {
	if limit == 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}
