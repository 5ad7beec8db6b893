package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Rvd99/ali-baba/models"
	"github.com/Rvd99/ali-baba/repository"
)

type CreateProductRequest struct {
	Name        string    `json:"name" binding:"required"`
	Description string    `json:"description" binding:"required"`
	Price       int64     `json:"price" binding:"required,min=1"`
	CompareAt   *int64    `json:"compare_at"`
	Images      []string  `json:"images"`
	Stock       int       `json:"stock" binding:"min=0"`
	MinOrder    int       `json:"min_order"`
	SKU         *string   `json:"sku"`
	Tags        []string  `json:"tags"`
	Published   *bool     `json:"published"`
	CategoryID  uuid.UUID `json:"category_id" binding:"required"`
}

type UpdateProductRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Price       *int64     `json:"price"`
	CompareAt   *int64     `json:"compare_at"`
	Images      []string   `json:"images"`
	Stock       *int       `json:"stock"`
	MinOrder    *int       `json:"min_order"`
	SKU         *string    `json:"sku"`
	Tags        []string   `json:"tags"`
	Published   *bool      `json:"published"`
	CategoryID  *uuid.UUID `json:"category_id"`
}

type ProductListResponse struct {
	Products []models.Product `json:"products"`
	Meta     MetaData         `json:"meta"`
}

type CatalogService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	cache        *ProductCache
	logger       *zap.Logger
}

func NewCatalogService(productRepo repository.ProductRepository, categoryRepo repository.CategoryRepository, cache *ProductCache, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		cache:        cache,
		logger:       logger,
	}
}

// GetProduct resolves a product by UUID or slug, through the cache.
func (s *CatalogService) GetProduct(ctx context.Context, idOrSlug string) (*models.Product, *ServiceError) {
	if product, ok := s.cache.GetProduct(ctx, idOrSlug); ok {
		return product, nil
	}

	var product *models.Product
	var err error
	if id, parseErr := uuid.Parse(idOrSlug); parseErr == nil {
		product, err = s.productRepo.FindByID(ctx, id)
	} else {
		product, err = s.productRepo.FindBySlug(ctx, idOrSlug)
	}
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &ServiceError{StatusCode: http.StatusNotFound, Message: "Product not found"}
		}
		s.logger.Error("Failed to fetch product", zap.String("key", idOrSlug), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to fetch product"}
	}

	s.cache.SetProductAsync(product)
	return product, nil
}

// ListProducts serves the catalog listing. Public pages (published-only, not
// seller-scoped) go through the versioned list cache.
func (s *CatalogService) ListProducts(ctx context.Context, filter repository.ProductFilter, page, limit int) (*ProductListResponse, *ServiceError) {
	cacheable := filter.SellerID == nil && filter.Published != nil && *filter.Published
	filterKey := listFilterKey(filter)

	if cacheable {
		if raw, ok := s.cache.GetProductList(ctx, filterKey, page, limit); ok {
			var cached ProductListResponse
			if err := json.Unmarshal(raw, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	products, total, err := s.productRepo.List(ctx, filter, page, limit)
	if err != nil {
		s.logger.Error("Failed to list products", zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to fetch products"}
	}

	resp := &ProductListResponse{
		Products: products,
		Meta: MetaData{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: calculateTotalPages(total, limit),
			HasMore:    total > int64(page*limit),
		},
	}

	if cacheable {
		if payload, err := json.Marshal(resp); err == nil {
			s.cache.SetProductListAsync(filterKey, page, limit, payload)
		}
	}
	return resp, nil
}

func listFilterKey(filter repository.ProductFilter) string {
	categoryID, sellerID := "", ""
	if filter.CategoryID != nil {
		categoryID = filter.CategoryID.String()
	}
	if filter.SellerID != nil {
		sellerID = filter.SellerID.String()
	}
	minPrice, maxPrice := "", ""
	if filter.MinPrice != nil {
		minPrice = strconv.FormatInt(*filter.MinPrice, 10)
	}
	if filter.MaxPrice != nil {
		maxPrice = strconv.FormatInt(*filter.MaxPrice, 10)
	}
	return fmt.Sprintf("q:%s:c:%s:cid:%s:sid:%s:s:%s:min:%s:max:%s",
		filter.Search, filter.Category, categoryID, sellerID, filter.Sort, minPrice, maxPrice)
}

// CreateProduct stores a new listing owned by the acting seller. Admins may
// create on behalf of any seller by passing that seller's id.
func (s *CatalogService) CreateProduct(ctx context.Context, sellerID uuid.UUID, req *CreateProductRequest) (*models.Product, *ServiceError) {
	if _, err := s.categoryRepo.FindByID(ctx, req.CategoryID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &ServiceError{StatusCode: http.StatusBadRequest, Message: "Category not found"}
		}
		s.logger.Error("Failed to fetch category", zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to create product"}
	}

	published := true
	if req.Published != nil {
		published = *req.Published
	}
	minOrder := req.MinOrder
	if minOrder < 1 {
		minOrder = 1
	}

	product := &models.Product{
		Name:        req.Name,
		Slug:        GenerateSlug(req.Name),
		Description: req.Description,
		Price:       req.Price,
		CompareAt:   req.CompareAt,
		Images:      req.Images,
		Stock:       req.Stock,
		MinOrder:    minOrder,
		SKU:         req.SKU,
		Tags:        req.Tags,
		Published:   published,
		SellerID:    sellerID,
		CategoryID:  req.CategoryID,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		s.logger.Error("Product creation failed", zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to create product"}
	}

	s.cache.InvalidateProduct(ctx, product)
	return product, nil
}

// UpdateProduct applies a partial update. Only the owning seller or an admin
// may modify a product; the slug is regenerated when the name changes.
func (s *CatalogService) UpdateProduct(ctx context.Context, actorID uuid.UUID, role string, productID uuid.UUID, req *UpdateProductRequest) (*models.Product, *ServiceError) {
	product, svcErr := s.ownedProduct(ctx, actorID, role, productID)
	if svcErr != nil {
		return nil, svcErr
	}
	prevSlug := product.Slug

	if req.Name != nil && *req.Name != product.Name {
		product.Name = *req.Name
		product.Slug = GenerateSlug(*req.Name)
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		if *req.Price < 1 {
			return nil, &ServiceError{StatusCode: http.StatusBadRequest, Message: "Price must be positive"}
		}
		product.Price = *req.Price
	}
	if req.CompareAt != nil {
		product.CompareAt = req.CompareAt
	}
	if req.Images != nil {
		product.Images = req.Images
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return nil, &ServiceError{StatusCode: http.StatusBadRequest, Message: "Stock cannot be negative"}
		}
		product.Stock = *req.Stock
	}
	if req.MinOrder != nil && *req.MinOrder >= 1 {
		product.MinOrder = *req.MinOrder
	}
	if req.SKU != nil {
		product.SKU = req.SKU
	}
	if req.Tags != nil {
		product.Tags = req.Tags
	}
	if req.Published != nil {
		product.Published = *req.Published
	}
	if req.CategoryID != nil {
		if _, err := s.categoryRepo.FindByID(ctx, *req.CategoryID); err != nil {
			return nil, &ServiceError{StatusCode: http.StatusBadRequest, Message: "Category not found"}
		}
		product.CategoryID = *req.CategoryID
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		s.logger.Error("Product update failed", zap.String("product_id", productID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to update product"}
	}

	s.cache.InvalidateProduct(ctx, product, prevSlug)
	return product, nil
}

// DeleteProduct soft-deletes a listing. Existing order items keep their price
// snapshots and survive the removal.
func (s *CatalogService) DeleteProduct(ctx context.Context, actorID uuid.UUID, role string, productID uuid.UUID) *ServiceError {
	product, svcErr := s.ownedProduct(ctx, actorID, role, productID)
	if svcErr != nil {
		return svcErr
	}

	if err := s.productRepo.Delete(ctx, productID); err != nil {
		s.logger.Error("Product deletion failed", zap.String("product_id", productID.String()), zap.Error(err))
		return &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to delete product"}
	}

	s.cache.InvalidateProduct(ctx, product)
	return nil
}

func (s *CatalogService) ownedProduct(ctx context.Context, actorID uuid.UUID, role string, productID uuid.UUID) (*models.Product, *ServiceError) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &ServiceError{StatusCode: http.StatusNotFound, Message: "Product not found"}
		}
		s.logger.Error("Failed to fetch product", zap.String("product_id", productID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to fetch product"}
	}
	if role != models.RoleAdmin && product.SellerID != actorID {
		return nil, &ServiceError{StatusCode: http.StatusForbidden, Message: "You can only manage your own products"}
	}
	return product, nil
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// GenerateSlug turns a display name into a URL slug with a millisecond
// timestamp suffix, so recreating a product with the same name never collides.
func GenerateSlug(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugPattern.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "product"
	}
	return slug + "-" + strconv.FormatInt(time.Now().UnixMilli(), 36)
}
