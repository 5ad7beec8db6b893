package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Rvd99/ali-baba/middleware"
	"github.com/Rvd99/ali-baba/models"
	"github.com/Rvd99/ali-baba/repository"
	"github.com/Rvd99/ali-baba/services"
	"github.com/Rvd99/ali-baba/storage"
)

type ProductController struct {
	catalog    *services.CatalogService
	imageStore *storage.ImageStore
	logger     *zap.Logger
}

// NewProductController wires the catalog handlers. imageStore may be nil, in
// which case image upload presigning is reported unavailable.
func NewProductController(catalog *services.CatalogService, imageStore *storage.ImageStore, logger *zap.Logger) *ProductController {
	return &ProductController{catalog: catalog, imageStore: imageStore, logger: logger}
}

// ListProducts is the public catalog listing. Unauthenticated callers only see
// published products; sellers can pass mine=true to list their own, drafts
// included.
func (pc *ProductController) ListProducts(c *gin.Context) {
	filter := repository.ProductFilter{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Sort:     c.Query("sort"),
	}

	if raw := c.Query("category_id"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			filter.CategoryID = &id
		}
	}
	if raw := c.Query("seller_id"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			filter.SellerID = &id
		}
	}
	if raw := c.Query("min_price"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filter.MinPrice = &v
		}
	}
	if raw := c.Query("max_price"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filter.MaxPrice = &v
		}
	}

	published := true
	filter.Published = &published

	if c.Query("mine") == "true" {
		userID, err := middleware.GetUserID(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		role, _ := middleware.GetRole(c)
		if role != models.RoleSeller && role != models.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}
		filter.SellerID = &userID
		filter.Published = nil
	}

	page, limit := parsePaginationParams(c)
	resp, svcErr := pc.catalog.ListProducts(c.Request.Context(), filter, page, limit)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetProduct resolves :id as either a UUID or a slug.
func (pc *ProductController) GetProduct(c *gin.Context) {
	product, svcErr := pc.catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, product)
}

func (pc *ProductController) CreateProduct(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req services.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	product, svcErr := pc.catalog.CreateProduct(c.Request.Context(), userID, &req)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	c.JSON(http.StatusCreated, product)
}

func (pc *ProductController) UpdateProduct(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	role, _ := middleware.GetRole(c)

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	var req services.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	product, svcErr := pc.catalog.UpdateProduct(c.Request.Context(), userID, role, productID, &req)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	c.JSON(http.StatusOK, product)
}

func (pc *ProductController) DeleteProduct(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	role, _ := middleware.GetRole(c)

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	if svcErr := pc.catalog.DeleteProduct(c.Request.Context(), userID, role, productID); svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

// PresignImageUpload hands the seller a short-lived S3 PUT URL so the image
// bytes never pass through the API.
func (pc *ProductController) PresignImageUpload(c *gin.Context) {
	if pc.imageStore == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Image uploads are not configured"})
		return
	}

	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	role, _ := middleware.GetRole(c)

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	// Ownership check rides on GetProduct + seller comparison.
	product, svcErr := pc.catalog.GetProduct(c.Request.Context(), productID.String())
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	if role != models.RoleAdmin && product.SellerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only manage your own products"})
		return
	}

	filename := c.DefaultQuery("filename", "upload")
	contentType := c.DefaultQuery("content_type", "image/jpeg")
	if !storage.IsAllowedImageContentType(contentType) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("Invalid content type. Allowed: %v", storage.AllowedImageContentTypes()),
		})
		return
	}
	expires, err := strconv.ParseInt(c.DefaultQuery("expires", "900"), 10, 64)
	if err != nil {
		expires = 0
	}

	upload, err := pc.imageStore.PresignProductImage(c.Request.Context(), productID, filename, contentType, expires)
	if err != nil {
		pc.logger.Error("Failed to presign image upload",
			zap.String("product_id", productID.String()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate upload URL"})
		return
	}

	c.JSON(http.StatusOK, upload)
}
