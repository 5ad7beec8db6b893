package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Rvd99/ali-baba/models"
	"github.com/Rvd99/ali-baba/repository"
	"github.com/Rvd99/ali-baba/services"
)

type CategoryController struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	logger       *zap.Logger
}

func NewCategoryController(categoryRepo repository.CategoryRepository, productRepo repository.ProductRepository, logger *zap.Logger) *CategoryController {
	return &CategoryController{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		logger:       logger,
	}
}

// ListCategories returns the category tree. ?all=true flattens it to every
// category instead of top-level roots.
func (cc *CategoryController) ListCategories(c *gin.Context) {
	topLevelOnly := c.Query("all") != "true"
	categories, err := cc.categoryRepo.List(c.Request.Context(), topLevelOnly)
	if err != nil {
		cc.logger.Error("Failed to list categories", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (cc *CategoryController) GetCategory(c *gin.Context) {
	key := c.Param("id")

	var category *models.Category
	var err error
	if id, parseErr := uuid.Parse(key); parseErr == nil {
		category, err = cc.categoryRepo.FindByID(c.Request.Context(), id)
	} else {
		category, err = cc.categoryRepo.FindBySlug(c.Request.Context(), key)
	}
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}
		cc.logger.Error("Failed to fetch category", zap.String("key", key), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch category"})
		return
	}

	c.JSON(http.StatusOK, category)
}

type categoryRequest struct {
	Name     string     `json:"name" binding:"required"`
	Image    *string    `json:"image"`
	ParentID *uuid.UUID `json:"parent_id"`
}

// CreateCategory is admin-only (enforced in the route group).
func (cc *CategoryController) CreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	if req.ParentID != nil {
		if _, err := cc.categoryRepo.FindByID(c.Request.Context(), *req.ParentID); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Parent category not found"})
			return
		}
	}

	category := &models.Category{
		Name:     req.Name,
		Slug:     services.GenerateSlug(req.Name),
		Image:    req.Image,
		ParentID: req.ParentID,
	}
	if err := cc.categoryRepo.Create(c.Request.Context(), category); err != nil {
		cc.logger.Error("Category creation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
		return
	}

	c.JSON(http.StatusCreated, category)
}

func (cc *CategoryController) UpdateCategory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID"})
		return
	}

	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	category, err := cc.categoryRepo.FindByID(c.Request.Context(), id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}
		cc.logger.Error("Failed to fetch category", zap.String("id", id.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch category"})
		return
	}

	if req.Name != category.Name {
		category.Name = req.Name
		category.Slug = services.GenerateSlug(req.Name)
	}
	category.Image = req.Image
	if req.ParentID != nil && *req.ParentID == id {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A category cannot be its own parent"})
		return
	}
	category.ParentID = req.ParentID

	if err := cc.categoryRepo.Update(c.Request.Context(), category); err != nil {
		cc.logger.Error("Category update failed", zap.String("id", id.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update category"})
		return
	}

	c.JSON(http.StatusOK, category)
}

// DeleteCategory refuses while products or child categories still reference
// the category.
func (cc *CategoryController) DeleteCategory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID"})
		return
	}

	children, err := cc.categoryRepo.CountChildren(c.Request.Context(), id)
	if err != nil {
		cc.logger.Error("Failed to count child categories", zap.String("id", id.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
		return
	}
	if children > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Category has child categories"})
		return
	}

	products, err := cc.productRepo.CountByCategory(c.Request.Context(), id)
	if err != nil {
		cc.logger.Error("Failed to count category products", zap.String("id", id.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
		return
	}
	if products > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Category still has products"})
		return
	}

	if err := cc.categoryRepo.Delete(c.Request.Context(), id); err != nil {
		cc.logger.Error("Category deletion failed", zap.String("id", id.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}
