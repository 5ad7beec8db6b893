package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Rvd99/ali-baba/middleware"
	"github.com/Rvd99/ali-baba/models"
	"github.com/Rvd99/ali-baba/repository"
)

type WishlistController struct {
	wishlistRepo repository.WishlistRepository
	productRepo  repository.ProductRepository
	logger       *zap.Logger
}

func NewWishlistController(wishlistRepo repository.WishlistRepository, productRepo repository.ProductRepository, logger *zap.Logger) *WishlistController {
	return &WishlistController{
		wishlistRepo: wishlistRepo,
		productRepo:  productRepo,
		logger:       logger,
	}
}

func (wc *WishlistController) GetWishlist(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	wishlist, err := wc.wishlistRepo.GetOrCreate(c.Request.Context(), userID)
	if err != nil {
		wc.logger.Error("Failed to load wishlist", zap.String("user_id", userID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch wishlist"})
		return
	}

	views := make([]models.WishlistItemView, 0, len(wishlist.Items))
	if len(wishlist.Items) > 0 {
		ids := make([]uuid.UUID, 0, len(wishlist.Items))
		for _, item := range wishlist.Items {
			ids = append(ids, item.ProductID)
		}
		products, err := wc.productRepo.FindByIDs(c.Request.Context(), ids)
		if err != nil {
			wc.logger.Warn("Failed to enrich wishlist items", zap.Error(err))
		}
		productMap := make(map[uuid.UUID]models.Product, len(products))
		for _, p := range products {
			productMap[p.ID] = p
		}
		for _, item := range wishlist.Items {
			view := models.WishlistItemView{
				ID:        item.ID,
				ProductID: item.ProductID,
				CreatedAt: item.CreatedAt,
			}
			if p, ok := productMap[item.ProductID]; ok {
				summary := p.Summary()
				view.Product = &summary
			}
			views = append(views, view)
		}
	}

	c.JSON(http.StatusOK, gin.H{"id": wishlist.ID, "items": views})
}

type addWishlistItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
}

// AddItem is idempotent: adding a product already on the list is a no-op that
// still returns 200.
func (wc *WishlistController) AddItem(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req addWishlistItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	if _, err := wc.productRepo.FindByID(c.Request.Context(), req.ProductID); err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Product not found"})
			return
		}
		wc.logger.Error("Failed to fetch product", zap.String("product_id", req.ProductID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update wishlist"})
		return
	}

	wishlist, err := wc.wishlistRepo.GetOrCreate(c.Request.Context(), userID)
	if err != nil {
		wc.logger.Error("Failed to load wishlist", zap.String("user_id", userID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update wishlist"})
		return
	}

	added, err := wc.wishlistRepo.AddItem(c.Request.Context(), wishlist.ID, req.ProductID)
	if err != nil {
		wc.logger.Error("Failed to add wishlist item", zap.String("wishlist_id", wishlist.ID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update wishlist"})
		return
	}

	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"message": "Product added to wishlist"})
}

func (wc *WishlistController) RemoveItem(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	wishlist, err := wc.wishlistRepo.GetOrCreate(c.Request.Context(), userID)
	if err != nil {
		wc.logger.Error("Failed to load wishlist", zap.String("user_id", userID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update wishlist"})
		return
	}

	if err := wc.wishlistRepo.RemoveItem(c.Request.Context(), wishlist.ID, productID); err != nil {
		wc.logger.Error("Failed to remove wishlist item", zap.String("wishlist_id", wishlist.ID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update wishlist"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product removed from wishlist"})
}
