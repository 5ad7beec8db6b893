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

type ReviewController struct {
	reviewRepo  repository.ReviewRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	logger      *zap.Logger
}

func NewReviewController(reviewRepo repository.ReviewRepository, productRepo repository.ProductRepository, userRepo repository.UserRepository, logger *zap.Logger) *ReviewController {
	return &ReviewController{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		logger:      logger,
	}
}

// ListProductReviews is public; each review carries the author's public
// profile.
func (rc *ReviewController) ListProductReviews(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	reviews, err := rc.reviewRepo.ListByProduct(c.Request.Context(), productID)
	if err != nil {
		rc.logger.Error("Failed to list reviews", zap.String("product_id", productID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reviews"})
		return
	}

	for i := range reviews {
		if user, err := rc.userRepo.FindByID(c.Request.Context(), reviews[i].UserID); err == nil {
			public := user.Public()
			reviews[i].User = &public
		}
	}

	var sum int
	for _, r := range reviews {
		sum += r.Rating
	}
	var average float64
	if len(reviews) > 0 {
		average = float64(sum) / float64(len(reviews))
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews": reviews,
		"count":   len(reviews),
		"average": average,
	})
}

type reviewRequest struct {
	Rating  int     `json:"rating" binding:"required,min=1,max=5"`
	Comment *string `json:"comment"`
}

// UpsertReview creates the caller's review for a product or replaces their
// existing one. One review per buyer per product.
func (rc *ReviewController) UpsertReview(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	if _, err := rc.productRepo.FindByID(c.Request.Context(), productID); err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		rc.logger.Error("Failed to fetch product", zap.String("product_id", productID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save review"})
		return
	}

	existing, err := rc.reviewRepo.FindByProductAndUser(c.Request.Context(), productID, userID)
	switch {
	case err == nil:
		existing.Rating = req.Rating
		existing.Comment = req.Comment
		if err := rc.reviewRepo.Update(c.Request.Context(), existing); err != nil {
			rc.logger.Error("Failed to update review", zap.String("review_id", existing.ID.String()), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save review"})
			return
		}
		c.JSON(http.StatusOK, existing)

	case err == gorm.ErrRecordNotFound:
		review := &models.Review{
			ProductID: productID,
			UserID:    userID,
			Rating:    req.Rating,
			Comment:   req.Comment,
		}
		if err := rc.reviewRepo.Create(c.Request.Context(), review); err != nil {
			rc.logger.Error("Failed to create review", zap.String("product_id", productID.String()), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save review"})
			return
		}
		c.JSON(http.StatusCreated, review)

	default:
		rc.logger.Error("Failed to look up review", zap.String("product_id", productID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save review"})
	}
}

// DeleteReview removes the caller's own review; admins may remove any.
func (rc *ReviewController) DeleteReview(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	role, _ := middleware.GetRole(c)

	reviewID, err := uuid.Parse(c.Param("reviewId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid review ID"})
		return
	}

	review, err := rc.reviewRepo.FindByID(c.Request.Context(), reviewID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
			return
		}
		rc.logger.Error("Failed to fetch review", zap.String("review_id", reviewID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete review"})
		return
	}

	if review.UserID != userID && role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only delete your own reviews"})
		return
	}

	if err := rc.reviewRepo.Delete(c.Request.Context(), reviewID); err != nil {
		rc.logger.Error("Failed to delete review", zap.String("review_id", reviewID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete review"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Review deleted"})
}
