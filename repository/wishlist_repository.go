package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Rvd99/ali-baba/models"
)

type WishlistRepository interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.Wishlist, error)
	// AddItem is a no-op when the product is already in the wishlist; added
	// reports whether a new row was created.
	AddItem(ctx context.Context, wishlistID, productID uuid.UUID) (added bool, err error)
	RemoveItem(ctx context.Context, wishlistID, productID uuid.UUID) error
}

type GormWishlistRepository struct {
	db *gorm.DB
}

func NewGormWishlistRepository(db *gorm.DB) *GormWishlistRepository {
	return &GormWishlistRepository{db: db}
}

func (r *GormWishlistRepository) GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.Wishlist, error) {
	var wishlist models.Wishlist
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		First(&wishlist).Error
	if err == nil {
		return &wishlist, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	wishlist = models.Wishlist{UserID: userID}
	if err := r.db.WithContext(ctx).Create(&wishlist).Error; err != nil {
		return nil, err
	}
	wishlist.Items = []models.WishlistItem{}
	return &wishlist, nil
}

func (r *GormWishlistRepository) AddItem(ctx context.Context, wishlistID, productID uuid.UUID) (bool, error) {
	var existing models.WishlistItem
	err := r.db.WithContext(ctx).
		Where("wishlist_id = ? AND product_id = ?", wishlistID, productID).
		First(&existing).Error
	if err == nil {
		return false, nil
	}
	if err != gorm.ErrRecordNotFound {
		return false, err
	}

	item := models.WishlistItem{WishlistID: wishlistID, ProductID: productID}
	if err := r.db.WithContext(ctx).Create(&item).Error; err != nil {
		return false, err
	}
	return true, nil
}

func (r *GormWishlistRepository) RemoveItem(ctx context.Context, wishlistID, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("wishlist_id = ? AND product_id = ?", wishlistID, productID).
		Delete(&models.WishlistItem{}).Error
}
