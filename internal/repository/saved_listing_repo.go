package repository

import (
	"github.com/sublethub/sublethub-backend/internal/domain"
	"gorm.io/gorm"
)

// SavedListingRepository bookmark data access
type SavedListingRepository interface {
	Create(saved *domain.SavedListing) error
	Delete(userID, listingID uint64) error
	Exists(userID, listingID uint64) (bool, error)
	ListByUser(userID uint64, page, limit int) ([]*domain.SavedListing, int64, error)
}

type savedListingRepository struct {
	db *gorm.DB
}

// NewSavedListingRepository creates a saved listing repository
func NewSavedListingRepository(db *gorm.DB) SavedListingRepository {
	return &savedListingRepository{db: db}
}

func (r *savedListingRepository) Create(saved *domain.SavedListing) error {
	return r.db.Create(saved).Error
}

func (r *savedListingRepository) Delete(userID, listingID uint64) error {
	return r.db.
		Where("user_id = ? AND listing_id = ?", userID, listingID).
		Delete(&domain.SavedListing{}).Error
}

func (r *savedListingRepository) Exists(userID, listingID uint64) (bool, error) {
	var count int64
	err := r.db.Model(&domain.SavedListing{}).
		Where("user_id = ? AND listing_id = ?", userID, listingID).
		Count(&count).Error
	return count > 0, err
}

func (r *savedListingRepository) ListByUser(userID uint64, page, limit int) ([]*domain.SavedListing, int64, error) {
	query := r.db.Model(&domain.SavedListing{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var saved []*domain.SavedListing
	err := query.
		Preload("Listing").
		Preload("Listing.Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("is_primary DESC, sort_order ASC")
		}).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&saved).Error
	if err != nil {
		return nil, 0, err
	}
	return saved, total, nil
}
