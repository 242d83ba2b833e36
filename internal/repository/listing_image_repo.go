package repository

import (
	"github.com/sublethub/sublethub-backend/internal/domain"
	"gorm.io/gorm"
)

// ListingImageRepository listing image data access. The save path owns
// the primary-flag invariant: at most one primary image per listing.
type ListingImageRepository interface {
	// Create saves an image; if it is marked primary, the previous
	// primary for the listing is cleared in the same transaction.
	Create(image *domain.ListingImage) error
	ListByListing(listingID uint64) ([]*domain.ListingImage, error)
	SetPrimary(listingID, imageID uint64) error
	Delete(id uint64) error
	CountByListing(listingID uint64) (int64, error)
}

type listingImageRepository struct {
	db *gorm.DB
}

// NewListingImageRepository creates a listing image repository
func NewListingImageRepository(db *gorm.DB) ListingImageRepository {
	return &listingImageRepository{db: db}
}

func (r *listingImageRepository) Create(image *domain.ListingImage) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if image.IsPrimary {
			if err := clearPrimary(tx, image.ListingID); err != nil {
				return err
			}
		}
		return tx.Create(image).Error
	})
}

func (r *listingImageRepository) ListByListing(listingID uint64) ([]*domain.ListingImage, error) {
	var images []*domain.ListingImage
	err := r.db.
		Where("listing_id = ?", listingID).
		Order("is_primary DESC, sort_order ASC").
		Find(&images).Error
	return images, err
}

func (r *listingImageRepository) SetPrimary(listingID, imageID uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := clearPrimary(tx, listingID); err != nil {
			return err
		}
		res := tx.Model(&domain.ListingImage{}).
			Where("id = ? AND listing_id = ?", imageID, listingID).
			UpdateColumn("is_primary", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *listingImageRepository) Delete(id uint64) error {
	return r.db.Delete(&domain.ListingImage{}, id).Error
}

func (r *listingImageRepository) CountByListing(listingID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&domain.ListingImage{}).
		Where("listing_id = ?", listingID).
		Count(&count).Error
	return count, err
}

func clearPrimary(tx *gorm.DB, listingID uint64) error {
	return tx.Model(&domain.ListingImage{}).
		Where("listing_id = ? AND is_primary = ?", listingID, true).
		UpdateColumn("is_primary", false).Error
}
