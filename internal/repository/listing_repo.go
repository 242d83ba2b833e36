package repository

import (
	"time"

	"github.com/sublethub/sublethub-backend/internal/domain"
	"gorm.io/gorm"
)

// SearchSort result ordering for search
type SearchSort string

const (
	SortNewest    SearchSort = "newest"
	SortPriceLow  SearchSort = "price_low"
	SortPriceHigh SearchSort = "price_high"
)

// SearchParams listing search criteria. All filters are optional; nil
// pointers mean "not filtered". Only active offerings are ever eligible,
// regardless of params.
type SearchParams struct {
	Location    string // substring match over city/state/zip
	LeaseStart  *time.Time
	LeaseEnd    *time.Time
	Duration    *domain.DurationType
	Beds        *int
	BedsAtLeast bool // open-ended mode: beds >= *Beds instead of exact
	MinRent     *float64
	MaxRent     *float64
	ListingType *domain.ListingType
	Sort        SearchSort
	Page        int
	Limit       int
}

// ListingRepository listing data access
type ListingRepository interface {
	Create(listing *domain.Listing) error
	FindByID(id uint64) (*domain.Listing, error)
	Update(listing *domain.Listing) error
	// Delete removes a listing and its dependents (images, saves,
	// messages, inquiries, boost payments) in one transaction.
	Delete(id uint64) error

	Search(params *SearchParams) ([]*domain.Listing, int64, error)
	Featured(limit int) ([]*domain.Listing, error)
	ListByOwner(ownerID uint64, page, limit int) ([]*domain.Listing, int64, error)

	Bump(id uint64, at time.Time) error
	ActivateBoost(id uint64, until time.Time) error
	// DemoteStale moves active listings quiet since the cutoff to
	// pending with one set-based update, returning rows affected.
	DemoteStale(cutoff time.Time) (int64, error)
}

type listingRepository struct {
	db *gorm.DB
}

// NewListingRepository creates a listing repository
func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepository{db: db}
}

func (r *listingRepository) Create(listing *domain.Listing) error {
	return r.db.Create(listing).Error
}

func (r *listingRepository) FindByID(id uint64) (*domain.Listing, error) {
	var listing domain.Listing
	err := r.db.Preload("Images", func(db *gorm.DB) *gorm.DB {
		return db.Order("is_primary DESC, sort_order ASC")
	}).Where("id = ?", id).First(&listing).Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *listingRepository) Update(listing *domain.Listing) error {
	return r.db.Save(listing).Error
}

func (r *listingRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("listing_id = ?", id).Delete(&domain.ListingImage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("listing_id = ?", id).Delete(&domain.SavedListing{}).Error; err != nil {
			return err
		}
		if err := tx.Where("listing_id = ?", id).Delete(&domain.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("listing_id = ?", id).Delete(&domain.ContactMessage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("listing_id = ?", id).Delete(&domain.BoostPayment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Listing{}, id).Error
	})
}

func (r *listingRepository) Search(params *SearchParams) ([]*domain.Listing, int64, error) {
	query := r.db.Model(&domain.Listing{}).
		Where("status = ?", domain.ListingStatusActive).
		Where("posting_type = ?", domain.PostingTypeOffering)

	if params.Location != "" {
		pattern := "%" + params.Location + "%"
		query = query.Where("(city LIKE ? OR state LIKE ? OR zip_code LIKE ?)", pattern, pattern, pattern)
	}
	// The listing's own lease interval must cover the requested bounds.
	if params.LeaseStart != nil {
		query = query.Where("lease_start <= ?", *params.LeaseStart)
	}
	if params.LeaseEnd != nil {
		query = query.Where("lease_end >= ?", *params.LeaseEnd)
	}
	if params.Duration != nil {
		query = query.Where("duration_type = ?", *params.Duration)
	}
	if params.Beds != nil {
		if params.BedsAtLeast {
			query = query.Where("beds >= ?", *params.Beds)
		} else {
			query = query.Where("beds = ?", *params.Beds)
		}
	}
	if params.MinRent != nil {
		query = query.Where("rent > ?", *params.MinRent)
	}
	if params.MaxRent != nil {
		query = query.Where("rent <= ?", *params.MaxRent)
	}
	if params.ListingType != nil {
		query = query.Where("listing_type = ?", *params.ListingType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderClause := "created_at DESC"
	switch params.Sort {
	case SortPriceLow:
		orderClause = "rent ASC"
	case SortPriceHigh:
		orderClause = "rent DESC"
	}

	page := params.Page
	if page < 1 {
		page = 1
	}
	limit := params.Limit
	if limit < 1 {
		limit = 12
	}

	var listings []*domain.Listing
	err := query.
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("is_primary DESC, sort_order ASC")
		}).
		Order(orderClause).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&listings).Error
	if err != nil {
		return nil, 0, err
	}

	return listings, total, nil
}

func (r *listingRepository) Featured(limit int) ([]*domain.Listing, error) {
	if limit < 1 {
		limit = 12
	}
	var listings []*domain.Listing
	err := r.db.
		Where("status = ?", domain.ListingStatusActive).
		Where("posting_type = ?", domain.PostingTypeOffering).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("is_primary DESC, sort_order ASC")
		}).
		// Boosted first, then recently bumped (never-bumped last), then newest.
		Order("is_boosted DESC").
		Order("last_bumped IS NULL, last_bumped DESC").
		Order("created_at DESC").
		Limit(limit).
		Find(&listings).Error
	return listings, err
}

func (r *listingRepository) ListByOwner(ownerID uint64, page, limit int) ([]*domain.Listing, int64, error) {
	query := r.db.Model(&domain.Listing{}).Where("owner_id = ?", ownerID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var listings []*domain.Listing
	err := query.
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("is_primary DESC, sort_order ASC")
		}).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&listings).Error
	if err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

func (r *listingRepository) Bump(id uint64, at time.Time) error {
	return r.db.Model(&domain.Listing{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"last_bumped": at,
			"updated_at":  at,
		}).Error
}

func (r *listingRepository) ActivateBoost(id uint64, until time.Time) error {
	return r.db.Model(&domain.Listing{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"is_boosted":    true,
			"boosted_until": until,
			"updated_at":    time.Now(),
		}).Error
}

func (r *listingRepository) DemoteStale(cutoff time.Time) (int64, error) {
	res := r.db.Model(&domain.Listing{}).
		Where("status = ?", domain.ListingStatusActive).
		Where("(last_bumped < ?) OR (last_bumped IS NULL AND created_at < ?)", cutoff, cutoff).
		UpdateColumns(map[string]interface{}{
			"status":     domain.ListingStatusPending,
			"updated_at": time.Now(),
		})
	return res.RowsAffected, res.Error
}
