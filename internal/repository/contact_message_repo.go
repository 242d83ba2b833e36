package repository

import (
	"github.com/sublethub/sublethub-backend/internal/domain"
	"gorm.io/gorm"
)

// ContactMessageRepository contact-form inquiry data access
type ContactMessageRepository interface {
	Create(msg *domain.ContactMessage) error
	// FindByID returns the inquiry only when it belongs to one of the
	// owner's listings; anyone else sees record-not-found.
	FindByID(id, ownerID uint64) (*domain.ContactMessage, error)
	// ListByOwner returns inquiries across all of the owner's listings,
	// newest first.
	ListByOwner(ownerID uint64, page, limit int) ([]*domain.ContactMessage, int64, error)
	MarkRead(id, ownerID uint64) (bool, error)
}

type contactMessageRepository struct {
	db *gorm.DB
}

// NewContactMessageRepository creates a contact message repository
func NewContactMessageRepository(db *gorm.DB) ContactMessageRepository {
	return &contactMessageRepository{db: db}
}

func (r *contactMessageRepository) Create(msg *domain.ContactMessage) error {
	return r.db.Create(msg).Error
}

func (r *contactMessageRepository) FindByID(id, ownerID uint64) (*domain.ContactMessage, error) {
	var msg domain.ContactMessage
	err := r.db.
		Joins("JOIN listings ON listings.id = contact_messages.listing_id").
		Where("contact_messages.id = ? AND listings.owner_id = ?", id, ownerID).
		First(&msg).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *contactMessageRepository) ListByOwner(ownerID uint64, page, limit int) ([]*domain.ContactMessage, int64, error) {
	query := r.db.Model(&domain.ContactMessage{}).
		Joins("JOIN listings ON listings.id = contact_messages.listing_id").
		Where("listings.owner_id = ?", ownerID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var msgs []*domain.ContactMessage
	err := query.
		Order("contact_messages.created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, 0, err
	}
	return msgs, total, nil
}

func (r *contactMessageRepository) MarkRead(id, ownerID uint64) (bool, error) {
	res := r.db.Model(&domain.ContactMessage{}).
		Where("contact_messages.id = ? AND is_read = ?", id, false).
		Where("listing_id IN (?)", r.db.Model(&domain.Listing{}).Select("id").Where("owner_id = ?", ownerID)).
		UpdateColumn("is_read", true)
	return res.RowsAffected > 0, res.Error
}
