package repository

import (
	"time"

	"github.com/sublethub/sublethub-backend/internal/domain"
	"gorm.io/gorm"
)

// MessageRepository threaded message data access
type MessageRepository interface {
	Create(msg *domain.Message) error
	FindByID(id uint64) (*domain.Message, error)
	// Thread returns the root message plus every message whose parent
	// is that root, ordered by creation time ascending.
	Thread(rootID uint64) ([]*domain.Message, error)
	Inbox(userID uint64, page, limit int) ([]*domain.Message, int64, error)
	Sent(userID uint64, page, limit int) ([]*domain.Message, int64, error)
	// MarkRead flips is_read for the recipient exactly once; returns
	// whether this call did the flip.
	MarkRead(id, recipientID uint64, at time.Time) (bool, error)
	UnreadCount(userID uint64) (int64, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a message repository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(msg *domain.Message) error {
	return r.db.Create(msg).Error
}

func (r *messageRepository) FindByID(id uint64) (*domain.Message, error) {
	var msg domain.Message
	if err := r.db.Where("id = ?", id).First(&msg).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *messageRepository) Thread(rootID uint64) ([]*domain.Message, error) {
	var msgs []*domain.Message
	err := r.db.
		Where("id = ? OR parent_id = ?", rootID, rootID).
		Order("created_at ASC, id ASC").
		Find(&msgs).Error
	return msgs, err
}

func (r *messageRepository) Inbox(userID uint64, page, limit int) ([]*domain.Message, int64, error) {
	return r.list("recipient_id = ?", userID, page, limit)
}

func (r *messageRepository) Sent(userID uint64, page, limit int) ([]*domain.Message, int64, error) {
	return r.list("sender_id = ?", userID, page, limit)
}

func (r *messageRepository) list(cond string, userID uint64, page, limit int) ([]*domain.Message, int64, error) {
	query := r.db.Model(&domain.Message{}).Where(cond, userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var msgs []*domain.Message
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, 0, err
	}
	return msgs, total, nil
}

func (r *messageRepository) MarkRead(id, recipientID uint64, at time.Time) (bool, error) {
	res := r.db.Model(&domain.Message{}).
		Where("id = ? AND recipient_id = ? AND is_read = ?", id, recipientID, false).
		UpdateColumns(map[string]interface{}{
			"is_read": true,
			"read_at": at,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *messageRepository) UnreadCount(userID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&domain.Message{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}
