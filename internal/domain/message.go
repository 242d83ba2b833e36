package domain

import "time"

// Message a threaded message between a listing owner and an inquirer.
// ParentID is a grouping key, not an ownership edge: every reply in a
// thread points at the thread root, regardless of reply depth.
type Message struct {
	ID          uint64     `gorm:"primaryKey" json:"id"`
	ListingID   uint64     `gorm:"column:listing_id;not null;index" json:"listing_id"`
	SenderID    uint64     `gorm:"column:sender_id;not null;index" json:"sender_id"`
	RecipientID uint64     `gorm:"column:recipient_id;not null;index" json:"recipient_id"`
	Subject     string     `gorm:"column:subject;size:200" json:"subject"`
	Body        string     `gorm:"column:body;type:text;not null" json:"body"`
	ParentID    *uint64    `gorm:"column:parent_id;index" json:"parent_id,omitempty"`
	IsRead      bool       `gorm:"column:is_read;default:false" json:"is_read"`
	ReadAt      *time.Time `gorm:"column:read_at" json:"read_at,omitempty"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
}

func (Message) TableName() string {
	return "messages"
}

// ThreadRoot returns the grouping key for this message's thread.
func (m *Message) ThreadRoot() uint64 {
	if m.ParentID != nil {
		return *m.ParentID
	}
	return m.ID
}

// SendMessageRequest send a message or reply about a listing
type SendMessageRequest struct {
	Subject  string  `json:"subject" binding:"max=200"`
	Body     string  `json:"body" binding:"required"`
	ParentID *uint64 `json:"parent_id"`
}

// MessageResponse message in API responses
type MessageResponse struct {
	ID          uint64     `json:"id"`
	ListingID   uint64     `json:"listing_id"`
	SenderID    uint64     `json:"sender_id"`
	RecipientID uint64     `json:"recipient_id"`
	Subject     string     `json:"subject"`
	Body        string     `json:"body"`
	ParentID    *uint64    `json:"parent_id,omitempty"`
	IsRead      bool       `json:"is_read"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ToResponse converts a message to its API shape
func (m *Message) ToResponse() *MessageResponse {
	return &MessageResponse{
		ID:          m.ID,
		ListingID:   m.ListingID,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		Subject:     m.Subject,
		Body:        m.Body,
		ParentID:    m.ParentID,
		IsRead:      m.IsRead,
		ReadAt:      m.ReadAt,
		CreatedAt:   m.CreatedAt,
	}
}

// ContactMessage a single-shot inquiry tied to a reply-to email
// rather than an account-to-account thread.
type ContactMessage struct {
	ID          uint64    `gorm:"primaryKey" json:"id"`
	ListingID   uint64    `gorm:"column:listing_id;not null;index" json:"listing_id"`
	SenderID    uint64    `gorm:"column:sender_id;not null;index" json:"sender_id"`
	SenderEmail string    `gorm:"column:sender_email;size:254;not null" json:"sender_email"`
	SenderPhone string    `gorm:"column:sender_phone;size:20" json:"sender_phone"`
	Body        string    `gorm:"column:body;type:text;not null" json:"body"`
	IsRead      bool      `gorm:"column:is_read;default:false" json:"is_read"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
}

func (ContactMessage) TableName() string {
	return "contact_messages"
}

// SendInquiryRequest contact-form inquiry about a listing
type SendInquiryRequest struct {
	SenderEmail string `json:"sender_email" binding:"required,email"`
	SenderPhone string `json:"sender_phone" binding:"max=20"`
	Body        string `json:"body" binding:"required"`
}
