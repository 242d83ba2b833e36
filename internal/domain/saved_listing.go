package domain

import "time"

// SavedListing a bookmark: unique (user, listing) pair
type SavedListing struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	UserID    uint64    `gorm:"column:user_id;not null;uniqueIndex:idx_saved_user_listing" json:"user_id"`
	ListingID uint64    `gorm:"column:listing_id;not null;uniqueIndex:idx_saved_user_listing" json:"listing_id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	// Relations
	Listing *Listing `gorm:"foreignKey:ListingID" json:"listing,omitempty"`
}

func (SavedListing) TableName() string {
	return "saved_listings"
}

// SavedListingResponse saved listing row
type SavedListingResponse struct {
	ID        uint64           `json:"id"`
	Listing   *ListingListItem `json:"listing"`
	CreatedAt time.Time        `json:"created_at"`
}
