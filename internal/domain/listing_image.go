package domain

import "time"

// ListingImage an ordered image reference for a listing. The image
// itself lives in the external asset store; only the URL is kept here.
// At most one image per listing carries is_primary, enforced by the
// repository save path.
type ListingImage struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	ListingID uint64    `gorm:"column:listing_id;not null;index" json:"listing_id"`
	URL       string    `gorm:"column:url;type:text;not null" json:"url"`
	IsPrimary bool      `gorm:"column:is_primary;default:false" json:"is_primary"`
	SortOrder int       `gorm:"column:sort_order;not null;default:0" json:"sort_order"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (ListingImage) TableName() string {
	return "listing_images"
}

// ImageResponse image in API responses
type ImageResponse struct {
	ID        uint64 `json:"id"`
	URL       string `json:"url"`
	IsPrimary bool   `json:"is_primary"`
	SortOrder int    `json:"sort_order"`
}

// AddImagesRequest attach image URLs to a listing, in display order
type AddImagesRequest struct {
	URLs []string `json:"urls" binding:"required,min=1,max=10,dive,url"`
}
