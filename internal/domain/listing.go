package domain

import (
	"time"
)

// PostingType whether the author offers or seeks a sublet
type PostingType string

const (
	PostingTypeOffering PostingType = "offering"
	PostingTypeSeeking  PostingType = "seeking"
)

// ListingType full apartment or single room
type ListingType string

const (
	ListingTypeFull ListingType = "full"
	ListingTypeRoom ListingType = "room"
)

// DurationType semester/break bucket for the lease window
type DurationType string

const (
	DurationFall         DurationType = "fall"
	DurationSpring       DurationType = "spring"
	DurationSummer       DurationType = "summer"
	DurationWinterBreak  DurationType = "winter_break"
	DurationSpringBreak  DurationType = "spring_break"
	DurationThanksgiving DurationType = "thanksgiving"
	DurationFullYear     DurationType = "full_year"
	DurationCustom       DurationType = "custom"
)

// RoommateGender roommate gender preference
type RoommateGender string

const (
	RoommateGenderAny       RoommateGender = "any"
	RoommateGenderMale      RoommateGender = "male"
	RoommateGenderFemale    RoommateGender = "female"
	RoommateGenderNonBinary RoommateGender = "non_binary"
)

// ListingStatus listing lifecycle status
type ListingStatus string

const (
	ListingStatusActive  ListingStatus = "active"
	ListingStatusPending ListingStatus = "pending"
	ListingStatusRented  ListingStatus = "rented"
)

// Listing a rentable unit or room offer/request
type Listing struct {
	ID          uint64      `gorm:"primaryKey" json:"id"`
	OwnerID     uint64      `gorm:"column:owner_id;not null;index" json:"owner_id"`
	Title       string      `gorm:"column:title;size:200;not null" json:"title"`
	Description string      `gorm:"column:description;type:text" json:"description"`
	PostingType PostingType `gorm:"column:posting_type;size:20;default:offering;index" json:"posting_type"`
	ListingType ListingType `gorm:"column:listing_type;size:10;default:full;index" json:"listing_type"`

	Rent  float64 `gorm:"column:rent;type:decimal(10,2);not null;index" json:"rent"`
	Beds  int     `gorm:"column:beds;not null;index" json:"beds"`
	Baths float64 `gorm:"column:baths;type:decimal(3,1);not null" json:"baths"`

	Address   string   `gorm:"column:address;size:255" json:"address"`
	City      string   `gorm:"column:city;size:100;index" json:"city"`
	State     string   `gorm:"column:state;size:50" json:"state"`
	ZipCode   string   `gorm:"column:zip_code;size:10" json:"zip_code"`
	Latitude  *float64 `gorm:"column:latitude" json:"latitude,omitempty"`
	Longitude *float64 `gorm:"column:longitude" json:"longitude,omitempty"`

	// Apartment amenities
	Furnished         bool `gorm:"column:furnished;default:false" json:"furnished"`
	PetsAllowed       bool `gorm:"column:pets_allowed;default:false" json:"pets_allowed"`
	WasherDryerInUnit bool `gorm:"column:washer_dryer_in_unit;default:false" json:"washer_dryer_in_unit"`
	Dishwasher        bool `gorm:"column:dishwasher;default:false" json:"dishwasher"`
	AirConditioning   bool `gorm:"column:air_conditioning;default:false" json:"air_conditioning"`
	Heating           bool `gorm:"column:heating;default:false" json:"heating"`
	Balcony           bool `gorm:"column:balcony;default:false" json:"balcony"`

	// Building amenities
	Gym               bool `gorm:"column:gym;default:false" json:"gym"`
	Pool              bool `gorm:"column:pool;default:false" json:"pool"`
	Parking           bool `gorm:"column:parking;default:false" json:"parking"`
	ParkingSpaces     *int `gorm:"column:parking_spaces" json:"parking_spaces,omitempty"`
	Doorman           bool `gorm:"column:doorman;default:false" json:"doorman"`
	Elevator          bool `gorm:"column:elevator;default:false" json:"elevator"`
	LaundryInBuilding bool `gorm:"column:laundry_in_building;default:false" json:"laundry_in_building"`
	BikeStorage       bool `gorm:"column:bike_storage;default:false" json:"bike_storage"`

	// Utilities included in rent
	ElectricityIncluded bool `gorm:"column:electricity_included;default:false" json:"electricity_included"`
	WaterIncluded       bool `gorm:"column:water_included;default:false" json:"water_included"`
	GasIncluded         bool `gorm:"column:gas_included;default:false" json:"gas_included"`
	InternetIncluded    bool `gorm:"column:internet_included;default:false" json:"internet_included"`
	CableIncluded       bool `gorm:"column:cable_included;default:false" json:"cable_included"`

	// Roommate info (for rooms)
	HasRoommates      bool           `gorm:"column:has_roommates;default:false" json:"has_roommates"`
	NumberOfRoommates *int           `gorm:"column:number_of_roommates" json:"number_of_roommates,omitempty"`
	RoommateGender    RoommateGender `gorm:"column:roommate_gender;size:20;default:any" json:"roommate_gender"`

	// Lease details
	DurationType DurationType `gorm:"column:duration_type;size:20;default:custom;index" json:"duration_type"`
	LeaseStart   time.Time    `gorm:"column:lease_start;type:date;not null" json:"lease_start"`
	LeaseEnd     time.Time    `gorm:"column:lease_end;type:date;not null" json:"lease_end"`

	Status ListingStatus `gorm:"column:status;size:20;default:active;index" json:"status"`

	// Boosting
	IsBoosted    bool       `gorm:"column:is_boosted;default:false;index" json:"is_boosted"`
	BoostedUntil *time.Time `gorm:"column:boosted_until" json:"boosted_until,omitempty"`

	LastBumped *time.Time `gorm:"column:last_bumped;index" json:"last_bumped,omitempty"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	// Relations
	Images []ListingImage `gorm:"foreignKey:ListingID" json:"images,omitempty"`
}

func (Listing) TableName() string {
	return "listings"
}

// EffectiveBoosted recomputes boost status from the expiry timestamp.
// The is_boosted flag is never trusted on reads: once boosted_until
// passes, the listing silently reverts without a cleanup job.
func (l *Listing) EffectiveBoosted(now time.Time) bool {
	return l.BoostedUntil != nil && now.Before(*l.BoostedUntil)
}

// PriceTier buckets rent into an affordability indicator
func (l *Listing) PriceTier() string {
	switch {
	case l.Rent < 1000:
		return "low"
	case l.Rent < 2000:
		return "mid"
	default:
		return "high"
	}
}

// CreateListingRequest create/update payload
type CreateListingRequest struct {
	Title       string      `json:"title" binding:"required,max=200"`
	Description string      `json:"description" binding:"required"`
	PostingType PostingType `json:"posting_type" binding:"required,oneof=offering seeking"`
	ListingType ListingType `json:"listing_type" binding:"required,oneof=full room"`

	Rent  float64 `json:"rent" binding:"required,gt=0"`
	Beds  int     `json:"beds" binding:"required,gte=0"`
	Baths float64 `json:"baths" binding:"required,gte=0"`

	Address   string   `json:"address" binding:"required,max=255"`
	City      string   `json:"city" binding:"required,max=100"`
	State     string   `json:"state" binding:"required,max=50"`
	ZipCode   string   `json:"zip_code" binding:"required,max=10"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`

	Furnished         bool `json:"furnished"`
	PetsAllowed       bool `json:"pets_allowed"`
	WasherDryerInUnit bool `json:"washer_dryer_in_unit"`
	Dishwasher        bool `json:"dishwasher"`
	AirConditioning   bool `json:"air_conditioning"`
	Heating           bool `json:"heating"`
	Balcony           bool `json:"balcony"`

	Gym               bool `json:"gym"`
	Pool              bool `json:"pool"`
	Parking           bool `json:"parking"`
	ParkingSpaces     *int `json:"parking_spaces"`
	Doorman           bool `json:"doorman"`
	Elevator          bool `json:"elevator"`
	LaundryInBuilding bool `json:"laundry_in_building"`
	BikeStorage       bool `json:"bike_storage"`

	ElectricityIncluded bool `json:"electricity_included"`
	WaterIncluded       bool `json:"water_included"`
	GasIncluded         bool `json:"gas_included"`
	InternetIncluded    bool `json:"internet_included"`
	CableIncluded       bool `json:"cable_included"`

	HasRoommates      bool           `json:"has_roommates"`
	NumberOfRoommates *int           `json:"number_of_roommates"`
	RoommateGender    RoommateGender `json:"roommate_gender" binding:"omitempty,oneof=any male female non_binary"`

	DurationType DurationType `json:"duration_type" binding:"required"`
	LeaseStart   string       `json:"lease_start" binding:"required"` // YYYY-MM-DD
	LeaseEnd     string       `json:"lease_end" binding:"required"`   // YYYY-MM-DD
}

// ListingResponse listing detail
type ListingResponse struct {
	ID           uint64         `json:"id"`
	OwnerID      uint64         `json:"owner_id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	PostingType  PostingType    `json:"posting_type"`
	ListingType  ListingType    `json:"listing_type"`
	Rent         float64        `json:"rent"`
	PriceTier    string         `json:"price_tier"`
	Beds         int            `json:"beds"`
	Baths        float64        `json:"baths"`
	Address      string         `json:"address"`
	City         string         `json:"city"`
	State        string         `json:"state"`
	ZipCode      string         `json:"zip_code"`
	DurationType DurationType   `json:"duration_type"`
	LeaseStart   string         `json:"lease_start"`
	LeaseEnd     string         `json:"lease_end"`
	Status       ListingStatus  `json:"status"`
	IsBoosted    bool           `json:"is_boosted"`
	BoostedUntil *time.Time     `json:"boosted_until,omitempty"`
	LastBumped   *time.Time     `json:"last_bumped,omitempty"`
	IsSaved      bool           `json:"is_saved"`
	Images       []ImageResponse `json:"images"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// ListingListItem listing row in search results and feeds
type ListingListItem struct {
	ID           uint64        `json:"id"`
	Title        string        `json:"title"`
	ListingType  ListingType   `json:"listing_type"`
	Rent         float64       `json:"rent"`
	PriceTier    string        `json:"price_tier"`
	Beds         int           `json:"beds"`
	Baths        float64       `json:"baths"`
	City         string        `json:"city"`
	State        string        `json:"state"`
	DurationType DurationType  `json:"duration_type"`
	LeaseStart   string        `json:"lease_start"`
	LeaseEnd     string        `json:"lease_end"`
	IsBoosted    bool          `json:"is_boosted"`
	Thumbnail    string        `json:"thumbnail,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}

// ToListItem converts a listing to its search-result row
func (l *Listing) ToListItem(now time.Time) *ListingListItem {
	item := &ListingListItem{
		ID:           l.ID,
		Title:        l.Title,
		ListingType:  l.ListingType,
		Rent:         l.Rent,
		PriceTier:    l.PriceTier(),
		Beds:         l.Beds,
		Baths:        l.Baths,
		City:         l.City,
		State:        l.State,
		DurationType: l.DurationType,
		LeaseStart:   l.LeaseStart.Format("2006-01-02"),
		LeaseEnd:     l.LeaseEnd.Format("2006-01-02"),
		IsBoosted:    l.EffectiveBoosted(now),
		CreatedAt:    l.CreatedAt,
	}
	for _, img := range l.Images {
		if img.IsPrimary {
			item.Thumbnail = img.URL
			break
		}
	}
	if item.Thumbnail == "" && len(l.Images) > 0 {
		item.Thumbnail = l.Images[0].URL
	}
	return item
}
