package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sublethub/sublethub-backend/internal/common"
	"github.com/sublethub/sublethub-backend/internal/domain"
	"github.com/sublethub/sublethub-backend/internal/repository"
	"github.com/sublethub/sublethub-backend/pkg/cache"
	"github.com/sublethub/sublethub-backend/pkg/logger"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// ListingService listing lifecycle operations. Identity is always an
// explicit caller ID parameter, never ambient state.
type ListingService interface {
	Create(ctx context.Context, ownerID uint64, req *domain.CreateListingRequest) (*domain.ListingResponse, error)
	Get(ctx context.Context, viewerID, listingID uint64) (*domain.ListingResponse, error)
	Update(ctx context.Context, ownerID, listingID uint64, req *domain.CreateListingRequest) (*domain.ListingResponse, error)
	Delete(ctx context.Context, ownerID, listingID uint64) error
	MyListings(ctx context.Context, ownerID uint64, page, limit int) ([]*domain.ListingListItem, *common.Meta, error)
	Bump(ctx context.Context, ownerID, listingID uint64) error

	AddImages(ctx context.Context, ownerID, listingID uint64, urls []string) ([]*domain.ListingImage, error)
	SetPrimaryImage(ctx context.Context, ownerID, listingID, imageID uint64) error
	RemoveImage(ctx context.Context, ownerID, listingID, imageID uint64) error

	ToggleSave(ctx context.Context, userID, listingID uint64) (bool, error)
	SavedListings(ctx context.Context, userID uint64, page, limit int) ([]*domain.SavedListingResponse, *common.Meta, error)
}

type listingService struct {
	listingRepo repository.ListingRepository
	imageRepo   repository.ListingImageRepository
	savedRepo   repository.SavedListingRepository
	cache       cache.Service
}

// NewListingService creates a new ListingService
func NewListingService(
	listingRepo repository.ListingRepository,
	imageRepo repository.ListingImageRepository,
	savedRepo repository.SavedListingRepository,
	cacheSvc cache.Service,
) ListingService {
	return &listingService{
		listingRepo: listingRepo,
		imageRepo:   imageRepo,
		savedRepo:   savedRepo,
		cache:       cacheSvc,
	}
}

func (s *listingService) Create(ctx context.Context, ownerID uint64, req *domain.CreateListingRequest) (*domain.ListingResponse, error) {
	listing, err := listingFromRequest(req)
	if err != nil {
		return nil, err
	}
	listing.OwnerID = ownerID
	listing.Status = domain.ListingStatusActive

	if err := s.listingRepo.Create(listing); err != nil {
		return nil, err
	}
	s.invalidateSearch(ctx)

	return s.toResponse(listing, false), nil
}

func (s *listingService) Get(ctx context.Context, viewerID, listingID uint64) (*domain.ListingResponse, error) {
	listing, err := s.listingRepo.FindByID(listingID)
	if err != nil {
		return nil, notFoundOr(err)
	}

	saved := false
	if viewerID != 0 {
		saved, _ = s.savedRepo.Exists(viewerID, listingID)
	}
	return s.toResponse(listing, saved), nil
}

func (s *listingService) Update(ctx context.Context, ownerID, listingID uint64, req *domain.CreateListingRequest) (*domain.ListingResponse, error) {
	existing, err := s.listingRepo.FindByID(listingID)
	if err != nil {
		return nil, notFoundOr(err)
	}
	if existing.OwnerID != ownerID {
		return nil, common.ErrNotOwner
	}

	updated, err := listingFromRequest(req)
	if err != nil {
		return nil, err
	}
	updated.ID = existing.ID
	updated.OwnerID = existing.OwnerID
	updated.Status = existing.Status
	updated.IsBoosted = existing.IsBoosted
	updated.BoostedUntil = existing.BoostedUntil
	updated.LastBumped = existing.LastBumped
	updated.CreatedAt = existing.CreatedAt

	if err := s.listingRepo.Update(updated); err != nil {
		return nil, err
	}
	s.invalidateSearch(ctx)

	updated.Images = existing.Images
	saved, _ := s.savedRepo.Exists(ownerID, listingID)
	return s.toResponse(updated, saved), nil
}

func (s *listingService) Delete(ctx context.Context, ownerID, listingID uint64) error {
	listing, err := s.listingRepo.FindByID(listingID)
	if err != nil {
		return notFoundOr(err)
	}
	if listing.OwnerID != ownerID {
		return common.ErrNotOwner
	}

	if err := s.listingRepo.Delete(listingID); err != nil {
		return err
	}
	s.invalidateSearch(ctx)
	return nil
}

func (s *listingService) MyListings(ctx context.Context, ownerID uint64, page, limit int) ([]*domain.ListingListItem, *common.Meta, error) {
	page, limit = normalizePage(page, limit)
	listings, total, err := s.listingRepo.ListByOwner(ownerID, page, limit)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	items := make([]*domain.ListingListItem, 0, len(listings))
	for _, l := range listings {
		items = append(items, l.ToListItem(now))
	}
	return items, &common.Meta{Page: page, Limit: limit, Total: total}, nil
}

func (s *listingService) Bump(ctx context.Context, ownerID, listingID uint64) error {
	listing, err := s.listingRepo.FindByID(listingID)
	if err != nil {
		return notFoundOr(err)
	}
	if listing.OwnerID != ownerID {
		return common.ErrNotOwner
	}

	if err := s.listingRepo.Bump(listingID, time.Now()); err != nil {
		return err
	}
	s.invalidateSearch(ctx)
	return nil
}

func (s *listingService) AddImages(ctx context.Context, ownerID, listingID uint64, urls []string) ([]*domain.ListingImage, error) {
	listing, err := s.listingRepo.FindByID(listingID)
	if err != nil {
		return nil, notFoundOr(err)
	}
	if listing.OwnerID != ownerID {
		return nil, common.ErrNotOwner
	}

	existing, err := s.imageRepo.CountByListing(listingID)
	if err != nil {
		return nil, err
	}

	images := make([]*domain.ListingImage, 0, len(urls))
	for idx, u := range urls {
		img := &domain.ListingImage{
			ListingID: listingID,
			URL:       u,
			// First image of a bare listing becomes the primary.
			IsPrimary: existing == 0 && idx == 0,
			SortOrder: int(existing) + idx,
		}
		if err := s.imageRepo.Create(img); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, nil
}

func (s *listingService) SetPrimaryImage(ctx context.Context, ownerID, listingID, imageID uint64) error {
	listing, err := s.listingRepo.FindByID(listingID)
	if err != nil {
		return notFoundOr(err)
	}
	if listing.OwnerID != ownerID {
		return common.ErrNotOwner
	}

	if err := s.imageRepo.SetPrimary(listingID, imageID); err != nil {
		return notFoundOr(err)
	}
	return nil
}

func (s *listingService) RemoveImage(ctx context.Context, ownerID, listingID, imageID uint64) error {
	listing, err := s.listingRepo.FindByID(listingID)
	if err != nil {
		return notFoundOr(err)
	}
	if listing.OwnerID != ownerID {
		return common.ErrNotOwner
	}

	images, err := s.imageRepo.ListByListing(listingID)
	if err != nil {
		return err
	}
	var target *domain.ListingImage
	for _, img := range images {
		if img.ID == imageID {
			target = img
			break
		}
	}
	if target == nil {
		return common.ErrNotFound
	}

	if err := s.imageRepo.Delete(imageID); err != nil {
		return err
	}

	// Removing the primary promotes the next image so the listing
	// keeps a thumbnail. ListByListing orders primary-first, then by
	// sort order.
	if target.IsPrimary {
		for _, img := range images {
			if img.ID != imageID {
				return s.imageRepo.SetPrimary(listingID, img.ID)
			}
		}
	}
	return nil
}

func (s *listingService) ToggleSave(ctx context.Context, userID, listingID uint64) (bool, error) {
	if _, err := s.listingRepo.FindByID(listingID); err != nil {
		return false, notFoundOr(err)
	}

	exists, err := s.savedRepo.Exists(userID, listingID)
	if err != nil {
		return false, err
	}
	if exists {
		return false, s.savedRepo.Delete(userID, listingID)
	}
	return true, s.savedRepo.Create(&domain.SavedListing{UserID: userID, ListingID: listingID})
}

func (s *listingService) SavedListings(ctx context.Context, userID uint64, page, limit int) ([]*domain.SavedListingResponse, *common.Meta, error) {
	page, limit = normalizePage(page, limit)
	saved, total, err := s.savedRepo.ListByUser(userID, page, limit)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	items := make([]*domain.SavedListingResponse, 0, len(saved))
	for _, sv := range saved {
		resp := &domain.SavedListingResponse{ID: sv.ID, CreatedAt: sv.CreatedAt}
		if sv.Listing != nil {
			resp.Listing = sv.Listing.ToListItem(now)
		}
		items = append(items, resp)
	}
	return items, &common.Meta{Page: page, Limit: limit, Total: total}, nil
}

func (s *listingService) invalidateSearch(ctx context.Context) {
	if err := s.cache.InvalidateSearch(ctx); err != nil {
		logger.Get().Warn().Err(err).Msg("search cache invalidation failed")
	}
}

func (s *listingService) toResponse(l *domain.Listing, saved bool) *domain.ListingResponse {
	now := time.Now()
	images := make([]domain.ImageResponse, 0, len(l.Images))
	for _, img := range l.Images {
		images = append(images, domain.ImageResponse{
			ID:        img.ID,
			URL:       img.URL,
			IsPrimary: img.IsPrimary,
			SortOrder: img.SortOrder,
		})
	}
	return &domain.ListingResponse{
		ID:           l.ID,
		OwnerID:      l.OwnerID,
		Title:        l.Title,
		Description:  l.Description,
		PostingType:  l.PostingType,
		ListingType:  l.ListingType,
		Rent:         l.Rent,
		PriceTier:    l.PriceTier(),
		Beds:         l.Beds,
		Baths:        l.Baths,
		Address:      l.Address,
		City:         l.City,
		State:        l.State,
		ZipCode:      l.ZipCode,
		DurationType: l.DurationType,
		LeaseStart:   l.LeaseStart.Format(dateLayout),
		LeaseEnd:     l.LeaseEnd.Format(dateLayout),
		Status:       l.Status,
		IsBoosted:    l.EffectiveBoosted(now),
		BoostedUntil: l.BoostedUntil,
		LastBumped:   l.LastBumped,
		IsSaved:      saved,
		Images:       images,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
}

// listingFromRequest validates and maps the request payload.
func listingFromRequest(req *domain.CreateListingRequest) (*domain.Listing, error) {
	leaseStart, err := time.Parse(dateLayout, req.LeaseStart)
	if err != nil {
		return nil, fmt.Errorf("%w: lease_start must be YYYY-MM-DD", common.ErrValidation)
	}
	leaseEnd, err := time.Parse(dateLayout, req.LeaseEnd)
	if err != nil {
		return nil, fmt.Errorf("%w: lease_end must be YYYY-MM-DD", common.ErrValidation)
	}
	if leaseEnd.Before(leaseStart) {
		return nil, fmt.Errorf("%w: lease_end must not precede lease_start", common.ErrValidation)
	}

	roommateGender := req.RoommateGender
	if roommateGender == "" {
		roommateGender = domain.RoommateGenderAny
	}

	return &domain.Listing{
		Title:       req.Title,
		Description: req.Description,
		PostingType: req.PostingType,
		ListingType: req.ListingType,
		Rent:        req.Rent,
		Beds:        req.Beds,
		Baths:       req.Baths,
		Address:     req.Address,
		City:        req.City,
		State:       req.State,
		ZipCode:     req.ZipCode,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,

		Furnished:         req.Furnished,
		PetsAllowed:       req.PetsAllowed,
		WasherDryerInUnit: req.WasherDryerInUnit,
		Dishwasher:        req.Dishwasher,
		AirConditioning:   req.AirConditioning,
		Heating:           req.Heating,
		Balcony:           req.Balcony,

		Gym:               req.Gym,
		Pool:              req.Pool,
		Parking:           req.Parking,
		ParkingSpaces:     req.ParkingSpaces,
		Doorman:           req.Doorman,
		Elevator:          req.Elevator,
		LaundryInBuilding: req.LaundryInBuilding,
		BikeStorage:       req.BikeStorage,

		ElectricityIncluded: req.ElectricityIncluded,
		WaterIncluded:       req.WaterIncluded,
		GasIncluded:         req.GasIncluded,
		InternetIncluded:    req.InternetIncluded,
		CableIncluded:       req.CableIncluded,

		HasRoommates:      req.HasRoommates,
		NumberOfRoommates: req.NumberOfRoommates,
		RoommateGender:    roommateGender,

		DurationType: req.DurationType,
		LeaseStart:   leaseStart,
		LeaseEnd:     leaseEnd,
	}, nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 12
	}
	return page, limit
}

func notFoundOr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return common.ErrNotFound
	}
	return err
}
