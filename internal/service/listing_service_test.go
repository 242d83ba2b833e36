package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/sublethub/sublethub-backend/internal/common"
	"github.com/sublethub/sublethub-backend/internal/domain"
	"gorm.io/gorm"
)

func newTestListingService(
	listingRepo *MockListingRepository,
	imageRepo *MockListingImageRepository,
	savedRepo *MockSavedListingRepository,
) (ListingService, *fakeCache) {
	cacheSvc := &fakeCache{}
	return NewListingService(listingRepo, imageRepo, savedRepo, cacheSvc), cacheSvc
}

func validCreateRequest() *domain.CreateListingRequest {
	return &domain.CreateListingRequest{
		Title:        "Sunny 2BR near campus",
		Description:  "South-facing, quiet street",
		PostingType:  domain.PostingTypeOffering,
		ListingType:  domain.ListingTypeFull,
		Rent:         1450,
		Beds:         2,
		Baths:        1,
		Address:      "12 College Ave",
		City:         "Ithaca",
		State:        "NY",
		ZipCode:      "14850",
		DurationType: domain.DurationFall,
		LeaseStart:   "2026-08-15",
		LeaseEnd:     "2026-12-20",
	}
}

func TestCreateListing_Success(t *testing.T) {
	listingRepo := new(MockListingRepository)
	imageRepo := new(MockListingImageRepository)
	savedRepo := new(MockSavedListingRepository)
	svc, cacheSvc := newTestListingService(listingRepo, imageRepo, savedRepo)

	listingRepo.On("Create", mock.MatchedBy(func(l *domain.Listing) bool {
		return l.OwnerID == 7 && l.Status == domain.ListingStatusActive
	})).Return(nil)

	listing, err := svc.Create(context.Background(), 7, validCreateRequest())
	assert.NoError(t, err)
	assert.Equal(t, "2026-08-15", listing.LeaseStart)
	assert.Equal(t, "mid", listing.PriceTier)
	assert.Equal(t, int64(1), cacheSvc.invalidations.Load())
}

func TestCreateListing_LeaseEndBeforeStart(t *testing.T) {
	listingRepo := new(MockListingRepository)
	imageRepo := new(MockListingImageRepository)
	savedRepo := new(MockSavedListingRepository)
	svc, _ := newTestListingService(listingRepo, imageRepo, savedRepo)

	req := validCreateRequest()
	req.LeaseStart = "2026-12-20"
	req.LeaseEnd = "2026-08-15"

	_, err := svc.Create(context.Background(), 7, req)
	assert.ErrorIs(t, err, common.ErrValidation)
	listingRepo.AssertNotCalled(t, "Create")
}

func TestCreateListing_BadDateFormat(t *testing.T) {
	listingRepo := new(MockListingRepository)
	imageRepo := new(MockListingImageRepository)
	savedRepo := new(MockSavedListingRepository)
	svc, _ := newTestListingService(listingRepo, imageRepo, savedRepo)

	req := validCreateRequest()
	req.LeaseStart = "08/15/2026"

	_, err := svc.Create(context.Background(), 7, req)
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestUpdateListing_NotOwner(t *testing.T) {
	listingRepo := new(MockListingRepository)
	imageRepo := new(MockListingImageRepository)
	savedRepo := new(MockSavedListingRepository)
	svc, _ := newTestListingService(listingRepo, imageRepo, savedRepo)

	listingRepo.On("FindByID", uint64(10)).Return(&domain.Listing{ID: 10, OwnerID: 7}, nil)

	_, err := svc.Update(context.Background(), 99, 10, validCreateRequest())
	assert.ErrorIs(t, err, common.ErrNotOwner)
	listingRepo.AssertNotCalled(t, "Update")
}

func TestUpdateListing_PreservesBoostState(t *testing.T) {
	listingRepo := new(MockListingRepository)
	imageRepo := new(MockListingImageRepository)
	savedRepo := new(MockSavedListingRepository)
	svc, _ := newTestListingService(listingRepo, imageRepo, savedRepo)

	listingRepo.On("FindByID", uint64(10)).Return(&domain.Listing{
		ID: 10, OwnerID: 7, Status: domain.ListingStatusPending, IsBoosted: true,
	}, nil)
	listingRepo.On("Update", mock.MatchedBy(func(l *domain.Listing) bool {
		// Status and boost flags survive an edit untouched
		return l.Status == domain.ListingStatusPending && l.IsBoosted
	})).Return(nil)
	savedRepo.On("Exists", uint64(7), uint64(10)).Return(false, nil)

	_, err := svc.Update(context.Background(), 7, 10, validCreateRequest())
	assert.NoError(t, err)
	listingRepo.AssertExpectations(t)
}

func TestDeleteListing_NotFound(t *testing.T) {
	listingRepo := new(MockListingRepository)
	imageRepo := new(MockListingImageRepository)
	savedRepo := new(MockSavedListingRepository)
	svc, _ := newTestListingService(listingRepo, imageRepo, savedRepo)

	listingRepo.On("FindByID", uint64(404)).Return(nil, gorm.ErrRecordNotFound)

	err := svc.Delete(context.Background(), 7, 404)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestBump_OwnerOnly(t *testing.T) {
	listingRepo := new(MockListingRepository)
	imageRepo := new(MockListingImageRepository)
	savedRepo := new(MockSavedListingRepository)
	svc, cacheSvc := newTestListingService(listingRepo, imageRepo, savedRepo)

	listingRepo.On("FindByID", uint64(10)).Return(&domain.Listing{ID: 10, OwnerID: 7}, nil)

	err := svc.Bump(context.Background(), 99, 10)
	assert.ErrorIs(t, err, common.ErrNotOwner)
	listingRepo.AssertNotCalled(t, "Bump")
	assert.Equal(t, int64(0), cacheSvc.invalidations.Load())
}

func TestAddImages_FirstImageBecomesPrimary(t *testing.T) {
	listingRepo := new(MockListingRepository)
	imageRepo := new(MockListingImageRepository)
	savedRepo := new(MockSavedListingRepository)
	svc, _ := newTestListingService(listingRepo, imageRepo, savedRepo)

	listingRepo.On("FindByID", uint64(10)).Return(&domain.Listing{ID: 10, OwnerID: 7}, nil)
	imageRepo.On("CountByListing", uint64(10)).Return(int64(0), nil)
	imageRepo.On("Create", mock.Anything).Return(nil)

	images, err := svc.AddImages(context.Background(), 7, 10, []string{
		"https://cdn.example/a.jpg",
		"https://cdn.example/b.jpg",
	})
	assert.NoError(t, err)
	assert.Len(t, images, 2)
	assert.True(t, images[0].IsPrimary)
	assert.False(t, images[1].IsPrimary)
	assert.Equal(t, 0, images[0].SortOrder)
	assert.Equal(t, 1, images[1].SortOrder)
}

func TestAddImages_AppendsAfterExisting(t *testing.T) {
	listingRepo := new(MockListingRepository)
	imageRepo := new(MockListingImageRepository)
	savedRepo := new(MockSavedListingRepository)
	svc, _ := newTestListingService(listingRepo, imageRepo, savedRepo)

	listingRepo.On("FindByID", uint64(10)).Return(&domain.Listing{ID: 10, OwnerID: 7}, nil)
	imageRepo.On("CountByListing", uint64(10)).Return(int64(3), nil)
	imageRepo.On("Create", mock.Anything).Return(nil)

	images, err := svc.AddImages(context.Background(), 7, 10, []string{"https://cdn.example/c.jpg"})
	assert.NoError(t, err)
	assert.False(t, images[0].IsPrimary)
	assert.Equal(t, 3, images[0].SortOrder)
}

func TestToggleSave_AddsThenRemoves(t *testing.T) {
	listingRepo := new(MockListingRepository)
	imageRepo := new(MockListingImageRepository)
	savedRepo := new(MockSavedListingRepository)
	svc, _ := newTestListingService(listingRepo, imageRepo, savedRepo)

	listingRepo.On("FindByID", uint64(10)).Return(&domain.Listing{ID: 10, OwnerID: 7}, nil)

	t.Run("first toggle saves", func(t *testing.T) {
		savedRepo.On("Exists", uint64(3), uint64(10)).Return(false, nil).Once()
		savedRepo.On("Create", mock.Anything).Return(nil).Once()

		saved, err := svc.ToggleSave(context.Background(), 3, 10)
		assert.NoError(t, err)
		assert.True(t, saved)
	})

	t.Run("second toggle unsaves", func(t *testing.T) {
		savedRepo.On("Exists", uint64(3), uint64(10)).Return(true, nil).Once()
		savedRepo.On("Delete", uint64(3), uint64(10)).Return(nil).Once()

		saved, err := svc.ToggleSave(context.Background(), 3, 10)
		assert.NoError(t, err)
		assert.False(t, saved)
	})
}

func TestGetListing_SavedFlagForViewer(t *testing.T) {
	listingRepo := new(MockListingRepository)
	imageRepo := new(MockListingImageRepository)
	savedRepo := new(MockSavedListingRepository)
	svc, _ := newTestListingService(listingRepo, imageRepo, savedRepo)

	listingRepo.On("FindByID", uint64(10)).Return(&domain.Listing{ID: 10, OwnerID: 7}, nil)
	savedRepo.On("Exists", uint64(3), uint64(10)).Return(true, nil)

	listing, err := svc.Get(context.Background(), 3, 10)
	assert.NoError(t, err)
	assert.True(t, listing.IsSaved)
}

func TestGetListing_AnonymousViewerSkipsSavedLookup(t *testing.T) {
	listingRepo := new(MockListingRepository)
	imageRepo := new(MockListingImageRepository)
	savedRepo := new(MockSavedListingRepository)
	svc, _ := newTestListingService(listingRepo, imageRepo, savedRepo)

	listingRepo.On("FindByID", uint64(10)).Return(&domain.Listing{ID: 10, OwnerID: 7}, nil)

	listing, err := svc.Get(context.Background(), 0, 10)
	assert.NoError(t, err)
	assert.False(t, listing.IsSaved)
	savedRepo.AssertNotCalled(t, "Exists")
}

func TestRemoveImage_PromotesNextWhenPrimaryRemoved(t *testing.T) {
	listingRepo := new(MockListingRepository)
	imageRepo := new(MockListingImageRepository)
	savedRepo := new(MockSavedListingRepository)
	svc, _ := newTestListingService(listingRepo, imageRepo, savedRepo)

	listingRepo.On("FindByID", uint64(10)).Return(&domain.Listing{ID: 10, OwnerID: 7}, nil)
	imageRepo.On("ListByListing", uint64(10)).Return([]*domain.ListingImage{
		{ID: 1, ListingID: 10, IsPrimary: true},
		{ID: 2, ListingID: 10, SortOrder: 1},
		{ID: 3, ListingID: 10, SortOrder: 2},
	}, nil)
	imageRepo.On("Delete", uint64(1)).Return(nil)
	imageRepo.On("SetPrimary", uint64(10), uint64(2)).Return(nil).Once()

	err := svc.RemoveImage(context.Background(), 7, 10, 1)
	assert.NoError(t, err)
	imageRepo.AssertExpectations(t)
}

func TestRemoveImage_NonPrimaryLeavesPrimaryAlone(t *testing.T) {
	listingRepo := new(MockListingRepository)
	imageRepo := new(MockListingImageRepository)
	savedRepo := new(MockSavedListingRepository)
	svc, _ := newTestListingService(listingRepo, imageRepo, savedRepo)

	listingRepo.On("FindByID", uint64(10)).Return(&domain.Listing{ID: 10, OwnerID: 7}, nil)
	imageRepo.On("ListByListing", uint64(10)).Return([]*domain.ListingImage{
		{ID: 1, ListingID: 10, IsPrimary: true},
		{ID: 2, ListingID: 10, SortOrder: 1},
	}, nil)
	imageRepo.On("Delete", uint64(2)).Return(nil)

	err := svc.RemoveImage(context.Background(), 7, 10, 2)
	assert.NoError(t, err)
	imageRepo.AssertNotCalled(t, "SetPrimary")
}

func TestRemoveImage_UnknownImage(t *testing.T) {
	listingRepo := new(MockListingRepository)
	imageRepo := new(MockListingImageRepository)
	savedRepo := new(MockSavedListingRepository)
	svc, _ := newTestListingService(listingRepo, imageRepo, savedRepo)

	listingRepo.On("FindByID", uint64(10)).Return(&domain.Listing{ID: 10, OwnerID: 7}, nil)
	imageRepo.On("ListByListing", uint64(10)).Return([]*domain.ListingImage{
		{ID: 1, ListingID: 10, IsPrimary: true},
	}, nil)

	err := svc.RemoveImage(context.Background(), 7, 10, 99)
	assert.ErrorIs(t, err, common.ErrNotFound)
	imageRepo.AssertNotCalled(t, "Delete")
}

func TestRemoveImage_NotOwner(t *testing.T) {
	listingRepo := new(MockListingRepository)
	imageRepo := new(MockListingImageRepository)
	savedRepo := new(MockSavedListingRepository)
	svc, _ := newTestListingService(listingRepo, imageRepo, savedRepo)

	listingRepo.On("FindByID", uint64(10)).Return(&domain.Listing{ID: 10, OwnerID: 7}, nil)

	err := svc.RemoveImage(context.Background(), 99, 10, 1)
	assert.ErrorIs(t, err, common.ErrNotOwner)
	imageRepo.AssertNotCalled(t, "ListByListing")
}
