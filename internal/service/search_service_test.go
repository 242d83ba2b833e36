package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/sublethub/sublethub-backend/internal/domain"
	"github.com/sublethub/sublethub-backend/internal/repository"
)

func TestSearch_NormalizesPaging(t *testing.T) {
	listingRepo := new(MockListingRepository)
	svc := NewSearchService(listingRepo, &fakeCache{})

	listingRepo.On("Search", mock.MatchedBy(func(p *repository.SearchParams) bool {
		return p.Page == 1 && p.Limit == 12 && p.Sort == repository.SortNewest
	})).Return([]*domain.Listing{}, int64(0), nil)

	_, meta, err := svc.Search(context.Background(), &repository.SearchParams{Page: -3, Limit: 900})
	assert.NoError(t, err)
	assert.Equal(t, 1, meta.Page)
	assert.Equal(t, 12, meta.Limit)
	listingRepo.AssertExpectations(t)
}

func TestSearch_BoostFlagRecomputedAtReadTime(t *testing.T) {
	listingRepo := new(MockListingRepository)
	svc := NewSearchService(listingRepo, &fakeCache{})

	expired := time.Now().Add(-time.Hour)
	listingRepo.On("Search", mock.Anything).Return([]*domain.Listing{
		{ID: 1, IsBoosted: true, BoostedUntil: &expired},
	}, int64(1), nil)

	items, _, err := svc.Search(context.Background(), &repository.SearchParams{})
	assert.NoError(t, err)
	assert.Len(t, items, 1)
	assert.False(t, items[0].IsBoosted)
}

func TestFeatured_LimitsFeed(t *testing.T) {
	listingRepo := new(MockListingRepository)
	svc := NewSearchService(listingRepo, &fakeCache{})

	listingRepo.On("Featured", featuredLimit).Return([]*domain.Listing{
		{ID: 1}, {ID: 2},
	}, nil)

	items, err := svc.Featured(context.Background())
	assert.NoError(t, err)
	assert.Len(t, items, 2)
	listingRepo.AssertExpectations(t)
}

func TestSearchCacheKey_DistinguishesFilterModes(t *testing.T) {
	beds := 3
	exact := &repository.SearchParams{Beds: &beds, Sort: repository.SortNewest, Page: 1, Limit: 12}
	atLeast := &repository.SearchParams{Beds: &beds, BedsAtLeast: true, Sort: repository.SortNewest, Page: 1, Limit: 12}

	assert.NotEqual(t, searchCacheKey(exact), searchCacheKey(atLeast))
}

func TestSearchCacheKey_StableForEqualParams(t *testing.T) {
	rent := 1500.0
	a := &repository.SearchParams{Location: "Ithaca", MaxRent: &rent, Sort: repository.SortPriceLow, Page: 2, Limit: 12}
	b := &repository.SearchParams{Location: "Ithaca", MaxRent: &rent, Sort: repository.SortPriceLow, Page: 2, Limit: 12}

	assert.Equal(t, searchCacheKey(a), searchCacheKey(b))
}
