package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/sublethub/sublethub-backend/internal/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	err = db.AutoMigrate(
		&domain.Listing{},
		&domain.ListingImage{},
		&domain.SavedListing{},
		&domain.Message{},
		&domain.ContactMessage{},
		&domain.BoostPayment{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return db
}

func seedListing(t *testing.T, db *gorm.DB, mutate func(*domain.Listing)) *domain.Listing {
	t.Helper()
	l := &domain.Listing{
		OwnerID:      1,
		Title:        "Sunny 2BR near campus",
		PostingType:  domain.PostingTypeOffering,
		ListingType:  domain.ListingTypeFull,
		Rent:         1200,
		Beds:         2,
		Baths:        1,
		Address:      "12 Hemenway St",
		City:         "Boston",
		State:        "MA",
		ZipCode:      "02115",
		DurationType: domain.DurationSummer,
		LeaseStart:   time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		LeaseEnd:     time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
		Status:       domain.ListingStatusActive,
	}
	if mutate != nil {
		mutate(l)
	}
	if err := db.Create(l).Error; err != nil {
		t.Fatalf("failed to seed listing: %v", err)
	}
	return l
}

func TestSearch_OnlyActiveOfferingsVisible(t *testing.T) {
	db := setupTestDB(t)
	repo := NewListingRepository(db)

	visible := seedListing(t, db, nil)
	seedListing(t, db, func(l *domain.Listing) { l.Status = domain.ListingStatusPending })
	seedListing(t, db, func(l *domain.Listing) { l.Status = domain.ListingStatusRented })
	seedListing(t, db, func(l *domain.Listing) { l.PostingType = domain.PostingTypeSeeking })

	results, total, err := repo.Search(&SearchParams{})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	if assert.Len(t, results, 1) {
		assert.Equal(t, visible.ID, results[0].ID)
	}
}

func TestSearch_RentBounds(t *testing.T) {
	db := setupTestDB(t)
	repo := NewListingRepository(db)

	seedListing(t, db, func(l *domain.Listing) { l.Rent = 1000 })
	at1500 := seedListing(t, db, func(l *domain.Listing) { l.Rent = 1500 })

	t.Run("max rent is inclusive", func(t *testing.T) {
		maxRent := 1500.0
		results, total, err := repo.Search(&SearchParams{MaxRent: &maxRent})
		assert.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, results, 2)
	})

	t.Run("max rent below excludes", func(t *testing.T) {
		maxRent := 1000.0
		results, _, err := repo.Search(&SearchParams{MaxRent: &maxRent})
		assert.NoError(t, err)
		if assert.Len(t, results, 1) {
			assert.NotEqual(t, at1500.ID, results[0].ID)
		}
	})

	t.Run("min rent is strictly over", func(t *testing.T) {
		minRent := 1000.0
		results, total, err := repo.Search(&SearchParams{MinRent: &minRent})
		assert.NoError(t, err)
		assert.Equal(t, int64(1), total)
		if assert.Len(t, results, 1) {
			assert.Equal(t, at1500.ID, results[0].ID)
		}
	})
}

func TestSearch_BedsModes(t *testing.T) {
	db := setupTestDB(t)
	repo := NewListingRepository(db)

	seedListing(t, db, func(l *domain.Listing) { l.Beds = 1 })
	seedListing(t, db, func(l *domain.Listing) { l.Beds = 2 })
	seedListing(t, db, func(l *domain.Listing) { l.Beds = 3 })

	beds := 2

	results, _, err := repo.Search(&SearchParams{Beds: &beds})
	assert.NoError(t, err)
	if assert.Len(t, results, 1) {
		assert.Equal(t, 2, results[0].Beds)
	}

	results, _, err = repo.Search(&SearchParams{Beds: &beds, BedsAtLeast: true})
	assert.NoError(t, err)
	assert.Len(t, results, 2)
	for _, l := range results {
		assert.GreaterOrEqual(t, l.Beds, 2)
	}
}

func TestFeatured_BoostedFirstThenBumpedThenNewest(t *testing.T) {
	db := setupTestDB(t)
	repo := NewListingRepository(db)

	now := time.Now().UTC()
	bumped := now.Add(-time.Hour)

	plain := seedListing(t, db, func(l *domain.Listing) {
		l.CreatedAt = now.Add(-48 * time.Hour)
	})
	recent := seedListing(t, db, func(l *domain.Listing) {
		l.CreatedAt = now.Add(-time.Hour)
	})
	bumpedListing := seedListing(t, db, func(l *domain.Listing) {
		l.LastBumped = &bumped
		l.CreatedAt = now.Add(-72 * time.Hour)
	})
	boosted := seedListing(t, db, func(l *domain.Listing) {
		l.IsBoosted = true
		l.CreatedAt = now.Add(-96 * time.Hour)
	})

	results, err := repo.Featured(6)
	assert.NoError(t, err)
	if assert.Len(t, results, 4) {
		assert.Equal(t, boosted.ID, results[0].ID)
		assert.Equal(t, bumpedListing.ID, results[1].ID)
		assert.Equal(t, recent.ID, results[2].ID)
		assert.Equal(t, plain.ID, results[3].ID)
	}
}

func TestDemoteStale_CutoffBoundaries(t *testing.T) {
	db := setupTestDB(t)
	repo := NewListingRepository(db)

	now := time.Now().UTC()
	eightDaysAgo := now.Add(-8 * 24 * time.Hour)
	sixDaysAgo := now.Add(-6 * 24 * time.Hour)

	stale := seedListing(t, db, func(l *domain.Listing) {
		l.LastBumped = &eightDaysAgo
	})
	fresh := seedListing(t, db, func(l *domain.Listing) {
		l.LastBumped = &sixDaysAgo
	})
	neverBumpedOld := seedListing(t, db, func(l *domain.Listing) {
		l.CreatedAt = eightDaysAgo
	})
	alreadyPending := seedListing(t, db, func(l *domain.Listing) {
		l.Status = domain.ListingStatusPending
		l.LastBumped = &eightDaysAgo
	})

	demoted, err := repo.DemoteStale(now.Add(-7 * 24 * time.Hour))
	assert.NoError(t, err)
	assert.Equal(t, int64(2), demoted)

	assertStatus := func(id uint64, want domain.ListingStatus) {
		t.Helper()
		var l domain.Listing
		assert.NoError(t, db.First(&l, id).Error)
		assert.Equal(t, want, l.Status)
	}
	assertStatus(stale.ID, domain.ListingStatusPending)
	assertStatus(fresh.ID, domain.ListingStatusActive)
	assertStatus(neverBumpedOld.ID, domain.ListingStatusPending)
	assertStatus(alreadyPending.ID, domain.ListingStatusPending)
}

func TestDelete_CascadesToDependents(t *testing.T) {
	db := setupTestDB(t)
	repo := NewListingRepository(db)

	listing := seedListing(t, db, nil)
	assert.NoError(t, db.Create(&domain.ListingImage{ListingID: listing.ID, URL: "https://img.example/1.jpg"}).Error)
	assert.NoError(t, db.Create(&domain.SavedListing{UserID: 2, ListingID: listing.ID}).Error)
	assert.NoError(t, db.Create(&domain.Message{ListingID: listing.ID, SenderID: 2, RecipientID: 1, Subject: "hi", Body: "still available?"}).Error)

	assert.NoError(t, repo.Delete(listing.ID))

	var count int64
	db.Model(&domain.ListingImage{}).Where("listing_id = ?", listing.ID).Count(&count)
	assert.Equal(t, int64(0), count)
	db.Model(&domain.SavedListing{}).Where("listing_id = ?", listing.ID).Count(&count)
	assert.Equal(t, int64(0), count)
	db.Model(&domain.Message{}).Where("listing_id = ?", listing.ID).Count(&count)
	assert.Equal(t, int64(0), count)

	_, err := repo.FindByID(listing.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
