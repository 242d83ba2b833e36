package service

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/sublethub/sublethub-backend/internal/domain"
	"github.com/sublethub/sublethub-backend/internal/gateway"
	"github.com/sublethub/sublethub-backend/internal/identity"
	"github.com/sublethub/sublethub-backend/internal/repository"
)

// MockListingRepository is a mock implementation of ListingRepository
type MockListingRepository struct {
	mock.Mock
}

func (m *MockListingRepository) Create(listing *domain.Listing) error {
	args := m.Called(listing)
	return args.Error(0)
}

func (m *MockListingRepository) FindByID(id uint64) (*domain.Listing, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}

func (m *MockListingRepository) Update(listing *domain.Listing) error {
	args := m.Called(listing)
	return args.Error(0)
}

func (m *MockListingRepository) Delete(id uint64) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockListingRepository) Search(params *repository.SearchParams) ([]*domain.Listing, int64, error) {
	args := m.Called(params)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*domain.Listing), args.Get(1).(int64), args.Error(2)
}

func (m *MockListingRepository) Featured(limit int) ([]*domain.Listing, error) {
	args := m.Called(limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Listing), args.Error(1)
}

func (m *MockListingRepository) ListByOwner(ownerID uint64, page, limit int) ([]*domain.Listing, int64, error) {
	args := m.Called(ownerID, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*domain.Listing), args.Get(1).(int64), args.Error(2)
}

func (m *MockListingRepository) Bump(id uint64, at time.Time) error {
	args := m.Called(id, at)
	return args.Error(0)
}

func (m *MockListingRepository) ActivateBoost(id uint64, until time.Time) error {
	args := m.Called(id, until)
	return args.Error(0)
}

func (m *MockListingRepository) DemoteStale(cutoff time.Time) (int64, error) {
	args := m.Called(cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// MockListingImageRepository is a mock implementation of ListingImageRepository
type MockListingImageRepository struct {
	mock.Mock
}

func (m *MockListingImageRepository) Create(image *domain.ListingImage) error {
	args := m.Called(image)
	return args.Error(0)
}

func (m *MockListingImageRepository) ListByListing(listingID uint64) ([]*domain.ListingImage, error) {
	args := m.Called(listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ListingImage), args.Error(1)
}

func (m *MockListingImageRepository) SetPrimary(listingID, imageID uint64) error {
	args := m.Called(listingID, imageID)
	return args.Error(0)
}

func (m *MockListingImageRepository) Delete(id uint64) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockListingImageRepository) CountByListing(listingID uint64) (int64, error) {
	args := m.Called(listingID)
	return args.Get(0).(int64), args.Error(1)
}

// MockSavedListingRepository is a mock implementation of SavedListingRepository
type MockSavedListingRepository struct {
	mock.Mock
}

func (m *MockSavedListingRepository) Create(saved *domain.SavedListing) error {
	args := m.Called(saved)
	return args.Error(0)
}

func (m *MockSavedListingRepository) Delete(userID, listingID uint64) error {
	args := m.Called(userID, listingID)
	return args.Error(0)
}

func (m *MockSavedListingRepository) Exists(userID, listingID uint64) (bool, error) {
	args := m.Called(userID, listingID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSavedListingRepository) ListByUser(userID uint64, page, limit int) ([]*domain.SavedListing, int64, error) {
	args := m.Called(userID, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*domain.SavedListing), args.Get(1).(int64), args.Error(2)
}

// MockMessageRepository is a mock implementation of MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) Create(msg *domain.Message) error {
	args := m.Called(msg)
	return args.Error(0)
}

func (m *MockMessageRepository) FindByID(id uint64) (*domain.Message, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}

func (m *MockMessageRepository) Thread(rootID uint64) ([]*domain.Message, error) {
	args := m.Called(rootID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Message), args.Error(1)
}

func (m *MockMessageRepository) Inbox(userID uint64, page, limit int) ([]*domain.Message, int64, error) {
	args := m.Called(userID, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*domain.Message), args.Get(1).(int64), args.Error(2)
}

func (m *MockMessageRepository) Sent(userID uint64, page, limit int) ([]*domain.Message, int64, error) {
	args := m.Called(userID, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*domain.Message), args.Get(1).(int64), args.Error(2)
}

func (m *MockMessageRepository) MarkRead(id, recipientID uint64, at time.Time) (bool, error) {
	args := m.Called(id, recipientID, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockMessageRepository) UnreadCount(userID uint64) (int64, error) {
	args := m.Called(userID)
	return args.Get(0).(int64), args.Error(1)
}

// MockContactMessageRepository is a mock implementation of ContactMessageRepository
type MockContactMessageRepository struct {
	mock.Mock
}

func (m *MockContactMessageRepository) Create(msg *domain.ContactMessage) error {
	args := m.Called(msg)
	return args.Error(0)
}

func (m *MockContactMessageRepository) FindByID(id, ownerID uint64) (*domain.ContactMessage, error) {
	args := m.Called(id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ContactMessage), args.Error(1)
}

func (m *MockContactMessageRepository) ListByOwner(ownerID uint64, page, limit int) ([]*domain.ContactMessage, int64, error) {
	args := m.Called(ownerID, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*domain.ContactMessage), args.Get(1).(int64), args.Error(2)
}

func (m *MockContactMessageRepository) MarkRead(id, ownerID uint64) (bool, error) {
	args := m.Called(id, ownerID)
	return args.Bool(0), args.Error(1)
}

// MockBoostPaymentRepository is a mock implementation of BoostPaymentRepository
type MockBoostPaymentRepository struct {
	mock.Mock
}

func (m *MockBoostPaymentRepository) Create(payment *domain.BoostPayment) error {
	args := m.Called(payment)
	return args.Error(0)
}

func (m *MockBoostPaymentRepository) FindBySessionID(sessionID string) (*domain.BoostPayment, error) {
	args := m.Called(sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BoostPayment), args.Error(1)
}

func (m *MockBoostPaymentRepository) Complete(sessionID string, at time.Time) (bool, error) {
	args := m.Called(sessionID, at)
	return args.Bool(0), args.Error(1)
}

// MockCheckoutGateway is a mock implementation of CheckoutGateway
type MockCheckoutGateway struct {
	mock.Mock
}

func (m *MockCheckoutGateway) CreateCheckoutSession(ctx context.Context, req *gateway.CheckoutRequest) (*gateway.CheckoutSession, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.CheckoutSession), args.Error(1)
}

func (m *MockCheckoutGateway) ParseWebhook(payload []byte, signatureHeader string) (*gateway.WebhookEvent, error) {
	args := m.Called(payload, signatureHeader)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.WebhookEvent), args.Error(1)
}

// MockDirectory is a mock implementation of identity.Directory
type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) Lookup(ctx context.Context, userID uint64) (*identity.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

// MockMailer is a mock implementation of mailer.Mailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(to, subject, body string) error {
	args := m.Called(to, subject, body)
	return args.Error(0)
}

// fakeCache is an in-memory cache.Service that counts invalidations
type fakeCache struct {
	invalidations atomic.Int64
}

func (f *fakeCache) Get(ctx context.Context, key string, dest interface{}) error {
	return context.Canceled // treated as a miss by callers
}

func (f *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}

func (f *fakeCache) Delete(ctx context.Context, keys ...string) error { return nil }

func (f *fakeCache) GetSearch(ctx context.Context, key string, dest interface{}) error {
	return context.Canceled
}

func (f *fakeCache) SetSearch(ctx context.Context, key string, value interface{}) error { return nil }

func (f *fakeCache) InvalidateSearch(ctx context.Context) error {
	f.invalidations.Add(1)
	return nil
}

func (f *fakeCache) IsAvailable() bool { return false }
