package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sublethub/sublethub-backend/internal/common"
	"github.com/sublethub/sublethub-backend/internal/domain"
	"github.com/sublethub/sublethub-backend/internal/gateway"
	"github.com/sublethub/sublethub-backend/internal/repository"
	"github.com/sublethub/sublethub-backend/pkg/cache"
	"github.com/sublethub/sublethub-backend/pkg/logger"
	"gorm.io/gorm"
)

// BoostService paid listing promotion lifecycle
type BoostService interface {
	// RequestBoost opens a checkout session and records a pending payment
	RequestBoost(ctx context.Context, ownerID, listingID uint64) (*domain.BoostCheckoutResponse, error)

	// ConfirmCheckout completes the payment for a session and activates
	// the boost. Safe to call more than once per session: the success
	// redirect and the webhook both land here, and only one wins.
	ConfirmCheckout(ctx context.Context, sessionID string) (*domain.BoostPayment, error)

	// HandleWebhook verifies and dispatches a gateway webhook delivery
	HandleWebhook(ctx context.Context, payload []byte, signatureHeader string) error
}

// The gateway substitutes the real session id into the success URL
// before redirecting the buyer back.
const sessionIDPlaceholder = "{CHECKOUT_SESSION_ID}"

type boostService struct {
	listingRepo repository.ListingRepository
	paymentRepo repository.BoostPaymentRepository
	gateway     gateway.CheckoutGateway
	cache       cache.Service
	successURL  string
	cancelURL   string
	now         func() time.Time
}

// NewBoostService creates a new BoostService
func NewBoostService(
	listingRepo repository.ListingRepository,
	paymentRepo repository.BoostPaymentRepository,
	checkoutGateway gateway.CheckoutGateway,
	cacheSvc cache.Service,
	successURL, cancelURL string,
) BoostService {
	return &boostService{
		listingRepo: listingRepo,
		paymentRepo: paymentRepo,
		gateway:     checkoutGateway,
		cache:       cacheSvc,
		successURL:  withSessionPlaceholder(successURL),
		cancelURL:   cancelURL,
		now:         time.Now,
	}
}

// withSessionPlaceholder ensures the success URL carries the session id
// the confirmation endpoint needs.
func withSessionPlaceholder(u string) string {
	if strings.Contains(u, sessionIDPlaceholder) {
		return u
	}
	sep := "?"
	if strings.Contains(u, "?") {
		sep = "&"
	}
	return u + sep + "session_id=" + sessionIDPlaceholder
}

func (s *boostService) RequestBoost(ctx context.Context, ownerID, listingID uint64) (*domain.BoostCheckoutResponse, error) {
	listing, err := s.listingRepo.FindByID(listingID)
	if err != nil {
		return nil, notFoundOr(err)
	}
	if listing.OwnerID != ownerID {
		return nil, common.ErrNotOwner
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, &gateway.CheckoutRequest{
		Amount:             domain.BoostPriceCents,
		Currency:           domain.BoostCurrency,
		ProductName:        "Listing Boost",
		ProductDescription: fmt.Sprintf("7-day boost for %q", listing.Title),
		SuccessURL:         s.successURL,
		CancelURL:          s.cancelURL,
		Metadata: map[string]string{
			"listing_id": strconv.FormatUint(listingID, 10),
			"user_id":    strconv.FormatUint(ownerID, 10),
		},
	})
	if err != nil {
		// No payment row exists yet, so a gateway failure leaves no
		// state to clean up.
		logger.Get().Error().Err(err).Uint64("listing_id", listingID).Msg("checkout session creation failed")
		return nil, fmt.Errorf("%w: %v", common.ErrGateway, err)
	}

	payment := &domain.BoostPayment{
		ListingID:         listingID,
		UserID:            ownerID,
		CheckoutSessionID: session.ID,
		Amount:            domain.BoostPriceCents,
		Currency:          domain.BoostCurrency,
		Status:            domain.PaymentStatusPending,
	}
	if err := s.paymentRepo.Create(payment); err != nil {
		return nil, err
	}

	return &domain.BoostCheckoutResponse{
		SessionID:   session.ID,
		CheckoutURL: session.URL,
		Amount:      payment.Amount,
		Currency:    payment.Currency,
	}, nil
}

func (s *boostService) ConfirmCheckout(ctx context.Context, sessionID string) (*domain.BoostPayment, error) {
	payment, err := s.paymentRepo.FindBySessionID(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}

	now := s.now()
	won, err := s.paymentRepo.Complete(sessionID, now)
	if err != nil {
		return nil, err
	}
	if !won {
		// Already confirmed by the other path (redirect vs webhook).
		// Reload so the caller sees the completed row, not the stale
		// pre-update snapshot.
		return s.paymentRepo.FindBySessionID(sessionID)
	}

	until := now.Add(domain.BoostDuration)
	if err := s.listingRepo.ActivateBoost(payment.ListingID, until); err != nil {
		return nil, err
	}
	if err := s.cache.InvalidateSearch(ctx); err != nil {
		logger.Get().Warn().Err(err).Msg("search cache invalidation failed")
	}

	logger.Get().Info().
		Uint64("listing_id", payment.ListingID).
		Str("session_id", sessionID).
		Time("boosted_until", until).
		Msg("boost activated")

	payment.Status = domain.PaymentStatusCompleted
	payment.CompletedAt = &now
	return payment, nil
}

func (s *boostService) HandleWebhook(ctx context.Context, payload []byte, signatureHeader string) error {
	event, err := s.gateway.ParseWebhook(payload, signatureHeader)
	if err != nil {
		if errors.Is(err, gateway.ErrInvalidSignature) {
			return common.ErrInvalidSignature
		}
		if errors.Is(err, gateway.ErrMalformedPayload) {
			return fmt.Errorf("%w: %v", common.ErrValidation, err)
		}
		return err
	}

	switch event.Type {
	case gateway.EventCheckoutCompleted:
		if _, err := s.ConfirmCheckout(ctx, event.SessionID); err != nil {
			if errors.Is(err, common.ErrNotFound) {
				// Session we never opened; acknowledge so the gateway
				// stops retrying.
				logger.Get().Warn().Str("session_id", event.SessionID).Msg("webhook for unknown checkout session")
				return nil
			}
			return err
		}
		return nil
	default:
		logger.Get().Debug().Str("type", event.Type).Msg("ignoring webhook event")
		return nil
	}
}
