package repository

import (
	"time"

	"github.com/sublethub/sublethub-backend/internal/domain"
	"gorm.io/gorm"
)

// BoostPaymentRepository boost payment data access
type BoostPaymentRepository interface {
	Create(payment *domain.BoostPayment) error
	FindBySessionID(sessionID string) (*domain.BoostPayment, error)
	// Complete marks the payment for the session completed, but only if
	// it is still pending. Returns whether this call won the update;
	// duplicate deliveries lose and see false. The conditional guard is
	// what keeps concurrent webhook/redirect confirmation idempotent.
	Complete(sessionID string, at time.Time) (bool, error)
}

type boostPaymentRepository struct {
	db *gorm.DB
}

// NewBoostPaymentRepository creates a boost payment repository
func NewBoostPaymentRepository(db *gorm.DB) BoostPaymentRepository {
	return &boostPaymentRepository{db: db}
}

func (r *boostPaymentRepository) Create(payment *domain.BoostPayment) error {
	return r.db.Create(payment).Error
}

func (r *boostPaymentRepository) FindBySessionID(sessionID string) (*domain.BoostPayment, error) {
	var payment domain.BoostPayment
	err := r.db.Where("checkout_session_id = ?", sessionID).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *boostPaymentRepository) Complete(sessionID string, at time.Time) (bool, error) {
	res := r.db.Model(&domain.BoostPayment{}).
		Where("checkout_session_id = ? AND status = ?", sessionID, domain.PaymentStatusPending).
		UpdateColumns(map[string]interface{}{
			"status":       domain.PaymentStatusCompleted,
			"completed_at": at,
		})
	return res.RowsAffected > 0, res.Error
}
