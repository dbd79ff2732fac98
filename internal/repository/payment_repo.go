package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"paystack-bridge/internal/models"
)

// PaymentRepository handles the payment attempt log.
type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Record stores a new pending attempt. Recording the same reference again
// keeps the original row.
func (r *PaymentRepository) Record(ctx context.Context, attempt *models.PaymentAttempt) error {
	if attempt.ID == "" {
		attempt.ID = uuid.NewString()
	}
	if attempt.Status == "" {
		attempt.Status = models.AttemptPending
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "reference"}}, DoNothing: true}).
		Create(attempt).Error
}

// MarkOutcome stores the latest verification outcome for a reference.
func (r *PaymentRepository) MarkOutcome(ctx context.Context, ref, status string, gatewayAmount int64, lastErr string) error {
	updates := map[string]interface{}{
		"status":         status,
		"gateway_amount": gatewayAmount,
		"last_error":     lastErr,
		"updated_at":     time.Now(),
	}
	if status == models.AttemptVerified {
		updates["verified_at"] = time.Now()
	}
	return r.db.WithContext(ctx).Model(&models.PaymentAttempt{}).
		Where("reference = ?", ref).
		Updates(updates).Error
}

// FindByReference returns the attempt for a reference.
func (r *PaymentRepository) FindByReference(ctx context.Context, ref string) (*models.PaymentAttempt, error) {
	var attempt models.PaymentAttempt
	if err := r.db.WithContext(ctx).Where("reference = ?", ref).First(&attempt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &attempt, nil
}

// FindByOrder returns all attempts for an order, newest first.
func (r *PaymentRepository) FindByOrder(ctx context.Context, orderID uint64) ([]models.PaymentAttempt, error) {
	var attempts []models.PaymentAttempt
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("created_at DESC").Find(&attempts).Error
	return attempts, err
}

// FindPending returns attempts still pending or unverified that were created
// before the cutoff, oldest first.
func (r *PaymentRepository) FindPending(ctx context.Context, before time.Time, limit int) ([]models.PaymentAttempt, error) {
	if limit <= 0 {
		limit = 100
	}
	var attempts []models.PaymentAttempt
	err := r.db.WithContext(ctx).
		Where("status IN ? AND created_at < ?", []string{models.AttemptPending, models.AttemptUnverified}, before).
		Order("created_at ASC").
		Limit(limit).
		Find(&attempts).Error
	return attempts, err
}
