package models

import "time"

// Attempt statuses.
const (
	AttemptPending    = "pending"
	AttemptVerified   = "verified"
	AttemptUnverified = "unverified"
	AttemptInvalid    = "invalid"
)

// PaymentAttempt maps to the `payment_attempts` table: one row per
// initialization, updated with the latest verification outcome. It is an
// audit trail; verdicts are always recomputed from the gateway.
type PaymentAttempt struct {
	ID            string     `gorm:"column:id;primaryKey;size:36" json:"id"`
	OrderID       uint64     `gorm:"column:order_id;index" json:"order_id"`
	Reference     string     `gorm:"column:reference;size:512;uniqueIndex" json:"reference"`
	AmountMinor   int64      `gorm:"column:amount_minor" json:"amount_minor"`
	Mode          string     `gorm:"column:mode;size:10" json:"mode"`
	Status        string     `gorm:"column:status;size:20;index" json:"status"`
	GatewayAmount int64      `gorm:"column:gateway_amount" json:"gateway_amount"`
	LastError     string     `gorm:"column:last_error;type:text" json:"last_error,omitempty"`
	CreatedAt     time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at" json:"updated_at"`
	VerifiedAt    *time.Time `gorm:"column:verified_at" json:"verified_at,omitempty"`
}

func (PaymentAttempt) TableName() string {
	return "payment_attempts"
}
