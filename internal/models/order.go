package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order maps to the `orders` table owned by the order-management side.
// The payment flow only reads it and moves Status.
type Order struct {
	ID          uint64          `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Number      string          `gorm:"column:order_number;size:100;uniqueIndex" json:"number"`
	CreatedUnix int64           `gorm:"column:order_created" json:"created"`
	Total       decimal.Decimal `gorm:"column:order_full_price;type:decimal(14,2)" json:"total"`
	Email       string          `gorm:"column:customer_email;size:320" json:"email"`
	Status      string          `gorm:"column:order_status;size:100;default:created" json:"status"`
	Succeeded   bool            `gorm:"column:payment_succeeded" json:"succeeded"`
	Completed   bool            `gorm:"column:payment_completed" json:"completed"`
	UpdatedAt   time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}

// StatusFlags accompany an order status transition.
type StatusFlags struct {
	Succeeded bool
	Completed bool
}
