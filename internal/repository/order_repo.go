package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"paystack-bridge/internal/models"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// OrderRepository handles order reads and status transitions.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// GetOrder returns an order by ID.
func (r *OrderRepository) GetOrder(ctx context.Context, id uint64) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// Create inserts a new order.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// SetOrderStatus moves an order to status with the given flags. The update is
// a single conditional statement; repeating a transition that already holds
// changes nothing and returns nil.
func (r *OrderRepository) SetOrderStatus(ctx context.Context, id uint64, status string, flags models.StatusFlags) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", id).
		Where("NOT (order_status = ? AND payment_succeeded = ? AND payment_completed = ?)",
			status, flags.Succeeded, flags.Completed).
		Updates(map[string]interface{}{
			"order_status":      status,
			"payment_succeeded": flags.Succeeded,
			"payment_completed": flags.Completed,
			"updated_at":        time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}
