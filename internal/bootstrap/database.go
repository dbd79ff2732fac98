package bootstrap

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"paystack-bridge/internal/models"
)

// MigrateAndSeed ensures required tables exist. With seedDemo set, an empty
// orders table gets one order so the checkout flow can be tried end to end.
func MigrateAndSeed(db *gorm.DB, seedDemo bool) error {
	if err := db.AutoMigrate(allModels()...); err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	if !seedDemo {
		return nil
	}
	if err := ensureDemoOrder(db); err != nil {
		return fmt.Errorf("seed defaults failed: %w", err)
	}
	return nil
}

func allModels() []interface{} {
	return []interface{}{
		&models.Order{},
		&models.PaymentAttempt{},
	}
}

func ensureDemoOrder(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var first models.Order
		err := tx.Order("id").First(&first).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		row := models.Order{
			ID:          1,
			Number:      "DEMO-0001",
			CreatedUnix: time.Now().Unix(),
			Total:       decimal.RequireFromString("1500.00"),
			Email:       "buyer@example.com",
			Status:      "created",
		}
		return tx.Create(&row).Error
	})
}
