package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"retail-sales-lab/internal/data"
	apperrors "retail-sales-lab/internal/errors"
)

// EnsureSchema applies the required database schema.
func EnsureSchema(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(&data.Order{}); err != nil {
		return apperrors.NewStorageError("migrate schema", err)
	}
	return nil
}

// SaveOrders replaces the stored orders with the given ones, inserting in
// batches inside a single transaction.
func SaveOrders(ctx context.Context, gdb *gorm.DB, orders []data.Order, batchSize int) error {
	if batchSize <= 0 {
		batchSize = 1000
	}

	err := gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&data.Order{}).Error; err != nil {
			return fmt.Errorf("clear orders: %w", err)
		}

		batch := make([]data.Order, 0, batchSize)
		for i, o := range orders {
			batch = append(batch, o)
			if len(batch) == batchSize || i == len(orders)-1 {
				if err := tx.Create(&batch).Error; err != nil {
					return fmt.Errorf("insert batch ending at %s: %w", o.OrderID, err)
				}
				batch = batch[:0]
			}
		}
		return nil
	})
	if err != nil {
		return apperrors.NewStorageError("save orders", err).WithContext("orders", len(orders))
	}
	return nil
}

// CountOrders returns the number of stored orders.
func CountOrders(ctx context.Context, gdb *gorm.DB) (int64, error) {
	var n int64
	if err := gdb.WithContext(ctx).Model(&data.Order{}).Count(&n).Error; err != nil {
		return 0, apperrors.NewStorageError("count orders", err)
	}
	return n, nil
}
