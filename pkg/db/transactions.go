package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// TxFn is a function that executes in a transaction
type TxFn func(tx *gorm.DB) error

// withTransactionDB runs a transaction on the provided DB instance
func withTransactionDB(db *gorm.DB, ctx context.Context, fn TxFn) error {
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r) // re-throw panic after rollback
		}
	}()

	// Execute the function within the transaction
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	// Commit the transaction
	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
