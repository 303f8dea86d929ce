package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// WithTransaction runs fn in a transaction bound to ctx. It commits when fn
// returns nil and rolls back otherwise. The returned error is passed through
// MapGormError, so callers can test it with IsDuplicate or IsForeignKey.
func (db *DB) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if err := db.DB.WithContext(ctx).Transaction(fn); err != nil {
		return fmt.Errorf("transaction rolled back: %w", MapGormError(err))
	}
	return nil
}
