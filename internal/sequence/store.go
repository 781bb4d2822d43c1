package sequence

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// upsertSerialQuery increments the (scope, date_key) row atomically. The
// first caller of a day inserts the row with serial 1; every later caller
// bumps it. The conflicting update takes a row lock, so no two callers ever
// observe the same serial. CURRENT_TIMESTAMP keeps the statement valid on
// both the postgres and sqlite drivers.
const upsertSerialQuery = `
INSERT INTO number_sequences (scope, date_key, last_serial, updated_at)
VALUES (?, ?, 1, CURRENT_TIMESTAMP)
ON CONFLICT (scope, date_key)
DO UPDATE SET last_serial = number_sequences.last_serial + 1, updated_at = CURRENT_TIMESTAMP
RETURNING last_serial
`

// GormStore persists sequence counters in the number_sequences table.
type GormStore struct{}

// NewGormStore returns the table-backed sequence store.
func NewGormStore() *GormStore {
	return &GormStore{}
}

// NextSerial advances the counter inside the caller's transaction.
func (s *GormStore) NextSerial(ctx context.Context, tx *gorm.DB, scope Scope, dateKey string) (int64, error) {
	if tx == nil {
		return 0, fmt.Errorf("transaction required")
	}

	var serial int64
	err := tx.WithContext(ctx).
		Raw(upsertSerialQuery, string(scope), dateKey).
		Scan(&serial).Error
	if err != nil {
		return 0, fmt.Errorf("upsert number sequence: %w", err)
	}
	return serial, nil
}
