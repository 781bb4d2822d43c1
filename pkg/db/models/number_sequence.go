package models

import "time"

// NumberSequence backs the day-scoped document numbering. One row per
// (scope, date_key); last_serial advances with an atomic upsert so multiple
// service instances stay consistent without in-process counters.
type NumberSequence struct {
	Scope      string    `gorm:"column:scope;primaryKey"`
	DateKey    string    `gorm:"column:date_key;primaryKey"`
	LastSerial int64     `gorm:"column:last_serial;not null;default:0"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName overrides GORM's default pluralization.
func (NumberSequence) TableName() string {
	return "number_sequences"
}
