package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/stockroomhq/stockroom-backend/pkg/enums"
)

// Customer is looked up or created by phone when a draft or invoice names one.
// Referenced customers are never deleted.
type Customer struct {
	ID        uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string               `gorm:"column:name;not null"`
	Phone     string               `gorm:"column:phone;not null;uniqueIndex"`
	Status    enums.CustomerStatus `gorm:"column:status;type:text;not null;default:'active'"`
	CreatedAt time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
