package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Abhinav0406/dineplus-backend/pkg/enums"
)

// Table is a physical dining table customers bind sessions to.
type Table struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TableNumber int               `gorm:"column:table_number;not null;uniqueIndex"`
	Capacity    int               `gorm:"column:capacity;not null;default:4"`
	Status      enums.TableStatus `gorm:"column:status;type:text;not null;default:'available'"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the plural to match the migrations.
func (Table) TableName() string {
	return "tables"
}
