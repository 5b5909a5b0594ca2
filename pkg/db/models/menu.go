package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MenuCategory groups menu items; stage pages on the client map onto
// category names, the backend only stores the grouping.
type MenuCategory struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null;uniqueIndex"`
	SortOrder int       `gorm:"column:sort_order;not null;default:0"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// MenuItem is a sellable dish.
type MenuItem struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CategoryID   *uuid.UUID      `gorm:"column:category_id;type:uuid;index"`
	Name         string          `gorm:"column:name;not null"`
	Description  *string         `gorm:"column:description"`
	Price        decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	ImageURL     *string         `gorm:"column:image_url"`
	IsAvailable  bool            `gorm:"column:is_available;not null;default:true"`
	IsVegetarian bool            `gorm:"column:is_vegetarian;not null;default:false"`
	IsSpicy      bool            `gorm:"column:is_spicy;not null;default:false"`
	PrepMinutes  int             `gorm:"column:prep_minutes;not null;default:15"`
	SortOrder    int             `gorm:"column:sort_order;not null;default:0"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
