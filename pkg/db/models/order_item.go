package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Abhinav0406/dineplus-backend/pkg/enums"
)

// OrderItem is the persisted snapshot of one line within an order. Stage is
// set for items flushed from a staged session (items from different stages
// coexist in one order) and nil for regular orders.
type OrderItem struct {
	ID         uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID    uuid.UUID         `gorm:"column:order_id;type:uuid;not null;index"`
	MenuItemID uuid.UUID         `gorm:"column:menu_item_id;type:uuid;not null"`
	Name       string            `gorm:"column:name;not null"`
	Quantity   int               `gorm:"column:quantity;not null"`
	UnitPrice  decimal.Decimal   `gorm:"column:unit_price;type:numeric(10,2);not null"`
	TotalPrice decimal.Decimal   `gorm:"column:total_price;type:numeric(10,2);not null"`
	Stage      *enums.OrderStage `gorm:"column:stage;type:text"`
	Notes      *string           `gorm:"column:notes"`
	CreatedAt  time.Time         `gorm:"column:created_at;autoCreateTime"`
}
