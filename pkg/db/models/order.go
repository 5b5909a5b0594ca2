package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Abhinav0406/dineplus-backend/pkg/enums"
)

// Order is the durable record of a customer order. Staging metadata
// (IsStaged/CurrentStage/IsFinalized) is orthogonal to the kitchen-facing
// Status: an unfinalized staged order keeps a row here but stays out of
// kitchen queues until finalize flips IsFinalized.
type Order struct {
	ID                  uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber         string               `gorm:"column:order_number;not null;uniqueIndex"`
	TableID             *uuid.UUID           `gorm:"column:table_id;type:uuid"`
	Status              enums.OrderStatus    `gorm:"column:status;type:text;not null;default:'pending'"`
	IsStaged            bool                 `gorm:"column:is_staged;not null;default:false"`
	CurrentStage        *enums.OrderStage    `gorm:"column:current_stage;type:text"`
	IsFinalized         bool                 `gorm:"column:is_finalized;not null;default:false"`
	Subtotal            decimal.Decimal      `gorm:"column:subtotal;type:numeric(10,2);not null"`
	TaxAmount           decimal.Decimal      `gorm:"column:tax_amount;type:numeric(10,2);not null"`
	TotalAmount         decimal.Decimal      `gorm:"column:total_amount;type:numeric(10,2);not null"`
	SpecialInstructions *string              `gorm:"column:special_instructions"`
	PaymentMethod       *enums.PaymentMethod `gorm:"column:payment_method;type:text"`
	PaymentStatus       enums.PaymentStatus  `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	EstimatedMinutes    int                  `gorm:"column:estimated_minutes;not null;default:25"`
	Items               []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	FinalizedAt         *time.Time           `gorm:"column:finalized_at"`
	CreatedAt           time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
