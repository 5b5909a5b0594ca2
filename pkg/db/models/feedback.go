package models

import (
	"time"

	"github.com/google/uuid"
)

// Feedback captures a customer rating attached to a completed order.
type Feedback struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        *uuid.UUID `gorm:"column:order_id;type:uuid;index"`
	Rating         int        `gorm:"column:rating;not null"`
	ServiceRating  *int       `gorm:"column:service_rating"`
	FoodRating     *int       `gorm:"column:food_rating"`
	AmbianceRating *int       `gorm:"column:ambiance_rating"`
	Comment        *string    `gorm:"column:comment"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
}

// TableName pins the singular-collective name the original schema used.
func (Feedback) TableName() string {
	return "feedback"
}
