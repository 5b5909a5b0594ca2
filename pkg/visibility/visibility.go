package visibility

import (
	"github.com/Abhinav0406/dineplus-backend/pkg/db/models"
	"github.com/Abhinav0406/dineplus-backend/pkg/enums"
)

// KitchenVisible reports whether an order may appear in kitchen-facing
// views. A staged order stays invisible until finalize flips IsFinalized,
// regardless of its persisted kitchen status; everything else is visible.
// This is a pure function of persisted order metadata, not a stored field.
func KitchenVisible(order *models.Order) bool {
	if order == nil {
		return false
	}
	if order.IsStaged && !order.IsFinalized {
		return false
	}
	return true
}

// ActiveQueueStatuses are the kitchen statuses that demand preparation work.
// Listings combine this set with KitchenVisible.
func ActiveQueueStatuses() []enums.OrderStatus {
	return []enums.OrderStatus{
		enums.OrderStatusPending,
		enums.OrderStatusPreparing,
		enums.OrderStatusReady,
	}
}

// FilterKitchenVisible returns only the orders the kitchen may act on.
func FilterKitchenVisible(orders []models.Order) []models.Order {
	visible := make([]models.Order, 0, len(orders))
	for i := range orders {
		if KitchenVisible(&orders[i]) {
			visible = append(visible, orders[i])
		}
	}
	return visible
}
