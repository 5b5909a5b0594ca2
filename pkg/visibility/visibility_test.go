package visibility

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Abhinav0406/dineplus-backend/pkg/db/models"
	"github.com/Abhinav0406/dineplus-backend/pkg/enums"
)

func stagePtr(s enums.OrderStage) *enums.OrderStage { return &s }

func TestKitchenVisible(t *testing.T) {
	cases := []struct {
		name    string
		order   *models.Order
		visible bool
	}{
		{
			name:    "nil order",
			order:   nil,
			visible: false,
		},
		{
			name: "regular order",
			order: &models.Order{
				Status: enums.OrderStatusPending,
			},
			visible: true,
		},
		{
			name: "staged unfinalized stays hidden",
			order: &models.Order{
				Status:       enums.OrderStatusPending,
				IsStaged:     true,
				CurrentStage: stagePtr(enums.StageMainCourse),
			},
			visible: false,
		},
		{
			name: "staged finalized becomes visible",
			order: &models.Order{
				Status:       enums.OrderStatusPending,
				IsStaged:     true,
				IsFinalized:  true,
				CurrentStage: stagePtr(enums.StageFinalized),
			},
			visible: true,
		},
		{
			name: "cancelled regular order is still visible to status views",
			order: &models.Order{
				Status: enums.OrderStatusCancelled,
			},
			visible: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.visible, KitchenVisible(tc.order))
		})
	}
}

func TestFilterKitchenVisible(t *testing.T) {
	orders := []models.Order{
		{OrderNumber: "ORD1", Status: enums.OrderStatusPending},
		{OrderNumber: "STG1", Status: enums.OrderStatusPending, IsStaged: true},
		{OrderNumber: "STG2", Status: enums.OrderStatusPending, IsStaged: true, IsFinalized: true},
	}

	visible := FilterKitchenVisible(orders)
	assert.Len(t, visible, 2)
	assert.Equal(t, "ORD1", visible[0].OrderNumber)
	assert.Equal(t, "STG2", visible[1].OrderNumber)
}

func TestActiveQueueStatuses(t *testing.T) {
	statuses := ActiveQueueStatuses()
	assert.Equal(t, []enums.OrderStatus{
		enums.OrderStatusPending,
		enums.OrderStatusPreparing,
		enums.OrderStatusReady,
	}, statuses)
}
