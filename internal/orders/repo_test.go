package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Abhinav0406/dineplus-backend/pkg/db/models"
	"github.com/Abhinav0406/dineplus-backend/pkg/enums"
	"github.com/Abhinav0406/dineplus-backend/pkg/pagination"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	ordersDDL := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_number TEXT NOT NULL UNIQUE,
  table_id TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  is_staged INTEGER NOT NULL DEFAULT 0,
  current_stage TEXT,
  is_finalized INTEGER NOT NULL DEFAULT 0,
  subtotal NUMERIC NOT NULL DEFAULT 0,
  tax_amount NUMERIC NOT NULL DEFAULT 0,
  total_amount NUMERIC NOT NULL DEFAULT 0,
  special_instructions TEXT,
  payment_method TEXT,
  payment_status TEXT NOT NULL DEFAULT 'pending',
  estimated_minutes INTEGER NOT NULL DEFAULT 25,
  finalized_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	itemsDDL := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  menu_item_id TEXT NOT NULL,
  name TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_price NUMERIC NOT NULL,
  total_price NUMERIC NOT NULL,
  stage TEXT,
  notes TEXT,
  created_at DATETIME
);`

	require.NoError(t, db.Exec(ordersDDL).Error)
	require.NoError(t, db.Exec(itemsDDL).Error)
	require.NoError(t, db.Exec("DELETE FROM order_items").Error)
	require.NoError(t, db.Exec("DELETE FROM orders").Error)
	return db
}

func seedOrder(t *testing.T, repo Repository, mutate func(*models.Order)) *models.Order {
	t.Helper()
	order := &models.Order{
		ID:          uuid.New(),
		OrderNumber: "ORD" + uuid.NewString()[:8],
		Status:      enums.OrderStatusPending,
		Subtotal:    decimal.Zero,
		TaxAmount:   decimal.Zero,
		TotalAmount: decimal.Zero,
	}
	if mutate != nil {
		mutate(order)
	}
	created, err := repo.CreateOrder(context.Background(), order)
	require.NoError(t, err)
	return created
}

func TestRepositoryCreateAndFindWithItems(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := seedOrder(t, repo, nil)

	stage := enums.StageStarters
	items := []models.OrderItem{
		{
			OrderID:    order.ID,
			MenuItemID: uuid.New(),
			Name:       "Paneer Tikka",
			Quantity:   2,
			UnitPrice:  decimal.NewFromInt(100),
			TotalPrice: decimal.NewFromInt(200),
			Stage:      &stage,
		},
	}
	require.NoError(t, repo.InsertOrderItems(ctx, items))

	found, err := repo.FindOrderWithItems(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "Paneer Tikka", found.Items[0].Name)
	require.NotNil(t, found.Items[0].Stage)
	assert.Equal(t, enums.StageStarters, *found.Items[0].Stage)
}

func TestRepositoryFindOrderNotFound(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	_, err := repo.FindOrder(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRepositoryFinalizeOrderIsOneWay(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	stage := enums.StageDesserts
	order := seedOrder(t, repo, func(o *models.Order) {
		o.IsStaged = true
		o.CurrentStage = &stage
	})

	now := time.Now().UTC()
	ok, err := repo.FinalizeOrder(ctx, order.ID, map[string]any{
		"current_stage": enums.StageFinalized,
		"finalized_at":  now,
	})
	require.NoError(t, err)
	assert.True(t, ok)

	// A second finalize must not report success.
	ok, err = repo.FinalizeOrder(ctx, order.ID, map[string]any{
		"finalized_at": now.Add(time.Minute),
	})
	require.NoError(t, err)
	assert.False(t, ok)

	found, err := repo.FindOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, found.IsFinalized)
	require.NotNil(t, found.CurrentStage)
	assert.Equal(t, enums.StageFinalized, *found.CurrentStage)
}

func TestRepositoryKitchenQueueHidesUnfinalizedStaged(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	visible := seedOrder(t, repo, nil)
	stage := enums.StageMainCourse
	seedOrder(t, repo, func(o *models.Order) {
		o.IsStaged = true
		o.CurrentStage = &stage
	})
	finalizedStage := enums.StageFinalized
	finalized := seedOrder(t, repo, func(o *models.Order) {
		o.IsStaged = true
		o.IsFinalized = true
		o.CurrentStage = &finalizedStage
	})
	seedOrder(t, repo, func(o *models.Order) {
		o.Status = enums.OrderStatusCompleted
	})

	queue, err := repo.ListKitchenQueue(ctx)
	require.NoError(t, err)
	require.Len(t, queue, 2)

	ids := []uuid.UUID{queue[0].ID, queue[1].ID}
	assert.Contains(t, ids, visible.ID)
	assert.Contains(t, ids, finalized.ID)
}

func TestRepositoryFindUnfinalizedStagedByTable(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	tableID := uuid.New()
	stage := enums.StageStarters
	staged := seedOrder(t, repo, func(o *models.Order) {
		o.TableID = &tableID
		o.IsStaged = true
		o.CurrentStage = &stage
	})

	found, err := repo.FindUnfinalizedStagedByTable(ctx, tableID)
	require.NoError(t, err)
	assert.Equal(t, staged.ID, found.ID)

	// Cancelled sessions no longer block the table.
	require.NoError(t, repo.UpdateOrder(ctx, staged.ID, map[string]any{"status": enums.OrderStatusCancelled}))
	_, err = repo.FindUnfinalizedStagedByTable(ctx, tableID)
	require.Error(t, err)
}

func TestRepositoryFindStaleStagedOrders(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	stage := enums.StageStarters
	stale := seedOrder(t, repo, func(o *models.Order) {
		o.IsStaged = true
		o.CurrentStage = &stage
	})
	fresh := seedOrder(t, repo, func(o *models.Order) {
		o.IsStaged = true
		o.CurrentStage = &stage
	})

	old := time.Now().UTC().Add(-6 * time.Hour)
	require.NoError(t, db.Model(&models.Order{}).
		Where("id = ?", stale.ID).
		Update("updated_at", old).Error)

	cutoff := time.Now().UTC().Add(-4 * time.Hour)
	found, err := repo.FindStaleStagedOrders(ctx, cutoff)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, stale.ID, found[0].ID)
	assert.NotEqual(t, fresh.ID, found[0].ID)
}

func TestRepositoryListOrdersFilters(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	tableID := uuid.New()
	mine := seedOrder(t, repo, func(o *models.Order) {
		o.TableID = &tableID
	})
	seedOrder(t, repo, nil)

	list, err := repo.ListOrders(ctx, Filters{TableID: &tableID}, pagination.Params{Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mine.ID, list[0].ID)

	completed := enums.OrderStatusCompleted
	list, err = repo.ListOrders(ctx, Filters{Status: &completed}, pagination.Params{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRepositorySummarize(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seedOrder(t, repo, func(o *models.Order) {
		o.Status = enums.OrderStatusCompleted
		o.TotalAmount = decimal.NewFromInt(472)
	})
	seedOrder(t, repo, func(o *models.Order) {
		o.Status = enums.OrderStatusCompleted
		o.TotalAmount = decimal.NewFromInt(236)
	})
	seedOrder(t, repo, func(o *models.Order) {
		o.Status = enums.OrderStatusCancelled
	})

	from := time.Now().UTC().Add(-time.Hour)
	to := time.Now().UTC().Add(time.Hour)
	summary, err := repo.Summarize(ctx, from, to)
	require.NoError(t, err)

	assert.Equal(t, int64(3), summary.TotalOrders)
	assert.Equal(t, int64(2), summary.CompletedOrders)
	assert.Equal(t, int64(1), summary.CancelledOrders)
	assert.True(t, summary.TotalRevenue.Equal(decimal.NewFromInt(708)), summary.TotalRevenue.String())
	assert.True(t, summary.AverageOrder.Equal(decimal.NewFromInt(354)), summary.AverageOrder.String())
}
