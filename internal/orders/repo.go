package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Abhinav0406/dineplus-backend/pkg/db/models"
	"github.com/Abhinav0406/dineplus-backend/pkg/enums"
	"github.com/Abhinav0406/dineplus-backend/pkg/errors"
	"github.com/Abhinav0406/dineplus-backend/pkg/pagination"
	"github.com/Abhinav0406/dineplus-backend/pkg/visibility"
)

// Filters narrows ListOrders. Nil fields are ignored.
type Filters struct {
	TableID     *uuid.UUID
	Status      *enums.OrderStatus
	IsStaged    *bool
	KitchenOnly bool
}

// Summary aggregates completed revenue and order counts for a window.
type Summary struct {
	TotalOrders     int64           `json:"total_orders"`
	CompletedOrders int64           `json:"completed_orders"`
	CancelledOrders int64           `json:"cancelled_orders"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	AverageOrder    decimal.Decimal `json:"average_order"`
}

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindOrderWithItems(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByOrderNumber(ctx context.Context, number string) (*models.Order, error)
	UpdateOrder(ctx context.Context, id uuid.UUID, updates map[string]any) error
	FinalizeOrder(ctx context.Context, id uuid.UUID, updates map[string]any) (bool, error)

	InsertOrderItems(ctx context.Context, items []models.OrderItem) error
	ListOrderItems(ctx context.Context, orderID uuid.UUID, stage *enums.OrderStage) ([]models.OrderItem, error)

	ListOrders(ctx context.Context, filters Filters, params pagination.Params) ([]models.Order, error)
	ListKitchenQueue(ctx context.Context) ([]models.Order, error)
	FindUnfinalizedStagedByTable(ctx context.Context, tableID uuid.UUID) (*models.Order, error)
	FindStaleStagedOrders(ctx context.Context, cutoff time.Time) ([]models.Order, error)

	Summarize(ctx context.Context, from, to time.Time) (*Summary, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "create order")
	}
	return order, nil
}

func (r *repository) FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "order not found")
		}
		return nil, errors.Wrap(errors.CodeDependency, err, "find order")
	}
	return &order, nil
}

func (r *repository) FindOrderWithItems(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "order not found")
		}
		return nil, errors.Wrap(errors.CodeDependency, err, "find order with items")
	}
	return &order, nil
}

func (r *repository) FindByOrderNumber(ctx context.Context, number string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "order_number = ?", number).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "order not found")
		}
		return nil, errors.Wrap(errors.CodeDependency, err, "find order by number")
	}
	return &order, nil
}

func (r *repository) UpdateOrder(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return errors.Wrap(errors.CodeDependency, res.Error, "update order")
	}
	if res.RowsAffected == 0 {
		return errors.New(errors.CodeNotFound, "order not found")
	}
	return nil
}

// FinalizeOrder flips is_finalized exactly once. The guard on the current
// value makes concurrent finalize calls race-safe: exactly one caller sees
// rows affected.
func (r *repository) FinalizeOrder(ctx context.Context, id uuid.UUID, updates map[string]any) (bool, error) {
	updates["is_finalized"] = true
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND is_finalized = ?", id, false).
		Updates(updates)
	if res.Error != nil {
		return false, errors.Wrap(errors.CodeDependency, res.Error, "finalize order")
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) InsertOrderItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
	}
	if err := r.db.WithContext(ctx).Create(&items).Error; err != nil {
		return errors.Wrap(errors.CodeDependency, err, "insert order items")
	}
	return nil
}

func (r *repository) ListOrderItems(ctx context.Context, orderID uuid.UUID, stage *enums.OrderStage) ([]models.OrderItem, error) {
	q := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC")
	if stage != nil {
		q = q.Where("stage = ?", *stage)
	}
	var items []models.OrderItem
	if err := q.Find(&items).Error; err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "list order items")
	}
	return items, nil
}

func (r *repository) ListOrders(ctx context.Context, filters Filters, params pagination.Params) ([]models.Order, error) {
	q := r.db.WithContext(ctx).Model(&models.Order{}).Preload("Items")

	if filters.TableID != nil {
		q = q.Where("table_id = ?", *filters.TableID)
	}
	if filters.Status != nil {
		q = q.Where("status = ?", *filters.Status)
	}
	if filters.IsStaged != nil {
		q = q.Where("is_staged = ?", *filters.IsStaged)
	}
	if filters.KitchenOnly {
		q = q.Where("NOT (is_staged = ? AND is_finalized = ?)", true, false)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, errors.Wrap(errors.CodeValidation, err, "parse cursor")
	}
	if cursor != nil {
		q = q.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}
	q = q.Order("created_at DESC, id DESC").Limit(pagination.NormalizeLimit(params.Limit))

	var rows []models.Order
	if err := q.Find(&rows).Error; err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "list orders")
	}
	return rows, nil
}

// ListKitchenQueue returns kitchen-visible orders in the active statuses,
// oldest first. Staged orders that have not been finalized are excluded at
// the query level so the kitchen never sees in-progress compositions.
func (r *repository) ListKitchenQueue(ctx context.Context) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("status IN ?", activeStatusStrings()).
		Where("NOT (is_staged = ? AND is_finalized = ?)", true, false).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "list kitchen queue")
	}
	return rows, nil
}

func (r *repository) FindUnfinalizedStagedByTable(ctx context.Context, tableID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("table_id = ? AND is_staged = ? AND is_finalized = ?", tableID, true, false).
		Where("status <> ?", enums.OrderStatusCancelled).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "no staged order for table")
		}
		return nil, errors.Wrap(errors.CodeDependency, err, "find staged order by table")
	}
	return &order, nil
}

func (r *repository) FindStaleStagedOrders(ctx context.Context, cutoff time.Time) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Where("is_staged = ? AND is_finalized = ?", true, false).
		Where("status <> ?", enums.OrderStatusCancelled).
		Where("updated_at < ?", cutoff).
		Order("updated_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "find stale staged orders")
	}
	return rows, nil
}

func (r *repository) Summarize(ctx context.Context, from, to time.Time) (*Summary, error) {
	base := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Where("NOT (is_staged = ? AND is_finalized = ?)", true, false)

	summary := &Summary{
		TotalRevenue: decimal.Zero,
		AverageOrder: decimal.Zero,
	}
	if err := base.Session(&gorm.Session{}).Count(&summary.TotalOrders).Error; err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "count orders")
	}
	if err := base.Session(&gorm.Session{}).
		Where("status = ?", enums.OrderStatusCompleted).
		Count(&summary.CompletedOrders).Error; err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "count completed orders")
	}
	if err := base.Session(&gorm.Session{}).
		Where("status = ?", enums.OrderStatusCancelled).
		Count(&summary.CancelledOrders).Error; err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "count cancelled orders")
	}

	var revenue struct {
		Total decimal.NullDecimal
	}
	err := base.Session(&gorm.Session{}).
		Where("status = ?", enums.OrderStatusCompleted).
		Select("SUM(total_amount) AS total").
		Scan(&revenue).Error
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "sum revenue")
	}
	if revenue.Total.Valid {
		summary.TotalRevenue = revenue.Total.Decimal
	}
	if summary.CompletedOrders > 0 {
		summary.AverageOrder = summary.TotalRevenue.
			Div(decimal.NewFromInt(summary.CompletedOrders)).
			Round(2)
	}
	return summary, nil
}

func activeStatusStrings() []string {
	active := visibility.ActiveQueueStatuses()
	out := make([]string, 0, len(active))
	for _, s := range active {
		out = append(out, s.String())
	}
	return out
}
