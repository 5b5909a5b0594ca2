package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Abhinav0406/dineplus-backend/pkg/db/models"
	"github.com/Abhinav0406/dineplus-backend/pkg/enums"
	"github.com/Abhinav0406/dineplus-backend/pkg/errors"
	"github.com/Abhinav0406/dineplus-backend/pkg/logger"
	"github.com/Abhinav0406/dineplus-backend/pkg/pagination"
	"github.com/Abhinav0406/dineplus-backend/pkg/visibility"
)

const defaultEstimatedMinutes = 25

// Kitchen statuses advance strictly forward. Cancellation is reachable from
// any non-terminal status except served.
var allowedTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending:   {enums.OrderStatusPreparing, enums.OrderStatusCancelled},
	enums.OrderStatusPreparing: {enums.OrderStatusReady, enums.OrderStatusCancelled},
	enums.OrderStatusReady:     {enums.OrderStatusServed, enums.OrderStatusCancelled},
	enums.OrderStatusServed:    {enums.OrderStatusCompleted},
}

type NewOrderItem struct {
	MenuItemID uuid.UUID `json:"menu_item_id" validate:"required"`
	Quantity   int       `json:"quantity" validate:"required,gt=0"`
	Notes      *string   `json:"notes,omitempty"`
}

type CreateOrderParams struct {
	TableID             *uuid.UUID           `json:"table_id,omitempty"`
	Items               []NewOrderItem       `json:"items" validate:"required,min=1,dive"`
	SpecialInstructions *string              `json:"special_instructions,omitempty"`
	PaymentMethod       *enums.PaymentMethod `json:"payment_method,omitempty"`
}

type UpdatePaymentParams struct {
	PaymentMethod *enums.PaymentMethod `json:"payment_method,omitempty"`
	PaymentStatus enums.PaymentStatus  `json:"payment_status" validate:"required"`
}

type Service interface {
	CreateOrder(ctx context.Context, params CreateOrderParams) (*models.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetOrderByNumber(ctx context.Context, number string) (*models.Order, error)
	ListOrders(ctx context.Context, filters Filters, params pagination.Params) ([]models.Order, error)
	KitchenQueue(ctx context.Context) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, next enums.OrderStatus) (*models.Order, error)
	UpdatePayment(ctx context.Context, id uuid.UUID, params UpdatePaymentParams) (*models.Order, error)
	Summarize(ctx context.Context, from, to time.Time) (*Summary, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type menuStore interface {
	FindItem(ctx context.Context, id uuid.UUID) (*models.MenuItem, error)
}

type tableStore interface {
	FindTable(ctx context.Context, id uuid.UUID) (*models.Table, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.TableStatus) error
}

type Params struct {
	Repo   Repository
	Menu   menuStore
	Tables tableStore
	Tx     txRunner
	Logger *logger.Logger
	Now    func() time.Time
}

type service struct {
	repo   Repository
	menu   menuStore
	tables tableStore
	tx     txRunner
	logg   *logger.Logger
	now    func() time.Time
}

func NewService(params Params) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders service requires a repository")
	}
	if params.Menu == nil {
		return nil, fmt.Errorf("orders service requires a menu store")
	}
	if params.Tables == nil {
		return nil, fmt.Errorf("orders service requires a table store")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("orders service requires a transaction runner")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("orders service requires a logger")
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &service{
		repo:   params.Repo,
		menu:   params.Menu,
		tables: params.Tables,
		tx:     params.Tx,
		logg:   params.Logger,
		now:    params.Now,
	}, nil
}

// CreateOrder persists a regular, immediately kitchen-visible order. Item
// names and prices come from the menu, never from the caller.
func (s *service) CreateOrder(ctx context.Context, params CreateOrderParams) (*models.Order, error) {
	if len(params.Items) == 0 {
		return nil, errors.New(errors.CodeValidation, "order requires at least one item")
	}

	if params.TableID != nil {
		if _, err := s.tables.FindTable(ctx, *params.TableID); err != nil {
			if errors.HasCode(err, errors.CodeNotFound) {
				return nil, errors.New(errors.CodeInvalidTable, "table does not exist")
			}
			return nil, err
		}
	}

	now := s.now()
	items, subtotal, estimate, err := s.resolveItems(ctx, params.Items, nil)
	if err != nil {
		return nil, err
	}

	tax := ComputeTax(subtotal)
	order := &models.Order{
		ID:                  uuid.New(),
		OrderNumber:         OrderNumber("ORD", now),
		TableID:             params.TableID,
		Status:              enums.OrderStatusPending,
		Subtotal:            subtotal,
		TaxAmount:           tax,
		TotalAmount:         subtotal.Add(tax),
		SpecialInstructions: params.SpecialInstructions,
		PaymentMethod:       params.PaymentMethod,
		PaymentStatus:       enums.PaymentStatusPending,
		EstimatedMinutes:    estimate,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		created, err := repo.CreateOrder(ctx, order)
		if err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = created.ID
		}
		return repo.InsertOrderItems(ctx, items)
	})
	if err != nil {
		return nil, err
	}

	if params.TableID != nil {
		if err := s.tables.UpdateStatus(ctx, *params.TableID, enums.TableStatusOccupied); err != nil {
			s.logg.Warn(s.logg.WithOrderID(ctx, order.ID.String()), "order created but table status update failed")
		}
	}

	ctx = s.logg.WithOrderID(ctx, order.ID.String())
	s.logg.Info(ctx, "order created")
	return s.repo.FindOrderWithItems(ctx, order.ID)
}

func (s *service) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.repo.FindOrderWithItems(ctx, id)
}

func (s *service) GetOrderByNumber(ctx context.Context, number string) (*models.Order, error) {
	return s.repo.FindByOrderNumber(ctx, number)
}

func (s *service) ListOrders(ctx context.Context, filters Filters, params pagination.Params) ([]models.Order, error) {
	return s.repo.ListOrders(ctx, filters, params)
}

// KitchenQueue applies the visibility predicate on top of the repository
// filter so a stale row can never leak an in-progress composition.
func (s *service) KitchenQueue(ctx context.Context) ([]models.Order, error) {
	rows, err := s.repo.ListKitchenQueue(ctx)
	if err != nil {
		return nil, err
	}
	return visibility.FilterKitchenVisible(rows), nil
}

func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, next enums.OrderStatus) (*models.Order, error) {
	if !next.IsValid() {
		return nil, errors.New(errors.CodeValidation, "unknown order status").
			WithDetails(map[string]string{"status": next.String()})
	}

	order, err := s.repo.FindOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !visibility.KitchenVisible(order) {
		return nil, errors.New(errors.CodeStateConflict, "order is still being composed")
	}
	if !transitionAllowed(order.Status, next) {
		return nil, errors.New(errors.CodeStateConflict, "status transition not allowed").
			WithDetails(map[string]string{
				"from": order.Status.String(),
				"to":   next.String(),
			})
	}

	if err := s.repo.UpdateOrder(ctx, id, map[string]any{"status": next}); err != nil {
		return nil, err
	}

	if next.IsTerminal() && order.TableID != nil {
		if err := s.tables.UpdateStatus(ctx, *order.TableID, enums.TableStatusAvailable); err != nil {
			s.logg.Warn(s.logg.WithOrderID(ctx, id.String()), "table release failed after terminal status")
		}
	}

	ctx = s.logg.WithOrderID(ctx, id.String())
	s.logg.Info(ctx, "order status updated")
	return s.repo.FindOrderWithItems(ctx, id)
}

func (s *service) UpdatePayment(ctx context.Context, id uuid.UUID, params UpdatePaymentParams) (*models.Order, error) {
	if !params.PaymentStatus.IsValid() {
		return nil, errors.New(errors.CodeValidation, "unknown payment status")
	}
	updates := map[string]any{"payment_status": params.PaymentStatus}
	if params.PaymentMethod != nil {
		if !params.PaymentMethod.IsValid() {
			return nil, errors.New(errors.CodeValidation, "unknown payment method")
		}
		updates["payment_method"] = *params.PaymentMethod
	}
	if err := s.repo.UpdateOrder(ctx, id, updates); err != nil {
		return nil, err
	}
	return s.repo.FindOrderWithItems(ctx, id)
}

func (s *service) Summarize(ctx context.Context, from, to time.Time) (*Summary, error) {
	if !to.After(from) {
		return nil, errors.New(errors.CodeValidation, "summary window must end after it starts")
	}
	return s.repo.Summarize(ctx, from, to)
}

// resolveItems loads menu rows for the requested items and returns order
// item rows, the subtotal, and the preparation estimate.
func (s *service) resolveItems(ctx context.Context, requested []NewOrderItem, stage *enums.OrderStage) ([]models.OrderItem, decimal.Decimal, int, error) {
	items := make([]models.OrderItem, 0, len(requested))
	subtotal := decimal.Zero
	estimate := defaultEstimatedMinutes

	for _, req := range requested {
		if req.Quantity <= 0 {
			return nil, decimal.Zero, 0, errors.New(errors.CodeValidation, "item quantity must be positive")
		}
		menuItem, err := s.menu.FindItem(ctx, req.MenuItemID)
		if err != nil {
			if errors.HasCode(err, errors.CodeNotFound) {
				return nil, decimal.Zero, 0, errors.New(errors.CodeValidation, "menu item does not exist").
					WithDetails(map[string]string{"menu_item_id": req.MenuItemID.String()})
			}
			return nil, decimal.Zero, 0, err
		}
		if !menuItem.IsAvailable {
			return nil, decimal.Zero, 0, errors.New(errors.CodeValidation, "menu item is unavailable").
				WithDetails(map[string]string{"menu_item_id": req.MenuItemID.String()})
		}

		lineTotal := menuItem.Price.Mul(decimal.NewFromInt(int64(req.Quantity)))
		subtotal = subtotal.Add(lineTotal)
		if menuItem.PrepMinutes > estimate {
			estimate = menuItem.PrepMinutes
		}
		items = append(items, models.OrderItem{
			ID:         uuid.New(),
			MenuItemID: menuItem.ID,
			Name:       menuItem.Name,
			Quantity:   req.Quantity,
			UnitPrice:  menuItem.Price,
			TotalPrice: lineTotal,
			Stage:      stage,
			Notes:      req.Notes,
		})
	}
	return items, subtotal, estimate, nil
}

func transitionAllowed(from, to enums.OrderStatus) bool {
	for _, candidate := range allowedTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}
