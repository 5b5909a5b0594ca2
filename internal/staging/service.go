package staging

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Abhinav0406/dineplus-backend/internal/orders"
	"github.com/Abhinav0406/dineplus-backend/pkg/config"
	"github.com/Abhinav0406/dineplus-backend/pkg/db/models"
	"github.com/Abhinav0406/dineplus-backend/pkg/enums"
	"github.com/Abhinav0406/dineplus-backend/pkg/errors"
	"github.com/Abhinav0406/dineplus-backend/pkg/logger"
	"github.com/Abhinav0406/dineplus-backend/pkg/metrics"
)

type CreateSessionParams struct {
	TableID uuid.UUID `json:"table_id" validate:"required"`
}

type AddItemParams struct {
	Stage      enums.OrderStage `json:"stage" validate:"required"`
	MenuItemID uuid.UUID        `json:"menu_item_id" validate:"required"`
	Quantity   int              `json:"quantity" validate:"required,gt=0"`
	Notes      *string          `json:"notes,omitempty"`
}

type FinalizeParams struct {
	PaymentMethod       *enums.PaymentMethod `json:"payment_method,omitempty"`
	SpecialInstructions *string              `json:"special_instructions,omitempty"`
}

// Service drives the staged-order protocol: a session per table walking
// starters -> main_course -> desserts, flushing each stage's ledger into
// the order row, and a one-way finalize that makes the order visible to
// the kitchen.
type Service interface {
	CreateSession(ctx context.Context, params CreateSessionParams) (*Session, error)
	GetSession(ctx context.Context, orderID uuid.UUID) (*Session, error)

	AddItem(ctx context.Context, orderID uuid.UUID, params AddItemParams) (*Session, error)
	RemoveItem(ctx context.Context, orderID uuid.UUID, stage enums.OrderStage, menuItemID uuid.UUID) (*Session, error)
	SetQuantity(ctx context.Context, orderID uuid.UUID, stage enums.OrderStage, menuItemID uuid.UUID, quantity int) (*Session, error)
	ClearStage(ctx context.Context, orderID uuid.UUID, stage enums.OrderStage) (*Session, error)

	CommitStage(ctx context.Context, orderID uuid.UUID) (*Session, error)
	AdvanceStage(ctx context.Context, orderID uuid.UUID) (*Session, error)
	RetreatStage(ctx context.Context, orderID uuid.UUID) (*Session, error)

	Finalize(ctx context.Context, orderID uuid.UUID, params FinalizeParams) (*models.Order, error)
	AbandonSession(ctx context.Context, orderID uuid.UUID) error
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
	Repo    orders.Repository
	Menu    menuStore
	Tables  tableStore
	Tx      txRunner
	Cache   SessionCache
	Metrics *metrics.StagingMetrics
	Cfg     config.StagingConfig
	Logger  *logger.Logger
	Now     func() time.Time
}

type service struct {
	repo    orders.Repository
	menu    menuStore
	tables  tableStore
	tx      txRunner
	cache   SessionCache
	metrics *metrics.StagingMetrics
	cfg     config.StagingConfig
	logg    *logger.Logger
	now     func() time.Time
}

func NewService(params Params) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("staging service requires an order repository")
	}
	if params.Menu == nil {
		return nil, fmt.Errorf("staging service requires a menu store")
	}
	if params.Tables == nil {
		return nil, fmt.Errorf("staging service requires a table store")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("staging service requires a transaction runner")
	}
	if params.Cache == nil {
		return nil, fmt.Errorf("staging service requires a session cache")
	}
	if params.Metrics == nil {
		return nil, fmt.Errorf("staging service requires staging metrics")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("staging service requires a logger")
	}
	if params.Cfg.OrderNumberPrefix == "" {
		params.Cfg.OrderNumberPrefix = "STG"
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &service{
		repo:    params.Repo,
		menu:    params.Menu,
		tables:  params.Tables,
		tx:      params.Tx,
		cache:   params.Cache,
		metrics: params.Metrics,
		cfg:     params.Cfg,
		logg:    params.Logger,
		now:     params.Now,
	}, nil
}

// CreateSession opens a staged order bound to a table. One unfinalized
// session per table: the redis lock catches concurrent attempts and the
// store check catches sessions surviving a lock expiry.
func (s *service) CreateSession(ctx context.Context, params CreateSessionParams) (*Session, error) {
	if params.TableID == uuid.Nil {
		return nil, errors.New(errors.CodeInvalidTable, "table id is required")
	}
	if _, err := s.tables.FindTable(ctx, params.TableID); err != nil {
		if errors.HasCode(err, errors.CodeNotFound) {
			return nil, errors.New(errors.CodeInvalidTable, "table does not exist")
		}
		return nil, err
	}

	orderID := uuid.New()
	acquired, err := s.cache.AcquireTableLock(ctx, params.TableID, orderID)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, errors.New(errors.CodeConflict, "table already has an active session")
	}

	if _, err := s.repo.FindUnfinalizedStagedByTable(ctx, params.TableID); err == nil {
		_ = s.cache.ReleaseTableLock(ctx, params.TableID)
		return nil, errors.New(errors.CodeConflict, "table already has an unfinalized staged order")
	} else if !errors.HasCode(err, errors.CodeNotFound) {
		_ = s.cache.ReleaseTableLock(ctx, params.TableID)
		return nil, err
	}

	now := s.now()
	stage := enums.StageStarters
	order := &models.Order{
		ID:            orderID,
		OrderNumber:   orders.OrderNumber(s.cfg.OrderNumberPrefix, now),
		TableID:       &params.TableID,
		Status:        enums.OrderStatusPending,
		IsStaged:      true,
		CurrentStage:  &stage,
		PaymentStatus: enums.PaymentStatusPending,
	}
	if _, err := s.repo.CreateOrder(ctx, order); err != nil {
		_ = s.cache.ReleaseTableLock(ctx, params.TableID)
		return nil, err
	}

	if err := s.tables.UpdateStatus(ctx, params.TableID, enums.TableStatusOccupied); err != nil {
		s.logg.Warn(s.logg.WithTableID(ctx, params.TableID.String()), "session created but table status update failed")
	}

	session := NewSession(orderID, order.OrderNumber, params.TableID, now)
	if err := s.cache.Put(ctx, session); err != nil {
		// The shell row stays behind for the reclamation job; the lock is
		// released so the table is not stranded.
		_ = s.cache.ReleaseTableLock(ctx, params.TableID)
		return nil, err
	}

	ctx = s.logg.WithOrderID(s.logg.WithTableID(ctx, params.TableID.String()), orderID.String())
	s.logg.Info(ctx, "staged session created")
	return session, nil
}

// GetSession returns the cached session, rebuilding a best-effort shell
// from the order row when the cache entry expired. A rebuilt session loses
// only unflushed ledger lines.
func (s *service) GetSession(ctx context.Context, orderID uuid.UUID) (*Session, error) {
	session, err := s.cache.Get(ctx, orderID)
	if err == nil {
		return session, nil
	}
	if !errors.HasCode(err, errors.CodeNotFound) {
		return nil, err
	}

	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	session, err = rebuildSession(order)
	if err != nil {
		return nil, err
	}
	if !session.IsFinalized {
		if err := s.cache.Put(ctx, session); err != nil {
			return nil, err
		}
	}
	return session, nil
}

func (s *service) AddItem(ctx context.Context, orderID uuid.UUID, params AddItemParams) (*Session, error) {
	if params.Quantity <= 0 {
		return nil, errors.New(errors.CodeValidation, "quantity must be positive")
	}
	session, err := s.activeSession(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.requireCurrentStage(session, params.Stage); err != nil {
		return nil, err
	}

	menuItem, err := s.menu.FindItem(ctx, params.MenuItemID)
	if err != nil {
		if errors.HasCode(err, errors.CodeNotFound) {
			return nil, errors.New(errors.CodeValidation, "menu item does not exist").
				WithDetails(map[string]string{"menu_item_id": params.MenuItemID.String()})
		}
		return nil, err
	}
	if !menuItem.IsAvailable {
		return nil, errors.New(errors.CodeValidation, "menu item is unavailable").
			WithDetails(map[string]string{"menu_item_id": params.MenuItemID.String()})
	}

	session.Ledger.Add(params.Stage, Item{
		MenuItemID: menuItem.ID,
		Name:       menuItem.Name,
		UnitPrice:  menuItem.Price,
		Quantity:   params.Quantity,
		Notes:      params.Notes,
	})
	return session, s.saveSession(ctx, session)
}

func (s *service) RemoveItem(ctx context.Context, orderID uuid.UUID, stage enums.OrderStage, menuItemID uuid.UUID) (*Session, error) {
	session, err := s.activeSession(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.requireCurrentStage(session, stage); err != nil {
		return nil, err
	}
	session.Ledger.Remove(stage, menuItemID)
	return session, s.saveSession(ctx, session)
}

func (s *service) SetQuantity(ctx context.Context, orderID uuid.UUID, stage enums.OrderStage, menuItemID uuid.UUID, quantity int) (*Session, error) {
	session, err := s.activeSession(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.requireCurrentStage(session, stage); err != nil {
		return nil, err
	}
	session.Ledger.SetQuantity(stage, menuItemID, quantity)
	return session, s.saveSession(ctx, session)
}

// ClearStage drops the buffered lines of any composition stage, including
// stages behind the pointer. Flushed items are out of reach here.
func (s *service) ClearStage(ctx context.Context, orderID uuid.UUID, stage enums.OrderStage) (*Session, error) {
	if !stage.IsActive() {
		return nil, errors.New(errors.CodeValidation, "unknown composition stage").
			WithDetails(map[string]string{"stage": stage.String()})
	}
	session, err := s.activeSession(ctx, orderID)
	if err != nil {
		return nil, err
	}
	session.Ledger.Clear(stage)
	return session, s.saveSession(ctx, session)
}

// CommitStage flushes the current stage's ledger into the order without
// moving the pointer. The ledger survives untouched when the flush fails.
func (s *service) CommitStage(ctx context.Context, orderID uuid.UUID) (*Session, error) {
	session, err := s.activeSession(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.flushStage(ctx, session, nil); err != nil {
		return nil, err
	}
	return session, s.saveSession(ctx, session)
}

// AdvanceStage flushes the current stage and moves the pointer forward.
// Advancing past desserts is not a stage move; callers finalize instead.
func (s *service) AdvanceStage(ctx context.Context, orderID uuid.UUID) (*Session, error) {
	session, err := s.activeSession(ctx, orderID)
	if err != nil {
		return nil, err
	}
	next, ok := session.CurrentStage.Next()
	if !ok {
		return nil, errors.New(errors.CodeStateConflict, "no stage after desserts; finalize the order")
	}
	if err := s.flushStage(ctx, session, &next); err != nil {
		return nil, err
	}
	return session, s.saveSession(ctx, session)
}

// RetreatStage moves the pointer back without flushing. Buffered lines for
// the stage being left stay in the ledger and flush later. The destination
// stage is reopened: it drops out of the completed set.
func (s *service) RetreatStage(ctx context.Context, orderID uuid.UUID) (*Session, error) {
	session, err := s.activeSession(ctx, orderID)
	if err != nil {
		return nil, err
	}
	previous, ok := session.CurrentStage.Previous()
	if !ok {
		return nil, errors.New(errors.CodeStateConflict, "already at the first stage")
	}

	if err := s.repo.UpdateOrder(ctx, session.OrderID, map[string]any{
		"current_stage": previous,
		"updated_at":    s.now(),
	}); err != nil {
		return nil, err
	}
	session.CurrentStage = previous
	session.unmarkCompleted(previous)
	return session, s.saveSession(ctx, session)
}

// Finalize flushes every remaining ledger line and flips is_finalized in
// the same transaction. The flip is guarded on the stored value, so a
// second finalize fails with no effect and no duplicated items.
func (s *service) Finalize(ctx context.Context, orderID uuid.UUID, params FinalizeParams) (*models.Order, error) {
	session, err := s.activeSession(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if params.PaymentMethod != nil && !params.PaymentMethod.IsValid() {
		return nil, errors.New(errors.CodeValidation, "unknown payment method")
	}

	now := s.now()
	pendingStages := session.Ledger.NonEmptyStages()
	flushed := 0

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindOrder(ctx, orderID)
		if err != nil {
			return err
		}

		delta := session.PendingSubtotal()
		subtotal := order.Subtotal.Add(delta)
		tax := orders.ComputeTax(subtotal)
		updates := map[string]any{
			"current_stage": enums.StageFinalized,
			"finalized_at":  now,
			"subtotal":      subtotal,
			"tax_amount":    tax,
			"total_amount":  subtotal.Add(tax),
			"updated_at":    now,
		}
		if params.PaymentMethod != nil {
			updates["payment_method"] = *params.PaymentMethod
		}
		if params.SpecialInstructions != nil {
			updates["special_instructions"] = *params.SpecialInstructions
		}

		ok, err := repo.FinalizeOrder(ctx, orderID, updates)
		if err != nil {
			return err
		}
		if !ok {
			return errors.New(errors.CodeAlreadyFinalized, "order already finalized")
		}

		for _, stage := range pendingStages {
			rows := itemRows(orderID, stage, session.Ledger.Items(stage), now)
			if err := repo.InsertOrderItems(ctx, rows); err != nil {
				return err
			}
			flushed += session.Ledger.Count(stage)
		}
		return nil
	})
	if err != nil {
		if typed := errors.As(err); typed != nil && typed.Code() != errors.CodeDependency {
			return nil, err
		}
		s.metrics.IncFlushError(session.CurrentStage.String())
		return nil, errors.Wrap(errors.CodeFlushFailed, err, "finalize flush failed")
	}

	for _, stage := range pendingStages {
		s.metrics.AddFlushedItems(stage.String(), session.Ledger.Count(stage))
	}
	s.metrics.IncFinalized()

	if err := s.cache.Delete(ctx, orderID); err != nil {
		s.logg.Warn(s.logg.WithOrderID(ctx, orderID.String()), "finalized but session cleanup failed")
	}
	if err := s.cache.ReleaseTableLock(ctx, session.TableID); err != nil {
		s.logg.Warn(s.logg.WithTableID(ctx, session.TableID.String()), "finalized but table lock release failed")
	}

	ctx = s.logg.WithOrderID(ctx, orderID.String())
	s.logg.Info(ctx, fmt.Sprintf("staged order finalized with %d flushed items", flushed))
	return s.repo.FindOrderWithItems(ctx, orderID)
}

// AbandonSession cancels an unfinalized staged order, frees its table, and
// drops the cached session. Finalized orders are out of scope; cancel
// those through the kitchen status flow.
func (s *service) AbandonSession(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if !order.IsStaged {
		return errors.New(errors.CodeStateConflict, "order is not a staged order")
	}
	if order.IsFinalized {
		return errors.New(errors.CodeAlreadyFinalized, "order already finalized")
	}

	if err := s.repo.UpdateOrder(ctx, orderID, map[string]any{
		"status":     enums.OrderStatusCancelled,
		"updated_at": s.now(),
	}); err != nil {
		return err
	}

	if order.TableID != nil {
		if err := s.tables.UpdateStatus(ctx, *order.TableID, enums.TableStatusAvailable); err != nil {
			s.logg.Warn(s.logg.WithTableID(ctx, order.TableID.String()), "abandon left table status unchanged")
		}
		if err := s.cache.ReleaseTableLock(ctx, *order.TableID); err != nil {
			s.logg.Warn(s.logg.WithTableID(ctx, order.TableID.String()), "abandon left table lock behind")
		}
	}
	if err := s.cache.Delete(ctx, orderID); err != nil {
		s.logg.Warn(s.logg.WithOrderID(ctx, orderID.String()), "abandon left cached session behind")
	}

	s.logg.Info(s.logg.WithOrderID(ctx, orderID.String()), "staged session abandoned")
	return nil
}

// flushStage persists the current stage's buffered lines and recomputes
// cumulative totals, optionally moving the stage pointer in the same
// transaction. Session state mutates only after the transaction commits.
func (s *service) flushStage(ctx context.Context, session *Session, advanceTo *enums.OrderStage) error {
	stage := session.CurrentStage
	lines := session.Ledger.Items(stage)
	now := s.now()

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindOrder(ctx, session.OrderID)
		if err != nil {
			return err
		}
		if order.IsFinalized {
			return errors.New(errors.CodeAlreadyFinalized, "order already finalized")
		}

		subtotal := order.Subtotal.Add(session.Ledger.Subtotal(stage))
		tax := orders.ComputeTax(subtotal)
		updates := map[string]any{
			"subtotal":     subtotal,
			"tax_amount":   tax,
			"total_amount": subtotal.Add(tax),
			"updated_at":   now,
		}
		if advanceTo != nil {
			updates["current_stage"] = *advanceTo
		}

		if err := repo.InsertOrderItems(ctx, itemRows(session.OrderID, stage, lines, now)); err != nil {
			return err
		}
		return repo.UpdateOrder(ctx, session.OrderID, updates)
	})
	if err != nil {
		if typed := errors.As(err); typed != nil && typed.Code() != errors.CodeDependency {
			return err
		}
		s.metrics.IncFlushError(stage.String())
		return errors.Wrap(errors.CodeFlushFailed, err, "stage flush failed")
	}

	if count := session.Ledger.Count(stage); count > 0 {
		s.metrics.AddFlushedItems(stage.String(), count)
	}
	session.Ledger.Clear(stage)
	session.markCompleted(stage)
	if advanceTo != nil {
		session.CurrentStage = *advanceTo
	}
	return nil
}

// activeSession loads the session and rejects operations on finalized
// orders up front.
func (s *service) activeSession(ctx context.Context, orderID uuid.UUID) (*Session, error) {
	session, err := s.GetSession(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if session.IsFinalized {
		return nil, errors.New(errors.CodeAlreadyFinalized, "order already finalized")
	}
	return session, nil
}

func (s *service) requireCurrentStage(session *Session, stage enums.OrderStage) error {
	if stage != session.CurrentStage {
		return errors.New(errors.CodeStateConflict, "items can only change on the current stage").
			WithDetails(map[string]string{
				"current_stage":   session.CurrentStage.String(),
				"requested_stage": stage.String(),
			})
	}
	return nil
}

func (s *service) saveSession(ctx context.Context, session *Session) error {
	session.UpdatedAt = s.now()
	return s.cache.Put(ctx, session)
}

// rebuildSession reconstructs session scaffolding from the order row after
// a cache miss. Stages behind the pointer count as completed.
func rebuildSession(order *models.Order) (*Session, error) {
	if !order.IsStaged {
		return nil, errors.New(errors.CodeStateConflict, "order is not a staged order")
	}

	current := enums.StageStarters
	if order.CurrentStage != nil && order.CurrentStage.IsActive() {
		current = *order.CurrentStage
	}
	completed := make([]enums.OrderStage, 0, current.Position())
	for _, stage := range enums.ActiveStages() {
		if stage.Position() < current.Position() {
			completed = append(completed, stage)
		}
	}

	tableID := uuid.Nil
	if order.TableID != nil {
		tableID = *order.TableID
	}
	session := &Session{
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		TableID:         tableID,
		CurrentStage:    current,
		CompletedStages: completed,
		Ledger:          NewLedger(),
		IsFinalized:     order.IsFinalized,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
	if order.IsFinalized {
		session.CurrentStage = enums.StageFinalized
	}
	return session, nil
}

func itemRows(orderID uuid.UUID, stage enums.OrderStage, lines []Item, now time.Time) []models.OrderItem {
	rows := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		stageCopy := stage
		rows = append(rows, models.OrderItem{
			ID:         uuid.New(),
			OrderID:    orderID,
			MenuItemID: line.MenuItemID,
			Name:       line.Name,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
			TotalPrice: line.LineTotal(),
			Stage:      &stageCopy,
			Notes:      line.Notes,
			CreatedAt:  now,
		})
	}
	return rows
}
