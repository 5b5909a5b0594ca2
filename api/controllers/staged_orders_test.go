package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Abhinav0406/dineplus-backend/internal/staging"
	"github.com/Abhinav0406/dineplus-backend/pkg/db/models"
	"github.com/Abhinav0406/dineplus-backend/pkg/enums"
	pkgerrors "github.com/Abhinav0406/dineplus-backend/pkg/errors"
)

type stubStagingService struct {
	createSession func(ctx context.Context, params staging.CreateSessionParams) (*staging.Session, error)
	getSession    func(ctx context.Context, orderID uuid.UUID) (*staging.Session, error)
	addItem       func(ctx context.Context, orderID uuid.UUID, params staging.AddItemParams) (*staging.Session, error)
	setQuantity   func(ctx context.Context, orderID uuid.UUID, stage enums.OrderStage, menuItemID uuid.UUID, quantity int) (*staging.Session, error)
	advanceStage  func(ctx context.Context, orderID uuid.UUID) (*staging.Session, error)
	finalize      func(ctx context.Context, orderID uuid.UUID, params staging.FinalizeParams) (*models.Order, error)
	abandon       func(ctx context.Context, orderID uuid.UUID) error
}

func (s *stubStagingService) CreateSession(ctx context.Context, params staging.CreateSessionParams) (*staging.Session, error) {
	if s.createSession != nil {
		return s.createSession(ctx, params)
	}
	return &staging.Session{}, nil
}

func (s *stubStagingService) GetSession(ctx context.Context, orderID uuid.UUID) (*staging.Session, error) {
	if s.getSession != nil {
		return s.getSession(ctx, orderID)
	}
	return &staging.Session{OrderID: orderID}, nil
}

func (s *stubStagingService) AddItem(ctx context.Context, orderID uuid.UUID, params staging.AddItemParams) (*staging.Session, error) {
	if s.addItem != nil {
		return s.addItem(ctx, orderID, params)
	}
	return &staging.Session{OrderID: orderID}, nil
}

func (s *stubStagingService) RemoveItem(ctx context.Context, orderID uuid.UUID, stage enums.OrderStage, menuItemID uuid.UUID) (*staging.Session, error) {
	return &staging.Session{OrderID: orderID}, nil
}

func (s *stubStagingService) SetQuantity(ctx context.Context, orderID uuid.UUID, stage enums.OrderStage, menuItemID uuid.UUID, quantity int) (*staging.Session, error) {
	if s.setQuantity != nil {
		return s.setQuantity(ctx, orderID, stage, menuItemID, quantity)
	}
	return &staging.Session{OrderID: orderID}, nil
}

func (s *stubStagingService) ClearStage(ctx context.Context, orderID uuid.UUID, stage enums.OrderStage) (*staging.Session, error) {
	return &staging.Session{OrderID: orderID}, nil
}

func (s *stubStagingService) CommitStage(ctx context.Context, orderID uuid.UUID) (*staging.Session, error) {
	return &staging.Session{OrderID: orderID}, nil
}

func (s *stubStagingService) AdvanceStage(ctx context.Context, orderID uuid.UUID) (*staging.Session, error) {
	if s.advanceStage != nil {
		return s.advanceStage(ctx, orderID)
	}
	return &staging.Session{OrderID: orderID}, nil
}

func (s *stubStagingService) RetreatStage(ctx context.Context, orderID uuid.UUID) (*staging.Session, error) {
	return &staging.Session{OrderID: orderID}, nil
}

func (s *stubStagingService) Finalize(ctx context.Context, orderID uuid.UUID, params staging.FinalizeParams) (*models.Order, error) {
	if s.finalize != nil {
		return s.finalize(ctx, orderID, params)
	}
	return &models.Order{ID: orderID}, nil
}

func (s *stubStagingService) AbandonSession(ctx context.Context, orderID uuid.UUID) error {
	if s.abandon != nil {
		return s.abandon(ctx, orderID)
	}
	return nil
}

func withOrderParam(req *http.Request, orderID uuid.UUID) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("orderId", orderID.String())
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestStagedSessionCreateReturns201(t *testing.T) {
	tableID := uuid.New()
	session := &staging.Session{
		OrderID:      uuid.New(),
		OrderNumber:  "STG123",
		TableID:      tableID,
		CurrentStage: enums.StageStarters,
	}
	svc := &stubStagingService{
		createSession: func(ctx context.Context, params staging.CreateSessionParams) (*staging.Session, error) {
			if params.TableID != tableID {
				t.Fatalf("unexpected table id %s", params.TableID)
			}
			return session, nil
		},
	}

	handler := StagedSessionCreate(svc, nil)
	body := `{"table_id":"` + tableID.String() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/staged-orders", strings.NewReader(body))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}

	var envelope struct {
		Data staging.Session `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.OrderNumber != "STG123" {
		t.Fatalf("unexpected order number %q", envelope.Data.OrderNumber)
	}
	if envelope.Data.CurrentStage != enums.StageStarters {
		t.Fatalf("unexpected stage %s", envelope.Data.CurrentStage)
	}
}

func TestStagedItemAddMapsStateConflictTo422(t *testing.T) {
	orderID := uuid.New()
	svc := &stubStagingService{
		addItem: func(ctx context.Context, id uuid.UUID, params staging.AddItemParams) (*staging.Session, error) {
			if id != orderID {
				t.Fatalf("unexpected order id %s", id)
			}
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "items can only change on the current stage")
		},
	}

	handler := StagedItemAdd(svc, nil)
	body := `{"stage":"desserts","menu_item_id":"` + uuid.NewString() + `","quantity":1}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/staged-orders/"+orderID.String()+"/items", strings.NewReader(body))
	req = withOrderParam(req, orderID)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}

	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != "STATE_CONFLICT" {
		t.Fatalf("unexpected error code %q", envelope.Error.Code)
	}
}

func TestStagedItemQuantityRequiresQuantity(t *testing.T) {
	orderID := uuid.New()
	handler := StagedItemQuantity(&stubStagingService{}, nil)
	body := `{"stage":"starters","menu_item_id":"` + uuid.NewString() + `"}`
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/staged-orders/"+orderID.String()+"/items", strings.NewReader(body))
	req = withOrderParam(req, orderID)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestStagedFinalizeAcceptsEmptyBody(t *testing.T) {
	orderID := uuid.New()
	called := false
	svc := &stubStagingService{
		finalize: func(ctx context.Context, id uuid.UUID, params staging.FinalizeParams) (*models.Order, error) {
			called = true
			if params.PaymentMethod != nil {
				t.Fatal("expected empty finalize params")
			}
			return &models.Order{ID: id, IsFinalized: true}, nil
		},
	}

	handler := StagedFinalize(svc, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/staged-orders/"+orderID.String()+"/finalize", nil)
	req = withOrderParam(req, orderID)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !called {
		t.Fatal("expected finalize to be called")
	}
}

func TestStagedSessionAbandonMapsAlreadyFinalizedTo409(t *testing.T) {
	orderID := uuid.New()
	svc := &stubStagingService{
		abandon: func(ctx context.Context, id uuid.UUID) error {
			return pkgerrors.New(pkgerrors.CodeAlreadyFinalized, "order already finalized")
		},
	}

	handler := StagedSessionAbandon(svc, nil)
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/staged-orders/"+orderID.String(), nil)
	req = withOrderParam(req, orderID)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
}

func TestStagedSessionDetailRejectsBadUUID(t *testing.T) {
	handler := StagedSessionDetail(&stubStagingService{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/staged-orders/not-a-uuid", nil)

	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("orderId", "not-a-uuid")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
