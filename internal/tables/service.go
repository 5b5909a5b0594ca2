package tables

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Abhinav0406/dineplus-backend/pkg/db/models"
	"github.com/Abhinav0406/dineplus-backend/pkg/enums"
	"github.com/Abhinav0406/dineplus-backend/pkg/errors"
	"github.com/Abhinav0406/dineplus-backend/pkg/logger"
)

type CreateTableParams struct {
	TableNumber int `json:"table_number" validate:"required,gt=0"`
	Capacity    int `json:"capacity" validate:"gte=1,lte=20"`
}

type Service interface {
	CreateTable(ctx context.Context, params CreateTableParams) (*models.Table, error)
	GetTable(ctx context.Context, id uuid.UUID) (*models.Table, error)
	ListTables(ctx context.Context) ([]models.Table, error)
	SetStatus(ctx context.Context, id uuid.UUID, status enums.TableStatus) (*models.Table, error)
}

type Params struct {
	Repo   Repository
	Logger *logger.Logger
}

type service struct {
	repo Repository
	logg *logger.Logger
}

func NewService(params Params) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("tables service requires a repository")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("tables service requires a logger")
	}
	return &service{repo: params.Repo, logg: params.Logger}, nil
}

func (s *service) CreateTable(ctx context.Context, params CreateTableParams) (*models.Table, error) {
	if params.TableNumber <= 0 {
		return nil, errors.New(errors.CodeValidation, "table number must be positive")
	}
	capacity := params.Capacity
	if capacity <= 0 {
		capacity = 4
	}
	if existing, err := s.repo.FindByNumber(ctx, params.TableNumber); err == nil && existing != nil {
		return nil, errors.New(errors.CodeConflict, "table number already in use")
	}
	return s.repo.CreateTable(ctx, &models.Table{
		TableNumber: params.TableNumber,
		Capacity:    capacity,
		Status:      enums.TableStatusAvailable,
	})
}

func (s *service) GetTable(ctx context.Context, id uuid.UUID) (*models.Table, error) {
	return s.repo.FindTable(ctx, id)
}

func (s *service) ListTables(ctx context.Context) ([]models.Table, error) {
	return s.repo.ListTables(ctx)
}

func (s *service) SetStatus(ctx context.Context, id uuid.UUID, status enums.TableStatus) (*models.Table, error) {
	if !status.IsValid() {
		return nil, errors.New(errors.CodeValidation, "unknown table status").
			WithDetails(map[string]string{"status": status.String()})
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	ctx = s.logg.WithTableID(ctx, id.String())
	s.logg.Info(ctx, "table status updated")
	return s.repo.FindTable(ctx, id)
}
