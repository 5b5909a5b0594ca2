package menu

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Abhinav0406/dineplus-backend/pkg/db/models"
	"github.com/Abhinav0406/dineplus-backend/pkg/errors"
	"github.com/Abhinav0406/dineplus-backend/pkg/logger"
)

type CreateCategoryParams struct {
	Name      string `json:"name" validate:"required"`
	SortOrder int    `json:"sort_order"`
}

type CreateItemParams struct {
	CategoryID   *uuid.UUID      `json:"category_id,omitempty"`
	Name         string          `json:"name" validate:"required"`
	Description  *string         `json:"description,omitempty"`
	Price        decimal.Decimal `json:"price" validate:"required"`
	ImageURL     *string         `json:"image_url,omitempty"`
	IsVegetarian bool            `json:"is_vegetarian"`
	IsSpicy      bool            `json:"is_spicy"`
	PrepMinutes  int             `json:"prep_minutes"`
	SortOrder    int             `json:"sort_order"`
}

// MenuView is the customer-facing menu grouped by category.
type MenuView struct {
	Categories []CategoryView `json:"categories"`
}

type CategoryView struct {
	models.MenuCategory
	Items []models.MenuItem `json:"items"`
}

type Service interface {
	CreateCategory(ctx context.Context, params CreateCategoryParams) (*models.MenuCategory, error)
	CreateItem(ctx context.Context, params CreateItemParams) (*models.MenuItem, error)
	GetItem(ctx context.Context, id uuid.UUID) (*models.MenuItem, error)
	ListItems(ctx context.Context, categoryID *uuid.UUID, availableOnly bool) ([]models.MenuItem, error)
	SetItemAvailability(ctx context.Context, id uuid.UUID, available bool) (*models.MenuItem, error)
	FullMenu(ctx context.Context) (*MenuView, error)
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
		return nil, fmt.Errorf("menu service requires a repository")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("menu service requires a logger")
	}
	return &service{repo: params.Repo, logg: params.Logger}, nil
}

func (s *service) CreateCategory(ctx context.Context, params CreateCategoryParams) (*models.MenuCategory, error) {
	if params.Name == "" {
		return nil, errors.New(errors.CodeValidation, "category name is required")
	}
	return s.repo.CreateCategory(ctx, &models.MenuCategory{
		Name:      params.Name,
		SortOrder: params.SortOrder,
		IsActive:  true,
	})
}

func (s *service) CreateItem(ctx context.Context, params CreateItemParams) (*models.MenuItem, error) {
	if params.Name == "" {
		return nil, errors.New(errors.CodeValidation, "item name is required")
	}
	if params.Price.IsNegative() || params.Price.IsZero() {
		return nil, errors.New(errors.CodeValidation, "item price must be positive")
	}
	prep := params.PrepMinutes
	if prep <= 0 {
		prep = 15
	}
	return s.repo.CreateItem(ctx, &models.MenuItem{
		CategoryID:   params.CategoryID,
		Name:         params.Name,
		Description:  params.Description,
		Price:        params.Price.Round(2),
		ImageURL:     params.ImageURL,
		IsAvailable:  true,
		IsVegetarian: params.IsVegetarian,
		IsSpicy:      params.IsSpicy,
		PrepMinutes:  prep,
		SortOrder:    params.SortOrder,
	})
}

func (s *service) GetItem(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	return s.repo.FindItem(ctx, id)
}

func (s *service) ListItems(ctx context.Context, categoryID *uuid.UUID, availableOnly bool) ([]models.MenuItem, error) {
	return s.repo.ListItems(ctx, categoryID, availableOnly)
}

func (s *service) SetItemAvailability(ctx context.Context, id uuid.UUID, available bool) (*models.MenuItem, error) {
	if err := s.repo.UpdateItem(ctx, id, map[string]any{"is_available": available}); err != nil {
		return nil, err
	}
	return s.repo.FindItem(ctx, id)
}

// FullMenu groups available items under their active categories.
// Uncategorized items are skipped; staff listings use ListItems instead.
func (s *service) FullMenu(ctx context.Context) (*MenuView, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListItems(ctx, nil, true)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[uuid.UUID][]models.MenuItem, len(categories))
	for _, item := range items {
		if item.CategoryID == nil {
			continue
		}
		byCategory[*item.CategoryID] = append(byCategory[*item.CategoryID], item)
	}

	view := &MenuView{Categories: make([]CategoryView, 0, len(categories))}
	for _, category := range categories {
		view.Categories = append(view.Categories, CategoryView{
			MenuCategory: category,
			Items:        byCategory[category.ID],
		})
	}
	return view, nil
}
