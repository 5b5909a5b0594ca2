package menu

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Abhinav0406/dineplus-backend/pkg/db/models"
	"github.com/Abhinav0406/dineplus-backend/pkg/errors"
	"github.com/Abhinav0406/dineplus-backend/pkg/logger"
)

type stubMenuRepo struct {
	categories []models.MenuCategory
	items      map[uuid.UUID]*models.MenuItem
}

func newStubMenuRepo() *stubMenuRepo {
	return &stubMenuRepo{items: map[uuid.UUID]*models.MenuItem{}}
}

func (s *stubMenuRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubMenuRepo) CreateCategory(ctx context.Context, category *models.MenuCategory) (*models.MenuCategory, error) {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	s.categories = append(s.categories, *category)
	return category, nil
}

func (s *stubMenuRepo) ListCategories(ctx context.Context) ([]models.MenuCategory, error) {
	return s.categories, nil
}

func (s *stubMenuRepo) CreateItem(ctx context.Context, item *models.MenuItem) (*models.MenuItem, error) {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	s.items[item.ID] = item
	return item, nil
}

func (s *stubMenuRepo) FindItem(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, errors.New(errors.CodeNotFound, "menu item not found")
	}
	return item, nil
}

func (s *stubMenuRepo) ListItems(ctx context.Context, categoryID *uuid.UUID, availableOnly bool) ([]models.MenuItem, error) {
	out := make([]models.MenuItem, 0, len(s.items))
	for _, item := range s.items {
		if categoryID != nil && (item.CategoryID == nil || *item.CategoryID != *categoryID) {
			continue
		}
		if availableOnly && !item.IsAvailable {
			continue
		}
		out = append(out, *item)
	}
	return out, nil
}

func (s *stubMenuRepo) UpdateItem(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	item, ok := s.items[id]
	if !ok {
		return errors.New(errors.CodeNotFound, "menu item not found")
	}
	if available, ok := updates["is_available"]; ok {
		item.IsAvailable = available.(bool)
	}
	return nil
}

func newMenuService(t *testing.T) (Service, *stubMenuRepo) {
	t.Helper()
	repo := newStubMenuRepo()
	svc, err := NewService(Params{
		Repo:   repo,
		Logger: logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	require.NoError(t, err)
	return svc, repo
}

func TestCreateItemValidatesPrice(t *testing.T) {
	svc, _ := newMenuService(t)
	ctx := context.Background()

	_, err := svc.CreateItem(ctx, CreateItemParams{Name: "Free Lunch", Price: decimal.Zero})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeValidation))

	item, err := svc.CreateItem(ctx, CreateItemParams{
		Name:  "Masala Dosa",
		Price: decimal.RequireFromString("120.005"),
	})
	require.NoError(t, err)
	assert.True(t, item.Price.Equal(decimal.RequireFromString("120.01")), item.Price.String())
	assert.Equal(t, 15, item.PrepMinutes)
	assert.True(t, item.IsAvailable)
}

func TestSetItemAvailability(t *testing.T) {
	svc, repo := newMenuService(t)
	ctx := context.Background()

	item, err := svc.CreateItem(ctx, CreateItemParams{Name: "Lassi", Price: decimal.NewFromInt(60)})
	require.NoError(t, err)

	updated, err := svc.SetItemAvailability(ctx, item.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.IsAvailable)
	assert.False(t, repo.items[item.ID].IsAvailable)

	_, err = svc.SetItemAvailability(ctx, uuid.New(), true)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeNotFound))
}

func TestFullMenuGroupsByCategory(t *testing.T) {
	svc, _ := newMenuService(t)
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, CreateCategoryParams{Name: "Starters"})
	require.NoError(t, err)

	inCategory, err := svc.CreateItem(ctx, CreateItemParams{
		CategoryID: &category.ID,
		Name:       "Samosa",
		Price:      decimal.NewFromInt(60),
	})
	require.NoError(t, err)

	// Uncategorized and unavailable items stay off the customer menu.
	_, err = svc.CreateItem(ctx, CreateItemParams{Name: "Orphan", Price: decimal.NewFromInt(10)})
	require.NoError(t, err)
	hidden, err := svc.CreateItem(ctx, CreateItemParams{
		CategoryID: &category.ID,
		Name:       "Hidden",
		Price:      decimal.NewFromInt(50),
	})
	require.NoError(t, err)
	_, err = svc.SetItemAvailability(ctx, hidden.ID, false)
	require.NoError(t, err)

	view, err := svc.FullMenu(ctx)
	require.NoError(t, err)
	require.Len(t, view.Categories, 1)
	assert.Equal(t, "Starters", view.Categories[0].Name)
	require.Len(t, view.Categories[0].Items, 1)
	assert.Equal(t, inCategory.ID, view.Categories[0].Items[0].ID)
}
