package menu

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Abhinav0406/dineplus-backend/pkg/db/models"
	"github.com/Abhinav0406/dineplus-backend/pkg/errors"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateCategory(ctx context.Context, category *models.MenuCategory) (*models.MenuCategory, error)
	ListCategories(ctx context.Context) ([]models.MenuCategory, error)

	CreateItem(ctx context.Context, item *models.MenuItem) (*models.MenuItem, error)
	FindItem(ctx context.Context, id uuid.UUID) (*models.MenuItem, error)
	ListItems(ctx context.Context, categoryID *uuid.UUID, availableOnly bool) ([]models.MenuItem, error)
	UpdateItem(ctx context.Context, id uuid.UUID, updates map[string]any) error
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

func (r *repository) CreateCategory(ctx context.Context, category *models.MenuCategory) (*models.MenuCategory, error) {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "create menu category")
	}
	return category, nil
}

func (r *repository) ListCategories(ctx context.Context) ([]models.MenuCategory, error) {
	var rows []models.MenuCategory
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_order ASC, name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "list menu categories")
	}
	return rows, nil
}

func (r *repository) CreateItem(ctx context.Context, item *models.MenuItem) (*models.MenuItem, error) {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "create menu item")
	}
	return item, nil
}

func (r *repository) FindItem(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	var item models.MenuItem
	err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "menu item not found")
		}
		return nil, errors.Wrap(errors.CodeDependency, err, "find menu item")
	}
	return &item, nil
}

func (r *repository) ListItems(ctx context.Context, categoryID *uuid.UUID, availableOnly bool) ([]models.MenuItem, error) {
	q := r.db.WithContext(ctx).Order("sort_order ASC, name ASC")
	if categoryID != nil {
		q = q.Where("category_id = ?", *categoryID)
	}
	if availableOnly {
		q = q.Where("is_available = ?", true)
	}
	var rows []models.MenuItem
	if err := q.Find(&rows).Error; err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "list menu items")
	}
	return rows, nil
}

func (r *repository) UpdateItem(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&models.MenuItem{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return errors.Wrap(errors.CodeDependency, res.Error, "update menu item")
	}
	if res.RowsAffected == 0 {
		return errors.New(errors.CodeNotFound, "menu item not found")
	}
	return nil
}
