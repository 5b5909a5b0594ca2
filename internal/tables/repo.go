package tables

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Abhinav0406/dineplus-backend/pkg/db/models"
	"github.com/Abhinav0406/dineplus-backend/pkg/enums"
	"github.com/Abhinav0406/dineplus-backend/pkg/errors"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateTable(ctx context.Context, table *models.Table) (*models.Table, error)
	FindTable(ctx context.Context, id uuid.UUID) (*models.Table, error)
	FindByNumber(ctx context.Context, number int) (*models.Table, error)
	ListTables(ctx context.Context) ([]models.Table, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.TableStatus) error
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

func (r *repository) CreateTable(ctx context.Context, table *models.Table) (*models.Table, error) {
	if table.ID == uuid.Nil {
		table.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(table).Error; err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "create table")
	}
	return table, nil
}

func (r *repository) FindTable(ctx context.Context, id uuid.UUID) (*models.Table, error) {
	var table models.Table
	err := r.db.WithContext(ctx).First(&table, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "table not found")
		}
		return nil, errors.Wrap(errors.CodeDependency, err, "find table")
	}
	return &table, nil
}

func (r *repository) FindByNumber(ctx context.Context, number int) (*models.Table, error) {
	var table models.Table
	err := r.db.WithContext(ctx).First(&table, "table_number = ?", number).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "table not found")
		}
		return nil, errors.Wrap(errors.CodeDependency, err, "find table by number")
	}
	return &table, nil
}

func (r *repository) ListTables(ctx context.Context) ([]models.Table, error) {
	var rows []models.Table
	err := r.db.WithContext(ctx).
		Order("table_number ASC").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "list tables")
	}
	return rows, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.TableStatus) error {
	res := r.db.WithContext(ctx).
		Model(&models.Table{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return errors.Wrap(errors.CodeDependency, res.Error, "update table status")
	}
	if res.RowsAffected == 0 {
		return errors.New(errors.CodeNotFound, "table not found")
	}
	return nil
}
