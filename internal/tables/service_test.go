package tables

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Abhinav0406/dineplus-backend/pkg/db/models"
	"github.com/Abhinav0406/dineplus-backend/pkg/enums"
	"github.com/Abhinav0406/dineplus-backend/pkg/errors"
	"github.com/Abhinav0406/dineplus-backend/pkg/logger"
)

type stubTablesRepo struct {
	tables map[uuid.UUID]*models.Table
}

func newStubTablesRepo() *stubTablesRepo {
	return &stubTablesRepo{tables: map[uuid.UUID]*models.Table{}}
}

func (s *stubTablesRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubTablesRepo) CreateTable(ctx context.Context, table *models.Table) (*models.Table, error) {
	if table.ID == uuid.Nil {
		table.ID = uuid.New()
	}
	s.tables[table.ID] = table
	return table, nil
}

func (s *stubTablesRepo) FindTable(ctx context.Context, id uuid.UUID) (*models.Table, error) {
	table, ok := s.tables[id]
	if !ok {
		return nil, errors.New(errors.CodeNotFound, "table not found")
	}
	return table, nil
}

func (s *stubTablesRepo) FindByNumber(ctx context.Context, number int) (*models.Table, error) {
	for _, table := range s.tables {
		if table.TableNumber == number {
			return table, nil
		}
	}
	return nil, errors.New(errors.CodeNotFound, "table not found")
}

func (s *stubTablesRepo) ListTables(ctx context.Context) ([]models.Table, error) {
	out := make([]models.Table, 0, len(s.tables))
	for _, table := range s.tables {
		out = append(out, *table)
	}
	return out, nil
}

func (s *stubTablesRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.TableStatus) error {
	table, ok := s.tables[id]
	if !ok {
		return errors.New(errors.CodeNotFound, "table not found")
	}
	table.Status = status
	return nil
}

func newTablesService(t *testing.T) (Service, *stubTablesRepo) {
	t.Helper()
	repo := newStubTablesRepo()
	svc, err := NewService(Params{
		Repo:   repo,
		Logger: logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	require.NoError(t, err)
	return svc, repo
}

func TestCreateTableDefaultsCapacity(t *testing.T) {
	svc, _ := newTablesService(t)

	table, err := svc.CreateTable(context.Background(), CreateTableParams{TableNumber: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, table.TableNumber)
	assert.Equal(t, 4, table.Capacity)
	assert.Equal(t, enums.TableStatusAvailable, table.Status)
}

func TestCreateTableRejectsDuplicateNumber(t *testing.T) {
	svc, _ := newTablesService(t)
	ctx := context.Background()

	_, err := svc.CreateTable(ctx, CreateTableParams{TableNumber: 8, Capacity: 2})
	require.NoError(t, err)

	_, err = svc.CreateTable(ctx, CreateTableParams{TableNumber: 8})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeConflict))
}

func TestCreateTableRejectsBadNumber(t *testing.T) {
	svc, _ := newTablesService(t)

	_, err := svc.CreateTable(context.Background(), CreateTableParams{TableNumber: 0})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeValidation))
}

func TestSetStatusValidatesEnum(t *testing.T) {
	svc, repo := newTablesService(t)
	ctx := context.Background()

	created, err := svc.CreateTable(ctx, CreateTableParams{TableNumber: 5})
	require.NoError(t, err)

	_, err = svc.SetStatus(ctx, created.ID, enums.TableStatus("on-fire"))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeValidation))

	updated, err := svc.SetStatus(ctx, created.ID, enums.TableStatusOccupied)
	require.NoError(t, err)
	assert.Equal(t, enums.TableStatusOccupied, updated.Status)
	assert.Equal(t, enums.TableStatusOccupied, repo.tables[created.ID].Status)
}
