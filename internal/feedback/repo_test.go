package feedback

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Abhinav0406/dineplus-backend/pkg/db/models"
)

func setupFeedbackTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS feedback (
  id TEXT PRIMARY KEY,
  order_id TEXT,
  rating INTEGER NOT NULL,
  service_rating INTEGER,
  food_rating INTEGER,
  ambiance_rating INTEGER,
  comment TEXT,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(ddl).Error)
	require.NoError(t, db.Exec("DELETE FROM feedback").Error)
	return db
}

func TestRepositoryAverageRating(t *testing.T) {
	db := setupFeedbackTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	average, total, err := repo.AverageRating(ctx)
	require.NoError(t, err)
	assert.Zero(t, average)
	assert.Zero(t, total)

	for _, rating := range []int{5, 3} {
		_, err := repo.CreateFeedback(ctx, &models.Feedback{Rating: rating})
		require.NoError(t, err)
	}

	average, total, err = repo.AverageRating(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4.0, average)
	assert.Equal(t, int64(2), total)
}

func TestRepositoryListFeedbackFiltersByOrder(t *testing.T) {
	db := setupFeedbackTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	orderID := uuid.New()
	_, err := repo.CreateFeedback(ctx, &models.Feedback{OrderID: &orderID, Rating: 5})
	require.NoError(t, err)
	_, err = repo.CreateFeedback(ctx, &models.Feedback{Rating: 2})
	require.NoError(t, err)

	all, err := repo.ListFeedback(ctx, nil, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := repo.ListFeedback(ctx, &orderID, 0)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, 5, mine[0].Rating)
}
