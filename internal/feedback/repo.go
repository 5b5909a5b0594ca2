package feedback

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Abhinav0406/dineplus-backend/pkg/db/models"
	"github.com/Abhinav0406/dineplus-backend/pkg/errors"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateFeedback(ctx context.Context, fb *models.Feedback) (*models.Feedback, error)
	ListFeedback(ctx context.Context, orderID *uuid.UUID, limit int) ([]models.Feedback, error)
	AverageRating(ctx context.Context) (float64, int64, error)
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

func (r *repository) CreateFeedback(ctx context.Context, fb *models.Feedback) (*models.Feedback, error) {
	if fb.ID == uuid.Nil {
		fb.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(fb).Error; err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "create feedback")
	}
	return fb, nil
}

func (r *repository) ListFeedback(ctx context.Context, orderID *uuid.UUID, limit int) ([]models.Feedback, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if orderID != nil {
		q = q.Where("order_id = ?", *orderID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []models.Feedback
	if err := q.Find(&rows).Error; err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "list feedback")
	}
	return rows, nil
}

func (r *repository) AverageRating(ctx context.Context) (float64, int64, error) {
	var agg struct {
		Average *float64
		Total   int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Feedback{}).
		Select("AVG(rating) AS average, COUNT(*) AS total").
		Scan(&agg).Error
	if err != nil {
		return 0, 0, errors.Wrap(errors.CodeDependency, err, "average rating")
	}
	if agg.Average == nil {
		return 0, agg.Total, nil
	}
	return *agg.Average, agg.Total, nil
}
