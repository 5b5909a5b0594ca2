package feedback

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Abhinav0406/dineplus-backend/pkg/db/models"
	"github.com/Abhinav0406/dineplus-backend/pkg/errors"
	"github.com/Abhinav0406/dineplus-backend/pkg/logger"
)

type SubmitFeedbackParams struct {
	OrderID        *uuid.UUID `json:"order_id,omitempty"`
	Rating         int        `json:"rating" validate:"required,gte=1,lte=5"`
	ServiceRating  *int       `json:"service_rating,omitempty" validate:"omitempty,gte=1,lte=5"`
	FoodRating     *int       `json:"food_rating,omitempty" validate:"omitempty,gte=1,lte=5"`
	AmbianceRating *int       `json:"ambiance_rating,omitempty" validate:"omitempty,gte=1,lte=5"`
	Comment        *string    `json:"comment,omitempty"`
}

// RatingSummary is the aggregate view staff dashboards show.
type RatingSummary struct {
	Average float64 `json:"average"`
	Total   int64   `json:"total"`
}

type orderReader interface {
	FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

type Service interface {
	SubmitFeedback(ctx context.Context, params SubmitFeedbackParams) (*models.Feedback, error)
	ListFeedback(ctx context.Context, orderID *uuid.UUID, limit int) ([]models.Feedback, error)
	Summary(ctx context.Context) (*RatingSummary, error)
}

type Params struct {
	Repo   Repository
	Orders orderReader
	Logger *logger.Logger
}

type service struct {
	repo   Repository
	orders orderReader
	logg   *logger.Logger
}

func NewService(params Params) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("feedback service requires a repository")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("feedback service requires an order reader")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("feedback service requires a logger")
	}
	return &service{repo: params.Repo, orders: params.Orders, logg: params.Logger}, nil
}

func (s *service) SubmitFeedback(ctx context.Context, params SubmitFeedbackParams) (*models.Feedback, error) {
	if params.Rating < 1 || params.Rating > 5 {
		return nil, errors.New(errors.CodeValidation, "rating must be between 1 and 5")
	}
	for _, sub := range []*int{params.ServiceRating, params.FoodRating, params.AmbianceRating} {
		if sub != nil && (*sub < 1 || *sub > 5) {
			return nil, errors.New(errors.CodeValidation, "sub-ratings must be between 1 and 5")
		}
	}
	if params.OrderID != nil {
		if _, err := s.orders.FindOrder(ctx, *params.OrderID); err != nil {
			return nil, err
		}
	}
	return s.repo.CreateFeedback(ctx, &models.Feedback{
		OrderID:        params.OrderID,
		Rating:         params.Rating,
		ServiceRating:  params.ServiceRating,
		FoodRating:     params.FoodRating,
		AmbianceRating: params.AmbianceRating,
		Comment:        params.Comment,
	})
}

func (s *service) ListFeedback(ctx context.Context, orderID *uuid.UUID, limit int) ([]models.Feedback, error) {
	return s.repo.ListFeedback(ctx, orderID, limit)
}

func (s *service) Summary(ctx context.Context) (*RatingSummary, error) {
	average, total, err := s.repo.AverageRating(ctx)
	if err != nil {
		return nil, err
	}
	return &RatingSummary{Average: average, Total: total}, nil
}
