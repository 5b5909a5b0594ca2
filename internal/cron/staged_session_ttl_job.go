package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/Abhinav0406/dineplus-backend/pkg/db/models"
	"github.com/Abhinav0406/dineplus-backend/pkg/logger"
)

const defaultStagedSessionTTL = 4 * time.Hour

type staleStagedReader interface {
	FindStaleStagedOrders(ctx context.Context, cutoff time.Time) ([]models.Order, error)
}

type sessionAbandoner interface {
	AbandonSession(ctx context.Context, orderID uuid.UUID) error
}

// StagedSessionTTLJobParams configure the stale-session reclamation job.
type StagedSessionTTLJobParams struct {
	Logger     *logger.Logger
	Orders     staleStagedReader
	Staging    sessionAbandoner
	SessionTTL time.Duration
}

// NewStagedSessionTTLJob builds the job that cancels staged orders whose
// sessions have gone quiet, freeing their tables and cache entries.
func NewStagedSessionTTLJob(params StagedSessionTTLJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("stale order reader required")
	}
	if params.Staging == nil {
		return nil, fmt.Errorf("staging service required")
	}
	ttl := params.SessionTTL
	if ttl <= 0 {
		ttl = defaultStagedSessionTTL
	}
	return &stagedSessionTTLJob{
		logg:    params.Logger,
		orders:  params.Orders,
		staging: params.Staging,
		ttl:     ttl,
		now:     time.Now,
	}, nil
}

type stagedSessionTTLJob struct {
	logg    *logger.Logger
	orders  staleStagedReader
	staging sessionAbandoner
	ttl     time.Duration
	now     func() time.Time
}

func (j *stagedSessionTTLJob) Name() string { return "staged-session-ttl" }

// Run abandons every staged order untouched for longer than the TTL. One
// stuck order does not block the rest of the sweep.
func (j *stagedSessionTTLJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.ttl)
	stale, err := j.orders.FindStaleStagedOrders(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("query stale staged orders: %w", err)
	}

	var errs []error
	reclaimed := 0
	for _, order := range stale {
		if err := j.staging.AbandonSession(ctx, order.ID); err != nil {
			errs = append(errs, fmt.Errorf("abandon order %s: %w", order.ID, err))
			continue
		}
		reclaimed++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"stale":     len(stale),
		"reclaimed": reclaimed,
	})
	j.logg.Info(logCtx, "staged session sweep complete")
	return multierr.Combine(errs...)
}
