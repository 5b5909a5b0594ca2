package cron

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Abhinav0406/dineplus-backend/pkg/db/models"
	"github.com/Abhinav0406/dineplus-backend/pkg/logger"
)

type fakeStaleReader struct {
	cutoff time.Time
	stale  []models.Order
}

func (f *fakeStaleReader) FindStaleStagedOrders(ctx context.Context, cutoff time.Time) ([]models.Order, error) {
	f.cutoff = cutoff
	return f.stale, nil
}

type fakeAbandoner struct {
	abandoned []uuid.UUID
	failFor   map[uuid.UUID]error
}

func (f *fakeAbandoner) AbandonSession(ctx context.Context, orderID uuid.UUID) error {
	if err, ok := f.failFor[orderID]; ok {
		return err
	}
	f.abandoned = append(f.abandoned, orderID)
	return nil
}

func newStagedSessionTTLJobTest(t *testing.T, reader *fakeStaleReader, abandoner *fakeAbandoner, ttl time.Duration) *stagedSessionTTLJob {
	t.Helper()
	jobIface, err := NewStagedSessionTTLJob(StagedSessionTTLJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		Orders:     reader,
		Staging:    abandoner,
		SessionTTL: ttl,
	})
	if err != nil {
		t.Fatalf("NewStagedSessionTTLJob: %v", err)
	}
	job, ok := jobIface.(*stagedSessionTTLJob)
	if !ok {
		t.Fatalf("expected stagedSessionTTLJob, got %T", jobIface)
	}
	return job
}

func TestStagedSessionTTLJob_reclaimsStaleSessions(t *testing.T) {
	now := time.Date(2026, 1, 30, 12, 0, 0, 0, time.UTC)
	stale := []models.Order{
		{ID: uuid.New()},
		{ID: uuid.New()},
	}
	reader := &fakeStaleReader{stale: stale}
	abandoner := &fakeAbandoner{}

	job := newStagedSessionTTLJobTest(t, reader, abandoner, 4*time.Hour)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := now.Add(-4 * time.Hour)
	if !reader.cutoff.Equal(want) {
		t.Fatalf("unexpected cutoff: %s", reader.cutoff)
	}
	if len(abandoner.abandoned) != 2 {
		t.Fatalf("expected 2 abandons, got %d", len(abandoner.abandoned))
	}
}

func TestStagedSessionTTLJob_continuesPastFailures(t *testing.T) {
	stuck := models.Order{ID: uuid.New()}
	healthy := models.Order{ID: uuid.New()}
	reader := &fakeStaleReader{stale: []models.Order{stuck, healthy}}
	abandoner := &fakeAbandoner{
		failFor: map[uuid.UUID]error{stuck.ID: fmt.Errorf("redis down")},
	}

	job := newStagedSessionTTLJobTest(t, reader, abandoner, time.Hour)

	err := job.Run(context.Background())
	if err == nil {
		t.Fatal("expected an aggregate error")
	}
	if len(abandoner.abandoned) != 1 || abandoner.abandoned[0] != healthy.ID {
		t.Fatalf("expected the healthy order to be reclaimed, got %v", abandoner.abandoned)
	}
}

func TestStagedSessionTTLJob_defaultsTTL(t *testing.T) {
	job := newStagedSessionTTLJobTest(t, &fakeStaleReader{}, &fakeAbandoner{}, 0)
	if job.ttl != defaultStagedSessionTTL {
		t.Fatalf("expected default ttl, got %s", job.ttl)
	}
}
