package staging

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Abhinav0406/dineplus-backend/pkg/enums"
)

// Session is the in-flight state of one staged order: a stage pointer plus
// the ledger of items not yet flushed to the order store. Sessions are
// cached by order id so a client reconnect resumes where it left off; the
// durable truth (flushed items, totals, finalization) lives on the order
// row.
//
// A session has a single writer, the waiter device driving it. The service
// never shares one session value across goroutines.
type Session struct {
	OrderID         uuid.UUID          `json:"order_id"`
	OrderNumber     string             `json:"order_number"`
	TableID         uuid.UUID          `json:"table_id"`
	CurrentStage    enums.OrderStage   `json:"current_stage"`
	CompletedStages []enums.OrderStage `json:"completed_stages"`
	Ledger          *Ledger            `json:"ledger"`
	IsFinalized     bool               `json:"is_finalized"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

func NewSession(orderID uuid.UUID, orderNumber string, tableID uuid.UUID, now time.Time) *Session {
	return &Session{
		OrderID:         orderID,
		OrderNumber:     orderNumber,
		TableID:         tableID,
		CurrentStage:    enums.StageStarters,
		CompletedStages: []enums.OrderStage{},
		Ledger:          NewLedger(),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// StageCompleted reports whether the session currently counts a stage as
// completed. Retreating into a stage removes it from the set, so a stage
// can have flushed items and still read as not completed.
func (s *Session) StageCompleted(stage enums.OrderStage) bool {
	for _, done := range s.CompletedStages {
		if done == stage {
			return true
		}
	}
	return false
}

func (s *Session) markCompleted(stage enums.OrderStage) {
	if s.StageCompleted(stage) {
		return
	}
	s.CompletedStages = append(s.CompletedStages, stage)
}

func (s *Session) unmarkCompleted(stage enums.OrderStage) {
	for i, done := range s.CompletedStages {
		if done == stage {
			s.CompletedStages = append(s.CompletedStages[:i], s.CompletedStages[i+1:]...)
			return
		}
	}
}

// PendingSubtotal sums every buffered line across all stages. It is the
// amount that would be added to the order if everything flushed now.
func (s *Session) PendingSubtotal() decimal.Decimal {
	total := decimal.Zero
	for _, stage := range enums.ActiveStages() {
		total = total.Add(s.Ledger.Subtotal(stage))
	}
	return total
}
