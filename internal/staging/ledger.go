package staging

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Abhinav0406/dineplus-backend/pkg/enums"
)

// Item is one accumulated line in a stage ledger. It snapshots the menu
// price at the moment the item was added so mid-session price changes do
// not reprice a composition.
type Item struct {
	MenuItemID uuid.UUID       `json:"menu_item_id"`
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
	Notes      *string         `json:"notes,omitempty"`
}

// LineTotal is unit price times quantity.
func (i Item) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Ledger buffers not-yet-persisted items per stage. Items are keyed by
// menu item within a stage: adding the same dish twice bumps the quantity
// of the existing line. Entries keep insertion order so flushes are
// deterministic.
//
// A ledger belongs to exactly one session and inherits the session's
// single-writer access model, so it carries no locking of its own.
type Ledger struct {
	Stages map[enums.OrderStage][]Item `json:"stages"`
}

func NewLedger() *Ledger {
	return &Ledger{Stages: make(map[enums.OrderStage][]Item)}
}

func (l *Ledger) ensure() {
	if l.Stages == nil {
		l.Stages = make(map[enums.OrderStage][]Item)
	}
}

// Add merges the item into the stage ledger, accumulating quantity when
// the menu item is already present.
func (l *Ledger) Add(stage enums.OrderStage, item Item) {
	l.ensure()
	lines := l.Stages[stage]
	for i := range lines {
		if lines[i].MenuItemID == item.MenuItemID {
			lines[i].Quantity += item.Quantity
			if item.Notes != nil {
				lines[i].Notes = item.Notes
			}
			l.Stages[stage] = lines
			return
		}
	}
	l.Stages[stage] = append(lines, item)
}

// Remove drops a menu item from the stage ledger. Removing an item that
// is not present is a no-op.
func (l *Ledger) Remove(stage enums.OrderStage, menuItemID uuid.UUID) {
	l.ensure()
	lines := l.Stages[stage]
	for i := range lines {
		if lines[i].MenuItemID == menuItemID {
			l.Stages[stage] = append(lines[:i], lines[i+1:]...)
			return
		}
	}
}

// SetQuantity overwrites the quantity of an existing line. A quantity of
// zero or less removes the line. Unknown menu items are a no-op.
func (l *Ledger) SetQuantity(stage enums.OrderStage, menuItemID uuid.UUID, quantity int) {
	if quantity <= 0 {
		l.Remove(stage, menuItemID)
		return
	}
	l.ensure()
	lines := l.Stages[stage]
	for i := range lines {
		if lines[i].MenuItemID == menuItemID {
			lines[i].Quantity = quantity
			l.Stages[stage] = lines
			return
		}
	}
}

// Clear empties the ledger for one stage. Persisted items from earlier
// flushes of that stage are untouched.
func (l *Ledger) Clear(stage enums.OrderStage) {
	l.ensure()
	delete(l.Stages, stage)
}

// Items returns a copy of the stage's lines.
func (l *Ledger) Items(stage enums.OrderStage) []Item {
	l.ensure()
	lines := l.Stages[stage]
	out := make([]Item, len(lines))
	copy(out, lines)
	return out
}

// Count is the total quantity buffered for a stage.
func (l *Ledger) Count(stage enums.OrderStage) int {
	l.ensure()
	total := 0
	for _, line := range l.Stages[stage] {
		total += line.Quantity
	}
	return total
}

// Subtotal sums the line totals buffered for a stage.
func (l *Ledger) Subtotal(stage enums.OrderStage) decimal.Decimal {
	l.ensure()
	total := decimal.Zero
	for _, line := range l.Stages[stage] {
		total = total.Add(line.LineTotal())
	}
	return total
}

// IsEmpty reports whether a stage has no buffered lines.
func (l *Ledger) IsEmpty(stage enums.OrderStage) bool {
	l.ensure()
	return len(l.Stages[stage]) == 0
}

// NonEmptyStages lists stages with buffered lines in service order.
func (l *Ledger) NonEmptyStages() []enums.OrderStage {
	l.ensure()
	out := make([]enums.OrderStage, 0, len(l.Stages))
	for _, stage := range enums.ActiveStages() {
		if !l.IsEmpty(stage) {
			out = append(out, stage)
		}
	}
	return out
}
