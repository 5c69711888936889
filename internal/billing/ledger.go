package billing

import (
	"time"

	"github.com/google/uuid"

	"venue-billing-backend/internal/model"
)

// StockDelta is a change to apply atomically to an item's quantity on hand.
// Negative reserves stock for a session, positive releases it.
type StockDelta struct {
	ItemID string
	Delta  int
}

// LedgerChange describes what a ledger operation did to a session's lines.
type LedgerChange struct {
	Line    model.InventoryConsumption
	Created bool
	Removed bool
	Stock   StockDelta
}

// AddItem reserves quantity of item for the session. The session keeps one line
// per catalog item; a repeat add merges into it and keeps the first price snapshot.
func AddItem(s *model.Session, item *model.InventoryItem, quantity int, now time.Time) (LedgerChange, error) {
	if quantity <= 0 {
		return LedgerChange{}, ErrInvalidQuantity
	}
	if quantity > item.Quantity {
		return LedgerChange{}, ErrOutOfStock
	}

	change := LedgerChange{Stock: StockDelta{ItemID: item.ID, Delta: -quantity}}
	if i := findLineByItem(s, item.ID); i >= 0 {
		s.Consumptions[i].Quantity += quantity
		change.Line = s.Consumptions[i]
	} else {
		line := model.InventoryConsumption{
			BaseModel:       model.BaseModel{ID: uuid.NewString()},
			SessionID:       s.ID,
			InventoryItemID: item.ID,
			ItemName:        item.Name,
			Quantity:        quantity,
			Price:           item.Price,
			AddedAt:         now,
		}
		s.Consumptions = append(s.Consumptions, line)
		change.Line = line
		change.Created = true
	}
	s.InventoryTotal = InventorySubtotal(s.Consumptions)
	return change, nil
}

// UpdateItem sets a line's quantity. Zero removes the line. Whether an increase
// fits in stock is decided by the atomic delta at the storage boundary.
func UpdateItem(s *model.Session, consumptionID string, newQuantity int) (LedgerChange, error) {
	if newQuantity < 0 {
		return LedgerChange{}, ErrInvalidQuantity
	}
	i := findLine(s, consumptionID)
	if i < 0 {
		return LedgerChange{}, ErrConsumptionNotFound
	}
	if newQuantity == 0 {
		return RemoveItem(s, consumptionID)
	}

	line := &s.Consumptions[i]
	delta := line.Quantity - newQuantity
	line.Quantity = newQuantity
	s.InventoryTotal = InventorySubtotal(s.Consumptions)
	return LedgerChange{
		Line:  *line,
		Stock: StockDelta{ItemID: line.InventoryItemID, Delta: delta},
	}, nil
}

// RemoveItem deletes a line and releases its full quantity.
func RemoveItem(s *model.Session, consumptionID string) (LedgerChange, error) {
	i := findLine(s, consumptionID)
	if i < 0 {
		return LedgerChange{}, ErrConsumptionNotFound
	}
	line := s.Consumptions[i]
	s.Consumptions = append(s.Consumptions[:i], s.Consumptions[i+1:]...)
	s.InventoryTotal = InventorySubtotal(s.Consumptions)
	return LedgerChange{
		Line:    line,
		Removed: true,
		Stock:   StockDelta{ItemID: line.InventoryItemID, Delta: line.Quantity},
	}, nil
}

func findLine(s *model.Session, id string) int {
	for i := range s.Consumptions {
		if s.Consumptions[i].ID == id {
			return i
		}
	}
	return -1
}

func findLineByItem(s *model.Session, itemID string) int {
	for i := range s.Consumptions {
		if s.Consumptions[i].InventoryItemID == itemID {
			return i
		}
	}
	return -1
}
