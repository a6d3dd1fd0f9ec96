package domain

import (
	"errors"
	"time"
)

// NoID marks an entity without a persistent identity yet.
const NoID int64 = 0

var (
	ErrNoLines         = errors.New("order must contain at least one line")
	ErrInvalidQuantity = errors.New("line quantity must be greater than zero")
	ErrInvalidArticle  = errors.New("line article reference is required")
)

// Line is one position of an order, exclusively owned by it.
type Line struct {
	ID        int64
	ArticleID int64
	Quantity  int16
}

// Order aggregates the purchase of a customer. The owning customer is set
// exactly once at creation and never reassigned.
type Order struct {
	ID         int64
	CustomerID int64
	Lines      []Line
	Deliveries []Delivery
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Delivery groups orders shipped together under one delivery number.
type Delivery struct {
	ID       int64
	Number   string
	OrderIDs []int64
}

// Validate enforces the aggregate invariants.
func (o *Order) Validate() error {
	if len(o.Lines) == 0 {
		return ErrNoLines
	}
	for _, line := range o.Lines {
		if line.ArticleID <= 0 {
			return ErrInvalidArticle
		}
		if line.Quantity <= 0 {
			return ErrInvalidQuantity
		}
	}
	return nil
}

// ClearIDs resets the order id and every line id to the sentinel so
// persistence always allocates fresh identities. Incoming orders may carry
// ids replayed from a previously serialized payload.
func (o *Order) ClearIDs() {
	o.ID = NoID
	for i := range o.Lines {
		o.Lines[i].ID = NoID
	}
}
