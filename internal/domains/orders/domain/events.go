package domain

import (
	"strconv"
	"time"
)

// OrderCreated is raised after an order has been successfully persisted.
type OrderCreated struct {
	OrderID    int64
	CustomerID int64
	LineCount  int
	Timestamp  time.Time
}

// EventName returns the event type identifier.
func (e OrderCreated) EventName() string { return "orders.order.created" }

// EventKey returns the partitioning key for the event.
func (e OrderCreated) EventKey() string { return strconv.FormatInt(e.OrderID, 10) }

// OccurredAt returns when the event occurred.
func (e OrderCreated) OccurredAt() time.Time { return e.Timestamp }
