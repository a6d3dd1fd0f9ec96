package domain

import (
	"strconv"
	"time"
)

// CustomerCreated is raised after a customer has been successfully persisted.
type CustomerCreated struct {
	CustomerID int64
	Kind       Kind
	Email      string
	Timestamp  time.Time
}

// EventName returns the event type identifier.
func (e CustomerCreated) EventName() string { return "customers.customer.created" }

// EventKey returns the partitioning key for the event.
func (e CustomerCreated) EventKey() string { return strconv.FormatInt(e.CustomerID, 10) }

// OccurredAt returns when the event occurred.
func (e CustomerCreated) OccurredAt() time.Time { return e.Timestamp }
