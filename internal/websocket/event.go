package websocket

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/tresoro/tresoro-backend/internal/domain"
)

// EventType represents the kind of lifecycle event
type EventType string

const (
	EventTypeValidated         EventType = "validated"
	EventTypeCancelled         EventType = "cancelled"
	EventTypeRenewed           EventType = "renewed"
	EventTypeThresholdExceeded EventType = "threshold_exceeded"
	EventTypeNearExpiry        EventType = "near_expiry"
)

// EntityType represents the type of entity the event is about
type EntityType string

const (
	EntityTypeBudget      EntityType = "budget"
	EntityTypeTransaction EntityType = "transaction"
)

// Event represents a WebSocket event message sent to clients
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`      // Combined type e.g. "budget.threshold_exceeded"
	Entity    EntityType  `json:"entity"`    // Entity type e.g. "budget"
	Payload   interface{} `json:"payload"`   // Full entity data
	Timestamp time.Time   `json:"timestamp"` // Event timestamp
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// renewalPayload carries both sides of a renewal
type renewalPayload struct {
	Previous  *domain.Budget `json:"previous"`
	Successor *domain.Budget `json:"successor"`
}

// BudgetThresholdExceeded creates a budget.threshold_exceeded event
func BudgetThresholdExceeded(budget *domain.Budget) Event {
	return NewEvent(EventTypeThresholdExceeded, EntityTypeBudget, budget)
}

// BudgetNearExpiry creates a budget.near_expiry event
func BudgetNearExpiry(budget *domain.Budget) Event {
	return NewEvent(EventTypeNearExpiry, EntityTypeBudget, budget)
}

// BudgetRenewed creates a budget.renewed event
func BudgetRenewed(previous, successor *domain.Budget) Event {
	return NewEvent(EventTypeRenewed, EntityTypeBudget, renewalPayload{
		Previous:  previous,
		Successor: successor,
	})
}

// TransactionValidated creates a transaction.validated event
func TransactionValidated(transaction *domain.Transaction) Event {
	return NewEvent(EventTypeValidated, EntityTypeTransaction, transaction)
}

// TransactionCancelled creates a transaction.cancelled event
func TransactionCancelled(transaction *domain.Transaction) Event {
	return NewEvent(EventTypeCancelled, EntityTypeTransaction, transaction)
}
