package websocket

import (
	"github.com/tresoro/tresoro-backend/internal/domain"
)

// Notifier adapts the hub to the services' notification interface.
// Broadcasts happen on hub goroutines, so callers never block.
type Notifier struct {
	hub *Hub
}

// NewNotifier creates a Notifier backed by the hub
func NewNotifier(hub *Hub) *Notifier {
	return &Notifier{hub: hub}
}

// BudgetThresholdExceeded broadcasts a budget.threshold_exceeded event
func (n *Notifier) BudgetThresholdExceeded(budget *domain.Budget) {
	n.hub.Broadcast(BudgetThresholdExceeded(budget))
}

// BudgetNearExpiry broadcasts a budget.near_expiry event
func (n *Notifier) BudgetNearExpiry(budget *domain.Budget) {
	n.hub.Broadcast(BudgetNearExpiry(budget))
}

// BudgetRenewed broadcasts a budget.renewed event
func (n *Notifier) BudgetRenewed(previous, successor *domain.Budget) {
	n.hub.Broadcast(BudgetRenewed(previous, successor))
}

// TransactionValidated broadcasts a transaction.validated event
func (n *Notifier) TransactionValidated(transaction *domain.Transaction) {
	n.hub.Broadcast(TransactionValidated(transaction))
}

// TransactionCancelled broadcasts a transaction.cancelled event
func (n *Notifier) TransactionCancelled(transaction *domain.Transaction) {
	n.hub.Broadcast(TransactionCancelled(transaction))
}
