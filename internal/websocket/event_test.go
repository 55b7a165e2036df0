package websocket

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tresoro/tresoro-backend/internal/domain"
)

func TestEventTypes(t *testing.T) {
	budget := &domain.Budget{ID: 1}
	tx := &domain.Transaction{ID: 2}

	tests := []struct {
		name   string
		event  Event
		want   string
		entity EntityType
	}{
		{"threshold", BudgetThresholdExceeded(budget), "budget.threshold_exceeded", EntityTypeBudget},
		{"near expiry", BudgetNearExpiry(budget), "budget.near_expiry", EntityTypeBudget},
		{"renewed", BudgetRenewed(budget, budget), "budget.renewed", EntityTypeBudget},
		{"validated", TransactionValidated(tx), "transaction.validated", EntityTypeTransaction},
		{"cancelled", TransactionCancelled(tx), "transaction.cancelled", EntityTypeTransaction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.event.Type)
			assert.Equal(t, tt.entity, tt.event.Entity)
			assert.False(t, tt.event.Timestamp.IsZero())
		})
	}
}

func TestEventToJSON_FrenchFieldNames(t *testing.T) {
	budget := &domain.Budget{
		ID:              1,
		Name:            "Budget saison",
		TotalAmount:     decimal.NewFromInt(1000),
		UsedAmount:      decimal.NewFromInt(850),
		RemainingAmount: decimal.NewFromInt(150),
		Status:          domain.BudgetStatusActive,
	}

	data, err := BudgetThresholdExceeded(budget).ToJSON()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	payload, ok := decoded["payload"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "850", payload["montantUtilise"])
	assert.Equal(t, "ACTIF", payload["statut"])
}

func TestEventToJSON_RenewalCarriesBothBudgets(t *testing.T) {
	previous := &domain.Budget{ID: 1, Status: domain.BudgetStatusClosed}
	successor := &domain.Budget{ID: 2, Status: domain.BudgetStatusActive}

	data, err := BudgetRenewed(previous, successor).ToJSON()
	require.NoError(t, err)

	var decoded struct {
		Payload struct {
			Previous  *domain.Budget `json:"previous"`
			Successor *domain.Budget `json:"successor"`
		} `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, int32(1), decoded.Payload.Previous.ID)
	assert.Equal(t, int32(2), decoded.Payload.Successor.ID)
}
