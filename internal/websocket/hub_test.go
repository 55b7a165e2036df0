package websocket

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tresoro/tresoro-backend/internal/domain"
)

// mockClient is a test double for Client that captures sent messages
type mockClient struct {
	id       string
	messages [][]byte
	mu       sync.Mutex
	closed   bool
}

func newMockClient(id string) *mockClient {
	return &mockClient{
		id:       id,
		messages: make([][]byte, 0),
	}
}

func (m *mockClient) ID() string {
	return m.id
}

func (m *mockClient) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClientClosed
	}
	m.messages = append(m.messages, data)
	return nil
}

func (m *mockClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockClient) GetMessages() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([][]byte, len(m.messages))
	copy(result, m.messages)
	return result
}

func waitForMessages(t *testing.T, client *mockClient, count int) [][]byte {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		messages := client.GetMessages()
		if len(messages) >= count {
			return messages
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d messages", count)
	return nil
}

func TestHubRegisterUnregister(t *testing.T) {
	hub := NewHub()
	client := newMockClient("c1")

	hub.Register(client)
	assert.Equal(t, 1, hub.ClientCount())

	hub.Unregister(client)
	assert.Equal(t, 0, hub.ClientCount())

	// Unregistering twice is harmless
	hub.Unregister(client)
	assert.Equal(t, 0, hub.ClientCount())
}

func TestHubBroadcast_AllClients(t *testing.T) {
	hub := NewHub()
	first := newMockClient("c1")
	second := newMockClient("c2")
	hub.Register(first)
	hub.Register(second)

	budget := &domain.Budget{ID: 1, Name: "Budget saison", TotalAmount: decimal.NewFromInt(1000)}
	hub.Broadcast(BudgetThresholdExceeded(budget))

	firstMessages := waitForMessages(t, first, 1)
	secondMessages := waitForMessages(t, second, 1)

	var event Event
	require.NoError(t, json.Unmarshal(firstMessages[0], &event))
	assert.Equal(t, "budget.threshold_exceeded", event.Type)
	assert.Equal(t, EntityTypeBudget, event.Entity)
	assert.Equal(t, firstMessages[0], secondMessages[0])
}

func TestHubBroadcast_SkipsClosedClient(t *testing.T) {
	hub := NewHub()
	open := newMockClient("c1")
	closed := newMockClient("c2")
	hub.Register(open)
	hub.Register(closed)
	require.NoError(t, closed.Close())

	tx := &domain.Transaction{ID: 7, Reference: "TRX-20240115-A1B2C3D4"}
	hub.Broadcast(TransactionValidated(tx))

	waitForMessages(t, open, 1)
	assert.Empty(t, closed.GetMessages())
}

func TestHubBroadcast_NoClients(t *testing.T) {
	hub := NewHub()
	// Must not panic or block
	hub.Broadcast(BudgetNearExpiry(&domain.Budget{ID: 1}))
}
