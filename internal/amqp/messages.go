package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventKind identifies what happened. The payload carries only the entity
// ID; consumers refetch the current state from the store.
type EventKind string

const (
	EventOperationCreated EventKind = "operation_created"
	EventOperationDeleted EventKind = "operation_deleted"
	EventGoalFunded       EventKind = "goal_funded"
)

// BudgetEventMessage is the lightweight notification published after a
// write. It is intentionally small: ID plus kind, never the full entity,
// so stale payloads cannot exist.
type BudgetEventMessage struct {
	Kind      EventKind `json:"kind"`
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewBudgetEventMessage creates an event message stamped with the current time.
func NewBudgetEventMessage(kind EventKind, id int64) *BudgetEventMessage {
	return &BudgetEventMessage{
		Kind:      kind,
		ID:        id,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *BudgetEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BudgetEventMessageFromJSON creates a message from JSON bytes.
func BudgetEventMessageFromJSON(data []byte) (*BudgetEventMessage, error) {
	var msg BudgetEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch msg.Kind {
	case EventOperationCreated, EventOperationDeleted, EventGoalFunded:
	default:
		return nil, fmt.Errorf("unknown event kind %q", msg.Kind)
	}
	return &msg, nil
}
