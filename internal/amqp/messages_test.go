package amqp

import (
	"testing"
	"time"
)

func TestNewBudgetEventMessage(t *testing.T) {
	msg := NewBudgetEventMessage(EventOperationCreated, 42)

	if msg.Kind != EventOperationCreated {
		t.Errorf("Kind = %v, want %v", msg.Kind, EventOperationCreated)
	}
	if msg.ID != 42 {
		t.Errorf("ID = %v, want 42", msg.ID)
	}
	if msg.Timestamp.IsZero() {
		t.Error("Timestamp should not be zero")
	}
	if time.Since(msg.Timestamp) > time.Second {
		t.Error("Timestamp should be recent")
	}
}

func TestBudgetEventMessage_JSON(t *testing.T) {
	timestamp := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	msg := &BudgetEventMessage{
		Kind:      EventGoalFunded,
		ID:        7,
		Timestamp: timestamp,
	}

	jsonBytes, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := BudgetEventMessageFromJSON(jsonBytes)
	if err != nil {
		t.Fatalf("BudgetEventMessageFromJSON() error = %v", err)
	}

	if parsed.Kind != msg.Kind {
		t.Errorf("Parsed Kind = %v, want %v", parsed.Kind, msg.Kind)
	}
	if parsed.ID != msg.ID {
		t.Errorf("Parsed ID = %v, want %v", parsed.ID, msg.ID)
	}
	if !parsed.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("Parsed Timestamp = %v, want %v", parsed.Timestamp, msg.Timestamp)
	}
}

func TestBudgetEventMessage_InvalidJSON(t *testing.T) {
	if _, err := BudgetEventMessageFromJSON([]byte(`{"id": "not_a_number"}`)); err == nil {
		t.Error("BudgetEventMessageFromJSON() should fail with invalid JSON")
	}
}

func TestBudgetEventMessage_UnknownKind(t *testing.T) {
	if _, err := BudgetEventMessageFromJSON([]byte(`{"kind": "mystery", "id": 1}`)); err == nil {
		t.Error("BudgetEventMessageFromJSON() should reject unknown kinds")
	}
}
