package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"orcamento/internal/core"
)

// EventBudgetSaved is the routing key and event name of snapshot messages.
const EventBudgetSaved = "budget.saved"

// SnapshotSavedMessage is published after a user's budget was saved.
// It carries the derived figures so consumers never read the record store.
type SnapshotSavedMessage struct {
	Event     string              `json:"event"`
	UserID    string              `json:"userId"`
	Month     int                 `json:"month"`
	Snapshot  core.BudgetSnapshot `json:"snapshot"`
	Goals     int                 `json:"goals"`
	Timestamp time.Time           `json:"timestamp"`
}

// NewSnapshotSavedMessage summarises u for the given user.
func NewSnapshotSavedMessage(userID string, u core.UserData, at time.Time) *SnapshotSavedMessage {
	return &SnapshotSavedMessage{
		Event:     EventBudgetSaved,
		UserID:    userID,
		Month:     u.LastSavedMonth,
		Snapshot:  core.Summarize(u),
		Goals:     len(u.Goals),
		Timestamp: at.UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *SnapshotSavedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SnapshotSavedMessageFromJSON decodes and checks a message body.
func SnapshotSavedMessageFromJSON(data []byte) (*SnapshotSavedMessage, error) {
	var msg SnapshotSavedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Event != EventBudgetSaved {
		return nil, fmt.Errorf("unexpected event %q", msg.Event)
	}
	if msg.UserID == "" {
		return nil, fmt.Errorf("message has no user id")
	}
	return &msg, nil
}
