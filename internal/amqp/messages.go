package amqp

import (
	"encoding/json"
	"time"
)

// Event actions published after ledger mutations.
const (
	ActionCreated = "transaction.created"
	ActionUpdated = "transaction.updated"
	ActionDeleted = "transaction.deleted"
)

// LedgerEvent is a lightweight notification of a ledger mutation. It carries
// only the action and the record ID; consumers fetch the full transaction from
// the store if they need it.
type LedgerEvent struct {
	Action    string    `json:"action"`
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLedgerEvent creates an event stamped with the current time.
func NewLedgerEvent(action string, id int64) *LedgerEvent {
	return &LedgerEvent{
		Action:    action,
		ID:        id,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes.
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON decodes an event from JSON bytes.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
