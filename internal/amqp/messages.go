package amqp

import (
	"encoding/json"
	"time"
)

// Event kinds published on ledger writes.
const (
	EventExpenseCreated  = "expense.created"
	EventExpenseUpdated  = "expense.updated"
	EventExpenseDeleted  = "expense.deleted"
	EventTransferCreated = "transfer.created"
	EventTransferDeleted = "transfer.deleted"
)

// LedgerEventMessage is a lightweight notification of a ledger write.
// It carries only identifiers; consumers fetch the full row if they need it.
type LedgerEventMessage struct {
	Kind      string    `json:"kind"`
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLedgerEventMessage builds a message stamped with the current time.
func NewLedgerEventMessage(kind string, id, userID int64) *LedgerEventMessage {
	return &LedgerEventMessage{
		Kind:      kind,
		ID:        id,
		UserID:    userID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventMessageFromJSON parses a message from JSON bytes. It is the
// decode half of PublishLedgerEvent, kept here so consumers share the wire
// format with the publisher.
func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
