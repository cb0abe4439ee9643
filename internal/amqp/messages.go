package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// RefreshRequestMessage asks the worker to refresh collections. An empty
// Collection means the full batch. The message carries no data; the worker
// fetches from the upstream itself.
type RefreshRequestMessage struct {
	RequestID   string    `json:"request_id"`
	Collection  string    `json:"collection,omitempty"`
	RequestedBy string    `json:"requested_by,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewRefreshRequestMessage creates a refresh request. collection may be
// empty for a full refresh; requestedBy identifies the caller for tracing.
func NewRefreshRequestMessage(collection, requestedBy string) *RefreshRequestMessage {
	return &RefreshRequestMessage{
		RequestID:   uuid.NewString(),
		Collection:  collection,
		RequestedBy: requestedBy,
		Timestamp:   time.Now(),
	}
}

// IsFullRefresh reports whether the message targets every collection.
func (m *RefreshRequestMessage) IsFullRefresh() bool {
	return m.Collection == ""
}

// ToJSON converts the message to JSON bytes.
func (m *RefreshRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RefreshRequestMessageFromJSON creates a message from JSON bytes.
func RefreshRequestMessageFromJSON(data []byte) (*RefreshRequestMessage, error) {
	var msg RefreshRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
