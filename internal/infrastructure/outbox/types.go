package outbox

import (
	"time"

	"github.com/google/uuid"
)

// Message is a pending WhatsApp notification that could not be delivered
// inline and should be retried by the drain loop.
type Message struct {
	ID        string    `json:"id"`
	To        string    `json:"to"`
	Template  string    `json:"template"`
	Params    []string  `json:"params,omitempty"`
	Priority  int       `json:"priority"`
	Retries   int       `json:"retries"`
	Timestamp time.Time `json:"timestamp"`

	bucketKey []byte
}

func (m *Message) normalize() {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Priority <= 0 || m.Priority > 5 {
		m.Priority = 3
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now()
	}
}
