package journal

import "github.com/google/uuid"

// NewEventID returns a fresh v4 UUID used as an event record's event_id in
// the JSONL events journal and as the primary key of the postgres mirror.
// Sample records (and the sqlite samples mirror) carry no such id.
func NewEventID() string {
	return uuid.NewString()
}
