package activity

import (
	"time"

	"github.com/google/uuid"
)

// LabelLayout is the wall-clock layout of Event.Label.
const LabelLayout = "15:04"

// Event is a recorded transition waiting for batch delivery.
// Events are never mutated after creation.
type Event struct {
	// ID uniquely identifies the event inside the queue.
	ID string
	// Label is the local wall-clock time of the event, "HH:MM".
	Label string
	// Type is the kind of transition.
	Type EventType
	// Description is the human-readable line shown in the digest.
	Description string
	// Timestamp is the exact moment the event was created.
	Timestamp time.Time
}

// NewEvent creates an event stamped at the provided moment.
func NewEvent(eventType EventType, description string, at time.Time) *Event {
	return &Event{
		ID:          uuid.NewString(),
		Label:       at.Format(LabelLayout),
		Type:        eventType,
		Description: description,
		Timestamp:   at,
	}
}
