package event

import (
	"context"
	"time"
)

// Domain event types consumed by the audit and notification collaborators.
const (
	TypeBookingCreated      = "booking.created"
	TypeBookingCancelled    = "booking.cancelled"
	TypeBookingCheckedIn    = "booking.checked_in"
	TypePointsAwarded       = "points.awarded"
	TypeAchievementUnlocked = "achievement.unlocked"
)

// Event is one domain event. The core only emits; persistence, reminder
// scheduling and message formatting belong to the collaborators listening on
// the other side.
type Event struct {
	Type      string                 `json:"event_type"`
	ActorID   string                 `json:"actor_id,omitempty"`
	Target    string                 `json:"target,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// New builds an event stamped with the current time.
func New(eventType, actorID, target string, details map[string]interface{}) Event {
	return Event{
		Type:      eventType,
		ActorID:   actorID,
		Target:    target,
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}

// Bus delivers events to collaborators. Delivery is best-effort: a failing
// sink must never abort the business operation that produced the event, so
// Emit reports nothing and implementations log their own errors.
type Bus interface {
	Emit(ctx context.Context, e Event)
}

// NopBus discards all events. Used in tests.
type NopBus struct{}

func (NopBus) Emit(context.Context, Event) {}
