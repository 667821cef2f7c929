// Package audit keeps an append-only ledger of every significant
// operation. It is purely historical: nothing here influences lifecycle
// decisions, and logging never fails a caller.
package audit

import (
	"sync"
	"time"
)

type EventType string

const (
	EventVehiclePickup        EventType = "VehiclePickup"
	EventVehicleReturn        EventType = "VehicleReturn"
	EventVehicleUpgrade       EventType = "VehicleUpgrade"
	EventRentalExtension      EventType = "RentalExtension"
	EventManualDamageCharge   EventType = "ManualDamageCharge"
	EventManualAdjustment     EventType = "ManualAdjustment"
	EventMaintenanceOverride  EventType = "MaintenanceOverride"
	EventPaymentAuthorization EventType = "PaymentAuthorization"
	EventPaymentCapture       EventType = "PaymentCapture"
	EventPaymentFailure       EventType = "PaymentFailure"
	EventReservationCreated   EventType = "ReservationCreated"
	EventReservationModified  EventType = "ReservationModified"
	EventReservationCancelled EventType = "ReservationCancelled"
)

type ActorType string

const (
	ActorAgent    ActorType = "Agent"
	ActorSystem   ActorType = "System"
	ActorCustomer ActorType = "Customer"
)

// Entry is one immutable audit record. IDs are assigned sequentially by
// the trail at log time.
type Entry struct {
	ID          int64          `json:"id"`
	Timestamp   time.Time      `json:"timestamp"`
	EventType   EventType      `json:"event_type"`
	ActorType   ActorType      `json:"actor_type"`
	ActorID     *int           `json:"actor_id,omitempty"`
	ActorName   string         `json:"actor_name,omitempty"`
	EntityType  string         `json:"entity_type"`
	EntityID    int            `json:"entity_id"`
	Description string         `json:"description"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// Trail is the in-memory append-only log. Entries are never mutated or
// removed once stored; queries return them in insertion order.
type Trail struct {
	mu      sync.RWMutex
	entries []Entry
	nextID  int64
}

func NewTrail() *Trail {
	return &Trail{nextID: 1}
}

// Log assigns the next sequential id and stores the entry.
func (t *Trail) Log(e Entry) Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	e.ID = t.nextID
	if e.Metadata == nil {
		e.Metadata = map[string]any{}
	}
	t.nextID++
	t.entries = append(t.entries, e)
	return e
}

func (t *Trail) ByEntity(entityType string, entityID int) []Entry {
	return t.filter(func(e Entry) bool {
		return e.EntityType == entityType && e.EntityID == entityID
	})
}

func (t *Trail) ByEventType(eventType EventType) []Entry {
	return t.filter(func(e Entry) bool {
		return e.EventType == eventType
	})
}

func (t *Trail) ByActor(actorType ActorType, actorID int) []Entry {
	return t.filter(func(e Entry) bool {
		return e.ActorType == actorType && e.ActorID != nil && *e.ActorID == actorID
	})
}

// InRange returns entries with start <= timestamp <= end.
func (t *Trail) InRange(start, end time.Time) []Entry {
	return t.filter(func(e Entry) bool {
		return !e.Timestamp.Before(start) && !e.Timestamp.After(end)
	})
}

func (t *Trail) All() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]Entry(nil), t.entries...)
}

func (t *Trail) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

func (t *Trail) filter(keep func(Entry) bool) []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []Entry
	for _, e := range t.entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}
