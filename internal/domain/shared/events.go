// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import "time"

// EventType represents the type of domain event.
type EventType string

const (
	EventStudentRegistered   EventType = "student.registered"
	EventPreferencesUpdated  EventType = "student.preferences_updated"
	EventStudentDeleted      EventType = "student.deleted"
	EventWalkthroughComputed EventType = "placement.walkthrough_computed"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		AggregateId: aggregateID,
	}
}

// WithCorrelationID sets the correlation ID for tracing.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// ═══════════════════════════════════════════════════════════════════════════
// Student Events
// ═══════════════════════════════════════════════════════════════════════════

// StudentRegisteredEvent is emitted when a new student registers.
type StudentRegisteredEvent struct {
	BaseEvent
	Section string  `json:"section"`
	GPA     float64 `json:"gpa"`
}

// Payload implements Event interface.
func (e StudentRegisteredEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"section": e.Section,
		"gpa":     e.GPA,
	}
}

// NewStudentRegisteredEvent creates a new StudentRegisteredEvent.
func NewStudentRegisteredEvent(studentID, section string, gpa float64) StudentRegisteredEvent {
	return StudentRegisteredEvent{
		BaseEvent: NewBaseEvent(EventStudentRegistered, studentID),
		Section:   section,
		GPA:       gpa,
	}
}

// PreferencesUpdatedEvent is emitted when a student reorders agreements.
// Every student that shares an agreement with the new order sees a
// different competition, so AgreementIDs carries both old and new picks.
type PreferencesUpdatedEvent struct {
	BaseEvent
	AgreementIDs []string `json:"agreement_ids"`
}

// Payload implements Event interface.
func (e PreferencesUpdatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"agreement_ids": e.AgreementIDs,
	}
}

// NewPreferencesUpdatedEvent creates a new PreferencesUpdatedEvent.
func NewPreferencesUpdatedEvent(studentID string, agreementIDs []string) PreferencesUpdatedEvent {
	return PreferencesUpdatedEvent{
		BaseEvent:    NewBaseEvent(EventPreferencesUpdated, studentID),
		AgreementIDs: agreementIDs,
	}
}

// StudentDeletedEvent is emitted when a student removes their account.
type StudentDeletedEvent struct {
	BaseEvent
}

// Payload implements Event interface.
func (e StudentDeletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{}
}

// NewStudentDeletedEvent creates a new StudentDeletedEvent.
func NewStudentDeletedEvent(studentID string) StudentDeletedEvent {
	return StudentDeletedEvent{BaseEvent: NewBaseEvent(EventStudentDeleted, studentID)}
}

// ═══════════════════════════════════════════════════════════════════════════
// Placement Events
// ═══════════════════════════════════════════════════════════════════════════

// WalkthroughComputedEvent is emitted after a fresh (non-cached) estimation.
type WalkthroughComputedEvent struct {
	BaseEvent
	Agreements int           `json:"agreements"`
	Admitted   int           `json:"admitted"`
	Took       time.Duration `json:"took"`
}

// Payload implements Event interface.
func (e WalkthroughComputedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"agreements": e.Agreements,
		"admitted":   e.Admitted,
		"took_ms":    e.Took.Milliseconds(),
	}
}

// NewWalkthroughComputedEvent creates a new WalkthroughComputedEvent.
func NewWalkthroughComputedEvent(studentID string, agreements, admitted int, took time.Duration) WalkthroughComputedEvent {
	return WalkthroughComputedEvent{
		BaseEvent:  NewBaseEvent(EventWalkthroughComputed, studentID),
		Agreements: agreements,
		Admitted:   admitted,
		Took:       took,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Bus contracts
// ═══════════════════════════════════════════════════════════════════════════

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
