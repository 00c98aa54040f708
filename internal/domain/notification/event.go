// internal/domain/notification/event.go
package notification

import (
	"context"
	"time"
)

// EventType names a lifecycle change that outside consumers may react to.
type EventType string

const (
	EventCycleCreated         EventType = "cycle.created"
	EventCycleUpdated         EventType = "cycle.updated"
	EventCycleDeleted         EventType = "cycle.deleted"
	EventApplicationCreated   EventType = "application.created"
	EventApplicationUpdated   EventType = "application.updated"
	EventApplicationSubmitted EventType = "application.submitted"
	EventApplicationReviewed  EventType = "application.reviewed"
	EventApplicationWithdrawn EventType = "application.withdrawn"
	EventApplicationDeleted   EventType = "application.deleted"
)

// Event is emitted after a lifecycle operation has committed. Consumers read
// records after the fact and never mutate them.
type Event struct {
	Type              EventType `json:"type"`
	CycleID           int64     `json:"cycleId,omitempty"`
	ApplicationID     int64     `json:"applicationId,omitempty"`
	ApplicationNumber string    `json:"applicationNumber,omitempty"`
	UserID            string    `json:"userId,omitempty"`
	From              string    `json:"from,omitempty"`
	To                string    `json:"to,omitempty"`
	Actor             string    `json:"actor,omitempty"`
	Note              string    `json:"note,omitempty"`
	At                time.Time `json:"at"`
}

// Publisher delivers events. Failures are reported but never undo the
// operation that produced the event.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}
