// Package notify publishes governance events to an external consumer.
// Publishing is fire-and-forget: a publish failure never rolls back the
// state transition that produced the event.
package notify

import (
	"context"
	"time"
)

// Event describes one applied governance action.
type Event struct {
	Kind       string    `json:"kind"` // document.transition | ticket.created | ticket.resolved | document.created
	DocumentID string    `json:"documentId,omitempty"`
	TicketID   string    `json:"ticketId,omitempty"`
	ActorSub   string    `json:"actorSub"`
	FromState  string    `json:"fromState,omitempty"`
	ToState    string    `json:"toState,omitempty"`
	Decision   string    `json:"decision,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Notifier is the sink interface the governance facade depends on.
type Notifier interface {
	Publish(ctx context.Context, ev Event) error
}

// Noop discards events; used when no Redis is configured.
type Noop struct{}

func (Noop) Publish(ctx context.Context, ev Event) error { return nil }
