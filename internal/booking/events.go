package booking

import (
	"context"

	"github.com/google/uuid"
)

type EventType string

const (
	EventUpsert EventType = "upsert"
	EventDelete EventType = "delete"
)

// Event is one change-feed entry. Booking is set for upserts and nil for
// deletes.
type Event struct {
	Type    EventType `json:"type"`
	ID      uuid.UUID `json:"id"`
	Booking *Booking  `json:"booking,omitempty"`
}

// Publisher pushes store changes onto the feed. Publishing is fire-and-forget
// from the store's point of view: a failed publish never fails the mutation.
type Publisher interface {
	Publish(ctx context.Context, ev Event)
}

// FeedSource hands out independent change-feed subscriptions. Each stream
// starts with an upsert per currently-stored booking, then carries
// incremental changes until ctx is cancelled, at which point the channel is
// closed and the underlying subscription released.
type FeedSource interface {
	Subscribe(ctx context.Context) (<-chan Event, error)
}
