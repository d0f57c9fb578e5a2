// Package feed implements the booking change feed over Redis pub/sub. Every
// store mutation publishes a JSON event on a single channel; each subscriber
// gets a snapshot of the current bookings followed by the live stream.
// Streams are independent per subscriber and carry no cross-document ordering
// guarantee beyond what Redis delivers.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/hackgods/barbershop-reservations/internal/booking"
)

const channel = "bookings:changes"

// subscriber channel buffer; gives a slow consumer some slack before
// backpressure stalls delivery of further redis messages to this stream.
const eventBuffer = 64

type Publisher struct {
	client *redis.Client
}

func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// Publish pushes one change event. Failures are logged and dropped: the feed
// is a notification surface, not the system of record, and must never fail a
// store mutation.
func (p *Publisher) Publish(ctx context.Context, ev booking.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("feed: marshal event for booking %s: %v", ev.ID, err)
		return
	}

	if err := p.client.Publish(ctx, channel, data).Err(); err != nil {
		log.Printf("feed: publish event for booking %s: %v", ev.ID, err)
	}
}

// subscription is one open pub/sub stream. Closing it releases the
// underlying connection and eventually closes Messages.
type subscription interface {
	Messages() <-chan *redis.Message
	Close() error
}

type redisSubscription struct {
	pubsub *redis.PubSub
}

func (r redisSubscription) Messages() <-chan *redis.Message {
	return r.pubsub.Channel()
}

func (r redisSubscription) Close() error {
	return r.pubsub.Close()
}

type Subscriber struct {
	store booking.Store
	open  func(ctx context.Context) (subscription, error)
}

func NewSubscriber(client *redis.Client, store booking.Store) *Subscriber {
	return &Subscriber{
		store: store,
		open: func(ctx context.Context) (subscription, error) {
			pubsub := client.Subscribe(ctx, channel)
			if _, err := pubsub.Receive(ctx); err != nil {
				_ = pubsub.Close()
				return nil, fmt.Errorf("subscribe to change feed: %w", err)
			}
			return redisSubscription{pubsub: pubsub}, nil
		},
	}
}

// Subscribe delivers an upsert per currently-stored booking, then incremental
// changes until ctx is done. The returned channel is closed and the pub/sub
// released when ctx is cancelled.
//
// The pub/sub subscription is opened before the snapshot is read, so a change
// landing between the two shows up in the stream rather than being lost; the
// consumer may see such a change twice and must treat upserts as idempotent.
func (s *Subscriber) Subscribe(ctx context.Context) (<-chan booking.Event, error) {
	sub, err := s.open(ctx)
	if err != nil {
		return nil, err
	}

	current, err := s.store.List(ctx)
	if err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("load feed snapshot: %w", err)
	}

	out := make(chan booking.Event, eventBuffer)

	go func() {
		defer close(out)
		defer func() {
			if err := sub.Close(); err != nil {
				log.Printf("feed: close pubsub: %v", err)
			}
		}()

		for _, ev := range snapshotEvents(current) {
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}

		msgs := sub.Messages()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				ev, err := decodeEvent(msg.Payload)
				if err != nil {
					log.Printf("feed: drop malformed event: %v", err)
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

func snapshotEvents(bookings []booking.Booking) []booking.Event {
	events := make([]booking.Event, 0, len(bookings))
	for i := range bookings {
		b := bookings[i]
		events = append(events, booking.Event{
			Type:    booking.EventUpsert,
			ID:      b.ID,
			Booking: &b,
		})
	}
	return events
}

func decodeEvent(payload string) (booking.Event, error) {
	var ev booking.Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return booking.Event{}, fmt.Errorf("decode feed event: %w", err)
	}
	return ev, nil
}
