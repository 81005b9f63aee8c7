package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Event is a single message delivered to a subscriber.
type Event struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
	SentAt  time.Time       `json:"sent_at"`
}

// Broker fans per-user events out over Redis pub/sub. Each Subscribe call
// opens its own subscription, so a reconnecting client always gets a fresh
// channel rather than a stale one.
type Broker struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

// NewBroker builds a Broker on top of an existing Redis client.
func NewBroker(client *redis.Client, prefix string, logger *zap.Logger) *Broker {
	if prefix == "" {
		prefix = "events"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Broker{client: client, prefix: prefix, logger: logger}
}

func (b *Broker) channel(userID string) string {
	return fmt.Sprintf("%s:user:%s", b.prefix, userID)
}

// Publish sends an event to every live subscriber of the user. Publishing to
// a channel with no subscribers is a no-op, matching store-and-forward
// semantics where the persisted row is the source of truth.
func (b *Broker) Publish(ctx context.Context, userID string, kind string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}
	event := Event{Kind: kind, Payload: raw, SentAt: time.Now().UTC()}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel(userID), data).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// Subscription is a live event feed for one user.
type Subscription struct {
	pubsub *redis.PubSub
	events chan Event
	cancel context.CancelFunc
}

// Events returns the channel events are delivered on. It is closed when the
// subscription ends.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Close tears the subscription down.
func (s *Subscription) Close() error {
	s.cancel()
	return s.pubsub.Close()
}

// Subscribe opens a new subscription for the user. The caller owns the
// returned Subscription and must Close it.
func (b *Broker) Subscribe(ctx context.Context, userID string) (*Subscription, error) {
	pubsub := b.client.Subscribe(ctx, b.channel(userID))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe user events: %w", err)
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &Subscription{
		pubsub: pubsub,
		events: make(chan Event, 16),
		cancel: cancel,
	}

	go func() {
		defer close(sub.events)
		msgs := pubsub.Channel()
		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var event Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					b.logger.Warn("dropping malformed realtime event", zap.Error(err))
					continue
				}
				select {
				case sub.events <- event:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	return sub, nil
}
