package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/task-tracker/events"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/redis/go-redis/v9"
)

// Relay fans task events out to every instance through a Redis pub/sub
// channel. Each instance delivers to the users connected to it. Like local
// delivery it is best-effort: messages published while an instance is not
// subscribed are lost.
type Relay struct {
	client  *redis.Client
	channel string
	router  *Router
	logger  types.Logger
}

// NewRelay creates a Relay delivering into router.
func NewRelay(client *redis.Client, channel string, router *Router, logger types.Logger) *Relay {
	return &Relay{
		client:  client,
		channel: channel,
		router:  router,
		logger:  logger,
	}
}

// Publish sends event to all subscribed instances.
func (r *Relay) Publish(ctx context.Context, event events.TaskEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal relay event: %w", err)
	}
	if err := r.client.Publish(ctx, r.channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish relay event: %w", err)
	}
	return nil
}

// Subscribe confirms the subscription and returns a function that consumes
// messages until ctx is cancelled or the subscription is closed.
func (r *Relay) Subscribe(ctx context.Context) (func(), error) {
	sub := r.client.Subscribe(ctx, r.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", r.channel, err)
	}

	run := func() {
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				r.handle(msg.Payload)
			}
		}
	}
	return run, nil
}

func (r *Relay) handle(payload string) {
	var event events.TaskEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		r.logger.Warn("Dropping malformed relay message", "error", err)
		return
	}
	r.router.NotifyOne(event.RecipientID, toEventFrame(event))
}

// Ping checks the Redis connection.
func (r *Relay) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
