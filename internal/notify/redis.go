package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"gigflow/utils"
)

// wireEvent is the JSON form of an Event on the Redis channel.
type wireEvent struct {
	UserID  string          `json:"userId"`
	Name    string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// RedisBus fans events out to every node through Redis pub/sub. Each node
// forwards its queued events with Forward and runs Run to hand the events it
// receives to its local handler. Pub/sub keeps nothing, so a node that is down
// misses the events, which matches online-only delivery.
type RedisBus struct {
	client  *redis.Client
	channel string
	local   HandlerFunc
}

// NewRedisBus creates a bus on channel that delivers received events to local.
func NewRedisBus(client *redis.Client, channel string, local HandlerFunc) *RedisBus {
	return &RedisBus{client: client, channel: channel, local: local}
}

// Forward publishes ev on the channel. It is a HandlerFunc, so it runs on
// Queue workers and never on the request path.
func (b *RedisBus) Forward(ctx context.Context, ev Event) {
	data, err := encodeEvent(ev)
	if err != nil {
		utils.Error("notify: encode event", map[string]any{"user_id": ev.UserID, "event": ev.Name, "error": err.Error()})
		return
	}
	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		utils.Warn("notify: redis publish failed", map[string]any{
			"channel": b.channel,
			"user_id": ev.UserID,
			"event":   ev.Name,
			"error":   err.Error(),
		})
	}
}

// Run subscribes to the channel and hands every event to the local handler
// until ctx is cancelled.
func (b *RedisBus) Run(ctx context.Context) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	// wait for the subscription to be confirmed
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("notify: subscribe %s: %w", b.channel, err)
	}
	utils.Info("notify: subscribed to redis channel", map[string]any{"channel": b.channel})

	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			ev, err := decodeEvent([]byte(msg.Payload))
			if err != nil {
				utils.Warn("notify: dropping malformed event", map[string]any{"channel": b.channel, "error": err.Error()})
				continue
			}
			b.local(ctx, ev)
		}
	}
}

// Ping checks that Redis is reachable.
func (b *RedisBus) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

func encodeEvent(ev Event) ([]byte, error) {
	payload, err := json.Marshal(ev.Payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireEvent{UserID: ev.UserID, Name: ev.Name, Payload: payload})
}

func decodeEvent(data []byte) (Event, error) {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return Event{}, err
	}
	if w.UserID == "" || w.Name == "" {
		return Event{}, fmt.Errorf("event without user or name")
	}
	return Event{UserID: w.UserID, Name: w.Name, Payload: w.Payload}, nil
}
