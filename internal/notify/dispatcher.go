// Package notify delivers best-effort live events to online users.
//
// The hiring engine never talks to a connection directly. It publishes an
// Event to a Queue, whose workers hand it to a Dispatcher (single node) or to
// a RedisBus that fans it out to the Dispatcher of every node. Nothing on this
// path retries or reports back to the publisher.
package notify

import (
	"context"

	"gigflow/internal/metrics"
	"gigflow/internal/presence"
	"gigflow/utils"
)

// Event is one live event addressed to one user.
type Event struct {
	UserID  string
	Name    string
	Payload any
}

// Directory resolves a user to their live connection.
type Directory interface {
	Lookup(userID string) (presence.Conn, bool)
}

// Dispatcher pushes events over the live connection of online users.
type Dispatcher struct {
	directory Directory
}

// NewDispatcher creates a Dispatcher backed by directory.
func NewDispatcher(directory Directory) *Dispatcher {
	return &Dispatcher{directory: directory}
}

// Notify pushes (event, payload) to userID if they are online and reports
// whether the event was handed to their connection. A user without a
// connection, or a connection that closes mid-send, yields false.
func (d *Dispatcher) Notify(ctx context.Context, userID, event string, payload any) bool {
	conn, ok := d.directory.Lookup(userID)
	if !ok {
		metrics.ObserveNotification(metrics.NotifyOffline)
		utils.Debug("notify: user offline", map[string]any{"user_id": userID, "event": event})
		return false
	}

	if err := conn.Send(ctx, event, payload); err != nil {
		metrics.ObserveNotification(metrics.NotifyFailed)
		utils.Warn("notify: send failed", map[string]any{
			"user_id": userID,
			"conn_id": conn.ID(),
			"event":   event,
			"error":   err.Error(),
		})
		return false
	}

	metrics.ObserveNotification(metrics.NotifyDelivered)
	utils.Debug("notify: delivered", map[string]any{"user_id": userID, "conn_id": conn.ID(), "event": event})
	return true
}

// Handle adapts Notify to the Queue handler signature.
func (d *Dispatcher) Handle(ctx context.Context, ev Event) {
	d.Notify(ctx, ev.UserID, ev.Name, ev.Payload)
}
