// Package notify delivers lifecycle notifications: each one is persisted
// to the notification store and pushed to the recipient's live WebSocket
// connections. Delivery is best-effort and never fails the operation that
// triggered it.
package notify

import (
	"context"
	"log"
	"time"

	"github.com/sony/gobreaker"

	"github.com/scrypster/banyan/internal/storage"
	"github.com/scrypster/banyan/pkg/types"
)

// Pusher sends a real-time payload to every live connection of one
// person.
type Pusher interface {
	Push(personID string, payload interface{}) error
}

// Dispatcher persists notifications and forwards them to a Pusher. The
// push path runs behind a circuit breaker so a wedged hub cannot slow
// down the write path.
type Dispatcher struct {
	store   storage.NotificationStore
	pusher  Pusher
	breaker *gobreaker.CircuitBreaker
	logger  *log.Logger
}

// NewDispatcher creates a dispatcher. pusher may be nil to disable
// real-time delivery.
func NewDispatcher(store storage.NotificationStore, pusher Pusher, logger *log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.Default()
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "notify-push",
		MaxRequests: 2,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Printf("Circuit breaker %s: %s -> %s", name, from, to)
		},
	})

	return &Dispatcher{store: store, pusher: pusher, breaker: breaker, logger: logger}
}

// pushEnvelope is the wire shape of a real-time notification event.
type pushEnvelope struct {
	Event        string              `json:"event"`
	Notification *types.Notification `json:"notification"`
}

// Dispatch stores the notification and pushes it to the recipient.
// Failures on either path are logged and swallowed.
func (d *Dispatcher) Dispatch(ctx context.Context, n *types.Notification) {
	if n.ID == "" {
		n.ID = types.NewNotificationID()
	}

	if err := d.store.CreateNotification(ctx, n); err != nil {
		d.logger.Printf("ERROR: Failed to persist notification for %s: %v", n.PersonID, err)
		return
	}

	if d.pusher == nil {
		return
	}

	_, err := d.breaker.Execute(func() (interface{}, error) {
		return nil, d.pusher.Push(n.PersonID, pushEnvelope{Event: "notification", Notification: n})
	})
	if err != nil {
		d.logger.Printf("WARN: Failed to push notification %s to %s: %v", n.ID, n.PersonID, err)
	}
}
