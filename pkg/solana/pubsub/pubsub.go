package pubsub

import (
	"context"

	"github.com/pkg/errors"
)

var ErrSubscriptionClosed = errors.New("subscription closed")

// SlotUpdate is a notification that the node processed a new slot.
type SlotUpdate struct {
	Slot   uint64
	Parent uint64
	Root   uint64
}

// SlotSubscription is a single live slot subscription. Recv blocks until
// the next update arrives, ctx is done, or the subscription fails.
type SlotSubscription interface {
	Recv(ctx context.Context) (*SlotUpdate, error)

	// Close releases the subscription and its connection. It is safe to call
	// more than once.
	Close()
}

// SlotSubscriber opens slot subscriptions.
type SlotSubscriber interface {
	SubscribeSlots(ctx context.Context) (SlotSubscription, error)
}
