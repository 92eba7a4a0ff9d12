package memory

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/code-payments/code-minter/pkg/solana/pubsub"
)

// Subscriber is an in-memory pubsub.SlotSubscriber. Updates published while
// no subscription is open are discarded.
type Subscriber struct {
	mu            sync.Mutex
	current       *subscription
	subscribeErr  error
	subscriptions int
}

func NewSubscriber() *Subscriber {
	return &Subscriber{}
}

func (s *Subscriber) SubscribeSlots(ctx context.Context) (pubsub.SlotSubscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.subscribeErr != nil {
		return nil, s.subscribeErr
	}

	s.subscriptions++
	s.current = &subscription{
		updates: make(chan *pubsub.SlotUpdate, 1024),
		errs:    make(chan error, 1),
		closed:  make(chan struct{}),
	}
	return s.current, nil
}

// Publish delivers an update to the open subscription, reporting whether one
// was open.
func (s *Subscriber) Publish(update pubsub.SlotUpdate) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil || s.current.isClosed() {
		return false
	}

	s.current.updates <- &update
	return true
}

// Fail terminates the open subscription with err.
func (s *Subscriber) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		select {
		case s.current.errs <- err:
		default:
		}
	}
}

func (s *Subscriber) SetSubscribeError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subscribeErr = err
}

// Subscriptions returns how many subscriptions have been opened.
func (s *Subscriber) Subscriptions() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.subscriptions
}

// IsSubscribed reports whether a subscription is currently open.
func (s *Subscriber) IsSubscribed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.current != nil && !s.current.isClosed()
}

type subscription struct {
	updates chan *pubsub.SlotUpdate
	errs    chan error

	closeOnce sync.Once
	closed    chan struct{}
}

func (s *subscription) Recv(ctx context.Context) (*pubsub.SlotUpdate, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.closed:
		return nil, pubsub.ErrSubscriptionClosed
	case err := <-s.errs:
		return nil, errors.Wrap(err, "subscription failed")
	case update := <-s.updates:
		return update, nil
	}
}

func (s *subscription) Close() {
	s.closeOnce.Do(func() {
		close(s.closed)
	})
}

func (s *subscription) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}
