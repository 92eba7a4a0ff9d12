package pubsub

import (
	"context"
	"sync"

	"github.com/gagliardetto/solana-go/rpc/ws"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type websocketSubscriber struct {
	log      *logrus.Entry
	endpoint string
}

// NewWebsocketSubscriber returns a SlotSubscriber using the RPC node's
// websocket slotSubscribe method. Each subscription owns its connection.
func NewWebsocketSubscriber(endpoint string) SlotSubscriber {
	return &websocketSubscriber{
		log:      logrus.StandardLogger().WithField("type", "solana/pubsub"),
		endpoint: endpoint,
	}
}

func (s *websocketSubscriber) SubscribeSlots(ctx context.Context) (SlotSubscription, error) {
	log := s.log.WithField("method", "SubscribeSlots")

	client, err := ws.Connect(ctx, s.endpoint)
	if err != nil {
		return nil, errors.Wrap(err, "error connecting to websocket endpoint")
	}

	sub, err := client.SlotSubscribe()
	if err != nil {
		client.Close()
		return nil, errors.Wrap(err, "error subscribing to slot updates")
	}

	log.Debug("slot subscription started")

	return &websocketSubscription{
		log:    log,
		client: client,
		sub:    sub,
	}, nil
}

type websocketSubscription struct {
	log    *logrus.Entry
	client *ws.Client
	sub    *ws.SlotSubscription

	closeOnce sync.Once
}

func (s *websocketSubscription) Recv(ctx context.Context) (*SlotUpdate, error) {
	res, err := s.sub.Recv(ctx)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, ErrSubscriptionClosed
	}

	return &SlotUpdate{
		Slot:   res.Slot,
		Parent: res.Parent,
		Root:   res.Root,
	}, nil
}

func (s *websocketSubscription) Close() {
	s.closeOnce.Do(func() {
		s.sub.Unsubscribe()
		s.client.Close()
		s.log.Debug("slot subscription stopped")
	})
}
