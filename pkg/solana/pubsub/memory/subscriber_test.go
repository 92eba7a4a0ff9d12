package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/code-minter/pkg/solana/pubsub"
)

func TestSubscriber(t *testing.T) {
	ctx := context.Background()
	subscriber := NewSubscriber()

	assert.False(t, subscriber.Publish(pubsub.SlotUpdate{Slot: 1}))

	sub, err := subscriber.SubscribeSlots(ctx)
	require.NoError(t, err)
	assert.True(t, subscriber.IsSubscribed())
	assert.Equal(t, 1, subscriber.Subscriptions())

	require.True(t, subscriber.Publish(pubsub.SlotUpdate{Slot: 10, Parent: 9, Root: 1}))
	update, err := sub.Recv(ctx)
	require.NoError(t, err)
	assert.Equal(t, pubsub.SlotUpdate{Slot: 10, Parent: 9, Root: 1}, *update)

	timeoutCtx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	_, err = sub.Recv(timeoutCtx)
	assert.Equal(t, context.DeadlineExceeded, err)

	subscriber.Fail(assert.AnError)
	_, err = sub.Recv(ctx)
	assert.ErrorIs(t, err, assert.AnError)

	sub.Close()
	sub.Close()
	assert.False(t, subscriber.IsSubscribed())
	_, err = sub.Recv(ctx)
	assert.Equal(t, pubsub.ErrSubscriptionClosed, err)

	subscriber.SetSubscribeError(assert.AnError)
	_, err = subscriber.SubscribeSlots(ctx)
	assert.Equal(t, assert.AnError, err)
}
