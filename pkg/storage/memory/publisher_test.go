package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/code-minter/pkg/storage"
)

func TestPublisher(t *testing.T) {
	publisher := NewPublisher()

	m := &storage.TokenMetadata{Name: "Test Token", Symbol: "TEST"}
	uri, err := publisher.Publish(context.Background(), m)
	require.NoError(t, err)

	stored, ok := publisher.Get(uri)
	require.True(t, ok)
	assert.Equal(t, *m, stored)

	publisher.SetError(assert.AnError)
	_, err = publisher.Publish(context.Background(), m)
	assert.ErrorIs(t, err, storage.ErrUploadFailed)
	assert.Equal(t, 2, publisher.Calls())
}
