package gcs

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	minterstorage "github.com/code-payments/code-minter/pkg/storage"
)

type fakeGCS struct {
	mu       sync.Mutex
	status   int
	uploads  int
	paths    []string
	payloads []string
}

func (f *fakeGCS) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	body, _ := io.ReadAll(r.Body)
	f.uploads++
	f.paths = append(f.paths, r.URL.Path)
	f.payloads = append(f.payloads, string(body))

	w.Header().Set("Content-Type", "application/json")
	if f.status != http.StatusOK {
		w.WriteHeader(f.status)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"forbidden"}}`))
		return
	}
	_, _ = w.Write([]byte(`{"bucket":"test-bucket","name":"object"}`))
}

func setup(t *testing.T) (*fakeGCS, minterstorage.Publisher) {
	fake := &fakeGCS{status: http.StatusOK}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	client, err := NewClient(
		context.Background(),
		"",
		option.WithEndpoint(server.URL+"/storage/v1/"),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return fake, NewPublisher(client, "test-bucket", "")
}

func TestPublish(t *testing.T) {
	fake, publisher := setup(t)

	m := &minterstorage.TokenMetadata{
		Name:        "Test Token",
		Symbol:      "TEST",
		TotalSupply: "100",
	}

	uri, err := publisher.Publish(context.Background(), m)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, DefaultPublicBaseURL+"/test-bucket/metadata/"), uri)
	assert.True(t, strings.HasSuffix(uri, ".json"), uri)

	other, err := publisher.Publish(context.Background(), m)
	require.NoError(t, err)
	assert.NotEqual(t, uri, other)

	require.Equal(t, 2, fake.uploads)
	assert.Contains(t, fake.paths[0], "/b/test-bucket/o")
	assert.Contains(t, fake.payloads[0], `"name":"Test Token"`)
}

func TestPublish_Failures(t *testing.T) {
	fake, publisher := setup(t)
	fake.status = http.StatusForbidden

	_, err := publisher.Publish(context.Background(), &minterstorage.TokenMetadata{Name: "Test Token"})
	assert.ErrorIs(t, err, minterstorage.ErrUploadFailed)

	_, err = NewPublisher(nil, "", "").Publish(context.Background(), &minterstorage.TokenMetadata{})
	assert.ErrorIs(t, err, minterstorage.ErrUploadFailed)
}
