package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/code-payments/code-minter/pkg/storage"
)

// Publisher is an in-memory storage.Publisher.
type Publisher struct {
	mu        sync.Mutex
	documents map[string]storage.TokenMetadata
	err       error
	calls     int
}

func NewPublisher() *Publisher {
	return &Publisher{
		documents: make(map[string]storage.TokenMetadata),
	}
}

func (p *Publisher) Publish(_ context.Context, m *storage.TokenMetadata) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls++
	if p.err != nil {
		return "", errors.Wrap(storage.ErrUploadFailed, p.err.Error())
	}

	uri := fmt.Sprintf("memory://metadata/%s.json", uuid.New().String())
	p.documents[uri] = *m
	return uri, nil
}

// SetError makes subsequent uploads fail with err.
func (p *Publisher) SetError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.err = err
}

func (p *Publisher) Get(uri string) (storage.TokenMetadata, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	m, ok := p.documents[uri]
	return m, ok
}

func (p *Publisher) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.calls
}
