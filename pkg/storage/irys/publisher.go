package irys

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/code-minter/pkg/storage"
)

const (
	DefaultTimeout = 60 * time.Second

	maxResponseSize = 1 << 20
)

type publisher struct {
	log     *logrus.Entry
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewPublisher returns a storage.Publisher that uploads JSON through an Irys
// uploader service, which answers POST /upload/json with {"uri": ...}.
func NewPublisher(baseURL, apiKey string, timeout time.Duration) storage.Publisher {
	return &publisher{
		log: logrus.StandardLogger().WithField("type", "storage/irys"),
		client: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:  apiKey,
	}
}

func (p *publisher) Publish(ctx context.Context, m *storage.TokenMetadata) (string, error) {
	log := p.log.WithField("method", "Publish")

	if len(p.baseURL) == 0 {
		return "", errors.Wrap(storage.ErrUploadFailed, "irys uploader url is not configured")
	}

	body, err := m.Marshal()
	if err != nil {
		return "", errors.Wrap(storage.ErrUploadFailed, err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/upload/json", bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrapf(storage.ErrUploadFailed, "error creating request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if len(p.apiKey) > 0 {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		log.WithError(err).Debug("upload request failed")
		return "", errors.Wrapf(storage.ErrUploadFailed, "error sending request: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", errors.Wrapf(storage.ErrUploadFailed, "error reading response: %v", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"body":   string(respBody),
		}).Debug("upload rejected")
		return "", errors.Wrapf(storage.ErrUploadFailed, "status %d", resp.StatusCode)
	}

	var res struct {
		URI string `json:"uri"`
	}
	if err := json.Unmarshal(respBody, &res); err != nil {
		return "", errors.Wrapf(storage.ErrUploadFailed, "error decoding response: %v", err)
	}
	if len(res.URI) == 0 {
		return "", errors.Wrap(storage.ErrUploadFailed, "response has empty uri")
	}

	log.WithField("uri", res.URI).Debug("metadata uploaded")
	return res.URI, nil
}
