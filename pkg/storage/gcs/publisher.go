package gcs

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	minterstorage "github.com/code-payments/code-minter/pkg/storage"
)

const (
	DefaultPublicBaseURL = "https://storage.googleapis.com"

	objectPrefix = "metadata/"
)

type publisher struct {
	log           *logrus.Entry
	client        *storage.Client
	bucket        string
	publicBaseURL string
}

// NewClient creates a GCS client. An empty credentials file falls back to
// application default credentials.
func NewClient(ctx context.Context, credentialsFile string, opts ...option.ClientOption) (*storage.Client, error) {
	if len(credentialsFile) > 0 {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "error creating gcs client")
	}
	return client, nil
}

// NewPublisher returns a storage.Publisher that writes each document to a
// new object in a publicly readable bucket.
func NewPublisher(client *storage.Client, bucket, publicBaseURL string) minterstorage.Publisher {
	if len(publicBaseURL) == 0 {
		publicBaseURL = DefaultPublicBaseURL
	}

	return &publisher{
		log:           logrus.StandardLogger().WithField("type", "storage/gcs"),
		client:        client,
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

func (p *publisher) Publish(ctx context.Context, m *minterstorage.TokenMetadata) (string, error) {
	log := p.log.WithField("method", "Publish")

	if len(p.bucket) == 0 {
		return "", errors.Wrap(minterstorage.ErrUploadFailed, "gcs bucket is not configured")
	}

	body, err := m.Marshal()
	if err != nil {
		return "", errors.Wrap(minterstorage.ErrUploadFailed, err.Error())
	}

	object := fmt.Sprintf("%s%s.json", objectPrefix, uuid.New().String())
	log = log.WithFields(logrus.Fields{
		"bucket": p.bucket,
		"object": object,
	})

	w := p.client.Bucket(p.bucket).Object(object).NewWriter(ctx)
	w.ContentType = "application/json"
	w.CacheControl = "public, max-age=31536000, immutable"
	w.ChunkSize = 0

	if _, err := w.Write(body); err != nil {
		_ = w.Close()
		log.WithError(err).Debug("failure writing object")
		return "", errors.Wrapf(minterstorage.ErrUploadFailed, "error writing object: %v", err)
	}
	if err := w.Close(); err != nil {
		log.WithError(err).Debug("failure finalizing object")
		return "", errors.Wrapf(minterstorage.ErrUploadFailed, "error finalizing object: %v", err)
	}

	uri := fmt.Sprintf("%s/%s/%s", p.publicBaseURL, p.bucket, object)
	log.WithField("uri", uri).Debug("metadata uploaded")
	return uri, nil
}
