package sweep

import (
	"github.com/pkg/errors"
)

var (
	// ErrSweepAttemptFailed wraps any failure within a single attempt. It is
	// logged and never surfaced to the caller of Run.
	ErrSweepAttemptFailed = errors.New("sweep attempt failed")

	ErrInvalidDestination = errors.New("invalid sweep destination")
)
