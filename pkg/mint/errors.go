package mint

import (
	"github.com/pkg/errors"
)

var (
	ErrInvalidParameters    = errors.New("invalid parameters")
	ErrMetadataUploadFailed = errors.New("metadata upload failed")
	ErrBlockhashExpired     = errors.New("blockhash expired before submission")
	ErrExpired              = errors.New("transaction expired before confirmation, its outcome is unknown")
	ErrSubmissionFailed     = errors.New("transaction submission failed")
)
