package solana

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/code-minter/pkg/retry"
	"github.com/code-payments/code-minter/pkg/retry/backoff"
)

type ConfirmationStatus uint8

const (
	ConfirmationFinalized ConfirmationStatus = iota
	ConfirmationExpired
	ConfirmationFailed
)

func (s ConfirmationStatus) String() string {
	switch s {
	case ConfirmationFinalized:
		return "finalized"
	case ConfirmationExpired:
		return "expired"
	case ConfirmationFailed:
		return "failed"
	}
	return "unknown"
}

// ConfirmationOutcome is the terminal state of a submitted transaction.
type ConfirmationOutcome struct {
	Status ConfirmationStatus
	Slot   uint64

	// Reason is set when Status is ConfirmationFailed.
	Reason *TransactionError

	// BlockHeight is the last observed block height.
	BlockHeight uint64
}

var errConfirmationPending = errors.New("confirmation pending")

// ConfirmTransaction polls until the signature reaches the commitment, fails
// on chain, or the block height passes lastValidBlockHeight. An expired
// transaction can no longer land and is reported as such, never resubmitted.
//
// A non-nil error means the outcome is unknown, either because the context
// was cancelled or the RPC node could not be reached.
func ConfirmTransaction(ctx context.Context, c Client, sig Signature, lastValidBlockHeight uint64, commitment Commitment) (ConfirmationOutcome, error) {
	return confirmTransaction(ctx, c, sig, lastValidBlockHeight, commitment, PollRate)
}

func confirmTransaction(ctx context.Context, c Client, sig Signature, lastValidBlockHeight uint64, commitment Commitment, pollRate time.Duration) (ConfirmationOutcome, error) {
	log := logrus.StandardLogger().WithFields(logrus.Fields{
		"type":      "solana/confirm",
		"signature": sig.String(),
	})

	var outcome ConfirmationOutcome
	_, err := retry.Retry(
		func() error {
			statuses, err := c.GetSignatureStatuses([]Signature{sig})
			if err != nil {
				return err
			}

			if len(statuses) > 0 && statuses[0] != nil {
				status := statuses[0]
				if status.ErrorResult != nil {
					outcome = ConfirmationOutcome{
						Status: ConfirmationFailed,
						Slot:   status.Slot,
						Reason: status.ErrorResult,
					}
					return nil
				}

				if status.Reached(commitment) {
					outcome = ConfirmationOutcome{
						Status: ConfirmationFinalized,
						Slot:   status.Slot,
					}
					return nil
				}
			}

			height, err := c.GetBlockHeight(commitment)
			if err != nil {
				return err
			}
			outcome.BlockHeight = height

			if height > lastValidBlockHeight {
				outcome = ConfirmationOutcome{
					Status:      ConfirmationExpired,
					BlockHeight: height,
				}
				return nil
			}

			log.WithField("block_height", height).Trace("transaction not yet confirmed")
			return errConfirmationPending
		},
		retry.RetriableErrors(errConfirmationPending),
		retry.Context(ctx),
		retry.Backoff(backoff.Constant(pollRate), pollRate),
	)
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, errConfirmationPending) {
		return outcome, ctxErr
	}
	if err != nil {
		return outcome, errors.Wrap(err, "failed to poll transaction status")
	}

	log.WithField("outcome", outcome.Status.String()).Debug("transaction confirmation resolved")
	return outcome, nil
}
