package sweep

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/code-minter/pkg/metrics"
	"github.com/code-payments/code-minter/pkg/retry"
	"github.com/code-payments/code-minter/pkg/retry/backoff"
	"github.com/code-payments/code-minter/pkg/solana"
	"github.com/code-payments/code-minter/pkg/solana/pubsub"
	"github.com/code-payments/code-minter/pkg/solana/system"
)

// Watcher moves the wallet's SOL balance, less fees and a reserve, to a
// single destination whenever a new slot is observed. At most one attempt
// runs at a time. Slots observed while an attempt is running are dropped.
type Watcher struct {
	log         *logrus.Entry
	conf        *conf
	client      solana.Client
	subscriber  pubsub.SlotSubscriber
	wallet      ed25519.PrivateKey
	destination ed25519.PublicKey

	guard   Guard
	workers sync.WaitGroup

	attempts  atomic.Uint64
	dropped   atomic.Uint64
	submitted atomic.Uint64
}

func NewWatcher(
	client solana.Client,
	subscriber pubsub.SlotSubscriber,
	wallet ed25519.PrivateKey,
	destination ed25519.PublicKey,
	configProvider ConfigProvider,
) (*Watcher, error) {
	if len(wallet) != ed25519.PrivateKeySize {
		return nil, errors.New("wallet key is missing or malformed")
	}
	if len(destination) != ed25519.PublicKeySize {
		return nil, errors.Wrap(ErrInvalidDestination, "destination is missing or malformed")
	}
	if bytes.Equal(destination, wallet.Public().(ed25519.PublicKey)) {
		return nil, errors.Wrap(ErrInvalidDestination, "destination is the wallet itself")
	}

	return &Watcher{
		log: logrus.StandardLogger().WithFields(logrus.Fields{
			"type":        "sweep/watcher",
			"wallet":      solana.Address(wallet.Public().(ed25519.PublicKey)),
			"destination": solana.Address(destination),
		}),
		conf:        configProvider(),
		client:      client,
		subscriber:  subscriber,
		wallet:      wallet,
		destination: destination,
	}, nil
}

// Run watches slots until ctx is done, resubscribing whenever the
// subscription fails. It returns once in flight attempts have finished.
func (w *Watcher) Run(ctx context.Context) error {
	log := w.log.WithField("method", "Run")
	log.Info("sweep watcher started")

	reconnectDelay := w.conf.reconnectDelay.Get(ctx)
	err := retry.Loop(
		func() error {
			err := w.consume(ctx)
			if err != nil && ctx.Err() == nil {
				log.WithError(err).Warn("slot subscription ended, resubscribing")
			}
			return err
		},
		retry.Context(ctx),
		retry.Backoff(backoff.Constant(reconnectDelay), reconnectDelay),
	)

	w.workers.Wait()
	log.Info("sweep watcher stopped")

	if ctx.Err() != nil {
		return nil
	}
	return err
}

// consume reads one subscription until it fails. It never returns nil.
func (w *Watcher) consume(ctx context.Context) error {
	sub, err := w.subscriber.SubscribeSlots(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to subscribe to slots")
	}
	defer sub.Close()

	for {
		update, err := w.recv(ctx, sub)
		if err != nil {
			return err
		}

		w.onSlot(ctx, update)
	}
}

func (w *Watcher) recv(ctx context.Context, sub pubsub.SlotSubscription) (*pubsub.SlotUpdate, error) {
	timeout := w.conf.recvTimeout.Get(ctx)
	if timeout <= 0 {
		return sub.Recv(ctx)
	}

	recvCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	update, err := sub.Recv(recvCtx)
	if err != nil && ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
		return nil, errors.Errorf("no slot update within %s", timeout)
	}
	return update, err
}

func (w *Watcher) onSlot(ctx context.Context, update *pubsub.SlotUpdate) {
	if !w.guard.TryBegin() {
		w.dropped.Add(1)
		metrics.RecordCount(ctx, sweepDroppedCountMetricName, 1)
		return
	}

	w.attempts.Add(1)
	metrics.RecordCount(ctx, sweepAttemptCountMetricName, 1)

	w.workers.Add(1)
	go func() {
		defer w.workers.Done()
		defer w.guard.End()

		if err := w.attempt(ctx, update.Slot); err != nil {
			w.log.WithError(err).WithField("slot", update.Slot).Debug("sweep attempt did not complete")
		}
	}()
}

// attempt submits at most one transfer of balance minus fee and reserve.
// It does not wait for the transfer to land.
func (w *Watcher) attempt(ctx context.Context, slot uint64) (err error) {
	ctx, endTxn := metrics.StartTransaction(ctx, "SweepWatcher.attempt")
	defer endTxn()

	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "attempt")
	defer tracer.End()
	defer func() {
		tracer.OnError(err)
	}()

	select {
	case <-ctx.Done():
		return errors.Wrap(ErrSweepAttemptFailed, ctx.Err().Error())
	case <-time.After(w.conf.settleDelay.Get(ctx)):
	}

	commitment := w.commitment(ctx)
	wallet := w.wallet.Public().(ed25519.PublicKey)

	balance, err := w.client.GetBalance(wallet)
	if errors.Is(err, solana.ErrNoBalance) {
		return nil
	} else if err != nil {
		return errors.Wrapf(ErrSweepAttemptFailed, "failed to get balance: %v", err)
	}

	blockhash, err := w.client.GetLatestBlockhash(commitment)
	if err != nil {
		return errors.Wrapf(ErrSweepAttemptFailed, "failed to get latest blockhash: %v", err)
	}

	// The fee only depends on the message shape, so it's priced with the
	// full balance and the final amount is filled in afterwards.
	txn := solana.NewTransaction(wallet, system.Transfer(wallet, w.destination, balance))
	txn.SetBlockhash(blockhash.Blockhash)

	fee, err := w.client.GetFeeForMessage(txn.Message, commitment)
	if err != nil {
		return errors.Wrapf(ErrSweepAttemptFailed, "failed to get fee: %v", err)
	}

	reserve := w.conf.reserve.Get(ctx)
	if balance <= fee || balance-fee <= reserve {
		w.log.WithFields(logrus.Fields{
			"balance": balance,
			"fee":     fee,
			"reserve": reserve,
		}).Trace("nothing to sweep")
		return nil
	}
	amount := balance - fee - reserve

	txn = solana.NewTransaction(wallet, system.Transfer(wallet, w.destination, amount))
	txn.SetBlockhash(blockhash.Blockhash)
	if err := txn.Sign(w.wallet); err != nil {
		return errors.Wrapf(ErrSweepAttemptFailed, "failed to sign: %v", err)
	}

	sig, err := w.client.SubmitTransaction(txn, commitment)
	if err != nil {
		return errors.Wrapf(ErrSweepAttemptFailed, "failed to submit: %v", err)
	}

	w.submitted.Add(1)
	metrics.RecordCount(ctx, sweepSubmittedCountMetricName, 1)
	metrics.RecordEvent(ctx, sweepSubmittedEventName, map[string]interface{}{
		"slot":      slot,
		"lamports":  amount,
		"signature": sig.String(),
	})

	w.log.WithFields(logrus.Fields{
		"slot":      slot,
		"lamports":  amount,
		"signature": sig.String(),
	}).Info("sweep submitted")
	return nil
}

func (w *Watcher) commitment(ctx context.Context) solana.Commitment {
	configured := w.conf.commitment.Get(ctx)
	commitment, err := solana.ParseCommitment(configured)
	if err != nil {
		w.log.WithError(err).Warnf("invalid commitment %q, using confirmed", configured)
		return solana.CommitmentConfirmed
	}
	return commitment
}

// Stats returns how many attempts were started, how many slots were dropped
// because an attempt was in progress, and how many transfers were submitted.
func (w *Watcher) Stats() (attempts, dropped, submitted uint64) {
	return w.attempts.Load(), w.dropped.Load(), w.submitted.Load()
}
