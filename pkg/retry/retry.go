package retry

// Action is a function to be performed in a retriable manner.
type Action func() error

// Retrier retries actions with a fixed set of strategies.
type Retrier interface {
	Retry(action Action) (uint, error)
}

type retrier struct {
	strategies []Strategy
}

// NewRetrier returns a Retrier bound to strategies. With no strategies the
// action is retried until it succeeds.
func NewRetrier(strategies ...Strategy) Retrier {
	return &retrier{strategies: strategies}
}

func (r *retrier) Retry(action Action) (uint, error) {
	return Retry(action, r.strategies...)
}

// Retry runs action until it succeeds or a strategy declines another attempt,
// and returns the number of attempts made.
//
// Strategies run in order and stop at the first that declines, so strategies
// that sleep belong last.
func Retry(action Action, strategies ...Strategy) (uint, error) {
	for attempts := uint(1); ; attempts++ {
		err := action()
		if err == nil {
			return attempts, nil
		}
		if !allow(strategies, attempts, err) {
			return attempts, err
		}
	}
}

// Loop runs action forever. A successful run resets the attempt count, and a
// failed run is subject to strategies like in Retry. Loop only returns when a
// strategy declines to continue.
func Loop(action Action, strategies ...Strategy) error {
	var attempts uint
	for {
		if err := action(); err != nil {
			attempts++
			if !allow(strategies, attempts, err) {
				return err
			}
			continue
		}
		attempts = 0
	}
}

func allow(strategies []Strategy, attempts uint, err error) bool {
	for _, s := range strategies {
		if !s(attempts, err) {
			return false
		}
	}
	return true
}
