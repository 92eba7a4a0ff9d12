package metrics

import (
	"context"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
)

type contextKey struct{}

// NewRelicContextKey is the context key under which the New Relic application
// is stored. Metrics are silently dropped when it's absent.
var NewRelicContextKey = contextKey{}

// NewContext returns a context carrying the New Relic application. A nil app
// returns ctx unchanged.
func NewContext(ctx context.Context, app *newrelic.Application) context.Context {
	if app == nil {
		return ctx
	}
	return context.WithValue(ctx, NewRelicContextKey, app)
}

func application(ctx context.Context) *newrelic.Application {
	nr, _ := ctx.Value(NewRelicContextKey).(*newrelic.Application)
	return nr
}

// RecordCount records a count metric
func RecordCount(ctx context.Context, metricName string, count uint64) {
	if nr := application(ctx); nr != nil {
		nr.RecordCustomMetric(metricName, float64(count))
	}
}

// RecordDuration records a duration metric
func RecordDuration(ctx context.Context, metricName string, duration time.Duration) {
	if nr := application(ctx); nr != nil {
		nr.RecordCustomMetric(metricName, float64(duration/time.Millisecond))
	}
}
