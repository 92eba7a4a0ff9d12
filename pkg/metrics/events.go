package metrics

import (
	"context"
)

// RecordEvent records a custom event. Attribute values must be strings,
// numbers or booleans for New Relic to accept them.
func RecordEvent(ctx context.Context, eventName string, kvPairs map[string]interface{}) {
	if nr := application(ctx); nr != nil {
		nr.RecordCustomEvent(eventName, kvPairs)
	}
}
