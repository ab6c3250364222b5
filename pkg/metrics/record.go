package metrics

import (
	"context"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
)

type newRelicContextKey struct{}

// NewContext returns a copy of ctx that carries the New Relic application.
// Background processes that run outside of an HTTP transaction use this to
// report events.
func NewContext(ctx context.Context, nr *newrelic.Application) context.Context {
	if nr == nil {
		return ctx
	}
	return context.WithValue(ctx, newRelicContextKey{}, nr)
}

// FromContext resolves the New Relic application for ctx, falling back to the
// application owning the transaction attached to it.
func FromContext(ctx context.Context) (*newrelic.Application, bool) {
	if ctx == nil {
		return nil, false
	}

	if nr, ok := ctx.Value(newRelicContextKey{}).(*newrelic.Application); ok && nr != nil {
		return nr, true
	}

	if txn := newrelic.FromContext(ctx); txn != nil {
		if nr := txn.Application(); nr != nil {
			return nr, true
		}
	}

	return nil, false
}

// RecordEvent records a custom event with a set of attributes
func RecordEvent(ctx context.Context, eventName string, kvPairs map[string]interface{}) {
	if nr, ok := FromContext(ctx); ok {
		nr.RecordCustomEvent(eventName, kvPairs)
	}
}

// RecordCount records a count metric
func RecordCount(ctx context.Context, metricName string, count uint64) {
	if nr, ok := FromContext(ctx); ok {
		nr.RecordCustomMetric(metricName, float64(count))
	}
}

// RecordDuration records a duration metric in milliseconds
func RecordDuration(ctx context.Context, metricName string, duration time.Duration) {
	if nr, ok := FromContext(ctx); ok {
		nr.RecordCustomMetric(metricName, float64(duration)/float64(time.Millisecond))
	}
}
