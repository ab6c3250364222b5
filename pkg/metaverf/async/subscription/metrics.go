package async_subscription

import (
	"context"

	"github.com/metaverf/metaverf-ledger/pkg/metrics"
)

const (
	subscriptionGaugeEventName = "SubscriptionGauge"
	treasuryGaugeEventName     = "TreasuryGauge"

	lapsedSubscriptionsMetricName = "Subscription.Lapsed"
)

func recordSubscriptionGaugeEvent(ctx context.Context, gauge *subscriptionGauge) {
	metrics.RecordEvent(ctx, subscriptionGaugeEventName, map[string]interface{}{
		"total":   gauge.total,
		"active":  gauge.active,
		"expired": gauge.expired,
		"lapsed":  gauge.lapsed,
	})
	metrics.RecordCount(ctx, lapsedSubscriptionsMetricName, gauge.lapsed)
}

func recordTreasuryGaugeEvent(ctx context.Context, balance uint64) {
	metrics.RecordEvent(ctx, treasuryGaugeEventName, map[string]interface{}{
		"balance": balance,
	})
}
