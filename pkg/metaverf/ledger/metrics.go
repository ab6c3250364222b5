package ledger

import (
	"context"
	"time"

	"github.com/metaverf/metaverf-ledger/pkg/metrics"
	"github.com/metaverf/metaverf-ledger/pkg/solana"
)

const (
	metricsStructName = "ledger.Ledger"

	transactionProcessedEventName = "TransactionProcessed"
	transactionDurationMetricName = "Ledger.TransactionDuration"
)

func recordTransactionProcessedEvent(ctx context.Context, numInstructions int, txnErr *solana.TransactionError, duration time.Duration) {
	status := "success"
	var errorKey string
	if txnErr != nil {
		status = "failed"
		errorKey = string(txnErr.ErrorKey())
		if ixErr := txnErr.InstructionError(); ixErr != nil {
			errorKey = string(ixErr.ErrorKey())
		}
	}

	metrics.RecordEvent(ctx, transactionProcessedEventName, map[string]interface{}{
		"status":            status,
		"error":             errorKey,
		"instruction_count": numInstructions,
	})
	metrics.RecordDuration(ctx, transactionDurationMetricName, duration)
}
