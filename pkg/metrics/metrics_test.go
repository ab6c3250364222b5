package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestFromContext_NoApplication(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	ctx := NewContext(context.Background(), nil)
	_, ok = FromContext(ctx)
	assert.False(t, ok)

	// Nothing to report to, so these must be safe no-ops
	RecordEvent(ctx, "Event", map[string]interface{}{"key": "value"})
	RecordCount(ctx, "Count", 1)
	RecordDuration(ctx, "Duration", time.Second)
}

func TestMethodTracer_NilSafe(t *testing.T) {
	tracer := TraceMethodCall(context.Background(), "pkg", "Method")
	assert.Nil(t, tracer)

	tracer.AddAttribute("key", "value")
	tracer.AddAttributes(map[string]interface{}{"a": 1, "b": 2})
	tracer.OnError(errors.New("error"))
	tracer.End()
}

func TestForwardedMessage(t *testing.T) {
	entry := logrus.NewEntry(logrus.StandardLogger())

	entry.Message = "plain"
	assert.Equal(t, "plain", forwardedMessage(entry))

	entry = entry.WithFields(logrus.Fields{
		"signature": "abc",
		"slot":      7,
	}).WithError(errors.New("account in use"))
	entry.Message = "transaction rejected"

	assert.Equal(
		t,
		`message="transaction rejected", error="account in use", data={"signature":"abc","slot":7}`,
		forwardedMessage(entry),
	)

	entry = logrus.NewEntry(logrus.StandardLogger()).WithField("type", "ledger")
	entry.Message = "no error"
	assert.Equal(t, `message="no error", error=<nil>, data={"type":"ledger"}`, forwardedMessage(entry))
}
