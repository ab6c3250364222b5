package retry

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/metaverf/metaverf-ledger/pkg/retry/backoff"
)

func TestLimit(t *testing.T) {
	strategy := Limit(2)
	assert.True(t, strategy(1, errors.New("error")))
	assert.False(t, strategy(2, errors.New("error")))
	assert.False(t, strategy(3, errors.New("error")))

	attempts, err := Retry(func() error {
		return errors.New("always")
	}, Limit(2))
	assert.EqualError(t, err, "always")
	assert.EqualValues(t, 2, attempts)
}

func TestContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	strategy := Context(ctx)
	assert.True(t, strategy(1, errors.New("error")))

	cancel()
	assert.False(t, strategy(2, errors.New("error")))
}

func TestErrorFilters(t *testing.T) {
	errConflict := errors.New("conflict")
	errNotFound := errors.New("not found")
	errOther := errors.New("other")

	retriable := RetriableErrors(errConflict)
	nonRetriable := NonRetriableErrors(errNotFound)
	custom := If(func(err error) bool { return err == errOther })

	for _, tc := range []struct {
		err                                 error
		retriable, nonRetriable, customized bool
	}{
		{errConflict, true, true, false},
		{errors.Wrap(errConflict, "wrapped"), true, true, false},
		{errNotFound, false, false, false},
		{errors.Wrap(errNotFound, "wrapped"), false, false, false},
		{errOther, false, true, true},
	} {
		assert.Equal(t, tc.retriable, retriable(1, tc.err), tc.err.Error())
		assert.Equal(t, tc.nonRetriable, nonRetriable(1, tc.err), tc.err.Error())
		assert.Equal(t, tc.customized, custom(1, tc.err), tc.err.Error())
	}
}

func TestBackoff(t *testing.T) {
	sleeper := &testSleeper{}
	sleeperImpl = sleeper

	strategy := Backoff(backoff.Linear(300*time.Millisecond), time.Second)
	for attempt := uint(1); attempt <= 5; attempt++ {
		assert.True(t, strategy(attempt, errors.New("error")))
	}

	assert.Equal(t, []time.Duration{
		300 * time.Millisecond,
		600 * time.Millisecond,
		900 * time.Millisecond,
		time.Second,
		time.Second,
	}, sleeper.sleepTimes)
}

func TestBackoffWithJitter(t *testing.T) {
	sleeper := &testSleeper{}
	sleeperImpl = sleeper

	delay := time.Millisecond
	strategy := BackoffWithJitter(backoff.Constant(delay), delay, 0.1)
	for i := 0; i < 10_000; i++ {
		assert.True(t, strategy(1, errors.New("error")))
	}

	for _, slept := range sleeper.sleepTimes {
		assert.InDelta(t, float64(delay), float64(slept), 0.1*float64(delay)+1)
	}

	// Uniform jitter of +/- 10% averages out to the delay, with a mean
	// absolute deviation of 5%.
	assert.InDelta(t, float64(delay), float64(sleeper.mean()), 0.01*float64(delay))
	assert.InDelta(t, 0.05*float64(delay), float64(sleeper.absDeviation()), 0.005*float64(delay))
}

type testSleeper struct {
	sleepTimes []time.Duration
}

func (t *testSleeper) Sleep(d time.Duration) {
	t.sleepTimes = append(t.sleepTimes, d)
}

func (t *testSleeper) mean() time.Duration {
	var total time.Duration
	for _, d := range t.sleepTimes {
		total += d
	}
	return total / time.Duration(len(t.sleepTimes))
}

func (t *testSleeper) absDeviation() time.Duration {
	mean := t.mean()

	var total float64
	for _, d := range t.sleepTimes {
		total += math.Abs(float64(d - mean))
	}
	return time.Duration(total / float64(len(t.sleepTimes)))
}
