package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errDown   = errors.New("connection refused")
	errBroken = errors.New("bad document")
)

func quick(attempts int) Policy {
	return Policy{Attempts: attempts, Delay: time.Millisecond}
}

// failing fails with err for the first n calls.
func failing(n int, err error) (func(context.Context) error, *int) {
	calls := 0
	return func(context.Context) error {
		calls++
		if calls <= n {
			return err
		}
		return nil
	}, &calls
}

func TestRun_SucceedsAfterFailures(t *testing.T) {
	fn, calls := failing(2, errDown)

	n, err := quick(3).Run(context.Background(), fn)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, *calls)
}

func TestRun_ZeroPolicyTriesOnce(t *testing.T) {
	fn, calls := failing(5, errDown)

	n, err := Policy{}.Run(context.Background(), fn)
	assert.Equal(t, errDown, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, *calls)
}

func TestRun_RetryPredicateStopsEarly(t *testing.T) {
	p := quick(5)
	p.Retry = func(err error) bool { return !errors.Is(err, errBroken) }
	fn, calls := failing(5, errBroken)

	_, err := p.Run(context.Background(), fn)
	assert.Equal(t, errBroken, err)
	assert.Equal(t, 1, *calls)
}

func TestRun_ExhaustsAttempts(t *testing.T) {
	var retried []int
	p := quick(4)
	p.OnRetry = func(attempt int, err error, _ time.Duration) {
		assert.Equal(t, errDown, err)
		retried = append(retried, attempt)
	}
	fn, _ := failing(10, errDown)

	n, err := p.Run(context.Background(), fn)
	assert.Equal(t, errDown, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []int{1, 2, 3}, retried)
}

func TestRun_ContextDoneBeforeFirstCall(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fn, calls := failing(0, nil)

	n, err := quick(3).Run(ctx, fn)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, n)
	assert.Zero(t, *calls)
}

func TestRun_ContextDoneWhileWaiting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := Policy{Attempts: 3, Delay: time.Hour}

	n, err := p.Run(ctx, func(context.Context) error {
		cancel()
		return errDown
	})
	assert.Equal(t, errDown, err)
	assert.Equal(t, 1, n)
}

func TestValue(t *testing.T) {
	calls := 0
	got, n, err := Value(context.Background(), quick(3), func(context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", errDown
		}
		return "roster", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "roster", got)
	assert.Equal(t, 2, n)
}

func TestWait_DoublesUpToCap(t *testing.T) {
	p := Policy{Delay: 100 * time.Millisecond, MaxDelay: 300 * time.Millisecond}

	assert.Equal(t, 100*time.Millisecond, p.wait(1))
	assert.Equal(t, 200*time.Millisecond, p.wait(2))
	assert.Equal(t, 300*time.Millisecond, p.wait(3))
	assert.Equal(t, 300*time.Millisecond, p.wait(20))
}

func TestWait_JitterStaysInBand(t *testing.T) {
	p := Policy{Delay: 100 * time.Millisecond, Jitter: 0.5}

	for i := 0; i < 50; i++ {
		d := p.wait(1)
		assert.GreaterOrEqual(t, d, 50*time.Millisecond)
		assert.LessOrEqual(t, d, 150*time.Millisecond)
	}
}

func TestSource(t *testing.T) {
	p := Source()
	assert.Equal(t, 4, p.Attempts)
	assert.Equal(t, 2*time.Second, p.MaxDelay)
	assert.Nil(t, p.Retry)
}
