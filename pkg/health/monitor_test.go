package health

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChecker struct {
	healthy atomic.Bool
	calls   atomic.Int64
}

func (c *fakeChecker) Type() CheckType { return CheckTypeDependency }

func (c *fakeChecker) Check(ctx context.Context) Result {
	c.calls.Add(1)
	return Result{Healthy: c.healthy.Load(), CheckedAt: time.Now()}
}

func TestMonitorSnapshotReflectsFirstProbe(t *testing.T) {
	checker := &fakeChecker{}
	checker.healthy.Store(true)
	monitor := NewMonitor(checker, Config{Interval: time.Hour, Timeout: time.Second, Retries: 1})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go monitor.Start(ctx)

	require.Eventually(t, func() bool { return checker.calls.Load() >= 1 }, time.Second, time.Millisecond)
	assert.True(t, monitor.Snapshot().Healthy)
}

func TestMonitorFlipsUnhealthyAfterRetryThreshold(t *testing.T) {
	checker := &fakeChecker{}
	checker.healthy.Store(false)
	monitor := NewMonitor(checker, Config{Interval: time.Millisecond, Timeout: time.Second, Retries: 2})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go monitor.Start(ctx)

	require.Eventually(t, func() bool { return !monitor.Snapshot().Healthy }, time.Second, time.Millisecond)
}

func TestMonitorStaysHealthyDuringStartPeriod(t *testing.T) {
	checker := &fakeChecker{}
	checker.healthy.Store(false)
	monitor := NewMonitor(checker, Config{Interval: time.Hour, Timeout: time.Second, Retries: 1, StartPeriod: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go monitor.Start(ctx)

	require.Eventually(t, func() bool { return checker.calls.Load() >= 1 }, time.Second, time.Millisecond)
	assert.True(t, monitor.Snapshot().Healthy, "a dependency still in its start period should report healthy")
}
