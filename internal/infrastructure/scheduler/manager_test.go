package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floradex/billing/internal/application/payment/usecases"
	"github.com/floradex/billing/internal/shared/logger"
)

type expiryJobFunc func(ctx context.Context) (*usecases.ExpireSubscriptionsResult, error)

func (f expiryJobFunc) Execute(ctx context.Context) (*usecases.ExpireSubscriptionsResult, error) {
	return f(ctx)
}

type refreshJobFunc func(ctx context.Context) (*usecases.RefreshAllGatewaysResult, error)

func (f refreshJobFunc) Execute(ctx context.Context) (*usecases.RefreshAllGatewaysResult, error) {
	return f(ctx)
}

func newTestManager(t *testing.T) *SchedulerManager {
	t.Helper()
	m, err := NewSchedulerManager(logger.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Stop() })
	return m
}

func TestRegisterExpiryJob_RunsImmediately(t *testing.T) {
	m := newTestManager(t)

	var runs atomic.Int32
	err := m.RegisterExpiryJob("", expiryJobFunc(func(ctx context.Context) (*usecases.ExpireSubscriptionsResult, error) {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		runs.Add(1)
		return &usecases.ExpireSubscriptionsResult{Checked: 1, Expired: 1}, nil
	}))
	require.NoError(t, err)

	m.Start()
	require.Eventually(t, func() bool { return runs.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)

	jobs := m.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "subscription-expiry", jobs[0].Name())
	assert.ElementsMatch(t, []string{"subscription", "expiry"}, jobs[0].Tags())
}

func TestRegisterExpiryJob_InvalidCron(t *testing.T) {
	m := newTestManager(t)

	err := m.RegisterExpiryJob("not a cron", expiryJobFunc(func(context.Context) (*usecases.ExpireSubscriptionsResult, error) {
		return nil, nil
	}))
	require.Error(t, err)
	assert.Empty(t, m.Jobs())
}

func TestRegisterGatewayRefreshJob(t *testing.T) {
	m := newTestManager(t)

	var runs atomic.Int32
	err := m.RegisterGatewayRefreshJob(0, refreshJobFunc(func(context.Context) (*usecases.RefreshAllGatewaysResult, error) {
		runs.Add(1)
		return nil, errors.New("vendor down")
	}))
	require.NoError(t, err)

	m.Start()
	require.Eventually(t, func() bool { return runs.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)

	jobs := m.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "gateway-status-refresh", jobs[0].Name())
}

func TestSchedulerManager_Lifecycle(t *testing.T) {
	m := newTestManager(t)
	assert.False(t, m.IsStarted())
	require.NoError(t, m.Stop())

	m.Start()
	m.Start()
	assert.True(t, m.IsStarted())

	require.NoError(t, m.Stop())
	assert.False(t, m.IsStarted())
	require.NoError(t, m.Stop())
}

func TestRunExpiry_SwallowsCancellation(t *testing.T) {
	m := newTestManager(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	m.runExpiry(ctx, expiryJobFunc(func(ctx context.Context) (*usecases.ExpireSubscriptionsResult, error) {
		called = true
		return &usecases.ExpireSubscriptionsResult{}, ctx.Err()
	}))
	assert.True(t, called)
}
