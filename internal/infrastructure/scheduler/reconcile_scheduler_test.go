package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/erp/pos-gateway/internal/domain/access"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeReconciler struct {
	mu      sync.Mutex
	calls   int
	block   chan struct{}
	report  *access.ReconciliationReport
	lastErr error
}

func (f *fakeReconciler) Reconcile(ctx context.Context) (*access.ReconciliationReport, error) {
	f.mu.Lock()
	f.calls++
	block := f.block
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	if f.lastErr != nil {
		return nil, f.lastErr
	}
	if f.report != nil {
		return f.report, nil
	}
	return &access.ReconciliationReport{}, nil
}

func (f *fakeReconciler) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestDefaultReconcileSchedulerConfig(t *testing.T) {
	cfg := DefaultReconcileSchedulerConfig()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, "0 * * * *", cfg.CronSchedule)
	assert.True(t, cfg.RunAtStartup)
	assert.Equal(t, 5*time.Minute, cfg.JobTimeout)
}

func TestReconcileScheduler_StartupPass(t *testing.T) {
	reconciler := &fakeReconciler{report: &access.ReconciliationReport{GrantsCreated: 2}}
	scheduler := NewReconcileScheduler(ReconcileSchedulerConfig{
		Enabled:      true,
		CronSchedule: "0 * * * *",
		RunAtStartup: true,
		JobTimeout:   time.Second,
	}, reconciler, zap.NewNop())

	require.NoError(t, scheduler.Start(context.Background()))
	scheduler.Stop()

	assert.Equal(t, 1, reconciler.callCount())
}

func TestReconcileScheduler_DisabledDoesNothing(t *testing.T) {
	reconciler := &fakeReconciler{}
	scheduler := NewReconcileScheduler(ReconcileSchedulerConfig{
		Enabled:      false,
		RunAtStartup: true,
	}, reconciler, zap.NewNop())

	require.NoError(t, scheduler.Start(context.Background()))
	scheduler.Stop()

	assert.Zero(t, reconciler.callCount())
}

func TestReconcileScheduler_OverlappingRunSkipped(t *testing.T) {
	block := make(chan struct{})
	reconciler := &fakeReconciler{block: block}
	scheduler := NewReconcileScheduler(ReconcileSchedulerConfig{
		Enabled:      true,
		CronSchedule: "0 * * * *",
		JobTimeout:   time.Second,
	}, reconciler, zap.NewNop())

	ctx := context.Background()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		scheduler.runOnce(ctx)
	}()

	// Wait until the first pass is in flight, then a second tick must be
	// skipped without invoking the reconciler again.
	require.Eventually(t, func() bool {
		return reconciler.callCount() == 1
	}, time.Second, 5*time.Millisecond)

	scheduler.runOnce(ctx)
	assert.Equal(t, 1, reconciler.callCount())

	close(block)
	wg.Wait()
}

func TestReconcileScheduler_StartIsIdempotent(t *testing.T) {
	reconciler := &fakeReconciler{}
	scheduler := NewReconcileScheduler(ReconcileSchedulerConfig{
		Enabled:      true,
		CronSchedule: "0 * * * *",
	}, reconciler, zap.NewNop())

	ctx := context.Background()
	require.NoError(t, scheduler.Start(ctx))
	require.NoError(t, scheduler.Start(ctx))
	scheduler.Stop()
	scheduler.Stop()
}
