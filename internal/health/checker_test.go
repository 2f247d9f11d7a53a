package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockChecker struct {
	name  string
	err   error
	delay time.Duration
}

func (m *mockChecker) Name() string {
	return m.name
}

func (m *mockChecker) Check(ctx context.Context) error {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return m.err
}

func TestManagerRunChecks(t *testing.T) {
	manager := NewManager(nil)
	manager.Register(&mockChecker{name: "checker1"})
	manager.Register(&mockChecker{name: "checker2", err: errors.New("checker2 failed")})
	manager.Register(&mockChecker{name: "checker3"})

	results := manager.RunChecks(context.Background())
	require.Len(t, results, 3)

	assert.Equal(t, StatusOK, results["checker1"].Status)
	assert.Empty(t, results["checker1"].Message)
	assert.Equal(t, StatusDown, results["checker2"].Status)
	assert.Contains(t, results["checker2"].Message, "checker2 failed")
	assert.Equal(t, StatusOK, results["checker3"].Status)
	assert.False(t, results["checker3"].LastChecked.IsZero())

	assert.Equal(t, StatusDown, manager.GetOverallStatus())
	assert.Equal(t, []string{"checker1", "checker2", "checker3"}, manager.Names())
}

func TestManagerOverallStatus(t *testing.T) {
	manager := NewManager(nil)
	assert.Equal(t, StatusDown, manager.GetOverallStatus(), "no results yet")

	manager.Register(&mockChecker{name: "ok"})
	manager.RunChecks(context.Background())
	assert.Equal(t, StatusOK, manager.GetOverallStatus())

	manager.mu.Lock()
	manager.results["slow"] = &Check{Name: "slow", Status: StatusDegraded}
	manager.mu.Unlock()
	assert.Equal(t, StatusDegraded, manager.GetOverallStatus())
}

func TestManagerGetResultsReturnsCopies(t *testing.T) {
	manager := NewManager(nil)
	manager.Register(&mockChecker{name: "test"})
	manager.RunChecks(context.Background())

	results := manager.GetResults()
	results["test"].Status = StatusDown

	assert.Equal(t, StatusOK, manager.GetResults()["test"].Status)
}

func TestManagerCancelledContext(t *testing.T) {
	manager := NewManager(nil)
	manager.Register(&mockChecker{name: "slow", delay: time.Minute})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	results := manager.RunChecks(ctx)
	assert.Equal(t, StatusDown, results["slow"].Status)
	assert.Equal(t, "Health check timed out", results["slow"].Message)
}

func TestStartPeriodicChecks(t *testing.T) {
	manager := NewManager(nil)
	manager.Register(&mockChecker{name: "tick"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		manager.StartPeriodicChecks(ctx, 10*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return len(manager.GetResults()) == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("periodic checks did not stop")
	}
}

func TestConversionChecker(t *testing.T) {
	checker := NewConversionChecker()
	assert.Equal(t, "conversion", checker.Name())
	assert.NoError(t, checker.Check(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, checker.Check(ctx), context.Canceled)
}
