package lifecycle_test

import (
	"io"
	"log/slog"
	"multipart-upload/internal/core/domain"
	"multipart-upload/internal/core/service/lifecycle"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestGuard_ObserveUnobserve(t *testing.T) {
	// Arrange
	guard := lifecycle.NewGuard(discardLogger)
	first, second := uuid.New(), uuid.New()

	// Act
	require.NoError(t, guard.Observe(first, func() {}))
	require.NoError(t, guard.Observe(second, func() {}))

	// Assert
	assert.Equal(t, 2, guard.Active())
	assert.ErrorIs(t, guard.Observe(first, func() {}), domain.ErrSessionAlreadyObserved)

	guard.Unobserve(first)
	guard.Unobserve(first)
	assert.Equal(t, 1, guard.Active())

	guard.Unobserve(second)
	assert.Equal(t, 0, guard.Active())
}

func TestGuard_TeardownRunsEveryCleanupOnce(t *testing.T) {
	// Arrange
	guard := lifecycle.NewGuard(discardLogger)
	var calls [3]atomic.Int32
	for i := range calls {
		require.NoError(t, guard.Observe(uuid.New(), func() { calls[i].Add(1) }))
	}

	// Act
	guard.Teardown()
	guard.Teardown()

	// Assert
	assert.Equal(t, 0, guard.Active())
	require.Eventually(t, func() bool {
		for i := range calls {
			if calls[i].Load() != 1 {
				return false
			}
		}
		return true
	}, time.Second, 5*time.Millisecond)
}

func TestGuard_TeardownDoesNotWait(t *testing.T) {
	// Arrange
	guard := lifecycle.NewGuard(discardLogger)
	release := make(chan struct{})
	done := make(chan struct{})
	require.NoError(t, guard.Observe(uuid.New(), func() {
		<-release
		close(done)
	}))

	// Act
	returned := make(chan struct{})
	go func() {
		guard.Teardown()
		close(returned)
	}()

	// Assert
	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("teardown blocked on a cleanup")
	}
	close(release)
	<-done
}

func TestGuard_UnobservedCleanupNotFired(t *testing.T) {
	// Arrange
	guard := lifecycle.NewGuard(discardLogger)
	id := uuid.New()
	var fired atomic.Bool
	require.NoError(t, guard.Observe(id, func() { fired.Store(true) }))
	guard.Unobserve(id)

	// Act
	guard.Teardown()

	// Assert
	time.Sleep(20 * time.Millisecond)
	assert.False(t, fired.Load())
}

func TestGuard_TeardownSurvivesPanickingCleanup(t *testing.T) {
	// Arrange
	guard := lifecycle.NewGuard(discardLogger)
	var fired atomic.Bool
	require.NoError(t, guard.Observe(uuid.New(), func() { panic("boom") }))
	require.NoError(t, guard.Observe(uuid.New(), func() { fired.Store(true) }))

	// Act
	guard.Teardown()

	// Assert
	require.Eventually(t, fired.Load, time.Second, 5*time.Millisecond)
}
