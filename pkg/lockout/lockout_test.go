package lockout_test

import (
	"sync"
	"testing"
	"time"

	"github.com/harborauth/twofa/pkg/lockout"
	"github.com/stretchr/testify/require"
)

func TestLocksAfterMaxAttempts(t *testing.T) {
	t.Parallel()

	tracker := lockout.NewMemory(5, 15*time.Minute)

	for i := 1; i <= 4; i++ {
		count, err := tracker.RecordFailure(t.Context(), "alice")
		require.NoError(t, err)
		require.Equal(t, i, count)

		status, err := tracker.Check(t.Context(), "alice")
		require.NoError(t, err)
		require.False(t, status.Locked)
	}

	_, err := tracker.RecordFailure(t.Context(), "alice")
	require.NoError(t, err)

	status, err := tracker.Check(t.Context(), "alice")
	require.NoError(t, err)
	require.True(t, status.Locked)
	require.Equal(t, 5, status.Failures)
	require.Greater(t, status.RetryAfter, time.Duration(0))
	require.LessOrEqual(t, status.RetryAfter, 15*time.Minute)
}

func TestSuccessClearsEntry(t *testing.T) {
	t.Parallel()

	tracker := lockout.NewMemory(5, 15*time.Minute)

	for range 5 {
		_, err := tracker.RecordFailure(t.Context(), "alice")
		require.NoError(t, err)
	}
	require.NoError(t, tracker.RecordSuccess(t.Context(), "alice"))

	status, err := tracker.Check(t.Context(), "alice")
	require.NoError(t, err)
	require.False(t, status.Locked)
	require.Zero(t, status.Failures)
}

func TestWindowExpiryResetsCount(t *testing.T) {
	t.Parallel()

	tracker := lockout.NewMemory(5, 50*time.Millisecond)

	for range 5 {
		_, err := tracker.RecordFailure(t.Context(), "alice")
		require.NoError(t, err)
	}
	status, _ := tracker.Check(t.Context(), "alice")
	require.True(t, status.Locked)

	time.Sleep(60 * time.Millisecond)

	status, err := tracker.Check(t.Context(), "alice")
	require.NoError(t, err)
	require.False(t, status.Locked, "lockout ends once the window elapses")

	count, err := tracker.RecordFailure(t.Context(), "alice")
	require.NoError(t, err)
	require.Equal(t, 1, count, "expired window starts fresh at one")
}

func TestKeysAreIndependent(t *testing.T) {
	t.Parallel()

	tracker := lockout.NewMemory(5, 15*time.Minute)

	for range 5 {
		_, err := tracker.RecordFailure(t.Context(), "alice")
		require.NoError(t, err)
	}

	status, err := tracker.Check(t.Context(), "bob")
	require.NoError(t, err)
	require.False(t, status.Locked)
}

func TestConcurrentFailuresAllCounted(t *testing.T) {
	t.Parallel()

	tracker := lockout.NewMemory(1000, 15*time.Minute)

	const attempts = 100
	var wg sync.WaitGroup
	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := tracker.RecordFailure(t.Context(), "alice")
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	status, err := tracker.Check(t.Context(), "alice")
	require.NoError(t, err)
	require.Equal(t, attempts, status.Failures)
}

func TestSweepDropsStaleEntries(t *testing.T) {
	t.Parallel()

	tracker := lockout.NewMemory(5, time.Minute)
	_, err := tracker.RecordFailure(t.Context(), "alice")
	require.NoError(t, err)
	require.Equal(t, 1, tracker.Len())

	tracker.Sweep(time.Now().Add(2 * time.Minute))
	require.Equal(t, 0, tracker.Len())
}
