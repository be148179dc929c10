package replayguard_test

import (
	"sync"
	"testing"
	"time"

	"github.com/harborauth/twofa/pkg/replayguard"
	"github.com/stretchr/testify/require"
)

func TestAdmitRejectsReplay(t *testing.T) {
	t.Parallel()

	guard := replayguard.NewMemory(time.Minute)

	ok, err := guard.Admit(t.Context(), "fp", "287082", 1)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = guard.Admit(t.Context(), "fp", "287082", 1)
	require.NoError(t, err)
	require.False(t, ok, "same triple must not be admitted twice")
}

func TestAdmitDistinguishesTriples(t *testing.T) {
	t.Parallel()

	guard := replayguard.NewMemory(time.Minute)

	ok, _ := guard.Admit(t.Context(), "fp", "287082", 1)
	require.True(t, ok)

	// Any differing component makes a new triple.
	ok, _ = guard.Admit(t.Context(), "fp", "287082", 2)
	require.True(t, ok)
	ok, _ = guard.Admit(t.Context(), "fp", "081804", 1)
	require.True(t, ok)
	ok, _ = guard.Admit(t.Context(), "other", "287082", 1)
	require.True(t, ok)
}

func TestAdmitConcurrentSingleWinner(t *testing.T) {
	t.Parallel()

	guard := replayguard.NewMemory(time.Minute)

	const attempts = 64
	var wg sync.WaitGroup
	admitted := make(chan bool, attempts)

	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := guard.Admit(t.Context(), "fp", "287082", 7)
			require.NoError(t, err)
			admitted <- ok
		}()
	}
	wg.Wait()
	close(admitted)

	winners := 0
	for ok := range admitted {
		if ok {
			winners++
		}
	}
	require.Equal(t, 1, winners, "exactly one concurrent caller may be admitted")
}

func TestSweepEvictsExpiredTriples(t *testing.T) {
	t.Parallel()

	guard := replayguard.NewMemory(time.Minute)

	ok, _ := guard.Admit(t.Context(), "fp", "287082", 1)
	require.True(t, ok)
	require.Equal(t, 1, guard.Len())

	guard.Sweep(time.Now().Add(2 * time.Minute))
	require.Equal(t, 0, guard.Len())

	// After eviction the triple is admissible again; replay protection
	// past the tolerated span is the verifier's window check, not ours.
	ok, _ = guard.Admit(t.Context(), "fp", "287082", 1)
	require.True(t, ok)
}
