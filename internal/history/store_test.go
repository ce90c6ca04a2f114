package history

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestAppendAndRecent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	started := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.Append(ctx, Record{
		BuildID: "build-1", Version: "v2.0.0", Outcome: OutcomeSuccess,
		Started: started, Duration: 1200 * time.Millisecond,
	}))
	require.NoError(t, s.Append(ctx, Record{
		BuildID: "build-1", Version: "dev", Outcome: OutcomeFailure,
		Error: "generator exited 255", Started: started, Duration: 300 * time.Millisecond,
	}))

	recs, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	// Newest first.
	require.Equal(t, "dev", recs[0].Version)
	require.Equal(t, OutcomeFailure, recs[0].Outcome)
	require.Equal(t, "generator exited 255", recs[0].Error)

	require.Equal(t, "v2.0.0", recs[1].Version)
	require.Equal(t, OutcomeSuccess, recs[1].Outcome)
	require.Empty(t, recs[1].Error)
	require.Equal(t, started.Unix(), recs[1].Started.Unix())
	require.Equal(t, 1200*time.Millisecond, recs[1].Duration)
}

func TestRecent_HonorsLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Append(ctx, Record{
			BuildID: fmt.Sprintf("build-%d", i), Version: "v2.0.0",
			Outcome: OutcomeSuccess, Started: time.Now(),
		}))
	}

	recs, err := s.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	require.Equal(t, "build-4", recs[0].BuildID)
}

func TestRecent_EmptyStore(t *testing.T) {
	s := openTestStore(t)
	recs, err := s.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Empty(t, recs)
}
