package index_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stratadb/strata/internal/index"
	"github.com/stratadb/strata/pkg/logger"
)

func newTestIndex(t *testing.T) *index.Index {
	t.Helper()
	idx, err := index.New(&index.Config{Logger: logger.NewNop()})
	require.NoError(t, err)
	return idx
}

func TestSetGetDelete(t *testing.T) {
	idx := newTestIndex(t)

	_, ok := idx.Get("missing")
	require.False(t, ok)

	loc := index.Location{Generation: 1, Offset: 10, Length: 20}
	prev, had := idx.Set("key", loc)
	require.False(t, had)
	require.Zero(t, prev)

	got, ok := idx.Get("key")
	require.True(t, ok)
	require.Equal(t, loc, got)
	require.Equal(t, 1, idx.Len())

	loc2 := index.Location{Generation: 2, Offset: 30, Length: 40}
	prev2, had2 := idx.Set("key", loc2)
	require.True(t, had2)
	require.Equal(t, loc, prev2)

	removed, had3 := idx.Delete("key")
	require.True(t, had3)
	require.Equal(t, loc2, removed)
	require.Equal(t, 0, idx.Len())

	_, had4 := idx.Delete("key")
	require.False(t, had4)
}

func TestSnapshotIsACopy(t *testing.T) {
	idx := newTestIndex(t)
	idx.Set("a", index.Location{Generation: 1, Offset: 0, Length: 5})

	snap := idx.Snapshot()
	require.Len(t, snap, 1)

	idx.Set("b", index.Location{Generation: 1, Offset: 5, Length: 5})
	require.Len(t, snap, 1, "snapshot must not observe later mutations")
}

func TestApplyCompactionOnlyTouchesStillLiveKeys(t *testing.T) {
	idx := newTestIndex(t)
	idx.Set("a", index.Location{Generation: 1, Offset: 0, Length: 5})
	idx.Set("b", index.Location{Generation: 1, Offset: 5, Length: 5})

	snap := idx.Snapshot()
	idx.Delete("b")

	idx.ApplyCompaction(map[string]index.Location{
		"a": {Generation: 2, Offset: 0, Length: 5},
		"b": {Generation: 2, Offset: 5, Length: 5},
	})
	_ = snap

	got, ok := idx.Get("a")
	require.True(t, ok)
	require.Equal(t, uint64(2), got.Generation)

	_, ok = idx.Get("b")
	require.False(t, ok, "compaction must not resurrect a concurrently removed key")
}

func TestCloseRejectsFurtherUse(t *testing.T) {
	idx := newTestIndex(t)
	require.NoError(t, idx.Close())
	require.ErrorIs(t, idx.Close(), index.ErrIndexClosed)
}
