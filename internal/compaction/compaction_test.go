package compaction_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stratadb/strata/internal/compaction"
	"github.com/stratadb/strata/internal/genlog"
	"github.com/stratadb/strata/internal/index"
	"github.com/stratadb/strata/pkg/codec"
)

func TestCompactIntoCopiesLiveRecordsVerbatim(t *testing.T) {
	dir := t.TempDir()

	w1, err := genlog.OpenForAppend(dir, 1, 4096)
	require.NoError(t, err)
	offA, lenA, err := w1.Append(codec.NewSetRecord(1, 0, []byte("a"), []byte("1")))
	require.NoError(t, err)
	offB, lenB, err := w1.Append(codec.NewSetRecord(2, 0, []byte("b"), []byte("2")))
	require.NoError(t, err)
	// A stale, superseded Set for "a" that the snapshot below won't reference.
	_, _, err = w1.Append(codec.NewSetRecord(3, 0, []byte("a"), []byte("stale")))
	require.NoError(t, err)
	require.NoError(t, w1.Close())

	snapshot := map[string]index.Location{
		"a": {Generation: 1, Offset: offA, Length: lenA},
		"b": {Generation: 1, Offset: offB, Length: lenB},
	}

	c := compaction.New(dir, 4096)
	result, err := c.CompactInto(snapshot, 2)
	require.NoError(t, err)
	require.Len(t, result.Updates, 2)

	r, err := genlog.OpenReader(dir, 2, 4096)
	require.NoError(t, err)
	defer r.Close()

	locA := result.Updates["a"]
	gotA, _, err := r.ReadAt(locA.Offset)
	require.NoError(t, err)
	require.Equal(t, []byte("1"), gotA.Value)
	require.True(t, codec.Verify(gotA))

	locB := result.Updates["b"]
	gotB, _, err := r.ReadAt(locB.Offset)
	require.NoError(t, err)
	require.Equal(t, []byte("2"), gotB.Value)
	require.Equal(t, uint64(2), gotB.Sequence, "sequence number must survive verbatim copy")
}

func TestCompactIntoReadsAcrossMultipleSourceGenerations(t *testing.T) {
	dir := t.TempDir()

	w1, err := genlog.OpenForAppend(dir, 1, 4096)
	require.NoError(t, err)
	off1, len1, err := w1.Append(codec.NewSetRecord(1, 0, []byte("a"), []byte("1")))
	require.NoError(t, err)
	require.NoError(t, w1.Close())

	w2, err := genlog.OpenForAppend(dir, 2, 4096)
	require.NoError(t, err)
	off2, len2, err := w2.Append(codec.NewSetRecord(2, 0, []byte("b"), []byte("2")))
	require.NoError(t, err)
	require.NoError(t, w2.Close())

	snapshot := map[string]index.Location{
		"a": {Generation: 1, Offset: off1, Length: len1},
		"b": {Generation: 2, Offset: off2, Length: len2},
	}

	c := compaction.New(dir, 4096)
	result, err := c.CompactInto(snapshot, 3)
	require.NoError(t, err)
	require.Len(t, result.Updates, 2)
	require.Positive(t, result.BytesWritten)
}
