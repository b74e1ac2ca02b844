package genlog_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stratadb/strata/pkg/codec"
	"github.com/stratadb/strata/internal/genlog"
)

func TestSortedGenerationsIgnoresStrayFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"3.log", "1.log", "2.log", "README.md", "notanumber.log", "4.log.bak"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	gens, err := genlog.SortedGenerations(dir)
	require.NoError(t, err)
	require.Equal(t, []uint64{1, 2, 3}, gens)
}

func TestSortedGenerationsOnMissingDir(t *testing.T) {
	gens, err := genlog.SortedGenerations(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	require.Empty(t, gens)
}

func TestWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	w, err := genlog.OpenForAppend(dir, 1, 4096)
	require.NoError(t, err)

	rec := codec.NewSetRecord(1, 0, []byte("key"), []byte("value"))
	offset, length, err := w.Append(rec)
	require.NoError(t, err)
	require.Equal(t, int64(0), offset)
	require.NoError(t, w.Flush())

	r, err := genlog.OpenReader(dir, 1, 4096)
	require.NoError(t, err)
	defer r.Close()

	got, gotLen, err := r.ReadNext()
	require.NoError(t, err)
	require.Equal(t, length, gotLen)
	require.Equal(t, rec.Key, got.Key)
	require.Equal(t, rec.Value, got.Value)

	_, _, err = r.ReadNext()
	require.ErrorIs(t, err, io.EOF)
}

func TestReadAtSeeksToOffset(t *testing.T) {
	dir := t.TempDir()
	w, err := genlog.OpenForAppend(dir, 1, 4096)
	require.NoError(t, err)

	rec1 := codec.NewSetRecord(1, 0, []byte("a"), []byte("1"))
	_, _, err = w.Append(rec1)
	require.NoError(t, err)

	rec2 := codec.NewSetRecord(2, 0, []byte("b"), []byte("2"))
	offset2, _, err := w.Append(rec2)
	require.NoError(t, err)
	require.NoError(t, w.Flush())

	r, err := genlog.OpenReader(dir, 1, 4096)
	require.NoError(t, err)
	defer r.Close()

	got, _, err := r.ReadAt(offset2)
	require.NoError(t, err)
	require.Equal(t, rec2.Key, got.Key)
}

func TestReadRawAtReturnsFramedBytesVerbatim(t *testing.T) {
	dir := t.TempDir()
	w, err := genlog.OpenForAppend(dir, 1, 4096)
	require.NoError(t, err)

	rec := codec.NewSetRecord(1, 0, []byte("key"), []byte("value"))
	offset, length, err := w.Append(rec)
	require.NoError(t, err)
	require.NoError(t, w.Flush())

	r, err := genlog.OpenReader(dir, 1, 4096)
	require.NoError(t, err)
	defer r.Close()

	raw, err := r.ReadRawAt(offset, length)
	require.NoError(t, err)
	require.Len(t, raw, int(length))

	w2, err := genlog.OpenForAppend(dir, 2, 4096)
	require.NoError(t, err)
	newOffset, newLength, err := w2.AppendRaw(raw)
	require.NoError(t, err)
	require.Equal(t, length, newLength)
	require.NoError(t, w2.Flush())

	r2, err := genlog.OpenReader(dir, 2, 4096)
	require.NoError(t, err)
	defer r2.Close()

	got, _, err := r2.ReadAt(newOffset)
	require.NoError(t, err)
	require.Equal(t, rec.Key, got.Key)
	require.Equal(t, rec.Value, got.Value)
	require.True(t, codec.Verify(got))
}

func TestReadNextDetectsCorruption(t *testing.T) {
	dir := t.TempDir()
	w, err := genlog.OpenForAppend(dir, 1, 4096)
	require.NoError(t, err)
	_, _, err = w.Append(codec.NewSetRecord(1, 0, []byte("key"), []byte("value")))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	path := genlog.LogPath(dir, 1)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[len(data)-1] ^= 0xFF
	require.NoError(t, os.WriteFile(path, data, 0o644))

	r, err := genlog.OpenReader(dir, 1, 4096)
	require.NoError(t, err)
	defer r.Close()

	_, _, err = r.ReadNext()
	require.Error(t, err)
}

func TestReaderPoolReusesAndDrops(t *testing.T) {
	dir := t.TempDir()
	w, err := genlog.OpenForAppend(dir, 1, 4096)
	require.NoError(t, err)
	_, _, err = w.Append(codec.NewSetRecord(1, 0, []byte("key"), []byte("value")))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	pool := genlog.NewReaderPool(dir, 4096)
	defer pool.Close()

	r1, err := pool.Get(1)
	require.NoError(t, err)
	r2, err := pool.Get(1)
	require.NoError(t, err)
	require.Same(t, r1, r2)

	pool.Drop(1)
	require.NoError(t, genlog.Delete(dir, 1))
}
