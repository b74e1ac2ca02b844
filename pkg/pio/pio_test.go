package pio_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stratadb/strata/pkg/pio"
)

func TestWriterTracksPosition(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "0.log")

	w, err := pio.NewWriter(path, 4096)
	require.NoError(t, err)
	defer w.Close()

	require.Equal(t, int64(0), w.Position())

	off1, err := w.Write([]byte("hello"))
	require.NoError(t, err)
	require.Equal(t, int64(0), off1)
	require.Equal(t, int64(5), w.Position())

	off2, err := w.Write([]byte("world!"))
	require.NoError(t, err)
	require.Equal(t, int64(5), off2)
	require.Equal(t, int64(11), w.Position())

	require.NoError(t, w.Flush())
}

func TestWriterResumesFromExistingSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "0.log")

	w1, err := pio.NewWriter(path, 4096)
	require.NoError(t, err)
	_, err = w1.Write([]byte("abc"))
	require.NoError(t, err)
	require.NoError(t, w1.Close())

	w2, err := pio.NewWriter(path, 4096)
	require.NoError(t, err)
	defer w2.Close()
	require.Equal(t, int64(3), w2.Position())
}

func TestReaderReadFullAndSeek(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "0.log")

	w, err := pio.NewWriter(path, 4096)
	require.NoError(t, err)
	_, err = w.Write([]byte("abcdefghij"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := pio.NewReader(path, 4096)
	require.NoError(t, err)
	defer r.Close()

	buf := make([]byte, 3)
	require.NoError(t, r.ReadFull(buf))
	require.Equal(t, "abc", string(buf))
	require.Equal(t, int64(3), r.Position())

	require.NoError(t, r.SeekTo(7))
	require.Equal(t, int64(7), r.Position())

	require.NoError(t, r.ReadFull(buf))
	require.Equal(t, "hij", string(buf))
	require.Equal(t, int64(10), r.Position())
}

func TestReaderReadFullErrorsOnShortFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "0.log")

	w, err := pio.NewWriter(path, 4096)
	require.NoError(t, err)
	_, err = w.Write([]byte("ab"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := pio.NewReader(path, 4096)
	require.NoError(t, err)
	defer r.Close()

	buf := make([]byte, 5)
	require.Error(t, r.ReadFull(buf))
}
