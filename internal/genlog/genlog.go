// Package genlog implements the generation log set (spec.md §4.3): the
// directory of <generation>.log files a storage engine appends to and
// replays from. A generation is a uint64 identifier; generations are
// totally ordered and a higher generation always holds newer content.
//
// Every record on disk is framed as a 4-byte little-endian length prefix
// followed by that many bytes of codec-encoded payload. This package owns
// that framing; pkg/codec owns what's inside the payload.
package genlog

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	kerrors "github.com/stratadb/strata/pkg/errors"
	"github.com/stratadb/strata/pkg/filesys"
)

// LengthPrefixSize is the width, in bytes, of the little-endian record
// length prefix every log record is framed with.
const LengthPrefixSize = 4

// logExtension is the suffix every generation file carries.
const logExtension = ".log"

// LogPath returns the path of generation g's file within dir.
func LogPath(dir string, g uint64) string {
	return filepath.Join(dir, strconv.FormatUint(g, 10)+logExtension)
}

// SortedGenerations enumerates the generation files in dir and returns
// their identifiers in ascending order. Entries that don't parse as a
// bare uint64 followed by ".log" are ignored rather than treated as
// errors, per spec.md §4.3 — a data directory may pick up stray files.
func SortedGenerations(dir string) ([]uint64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, kerrors.NewIOError(err, "genlog: read data directory").WithPath(dir)
	}

	gens := make([]uint64, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, logExtension) {
			continue
		}
		stem := strings.TrimSuffix(name, logExtension)
		g, err := strconv.ParseUint(stem, 10, 64)
		if err != nil {
			continue
		}
		gens = append(gens, g)
	}

	sort.Slice(gens, func(i, j int) bool { return gens[i] < gens[j] })
	return gens, nil
}

// Delete removes generation g's file from dir.
func Delete(dir string, g uint64) error {
	path := LogPath(dir, g)
	if err := filesys.DeleteFile(path); err != nil {
		return kerrors.NewIOError(err, "genlog: delete generation").WithPath(path).WithGeneration(g)
	}
	return nil
}

// EnsureDir creates dir (and any missing parents) if it doesn't already
// exist. A pre-existing directory is not an error.
func EnsureDir(dir string) error {
	if err := filesys.CreateDir(dir, 0o755, true); err != nil {
		return kerrors.NewIOError(err, "genlog: create data directory").WithPath(dir)
	}
	return nil
}
