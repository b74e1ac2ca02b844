// Package svcconfig implements the optional, human-readable server
// configuration file spec.md §6 describes: a record of which engine name
// and data directory a store was last opened with, read only to reject a
// switch to a different engine against a non-empty directory.
//
// The file is JSONC (JSON with comments, via hujson) so an operator can
// annotate it by hand, and is written atomically (via natefinch/atomic)
// so a crash mid-save can never leave a half-written config behind.
package svcconfig

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
	"github.com/tailscale/hujson"

	kerrors "github.com/stratadb/strata/pkg/errors"
)

// FileName is the config file's name within a data directory.
const FileName = "strata.conf.json"

// Config records which engine a data directory was opened with.
type Config struct {
	Engine  string `json:"engine"`
	DataDir string `json:"dataDir"`
}

// path returns the config file's path within dataDir.
func path(dataDir string) string {
	return filepath.Join(dataDir, FileName)
}

// Load reads and parses the config file in dataDir. It returns
// (nil, false, nil) if the file doesn't exist — a fresh data directory is
// not an error.
func Load(dataDir string) (*Config, bool, error) {
	p := path(dataDir)
	raw, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, kerrors.NewIOError(err, "svcconfig: read config").WithPath(p)
	}

	standardized, err := hujson.Standardize(raw)
	if err != nil {
		return nil, false, kerrors.NewDeserializeError(err, "svcconfig: invalid JSONC").WithDetail("path", p)
	}

	var cfg Config
	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return nil, false, kerrors.NewDeserializeError(err, "svcconfig: invalid JSON").WithDetail("path", p)
	}

	return &cfg, true, nil
}

// Save atomically writes cfg to dataDir's config file.
func Save(dataDir string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return kerrors.NewIOError(err, "svcconfig: marshal config")
	}
	data = append(data, '\n')

	p := path(dataDir)
	if err := atomic.WriteFile(p, bytes.NewReader(data)); err != nil {
		return kerrors.NewIOError(err, "svcconfig: write config").WithPath(p)
	}
	return nil
}

// CheckEngineSwitch rejects starting engine against dataDir when the
// directory already holds data (any entry besides the config file) written by
// a different engine, per spec.md §6's "reject an attempt to switch the
// engine against a non-empty directory."
func CheckEngineSwitch(dataDir, engine string) error {
	cfg, ok, err := Load(dataDir)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if cfg.Engine == "" || cfg.Engine == engine {
		return nil
	}

	entries, err := os.ReadDir(dataDir)
	if err != nil && !os.IsNotExist(err) {
		return kerrors.NewIOError(err, "svcconfig: read data directory").WithPath(dataDir)
	}

	hasData := false
	for _, e := range entries {
		if e.Name() != FileName {
			hasData = true
			break
		}
	}
	if !hasData {
		return nil
	}

	return kerrors.NewStringError(
		"data directory " + dataDir + " was created with engine \"" + cfg.Engine +
			"\"; refusing to open it with engine \"" + engine + "\"",
	)
}
