package svcconfig_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stratadb/strata/internal/svcconfig"
)

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	cfg, ok, err := svcconfig.Load(dir)
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, cfg)
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, svcconfig.Save(dir, &svcconfig.Config{Engine: "kvs", DataDir: dir}))

	cfg, ok, err := svcconfig.Load(dir)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "kvs", cfg.Engine)
}

func TestLoadToleratesJSONCComments(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, svcconfig.FileName)
	contents := "{\n  // the engine this store was opened with\n  \"engine\": \"kvs\",\n  \"dataDir\": \"" + dir + "\",\n}\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, ok, err := svcconfig.Load(dir)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "kvs", cfg.Engine)
}

func TestCheckEngineSwitchAllowsEmptyDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, svcconfig.Save(dir, &svcconfig.Config{Engine: "sled", DataDir: dir}))
	require.NoError(t, svcconfig.CheckEngineSwitch(dir, "kvs"))
}

func TestCheckEngineSwitchRejectsNonEmptyDirectoryWithDifferentEngine(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, svcconfig.Save(dir, &svcconfig.Config{Engine: "sled", DataDir: dir}))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1.log"), []byte("data"), 0o644))

	err := svcconfig.CheckEngineSwitch(dir, "kvs")
	require.Error(t, err)
}

func TestCheckEngineSwitchAllowsSameEngine(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, svcconfig.Save(dir, &svcconfig.Config{Engine: "kvs", DataDir: dir}))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1.log"), []byte("data"), 0o644))
	require.NoError(t, svcconfig.CheckEngineSwitch(dir, "kvs"))
}
