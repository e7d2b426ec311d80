package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("VOLTALERT_CONFIG", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".local", "share", "voltalert", "voltalert.db"), cfg.Database.Path)
	require.Equal(t, "en-US", cfg.UI.Locale)
	require.True(t, cfg.Journal.Enabled)
	require.Equal(t, 30*24*time.Hour, cfg.Journal.Retention)
	require.Equal(t, 4, cfg.Simulator.Sessions)
	require.InDelta(t, 0.35, cfg.Simulator.FailureRate, 1e-9)
	require.Equal(t, 750*time.Millisecond, cfg.Simulator.Step)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	path := filepath.Join(dir, "voltalert.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[ui]
locale = "de-DE"

[simulator]
sessions = 9
failure_rate = 0.5
step = "2s"
`), 0o600))
	t.Setenv("VOLTALERT_CONFIG", path)
	t.Setenv("VOLTALERT_UI_LOCALE", "nb-NO")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "nb-NO", cfg.UI.Locale, "env should win over file")
	require.Equal(t, 9, cfg.Simulator.Sessions)
	require.InDelta(t, 0.5, cfg.Simulator.FailureRate, 1e-9)
	require.Equal(t, 2*time.Second, cfg.Simulator.Step)
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	path := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[simulator]\nfailure_rate = 3.0\n"), 0o600))
	t.Setenv("VOLTALERT_CONFIG", path)

	_, err := Load()
	require.ErrorContains(t, err, "failure_rate")
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	path := filepath.Join(dir, "nested", "config.toml")

	cfg := Default()
	cfg.UI.Locale = "de-DE"
	cfg.Simulator.Sessions = 2
	cfg.Journal.Retention = 48 * time.Hour
	require.NoError(t, Save(cfg, path))

	t.Setenv("VOLTALERT_CONFIG", path)
	got, err := Load()
	require.NoError(t, err)
	require.Equal(t, "de-DE", got.UI.Locale)
	require.Equal(t, 2, got.Simulator.Sessions)
	require.Equal(t, 48*time.Hour, got.Journal.Retention)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.Database.Path = " "
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Simulator.Sessions = -1
	require.Error(t, cfg.Validate())
}
