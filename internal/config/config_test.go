package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("catalog", "functions.yaml", "")
	fs.String("log-level", "warn", "")
	fs.Bool("allow-unknown", false, "")
	fs.Bool("strict", false, "")
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, &Config{Catalog: "functions.yaml", LogLevel: "warn"}, cfg)
	lvl, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, lvl)
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "fncall.yaml")
	require.NoError(t, os.WriteFile(path, []byte("catalog: from-file.yaml\nlog_level: info\nstrict: true\n"), 0o600))

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "from-file.yaml", cfg.Catalog)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.Strict)

	t.Setenv("FNCALL_LOG_LEVEL", "debug")
	t.Setenv("FNCALL_ALLOW_UNKNOWN", "true")
	cfg, err = Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.AllowUnknown)

	fs := newFlags()
	require.NoError(t, fs.Parse([]string{"--catalog", "from-flag.yaml", "--log-level", "error"}))
	cfg, err = Load("", fs)
	require.NoError(t, err)
	assert.Equal(t, "from-flag.yaml", cfg.Catalog)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestLoad_ExplicitConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("catalog: custom-catalog.json\n"), 0o600))
	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "custom-catalog.json", cfg.Catalog)
}

func TestLoad_InvalidLevel(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("FNCALL_LOG_LEVEL", "loud")
	_, err := Load("", nil)
	require.ErrorContains(t, err, "invalid log level")
}
