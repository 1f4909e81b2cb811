package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCommand(t *testing.T) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	BindFlags(cmd)
	require.NoError(t, cmd.ParseFlags(nil))
	return cmd
}

func TestFromCommandDefaults(t *testing.T) {
	cmd := newTestCommand(t)
	cfg := FromCommand(cmd)
	assert.Equal(t, "local", string(cfg.StorageMode))
	assert.Equal(t, DefaultBasePath, cfg.BasePath)
	assert.Equal(t, DefaultAWSRegion, cfg.AWSRegion)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.LogJSON)
}

func TestFromCommandFlagOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage_mode: s3\nbucket_name: from-file\n"), 0o644))

	cmd := newTestCommand(t)
	require.NoError(t, cmd.ParseFlags([]string{"--config-file=" + path, "--storage-mode=local"}))

	cfg := FromCommand(cmd)
	assert.Equal(t, "local", string(cfg.StorageMode), "explicit flag beats config file")
	assert.Equal(t, "from-file", cfg.BucketName, "config file fills in a field the flag never set")
}

func TestFromCommandMissingConfigFileFallsThroughToDefaults(t *testing.T) {
	cmd := newTestCommand(t)
	require.NoError(t, cmd.ParseFlags([]string{"--config-file=" + filepath.Join(t.TempDir(), "absent.yaml")}))

	cfg := FromCommand(cmd)
	assert.Equal(t, "local", string(cfg.StorageMode))
}

func TestFromCommandFileLogJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_json: true\nlog_level: debug\n"), 0o644))

	cmd := newTestCommand(t)
	require.NoError(t, cmd.ParseFlags([]string{"--config-file=" + path}))

	cfg := FromCommand(cmd)
	assert.True(t, cfg.LogJSON)
	assert.Equal(t, "debug", cfg.LogLevel)
}
