package config

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "./data/queue.mmqf", config.Queue.Path)
	assert.Equal(t, uint64(1), config.Queue.SchemaID)
	assert.Equal(t, 1024, config.Queue.Capacity)
	assert.Equal(t, 64, config.Queue.SlotSize)
	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, "127.0.0.1", config.Server.Bind)
	assert.Equal(t, "auto", config.Server.APIKey)
	assert.Equal(t, "./data/archive", config.Archive.Dir)
	assert.Equal(t, "info", config.Logging.Level)
}

func TestGenerateSecureKey(t *testing.T) {
	t.Run("generate 32 byte key", func(t *testing.T) {
		key, err := GenerateSecureKey(32)
		require.NoError(t, err)
		assert.Len(t, key, 64) // 32 bytes = 64 hex characters

		// Verify it's valid hex
		_, err = hex.DecodeString(key)
		assert.NoError(t, err)
	})

	t.Run("generate different keys", func(t *testing.T) {
		key1, err := GenerateSecureKey(16)
		require.NoError(t, err)
		key2, err := GenerateSecureKey(16)
		require.NoError(t, err)

		assert.NotEqual(t, key1, key2)
	})
}

func TestSaveLoadRoundTrip(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	original := DefaultConfig()
	original.Queue.Path = "/var/lib/mmq/orders.mmqf"
	original.Queue.SchemaID = 42
	original.Queue.Capacity = 4096
	original.Queue.SlotSize = 16
	original.Server.Port = 9300

	require.NoError(t, SaveConfig(original, configPath))

	loaded, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, original, loaded)

	// Saved file has restrictive permissions.
	info, err := os.Stat(configPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestLoadConfig_Missing(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadConfig_Malformed(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("queue: ["), 0600))

	_, err := LoadConfig(configPath)
	assert.Error(t, err)
}

func TestLoadConfig_PartialFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	partial := map[string]interface{}{
		"queue": map[string]interface{}{"path": "/tmp/q.mmqf"},
	}
	data, err := yaml.Marshal(partial)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(configPath, data, 0600))

	loaded, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/q.mmqf", loaded.Queue.Path)
	assert.Zero(t, loaded.Server.Port)
}

func TestBootstrapConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	config, err := BootstrapConfig(configPath, "/tmp/queue.mmqf")
	require.NoError(t, err)

	assert.Equal(t, "/tmp/queue.mmqf", config.Queue.Path)
	assert.NotEqual(t, "auto", config.Server.APIKey)
	assert.Len(t, config.Server.APIKey, 64)
	assert.True(t, ConfigExists(configPath))

	reloaded, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, config.Server.APIKey, reloaded.Server.APIKey)
}
