package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	ResetConfig()

	require.NotNil(t, VConfig)
	assert.Equal(t, "file:/tmp/gatehouse", VConfig.GetString(StorageURL))
	assert.Equal(t, ":8080", VConfig.GetString(ListenAddr))
}

func TestGatestorageEnvOverride(t *testing.T) {
	t.Setenv(StorageURLEnv, "etcd:http://localhost:2379")
	ResetConfig()

	assert.Equal(t, "etcd:http://localhost:2379", VConfig.GetString(StorageURL))
}

func TestPrefixedEnvOverride(t *testing.T) {
	t.Setenv("GATEHOUSE_STORAGE_URL", "file:/custom/path")
	ResetConfig()

	assert.Equal(t, "file:/custom/path", VConfig.GetString(StorageURL))
}

func TestLoadIsIdempotent(t *testing.T) {
	ResetConfig()

	err := Load()
	assert.NoError(t, err)
}
