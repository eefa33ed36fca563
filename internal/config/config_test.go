package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:5005", cfg.BackendURL)
	assert.Equal(t, 90*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 3*time.Second, cfg.ProbeTimeout)
	assert.Equal(t, "./ai_chatbot.py", cfg.BackendScript)
	assert.Equal(t, 5*time.Second, cfg.StopGrace)
	assert.Equal(t, 4, cfg.RelayWorkers)
	assert.Equal(t, StoreDriverDynamo, cfg.Store.Driver)
	assert.Equal(t, "Users", cfg.Store.Table)
	assert.NotEmpty(t, cfg.PythonBin)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("VALORY_CHAT_CHANNEL_ID", "channel-42")
	t.Setenv("VALORY_BACKEND_URL", "http://127.0.0.1:6006")
	t.Setenv("VALORY_REQUEST_TIMEOUT", "30s")
	t.Setenv("VALORY_RELAY_WORKERS", "2")
	t.Setenv("VALORY_STORE_DRIVER", "memory")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "channel-42", cfg.ChatChannelID)
	assert.Equal(t, "http://127.0.0.1:6006", cfg.BackendURL)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 2, cfg.RelayWorkers)
	assert.Equal(t, StoreDriverMemory, cfg.Store.Driver)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "zero timeout", key: "VALORY_REQUEST_TIMEOUT", value: "0s"},
		{name: "negative probe timeout", key: "VALORY_PROBE_TIMEOUT", value: "-1s"},
		{name: "zero workers", key: "VALORY_RELAY_WORKERS", value: "0"},
		{name: "unknown store driver", key: "VALORY_STORE_DRIVER", value: "postgres"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
