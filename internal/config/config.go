// Package config loads Valory's runtime configuration from the environment,
// an optional .env file, and an optional config file, in that order of
// precedence (environment wins).
package config

import (
	"fmt"
	"runtime"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/lPotatoUwUl/discordbot-valory/internal/logger"
)

// StoreDriver selects which UserStore implementation the bot runs against.
type StoreDriver string

// Supported store drivers.
const (
	StoreDriverDynamo StoreDriver = "dynamo"
	StoreDriverMemory StoreDriver = "memory"
)

// StoreConfig holds the user store connection settings.
type StoreConfig struct {
	Driver   StoreDriver // "dynamo" for production, "memory" for local runs
	Table    string      // DynamoDB table name
	Region   string      // AWS region
	Endpoint string      // Custom endpoint URL, e.g. a local DynamoDB; empty for AWS
}

// Config is the full runtime configuration for the bot.
type Config struct {
	ChatChannelID string // The only channel whose messages are relayed

	BackendURL     string        // Base URL of the local inference server
	RequestTimeout time.Duration // Timeout for the /chat request
	ProbeTimeout   time.Duration // Timeout for the /healthcheck probe

	PythonBin     string // Python executable used to launch the backend
	BackendScript string // Script passed to the executable, must exist on disk
	StopGrace     time.Duration // How long stop waits before escalating to kill

	RelayWorkers int // Number of background relay workers

	Store StoreConfig
}

// Load reads configuration from a .env file (if present) and the environment.
// Every key can be set via VALORY_* environment variables, e.g.
// VALORY_CHAT_CHANNEL_ID or VALORY_BACKEND_URL.
func Load() (*Config, error) {
	// .env is optional; a missing file is not an error.
	if err := godotenv.Load(); err == nil {
		logger.Debug("loaded .env file")
	}

	v := viper.New()
	v.SetEnvPrefix("VALORY")
	v.AutomaticEnv()

	v.SetDefault("CHAT_CHANNEL_ID", "")
	v.SetDefault("BACKEND_URL", "http://127.0.0.1:5005")
	v.SetDefault("REQUEST_TIMEOUT", "90s")
	v.SetDefault("PROBE_TIMEOUT", "3s")
	v.SetDefault("PYTHON_BIN", defaultPythonBin())
	v.SetDefault("BACKEND_SCRIPT", "./ai_chatbot.py")
	v.SetDefault("STOP_GRACE", "5s")
	v.SetDefault("RELAY_WORKERS", 4)
	v.SetDefault("STORE_DRIVER", string(StoreDriverDynamo))
	v.SetDefault("STORE_TABLE", "Users")
	v.SetDefault("STORE_REGION", "us-east-1")
	v.SetDefault("STORE_ENDPOINT", "")

	cfg := &Config{
		ChatChannelID:  v.GetString("CHAT_CHANNEL_ID"),
		BackendURL:     v.GetString("BACKEND_URL"),
		RequestTimeout: v.GetDuration("REQUEST_TIMEOUT"),
		ProbeTimeout:   v.GetDuration("PROBE_TIMEOUT"),
		PythonBin:      v.GetString("PYTHON_BIN"),
		BackendScript:  v.GetString("BACKEND_SCRIPT"),
		StopGrace:      v.GetDuration("STOP_GRACE"),
		RelayWorkers:   v.GetInt("RELAY_WORKERS"),
		Store: StoreConfig{
			Driver:   StoreDriver(v.GetString("STORE_DRIVER")),
			Table:    v.GetString("STORE_TABLE"),
			Region:   v.GetString("STORE_REGION"),
			Endpoint: v.GetString("STORE_ENDPOINT"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// defaultPythonBin points at the interpreter of a local virtualenv, which is
// how the backend is expected to be set up.
func defaultPythonBin() string {
	if runtime.GOOS == "windows" {
		return `./venv/Scripts/python.exe`
	}
	return "./venv/bin/python"
}

func (c *Config) validate() error {
	if c.BackendURL == "" {
		return fmt.Errorf("backend URL must not be empty")
	}
	if c.RequestTimeout <= 0 || c.ProbeTimeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	if c.RelayWorkers < 1 {
		return fmt.Errorf("relay worker count must be at least 1")
	}
	switch c.Store.Driver {
	case StoreDriverDynamo, StoreDriverMemory:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	return nil
}
