package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "atoll", cfg.Mongo.Database)
	assert.Equal(t, 5*time.Second, cfg.Mongo.OperationTimeout)
	assert.EqualValues(t, 10, cfg.Mongo.ConnectAttempts)
	assert.Equal(t, 1000, cfg.MailCode.MaxAttempts)
	assert.False(t, cfg.PubSub.Enabled)
	assert.Equal(t, time.Minute, cfg.Worker.SweepInterval)
	assert.Equal(t, "localhost:9090", cfg.Server.MetricsAddress)
	assert.Equal(t, "localhost:9091", cfg.Worker.MetricsAddress)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	content := []byte("mongo:\n  database: fromfile\n  transactions: true\nworker:\n  sweep_interval: 30s\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "atoll.yaml"), content, 0o600))
	t.Setenv("ATOLL_MONGO_DATABASE", "fromenv")
	t.Setenv("ATOLL_MAILCODE_MAX_ATTEMPTS", "7")
	t.Setenv("ATOLL_WORKER_METRICS_ADDRESS", "0.0.0.0:9191")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "fromenv", cfg.Mongo.Database)
	assert.True(t, cfg.Mongo.Transactions)
	assert.Equal(t, 7, cfg.MailCode.MaxAttempts)
	assert.Equal(t, 30*time.Second, cfg.Worker.SweepInterval)
	assert.Equal(t, "0.0.0.0:9191", cfg.Worker.MetricsAddress)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown log level", env: map[string]string{"ATOLL_SERVER_LOG_LEVEL": "loud"}},
		{name: "non positive attempts", env: map[string]string{"ATOLL_MAILCODE_MAX_ATTEMPTS": "0"}},
		{name: "mongo url without scheme", env: map[string]string{"ATOLL_MONGO_URL": "not a url"}},
		{name: "zero operation timeout", env: map[string]string{"ATOLL_MONGO_OPERATION_TIMEOUT": "0s"}},
		{name: "worker metrics address without port", env: map[string]string{"ATOLL_WORKER_METRICS_ADDRESS": "localhost"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(t.TempDir())
			assert.Error(t, err)
		})
	}
}
