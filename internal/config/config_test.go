package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Parse()
	require.NoError(t, err)

	require.Equal(t, 5000, cfg.Port)
	require.Equal(t, ":5000", cfg.Addr())
	require.Equal(t, DriverSQLite, cfg.StorageDriver)
	require.Equal(t, "gigflow.db", cfg.DatabaseDSN)
	require.Equal(t, 168*time.Hour, cfg.JWTExpiresIn)
	require.Equal(t, "gigflow_token", cfg.CookieName)
	require.Equal(t, "http://localhost:5173", cfg.CORSOrigin)
	require.Equal(t, 4, cfg.NotifyWorkers)
	require.Equal(t, 256, cfg.NotifyQueueSize)
	require.Equal(t, 5*time.Second, cfg.NotifyTimeout)
	require.Equal(t, "gigflow:events", cfg.RedisEventsChannel)
	require.Equal(t, 15*time.Second, cfg.ShutdownTimeout)
	require.False(t, cfg.IsProduction())
}

func TestParse_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("APP_ENV", "Production")
	t.Setenv("PORT", "8081")
	t.Setenv("STORAGE_DRIVER", "mongo")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017/?replicaSet=rs0")
	t.Setenv("JWT_EXPIRES_IN", "24h")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Parse()
	require.NoError(t, err)
	require.True(t, cfg.IsProduction())
	require.Equal(t, ":8081", cfg.Addr())
	require.Equal(t, DriverMongo, cfg.StorageDriver)
	require.Equal(t, 24*time.Hour, cfg.JWTExpiresIn)
	require.Equal(t, "localhost:6379", cfg.RedisAddr)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{name: "missing_secret", env: map[string]string{"JWT_SECRET": ""}, wantErr: "JWT_SECRET"},
		{name: "bad_driver", env: map[string]string{"STORAGE_DRIVER": "oracle"}, wantErr: "unsupported STORAGE_DRIVER"},
		{name: "mongo_without_uri", env: map[string]string{"STORAGE_DRIVER": "mongo"}, wantErr: "MONGO_URI"},
		{name: "zero_workers", env: map[string]string{"NOTIFY_WORKERS": "0"}, wantErr: "NOTIFY_WORKERS"},
		{name: "bad_port", env: map[string]string{"PORT": "70000"}, wantErr: "PORT"},
		{name: "unparsable_duration", env: map[string]string{"JWT_EXPIRES_IN": "7d"}, wantErr: "duration"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "test-secret")
			t.Setenv("MONGO_URI", "")
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			_, err := Parse()
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
