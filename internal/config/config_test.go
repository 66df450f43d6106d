package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "DB_DRIVER", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_TLS",
		"SQLITE_PATH", "FIELD_MAX_LENGTH", "BLOB_STORAGE", "MEDIA_ROOT", "MEDIA_URL",
		"REMOTE_STORAGE_ENDPOINT", "REMOTE_STORAGE_PUBLIC_URL", "REMOTE_STORAGE_TOKEN",
		"REMOTE_STORAGE_TIMEOUT", "SCHEMA_CACHE_SIZE", "SCHEMA_CACHE_TTL", "MAX_UPLOAD_BYTES",
		"SHUTDOWN_TIMEOUT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "3001", cfg.Port)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, 1000, cfg.FieldMaxLength)
	assert.Equal(t, StorageLocal, cfg.BlobStorage)
	assert.Equal(t, "/media/", cfg.MediaURL)
	assert.Equal(t, time.Minute, cfg.SchemaCacheTTL)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DRIVER", "MySQL")
	t.Setenv("DB_PORT", "3306")
	t.Setenv("FIELD_MAX_LENGTH", "500")
	t.Setenv("MEDIA_URL", "uploads")
	t.Setenv("BLOB_STORAGE", "remote")
	t.Setenv("REMOTE_STORAGE_ENDPOINT", "https://bucket.example.com/")
	t.Setenv("SCHEMA_CACHE_TTL", "30s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverMySQL, cfg.DBDriver)
	assert.Equal(t, 3306, cfg.DBPort)
	assert.Equal(t, 500, cfg.FieldMaxLength)
	assert.Equal(t, "/uploads/", cfg.MediaURL)
	assert.Equal(t, "https://bucket.example.com", cfg.RemoteStorageEndpoint)
	assert.Equal(t, "https://bucket.example.com/", cfg.RemoteStoragePublic)
	assert.Equal(t, 30*time.Second, cfg.SchemaCacheTTL)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{name: "bad driver", env: map[string]string{"DB_DRIVER": "postgres"}, want: "DB_DRIVER"},
		{name: "bad port", env: map[string]string{"DB_PORT": "abc"}, want: "DB_PORT"},
		{name: "zero max length", env: map[string]string{"FIELD_MAX_LENGTH": "0"}, want: "FIELD_MAX_LENGTH"},
		{name: "max length wider than value column", env: map[string]string{"FIELD_MAX_LENGTH": "2000"}, want: "between 1 and 1000"},
		{name: "remote without endpoint", env: map[string]string{"BLOB_STORAGE": "remote"}, want: "REMOTE_STORAGE_ENDPOINT"},
		{name: "bad storage", env: map[string]string{"BLOB_STORAGE": "ftp"}, want: "BLOB_STORAGE"},
		{name: "bad ttl", env: map[string]string{"SCHEMA_CACHE_TTL": "soon"}, want: "SCHEMA_CACHE_TTL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDatabaseDSN(t *testing.T) {
	cfg := &Config{DBDriver: DriverSQLite, SQLitePath: "/tmp/x.db"}
	assert.True(t, strings.HasPrefix(cfg.DatabaseDSN(), "file:/tmp/x.db?"))
	assert.Contains(t, cfg.DatabaseDSN(), "foreign_keys(1)")

	cfg = &Config{DBDriver: DriverMySQL, DBUser: "root", DBPassword: "pw", DBHost: "db", DBPort: 4000, DBName: "risk"}
	dsn := cfg.DatabaseDSN()
	assert.True(t, strings.HasPrefix(dsn, "root:pw@tcp(db:4000)/risk?"))
	assert.Contains(t, dsn, "parseTime=true")
}
