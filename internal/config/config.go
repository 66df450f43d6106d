// Package config loads the server configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Database drivers
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// MaxStoredValueLength is the width of the value columns in both stores
const MaxStoredValueLength = 1000

// Blob storage backends
const (
	StorageLocal  = "local"
	StorageRemote = "remote"
)

// Config holds every process-wide setting
type Config struct {
	Port string

	// Store
	DBDriver   string
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBTLS      bool
	SQLitePath string

	// FieldMaxLength bounds min/max length attributes and stored value text
	FieldMaxLength int

	// Blob storage
	BlobStorage           string
	MediaRoot             string
	MediaURL              string
	RemoteStorageEndpoint string
	RemoteStoragePublic   string
	RemoteStorageToken    string
	RemoteStorageTimeout  time.Duration

	SchemaCacheSize int
	SchemaCacheTTL  time.Duration
	MaxUploadBytes  int64

	ShutdownTimeout time.Duration
}

// Load reads the configuration from the environment, applying defaults
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	cfg.Port = getEnvDefault("PORT", "3001")

	cfg.DBDriver = strings.ToLower(getEnvDefault("DB_DRIVER", DriverSQLite))
	if cfg.DBDriver != DriverMySQL && cfg.DBDriver != DriverSQLite {
		return nil, fmt.Errorf("DB_DRIVER: unsupported value %q, expected mysql or sqlite", cfg.DBDriver)
	}
	cfg.DBHost = getEnvDefault("DB_HOST", "127.0.0.1")
	cfg.DBPort, err = getEnvInt("DB_PORT", 4000)
	if err != nil {
		return nil, fmt.Errorf("DB_PORT: %w", err)
	}
	cfg.DBUser = getEnvDefault("DB_USER", "root")
	cfg.DBPassword = os.Getenv("DB_PASSWORD")
	cfg.DBName = getEnvDefault("DB_NAME", "risk_management")
	cfg.DBTLS = getEnvDefault("DB_TLS", "false") == "true"
	cfg.SQLitePath = getEnvDefault("SQLITE_PATH", "risk_management.db")

	cfg.FieldMaxLength, err = getEnvInt("FIELD_MAX_LENGTH", MaxStoredValueLength)
	if err != nil {
		return nil, fmt.Errorf("FIELD_MAX_LENGTH: %w", err)
	}
	if cfg.FieldMaxLength < 1 || cfg.FieldMaxLength > MaxStoredValueLength {
		return nil, fmt.Errorf("FIELD_MAX_LENGTH: must be between 1 and %d, got %d", MaxStoredValueLength, cfg.FieldMaxLength)
	}

	cfg.BlobStorage = strings.ToLower(getEnvDefault("BLOB_STORAGE", StorageLocal))
	cfg.MediaRoot = getEnvDefault("MEDIA_ROOT", "media")
	cfg.MediaURL = getEnvDefault("MEDIA_URL", "/media/")
	if !strings.HasPrefix(cfg.MediaURL, "/") {
		cfg.MediaURL = "/" + cfg.MediaURL
	}
	if !strings.HasSuffix(cfg.MediaURL, "/") {
		cfg.MediaURL += "/"
	}
	cfg.RemoteStorageEndpoint = strings.TrimRight(os.Getenv("REMOTE_STORAGE_ENDPOINT"), "/")
	cfg.RemoteStoragePublic = os.Getenv("REMOTE_STORAGE_PUBLIC_URL")
	cfg.RemoteStorageToken = os.Getenv("REMOTE_STORAGE_TOKEN")
	cfg.RemoteStorageTimeout, err = getEnvDuration("REMOTE_STORAGE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("REMOTE_STORAGE_TIMEOUT: %w", err)
	}
	switch cfg.BlobStorage {
	case StorageLocal:
	case StorageRemote:
		if cfg.RemoteStorageEndpoint == "" {
			return nil, fmt.Errorf("REMOTE_STORAGE_ENDPOINT: required when BLOB_STORAGE=remote")
		}
		if cfg.RemoteStoragePublic == "" {
			cfg.RemoteStoragePublic = cfg.RemoteStorageEndpoint + "/"
		}
	default:
		return nil, fmt.Errorf("BLOB_STORAGE: unsupported value %q, expected local or remote", cfg.BlobStorage)
	}

	cfg.SchemaCacheSize, err = getEnvInt("SCHEMA_CACHE_SIZE", 256)
	if err != nil {
		return nil, fmt.Errorf("SCHEMA_CACHE_SIZE: %w", err)
	}
	cfg.SchemaCacheTTL, err = getEnvDuration("SCHEMA_CACHE_TTL", time.Minute)
	if err != nil {
		return nil, fmt.Errorf("SCHEMA_CACHE_TTL: %w", err)
	}
	maxUpload, err := getEnvInt("MAX_UPLOAD_BYTES", 10<<20)
	if err != nil {
		return nil, fmt.Errorf("MAX_UPLOAD_BYTES: %w", err)
	}
	cfg.MaxUploadBytes = int64(maxUpload)

	cfg.ShutdownTimeout, err = getEnvDuration("SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// DatabaseDSN returns the DSN for the configured driver
func (c *Config) DatabaseDSN() string {
	if c.DBDriver == DriverSQLite {
		return SQLiteDSN(c.SQLitePath)
	}
	mc := mysql.NewConfig()
	mc.User = c.DBUser
	mc.Passwd = c.DBPassword
	mc.Net = "tcp"
	mc.Addr = fmt.Sprintf("%s:%d", c.DBHost, c.DBPort)
	mc.DBName = c.DBName
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.Params = map[string]string{"charset": "utf8mb4"}
	if c.DBTLS {
		mc.TLSConfig = "tidb"
	}
	return mc.FormatDSN()
}

// SQLiteDSN enables foreign keys and immediate write transactions on path
func SQLiteDSN(path string) string {
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate"
}

func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid integer: %q", val)
	}
	return n, nil
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("invalid duration: %q (use Go syntax: 30s, 1m)", val)
	}
	return d, nil
}
