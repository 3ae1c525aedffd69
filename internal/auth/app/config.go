package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	DBDriver     string // Database driver: "sqlite" (dev) or "postgres" (default: sqlite)
	DatabaseURL  string // Postgres DSN for the LMS database (required for postgres driver)
	DatabaseFile string // Path to the SQLite dev database file (default: ./lms.db)
	TablePrefix  string // LMS table name prefix (default: mdl_)
	AuthMethod   string // Auth method eligible accounts must use (default: manual)

	AdminUsername  string // Optional: static admin username; unset disables the admin short circuit
	AdminPassword  string // Static admin password, compared in constant time, never hashed
	AdminFirstName string // Display fields for the admin identity payload
	AdminLastName  string
	AdminEmail     string

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	return Config{
		DBDriver:     getEnvOrDefault("LMS_DB_DRIVER", "sqlite"),
		DatabaseURL:  os.Getenv("LMS_DATABASE_URL"),
		DatabaseFile: getEnvOrDefault("LMS_DATABASE_FILE", "lms.db"),
		TablePrefix:  getEnvOrDefault("LMS_TABLE_PREFIX", "mdl_"),
		AuthMethod:   getEnvOrDefault("LMS_AUTH_METHOD", "manual"),

		AdminUsername:  os.Getenv("ADMIN_USERNAME"),
		AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
		AdminFirstName: getEnvOrDefault("ADMIN_FIRSTNAME", "Site"),
		AdminLastName:  getEnvOrDefault("ADMIN_LASTNAME", "Administrator"),
		AdminEmail:     os.Getenv("ADMIN_EMAIL"),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Accept duration syntax ("30s", "1m") or bare integer seconds.
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
