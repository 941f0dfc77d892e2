package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds the service configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	MessageBus    MessageBusConfig
	NewRelic      NewRelicConfig
	Elasticsearch ElasticsearchConfig
	Media         MediaConfig
	Logging       LoggingConfig
}

// ServerConfig holds the HTTP server configuration
type ServerConfig struct {
	Port          int
	Mode          string // debug, release, test
	CorsWhiteList []string
}

// DatabaseConfig holds the database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConn  int
	MaxIdle  int
	Debug    bool
}

// RedisConfig holds the Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	Enabled  bool
}

// MessageBusConfig holds the Azure Service Bus configuration
type MessageBusConfig struct {
	ConnectionString string
	Prefix           string
	ERPQueue         string
	Enabled          bool
}

// NewRelicConfig holds the New Relic configuration
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// ElasticsearchConfig holds the Elasticsearch configuration
type ElasticsearchConfig struct {
	URLs     []string
	Username string
	Password string
	Index    string
	Enabled  bool
}

// MediaConfig holds the object storage configuration for uploaded images
type MediaConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string
}

// LoggingConfig holds the logging configuration
type LoggingConfig struct {
	Level string
	JSON  bool
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Server
	port, _ := strconv.Atoi(getEnv("PORT", "8097"))
	mode := getEnv("GIN_MODE", "debug")
	corsList := strings.Split(getEnv("CORS_WHITELIST", "*"), ",")

	// Database
	dbPort, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	dbMaxConn, _ := strconv.Atoi(getEnv("DB_MAX_CONN", "20"))
	dbMaxIdle, _ := strconv.Atoi(getEnv("DB_MAX_IDLE", "5"))
	dbDebug, _ := strconv.ParseBool(getEnv("DB_DEBUG", "false"))

	// Redis
	redisPort, _ := strconv.Atoi(getEnv("REDIS_PORT", "6379"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	redisEnabled, _ := strconv.ParseBool(getEnv("REDIS_ENABLED", "true"))

	// Message bus
	sbEnabled, _ := strconv.ParseBool(getEnv("SERVICEBUS_ENABLED", "true"))

	// New Relic
	nrEnabled, _ := strconv.ParseBool(getEnv("NEW_RELIC_ENABLED", "true"))

	// Elasticsearch
	esURLs := strings.Split(getEnv("ES_URL", "http://localhost:9200"), ",")
	esEnabled, _ := strconv.ParseBool(getEnv("ES_ENABLED", "true"))

	// Media storage
	mediaSSL, _ := strconv.ParseBool(getEnv("MEDIA_USE_SSL", "false"))

	// Logging
	logJSON, _ := strconv.ParseBool(getEnv("LOG_JSON", "true"))

	return &Config{
		Server: ServerConfig{
			Port:          port,
			Mode:          mode,
			CorsWhiteList: corsList,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Name:     getEnv("DB_NAME", "inspection_db"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
			MaxConn:  dbMaxConn,
			MaxIdle:  dbMaxIdle,
			Debug:    dbDebug,
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     redisPort,
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
			Enabled:  redisEnabled,
		},
		MessageBus: MessageBusConfig{
			ConnectionString: getEnv("SERVICEBUS_CONNECTION_STRING", ""),
			Prefix:           getEnv("SERVICEBUS_PREFIX", ""),
			ERPQueue:         getEnv("SERVICEBUS_ERP_QUEUE", "inspection-decisions"),
			Enabled:          sbEnabled,
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "Fleet Inspection"),
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			Enabled:    nrEnabled,
		},
		Elasticsearch: ElasticsearchConfig{
			URLs:     esURLs,
			Username: getEnv("ES_USERNAME", ""),
			Password: getEnv("ES_PASSWORD", ""),
			Index:    getEnv("ES_INDEX", "inspection-records"),
			Enabled:  esEnabled,
		},
		Media: MediaConfig{
			Endpoint:  getEnv("MEDIA_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MEDIA_ACCESS_KEY", ""),
			SecretKey: getEnv("MEDIA_SECRET_KEY", ""),
			Bucket:    getEnv("MEDIA_BUCKET", "inspection-media"),
			UseSSL:    mediaSSL,
			PublicURL: getEnv("MEDIA_PUBLIC_URL", ""),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			JSON:  logJSON,
		},
	}, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
