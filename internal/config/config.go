package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Chat     ChatConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	TracingEnabled     bool
	OtlpEndpoint       string
}

type DatabaseConfig struct {
	Connection string
}

type JWTConfig struct {
	Secret    string
	ExpiresIn time.Duration
}

type ChatConfig struct {
	HistoryLimit      int
	StoreTimeout      time.Duration
	SessionMaxIdle    time.Duration
	CleanupInterval   time.Duration
	EventExportTopic  string
	PersistAuditTrail bool
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			TracingEnabled:     getEnvAsBool("TRACING_ENABLED", false),
			OtlpEndpoint:       getEnv("OTLP_ENDPOINT", "localhost:4318"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		JWT: JWTConfig{
			Secret:    getEnv("JWT_SECRET", ""),
			ExpiresIn: getEnvAsDuration("JWT_EXPIRES_IN", 24*time.Hour),
		},
		Chat: ChatConfig{
			HistoryLimit:      getEnvAsInt("CHAT_HISTORY_LIMIT", 100),
			StoreTimeout:      getEnvAsDuration("CHAT_STORE_TIMEOUT", 5*time.Second),
			SessionMaxIdle:    getEnvAsDuration("CHAT_SESSION_MAX_IDLE", time.Hour),
			CleanupInterval:   getEnvAsDuration("CHAT_CLEANUP_INTERVAL", 10*time.Minute),
			EventExportTopic:  getEnv("CHAT_EVENT_EXPORT_TOPIC", "chat.events"),
			PersistAuditTrail: getEnvAsBool("CHAT_PERSIST_AUDIT_TRAIL", true),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
