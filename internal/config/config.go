package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	Addr            string
	LogLevel        string
	WhatsAppNumber  string
	LookupURL       string
	LookupTimeout   time.Duration
	SessionTTL      time.Duration
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	ThemeVariant    string
	ShutdownTimeout time.Duration
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment values win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Addr:            getEnv("QF_ADDR", ":8080"),
		LogLevel:        strings.ToLower(getEnv("QF_LOG_LEVEL", "info")),
		WhatsAppNumber:  getEnv("QF_WHATSAPP_NUMBER", "5511976447001"),
		LookupURL:       getEnv("QF_LOOKUP_URL", "https://viacep.com.br/ws"),
		LookupTimeout:   getEnvAsDuration("QF_LOOKUP_TIMEOUT", 5*time.Second),
		SessionTTL:      getEnvAsDuration("QF_SESSION_TTL", 30*time.Minute),
		RedisAddr:       getEnv("QF_REDIS_ADDR", ""),
		RedisPassword:   getEnv("QF_REDIS_PASSWORD", ""),
		RedisDB:         getEnvAsInt("QF_REDIS_DB", 0),
		ThemeVariant:    getEnv("QF_THEME_VARIANT", ""),
		ShutdownTimeout: getEnvAsDuration("QF_SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

// UseRedis reports whether sessions should be stored in Redis.
func (c *Config) UseRedis() bool {
	return strings.TrimSpace(c.RedisAddr) != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
