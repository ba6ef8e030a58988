package configs

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	Analytics AnalyticsConfig
	Entropy   EntropyConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Environment  string
}

type RedisConfig struct {
	Enabled   bool
	URL       string
	KeyPrefix string
}

type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
	GroupID string
}

type JWTConfig struct {
	Secret     string
	Issuer     string
	Expiration time.Duration
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

type AnalyticsConfig struct {
	RecentEvents   int
	ReportInterval time.Duration
}

// EntropyConfig lists extra words the guess estimator treats as known
type EntropyConfig struct {
	Dictionary []string
}

const defaultJWTSecret = "your-super-secret-key-change-in-production"

var (
	ErrInsecureJWTSecret = errors.New("JWT_SECRET must be set in production")
	ErrInvalidRateLimit  = errors.New("rate limit requests and window must be positive")
	ErrInvalidAnalytics  = errors.New("analytics report interval must be positive")
)

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
			Environment:  getEnv("ENVIRONMENT", "development"),
		},
		Redis: RedisConfig{
			Enabled:   getBoolEnv("REDIS_ENABLED", false),
			URL:       getEnv("REDIS_URL", "redis://localhost:6379"),
			KeyPrefix: getEnv("REDIS_KEY_PREFIX", "strength"),
		},
		Kafka: KafkaConfig{
			Enabled: getBoolEnv("KAFKA_ENABLED", false),
			Brokers: getListEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
			Topic:   getEnv("KAFKA_TOPIC", "strength.assessments"),
			GroupID: getEnv("KAFKA_GROUP_ID", "strength-analytics"),
		},
		JWT: JWTConfig{
			Secret:     getEnv("JWT_SECRET", defaultJWTSecret),
			Issuer:     getEnv("JWT_ISSUER", "strength-service"),
			Expiration: getDurationEnv("JWT_EXPIRATION", 24*time.Hour),
		},
		RateLimit: RateLimitConfig{
			Requests: getIntEnv("RATE_LIMIT_REQUESTS", 100),
			Window:   getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),
		},
		Analytics: AnalyticsConfig{
			RecentEvents:   getIntEnv("ANALYTICS_RECENT_EVENTS", 1000),
			ReportInterval: getDurationEnv("ANALYTICS_REPORT_INTERVAL", 30*time.Second),
		},
		Entropy: EntropyConfig{
			Dictionary: getListEnv("ENTROPY_DICTIONARY", nil),
		},
	}
}

// Validate rejects settings the service cannot safely run with
func (c *Config) Validate() error {
	if c.Server.Environment == "production" && (c.JWT.Secret == "" || c.JWT.Secret == defaultJWTSecret) {
		return ErrInsecureJWTSecret
	}
	if c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0 {
		return ErrInvalidRateLimit
	}
	if c.Analytics.ReportInterval <= 0 {
		return ErrInvalidAnalytics
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
