package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`
	HTTPPort string `mapstructure:"HTTP_PORT"`

	DBDriver          string        `mapstructure:"DB_DRIVER"`
	DBHost            string        `mapstructure:"DB_HOST"`
	DBPort            string        `mapstructure:"DB_PORT"`
	DBUser            string        `mapstructure:"DB_USER"`
	DBPassword        string        `mapstructure:"DB_PASSWORD"`
	DBName            string        `mapstructure:"DB_NAME"`
	DBMaxConns        int           `mapstructure:"DB_MAX_CONNS"`
	DBConnMaxLifetime time.Duration `mapstructure:"DB_CONN_MAX_LIFETIME"`
	DBAutoMigrate     bool          `mapstructure:"DB_AUTO_MIGRATE"`

	RedisEnabled    bool          `mapstructure:"REDIS_ENABLED"`
	RedisHost       string        `mapstructure:"REDIS_HOST"`
	RedisPort       string        `mapstructure:"REDIS_PORT"`
	RedisPassword   string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB         int           `mapstructure:"REDIS_DB"`
	CatalogCacheTTL time.Duration `mapstructure:"CATALOG_CACHE_TTL"`

	KafkaEnabled     bool   `mapstructure:"KAFKA_ENABLED"`
	KafkaBrokers     string `mapstructure:"KAFKA_BROKERS"`
	KafkaOrderTopic  string `mapstructure:"KAFKA_ORDER_TOPIC"`
	KafkaExpiryTopic string `mapstructure:"KAFKA_EXPIRY_TOPIC"`

	HoldDuration    time.Duration `mapstructure:"HOLD_DURATION"`
	MaxHoldsPerUser int           `mapstructure:"MAX_HOLDS_PER_USER"`

	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST"`
}

var defaults = map[string]any{
	"ENV":       "development",
	"LOG_LEVEL": "info",
	"HTTP_PORT": "8080",

	"DB_DRIVER":            "postgres",
	"DB_HOST":              "localhost",
	"DB_PORT":              "5432",
	"DB_USER":              "postgres",
	"DB_PASSWORD":          "",
	"DB_NAME":              "booking_management",
	"DB_MAX_CONNS":         25,
	"DB_CONN_MAX_LIFETIME": 5 * time.Minute,
	"DB_AUTO_MIGRATE":      true,

	"REDIS_ENABLED":     true,
	"REDIS_HOST":        "localhost",
	"REDIS_PORT":        "6379",
	"REDIS_PASSWORD":    "",
	"REDIS_DB":          0,
	"CATALOG_CACHE_TTL": time.Minute,

	"KAFKA_ENABLED":      false,
	"KAFKA_BROKERS":      "localhost:9092",
	"KAFKA_ORDER_TOPIC":  "order-confirmed",
	"KAFKA_EXPIRY_TOPIC": "block-expired",

	"HOLD_DURATION":      5 * time.Minute,
	"MAX_HOLDS_PER_USER": 5,

	"RATE_LIMIT_RPS":   100.0,
	"RATE_LIMIT_BURST": 100,
}

// Load reads an optional .env file, then the environment, falling back to
// defaults for anything unset.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	// A missing .env is normal outside local development.
	_ = godotenv.Load(envFiles...)

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "postgres", "mysql":
	default:
		return fmt.Errorf("DB_DRIVER must be postgres or mysql, got %q", c.DBDriver)
	}
	if c.HoldDuration <= 0 {
		return fmt.Errorf("HOLD_DURATION must be positive")
	}
	if c.MaxHoldsPerUser <= 0 {
		return fmt.Errorf("MAX_HOLDS_PER_USER must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

func (c *Config) Brokers() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
