package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	DB        DatabaseConfig
	App       AppConfig
	Logger    LoggerConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Auth      AuthConfig
	Wallet    WalletConfig
	Payment   PaymentConfig
	Kafka     KafkaConfig
	Seed      SeedConfig
}

// DatabaseConfig holds configuration for the database
type DatabaseConfig struct {
	Host            string `mapstructure:"DB_HOST"`
	Port            string `mapstructure:"DB_PORT"`
	User            string `mapstructure:"DB_USER"`
	Password        string `mapstructure:"DB_PASSWORD"`
	Name            string `mapstructure:"DB_NAME"`
	SSLMode         string `mapstructure:"DB_SSLMODE"`
	MaxOpenConns    int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	MaxIdleConns    int    `mapstructure:"DB_MAX_IDLE_CONNS"`
	ConnMaxLifetime int    `mapstructure:"DB_CONN_MAX_LIFETIME_SECONDS"`
	ConnMaxIdleTime int    `mapstructure:"DB_CONN_MAX_IDLE_TIME_SECONDS"`
	AutoMigrate     bool   `mapstructure:"DB_AUTO_MIGRATE"`
}

// AppConfig holds configuration for the application server
type AppConfig struct {
	HTTPPort               string   `mapstructure:"HTTP_PORT"`
	ShutdownTimeoutSeconds int      `mapstructure:"SHUTDOWN_TIMEOUT_SECONDS"`
	CORSAllowedOrigins     []string `mapstructure:"CORS_ALLOWED_ORIGINS"`
	MaxBodyBytes           int64    `mapstructure:"MAX_BODY_BYTES"`
	SwaggerFile            string   `mapstructure:"SWAGGER_FILE"`
}

// LoggerConfig holds configuration for the logger
type LoggerConfig struct {
	Level            string  `mapstructure:"LOG_LEVEL"`
	Format           string  `mapstructure:"LOG_FORMAT"`
	OutputPath       string  `mapstructure:"LOG_OUTPUT_PATH"`
	SlowQuerySeconds float64 `mapstructure:"LOG_SLOW_QUERY_SECONDS"`
	EnableSampling   bool    `mapstructure:"LOG_ENABLE_SAMPLING"`
	ServiceName      string  `mapstructure:"SERVICE_NAME"`
	ServiceVersion   string  `mapstructure:"SERVICE_VERSION"`
}

// RedisConfig holds configuration for Redis
type RedisConfig struct {
	Enabled     bool   `mapstructure:"REDIS_ENABLED"`
	Host        string `mapstructure:"REDIS_HOST"`
	Port        string `mapstructure:"REDIS_PORT"`
	Password    string `mapstructure:"REDIS_PASSWORD"`
	DB          int    `mapstructure:"REDIS_DB"`
	MaxRetries  int    `mapstructure:"REDIS_MAX_RETRIES"`
	PoolSize    int    `mapstructure:"REDIS_POOL_SIZE"`
	MinIdleConn int    `mapstructure:"REDIS_MIN_IDLE_CONN"`
	CacheTTL    int    `mapstructure:"REDIS_CACHE_TTL_SECONDS"`
}

// RateLimitConfig holds configuration for request rate limiting
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"RATE_LIMIT_ENABLED"`
	RequestsPerSecond float64 `mapstructure:"RATE_LIMIT_RPS"`
	BurstCapacity     int     `mapstructure:"RATE_LIMIT_BURST"`
}

// AuthConfig holds token and credential settings
type AuthConfig struct {
	JWTSecret       string `mapstructure:"JWT_SECRET"`
	TokenTTLMinutes int    `mapstructure:"JWT_TTL_MINUTES"`
	Issuer          string `mapstructure:"JWT_ISSUER"`
	BcryptCost      int    `mapstructure:"BCRYPT_COST"`
	AdminEmail      string `mapstructure:"ADMIN_EMAIL"`
	AdminPassword   string `mapstructure:"ADMIN_PASSWORD"`
}

// WalletConfig holds wallet amounts, in rupees
type WalletConfig struct {
	InitialBalance float64 `mapstructure:"WALLET_INITIAL_BALANCE"`
	TopupMin       float64 `mapstructure:"WALLET_TOPUP_MIN"`
	TopupMax       float64 `mapstructure:"WALLET_TOPUP_MAX"`
}

// PaymentConfig tunes the simulated payment gateway and recharge operator
type PaymentConfig struct {
	GatewaySuccessRate  float64 `mapstructure:"PAYMENT_GATEWAY_SUCCESS_RATE"`
	GatewayDelayMillis  int     `mapstructure:"PAYMENT_GATEWAY_DELAY_MS"`
	OperatorSuccessRate float64 `mapstructure:"RECHARGE_OPERATOR_SUCCESS_RATE"`
	OperatorDelayMillis int     `mapstructure:"RECHARGE_OPERATOR_DELAY_MS"`
}

// KafkaConfig holds configuration for the event publisher
type KafkaConfig struct {
	Enabled bool     `mapstructure:"KAFKA_ENABLED"`
	Brokers []string `mapstructure:"KAFKA_BROKERS"`
	Topic   string   `mapstructure:"KAFKA_TOPIC"`
}

// SeedConfig controls startup seeding
type SeedConfig struct {
	Plans bool `mapstructure:"SEED_PLANS"`
	Admin bool `mapstructure:"SEED_ADMIN"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// Set defaults first
	setDefaults(v)

	v.AddConfigPath(path)
	v.SetConfigName("app") // Look for app.env
	v.SetConfigType("env")

	v.AutomaticEnv() // Read from environment variables

	// Try to read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is okay if we have env vars
	}

	var config Config

	config.DB.Host = v.GetString("DB_HOST")
	config.DB.Port = v.GetString("DB_PORT")
	config.DB.User = v.GetString("DB_USER")
	config.DB.Password = v.GetString("DB_PASSWORD")
	config.DB.Name = v.GetString("DB_NAME")
	config.DB.SSLMode = v.GetString("DB_SSLMODE")
	config.DB.MaxOpenConns = v.GetInt("DB_MAX_OPEN_CONNS")
	config.DB.MaxIdleConns = v.GetInt("DB_MAX_IDLE_CONNS")
	config.DB.ConnMaxLifetime = v.GetInt("DB_CONN_MAX_LIFETIME_SECONDS")
	config.DB.ConnMaxIdleTime = v.GetInt("DB_CONN_MAX_IDLE_TIME_SECONDS")
	config.DB.AutoMigrate = v.GetBool("DB_AUTO_MIGRATE")

	config.App.HTTPPort = v.GetString("HTTP_PORT")
	config.App.ShutdownTimeoutSeconds = v.GetInt("SHUTDOWN_TIMEOUT_SECONDS")
	config.App.CORSAllowedOrigins = splitList(v.GetString("CORS_ALLOWED_ORIGINS"))
	config.App.MaxBodyBytes = v.GetInt64("MAX_BODY_BYTES")
	config.App.SwaggerFile = v.GetString("SWAGGER_FILE")

	config.Logger.Level = v.GetString("LOG_LEVEL")
	config.Logger.Format = v.GetString("LOG_FORMAT")
	config.Logger.OutputPath = v.GetString("LOG_OUTPUT_PATH")
	config.Logger.SlowQuerySeconds = v.GetFloat64("LOG_SLOW_QUERY_SECONDS")
	config.Logger.EnableSampling = v.GetBool("LOG_ENABLE_SAMPLING")
	config.Logger.ServiceName = v.GetString("SERVICE_NAME")
	config.Logger.ServiceVersion = v.GetString("SERVICE_VERSION")

	config.Redis.Enabled = v.GetBool("REDIS_ENABLED")
	config.Redis.Host = v.GetString("REDIS_HOST")
	config.Redis.Port = v.GetString("REDIS_PORT")
	config.Redis.Password = v.GetString("REDIS_PASSWORD")
	config.Redis.DB = v.GetInt("REDIS_DB")
	config.Redis.MaxRetries = v.GetInt("REDIS_MAX_RETRIES")
	config.Redis.PoolSize = v.GetInt("REDIS_POOL_SIZE")
	config.Redis.MinIdleConn = v.GetInt("REDIS_MIN_IDLE_CONN")
	config.Redis.CacheTTL = v.GetInt("REDIS_CACHE_TTL_SECONDS")

	config.RateLimit.Enabled = v.GetBool("RATE_LIMIT_ENABLED")
	config.RateLimit.RequestsPerSecond = v.GetFloat64("RATE_LIMIT_RPS")
	config.RateLimit.BurstCapacity = v.GetInt("RATE_LIMIT_BURST")

	config.Auth.JWTSecret = v.GetString("JWT_SECRET")
	config.Auth.TokenTTLMinutes = v.GetInt("JWT_TTL_MINUTES")
	config.Auth.Issuer = v.GetString("JWT_ISSUER")
	config.Auth.BcryptCost = v.GetInt("BCRYPT_COST")
	config.Auth.AdminEmail = v.GetString("ADMIN_EMAIL")
	config.Auth.AdminPassword = v.GetString("ADMIN_PASSWORD")

	config.Wallet.InitialBalance = v.GetFloat64("WALLET_INITIAL_BALANCE")
	config.Wallet.TopupMin = v.GetFloat64("WALLET_TOPUP_MIN")
	config.Wallet.TopupMax = v.GetFloat64("WALLET_TOPUP_MAX")

	config.Payment.GatewaySuccessRate = v.GetFloat64("PAYMENT_GATEWAY_SUCCESS_RATE")
	config.Payment.GatewayDelayMillis = v.GetInt("PAYMENT_GATEWAY_DELAY_MS")
	config.Payment.OperatorSuccessRate = v.GetFloat64("RECHARGE_OPERATOR_SUCCESS_RATE")
	config.Payment.OperatorDelayMillis = v.GetInt("RECHARGE_OPERATOR_DELAY_MS")

	config.Kafka.Enabled = v.GetBool("KAFKA_ENABLED")
	config.Kafka.Brokers = splitList(v.GetString("KAFKA_BROKERS"))
	config.Kafka.Topic = v.GetString("KAFKA_TOPIC")

	config.Seed.Plans = v.GetBool("SEED_PLANS")
	config.Seed.Admin = v.GetBool("SEED_ADMIN")

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "recharge")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME_SECONDS", 300)
	v.SetDefault("DB_CONN_MAX_IDLE_TIME_SECONDS", 60)
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("HTTP_PORT", "5001")
	v.SetDefault("SHUTDOWN_TIMEOUT_SECONDS", 15)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("MAX_BODY_BYTES", 1<<20)
	v.SetDefault("SWAGGER_FILE", "./api/swagger/recharge.swagger.json")

	// Logger defaults
	env := v.GetString("APP_ENV")
	if env == "production" {
		v.SetDefault("LOG_LEVEL", "info")
		v.SetDefault("LOG_FORMAT", "json")
		v.SetDefault("LOG_ENABLE_SAMPLING", true)
	} else {
		v.SetDefault("LOG_LEVEL", "debug")
		v.SetDefault("LOG_FORMAT", "console")
		v.SetDefault("LOG_ENABLE_SAMPLING", false)
	}
	v.SetDefault("LOG_OUTPUT_PATH", "stdout")
	v.SetDefault("LOG_SLOW_QUERY_SECONDS", 0.2)
	v.SetDefault("SERVICE_NAME", "recharge-service")
	v.SetDefault("SERVICE_VERSION", "1.0.0")

	v.SetDefault("REDIS_ENABLED", true)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_MAX_RETRIES", 3)
	v.SetDefault("REDIS_POOL_SIZE", 10)
	v.SetDefault("REDIS_MIN_IDLE_CONN", 2)
	v.SetDefault("REDIS_CACHE_TTL_SECONDS", 300)

	v.SetDefault("RATE_LIMIT_ENABLED", true)
	v.SetDefault("RATE_LIMIT_RPS", 10.0)
	v.SetDefault("RATE_LIMIT_BURST", 20)

	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_TTL_MINUTES", 24*60)
	v.SetDefault("JWT_ISSUER", "recharge-service")
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("ADMIN_EMAIL", "admin@recharge.local")
	v.SetDefault("ADMIN_PASSWORD", "")

	v.SetDefault("WALLET_INITIAL_BALANCE", 5000.0)
	v.SetDefault("WALLET_TOPUP_MIN", 10.0)
	v.SetDefault("WALLET_TOPUP_MAX", 100000.0)

	v.SetDefault("PAYMENT_GATEWAY_SUCCESS_RATE", 0.9)
	v.SetDefault("PAYMENT_GATEWAY_DELAY_MS", 2000)
	v.SetDefault("RECHARGE_OPERATOR_SUCCESS_RATE", 1.0)
	v.SetDefault("RECHARGE_OPERATOR_DELAY_MS", 0)

	v.SetDefault("KAFKA_ENABLED", false)
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_TOPIC", "recharge-events")

	v.SetDefault("SEED_PLANS", true)
	v.SetDefault("SEED_ADMIN", true)
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	var problems []string

	if c.App.HTTPPort == "" {
		problems = append(problems, "HTTP_PORT is required")
	}
	if len(c.Auth.JWTSecret) < 16 {
		problems = append(problems, "JWT_SECRET must be at least 16 characters")
	}
	if c.Auth.TokenTTLMinutes <= 0 {
		problems = append(problems, "JWT_TTL_MINUTES must be positive")
	}
	if c.Seed.Admin && len(c.Auth.AdminPassword) < 8 {
		problems = append(problems, "ADMIN_PASSWORD must be at least 8 characters when SEED_ADMIN is set")
	}
	if c.Wallet.InitialBalance < 0 {
		problems = append(problems, "WALLET_INITIAL_BALANCE must not be negative")
	}
	if c.Wallet.TopupMin <= 0 || c.Wallet.TopupMax < c.Wallet.TopupMin {
		problems = append(problems, "WALLET_TOPUP_MIN must be positive and not above WALLET_TOPUP_MAX")
	}
	if c.Payment.GatewaySuccessRate < 0 || c.Payment.GatewaySuccessRate > 1 {
		problems = append(problems, "PAYMENT_GATEWAY_SUCCESS_RATE must be within [0,1]")
	}
	if c.Payment.OperatorSuccessRate < 0 || c.Payment.OperatorSuccessRate > 1 {
		problems = append(problems, "RECHARGE_OPERATOR_SUCCESS_RATE must be within [0,1]")
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.BurstCapacity <= 0) {
		problems = append(problems, "RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive when rate limiting is enabled")
	}
	if c.Kafka.Enabled && (len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "") {
		problems = append(problems, "KAFKA_BROKERS and KAFKA_TOPIC are required when KAFKA_ENABLED is set")
	}
	if c.App.ShutdownTimeoutSeconds <= 0 {
		problems = append(problems, "SHUTDOWN_TIMEOUT_SECONDS must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// DSN returns the PostgreSQL Data Source Name
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode)
}

// splitList parses a comma separated env value.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
