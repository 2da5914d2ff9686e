package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Redis         RedisConfig         `mapstructure:"redis"`
	HTTPClient    HTTPClientConfig    `mapstructure:"http_client"`
	RateLimit     RateLimitConfig     `mapstructure:"rate_limit"`
	AccessControl AccessControlConfig `mapstructure:"access_control"`
	Auth          AuthConfig          `mapstructure:"auth"`
	Log           LogConfig           `mapstructure:"log"`
	Metrics       MetricsConfig       `mapstructure:"metrics"`
	Clock         ClockConfig         `mapstructure:"clock"`
	Lock          LockConfig          `mapstructure:"lock"`
	Quota         QuotaConfig         `mapstructure:"quota"`
	Pricing       PricingConfig       `mapstructure:"pricing"`
	Entitlement   EntitlementConfig   `mapstructure:"entitlement"`
	Engagement    EngagementConfig    `mapstructure:"engagement"`
	Admission     AdmissionConfig     `mapstructure:"admission"`
	Payment       PaymentConfig       `mapstructure:"payment"`
	AI            AIConfig            `mapstructure:"ai"`
	Chat          ChatConfig          `mapstructure:"chat"`
}

// AccessControlConfig holds privileged account configuration.
type AccessControlConfig struct {
	AdminEmails     []string `mapstructure:"admin_emails"`
	AdminAccountIDs []string `mapstructure:"admin_account_ids"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	Mode            string        `mapstructure:"mode"` // gin mode: debug, release, test
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // postgres or memory
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN returns the database connection string.
func (c *DatabaseConfig) DSN() string {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Database, c.SSLMode,
	)
	if c.Password != "" {
		dsn += fmt.Sprintf(" password=%s", c.Password)
	}
	return dsn
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// HTTPClientConfig holds HTTP client configuration for connection pooling.
type HTTPClientConfig struct {
	// Connection pool settings
	MaxIdleConns        int           `mapstructure:"max_idle_conns"`
	MaxIdleConnsPerHost int           `mapstructure:"max_idle_conns_per_host"`
	MaxConnsPerHost     int           `mapstructure:"max_conns_per_host"`
	IdleConnTimeout     time.Duration `mapstructure:"idle_conn_timeout"`

	// Timeout settings
	DialTimeout         time.Duration `mapstructure:"dial_timeout"`
	TLSHandshakeTimeout time.Duration `mapstructure:"tls_handshake_timeout"`
	ResponseTimeout     time.Duration `mapstructure:"response_timeout"`

	// Keep-alive settings
	KeepAlive time.Duration `mapstructure:"keep_alive"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	// Enabled enables/disables rate limiting. Requires Redis.
	Enabled bool `mapstructure:"enabled"`
	// GlobalLimit is the rate limit per IP per window.
	GlobalLimit  int           `mapstructure:"global_limit"`
	GlobalWindow time.Duration `mapstructure:"global_window"`
	// ChatLimit is the chat rate limit per account per window.
	ChatLimit  int           `mapstructure:"chat_limit"`
	ChatWindow time.Duration `mapstructure:"chat_window"`
	// IdempotencyTTL is the TTL for idempotency keys.
	IdempotencyTTL time.Duration `mapstructure:"idempotency_ttl"`
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	JWTSecret         string        `mapstructure:"jwt_secret"`
	Issuer            string        `mapstructure:"issuer"`
	AccessTokenExpiry time.Duration `mapstructure:"access_token_expiry"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig holds Prometheus configuration.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Path      string `mapstructure:"path"`
}

// ClockConfig selects the timezone that defines a day.
type ClockConfig struct {
	Timezone string `mapstructure:"timezone"`
}

// LockConfig selects the per-account lock backend.
type LockConfig struct {
	Backend    string        `mapstructure:"backend"` // memory or redis
	TTL        time.Duration `mapstructure:"ttl"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
}

// QuotaConfig holds the free daily allowance.
type QuotaConfig struct {
	DailySeconds int64 `mapstructure:"daily_seconds"`
}

// PricingConfig holds the cohort pricing tiers. Amounts are major units.
type PricingConfig struct {
	CohortThreshold         int64 `mapstructure:"cohort_threshold"`
	EarlyBirdAmount         int64 `mapstructure:"early_bird_amount"`
	EarlyBirdDurationMonths int   `mapstructure:"early_bird_duration_months"`
	StandardAmount          int64 `mapstructure:"standard_amount"`
	StandardDurationMonths  int   `mapstructure:"standard_duration_months"`
}

// EntitlementConfig holds premium grant configuration.
type EntitlementConfig struct {
	Stacking string `mapstructure:"stacking"` // reset or stack
}

// EngagementConfig holds XP configuration.
type EngagementConfig struct {
	BaseXPPerEvent    int64 `mapstructure:"base_xp_per_event"`
	SecondsPerBonusXP int64 `mapstructure:"seconds_per_bonus_xp"`
}

// AdmissionConfig holds admission control configuration.
type AdmissionConfig struct {
	Mode            string `mapstructure:"mode"` // optimistic or reserve
	EstimateSeconds int64  `mapstructure:"estimate_seconds"`
	MaxRetries      uint   `mapstructure:"max_retries"`
}

// PaymentConfig holds payment configuration.
type PaymentConfig struct {
	DefaultProvider string         `mapstructure:"default_provider"`
	Currency        string         `mapstructure:"currency"`
	Description     string         `mapstructure:"description"`
	Razorpay        RazorpayConfig `mapstructure:"razorpay"`
	Stripe          StripeConfig   `mapstructure:"stripe"`
	Alipay          AlipayConfig   `mapstructure:"alipay"`
}

// RazorpayConfig holds Razorpay configuration.
type RazorpayConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	BaseURL       string `mapstructure:"base_url"`
	KeyID         string `mapstructure:"key_id"`
	KeySecret     string `mapstructure:"key_secret"`
	WebhookSecret string `mapstructure:"webhook_secret"`
}

// StripeConfig holds Stripe payment configuration.
type StripeConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	SecretKey        string        `mapstructure:"secret_key"`
	WebhookSecret    string        `mapstructure:"webhook_secret"`
	PublishableKey   string        `mapstructure:"publishable_key"`
	WebhookTolerance time.Duration `mapstructure:"webhook_tolerance"`
}

// AlipayConfig holds Alipay payment configuration.
type AlipayConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	AppID           string `mapstructure:"app_id"`
	PrivateKey      string `mapstructure:"private_key"`       // RSA2 private key (PEM format)
	AlipayPublicKey string `mapstructure:"alipay_public_key"` // Alipay public key (PEM format)
	IsProd          bool   `mapstructure:"is_prod"`
	NotifyURL       string `mapstructure:"notify_url"`
	ReturnURL       string `mapstructure:"return_url"`
}

// AIConfig holds completion provider configuration.
type AIConfig struct {
	BaseURL          string        `mapstructure:"base_url"`
	APIKey           string        `mapstructure:"api_key"`
	Model            string        `mapstructure:"model"`
	MaxOutputTokens  int           `mapstructure:"max_output_tokens"`
	Timeout          time.Duration `mapstructure:"timeout"`
	FailureThreshold uint32        `mapstructure:"failure_threshold"`
	CircuitTimeout   time.Duration `mapstructure:"circuit_timeout"`
	CircuitInterval  time.Duration `mapstructure:"circuit_interval"`
}

// ChatConfig holds chat configuration.
type ChatConfig struct {
	SystemPrompt    string `mapstructure:"system_prompt"`
	LimitMessage    string `mapstructure:"limit_message"`
	CacheCapacity   int    `mapstructure:"cache_capacity"`
	MaxMessageRunes int    `mapstructure:"max_message_runes"`
}

// Load loads configuration from file and environment.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile loads configuration from path, or from the default search
// paths when path is empty.
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		// Set config file name and paths
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/aria")
	}

	// Set defaults
	setDefaults(v)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Config file not found, use defaults and env
	}

	// Read from environment variables, e.g. ARIA_QUOTA_DAILY_SECONDS.
	v.SetEnvPrefix("ARIA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal config
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	applySecretEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applySecretEnv overrides sensitive values from short environment names.
func applySecretEnv(cfg *Config) {
	if secret := os.Getenv("ARIA_JWT_SECRET"); secret != "" {
		cfg.Auth.JWTSecret = secret
	}
	if password := os.Getenv("ARIA_DB_PASSWORD"); password != "" {
		cfg.Database.Password = password
	}
	if password := os.Getenv("ARIA_REDIS_PASSWORD"); password != "" {
		cfg.Redis.Password = password
	}
	if key := os.Getenv("ARIA_GEMINI_API_KEY"); key != "" {
		cfg.AI.APIKey = key
	}
	// Payment credentials from environment
	if secret := os.Getenv("ARIA_RAZORPAY_KEY_SECRET"); secret != "" {
		cfg.Payment.Razorpay.KeySecret = secret
	}
	if secret := os.Getenv("ARIA_RAZORPAY_WEBHOOK_SECRET"); secret != "" {
		cfg.Payment.Razorpay.WebhookSecret = secret
	}
	if key := os.Getenv("ARIA_STRIPE_SECRET_KEY"); key != "" {
		cfg.Payment.Stripe.SecretKey = key
	}
	if secret := os.Getenv("ARIA_STRIPE_WEBHOOK_SECRET"); secret != "" {
		cfg.Payment.Stripe.WebhookSecret = secret
	}
	if key := os.Getenv("ARIA_ALIPAY_PRIVATE_KEY"); key != "" {
		cfg.Payment.Alipay.PrivateKey = key
	}
	if key := os.Getenv("ARIA_ALIPAY_PUBLIC_KEY"); key != "" {
		cfg.Payment.Alipay.AlipayPublicKey = key
	}

	// Access control from environment (comma-separated lists).
	if s := os.Getenv("ARIA_ADMIN_EMAILS"); s != "" {
		cfg.AccessControl.AdminEmails = parseCommaSeparatedList(s)
	}
	if s := os.Getenv("ARIA_ADMIN_ACCOUNT_IDS"); s != "" {
		cfg.AccessControl.AdminAccountIDs = parseCommaSeparatedList(s)
	}
}

// Database drivers and lock backends.
const (
	DriverPostgres    = "postgres"
	DriverMemory      = "memory"
	LockBackendMemory = "memory"
	LockBackendRedis  = "redis"
)

// Validate checks values that would otherwise fail at first use.
func (c *Config) Validate() error {
	if _, err := time.LoadLocation(c.Clock.Timezone); err != nil {
		return fmt.Errorf("invalid clock.timezone %q: %w", c.Clock.Timezone, err)
	}
	if c.Quota.DailySeconds <= 0 {
		return fmt.Errorf("quota.daily_seconds must be positive")
	}
	switch c.Entitlement.Stacking {
	case "reset", "stack":
	default:
		return fmt.Errorf("invalid entitlement.stacking %q", c.Entitlement.Stacking)
	}
	switch c.Admission.Mode {
	case "optimistic", "reserve":
	default:
		return fmt.Errorf("invalid admission.mode %q", c.Admission.Mode)
	}
	switch c.Lock.Backend {
	case LockBackendMemory:
	case LockBackendRedis:
		if !c.Redis.Enabled {
			return fmt.Errorf("lock.backend redis requires redis.enabled")
		}
	default:
		return fmt.Errorf("invalid lock.backend %q", c.Lock.Backend)
	}
	switch c.Database.Driver {
	case DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("invalid database.driver %q", c.Database.Driver)
	}
	if c.Pricing.EarlyBirdDurationMonths <= 0 || c.Pricing.StandardDurationMonths <= 0 {
		return fmt.Errorf("pricing durations must be positive")
	}
	return nil
}

func parseCommaSeparatedList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 150*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Database defaults
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.database", "aria")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.conn_max_idle_time", 30*time.Minute)
	v.SetDefault("database.auto_migrate", true)

	// Redis defaults
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.db", 0)

	// HTTP client defaults
	v.SetDefault("http_client.max_idle_conns", 100)
	v.SetDefault("http_client.max_idle_conns_per_host", 20)
	v.SetDefault("http_client.max_conns_per_host", 50)
	v.SetDefault("http_client.idle_conn_timeout", 90*time.Second)
	v.SetDefault("http_client.dial_timeout", 30*time.Second)
	v.SetDefault("http_client.tls_handshake_timeout", 10*time.Second)
	v.SetDefault("http_client.response_timeout", 120*time.Second)
	v.SetDefault("http_client.keep_alive", 30*time.Second)

	// Rate limit defaults
	v.SetDefault("rate_limit.enabled", false)
	v.SetDefault("rate_limit.global_limit", 100)
	v.SetDefault("rate_limit.global_window", time.Minute)
	v.SetDefault("rate_limit.chat_limit", 20)
	v.SetDefault("rate_limit.chat_window", time.Minute)
	v.SetDefault("rate_limit.idempotency_ttl", 24*time.Hour)

	// Access control defaults
	v.SetDefault("access_control.admin_emails", []string{})
	v.SetDefault("access_control.admin_account_ids", []string{})

	// Auth defaults
	v.SetDefault("auth.issuer", "aria")
	v.SetDefault("auth.access_token_expiry", 24*time.Hour)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.namespace", "aria")
	v.SetDefault("metrics.path", "/metrics")

	// Engine defaults
	v.SetDefault("clock.timezone", "Asia/Kolkata")
	v.SetDefault("lock.backend", "memory")
	v.SetDefault("lock.ttl", 10*time.Second)
	v.SetDefault("lock.retry_delay", 20*time.Millisecond)
	v.SetDefault("quota.daily_seconds", 1200)
	v.SetDefault("pricing.cohort_threshold", 50)
	v.SetDefault("pricing.early_bird_amount", 89)
	v.SetDefault("pricing.early_bird_duration_months", 3)
	v.SetDefault("pricing.standard_amount", 121)
	v.SetDefault("pricing.standard_duration_months", 1)
	v.SetDefault("entitlement.stacking", "reset")
	v.SetDefault("engagement.base_xp_per_event", 10)
	v.SetDefault("engagement.seconds_per_bonus_xp", 60)
	v.SetDefault("admission.mode", "optimistic")
	v.SetDefault("admission.estimate_seconds", 30)
	v.SetDefault("admission.max_retries", 5)

	// Payment defaults
	v.SetDefault("payment.default_provider", "razorpay")
	v.SetDefault("payment.currency", "INR")
	v.SetDefault("payment.description", "Aria Premium")
	v.SetDefault("payment.razorpay.enabled", true)
	v.SetDefault("payment.razorpay.base_url", "https://api.razorpay.com/v1")
	v.SetDefault("payment.stripe.enabled", false)
	v.SetDefault("payment.stripe.webhook_tolerance", 5*time.Minute)
	v.SetDefault("payment.alipay.enabled", false)

	// AI defaults
	v.SetDefault("ai.base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.max_output_tokens", 2048)
	v.SetDefault("ai.timeout", 60*time.Second)
	v.SetDefault("ai.failure_threshold", 5)
	v.SetDefault("ai.circuit_timeout", 30*time.Second)
	v.SetDefault("ai.circuit_interval", 60*time.Second)

	// Chat defaults
	v.SetDefault("chat.cache_capacity", 256)
	v.SetDefault("chat.max_message_runes", 4000)
}
