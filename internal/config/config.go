// AngelaMos | 2026
// config.go

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	App           AppConfig       `koanf:"app"`
	Server        ServerConfig    `koanf:"server"`
	Database      DatabaseConfig  `koanf:"database"`
	Redis         RedisConfig     `koanf:"redis"`
	JWT           JWTConfig       `koanf:"jwt"`
	Auth          AuthConfig      `koanf:"auth"`
	RateLimit     RateLimitConfig `koanf:"rate_limit"`
	LeadRateLimit RateLimitConfig `koanf:"lead_rate_limit"`
	CORS          CORSConfig      `koanf:"cors"`
	Log           LogConfig       `koanf:"log"`
	Otel          OtelConfig      `koanf:"otel"`
	Metrics       MetricsConfig   `koanf:"metrics"`
	Storage       StorageConfig   `koanf:"storage"`
	Email         EmailConfig     `koanf:"email"`
	Portal        PortalConfig    `koanf:"portal"`
}

type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
	PublicURL   string `koanf:"public_url"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
}

type RedisConfig struct {
	URL          string `koanf:"url"`
	PoolSize     int    `koanf:"pool_size"`
	MinIdleConns int    `koanf:"min_idle_conns"`
}

type JWTConfig struct {
	PrivateKeyPath     string        `koanf:"private_key_path"`
	AccessTokenExpire  time.Duration `koanf:"access_token_expire"`
	RefreshTokenExpire time.Duration `koanf:"refresh_token_expire"`
	Issuer             string        `koanf:"issuer"`
	Audience           string        `koanf:"audience"`
}

type AuthConfig struct {
	MaxAttempts   int           `koanf:"max_attempts"`
	AttemptWindow time.Duration `koanf:"attempt_window"`
}

type RateLimitConfig struct {
	Requests int           `koanf:"requests"`
	Window   time.Duration `koanf:"window"`
	Burst    int           `koanf:"burst"`
}

type CORSConfig struct {
	AllowedOrigins   []string `koanf:"allowed_origins"`
	AllowedMethods   []string `koanf:"allowed_methods"`
	AllowedHeaders   []string `koanf:"allowed_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           int      `koanf:"max_age"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type OtelConfig struct {
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	Enabled     bool    `koanf:"enabled"`
	Insecure    bool    `koanf:"insecure"`
	SampleRate  float64 `koanf:"sample_rate"`
}

type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

type StorageConfig struct {
	Bucket          string        `koanf:"bucket"`
	Region          string        `koanf:"region"`
	Endpoint        string        `koanf:"endpoint"`
	ForcePathStyle  bool          `koanf:"force_path_style"`
	AccessKeyID     string        `koanf:"access_key_id"`
	SecretAccessKey string        `koanf:"secret_access_key"`
	PresignTTL      time.Duration `koanf:"presign_ttl"`
	MaxUploadBytes  int64         `koanf:"max_upload_bytes"`
	CalculatorKey   string        `koanf:"calculator_key"`
}

type EmailConfig struct {
	Provider    string `koanf:"provider"`
	Region      string `koanf:"region"`
	From        string `koanf:"from"`
	FromName    string `koanf:"from_name"`
	OfficeInbox string `koanf:"office_inbox"`
}

type PortalConfig struct {
	EligibleTier     string        `koanf:"eligible_tier"`
	ProvisioningWait time.Duration `koanf:"provisioning_wait"`
	PollInterval     time.Duration `koanf:"poll_interval"`
	CurrencyLabel    string        `koanf:"currency_label"`
	Locale           string        `koanf:"locale"`
}

// Load reads defaults, then the optional YAML file, then environment.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKeyReplacer), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"app.name":        "Studio Portal",
		"app.version":     "1.0.0",
		"app.environment": "development",
		"app.public_url":  "http://localhost:3000",

		"server.host":             "0.0.0.0",
		"server.port":             8080,
		"server.read_timeout":     "30s",
		"server.write_timeout":    "60s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "15s",

		"database.max_open_conns":     25,
		"database.max_idle_conns":     5,
		"database.conn_max_lifetime":  "1h",
		"database.conn_max_idle_time": "30m",

		"redis.pool_size":      10,
		"redis.min_idle_conns": 2,

		"jwt.access_token_expire":  "15m",
		"jwt.refresh_token_expire": "168h",
		"jwt.issuer":               "studio-portal",
		"jwt.audience":             "studio-portal-api",
		"jwt.private_key_path":     "keys/private.pem",

		"auth.max_attempts":   5,
		"auth.attempt_window": "15m",

		"rate_limit.requests": 100,
		"rate_limit.window":   "1m",
		"rate_limit.burst":    20,

		"lead_rate_limit.requests": 10,
		"lead_rate_limit.window":   "1h",
		"lead_rate_limit.burst":    3,

		"cors.allowed_origins": []string{"http://localhost:3000"},
		"cors.allowed_methods": []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"DELETE",
			"OPTIONS",
		},
		"cors.allowed_headers": []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-Request-ID",
		},
		"cors.allow_credentials": true,
		"cors.max_age":           300,

		"log.level":  "info",
		"log.format": "json",

		"otel.enabled":      false,
		"otel.insecure":     true,
		"otel.sample_rate":  0.1,
		"otel.service_name": "studio-portal",

		"metrics.enabled": true,
		"metrics.path":    "/metrics",

		"storage.region":           "us-east-1",
		"storage.presign_ttl":      "15m",
		"storage.max_upload_bytes": 50 << 20,
		"storage.calculator_key":   "public/fee-calculator.xlsx",

		"email.provider":  "log",
		"email.region":    "us-east-1",
		"email.from_name": "Studio",

		"portal.eligible_tier":     "premium",
		"portal.provisioning_wait": "5s",
		"portal.poll_interval":     "500ms",
		"portal.currency_label":    "USD",
		"portal.locale":            "en-US",
	}

	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return fmt.Errorf("set default %s: %w", key, err)
		}
	}

	return nil
}

var envKeyMap = map[string]string{
	"DATABASE_URL":                "database.url",
	"REDIS_URL":                   "redis.url",
	"ENVIRONMENT":                 "app.environment",
	"PUBLIC_URL":                  "app.public_url",
	"HOST":                        "server.host",
	"PORT":                        "server.port",
	"LOG_LEVEL":                   "log.level",
	"LOG_FORMAT":                  "log.format",
	"JWT_PRIVATE_KEY_PATH":        "jwt.private_key_path",
	"JWT_ACCESS_TOKEN_EXPIRE":     "jwt.access_token_expire",
	"JWT_REFRESH_TOKEN_EXPIRE":    "jwt.refresh_token_expire",
	"JWT_ISSUER":                  "jwt.issuer",
	"JWT_AUDIENCE":                "jwt.audience",
	"AUTH_MAX_ATTEMPTS":           "auth.max_attempts",
	"AUTH_ATTEMPT_WINDOW":         "auth.attempt_window",
	"RATE_LIMIT_REQUESTS":         "rate_limit.requests",
	"RATE_LIMIT_WINDOW":           "rate_limit.window",
	"RATE_LIMIT_BURST":            "rate_limit.burst",
	"OTEL_ENDPOINT":               "otel.endpoint",
	"OTEL_EXPORTER_OTLP_ENDPOINT": "otel.endpoint",
	"OTEL_SERVICE_NAME":           "otel.service_name",
	"OTEL_ENABLED":                "otel.enabled",
	"OTEL_INSECURE":               "otel.insecure",
	"OTEL_SAMPLE_RATE":            "otel.sample_rate",
	"METRICS_ENABLED":             "metrics.enabled",
	"S3_BUCKET":                   "storage.bucket",
	"S3_REGION":                   "storage.region",
	"S3_ENDPOINT":                 "storage.endpoint",
	"S3_FORCE_PATH_STYLE":         "storage.force_path_style",
	"AWS_ACCESS_KEY_ID":           "storage.access_key_id",
	"AWS_SECRET_ACCESS_KEY":       "storage.secret_access_key",
	"EMAIL_PROVIDER":              "email.provider",
	"EMAIL_REGION":                "email.region",
	"EMAIL_FROM":                  "email.from",
	"EMAIL_OFFICE_INBOX":          "email.office_inbox",
	"PORTAL_ELIGIBLE_TIER":        "portal.eligible_tier",
	"PORTAL_PROVISIONING_WAIT":    "portal.provisioning_wait",
	"PORTAL_CURRENCY_LABEL":       "portal.currency_label",
	"PORTAL_LOCALE":               "portal.locale",
}

func envKeyReplacer(s string) string {
	if mapped, ok := envKeyMap[s]; ok {
		return mapped
	}
	return ""
}

func validate(c *Config) error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.JWT.PrivateKeyPath == "" {
		return fmt.Errorf("JWT_PRIVATE_KEY_PATH is required")
	}

	if c.Storage.Bucket == "" {
		return fmt.Errorf("S3_BUCKET is required")
	}

	switch c.Email.Provider {
	case "ses":
		if c.Email.From == "" {
			return fmt.Errorf("EMAIL_FROM is required for the ses provider")
		}
	case "log":
	default:
		return fmt.Errorf("unknown email provider %q", c.Email.Provider)
	}

	switch c.Portal.EligibleTier {
	case "basic", "standard", "premium":
	default:
		return fmt.Errorf("unknown portal tier %q", c.Portal.EligibleTier)
	}

	if c.Portal.ProvisioningWait < 0 {
		return fmt.Errorf("portal.provisioning_wait must not be negative")
	}

	if c.Auth.MaxAttempts <= 0 || c.Auth.AttemptWindow <= 0 {
		return fmt.Errorf("auth.max_attempts and auth.attempt_window must be positive")
	}

	if c.CORS.AllowCredentials {
		for _, origin := range c.CORS.AllowedOrigins {
			if origin == "*" {
				return fmt.Errorf(
					"CORS wildcard '*' cannot be used with AllowCredentials",
				)
			}
		}
	}

	if c.IsProduction() && c.Otel.Enabled && c.Otel.Insecure {
		return fmt.Errorf("OTEL_INSECURE must be false in production")
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be positive")
	}

	if !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with /")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
