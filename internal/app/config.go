package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (OASIS_ prefix), flags, or YAML config files.
type Config struct {
	Addr        string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL string `usage:"PostgreSQL connection URL (OASIS_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	Auth        AuthConfig
	SMTP        SMTPConfig
	Upload      UploadConfig
	RateLimit   RateLimitConfig
	CORS        CORSConfig
	Graceful    GracefulConfig
}

// AuthConfig controls token signing.
type AuthConfig struct {
	Secret   string        `usage:"HMAC secret for auth tokens (OASIS_AUTH_SECRET)" flag:"auth-secret"`
	TokenTTL time.Duration `default:"72h" usage:"Auth token lifetime" flag:"token-ttl"`
}

// SMTPConfig controls outbound mail. When Host is empty, sent mail is logged
// instead of delivered.
type SMTPConfig struct {
	Host     string `default:"" usage:"SMTP server host; empty disables delivery"`
	Port     int    `default:"587" usage:"SMTP server port"`
	Username string `usage:"SMTP username"`
	Password string `usage:"SMTP password"`
	From     string `default:"orders@giftoasis.example" usage:"Sender address for outbound mail"`
}

// UploadConfig controls local media storage.
type UploadConfig struct {
	Dir           string `default:"uploads" usage:"Directory for uploaded media" flag:"upload-dir"`
	PublicBaseURL string `default:"http://localhost:8080/uploads" usage:"Public base URL for uploaded media" flag:"public-base-url"`
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config files,
// and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "OASIS",
		Files:     []string{"config.yaml", "/etc/giftoasis/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.DatabaseURL == "" {
		return nil, errors.New("database URL is required: set OASIS_DATABASE_URL or DATABASE_URL")
	}
	if cfg.Auth.Secret == "" {
		return nil, errors.New("auth secret is required: set OASIS_AUTH_SECRET")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like DATABASE_URL and PORT to the
// application's OASIS_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
