// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"development"`
	Port   string `env:"PORT" envDefault:"3000"`

	DatabaseURL string `env:"DATABASE_URL,required"`

	// RequiresAuth disables bearer-token enforcement when false. Non-production use only.
	RequiresAuth bool `env:"REQUIRES_AUTH" envDefault:"true"`

	// Token key material. Inline PEM wins over the file variant.
	JWTPrivateKey     string        `env:"JWT_PRIVATE_KEY"`
	JWTPrivateKeyFile string        `env:"JWT_PRIVATE_KEY_FILE"`
	JWTPublicKey      string        `env:"JWT_PUBLIC_KEY"`
	JWTPublicKeyFile  string        `env:"JWT_PUBLIC_KEY_FILE"`
	TokenTTL          time.Duration `env:"TOKEN_TTL" envDefault:"0s"`

	MaxInvalidLogons int `env:"MAX_INVALID_LOGONS" envDefault:"10"`

	// ImageStore is "file" (IMAGE_ROOT, served under /images/) or "s3".
	ImageStore     string `env:"IMAGE_STORE" envDefault:"file"`
	ImageRoot      string `env:"IMAGE_ROOT" envDefault:"./public/images"`
	ImageBaseURL   string `env:"IMAGE_BASE_URL"`
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES" envDefault:"2621440"`
	S3Bucket       string `env:"S3_BUCKET"`
	S3Region       string `env:"S3_REGION" envDefault:"eu-north-1"`
	S3Prefix       string `env:"S3_PREFIX" envDefault:"images/"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
	LogFile   string `env:"LOG_FILE"`

	// Comma-separated list of allowed origins; "*" allows all.
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`

	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"15s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	Quota QuotaConfig
	Cache CacheConfig
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))
	for _, origin := range origins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// PrivateKeyPEM returns the signing key, reading the file variant if needed.
func (c *Config) PrivateKeyPEM() ([]byte, error) {
	return pemFrom(c.JWTPrivateKey, c.JWTPrivateKeyFile)
}

// PublicKeyPEM returns the verification key, reading the file variant if needed.
func (c *Config) PublicKeyPEM() ([]byte, error) {
	return pemFrom(c.JWTPublicKey, c.JWTPublicKeyFile)
}

func pemFrom(inline, file string) ([]byte, error) {
	if inline != "" {
		// Env files often carry PEM with escaped newlines.
		return []byte(strings.ReplaceAll(inline, `\n`, "\n")), nil
	}
	if file == "" {
		return nil, nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read key file %s: %w", file, err)
	}
	return data, nil
}

// Validate enforces settings the server cannot start without.
func (c *Config) Validate() error {
	if c.JWTPrivateKey == "" && c.JWTPrivateKeyFile == "" {
		return fmt.Errorf("FATAL ERROR: JWT private key is not defined")
	}
	if c.JWTPublicKey == "" && c.JWTPublicKeyFile == "" {
		return fmt.Errorf("FATAL ERROR: JWT public key is not defined")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	switch c.ImageStore {
	case "file":
	case "s3":
		if c.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when IMAGE_STORE=s3")
		}
	default:
		return fmt.Errorf("unknown IMAGE_STORE %q", c.ImageStore)
	}
	return nil
}

// Load reads an optional .env file, parses environment variables and
// validates the result.
func Load() (*Config, error) {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
