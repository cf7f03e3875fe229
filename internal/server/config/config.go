// Package config handles configuration for the server component: defaults,
// a JSON file overlay, environment variables and command-line flags, applied
// in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/joho/godotenv"
)

// Config holds runtime settings for the gophauth server.
//
// Fields:
//   - HTTPAddr / GRPCAddr: bind addresses for the two transports.
//   - StorageDriver: "memory", "sqlite" or "postgres".
//   - DatabaseDSN: SQLite file path or PostgreSQL DSN (pgx).
//   - SecretKey: HMAC secret for signing JWTs (HS256). Required.
//   - TokenIssuer / AccessTokenValidityDuration: JWT iss claim and lifetime.
//   - HashMemoryKiB / HashIterations / HashParallelism: argon2id cost.
type Config struct {
	HTTPAddr                    string        `env:"HTTP_ADDR"`
	GRPCAddr                    string        `env:"GRPC_ADDR"`
	StorageDriver               string        `env:"STORAGE_DRIVER"`
	DatabaseDSN                 string        `env:"DATABASE_DSN"`
	SecretKey                   string        `env:"SECRET_KEY"`
	TokenIssuer                 string        `env:"TOKEN_ISSUER"`
	AccessTokenValidityDuration time.Duration `env:"ACCESS_TOKEN_VALIDITY_DURATION"`
	HashMemoryKiB               uint32        `env:"HASH_MEMORY_KIB"`
	HashIterations              uint32        `env:"HASH_ITERATIONS"`
	HashParallelism             uint8         `env:"HASH_PARALLELISM"`
	LogLevel                    string        `env:"LOG_LEVEL"`
	CORSAllowOrigins            string        `env:"CORS_ALLOW_ORIGINS"`
}

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "GOPHAUTH_"

// LoadDefaults populates Config with development defaults. SecretKey is
// deliberately left empty.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8080"
	c.GRPCAddr = ":50051"
	c.StorageDriver = "sqlite"
	c.DatabaseDSN = "gophauth.db"
	c.TokenIssuer = "gophauth"
	c.AccessTokenValidityDuration = time.Hour
	c.HashMemoryKiB = 64 * 1024
	c.HashIterations = 1
	c.HashParallelism = 4
	c.LogLevel = "info"
	c.CORSAllowOrigins = "*"
}

// Validate reports the first setting that would prevent the server from
// starting.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case "memory", "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
	if c.StorageDriver != "memory" && c.DatabaseDSN == "" {
		return errors.New("database dsn is required")
	}
	if c.SecretKey == "" {
		return errors.New("secret key is required")
	}
	if c.AccessTokenValidityDuration <= 0 {
		return errors.New("access token validity duration must be positive")
	}
	if c.HashMemoryKiB < 8*uint32(c.HashParallelism) {
		return errors.New("hash memory must be at least 8 KiB per thread")
	}
	if c.HashMemoryKiB > auth.MaxMemoryKiB {
		return fmt.Errorf("hash memory must not exceed %d KiB", auth.MaxMemoryKiB)
	}
	if c.HashIterations < 1 {
		return errors.New("hash iterations must be at least 1")
	}
	if c.HashParallelism < 1 {
		return errors.New("hash parallelism must be at least 1")
	}
	return nil
}

// LoadConfig builds a Config from defaults, then overlays an optional JSON
// file, the environment (a .env file in the working directory is loaded
// first when present) and finally args (usually os.Args[1:]).
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJSON(cfg, configPath(args)); err != nil {
		return nil, err
	}

	// a missing .env is fine; variables already set win over it
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if err := parseEnv(cfg, nil); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
