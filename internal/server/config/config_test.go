package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults() *Config {
	return &Config{
		HTTPAddr:                    ":8080",
		GRPCAddr:                    ":50051",
		StorageDriver:               "sqlite",
		DatabaseDSN:                 "gophauth.db",
		TokenIssuer:                 "gophauth",
		AccessTokenValidityDuration: time.Hour,
		HashMemoryKiB:               65536,
		HashIterations:              1,
		HashParallelism:             4,
		LogLevel:                    "info",
		CORSAllowOrigins:            "*",
	}
}

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()
	assert.Empty(t, cmp.Diff(defaults(), &c))
	assert.Empty(t, c.SecretKey)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "ok", mutate: func(c *Config) {}},
		{name: "memory needs no dsn", mutate: func(c *Config) { c.StorageDriver = "memory"; c.DatabaseDSN = "" }},
		{name: "unknown driver", mutate: func(c *Config) { c.StorageDriver = "mysql" }, wantErr: `unknown storage driver "mysql"`},
		{name: "sqlite without dsn", mutate: func(c *Config) { c.DatabaseDSN = "" }, wantErr: "database dsn is required"},
		{name: "no secret", mutate: func(c *Config) { c.SecretKey = "" }, wantErr: "secret key is required"},
		{name: "zero ttl", mutate: func(c *Config) { c.AccessTokenValidityDuration = 0 }, wantErr: "access token validity duration must be positive"},
		{name: "negative ttl", mutate: func(c *Config) { c.AccessTokenValidityDuration = -time.Second }, wantErr: "access token validity duration must be positive"},
		{name: "too little memory", mutate: func(c *Config) { c.HashMemoryKiB = 16 }, wantErr: "hash memory must be at least 8 KiB per thread"},
		{name: "too much memory", mutate: func(c *Config) { c.HashMemoryKiB = 1<<21 + 1 }, wantErr: "hash memory must not exceed 2097152 KiB"},
		{name: "memory at the cap", mutate: func(c *Config) { c.HashMemoryKiB = 1 << 21 }},
		{name: "zero iterations", mutate: func(c *Config) { c.HashIterations = 0 }, wantErr: "hash iterations must be at least 1"},
		{name: "zero parallelism", mutate: func(c *Config) { c.HashParallelism = 0 }, wantErr: "hash parallelism must be at least 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := defaults()
			c.SecretKey = "secret"
			tt.mutate(c)

			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestLoadConfig_Precedence(t *testing.T) {
	t.Chdir(t.TempDir())

	path := writeTempJSON(t, map[string]any{
		"http_addr":  ":1",
		"secret_key": "from-json",
		"log_level":  "debug",
	})
	t.Setenv("GOPHAUTH_LOG_LEVEL", "warn")
	t.Setenv("GOPHAUTH_HTTP_ADDR", ":2")

	cfg, err := LoadConfig([]string{"-c", path, "--http-addr", ":3"})
	require.NoError(t, err)

	want := defaults()
	want.SecretKey = "from-json"
	want.LogLevel = "warn"
	want.HTTPAddr = ":3"
	assert.Empty(t, cmp.Diff(want, cfg))
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("GOPHAUTH_SECRET_KEY=from-dotenv\n"), 0o600))

	require.NoError(t, os.Unsetenv("GOPHAUTH_SECRET_KEY"))
	t.Cleanup(func() { _ = os.Unsetenv("GOPHAUTH_SECRET_KEY") })

	cfg, err := LoadConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.SecretKey)
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Run("missing secret", func(t *testing.T) {
		t.Setenv("GOPHAUTH_SECRET_KEY", "")
		_, err := LoadConfig(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "secret key is required")
	})

	t.Run("missing json file", func(t *testing.T) {
		_, err := LoadConfig([]string{"--config", filepath.Join(t.TempDir(), "nope.json")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "read config file")
	})

	t.Run("malformed .env", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("GOPHAUTH-SECRET-KEY=x\n"), 0o600))

		_, err := LoadConfig(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "load .env")
	})

	t.Run("bad flag value", func(t *testing.T) {
		_, err := LoadConfig([]string{"-s", "x", "--token-ttl", "soon"})
		assert.Error(t, err)
	})
}
