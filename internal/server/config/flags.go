package config

import (
	"github.com/spf13/pflag"
)

// configPath extracts the JSON config file path given via -c/--config.
// Every other argument is ignored here.
func configPath(args []string) string {
	var path string

	fs := newFlagSet("json")
	fs.StringVarP(&path, "config", "c", "", "path to JSON config file")
	_ = fs.Parse(args)

	return path
}

// parseFlags populates config from command-line flags. Flags not given keep
// the value config already holds.
//
//	-a, --http-addr         HTTP bind address
//	-g, --grpc-addr         gRPC bind address
//	    --storage-driver    memory | sqlite | postgres
//	-d, --database-dsn      SQLite path or PostgreSQL DSN
//	-s, --secret-key        JWT HMAC secret
//	    --token-issuer      JWT iss claim
//	-t, --token-ttl         access token lifetime (e.g. 30m)
//	    --hash-memory       argon2id memory, KiB
//	    --hash-iterations   argon2id passes
//	    --hash-parallelism  argon2id threads
//	-l, --log-level         debug | info | warn | error
//	    --cors-origins      comma separated allowed origins
func parseFlags(config *Config, args []string) error {
	fs := newFlagSet("main")

	fs.StringP("config", "c", "", "path to JSON config file")
	fs.StringVarP(&config.HTTPAddr, "http-addr", "a", config.HTTPAddr, "HTTP bind address")
	fs.StringVarP(&config.GRPCAddr, "grpc-addr", "g", config.GRPCAddr, "gRPC bind address")
	fs.StringVar(&config.StorageDriver, "storage-driver", config.StorageDriver, "storage backend: memory, sqlite or postgres")
	fs.StringVarP(&config.DatabaseDSN, "database-dsn", "d", config.DatabaseDSN, "database DSN")
	fs.StringVarP(&config.SecretKey, "secret-key", "s", config.SecretKey, "JWT secret key")
	fs.StringVar(&config.TokenIssuer, "token-issuer", config.TokenIssuer, "JWT issuer")
	fs.DurationVarP(&config.AccessTokenValidityDuration, "token-ttl", "t", config.AccessTokenValidityDuration, "access token validity duration")
	fs.Uint32Var(&config.HashMemoryKiB, "hash-memory", config.HashMemoryKiB, "argon2id memory in KiB")
	fs.Uint32Var(&config.HashIterations, "hash-iterations", config.HashIterations, "argon2id iterations")
	fs.Uint8Var(&config.HashParallelism, "hash-parallelism", config.HashParallelism, "argon2id parallelism")
	fs.StringVarP(&config.LogLevel, "log-level", "l", config.LogLevel, "log level")
	fs.StringVar(&config.CORSAllowOrigins, "cors-origins", config.CORSAllowOrigins, "allowed CORS origins")

	return fs.Parse(args)
}

func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.Usage = func() {}
	return fs
}
