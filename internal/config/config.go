package config

import (
	"errors"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Auth       AuthConfig
	Platform   PlatformConfig
	Builder    BuilderConfig
	Reconciler ReconcilerConfig
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	URL            string
	MaxConnections int
	MaxIdleConns   int
}

type RedisConfig struct {
	URL string
}

type AuthConfig struct {
	JWTSecret string
}

type PlatformConfig struct {
	// Domain is the apex under which deployment URLs are issued,
	// e.g. "paas.dev" yields https://<project>.paas.dev.
	Domain string
	// EdgeHost is the CNAME target custom domains must point at.
	EdgeHost string
	// DNSResolver is the nameserver used for domain verification.
	DNSResolver string
}

type BuilderConfig struct {
	WorkerCount int
	Duration    time.Duration
	PopTimeout  time.Duration
}

type ReconcilerConfig struct {
	Interval time.Duration
	// Deadline is how long a deployment may stay in building before the
	// sweep forces it to error.
	Deadline time.Duration
}

func Load() (*Config, error) {
	// A local .env is convenient in development; absence is fine.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvPrefix("LAUNCHPAD")
	v.AutomaticEnv()

	// Set defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.maxconnections", 25)
	v.SetDefault("database.maxidleconns", 5)
	v.SetDefault("redis.url", "redis://localhost:6379")
	v.SetDefault("platform.domain", "paas.dev")
	v.SetDefault("platform.dnsresolver", "1.1.1.1:53")
	v.SetDefault("builder.workercount", 4)
	v.SetDefault("builder.duration", "5s")
	v.SetDefault("builder.poptimeout", "5s")
	v.SetDefault("reconciler.interval", "1m")
	v.SetDefault("reconciler.deadline", "15m")

	var cfg Config
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Override with environment variables
	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.Database.URL = url
	}
	if url := os.Getenv("REDIS_URL"); url != "" {
		cfg.Redis.URL = url
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.Auth.JWTSecret = secret
	}

	if cfg.Platform.EdgeHost == "" {
		cfg.Platform.EdgeHost = "edge." + cfg.Platform.Domain
	}

	// Fail closed: no silent fallback secret, no guessed database.
	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("auth.jwtsecret is required (set JWT_SECRET)")
	}
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required (set DATABASE_URL)")
	}

	return &cfg, nil
}
