package config

import (
	"errors"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPath  = ".env"
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

type Config struct {
	Env    string
	DB     DB
	Server Server
	Logger Logger
	Auth   Auth
}

type DB struct {
	DatabaseURI string `env:"DATABASE_URI"`
	Migrations  string `env:"MIGRATIONS_PATH"`
}

type Server struct {
	RunAddress string `env:"RUN_ADDRESS"`
}

type Auth struct {
	SessionTTL time.Duration `env:"SESSION_TTL"`
	// PurgeSpec is a cron spec for dropping expired sessions.
	PurgeSpec string `env:"SESSION_PURGE_SPEC"`
}

type Logger struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// MustLoad reads the configuration and exits when it is unusable.
func MustLoad() *Config {
	cfg, err := Load(viper.New())
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return cfg
}

func Load(v *viper.Viper) (*Config, error) {
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			return nil, err
		}
	}

	v.SetDefault("app_env", EnvLocal)
	v.SetDefault("run_address", ":8080")
	v.SetDefault("migrations_path", "migrations")
	v.SetDefault("log_level", "info")
	v.SetDefault("session_ttl", "24h")
	v.SetDefault("session_purge_spec", "@hourly")
	v.AutomaticEnv()

	cfg := &Config{
		Env: v.GetString("app_env"),
		DB: DB{
			DatabaseURI: v.GetString("database_uri"),
			Migrations:  v.GetString("migrations_path"),
		},
		Server: Server{RunAddress: v.GetString("run_address")},
		Logger: Logger{LogLevel: v.GetString("log_level")},
		Auth: Auth{
			SessionTTL: v.GetDuration("session_ttl"),
			PurgeSpec:  v.GetString("session_purge_spec"),
		},
	}

	if cfg.DB.DatabaseURI == "" {
		return nil, errors.New("DATABASE_URI is required")
	}
	if cfg.Auth.SessionTTL <= 0 {
		return nil, errors.New("SESSION_TTL must be positive")
	}
	return cfg, nil
}
