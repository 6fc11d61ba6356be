package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"

	defaultServerAddress = "localhost:8080"
	defaultConfigDir     = ".eventkeeper"
)

type Config struct {
	Env            string
	ServerAddress  string
	EnableTLS      bool
	ConfigDir      string
	TokenPath      string
	CachePath      string
	SyncInterval   time.Duration
	ProbeInterval  time.Duration
	RequestTimeout time.Duration
}

// Load reads the client configuration from v. Defaults are applied first,
// then an optional .env file, then the environment.
func Load(v *viper.Viper) (*Config, error) {
	for _, envPath := range []string{".env", "../.env"} {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return nil, fmt.Errorf("load %s: %w", envPath, err)
			}
			break
		}
	}

	SetDefaults(v)
	v.AutomaticEnv()

	configDir := v.GetString("CONFIG_DIR")
	if configDir == defaultConfigDir {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			homeDir = "."
		}
		configDir = filepath.Join(homeDir, configDir)
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}

	cfg := &Config{
		Env:            v.GetString("APP_ENV"),
		ServerAddress:  v.GetString("SERVER_ADDRESS"),
		EnableTLS:      v.GetBool("ENABLE_TLS"),
		ConfigDir:      configDir,
		TokenPath:      filepath.Join(configDir, "token"),
		CachePath:      filepath.Join(configDir, "cache.db"),
		SyncInterval:   time.Duration(v.GetInt("SYNC_INTERVAL_SECONDS")) * time.Second,
		ProbeInterval:  time.Duration(v.GetInt("PROBE_INTERVAL_SECONDS")) * time.Second,
		RequestTimeout: time.Duration(v.GetInt("REQUEST_TIMEOUT_SECONDS")) * time.Second,
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", EnvLocal)
	v.SetDefault("SERVER_ADDRESS", defaultServerAddress)
	v.SetDefault("ENABLE_TLS", false)
	v.SetDefault("CONFIG_DIR", defaultConfigDir)
	v.SetDefault("SYNC_INTERVAL_SECONDS", 5)
	v.SetDefault("PROBE_INTERVAL_SECONDS", 3)
	v.SetDefault("REQUEST_TIMEOUT_SECONDS", 10)
}

func (c *Config) validate() error {
	if c.ServerAddress == "" {
		return errors.New("server_address must not be empty")
	}
	if c.SyncInterval <= 0 {
		return errors.New("sync_interval_seconds must be positive")
	}
	if c.ProbeInterval <= 0 {
		return errors.New("probe_interval_seconds must be positive")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("request_timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) IsProd() bool {
	return c.Env == EnvProd
}

func (c *Config) IsLocal() bool {
	return c.Env == EnvLocal || c.Env == ""
}
