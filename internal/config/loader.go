package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads configuration using viper.
// Priority order: environment variables > config file > defaults.
func LoadConfig(configPath string) (*ServerConfig, error) {
	v := viper.New()

	v.SetConfigName("server")
	v.SetConfigType("yaml")
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Plain names work alongside the dotted keys.
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.host", "HOST")
	v.BindEnv("server.loglevel", "LOG_LEVEL")

	defaults := DefaultConfig()
	v.SetDefault("server.port", defaults.Server.Port)
	v.SetDefault("server.host", defaults.Server.Host)
	v.SetDefault("server.readtimeout", defaults.Server.ReadTimeout)
	v.SetDefault("server.writetimeout", defaults.Server.WriteTimeout)
	v.SetDefault("server.idletimeout", defaults.Server.IdleTimeout)
	v.SetDefault("server.shutdowntimeout", defaults.Server.ShutdownTimeout)
	v.SetDefault("server.roommaxage", defaults.Server.RoomMaxAge)
	v.SetDefault("server.sweepinterval", defaults.Server.SweepInterval)
	v.SetDefault("server.ratelimit", defaults.Server.RateLimit)
	v.SetDefault("server.ratelimitburst", defaults.Server.RateLimitBurst)
	v.SetDefault("server.maxrequestsize", defaults.Server.MaxRequestSize)
	v.SetDefault("server.staticdir", defaults.Server.StaticDir)
	v.SetDefault("server.loglevel", defaults.Server.LogLevel)

	if err := v.ReadInConfig(); err != nil {
		// The config file is optional; only real read failures abort.
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound &&
			!strings.Contains(err.Error(), "no such file or directory") {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &ServerConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
