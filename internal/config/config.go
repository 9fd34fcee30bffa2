// Package config carries server-level settings. Game tunables are fixed in
// internal/game; everything adjustable per deployment lives here.
package config

import (
	"fmt"
	"time"
)

// ServerConfig is the root configuration, loaded by viper in loader.go.
type ServerConfig struct {
	Server ServerSettings `mapstructure:"server"`
}

// ServerSettings contains server-wide settings.
type ServerSettings struct {
	Port string `mapstructure:"port"`
	Host string `mapstructure:"host"`

	ReadTimeout     time.Duration `mapstructure:"readTimeout"`
	WriteTimeout    time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout     time.Duration `mapstructure:"idleTimeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`

	// Room lifecycle.
	RoomMaxAge    time.Duration `mapstructure:"roomMaxAge"`
	SweepInterval time.Duration `mapstructure:"sweepInterval"`

	// Rate limiting (golang.org/x/time/rate).
	RateLimit      float64 `mapstructure:"rateLimit"`
	RateLimitBurst int     `mapstructure:"rateLimitBurst"`

	MaxRequestSize int64  `mapstructure:"maxRequestSize"`
	StaticDir      string `mapstructure:"staticDir"`
	LogLevel       string `mapstructure:"logLevel"`
}

// DefaultConfig returns the defaults applied beneath env vars and the config
// file.
func DefaultConfig() *ServerConfig {
	return &ServerConfig{
		Server: ServerSettings{
			Port:            "3000",
			Host:            "",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    0, // websockets hold the response open
			IdleTimeout:     0,
			ShutdownTimeout: 10 * time.Second,
			RoomMaxAge:      60 * time.Minute,
			SweepInterval:   5 * time.Minute,
			RateLimit:       20,
			RateLimitBurst:  40,
			MaxRequestSize:  1 << 20,
			StaticDir:       "static",
			LogLevel:        "info",
		},
	}
}

// Validate rejects settings the server cannot run with.
func (c *ServerConfig) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("port must be set")
	}
	if c.Server.RoomMaxAge <= 0 {
		return fmt.Errorf("roomMaxAge must be positive")
	}
	if c.Server.SweepInterval <= 0 {
		return fmt.Errorf("sweepInterval must be positive")
	}
	if c.Server.RateLimit <= 0 {
		return fmt.Errorf("rateLimit must be positive")
	}
	return nil
}
