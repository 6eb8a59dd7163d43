package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines tasksync configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	DB     DBConfig     `yaml:"db"`
	Log    LogConfig    `yaml:"log"`
	Auth   AuthConfig   `yaml:"auth"`
	Store  StoreConfig  `yaml:"store"`
	Views  ViewsConfig  `yaml:"views"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr returns host:port.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type AuthConfig struct {
	Secret   string        `yaml:"secret"`
	Issuer   string        `yaml:"issuer"`
	TokenTTL time.Duration `yaml:"token_ttl"`
}

type StoreConfig struct {
	GraceWindow   time.Duration `yaml:"grace_window"`
	ElevatedRoles []string      `yaml:"elevated_roles"`
}

type ViewsConfig struct {
	MemoTTL time.Duration `yaml:"memo_ttl"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
		DB: DBConfig{
			Path: "tasksync.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Auth: AuthConfig{
			Issuer:   "tasksync",
			TokenTTL: time.Hour,
		},
		Store: StoreConfig{
			GraceWindow:   750 * time.Millisecond,
			ElevatedRoles: []string{"admin"},
		},
		Views: ViewsConfig{
			MemoTTL: 30 * time.Second,
		},
	}
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("TASKSYNC_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("TASKSYNC_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("TASKSYNC_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid TASKSYNC_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if dbPath := os.Getenv("TASKSYNC_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("TASKSYNC_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if secret := os.Getenv("TASKSYNC_AUTH_SECRET"); secret != "" {
		cfg.Auth.Secret = secret
	}
	if issuer := os.Getenv("TASKSYNC_AUTH_ISSUER"); issuer != "" {
		cfg.Auth.Issuer = issuer
	}
	if grace := os.Getenv("TASKSYNC_GRACE_WINDOW"); grace != "" {
		d, err := time.ParseDuration(grace)
		if err != nil {
			return Config{}, fmt.Errorf("invalid TASKSYNC_GRACE_WINDOW: %w", err)
		}
		cfg.Store.GraceWindow = d
	}
	if roles := os.Getenv("TASKSYNC_ELEVATED_ROLES"); roles != "" {
		cfg.Store.ElevatedRoles = splitList(roles)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that can't be defaulted.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port out of range: %d", c.Server.Port)
	}
	if c.Store.GraceWindow <= 0 {
		return fmt.Errorf("store grace window must be positive: %s", c.Store.GraceWindow)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth token ttl must be positive: %s", c.Auth.TokenTTL)
	}
	if strings.TrimSpace(c.DB.Path) == "" {
		return fmt.Errorf("db path is required")
	}
	return nil
}

// RequireSecret reports a missing signing secret. Commands that verify or issue tokens
// call it; offline commands don't need one.
func (c Config) RequireSecret() error {
	if strings.TrimSpace(c.Auth.Secret) == "" {
		return fmt.Errorf("auth secret is required (set TASKSYNC_AUTH_SECRET)")
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
