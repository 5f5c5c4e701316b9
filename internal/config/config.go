package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dusk-indust/userdesk/internal/gateway"
	"github.com/dusk-indust/userdesk/internal/store"
)

// Environment variables that override file settings.
const (
	EnvBaseURL   = "USERDESK_BASE_URL"
	EnvTimeout   = "USERDESK_TIMEOUT"
	EnvRateLimit = "USERDESK_RATE_LIMIT"
	EnvBackend   = "USERDESK_BACKEND"
	EnvHTTPAddr  = "USERDESK_HTTP_ADDR"
	EnvMCPAddr   = "USERDESK_MCP_ADDR"
)

// Defaults applied to anything left unset.
const (
	DefaultTimeout  = 30 * time.Second
	DefaultHTTPAddr = ":8080"
	DefaultMCPAddr  = ":8090"
)

// GatewayConfig configures the remote users API client.
type GatewayConfig struct {
	BaseURL   string        `yaml:"baseURL,omitempty"`
	Timeout   time.Duration `yaml:"timeout,omitempty"`
	RateLimit float64       `yaml:"rateLimit,omitempty"`
	SyncEdits bool          `yaml:"syncEdits,omitempty"`
}

// StoreConfig selects the collection backend.
type StoreConfig struct {
	Backend string `yaml:"backend,omitempty"`
}

// ServerConfig holds listen addresses for the HTTP API and MCP surfaces.
type ServerConfig struct {
	HTTPAddr string `yaml:"httpAddr,omitempty"`
	MCPAddr  string `yaml:"mcpAddr,omitempty"`
}

// Config holds userdesk settings loaded from userdesk.yml.
type Config struct {
	Gateway GatewayConfig `yaml:"gateway,omitempty"`
	Store   StoreConfig   `yaml:"store,omitempty"`
	Server  ServerConfig  `yaml:"server,omitempty"`
	Verbose bool          `yaml:"verbose,omitempty"`
}

// Load attempts to read userdesk.yml or userdesk.yaml from the given
// directory. Returns a zero-value config (not an error) if no config file
// exists.
func Load(dir string) (*Config, error) {
	for _, name := range []string{"userdesk.yml", "userdesk.yaml"} {
		cfg, err := LoadFile(filepath.Join(dir, name))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return cfg, err
	}
	return &Config{}, nil
}

// LoadFile reads one yaml config file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &cfg, nil
}

// Resolve builds the effective configuration: the file (path if set,
// otherwise userdesk.yml in dir), then dir/.env, then the process
// environment, then defaults. Values already in the environment win over
// .env.
func Resolve(dir, path string) (*Config, error) {
	var (
		cfg *Config
		err error
	)
	if path != "" {
		cfg, err = LoadFile(path)
	} else {
		cfg, err = Load(dir)
	}
	if err != nil {
		return nil, err
	}

	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.Gateway.BaseURL = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvTimeout, err)
		}
		c.Gateway.Timeout = d
	}
	if v := os.Getenv(EnvRateLimit); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvRateLimit, err)
		}
		c.Gateway.RateLimit = f
	}
	if v := os.Getenv(EnvBackend); v != "" {
		c.Store.Backend = v
	}
	if v := os.Getenv(EnvHTTPAddr); v != "" {
		c.Server.HTTPAddr = v
	}
	if v := os.Getenv(EnvMCPAddr); v != "" {
		c.Server.MCPAddr = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Gateway.BaseURL == "" {
		c.Gateway.BaseURL = gateway.DefaultBaseURL
	}
	if c.Gateway.Timeout <= 0 {
		c.Gateway.Timeout = DefaultTimeout
	}
	if c.Store.Backend == "" {
		c.Store.Backend = store.BackendMemory
	}
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = DefaultHTTPAddr
	}
	if c.Server.MCPAddr == "" {
		c.Server.MCPAddr = DefaultMCPAddr
	}
}
