package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Agent roles selectable on the command line.
const (
	RoleRouter   = "router"
	RoleCustomer = "customer"
	RoleProduct  = "product"
	RoleSales    = "sales"
)

// Default ports per role, matching the historical deployment layout.
var defaultPorts = map[string]int{
	RoleRouter:   5000,
	RoleProduct:  5001,
	RoleCustomer: 5002,
	RoleSales:    5003,
}

// Config is the top-level application configuration.
type Config struct {
	Agent    AgentConfig    `yaml:"agent"`
	Database DatabaseConfig `yaml:"database"`
	LLM      LLMConfig      `yaml:"llm"`
	Router   RouterConfig   `yaml:"router"`
	Network  NetworkConfig  `yaml:"network"`
	Logger   LoggerConfig   `yaml:"logger"`
	Tracer   TracerConfig   `yaml:"tracer"`
}

// AgentConfig identifies the process and its listen port.
type AgentConfig struct {
	Role    string `yaml:"role"`
	Name    string `yaml:"name"`
	Port    int    `yaml:"port"`
	Version string `yaml:"version"`
}

// DatabaseConfig holds the relational store location.
type DatabaseConfig struct {
	URL string `yaml:"url"` // overridden by DATABASE_URL
}

// LLMConfig configures the intent classifier provider.
type LLMConfig struct {
	Provider    string `yaml:"provider"` // "groq" (OpenAI-compatible) or "bedrock"
	Model       string `yaml:"model"`
	APIKey      string `yaml:"api_key"` // overridden by GROQ_API_KEY
	BaseURL     string `yaml:"base_url"`
	Region      string `yaml:"region"`       // bedrock only
	ConnTimeout string `yaml:"conn_timeout"` // duration string, default "10s"
	RespTimeout string `yaml:"resp_timeout"` // duration string, default "60s"
}

// RouterConfig points the sales agent at the router.
type RouterConfig struct {
	URL string `yaml:"url"` // overridden by ROUTER_AGENT_URL
}

// NetworkConfig is the router's static agent directory.
type NetworkConfig struct {
	ProductURL    string `yaml:"product_url"`    // overridden by PRODUCT_AGENT_URL
	CustomerURL   string `yaml:"customer_url"`   // overridden by CUSTOMER_AGENT_URL
	SalesURL      string `yaml:"sales_url"`      // overridden by SALES_AGENT_URL
	ProbeInterval string `yaml:"probe_interval"` // duration string, default "30s"
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
	Output string `yaml:"output"` // stdout, stderr, or a file path
}

// TracerConfig holds OpenTelemetry settings.
type TracerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"` // "stdout" or "noop"
}

// Load reads the YAML config at path, applies environment overrides and
// defaults, and validates the result for the given role. A missing file is
// not an error: defaults plus environment are enough to run.
func Load(path, role string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// defaults only
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if role != "" {
		cfg.Agent.Role = role
	}
	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv("GROQ_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("GROQ_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("ROUTER_AGENT_URL"); v != "" {
		c.Router.URL = v
	}
	if v := os.Getenv("PRODUCT_AGENT_URL"); v != "" {
		c.Network.ProductURL = v
	}
	if v := os.Getenv("CUSTOMER_AGENT_URL"); v != "" {
		c.Network.CustomerURL = v
	}
	if v := os.Getenv("SALES_AGENT_URL"); v != "" {
		c.Network.SalesURL = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Agent.Port = port
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Agent.Role == "" {
		c.Agent.Role = RoleRouter
	}
	if c.Agent.Port == 0 {
		c.Agent.Port = defaultPorts[c.Agent.Role]
	}
	if c.Agent.Version == "" {
		c.Agent.Version = "1.0.0"
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "groq"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "llama3-70b-8192"
	}
	if c.Router.URL == "" {
		c.Router.URL = "http://localhost:5000"
	}
	if c.Network.ProductURL == "" {
		c.Network.ProductURL = "http://localhost:5001"
	}
	if c.Network.CustomerURL == "" {
		c.Network.CustomerURL = "http://localhost:5002"
	}
	if c.Network.SalesURL == "" {
		c.Network.SalesURL = "http://localhost:5003"
	}
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
	if c.Logger.Format == "" {
		c.Logger.Format = "text"
	}
	if c.Tracer.Exporter == "" {
		c.Tracer.Exporter = "stdout"
	}
}

// Validate checks role-specific required settings. Data agents need a
// database; every role needs a usable classifier.
func (c *Config) Validate() error {
	switch c.Agent.Role {
	case RoleRouter, RoleCustomer, RoleProduct, RoleSales:
	default:
		return fmt.Errorf("unknown agent role %q", c.Agent.Role)
	}

	if c.Agent.Role != RoleRouter && c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required for the %s agent", c.Agent.Role)
	}

	switch c.LLM.Provider {
	case "groq":
		if c.LLM.APIKey == "" {
			return fmt.Errorf("GROQ_API_KEY is required when llm.provider is groq")
		}
	case "bedrock":
		// credentials come from the AWS default chain
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}

	return nil
}

// ConnTimeoutDuration returns the parsed connect timeout.
func (c LLMConfig) ConnTimeoutDuration() time.Duration {
	return parseDuration(c.ConnTimeout, 10*time.Second)
}

// RespTimeoutDuration returns the parsed response timeout.
func (c LLMConfig) RespTimeoutDuration() time.Duration {
	return parseDuration(c.RespTimeout, 60*time.Second)
}

// ProbeIntervalDuration returns the parsed health probe interval.
func (c NetworkConfig) ProbeIntervalDuration() time.Duration {
	return parseDuration(c.ProbeInterval, 30*time.Second)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
