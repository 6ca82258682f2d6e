// Package config handles configuration loading and management for a MeshX
// node, grounded on the teacher's pkg/config loader shape (YAML file with
// struct-tag validation via go-playground/validator).
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/meshx-project/meshx/pkg/node"
)

// Default config file search locations.
var configPaths = []string{
	"./config.yaml",
	"./config.yml",
	"./meshx.yaml",
	"./meshx.yml",
	"~/.config/meshx/config.yaml",
	"/etc/meshx/config.yaml",
}

// TransportConfig selects and configures the byte-oriented bearer a Node's
// meshnet.Bridge rides on.
type TransportConfig struct {
	// Type selects the bearer implementation: "ble", "simulator".
	Type    string                 `yaml:"type" json:"type" validate:"required,oneof=ble simulator"`
	Address string                 `yaml:"address" json:"address"`
	Options map[string]interface{} `yaml:"options" json:"options"`
}

// NodeConfig is the YAML-facing mirror of node.Config.
type NodeConfig struct {
	CompanyID        uint16        `yaml:"company_id" json:"company_id"`
	ProductID        uint16        `yaml:"product_id" json:"product_id"`
	PrimaryAddress   uint16        `yaml:"primary_address" json:"primary_address" validate:"required"`
	NVSPath          string        `yaml:"nvs_path" json:"nvs_path"`
	NVSCommitTimeout time.Duration `yaml:"nvs_commit_timeout" json:"nvs_commit_timeout"`
	TxcmQueueLen     int           `yaml:"txcm_queue_len" json:"txcm_queue_len"`
	TxcmMaxRetry     int           `yaml:"txcm_max_retry" json:"txcm_max_retry"`
}

// ToNodeConfig converts the YAML-facing NodeConfig into node.Config. The
// element composition table is built in code (cmd/meshx) and attached by
// the caller, since a board's model wiring isn't usefully expressed in
// YAML.
func (c NodeConfig) ToNodeConfig() node.Config {
	return node.Config{
		CompanyID:        c.CompanyID,
		ProductID:        c.ProductID,
		PrimaryAddress:   c.PrimaryAddress,
		NVSPath:          c.NVSPath,
		NVSCommitTimeout: c.NVSCommitTimeout,
		TxcmQueueLen:     c.TxcmQueueLen,
		TxcmMaxRetry:     c.TxcmMaxRetry,
	}
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" json:"format" validate:"oneof=text json"`
	Output string `yaml:"output" json:"output" validate:"oneof=stdout file"`
	File   string `yaml:"file" json:"file"`
}

// MetricsConfig configures the Prometheus HTTP exporter.
type MetricsConfig struct {
	Enabled  bool          `yaml:"enabled" json:"enabled"`
	Endpoint string        `yaml:"endpoint" json:"endpoint"`
	Address  string        `yaml:"address" json:"address"`
	Interval time.Duration `yaml:"interval" json:"interval"`
}

// MQTTConfig configures the optional telemetry bridge.
type MQTTConfig struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	BrokerURL string `yaml:"broker_url" json:"broker_url" validate:"required_if=Enabled true"`
	NodeID    string `yaml:"node_id" json:"node_id" validate:"required_if=Enabled true"`
}

// APIUser is one API key/role pair accepted by the login endpoint.
type APIUser struct {
	Key  string `yaml:"key" json:"key"`
	Role string `yaml:"role" json:"role"`
}

// APIAuthConfig configures the bearer-auth middleware in front of the REST
// debug surface. The WebSocket event stream does not use it.
type APIAuthConfig struct {
	Enabled   bool      `yaml:"enabled" json:"enabled"`
	JWTSecret string    `yaml:"jwt_secret" json:"jwt_secret" validate:"required_if=Enabled true"`
	Users     []APIUser `yaml:"users" json:"users"`
}

// APIConfig configures the REST/WebSocket control-plane server.
type APIConfig struct {
	Enabled bool          `yaml:"enabled" json:"enabled"`
	Address string        `yaml:"address" json:"address"`
	Auth    APIAuthConfig `yaml:"auth" json:"auth"`
}

// Config is the root MeshX node configuration document.
type Config struct {
	Node      NodeConfig      `yaml:"node" json:"node" validate:"required"`
	Transport TransportConfig `yaml:"transport" json:"transport" validate:"required"`
	Logging   LoggingConfig   `yaml:"logging" json:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics" json:"metrics"`
	MQTT      MQTTConfig      `yaml:"mqtt" json:"mqtt"`
	API       APIConfig       `yaml:"api" json:"api"`
}

// Load loads configuration from path, or from the first of configPaths that
// exists, or returns DefaultConfig if none is found.
func Load(path string) (*Config, error) {
	if path != "" {
		return loadFile(path)
	}

	for _, p := range configPaths {
		if len(p) > 0 && p[0] == '~' {
			if home, err := os.UserHomeDir(); err == nil {
				p = filepath.Join(home, p[2:])
			}
		}
		if _, err := os.Stat(p); err == nil {
			return loadFile(p)
		}
	}

	return DefaultConfig(), nil
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate validates cfg against its struct tags.
func Validate(cfg *Config) error {
	return validator.New().Struct(cfg)
}

// Save writes cfg to path as YAML, creating parent directories as needed.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns a sensible default configuration: a simulator
// bearer, info logging to stdout, metrics and MQTT telemetry off.
func DefaultConfig() *Config {
	return &Config{
		Node: NodeConfig{
			PrimaryAddress:   0x0001,
			NVSPath:          "./meshx.db",
			NVSCommitTimeout: 2 * time.Second,
			TxcmQueueLen:     0,
			TxcmMaxRetry:     0,
		},
		Transport: TransportConfig{
			Type: "simulator",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
		Metrics: MetricsConfig{
			Enabled:  false,
			Endpoint: "/metrics",
			Address:  ":9090",
			Interval: 10 * time.Second,
		},
	}
}
