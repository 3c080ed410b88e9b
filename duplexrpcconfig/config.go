// Package duplexrpcconfig holds the configuration options recognized by
// the demo server and any deployment wiring it up: the listen address,
// the path a single endpoint is mounted at, the client call timeout, and
// whether notifications are accepted. It is grounded on
// more0ai-registry/internal/config.Config, loaded the same two ways that
// package supports — environment variables for container deployment via
// github.com/kelseyhightower/envconfig, and (here, additionally) a YAML
// file for local development, the way the teacher's own
// cmd/juju/config/config.go reads YAML attribute files with
// gopkg.in/yaml.v3.
package duplexrpcconfig

import (
	"os"
	"time"

	"github.com/juju/errors"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds the options spec.md section 6 calls "configuration
// options recognized" for the demo command and any deployment script
// wiring it up.
type Config struct {
	// ListenAddr is the address the demo HTTP+WS server binds to.
	ListenAddr string `yaml:"listenAddr" envconfig:"DUPLEXRPC_LISTEN_ADDR" default:"0.0.0.0:8080"`

	// EndpointPath is the path the single demo endpoint is mounted at,
	// for both the HTTP transport and the WebSocket upgrade route.
	EndpointPath string `yaml:"endpointPath" envconfig:"DUPLEXRPC_ENDPOINT_PATH" default:"/rpc"`

	// TimeoutMs is the client core's per-call timeout in milliseconds
	// (spec.md section 4.E).
	TimeoutMs int `yaml:"timeoutMs" envconfig:"DUPLEXRPC_TIMEOUT_MS" default:"30000"`

	// AllowNotifications, when false, rejects any request with no id
	// before it reaches the endpoint registry (an operator knob some
	// deployments want for audit-log completeness; spec.md section 3
	// leaves notification handling implementation-defined beyond "no
	// response is produced").
	AllowNotifications bool `yaml:"allowNotifications" envconfig:"DUPLEXRPC_ALLOW_NOTIFICATIONS" default:"true"`

	// LogLevel configures the loggo root logger the demo command installs.
	LogLevel string `yaml:"logLevel" envconfig:"DUPLEXRPC_LOG_LEVEL" default:"INFO"`
}

// Timeout returns TimeoutMs as a time.Duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// LoadFromEnv loads configuration from environment variables, the way
// more0ai-registry/internal/config.LoadConfig does, for container
// deployment.
func LoadFromEnv() (*Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, errors.Annotate(err, "loading duplexrpc config from environment")
	}
	return &c, nil
}

// LoadFromYAMLFile loads configuration from a YAML file at path, for
// local development, falling back to each field's default (applied by
// first populating c from LoadFromEnv's defaults, then letting decoded
// YAML fields override them).
func LoadFromYAMLFile(path string) (*Config, error) {
	c, err := LoadFromEnv()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Annotatef(err, "reading duplexrpc config file %q", path)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, errors.Annotatef(err, "parsing duplexrpc config file %q", path)
	}
	return c, nil
}

// Validate checks the invariants the demo command relies on before it
// starts serving.
func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return errors.New("duplexrpc config: listenAddr is required")
	}
	if c.EndpointPath == "" {
		return errors.New("duplexrpc config: endpointPath is required")
	}
	if c.TimeoutMs <= 0 {
		return errors.New("duplexrpc config: timeoutMs must be positive")
	}
	return nil
}
