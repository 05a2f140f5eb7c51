package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/linkerbot/hand-publisher/pkg/hand"
)

// Transport kinds accepted in the config file.
const (
	TransportZeroMQ = "zeromq"
	TransportMQTT   = "mqtt"
)

// Config is the full publisher configuration loaded from YAML.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Server    ServerConfig    `yaml:"server"`
	Transport TransportConfig `yaml:"transport"`
	Command   CommandConfig   `yaml:"command"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogPath string `yaml:"log_path,omitempty"`
}

// ServerConfig holds the HTTP observability server settings.
type ServerConfig struct {
	HTTPPort int `yaml:"http_port"`
}

// TransportConfig selects and configures the outbound middleware.
type TransportConfig struct {
	Kind   string       `yaml:"kind"`
	ZeroMQ ZeroMQConfig `yaml:"zeromq"`
	MQTT   MQTTConfig   `yaml:"mqtt"`
}

// ZeroMQConfig holds the PUB socket settings.
type ZeroMQConfig struct {
	PublishBindAddress string `yaml:"publish_bind_address"`
}

// MQTTConfig holds the MQTT client settings.
type MQTTConfig struct {
	BrokerAddress    string `yaml:"broker_address"`
	ClientID         string `yaml:"client_id"`
	QoS              byte   `yaml:"qos"`
	ConnectTimeoutMs int    `yaml:"connect_timeout_ms"`
	PublishTimeoutMs int    `yaml:"publish_timeout_ms"`
}

// CommandConfig holds the setpoint itself: the topic, cadence, encoding and
// the constant vectors sent on every tick.
type CommandConfig struct {
	Topic          string    `yaml:"topic"`
	CadenceSeconds float64   `yaml:"cadence_seconds"`
	Encoding       string    `yaml:"encoding"`
	Positions      []float64 `yaml:"positions"`
	Velocities     []float64 `yaml:"velocities"`
}

// Defaults applied by Load for optional fields.
var defaultVelocities = []float64{50, 50, 50, 50, 50}

const (
	defaultCadenceSeconds   = 1.0
	defaultEncoding         = "json"
	defaultHTTPPort         = 8080
	defaultConnectTimeoutMs = 5000
	defaultPublishTimeoutMs = 1000
)

// Load reads and validates the configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Command.CadenceSeconds == 0 {
		cfg.Command.CadenceSeconds = defaultCadenceSeconds
	}
	if cfg.Command.Encoding == "" {
		cfg.Command.Encoding = defaultEncoding
	}
	if cfg.Command.Velocities == nil {
		cfg.Command.Velocities = append([]float64(nil), defaultVelocities...)
	}
	if cfg.Server.HTTPPort == 0 {
		cfg.Server.HTTPPort = defaultHTTPPort
	}
	if cfg.Transport.Kind == "" {
		cfg.Transport.Kind = TransportZeroMQ
	}
	if cfg.Transport.MQTT.ConnectTimeoutMs == 0 {
		cfg.Transport.MQTT.ConnectTimeoutMs = defaultConnectTimeoutMs
	}
	if cfg.Transport.MQTT.PublishTimeoutMs == 0 {
		cfg.Transport.MQTT.PublishTimeoutMs = defaultPublishTimeoutMs
	}
}

func validate(cfg *Config) error {
	if cfg.Command.Topic == "" {
		return fmt.Errorf("missing required field in config: command.topic")
	}
	if cfg.Command.CadenceSeconds <= 0 {
		return fmt.Errorf("command.cadence_seconds must be positive, got %v", cfg.Command.CadenceSeconds)
	}
	if len(cfg.Command.Positions) != hand.JointCount {
		return fmt.Errorf("command.positions must have exactly %d entries, got %d",
			hand.JointCount, len(cfg.Command.Positions))
	}

	switch cfg.Transport.Kind {
	case TransportZeroMQ:
		if cfg.Transport.ZeroMQ.PublishBindAddress == "" {
			return fmt.Errorf("missing required field in config: transport.zeromq.publish_bind_address")
		}
	case TransportMQTT:
		if cfg.Transport.MQTT.BrokerAddress == "" {
			return fmt.Errorf("missing required field in config: transport.mqtt.broker_address")
		}
	default:
		return fmt.Errorf("unknown transport kind: %s", cfg.Transport.Kind)
	}

	return nil
}
