// Package config loads the YAML configuration surface described in
// spec.md §6, following the teacher's config.go pattern: a root struct
// composed of per-subsystem structs with yaml tags, defaults applied
// after unmarshal, and validation that turns bad values into fatal
// startup errors (spec.md §7).
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kb9vy/nettrxd/internal/nettrxerr"
)

// HubConfig is the configuration surface consumed by the hub (spec.md §6
// "Keys consumed by the hub").
type HubConfig struct {
	ListenPort       int           `yaml:"listen_port"`
	AuthKey          string        `yaml:"auth_key"`
	SquelchTimeout   time.Duration `yaml:"sql_timeout"`
	SquelchResetTO   time.Duration `yaml:"sql_reset_timeout"`
	HeartbeatTimeout time.Duration `yaml:"heartbeat_timeout"`
	ReassemblyBytes  int           `yaml:"reassembly_bytes"`

	// Domain-stack enrichment, beyond the minimal spec surface.
	StatusListen  string        `yaml:"status_listen"`   // chi/http status+websocket surface
	MetricsListen string        `yaml:"metrics_listen"`  // prometheus /metrics
	MQTT          MQTTConfig    `yaml:"mqtt"`
	GeoIPDBPath   string        `yaml:"geoip_db_path"`
	ConnRateLimit float64       `yaml:"conn_rate_limit"` // new connections/sec/IP, 0=unlimited
	CmdRateLimit  float64       `yaml:"cmd_rate_limit"`  // app messages/sec/session, 0=unlimited
}

// MQTTConfig configures the optional telemetry publisher.
type MQTTConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Topic    string `yaml:"topic"`
}

// RemoteConfig is the configuration surface consumed by a remote Rx/Tx
// proxy (spec.md §6 "Keys consumed by an Rx/Tx proxy"). EncoderOptions and
// DecoderOptions carry the "<CODEC>_ENC_"/"<CODEC>_DEC_" opaque codec
// options.
type RemoteConfig struct {
	Host               string            `yaml:"host"`
	TCPPort            int               `yaml:"tcp_port"`
	AuthKey            string            `yaml:"auth_key"`
	Codec              string            `yaml:"codec"`
	LogDisconnectsOnce bool              `yaml:"log_disconnects_once"`
	EncoderOptions     map[string]string `yaml:"encoder_options"`
	DecoderOptions     map[string]string `yaml:"decoder_options"`

	Frequency  uint64 `yaml:"frequency"`
	Modulation string `yaml:"modulation"`

	SDR SDRConfig `yaml:"sdr"`
}

// SDRConfig selects and configures the component-I tuner driver.
type SDRConfig struct {
	Source       string `yaml:"source"` // "udev-usb" | "rtp-network" | "sim"
	SampleRateHz int    `yaml:"sample_rate_hz"`
	NetworkAddr  string `yaml:"network_addr"`
	USBInterface string `yaml:"usb_interface"`
}

const (
	DefaultListenPort       = 5210
	DefaultSquelchTimeout   = 60 * time.Second
	DefaultSquelchResetTO   = 60 * time.Second
	DefaultHeartbeatTimeout = 10 * time.Second
	MinHeartbeatTimeout     = 5 * time.Second
	MaxHeartbeatTimeout     = 50 * time.Second
	DefaultReassemblyBytes  = 4096
)

// LoadHub reads and validates a hub configuration file.
func LoadHub(path string) (*HubConfig, error) {
	cfg := &HubConfig{
		ListenPort:       DefaultListenPort,
		SquelchTimeout:   DefaultSquelchTimeout,
		SquelchResetTO:   DefaultSquelchResetTO,
		HeartbeatTimeout: DefaultHeartbeatTimeout,
		ReassemblyBytes:  DefaultReassemblyBytes,
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nettrxerr.New(nettrxerr.KindConfigInvalid, "config.LoadHub", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, nettrxerr.New(nettrxerr.KindConfigInvalid, "config.LoadHub", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, nettrxerr.New(nettrxerr.KindConfigInvalid, "config.LoadHub", err)
	}
	return cfg, nil
}

// Validate enforces the ranges spec.md §6 documents.
func (c *HubConfig) Validate() error {
	if c.SquelchTimeout < time.Second {
		return fmt.Errorf("sql_timeout must be >= 1000ms, got %s", c.SquelchTimeout)
	}
	if c.SquelchResetTO < time.Second {
		return fmt.Errorf("sql_reset_timeout must be >= 1000ms, got %s", c.SquelchResetTO)
	}
	if c.HeartbeatTimeout < MinHeartbeatTimeout || c.HeartbeatTimeout > MaxHeartbeatTimeout {
		return fmt.Errorf("heartbeat_timeout must be within [%s, %s], got %s",
			MinHeartbeatTimeout, MaxHeartbeatTimeout, c.HeartbeatTimeout)
	}
	if c.ReassemblyBytes < 4096 {
		return fmt.Errorf("reassembly_bytes must be >= 4096, got %d", c.ReassemblyBytes)
	}
	return nil
}

// LoadRemote reads and validates a remote Rx/Tx proxy configuration file.
func LoadRemote(path string) (*RemoteConfig, error) {
	cfg := &RemoteConfig{
		TCPPort: DefaultListenPort,
		Codec:   "raw",
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nettrxerr.New(nettrxerr.KindConfigInvalid, "config.LoadRemote", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, nettrxerr.New(nettrxerr.KindConfigInvalid, "config.LoadRemote", err)
		}
	}
	if cfg.Host == "" {
		return nil, nettrxerr.New(nettrxerr.KindConfigInvalid, "config.LoadRemote",
			fmt.Errorf("host is required"))
	}
	return cfg, nil
}
