package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

// Defaults applied when a field is left empty
const (
	DefaultUsername    = "admin"
	DefaultTopicPrefix = "camlight"
	DefaultListen      = ":8080"
)

// Config represents the entire user configuration file.
type Config struct {
	Version int                `yaml:"version"`
	Devices map[string]*Device `yaml:"devices,omitempty"` // Keyed by device name
	MQTT    *MQTTConfig        `yaml:"mqtt,omitempty"`
	HTTP    *HTTPConfig        `yaml:"http,omitempty"`
}

// Device describes how to reach one camera.
// The password is never stored; PasswordEnv names the environment variable holding it.
type Device struct {
	Address     string        `yaml:"address"`                // Host, host:port or http(s) URL
	Username    string        `yaml:"username,omitempty"`     // Defaults to "admin"
	PasswordEnv string        `yaml:"password_env,omitempty"` // Environment variable with the password
	Timeout     time.Duration `yaml:"timeout,omitempty"`      // Per-call bound, 10s when zero
	LastSeen    time.Time     `yaml:"last_seen,omitempty"`    // Last time the device answered a scan
}

// MQTTConfig configures the MQTT command bridge
type MQTTConfig struct {
	Broker      string `yaml:"broker"`                 // e.g. "tcp://localhost:1883"
	TopicPrefix string `yaml:"topic_prefix,omitempty"` // Defaults to "camlight"
	ClientID    string `yaml:"client_id,omitempty"`    // Random when empty
	Username    string `yaml:"username,omitempty"`
	PasswordEnv string `yaml:"password_env,omitempty"`
}

// HTTPConfig configures the HTTP command API
type HTTPConfig struct {
	Listen string `yaml:"listen"` // Defaults to ":8080"
}

// New creates a Config with default values.
func New() *Config {
	return &Config{
		Version: 1,
		Devices: make(map[string]*Device),
	}
}

// Device returns the named device or an error listing the configured names.
func (c *Config) Device(name string) (*Device, error) {
	if d, ok := c.Devices[name]; ok && d != nil {
		return d, nil
	}
	names := c.DeviceNames()
	if len(names) == 0 {
		return nil, fmt.Errorf("device %q not found (no devices configured, use 'camlight device add')", name)
	}
	return nil, fmt.Errorf("device %q not found (configured: %s)", name, strings.Join(names, ", "))
}

// SetDevice adds or replaces a device entry.
func (c *Config) SetDevice(name string, d *Device) {
	if c.Devices == nil {
		c.Devices = make(map[string]*Device)
	}
	c.Devices[name] = d
}

// DeviceNames returns the configured device names in sorted order.
func (c *Config) DeviceNames() []string {
	names := make([]string, 0, len(c.Devices))
	for name := range c.Devices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MarkSeen records that the named device answered at the given time.
// Unknown names are ignored.
func (c *Config) MarkSeen(name string, at time.Time) {
	if d, ok := c.Devices[name]; ok && d != nil {
		d.LastSeen = at
	}
}

// Validate checks that every device and the optional sections are usable.
func (c *Config) Validate() error {
	if c.Version != 1 {
		return fmt.Errorf("unsupported config version: %d (expected 1)", c.Version)
	}
	for _, name := range c.DeviceNames() {
		d := c.Devices[name]
		if d == nil || strings.TrimSpace(d.Address) == "" {
			return fmt.Errorf("device %q: address is required", name)
		}
		if strings.ContainsAny(name, "/+#") {
			return fmt.Errorf("device %q: name must not contain '/', '+' or '#'", name)
		}
		if d.Timeout < 0 {
			return fmt.Errorf("device %q: timeout must not be negative", name)
		}
	}
	if c.MQTT != nil && c.MQTT.Broker == "" {
		return fmt.Errorf("mqtt: broker is required when the mqtt section is present")
	}
	return nil
}

// User returns the configured username or DefaultUsername.
func (d *Device) User() string {
	if d.Username == "" {
		return DefaultUsername
	}
	return d.Username
}

// Password reads the password from the environment variable named by PasswordEnv.
// The second value is false when no variable is configured or it is empty.
func (d *Device) Password() (string, bool) {
	if d.PasswordEnv == "" {
		return "", false
	}
	pw := os.Getenv(d.PasswordEnv)
	return pw, pw != ""
}

// Prefix returns the topic prefix or DefaultTopicPrefix.
func (m *MQTTConfig) Prefix() string {
	if m.TopicPrefix == "" {
		return DefaultTopicPrefix
	}
	return strings.TrimRight(m.TopicPrefix, "/")
}

// Password reads the broker password from PasswordEnv, if set.
func (m *MQTTConfig) Password() string {
	if m.PasswordEnv == "" {
		return ""
	}
	return os.Getenv(m.PasswordEnv)
}

// ListenAddr returns the listen address or DefaultListen.
func (h *HTTPConfig) ListenAddr() string {
	if h == nil || h.Listen == "" {
		return DefaultListen
	}
	return h.Listen
}
