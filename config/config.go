// Package config loads the process's deployment-time constants — the
// network bind/dial address and reconnect backoff, depth conversion
// constants, PID gains, motor calibration, and hostname/version — from a
// single YAML file. Peripheral bus paths and sensor periods are not read
// from it; the sensor periods are constants in package sensors.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"rov-go/netlink"
	"rov-go/sensors"
	"rov-go/store"
	"rov-go/types"
)

// DefaultSearchPaths returns the default config file search order:
// ./config.yaml, ~/.config/rov/config.yaml, /etc/rov/config.yaml. An
// explicit path, if any, is handled by FindConfig before these.
func DefaultSearchPaths() []string {
	paths := []string{"config.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "rov", "config.yaml"))
	}
	paths = append(paths, "/etc/rov/config.yaml")
	return paths
}

// FindConfig locates a config file. If explicit is non-empty it must
// exist; otherwise the default search path is tried in order.
func FindConfig(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}
	for _, p := range DefaultSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("no config file found (searched: %v)", DefaultSearchPaths())
}

// Config holds the full set of deployment-time constants.
type Config struct {
	Network netlink.Config       `yaml:"network"`
	Depth   sensors.DepthConfig  `yaml:"depth"`
	Motors  map[string]MotorYAML `yaml:"motors"`

	DepthPID    store.PIDGains `yaml:"depth_pid"`
	LevelingPID store.PIDGains `yaml:"leveling_pid"`

	Hostname string `yaml:"hostname"`
	Version  string `yaml:"version"`
}

// MotorYAML is the YAML shape for one motor's calibration; durations are
// expressed in microseconds for readability in the config file.
type MotorYAML struct {
	Channel  int     `yaml:"channel"`
	MaxSpeed float64 `yaml:"max_speed"`
	ReverseUs int    `yaml:"reverse_us"`
	CenterUs  int    `yaml:"center_us"`
	ForwardUs int    `yaml:"forward_us"`
	PeriodUs  int    `yaml:"period_us"`
}

// ToMotorConfig converts the YAML shape to the runtime MotorConfig.
func (m MotorYAML) ToMotorConfig() types.MotorConfig {
	return types.MotorConfig{
		Channel:  m.Channel,
		MaxSpeed: types.Speed(m.MaxSpeed),
		Reverse:  time.Duration(m.ReverseUs) * time.Microsecond,
		Center:   time.Duration(m.CenterUs) * time.Microsecond,
		Forward:  time.Duration(m.ForwardUs) * time.Microsecond,
		Period:   time.Duration(m.PeriodUs) * time.Microsecond,
	}
}

// Load reads, parses, and defaults a Config from path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Depth.FluidDensity == 0 {
		c.Depth = sensors.DefaultDepthConfig()
	}
	if c.Network.ReconnectBackoff == 0 {
		c.Network.ReconnectBackoff = time.Second
	}
	if c.DepthPID == (store.PIDGains{}) {
		c.DepthPID = store.PIDGains{Kp: 1.2, Ki: 0.1, Kd: 0.3, MaxIntegral: 2.0}
	}
	if c.LevelingPID == (store.PIDGains{}) {
		c.LevelingPID = store.PIDGains{Kp: 1.0, Ki: 0.05, Kd: 0.2, MaxIntegral: 1.0}
	}
	if c.Hostname == "" {
		c.Hostname, _ = os.Hostname()
	}
}
