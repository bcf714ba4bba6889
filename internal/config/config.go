// Package config loads the daemon configuration from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Config describes where the HTTP node runs.
type Config interface {
	// IP provides the IP address where the server is intended to run.
	IP() string
	// Port provides the port where the server is supposed to run.
	Port() string
}

var _ Config = (*SimpleConfig)(nil)

// SimpleConfig implements Config.
type SimpleConfig struct {
	IPAddr   string `yaml:"ip"`
	PortAddr string `yaml:"port"`
}

// NewSimpleConfig returns a new simple configuration
func NewSimpleConfig(IPAddr, PortAddr string) *SimpleConfig {
	return &SimpleConfig{
		IPAddr:   IPAddr,
		PortAddr: PortAddr,
	}
}

// IP returns the IP address from SimpleConfig
func (scfg *SimpleConfig) IP() string {
	return scfg.IPAddr
}

// Port returns the port from SimpleConfig.
func (scfg *SimpleConfig) Port() string {
	return scfg.PortAddr
}

// Addr returns the host:port the server listens on.
func (scfg *SimpleConfig) Addr() string {
	return scfg.IPAddr + ":" + scfg.PortAddr
}

// CephConfig configures the cluster connection.
type CephConfig struct {
	// ConfigPattern is a glob of ceph.conf files; one cluster is opened
	// per file.
	ConfigPattern string `yaml:"config_pattern"`
	// Cluster selects the cluster (FSID) to serve when the pattern matches
	// several files. Empty means the only one found.
	Cluster     string `yaml:"cluster"`
	User        string `yaml:"user"`
	MonTimeout  string `yaml:"mon_timeout"`
	OsdTimeout  string `yaml:"osd_timeout"`
	StripeUnit  uint   `yaml:"stripe_unit"`
	StripeCount uint   `yaml:"stripe_count"`
	ObjectSize  uint   `yaml:"object_size"`
	PoolCache   int    `yaml:"pool_cache"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// MetricsConfig configures the prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// File is the daemon configuration file.
type File struct {
	Server  SimpleConfig  `yaml:"server"`
	Ceph    CephConfig    `yaml:"ceph"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// Default returns the default configuration.
func Default() *File {
	return &File{
		Server: SimpleConfig{
			IPAddr:   "127.0.0.1",
			PortAddr: "61111",
		},
		Ceph: CephConfig{
			ConfigPattern: "conf/*.conf",
			User:          "admin",
			MonTimeout:    "0",
			OsdTimeout:    "0",
			StripeUnit:    4 << 20,
			StripeCount:   1,
			ObjectSize:    4 << 20,
			PoolCache:     16,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Load reads the configuration at path over the defaults. An empty path
// returns the defaults.
func Load(path string) (*File, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the values that can't be caught at parse time.
func (f *File) Validate() error {
	if err := CheckValidPort(f.Server.PortAddr); err != nil {
		return err
	}
	if _, err := f.LogLevel(); err != nil {
		return err
	}
	if f.Ceph.ConfigPattern == "" {
		return errors.New("ceph.config_pattern is empty")
	}
	if f.Ceph.PoolCache < 1 {
		return errors.New("ceph.pool_cache must be at least 1")
	}
	return nil
}

// LogLevel parses the configured log level.
func (f *File) LogLevel() (zerolog.Level, error) {
	lvl, err := zerolog.ParseLevel(f.Logging.Level)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("bad log level %q: %w", f.Logging.Level, err)
	}
	return lvl, nil
}

// CheckValidPort checks that port is a number a TCP port can take.
func CheckValidPort(port string) error {
	portInt, err := strconv.Atoi(port)
	if err != nil {
		return err
	}
	if portInt < 0 || portInt > 65535 {
		return errors.New("port number exceeds limit of 65535")
	}
	return nil
}
