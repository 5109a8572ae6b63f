// Package config provides YAML-based configuration loading for the ruby node.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// DefaultMessageChannelPort is the single loopback port all node traffic
// goes through.
const DefaultMessageChannelPort = 8520

// Config is the root application configuration.
type Config struct {
	// DataDir base directory for persistent data
	DataDir string `mapstructure:"data_dir"`

	Node     NodeConfig     `mapstructure:"node"`
	Registry RegistryConfig `mapstructure:"registry"`
	Log      LogConfig      `mapstructure:"log"`
	Admin    AdminConfig    `mapstructure:"admin"`
}

// NodeConfig controls the message channel and the node loops.
type NodeConfig struct {
	Host               string `mapstructure:"host"`
	MessageChannelPort int    `mapstructure:"message_channel_port"`
	// ServiceTrackerAddress is the endpoint the node and control loops
	// connect to. Empty means the local message channel.
	ServiceTrackerAddress string `mapstructure:"service_tracker_address"`
	IOThreads             int    `mapstructure:"io_threads"`

	// RouteTTL removes routes whose peer has been silent this long. Zero
	// keeps routes until they are removed explicitly.
	RouteTTL      time.Duration `mapstructure:"route_ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`

	// RegisterTimeout bounds the self-registration round trip of a loop.
	RegisterTimeout time.Duration `mapstructure:"register_timeout"`

	WaitDebugger bool `mapstructure:"wait_debugger"`
}

// MessageChannelEndpoint returns the endpoint the receiver binds.
func (c NodeConfig) MessageChannelEndpoint() string {
	return fmt.Sprintf("tcp://%s:%d", c.Host, c.MessageChannelPort)
}

// TrackerEndpoint returns the endpoint the node loops connect to.
func (c NodeConfig) TrackerEndpoint() string {
	if strings.TrimSpace(c.ServiceTrackerAddress) != "" {
		return c.ServiceTrackerAddress
	}
	return c.MessageChannelEndpoint()
}

// RegistryConfig locates the services database.
type RegistryConfig struct {
	// Path of the services database; relative paths are under DataDir.
	Path string `mapstructure:"path"`
	// Manifest optionally seeds services at startup.
	Manifest string `mapstructure:"manifest"`
}

// AdminConfig controls the admin surfaces. Empty addresses disable them.
type AdminConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
	GRPCAddr string `mapstructure:"grpc_addr"`
}

// LogConfig defines logger settings.
type LogConfig struct {
	// Level: debug, info, warn, error
	Level string `mapstructure:"level"`
	// Format: console or json
	Format string `mapstructure:"format"`
	// Outputs: list of outputs: stdout, stderr, or file paths
	Outputs []string `mapstructure:"outputs"`

	Rotation    RotationConfig `mapstructure:"rotation"`
	Development bool           `mapstructure:"development"`
}

// RotationConfig controls log file rotation for file outputs.
type RotationConfig struct {
	Enable     bool   `mapstructure:"enable"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		DataDir: "./data",
		Node: NodeConfig{
			Host:               "127.0.0.1",
			MessageChannelPort: DefaultMessageChannelPort,
			IOThreads:          1,
			SweepInterval:      30 * time.Second,
			RegisterTimeout:    5 * time.Second,
		},
		Registry: RegistryConfig{
			Path: "services.db",
		},
		Log: LogConfig{
			Level:   "info",
			Format:  "console",
			Outputs: []string{"stderr"},
			Rotation: RotationConfig{
				Filename:   "logs/ruby.log",
				MaxSizeMB:  50,
				MaxBackups: 3,
				MaxAgeDays: 28,
				Compress:   true,
			},
		},
		Admin: AdminConfig{
			HTTPAddr: "127.0.0.1:8580",
		},
	}
}

// flagKeys maps command line flags onto configuration keys.
var flagKeys = map[string]string{
	"data-dir":                "data_dir",
	"message-channel-port":    "node.message_channel_port",
	"service-tracker-address": "node.service_tracker_address",
	"wait-debugger":           "node.wait_debugger",
	"route-ttl":               "node.route_ttl",
	"registry":                "registry.path",
	"manifest":                "registry.manifest",
	"log-level":               "log.level",
	"admin-addr":              "admin.http_addr",
	"grpc-addr":               "admin.grpc_addr",
}

// Load reads configuration from path (if non-empty), otherwise it searches
// common locations. Environment variables use the prefix RUBY with `.`
// replaced by `_`, e.g. RUBY_NODE_MESSAGE_CHANNEL_PORT=9000. Flags that were
// set on the command line override everything else.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("RUBY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("data_dir", cfg.DataDir)
	v.SetDefault("node.host", cfg.Node.Host)
	v.SetDefault("node.message_channel_port", cfg.Node.MessageChannelPort)
	v.SetDefault("node.service_tracker_address", cfg.Node.ServiceTrackerAddress)
	v.SetDefault("node.io_threads", cfg.Node.IOThreads)
	v.SetDefault("node.route_ttl", cfg.Node.RouteTTL)
	v.SetDefault("node.sweep_interval", cfg.Node.SweepInterval)
	v.SetDefault("node.register_timeout", cfg.Node.RegisterTimeout)
	v.SetDefault("node.wait_debugger", cfg.Node.WaitDebugger)
	v.SetDefault("registry.path", cfg.Registry.Path)
	v.SetDefault("registry.manifest", cfg.Registry.Manifest)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("log.outputs", cfg.Log.Outputs)
	v.SetDefault("log.development", cfg.Log.Development)
	v.SetDefault("log.rotation.enable", cfg.Log.Rotation.Enable)
	v.SetDefault("log.rotation.filename", cfg.Log.Rotation.Filename)
	v.SetDefault("log.rotation.max_size_mb", cfg.Log.Rotation.MaxSizeMB)
	v.SetDefault("log.rotation.max_backups", cfg.Log.Rotation.MaxBackups)
	v.SetDefault("log.rotation.max_age_days", cfg.Log.Rotation.MaxAgeDays)
	v.SetDefault("log.rotation.compress", cfg.Log.Rotation.Compress)
	v.SetDefault("admin.http_addr", cfg.Admin.HTTPAddr)
	v.SetDefault("admin.grpc_addr", cfg.Admin.GRPCAddr)

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if path == "" {
		if envPath := os.Getenv("RUBY_CONFIG"); envPath != "" {
			path = envPath
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("ruby")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".ruby"))
		}
	}

	// Read config file if present; if not found, continue with defaults/env
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RegistryPath returns the services database location.
func (c *Config) RegistryPath() string {
	p := c.Registry.Path
	if p == "" || p == ":memory:" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.DataDir, p)
}

func (c *Config) validate() error {
	lvl := strings.ToLower(strings.TrimSpace(c.Log.Level))
	switch lvl {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log.level: %q", c.Log.Level)
	}

	if c.Node.MessageChannelPort <= 0 || c.Node.MessageChannelPort > 65535 {
		return fmt.Errorf("invalid node.message_channel_port: %d", c.Node.MessageChannelPort)
	}
	if c.Node.IOThreads < 1 {
		c.Node.IOThreads = 1
	}
	if c.Node.RouteTTL < 0 {
		return fmt.Errorf("invalid node.route_ttl: %s", c.Node.RouteTTL)
	}
	if c.Node.RouteTTL > 0 && c.Node.SweepInterval <= 0 {
		c.Node.SweepInterval = c.Node.RouteTTL / 2
	}
	if c.Node.RegisterTimeout <= 0 {
		c.Node.RegisterTimeout = 5 * time.Second
	}
	if strings.TrimSpace(c.Node.Host) == "" {
		c.Node.Host = "127.0.0.1"
	}

	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if len(c.Log.Outputs) == 0 {
		c.Log.Outputs = []string{"stderr"}
	}
	return nil
}
