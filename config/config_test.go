package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Node.MessageChannelPort != 8520 {
		t.Errorf("Expected port 8520, got %d", cfg.Node.MessageChannelPort)
	}
	if cfg.Node.MessageChannelEndpoint() != "tcp://127.0.0.1:8520" {
		t.Errorf("Expected tcp://127.0.0.1:8520, got %s", cfg.Node.MessageChannelEndpoint())
	}
	if cfg.Node.TrackerEndpoint() != cfg.Node.MessageChannelEndpoint() {
		t.Errorf("Expected tracker to default to message channel, got %s", cfg.Node.TrackerEndpoint())
	}
	if cfg.Node.RouteTTL != 0 {
		t.Errorf("Expected route TTL disabled, got %s", cfg.Node.RouteTTL)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ruby.yaml")
	doc := `
data_dir: /var/lib/ruby
node:
  message_channel_port: 9000
  route_ttl: 2m
log:
  level: debug
registry:
  path: registry.db
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Node.MessageChannelPort != 9000 {
		t.Errorf("Expected port 9000, got %d", cfg.Node.MessageChannelPort)
	}
	if cfg.Node.RouteTTL != 2*time.Minute {
		t.Errorf("Expected route TTL 2m, got %s", cfg.Node.RouteTTL)
	}
	if cfg.Node.SweepInterval != 30*time.Second {
		t.Errorf("Expected default sweep interval 30s, got %s", cfg.Node.SweepInterval)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Expected log level debug, got %s", cfg.Log.Level)
	}
	if cfg.RegistryPath() != filepath.Join("/var/lib/ruby", "registry.db") {
		t.Errorf("Unexpected registry path %s", cfg.RegistryPath())
	}
}

func TestLoadFlagsOverride(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("message-channel-port", DefaultMessageChannelPort, "")
	flags.String("service-tracker-address", "", "")
	if err := flags.Parse([]string{"--message-channel-port=9100", "--service-tracker-address=tcp://10.0.0.1:9100"}); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	cfg, err := Load("", flags)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Node.MessageChannelPort != 9100 {
		t.Errorf("Expected port 9100, got %d", cfg.Node.MessageChannelPort)
	}
	if cfg.Node.TrackerEndpoint() != "tcp://10.0.0.1:9100" {
		t.Errorf("Expected tracker tcp://10.0.0.1:9100, got %s", cfg.Node.TrackerEndpoint())
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("RUBY_NODE_MESSAGE_CHANNEL_PORT", "9200")

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Node.MessageChannelPort != 9200 {
		t.Errorf("Expected port 9200, got %d", cfg.Node.MessageChannelPort)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("RUBY_LOG_LEVEL", "loud")

	if _, err := Load("", nil); err == nil {
		t.Error("Expected error for invalid log level")
	}
}
