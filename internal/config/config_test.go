// internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"printer-server/internal/model"
)

const sampleYAML = `
server:
  port: "5051"
logging:
  level: debug
printer:
  handler: FISCAL_TFHKA
  settings:
    FISCAL_TFHKA:
      port: COM7
      baud_rate: 9600
    TICKET:
      printer_name: counter
queues:
  - name: counter
    connection_type: TCP
    settings:
      host: 192.168.1.50
discovery:
  tcp:
    enabled: true
    hosts: ["192.168.1.50"]
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFrom(t *testing.T) {
	cfg, err := LoadFrom(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.GetServerAddr() != "0.0.0.0:5051" {
		t.Fatalf("unexpected server address %s", cfg.GetServerAddr())
	}
	if cfg.HandlerType() != model.HandlerFiscalTFHKA {
		t.Fatalf("unexpected handler %s", cfg.HandlerType())
	}
	if got := cfg.HandlerSettings(model.HandlerFiscalTFHKA)["port"]; got != "COM7" {
		t.Fatalf("expected fiscal port COM7, got %v", got)
	}
	if got := cfg.HandlerSettings(model.HandlerProxy); got == nil || len(got) != 0 {
		t.Fatalf("expected empty settings for unconfigured handler, got %v", got)
	}
	if len(cfg.Queues) != 1 || cfg.Queues[0].Name != "counter" || cfg.Queues[0].ConnectionType != "TCP" {
		t.Fatalf("unexpected queues %+v", cfg.Queues)
	}
	if !cfg.Discovery.TCP.Enabled || cfg.Discovery.TCP.Hosts[0] != "192.168.1.50" {
		t.Fatalf("unexpected tcp discovery %+v", cfg.Discovery.TCP)
	}

	// defaults
	if cfg.Server.ShutdownTimeout != 30*time.Second {
		t.Fatalf("expected 30s shutdown timeout, got %s", cfg.Server.ShutdownTimeout)
	}
	if cfg.Formatting.DecimalSeparator != "." || cfg.Formatting.Decimals != 2 {
		t.Fatalf("unexpected formatting defaults %+v", cfg.Formatting)
	}
	if !cfg.IsDebugEnabled() {
		t.Fatalf("expected debug in development")
	}
}

func TestLoadFrom_EnvOverride(t *testing.T) {
	t.Setenv("PRINTER_SERVER_PRINTER_HANDLER", "TICKET")
	t.Setenv("PRINTER_SERVER_SERVER_PORT", "6060")

	cfg, err := LoadFrom(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HandlerType() != model.HandlerTicket {
		t.Fatalf("expected env to select TICKET, got %s", cfg.HandlerType())
	}
	if cfg.Server.Port != "6060" {
		t.Fatalf("expected env port 6060, got %s", cfg.Server.Port)
	}
}

func TestLoadFrom_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown handler", "printer:\n  handler: LASER\n", "printer.handler"},
		{"port out of range", "server:\n  port: \"70000\"\n", "server.port"},
		{"bad log level", "logging:\n  level: verbose\n", "logging.level"},
		{"bad environment", "app:\n  environment: qa\n", "app.environment"},
		{"unnamed queue", "queues:\n  - connection_type: FILE\n", "queues[0].name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(writeConfig(t, tt.body))
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadFrom_MissingExplicitFile(t *testing.T) {
	if _, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected an error for a missing explicit config file")
	}
}
