package bootstrap

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "default.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigFileThenEnv(t *testing.T) {
	path := writeConfig(t, `
service:
  http_port: 8100
dependencies:
  postgres_url: postgres://file/beaconiq
  mongo_url: mongodb://file:27017
  kafka_brokers: ["file:9092"]
upstream:
  analytics_url: http://analytics.local
  timeout_seconds: 12
http:
  allowed_origins: ["https://dash.example.com"]
`)
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("DB_URL", "postgres://env/beaconiq")
	t.Setenv("KAFKA_BROKERS", "k1:9092, ,k2:9092")
	t.Setenv("CHAT_REVEAL_INTERVAL", "10ms")
	t.Setenv("IDEMPOTENCY_TTL", "2h")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HTTPPort != 8100 || cfg.GRPCPort != 9090 {
		t.Fatalf("unexpected ports %d/%d", cfg.HTTPPort, cfg.GRPCPort)
	}
	if cfg.DatabaseURL != "postgres://env/beaconiq" {
		t.Fatalf("env should override file db url, got %q", cfg.DatabaseURL)
	}
	if cfg.MongoURL != "mongodb://file:27017" {
		t.Fatalf("unexpected mongo url %q", cfg.MongoURL)
	}
	if diff := cmp.Diff([]string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers); diff != "" {
		t.Fatalf("brokers mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"https://dash.example.com"}, cfg.AllowedOrigins); diff != "" {
		t.Fatalf("origins mismatch (-want +got):\n%s", diff)
	}
	if cfg.UpstreamTimeout != 12*time.Second || cfg.RevealInterval != 10*time.Millisecond {
		t.Fatalf("unexpected durations timeout=%s reveal=%s", cfg.UpstreamTimeout, cfg.RevealInterval)
	}
	if cfg.IdempotencyTTL != 2*time.Hour {
		t.Fatalf("env should set idempotency ttl, got %s", cfg.IdempotencyTTL)
	}
	if cfg.SeedAdminEmail != "data.admin@thrivebrands.ai" {
		t.Fatalf("unexpected seed email %q", cfg.SeedAdminEmail)
	}
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("DB_URL", "postgres://env/beaconiq")
	t.Setenv("MONGO_URL", "mongodb://env:27017")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HTTPPort != 8000 || cfg.TokenTTL != 24*time.Hour || cfg.LockoutThreshold != 5 || cfg.IdempotencyTTL != 24*time.Hour {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing db url",
			env:     map[string]string{"MONGO_URL": "mongodb://x", "JWT_SECRET": testSecret},
			wantErr: "DB_URL",
		},
		{
			name:    "missing mongo url",
			env:     map[string]string{"DB_URL": "postgres://x", "JWT_SECRET": testSecret},
			wantErr: "MONGO_URL",
		},
		{
			name:    "short secret",
			env:     map[string]string{"DB_URL": "postgres://x", "MONGO_URL": "mongodb://x", "JWT_SECRET": "short"},
			wantErr: "JWT_SECRET",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for _, key := range []string{"DB_URL", "MONGO_URL", "JWT_SECRET"} {
				t.Setenv(key, tc.env[key])
			}
			_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error mentioning %s, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestLoadConfigRejectsBadYAML(t *testing.T) {
	path := writeConfig(t, "service: [unclosed")
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected parse error")
	}
}
