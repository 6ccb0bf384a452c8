package bootstrap

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config is the resolved runtime configuration for the BeaconIQ API and worker.
type Config struct {
	ServiceName string `env:"SERVICE_NAME"`
	HTTPPort    int    `env:"HTTP_PORT"`
	GRPCPort    int    `env:"GRPC_PORT"`

	DatabaseURL   string `env:"DB_URL"`
	MaxDBConns    int32  `env:"DB_MAX_CONNS"`
	MongoURL      string `env:"MONGO_URL"`
	MongoDatabase string `env:"MONGO_DATABASE"`
	RedisURL      string `env:"REDIS_URL"`

	KafkaBrokers   []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaGroupID   string   `env:"KAFKA_GROUP_ID"`
	KafkaTopic     string   `env:"KAFKA_TOPIC"`
	KafkaSyncTopic string   `env:"KAFKA_SYNC_TOPIC"`

	AnalyticsURL       string        `env:"ANALYTICS_API_URL"`
	RecommendationsURL string        `env:"RECOMMENDATIONS_API_URL"`
	InsightsURL        string        `env:"INSIGHTS_API_URL"`
	UpstreamToken      string        `env:"UPSTREAM_API_TOKEN"`
	UpstreamTimeout    time.Duration `env:"UPSTREAM_TIMEOUT"`

	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL"`

	JWTSecret  string        `env:"JWT_SECRET"`
	JWTIssuer  string        `env:"JWT_ISSUER"`
	BcryptCost int           `env:"BCRYPT_ROUNDS"`
	TokenTTL   time.Duration `env:"TOKEN_TTL"`

	LockoutThreshold  int           `env:"FAILED_LOGIN_THRESHOLD"`
	LockoutWindow     time.Duration `env:"ACCOUNT_LOCKOUT_WINDOW"`
	AnalyticsCacheTTL time.Duration `env:"ANALYTICS_CACHE_TTL"`
	ChatHistoryLimit  int           `env:"CHAT_HISTORY_LIMIT"`
	RevealInterval    time.Duration `env:"CHAT_REVEAL_INTERVAL"`
	IdempotencyTTL    time.Duration `env:"IDEMPOTENCY_TTL"`
	AllowedOrigins    []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	SeedAdminEmail    string `env:"SEED_ADMIN_EMAIL"`
	SeedAdminPassword string `env:"SEED_ADMIN_PASSWORD"`

	OutboxPollInterval   time.Duration `env:"OUTBOX_POLL_INTERVAL"`
	OutboxBatchSize      int           `env:"OUTBOX_BATCH_SIZE"`
	ConsumerPollInterval time.Duration `env:"CONSUMER_POLL_INTERVAL"`

	OTelEndpoint string `env:"OTEL_EXPORTER_ENDPOINT"`
}

// configFile mirrors the YAML schema used by configs/default.yaml.
type configFile struct {
	Service struct {
		Name     string `yaml:"name"`
		HTTPPort int    `yaml:"http_port"`
		GRPCPort int    `yaml:"grpc_port"`
	} `yaml:"service"`
	Dependencies struct {
		PostgresURL   string   `yaml:"postgres_url"`
		MongoURL      string   `yaml:"mongo_url"`
		MongoDatabase string   `yaml:"mongo_database"`
		RedisURL      string   `yaml:"redis_url"`
		KafkaBrokers  []string `yaml:"kafka_brokers"`
	} `yaml:"dependencies"`
	Upstream struct {
		AnalyticsURL       string `yaml:"analytics_url"`
		RecommendationsURL string `yaml:"recommendations_url"`
		InsightsURL        string `yaml:"insights_url"`
		TimeoutSeconds     int    `yaml:"timeout_seconds"`
	} `yaml:"upstream"`
	Auth struct {
		Issuer           string `yaml:"issuer"`
		TokenTTLHours    int    `yaml:"token_ttl_hours"`
		SeedAdminEmail   string `yaml:"seed_admin_email"`
		LockoutThreshold int    `yaml:"lockout_threshold"`
	} `yaml:"auth"`
	HTTP struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"http"`
}

// LoadConfig resolves configuration in priority order: defaults -> file -> env.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceName:          "BeaconIQ-API",
		HTTPPort:             8000,
		GRPCPort:             9090,
		MaxDBConns:           20,
		MongoDatabase:        "beaconiq",
		KafkaGroupID:         "beaconiq-worker",
		KafkaTopic:           "beaconiq.events",
		KafkaSyncTopic:       "analytics.events",
		UpstreamTimeout:      30 * time.Second,
		GeminiModel:          "gemini-2.5-flash",
		JWTIssuer:            "beaconiq",
		BcryptCost:           12,
		TokenTTL:             24 * time.Hour,
		LockoutThreshold:     5,
		LockoutWindow:        15 * time.Minute,
		AnalyticsCacheTTL:    5 * time.Minute,
		ChatHistoryLimit:     20,
		RevealInterval:       30 * time.Millisecond,
		IdempotencyTTL:       24 * time.Hour,
		AllowedOrigins:       []string{"http://localhost:3000"},
		SeedAdminEmail:       "data.admin@thrivebrands.ai",
		OutboxPollInterval:   2 * time.Second,
		OutboxBatchSize:      100,
		ConsumerPollInterval: time.Second,
	}

	raw, err := os.ReadFile(path)
	if err == nil {
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
		}
		applyFile(&cfg, f)
	} else if !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.KafkaBrokers = trimCSV(cfg.KafkaBrokers)
	cfg.AllowedOrigins = trimCSV(cfg.AllowedOrigins)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyFile(cfg *Config, f configFile) {
	if f.Service.Name != "" {
		cfg.ServiceName = f.Service.Name
	}
	if f.Service.HTTPPort > 0 {
		cfg.HTTPPort = f.Service.HTTPPort
	}
	if f.Service.GRPCPort > 0 {
		cfg.GRPCPort = f.Service.GRPCPort
	}
	if f.Dependencies.PostgresURL != "" {
		cfg.DatabaseURL = f.Dependencies.PostgresURL
	}
	if f.Dependencies.MongoURL != "" {
		cfg.MongoURL = f.Dependencies.MongoURL
	}
	if f.Dependencies.MongoDatabase != "" {
		cfg.MongoDatabase = f.Dependencies.MongoDatabase
	}
	if f.Dependencies.RedisURL != "" {
		cfg.RedisURL = f.Dependencies.RedisURL
	}
	if len(f.Dependencies.KafkaBrokers) > 0 {
		cfg.KafkaBrokers = f.Dependencies.KafkaBrokers
	}
	if f.Upstream.AnalyticsURL != "" {
		cfg.AnalyticsURL = f.Upstream.AnalyticsURL
	}
	if f.Upstream.RecommendationsURL != "" {
		cfg.RecommendationsURL = f.Upstream.RecommendationsURL
	}
	if f.Upstream.InsightsURL != "" {
		cfg.InsightsURL = f.Upstream.InsightsURL
	}
	if f.Upstream.TimeoutSeconds > 0 {
		cfg.UpstreamTimeout = time.Duration(f.Upstream.TimeoutSeconds) * time.Second
	}
	if f.Auth.Issuer != "" {
		cfg.JWTIssuer = f.Auth.Issuer
	}
	if f.Auth.TokenTTLHours > 0 {
		cfg.TokenTTL = time.Duration(f.Auth.TokenTTLHours) * time.Hour
	}
	if f.Auth.SeedAdminEmail != "" {
		cfg.SeedAdminEmail = f.Auth.SeedAdminEmail
	}
	if f.Auth.LockoutThreshold > 0 {
		cfg.LockoutThreshold = f.Auth.LockoutThreshold
	}
	if len(f.HTTP.AllowedOrigins) > 0 {
		cfg.AllowedOrigins = f.HTTP.AllowedOrigins
	}
}

func (c Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("missing DB_URL")
	}
	if c.MongoURL == "" {
		return fmt.Errorf("missing MONGO_URL")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}
	if c.HTTPPort <= 0 || c.GRPCPort <= 0 {
		return fmt.Errorf("invalid ports http=%d grpc=%d", c.HTTPPort, c.GRPCPort)
	}
	return nil
}

// trimCSV drops empty entries left by comma-split values.
func trimCSV(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
