package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/AlifSrSE/css/internal/domain/service"
	pkgkafka "github.com/AlifSrSE/css/pkg/kafka"
	pkgpostgres "github.com/AlifSrSE/css/pkg/postgres"
)

// Config holds all configuration for the scoring service.
type Config struct {
	// gRPC server port
	GRPCPort int
	// HTTP metrics/health port
	HTTPPort int
	// Service name for observability
	ServiceName string
	Environment string
	LogLevel    string

	Database      pkgpostgres.Config
	MigrationsDir string
	Kafka         KafkaConfig
	Redis         RedisConfig
	Predictor     PredictorConfig
	Auth          AuthConfig
	TLS           TLSConfig
	// OTLP gRPC collector endpoint; empty disables tracing.
	OTLPEndpoint string

	Scoring ScoringConfig
}

// KafkaConfig holds broker settings and topic names.
type KafkaConfig struct {
	pkgkafka.Config
	ApplicationsTopic string
	ScoresTopic       string
	// Outbox relay poll interval and batch size.
	RelayInterval time.Duration
	RelayBatch    int
}

// RedisConfig holds score cache settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	ScoreTTL time.Duration
}

// PredictorConfig points at the optional default-probability model server.
// An empty URL disables remote prediction.
type PredictorConfig struct {
	URL        string
	Timeout    time.Duration
	MaxRetries int
}

// AuthConfig configures bearer-token validation on the gRPC API.
type AuthConfig struct {
	JWTSecret    string
	JWTPublicKey string
	Issuer       string
	Audience     string
}

// TLSConfig holds server certificate paths. Both empty means plaintext.
// ClientCAFile additionally requires client certificates.
type TLSConfig struct {
	CertFile     string
	KeyFile      string
	ClientCAFile string
}

// ScoringConfig is the active scoring policy plus run options.
type ScoringConfig struct {
	Policy             service.ScoringPolicy
	PolicyFile         string
	BulkParallelism    int
	StrictPsychometric bool
}

// Load reads configuration from environment variables with defaults. A .env
// file in the working directory is applied first when present. The scoring
// policy starts from the defaults, is replaced by SCORING_POLICY_FILE when
// set, and then individual env overrides are applied.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		GRPCPort:    getEnvInt("GRPC_PORT", 8091),
		HTTPPort:    getEnvInt("HTTP_PORT", 9091),
		ServiceName: getEnv("SERVICE_NAME", "credit-scoring"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Database: pkgpostgres.Config{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "css"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "credit_scoring"),
			SSLMode:  getEnv("DB_SSLMODE", "require"),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 10)),
		},
		MigrationsDir: getEnv("MIGRATIONS_DIR", "file://migrations"),
		Kafka: KafkaConfig{
			Config: pkgkafka.Config{
				Brokers:       splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
				ConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "credit-scoring"),
				TLS:           getEnvBool("KAFKA_TLS", false),
				SASLEnabled:   getEnvBool("KAFKA_SASL_ENABLED", false),
				SASLMechanism: getEnv("KAFKA_SASL_MECHANISM", ""),
				SASLUsername:  getEnv("KAFKA_SASL_USERNAME", ""),
				SASLPassword:  getEnv("KAFKA_SASL_PASSWORD", ""),
			},
			ApplicationsTopic: getEnv("KAFKA_APPLICATIONS_TOPIC", "credit.applications"),
			ScoresTopic:       getEnv("KAFKA_SCORES_TOPIC", "credit.scores"),
			RelayInterval:     getEnvDuration("OUTBOX_RELAY_INTERVAL", time.Second),
			RelayBatch:        getEnvInt("OUTBOX_RELAY_BATCH", 100),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			ScoreTTL: getEnvDuration("SCORE_CACHE_TTL", time.Hour),
		},
		Predictor: PredictorConfig{
			URL:        getEnv("PREDICTOR_URL", ""),
			Timeout:    getEnvDuration("PREDICTOR_TIMEOUT", 2*time.Second),
			MaxRetries: getEnvInt("PREDICTOR_MAX_RETRIES", 2),
		},
		Auth: AuthConfig{
			JWTSecret:    getEnv("JWT_SECRET", ""),
			JWTPublicKey: getEnv("JWT_PUBLIC_KEY", ""),
			Issuer:       getEnv("JWT_ISSUER", ""),
			Audience:     getEnv("JWT_AUDIENCE", ""),
		},
		TLS: TLSConfig{
			CertFile:     getEnv("TLS_CERT_FILE", ""),
			KeyFile:      getEnv("TLS_KEY_FILE", ""),
			ClientCAFile: getEnv("TLS_CLIENT_CA_FILE", ""),
		},
		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		Scoring: ScoringConfig{
			PolicyFile:         getEnv("SCORING_POLICY_FILE", ""),
			BulkParallelism:    getEnvInt("BULK_PARALLELISM", 8),
			StrictPsychometric: getEnvBool("STRICT_PSYCHOMETRIC", false),
		},
	}

	policy, err := LoadPolicy(cfg.Scoring.PolicyFile)
	if err != nil {
		return Config{}, err
	}
	cfg.Scoring.Policy, err = policyFromEnv(policy)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadPolicy reads a YAML scoring policy. An empty path returns the
// defaults; keys missing from the file keep their default values.
func LoadPolicy(path string) (service.ScoringPolicy, error) {
	policy := service.DefaultScoringPolicy()
	if path == "" {
		return policy, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return service.ScoringPolicy{}, fmt.Errorf("read scoring policy %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &policy); err != nil {
		return service.ScoringPolicy{}, fmt.Errorf("parse scoring policy %s: %w", path, err)
	}
	return policy, nil
}

// policyFromEnv applies the DPW/CRW/CAW/PSW weight and MIN_A..MIN_R
// threshold overrides. A set but unparsable value is an error.
func policyFromEnv(p service.ScoringPolicy) (service.ScoringPolicy, error) {
	var errs []error
	weight := func(key string, dst *int) {
		if err := parseEnvInt(key, dst); err != nil {
			errs = append(errs, err)
		}
	}
	threshold := func(key string, dst *decimal.Decimal) {
		if err := parseEnvDecimal(key, dst); err != nil {
			errs = append(errs, err)
		}
	}

	weight("DPW", &p.Weights.DataPoints)
	weight("CRW", &p.Weights.CreditRatios)
	weight("CAW", &p.Weights.BorrowerAttributes)
	weight("PSW", &p.Weights.Psychometric)

	threshold("MIN_A", &p.Thresholds.A)
	threshold("MIN_B", &p.Thresholds.B)
	threshold("MIN_C", &p.Thresholds.C)
	threshold("MIN_R", &p.Thresholds.R)

	if err := errors.Join(errs...); err != nil {
		return service.ScoringPolicy{}, fmt.Errorf("scoring policy overrides: %w", err)
	}
	return p, nil
}

// Validate checks required values and the scoring policy. The service must
// not start scoring with an invalid policy.
func (c Config) Validate() error {
	var errs []error
	if c.Database.Password == "" {
		errs = append(errs, errors.New("DB_PASSWORD environment variable is required"))
	}
	if err := c.Kafka.Config.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Auth.JWTSecret == "" && c.Auth.JWTPublicKey == "" {
		errs = append(errs, errors.New("JWT_SECRET or JWT_PUBLIC_KEY is required"))
	}
	if (c.TLS.CertFile == "") != (c.TLS.KeyFile == "") {
		errs = append(errs, errors.New("TLS_CERT_FILE and TLS_KEY_FILE must be set together"))
	}
	if c.TLS.ClientCAFile != "" && c.TLS.CertFile == "" {
		errs = append(errs, errors.New("TLS_CLIENT_CA_FILE requires TLS_CERT_FILE and TLS_KEY_FILE"))
	}
	if err := c.Scoring.Policy.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("scoring policy: %w", err))
	}
	return errors.Join(errs...)
}

// GRPCAddress returns the full gRPC listen address.
func (c Config) GRPCAddress() string {
	return fmt.Sprintf(":%d", c.GRPCPort)
}

// HTTPAddress returns the full HTTP listen address.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

// parseEnvInt overwrites dst when key is set.
func parseEnvInt(key string, dst *int) error {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	i, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		return fmt.Errorf("%s: %q is not an integer", key, val)
	}
	*dst = i
	return nil
}

// parseEnvDecimal overwrites dst when key is set.
func parseEnvDecimal(key string, dst *decimal.Decimal) error {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(val))
	if err != nil {
		return fmt.Errorf("%s: %q is not a number", key, val)
	}
	*dst = d
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
