package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlifSrSE/css/internal/domain/service"
)

func validEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("JWT_SECRET", "signing-key")
}

func TestLoad_Defaults(t *testing.T) {
	validEnv(t)

	cfg, err := Load()

	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":8091", cfg.GRPCAddress())
	assert.Equal(t, ":9091", cfg.HTTPAddress())
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "credit.applications", cfg.Kafka.ApplicationsTopic)
	assert.Equal(t, "credit.scores", cfg.Kafka.ScoresTopic)
	assert.Equal(t, service.DefaultWeights(), cfg.Scoring.Policy.Weights)
	assert.Equal(t, "65", cfg.Scoring.Policy.Thresholds.A.String())
	assert.Equal(t, 8, cfg.Scoring.BulkParallelism)
	assert.Empty(t, cfg.Predictor.URL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	validEnv(t)
	t.Setenv("DPW", "40")
	t.Setenv("CRW", "10")
	t.Setenv("MIN_A", "70.5")
	t.Setenv("MIN_B", " 50 ")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("SCORE_CACHE_TTL", "5m")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 40, cfg.Scoring.Policy.Weights.DataPoints)
	assert.Equal(t, 10, cfg.Scoring.Policy.Weights.CreditRatios)
	assert.Equal(t, "70.5", cfg.Scoring.Policy.Thresholds.A.String())
	assert.Equal(t, "50", cfg.Scoring.Policy.Thresholds.B.String())
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "5m0s", cfg.Redis.ScoreTTL.String())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MalformedPolicyOverrides(t *testing.T) {
	validEnv(t)
	t.Setenv("DPW", "thirty")
	t.Setenv("MIN_A", "sixty-five")

	_, err := Load()

	require.Error(t, err)
	assert.ErrorContains(t, err, "scoring policy overrides")
	assert.ErrorContains(t, err, `DPW: "thirty" is not an integer`)
	assert.ErrorContains(t, err, `MIN_A: "sixty-five" is not a number`)
}

func TestLoad_PolicyFile(t *testing.T) {
	validEnv(t)
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
weights:
  data_points: 25
  credit_ratios: 25
  borrower_attributes: 45
  psychometric: 5
grade_thresholds:
  A: 70
  B: 55
`), 0o600))
	t.Setenv("SCORING_POLICY_FILE", path)
	t.Setenv("PSW", "5")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, service.Weights{DataPoints: 25, CreditRatios: 25, BorrowerAttributes: 45, Psychometric: 5}, cfg.Scoring.Policy.Weights)
	assert.Equal(t, "70", cfg.Scoring.Policy.Thresholds.A.String())
	assert.Equal(t, "55", cfg.Scoring.Policy.Thresholds.B.String())
	// keys absent from the file keep their defaults
	assert.Equal(t, "35", cfg.Scoring.Policy.Thresholds.C.String())
	assert.NoError(t, cfg.Validate())
}

func TestLoadPolicy_Errors(t *testing.T) {
	_, err := LoadPolicy(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read scoring policy")

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("weights: [1, 2"), 0o600))
	_, err = LoadPolicy(path)
	assert.ErrorContains(t, err, "parse scoring policy")
}

func TestValidate(t *testing.T) {
	t.Run("invalid weights fail closed", func(t *testing.T) {
		validEnv(t)
		t.Setenv("DPW", "90")

		cfg, err := Load()
		require.NoError(t, err)

		err = cfg.Validate()
		assert.ErrorIs(t, err, service.ErrInvalidWeights)
	})

	t.Run("thresholds out of order", func(t *testing.T) {
		validEnv(t)
		t.Setenv("MIN_C", "60")

		cfg, err := Load()
		require.NoError(t, err)

		assert.ErrorIs(t, cfg.Validate(), service.ErrInvalidThresholds)
	})

	t.Run("missing secrets", func(t *testing.T) {
		t.Setenv("DB_PASSWORD", "")
		t.Setenv("JWT_SECRET", "")

		cfg, err := Load()
		require.NoError(t, err)

		err = cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DB_PASSWORD")
		assert.Contains(t, err.Error(), "JWT_SECRET")
	})

	t.Run("half-configured TLS", func(t *testing.T) {
		validEnv(t)
		t.Setenv("TLS_CERT_FILE", "server.pem")

		cfg, err := Load()
		require.NoError(t, err)

		assert.ErrorContains(t, cfg.Validate(), "TLS_CERT_FILE and TLS_KEY_FILE")
	})

	t.Run("client CA without server certificate", func(t *testing.T) {
		validEnv(t)
		t.Setenv("TLS_CLIENT_CA_FILE", "ca.pem")

		cfg, err := Load()
		require.NoError(t, err)

		assert.ErrorContains(t, cfg.Validate(), "TLS_CLIENT_CA_FILE requires")
	})
}
