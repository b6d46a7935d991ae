package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AlifSrSE/css/internal/domain/model"
	"github.com/AlifSrSE/css/internal/infrastructure/config"
)

const keyPrefix = "credit_score:"

// NewClient creates a Redis client and verifies the connection.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

// ScoreCache implements port.ScoreCache on Redis. Entries are JSON snapshots
// of the latest score per application.
type ScoreCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewScoreCache creates a cache whose entries expire after ttl. A
// non-positive ttl keeps entries until invalidated.
func NewScoreCache(client *redis.Client, ttl time.Duration) *ScoreCache {
	if ttl < 0 {
		ttl = 0
	}
	return &ScoreCache{client: client, ttl: ttl}
}

type entry struct {
	ID            string              `json:"id"`
	ApplicationID string              `json:"application_id"`
	Result        model.ScoreResult   `json:"result"`
	AIPrediction  *model.AIPrediction `json:"ai_prediction,omitempty"`
	CalculatedAt  time.Time           `json:"calculated_at"`
	CalculatedBy  string              `json:"calculated_by"`
	ModelVersion  string              `json:"model_version"`
}

// Get returns the cached score, or found=false on a miss.
func (c *ScoreCache) Get(ctx context.Context, applicationID string) (model.CreditScore, bool, error) {
	raw, err := c.client.Get(ctx, key(applicationID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.CreditScore{}, false, nil
	}
	if err != nil {
		return model.CreditScore{}, false, fmt.Errorf("redis get %s: %w", applicationID, err)
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return model.CreditScore{}, false, fmt.Errorf("decode cached score %s: %w", applicationID, err)
	}
	return model.ReconstructCreditScore(
		e.ID, e.ApplicationID, e.Result, e.AIPrediction, e.CalculatedAt, e.CalculatedBy, e.ModelVersion,
	), true, nil
}

// Set stores score as the latest for its application.
func (c *ScoreCache) Set(ctx context.Context, score model.CreditScore) error {
	raw, err := json.Marshal(entry{
		ID:            score.ID(),
		ApplicationID: score.ApplicationID(),
		Result:        score.Result(),
		AIPrediction:  score.AIPrediction(),
		CalculatedAt:  score.CalculatedAt(),
		CalculatedBy:  score.CalculatedBy(),
		ModelVersion:  score.ModelVersion(),
	})
	if err != nil {
		return fmt.Errorf("encode score %s: %w", score.ApplicationID(), err)
	}
	if err := c.client.Set(ctx, key(score.ApplicationID()), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", score.ApplicationID(), err)
	}
	return nil
}

// Invalidate drops the cached score of an application.
func (c *ScoreCache) Invalidate(ctx context.Context, applicationID string) error {
	if err := c.client.Del(ctx, key(applicationID)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", applicationID, err)
	}
	return nil
}

func key(applicationID string) string { return keyPrefix + applicationID }
