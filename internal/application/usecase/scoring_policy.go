package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/AlifSrSE/css/internal/application/dto"
	"github.com/AlifSrSE/css/internal/domain/service"
)

// PolicyStore holds the active scoring engine. Readers take a snapshot with
// Engine; updates build a new engine and swap it in atomically, so runs that
// already hold an engine keep their policy.
type PolicyStore struct {
	mu           sync.Mutex
	engine       atomic.Pointer[service.ScoringEngine]
	psychometric *service.PsychometricModel
	logger       *slog.Logger
}

// NewPolicyStore validates the initial policy and returns a store.
func NewPolicyStore(
	initial service.ScoringPolicy,
	psychometric *service.PsychometricModel,
	logger *slog.Logger,
) (*PolicyStore, error) {
	engine, err := service.NewScoringEngine(initial, psychometric)
	if err != nil {
		return nil, fmt.Errorf("initial scoring policy: %w", err)
	}
	s := &PolicyStore{psychometric: psychometric, logger: logger}
	s.engine.Store(engine)
	return s, nil
}

// Engine returns the engine for the current policy.
func (s *PolicyStore) Engine() *service.ScoringEngine {
	return s.engine.Load()
}

// Policy returns the current policy.
func (s *PolicyStore) Policy() dto.PolicyResponse {
	p := s.Engine().Policy()
	return dto.PolicyResponse{Weights: p.Weights, Thresholds: p.Thresholds}
}

// UpdateWeights replaces the weights, keeping the current thresholds.
func (s *PolicyStore) UpdateWeights(ctx context.Context, req dto.UpdateWeightsRequest) (dto.PolicyResponse, error) {
	return s.update(ctx, req.UpdatedBy, func(p service.ScoringPolicy) service.ScoringPolicy {
		p.Weights = req.Weights
		return p
	})
}

// UpdateThresholds replaces the grade thresholds, keeping the current weights.
func (s *PolicyStore) UpdateThresholds(ctx context.Context, req dto.UpdateThresholdsRequest) (dto.PolicyResponse, error) {
	return s.update(ctx, req.UpdatedBy, func(p service.ScoringPolicy) service.ScoringPolicy {
		p.Thresholds = req.Thresholds
		return p
	})
}

func (s *PolicyStore) update(
	ctx context.Context,
	updatedBy string,
	apply func(service.ScoringPolicy) service.ScoringPolicy,
) (dto.PolicyResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := apply(s.Engine().Policy())
	engine, err := service.NewScoringEngine(next, s.psychometric)
	if err != nil {
		return dto.PolicyResponse{}, err
	}
	s.engine.Store(engine)

	s.logger.InfoContext(ctx, "scoring policy updated",
		"updated_by", updatedBy,
		"weights", next.Weights,
		"grade_thresholds", next.Thresholds,
	)
	return dto.PolicyResponse{Weights: next.Weights, Thresholds: next.Thresholds}, nil
}
