package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidWeights is returned when component weights are negative or do
	// not sum to 100.
	ErrInvalidWeights = errors.New("invalid scoring weights")
	// ErrInvalidThresholds is returned when grade thresholds are not strictly
	// descending.
	ErrInvalidThresholds = errors.New("invalid grade thresholds")
	// ErrInvalidPsychometric is wrapped by ValidationError.
	ErrInvalidPsychometric = errors.New("invalid psychometric responses")
)

// Scoring stages named in a ComputationError.
const (
	StageDataPoints         = "data_points"
	StageCreditRatios       = "credit_ratios"
	StageBorrowerAttributes = "borrower_attributes"
	StagePsychometric       = "psychometric"
	StageCombine            = "combine"
	StageFlags              = "flags"
	StageFinalize           = "finalize"
)

// ComputationError reports an arithmetic failure inside one scoring stage.
// No partial result accompanies it.
type ComputationError struct {
	Stage         string
	ApplicationID string
	Err           error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("scoring %s: stage %s: %v", e.ApplicationID, e.Stage, e.Err)
}

func (e *ComputationError) Unwrap() error { return e.Err }

// ValidationError carries the problems found in a psychometric response set.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidPsychometric, strings.Join(e.Problems, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrInvalidPsychometric }
