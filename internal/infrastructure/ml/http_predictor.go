package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/AlifSrSE/css/internal/domain/model"
	"github.com/AlifSrSE/css/internal/domain/port"
	"github.com/AlifSrSE/css/internal/infrastructure/config"
)

// Compile-time interface check.
var _ port.DefaultPredictor = (*HTTPPredictor)(nil)

// HTTPPredictor calls an external default-probability model over HTTP.
// Transport errors and 5xx responses are retried with exponential backoff;
// 4xx responses fail immediately.
type HTTPPredictor struct {
	endpoint   string
	client     *http.Client
	maxRetries uint64
	logger     *slog.Logger
}

// NewHTTPPredictor creates a predictor posting to <cfg.URL>/predict.
func NewHTTPPredictor(cfg config.PredictorConfig, logger *slog.Logger) *HTTPPredictor {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return &HTTPPredictor{
		endpoint:   strings.TrimRight(cfg.URL, "/") + "/predict",
		client:     &http.Client{Timeout: timeout},
		maxRetries: uint64(retries),
		logger:     logger,
	}
}

type predictRequest struct {
	Application model.ApplicationData `json:"application"`
}

type predictResponse struct {
	DefaultProbability float64 `json:"default_probability"`
	Confidence         float64 `json:"confidence"`
	ModelVersion       string  `json:"model_version"`
}

// Predict sends the application record and returns the model's estimate.
func (p *HTTPPredictor) Predict(ctx context.Context, app model.ApplicationData) (port.Prediction, error) {
	body, err := json.Marshal(predictRequest{Application: app})
	if err != nil {
		return port.Prediction{}, fmt.Errorf("marshal predict request: %w", err)
	}

	var out predictResponse
	attempt := 0
	op := func() error {
		attempt++
		resp, err := p.post(ctx, body)
		if err != nil {
			return err
		}
		out = resp
		return nil
	}
	notify := func(err error, wait time.Duration) {
		p.logger.DebugContext(ctx, "predictor call failed, retrying",
			"attempt", attempt, "wait", wait, "error", err)
	}

	b := backoff.WithContext(backoff.WithMaxRetries(newBackoff(), p.maxRetries), ctx)
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		return port.Prediction{}, fmt.Errorf("predictor: %w", err)
	}

	if out.DefaultProbability < 0 || out.DefaultProbability > 1 {
		return port.Prediction{}, fmt.Errorf("predictor: probability %v out of range", out.DefaultProbability)
	}
	return port.Prediction{
		Probability:  out.DefaultProbability,
		Confidence:   out.Confidence,
		ModelVersion: out.ModelVersion,
	}, nil
}

func (p *HTTPPredictor) post(ctx context.Context, body []byte) (predictResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return predictResponse{}, backoff.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return predictResponse{}, backoff.Permanent(err)
		}
		return predictResponse{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return predictResponse{}, fmt.Errorf("read response body: %w", err)
	}

	switch {
	case resp.StatusCode >= 500:
		return predictResponse{}, fmt.Errorf("predictor error (status %d): %s", resp.StatusCode, string(raw))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return predictResponse{}, backoff.Permanent(
			fmt.Errorf("predictor rejected request (status %d): %s", resp.StatusCode, string(raw)))
	}

	var out predictResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return predictResponse{}, backoff.Permanent(fmt.Errorf("parse response: %w", err))
	}
	return out, nil
}

func newBackoff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	b.MaxElapsedTime = 10 * time.Second
	return b
}
