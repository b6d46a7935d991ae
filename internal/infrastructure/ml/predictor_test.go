package ml_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlifSrSE/css/internal/domain/model"
	"github.com/AlifSrSE/css/internal/infrastructure/config"
	"github.com/AlifSrSE/css/internal/infrastructure/ml"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleData() model.ApplicationData {
	var d model.ApplicationData
	d.Business.BusinessType = "grocery_shop"
	d.Borrower.FullName = "Karim Uddin"
	return d
}

func newPredictor(url string, retries int) *ml.HTTPPredictor {
	return ml.NewHTTPPredictor(config.PredictorConfig{URL: url, Timeout: time.Second, MaxRetries: retries}, discardLogger())
}

func TestHTTPPredictor_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/predict", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body struct {
			Application model.ApplicationData `json:"application"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "grocery_shop", body.Application.Business.BusinessType)

		_, _ = w.Write([]byte(`{"default_probability":0.04,"confidence":0.91,"model_version":"gbm-7"}`))
	}))
	defer srv.Close()

	p, err := newPredictor(srv.URL+"/", 0).Predict(context.Background(), sampleData())

	require.NoError(t, err)
	assert.InDelta(t, 0.04, p.Probability, 1e-9)
	assert.InDelta(t, 0.91, p.Confidence, 1e-9)
	assert.Equal(t, "gbm-7", p.ModelVersion)
}

func TestHTTPPredictor_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "warming up", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"default_probability":0.3,"confidence":0.8,"model_version":"gbm-7"}`))
	}))
	defer srv.Close()

	p, err := newPredictor(srv.URL, 3).Predict(context.Background(), sampleData())

	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.InDelta(t, 0.3, p.Probability, 1e-9)
}

func TestHTTPPredictor_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newPredictor(srv.URL, 1).Predict(context.Background(), sampleData())

	assert.ErrorContains(t, err, "status 500")
	assert.Equal(t, int32(2), calls.Load())
}

func TestHTTPPredictor_ClientErrorIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "bad features", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	_, err := newPredictor(srv.URL, 5).Predict(context.Background(), sampleData())

	assert.ErrorContains(t, err, "predictor rejected request (status 422)")
	assert.Equal(t, int32(1), calls.Load())
}

func TestHTTPPredictor_InvalidResponses(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "malformed json", body: `{"default_probability":`, wantErr: "parse response"},
		{name: "probability above one", body: `{"default_probability":1.5,"confidence":0.9}`, wantErr: "out of range"},
		{name: "negative probability", body: `{"default_probability":-0.1,"confidence":0.9}`, wantErr: "out of range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newPredictor(srv.URL, 2).Predict(context.Background(), sampleData())
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestHTTPPredictor_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newPredictor(srv.URL, 10).Predict(ctx, sampleData())
	assert.Error(t, err)
}

func TestStubPredictor(t *testing.T) {
	p, err := ml.NewStubPredictor(discardLogger()).Predict(context.Background(), sampleData())

	require.NoError(t, err)
	assert.Equal(t, ml.StubModelVersion, p.ModelVersion)
	assert.Less(t, p.Confidence, 0.75)
}
