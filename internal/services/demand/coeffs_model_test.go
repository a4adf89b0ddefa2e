package demand

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FuelPilot/internal/domain/models"
)

func TestParseCoeffsModel(t *testing.T) {
	raw := []byte(`{"intercept": 5000, "coefficients": {"price": -30, "is_weekend": 200}}`)
	m, err := ParseCoeffsModel(raw)
	require.NoError(t, err)

	vectors := []models.CandidateFeatureVector{
		{Price: 100},
		{Price: 100, BaselineFeatures: models.BaselineFeatures{IsWeekend: true}},
	}
	vols, err := m.Predict(context.Background(), vectors)
	require.NoError(t, err)
	require.Len(t, vols, 2)
	assert.InDelta(t, 2000, vols[0], 1e-9)
	assert.InDelta(t, 2200, vols[1], 1e-9)
}

func TestParseCoeffsModelInvalid(t *testing.T) {
	_, err := ParseCoeffsModel([]byte(`not json`))
	assert.Error(t, err)

	_, err = ParseCoeffsModel([]byte(`{"intercept": 1}`))
	assert.Error(t, err)
}

func TestCoeffsModelClampsNegative(t *testing.T) {
	m, err := ParseCoeffsModel([]byte(`{"intercept": 10, "coefficients": {"price": -30}}`))
	require.NoError(t, err)

	vols, err := m.Predict(context.Background(), []models.CandidateFeatureVector{{Price: 100}})
	require.NoError(t, err)
	assert.Equal(t, 0.0, vols[0])
}

func TestCoeffsModelIgnoresUnknownFeatures(t *testing.T) {
	m, err := ParseCoeffsModel([]byte(`{"intercept": 100, "coefficients": {"comp_mean": 2}}`))
	require.NoError(t, err)

	// No competitor stats present, so comp_mean reads as zero.
	vols, err := m.Predict(context.Background(), []models.CandidateFeatureVector{{Price: 50}})
	require.NoError(t, err)
	assert.Equal(t, 100.0, vols[0])
}

func TestHTTPModelPredict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/predict", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"volumes": [1500, 1400]}`))
	}))
	defer srv.Close()

	m := NewHTTPModel(srv.URL, time.Second, 1)
	vols, err := m.Predict(context.Background(), make([]models.CandidateFeatureVector, 2))
	require.NoError(t, err)
	assert.Equal(t, []float64{1500, 1400}, vols)
}

func TestHTTPModelLengthMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"volumes": [1500]}`))
	}))
	defer srv.Close()

	m := NewHTTPModel(srv.URL, time.Second, 1)
	_, err := m.Predict(context.Background(), make([]models.CandidateFeatureVector, 3))
	assert.Error(t, err)
}

func TestHTTPModelRetries(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"volumes": [1200]}`))
	}))
	defer srv.Close()

	m := NewHTTPModel(srv.URL, time.Second, 3)
	vols, err := m.Predict(context.Background(), make([]models.CandidateFeatureVector, 1))
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []float64{1200}, vols)
}
