package demand

import (
	"context"
	"fmt"
	"time"

	"FuelPilot/internal/domain/models"
	xhttp "FuelPilot/pkg/http"
)

// HTTPModel scores candidates against an external model service, typically
// the Python scoring sidecar that owns the trained estimator.
type HTTPModel struct {
	baseURL  string
	attempts int
	client   *xhttp.Client
}

type predictRequest struct {
	Rows []map[string]float64 `json:"rows"`
}

type predictResponse struct {
	Volumes []float64 `json:"volumes"`
}

// NewHTTPModel builds a client for the external scoring service. attempts
// below 2 disables retries.
func NewHTTPModel(baseURL string, timeout time.Duration, attempts int) *HTTPModel {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &HTTPModel{
		baseURL:  baseURL,
		attempts: attempts,
		client:   xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

// Predict posts the flattened feature rows to /predict and returns the
// predicted volumes. Transient failures are retried with linear backoff.
func (m *HTTPModel) Predict(ctx context.Context, vectors []models.CandidateFeatureVector) ([]float64, error) {
	if m.baseURL == "" {
		return nil, fmt.Errorf("model service url not configured")
	}

	req := predictRequest{Rows: make([]map[string]float64, len(vectors))}
	for i, v := range vectors {
		req.Rows[i] = v.FeatureMap()
	}

	var resp predictResponse
	if err := m.postJSON(ctx, "/predict", req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Volumes) != len(vectors) {
		return nil, fmt.Errorf("model service returned %d volumes for %d rows", len(resp.Volumes), len(vectors))
	}
	return resp.Volumes, nil
}

func (m *HTTPModel) postJSON(ctx context.Context, path string, payload interface{}, dest interface{}) error {
	var err error
	attempts := m.attempts
	if attempts < 1 {
		attempts = 1
	}
	for i := 1; i <= attempts; i++ {
		err = m.client.SendAndParse(ctx, &xhttp.RequestOptions{
			Method: xhttp.MethodPost,
			URL:    m.baseURL + path,
			Headers: map[string]string{
				"Content-Type": "application/json",
			},
			Body: payload,
		}, dest)
		if err == nil {
			return nil
		}
		if i == attempts {
			break
		}
		select {
		case <-time.After(time.Duration(i) * 50 * time.Millisecond):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("post %s: %w", path, err)
}
