package demand

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"FuelPilot/internal/domain/models"
)

// CoeffsModel is a linear demand model scored in-process from exported
// regression coefficients. Features absent from the vector contribute zero,
// matching the training-side column fill.
type CoeffsModel struct {
	intercept float64
	coeffs    map[string]float64
}

type coeffsFile struct {
	Intercept    float64            `json:"intercept"`
	Coefficients map[string]float64 `json:"coefficients"`
}

// LoadCoeffsModel reads an exported coefficients file. Call once at startup;
// the returned model is immutable and safe for concurrent use.
func LoadCoeffsModel(path string) (*CoeffsModel, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model file: %w", err)
	}
	return ParseCoeffsModel(raw)
}

// ParseCoeffsModel builds a model from raw exported JSON.
func ParseCoeffsModel(raw []byte) (*CoeffsModel, error) {
	var f coeffsFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse model file: %w", err)
	}
	if len(f.Coefficients) == 0 {
		return nil, fmt.Errorf("model file has no coefficients")
	}
	return &CoeffsModel{intercept: f.Intercept, coeffs: f.Coefficients}, nil
}

// Predict scores each vector as intercept + sum(coef * feature), clamped to
// non-negative volume.
func (m *CoeffsModel) Predict(_ context.Context, vectors []models.CandidateFeatureVector) ([]float64, error) {
	out := make([]float64, len(vectors))
	for i, v := range vectors {
		features := v.FeatureMap()
		sum := m.intercept
		for name, coef := range m.coeffs {
			sum += coef * features[name]
		}
		if sum < 0 {
			sum = 0
		}
		out[i] = sum
	}
	return out, nil
}
