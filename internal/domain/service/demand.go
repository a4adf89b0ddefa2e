package service

import (
	"context"

	"FuelPilot/internal/domain/models"
)

// DemandModel predicts sales volume for candidate feature vectors.
// Implementations return one prediction per input vector, in input order, and
// must be safe for concurrent read-only use. The engine treats the model as
// opaque: training and persistence happen elsewhere.
type DemandModel interface {
	Predict(ctx context.Context, vectors []models.CandidateFeatureVector) ([]float64, error)
}
