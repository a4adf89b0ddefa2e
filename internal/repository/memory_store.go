package repository

import (
	"context"
	"sort"
	"sync"

	"FuelPilot/internal/domain/models"
)

// MemoryHistoryStore is an in-memory HistoryStore for tests and local runs.
type MemoryHistoryStore struct {
	mu      sync.RWMutex
	records map[string][]models.HistoricalRecord
}

func NewMemoryHistoryStore() *MemoryHistoryStore {
	return &MemoryHistoryStore{records: make(map[string][]models.HistoricalRecord)}
}

func (s *MemoryHistoryStore) Read(_ context.Context, product string) ([]models.HistoricalRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src := s.records[product]
	out := make([]models.HistoricalRecord, len(src))
	copy(out, src)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *MemoryHistoryStore) Append(_ context.Context, product string, rec models.HistoricalRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[product] = append(s.records[product], rec)
	return nil
}

// MemoryRecommendationStore keeps recommendations keyed by product and day.
type MemoryRecommendationStore struct {
	mu   sync.RWMutex
	recs map[string]*models.Recommendation
}

func NewMemoryRecommendationStore() *MemoryRecommendationStore {
	return &MemoryRecommendationStore{recs: make(map[string]*models.Recommendation)}
}

func (s *MemoryRecommendationStore) Save(_ context.Context, rec *models.Recommendation, _ []models.CandidateResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *rec
	s.recs[rec.Product+"|"+rec.Date] = &cp
	return nil
}

func (s *MemoryRecommendationStore) Get(_ context.Context, product, date string) (*models.Recommendation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.recs[product+"|"+date]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}
