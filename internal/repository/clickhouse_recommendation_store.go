package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"FuelPilot/internal/domain/models"
	pkgch "FuelPilot/pkg/clickhouse"
	applogger "FuelPilot/pkg/logger"
)

// CHRecommendationStore persists pricing runs in ClickHouse for audit and
// replay. The full scored candidate grid rides along as JSON.
type CHRecommendationStore struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewCHRecommendationStore(ch *pkgch.Client) *CHRecommendationStore {
	return &CHRecommendationStore{db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHRecommendationStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHRecommendationStore) Save(ctx context.Context, rec *models.Recommendation, candidates []models.CandidateResult) error {
	day, err := time.Parse("2006-01-02", rec.Date)
	if err != nil {
		return fmt.Errorf("parse recommendation date: %w", err)
	}
	blob, err := json.Marshal(candidates)
	if err != nil {
		return fmt.Errorf("marshal candidates: %w", err)
	}
	reason := ""
	if rec.ViolationReason != nil {
		reason = *rec.ViolationReason
	}
	applied := uint8(0)
	if rec.GuardrailApplied {
		applied = 1
	}

	const q = `
        INSERT INTO fuelpilot.recommendations
            (product, day, recommended_price, expected_volume, expected_profit,
             guardrail_applied, violation_reason, candidates_tried, candidates)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	if _, err := s.db.ExecContext(ctx, q,
		rec.Product, day, rec.RecommendedPrice, rec.ExpectedVolume, rec.ExpectedProfit,
		applied, reason, uint32(rec.CandidatesTried), string(blob),
	); err != nil {
		if s.l != nil {
			s.l.Error("clickhouse recommendation save error",
				applogger.String("product", rec.Product),
				applogger.String("day", rec.Date),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("save recommendation: %w", err)
	}
	return nil
}

func (s *CHRecommendationStore) Get(ctx context.Context, product, date string) (*models.Recommendation, error) {
	const q = `
        SELECT day, recommended_price, expected_volume, expected_profit,
               guardrail_applied, violation_reason, candidates_tried
        FROM fuelpilot.recommendations FINAL
        WHERE product = ? AND day = ?
        LIMIT 1
    `
	row := s.db.QueryRowContext(ctx, q, product, date)

	var (
		day     time.Time
		rec     models.Recommendation
		applied uint8
		reason  string
		tried   uint32
	)
	err := row.Scan(&day, &rec.RecommendedPrice, &rec.ExpectedVolume, &rec.ExpectedProfit, &applied, &reason, &tried)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get recommendation: %w", err)
	}

	rec.Product = product
	rec.Date = day.Format("2006-01-02")
	rec.GuardrailApplied = applied == 1
	rec.CandidatesTried = int(tried)
	if reason != "" {
		rec.ViolationReason = &reason
	}
	return &rec, nil
}
