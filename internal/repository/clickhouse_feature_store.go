package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"FuelPilot/internal/domain/models"
	pkgch "FuelPilot/pkg/clickhouse"
	applogger "FuelPilot/pkg/logger"
)

// CHFeatureStore writes derived training feature rows to ClickHouse. The
// table uses a ReplacingMergeTree keyed by (product, day), so re-running a
// rebuild converges to the latest derivation without explicit deletes.
type CHFeatureStore struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewCHFeatureStore(ch *pkgch.Client) *CHFeatureStore {
	return &CHFeatureStore{db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHFeatureStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHFeatureStore) ReplaceAll(ctx context.Context, product string, rows []models.TrainingFeatureRow) error {
	if len(rows) == 0 {
		return nil
	}
	start := time.Now()
	const q = `
        INSERT INTO fuelpilot.training_features
            (product, day, price, cost, volume,
             comp_mean, comp_min, comp_max, price_diff, price_gap_pct,
             vol_ma7, vol_ma30, price_ma7, vol_lag1, vol_lag7, price_lag1,
             dayofweek, is_weekend, month, margin, margin_pct)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin feature insert: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare feature insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		weekend := uint8(0)
		if r.IsWeekend {
			weekend = 1
		}
		if _, err := stmt.ExecContext(ctx,
			product, r.Date, r.Price, r.Cost, r.Volume,
			r.CompMean, r.CompMin, r.CompMax, r.PriceDiff, r.PriceGapPct,
			r.VolMA7, r.VolMA30, r.PriceMA7, r.VolLag1, r.VolLag7, r.PriceLag1,
			uint8(r.DayOfWeek), weekend, uint8(r.Month), r.Margin, r.MarginPct,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert feature row: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit feature insert: %w", err)
	}
	if s.l != nil {
		s.l.Info("training features rebuilt",
			applogger.String("product", product),
			applogger.Int("rows", len(rows)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return nil
}
