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

// CHHistoryStore keeps the append-only daily price history in ClickHouse.
type CHHistoryStore struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewCHHistoryStore(ch *pkgch.Client) *CHHistoryStore {
	return &CHHistoryStore{db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHHistoryStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHHistoryStore) Read(ctx context.Context, product string) ([]models.HistoricalRecord, error) {
	start := time.Now()
	const q = `
        SELECT day, price, cost, competitors, volume
        FROM fuelpilot.price_history FINAL
        WHERE product = ?
        ORDER BY day ASC
    `
	rows, err := s.db.QueryContext(ctx, q, product)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse history read error",
				applogger.String("product", product),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("read history: %w", err)
	}
	defer rows.Close()

	out := make([]models.HistoricalRecord, 0, 512)
	for rows.Next() {
		var r models.HistoricalRecord
		if err := rows.Scan(&r.Date, &r.Price, &r.Cost, &r.Competitors, &r.Volume); err != nil {
			return nil, fmt.Errorf("scan history record: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Debug("clickhouse history read ok",
			applogger.String("product", product),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (s *CHHistoryStore) Append(ctx context.Context, product string, rec models.HistoricalRecord) error {
	const q = `
        INSERT INTO fuelpilot.price_history (product, day, price, cost, competitors, volume)
        VALUES (?, ?, ?, ?, ?, ?)
    `
	competitors := rec.Competitors
	if competitors == nil {
		competitors = map[string]float64{}
	}
	if _, err := s.db.ExecContext(ctx, q, product, rec.Date, rec.Price, rec.Cost, competitors, rec.Volume); err != nil {
		if s.l != nil {
			s.l.Error("clickhouse history append error",
				applogger.String("product", product),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}
