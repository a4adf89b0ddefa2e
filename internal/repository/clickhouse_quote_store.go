package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"FuelPilot/internal/domain/models"
	pkgch "FuelPilot/pkg/clickhouse"
)

// CHQuoteStore keeps intraday competitor quotes in ClickHouse.
type CHQuoteStore struct {
	db *sql.DB
}

func NewCHQuoteStore(ch *pkgch.Client) *CHQuoteStore {
	return &CHQuoteStore{db: ch.DB()}
}

func (s *CHQuoteStore) Store(ctx context.Context, q *models.Quote) error {
	const stmt = `INSERT INTO fuelpilot.competitor_quotes (product, source, ts, price) VALUES (?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, stmt, q.Product, q.Source, time.Unix(q.Timestamp, 0), q.Price)
	if err != nil {
		return fmt.Errorf("store quote: %w", err)
	}
	return nil
}

func (s *CHQuoteStore) StoreBatch(ctx context.Context, qs []*models.Quote) error {
	if len(qs) == 0 {
		return nil
	}
	// Multi-row VALUES insert to keep round-trips down.
	const chunkSize = 2000
	for start := 0; start < len(qs); start += chunkSize {
		end := start + chunkSize
		if end > len(qs) {
			end = len(qs)
		}
		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*4)
		for _, q := range qs[start:end] {
			if q == nil || q.Source == "" || q.Timestamp == 0 {
				continue
			}
			values = append(values, "(?, ?, ?, ?)")
			args = append(args, q.Product, q.Source, time.Unix(q.Timestamp, 0), q.Price)
		}
		if len(values) == 0 {
			continue
		}
		stmt := fmt.Sprintf("INSERT INTO fuelpilot.competitor_quotes (product, source, ts, price) VALUES %s", strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, stmt, args...); err != nil {
			return fmt.Errorf("store quote batch: %w", err)
		}
	}
	return nil
}

// LatestBySource returns the freshest price per competitor source observed
// since the given time.
func (s *CHQuoteStore) LatestBySource(ctx context.Context, product string, since time.Time) (map[string]float64, error) {
	const q = `
        SELECT source, argMax(price, ts) AS price
        FROM fuelpilot.competitor_quotes
        WHERE product = ? AND ts >= ?
        GROUP BY source
    `
	rows, err := s.db.QueryContext(ctx, q, product, since)
	if err != nil {
		return nil, fmt.Errorf("latest quotes: %w", err)
	}
	defer rows.Close()

	out := make(map[string]float64)
	for rows.Next() {
		var source string
		var price float64
		if err := rows.Scan(&source, &price); err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		out[source] = price
	}
	return out, rows.Err()
}

func (s *CHQuoteStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *CHQuoteStore) Close() error {
	return nil // pool owned by pkg client
}
