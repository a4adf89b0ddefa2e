package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"FuelPilot/internal/domain/models"
)

// CSVHistoryStore reads and appends daily history in the flat CSV layout
// used for offline training: date, price, cost, volume, plus one column per
// competitor whose name starts with "comp". Single-file stores are per
// product; the product argument is ignored.
type CSVHistoryStore struct {
	path string
	mu   sync.Mutex
}

func NewCSVHistoryStore(path string) *CSVHistoryStore {
	return &CSVHistoryStore{path: path}
}

func (s *CSVHistoryStore) Read(_ context.Context, _ string) ([]models.HistoricalRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open history csv: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read history csv: %w", err)
	}
	if len(rows) < 1 {
		return nil, nil
	}

	header := rows[0]
	col := make(map[string]int, len(header))
	var compCols []int
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		col[key] = i
		if strings.HasPrefix(key, "comp") {
			compCols = append(compCols, i)
		}
	}
	for _, required := range []string{"date", "price", "cost", "volume"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("history csv missing column %q", required)
		}
	}

	out := make([]models.HistoricalRecord, 0, len(rows)-1)
	for lineNo, row := range rows[1:] {
		rec, err := parseCSVRecord(row, col, compCols, header)
		if err != nil {
			return nil, fmt.Errorf("history csv line %d: %w", lineNo+2, err)
		}
		out = append(out, rec)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *CSVHistoryStore) Append(_ context.Context, _ string, rec models.HistoricalRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	header, err := s.ensureHeader(rec)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open history csv: %w", err)
	}
	defer f.Close()

	row := make([]string, len(header))
	for i, name := range header {
		key := strings.ToLower(name)
		switch key {
		case "date":
			row[i] = rec.Date.Format("2006-01-02")
		case "price":
			row[i] = formatFloat(rec.Price)
		case "cost":
			row[i] = formatFloat(rec.Cost)
		case "volume":
			row[i] = formatFloat(rec.Volume)
		default:
			if v, ok := rec.Competitors[name]; ok {
				row[i] = formatFloat(v)
			}
		}
	}

	w := csv.NewWriter(f)
	if err := w.Write(row); err != nil {
		return fmt.Errorf("append history csv: %w", err)
	}
	w.Flush()
	return w.Error()
}

// ensureHeader creates the file with a header derived from the record when
// it does not exist yet, and returns the header either way.
func (s *CSVHistoryStore) ensureHeader(rec models.HistoricalRecord) ([]string, error) {
	f, err := os.Open(s.path)
	if err == nil {
		defer f.Close()
		header, err := csv.NewReader(f).Read()
		if err != nil {
			return nil, fmt.Errorf("read history csv header: %w", err)
		}
		return header, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("open history csv: %w", err)
	}

	header := []string{"date", "price", "cost", "volume"}
	comps := make([]string, 0, len(rec.Competitors))
	for name := range rec.Competitors {
		comps = append(comps, name)
	}
	sort.Strings(comps)
	header = append(header, comps...)

	nf, err := os.Create(s.path)
	if err != nil {
		return nil, fmt.Errorf("create history csv: %w", err)
	}
	defer nf.Close()
	w := csv.NewWriter(nf)
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write history csv header: %w", err)
	}
	w.Flush()
	return header, w.Error()
}

func parseCSVRecord(row []string, col map[string]int, compCols []int, header []string) (models.HistoricalRecord, error) {
	var rec models.HistoricalRecord
	get := func(key string) string {
		i := col[key]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	date, err := time.Parse("2006-01-02", get("date"))
	if err != nil {
		return rec, fmt.Errorf("parse date: %w", err)
	}
	rec.Date = date
	if rec.Price, err = strconv.ParseFloat(get("price"), 64); err != nil {
		return rec, fmt.Errorf("parse price: %w", err)
	}
	if rec.Cost, err = strconv.ParseFloat(get("cost"), 64); err != nil {
		return rec, fmt.Errorf("parse cost: %w", err)
	}
	if rec.Volume, err = strconv.ParseFloat(get("volume"), 64); err != nil {
		return rec, fmt.Errorf("parse volume: %w", err)
	}

	for _, i := range compCols {
		if i >= len(row) {
			continue
		}
		raw := strings.TrimSpace(row[i])
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return rec, fmt.Errorf("parse %s: %w", header[i], err)
		}
		if rec.Competitors == nil {
			rec.Competitors = make(map[string]float64)
		}
		rec.Competitors[header[i]] = v
	}
	return rec, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
