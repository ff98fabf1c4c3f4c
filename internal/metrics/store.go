package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cookdna/internal/database"
)

// ExecutionMetric records one run of a personalisation operation.
type ExecutionMetric struct {
	Operation string
	// Items is the operation's output size: feed cards, planned days, ingested recipes.
	Items     int
	LatencyMS int64
	Timestamp time.Time
}

// Store handles persistence of metrics to SQLite.
type Store struct {
	db *sql.DB
}

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record saves a metric to the database.
func (s *Store) Record(ctx context.Context, m ExecutionMetric) error {
	ts := m.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO execution_metrics (operation, items, latency_ms, timestamp) VALUES (?, ?, ?, ?)`,
		m.Operation, m.Items, m.LatencyMS, database.FormatTime(ts))
	if err != nil {
		return fmt.Errorf("failed to record metric for %s: %w", m.Operation, err)
	}
	return nil
}

// Track records the operation in SQLite and in the Prometheus collectors.
func (s *Store) Track(ctx context.Context, operation string, items int, started time.Time) error {
	elapsed := time.Since(started)
	ObserveOperation(operation, items, elapsed)
	return s.Record(ctx, ExecutionMetric{
		Operation: operation,
		Items:     items,
		LatencyMS: elapsed.Milliseconds(),
	})
}

// DailyUsage represents operation totals for a single day.
type DailyUsage struct {
	Date           string
	Operation      string
	TotalItems     int
	TotalExecution int
	AvgLatencyMS   float64
}

// GetDailyUsage retrieves usage for the last N days, newest day first.
func (s *Store) GetDailyUsage(ctx context.Context, days int) ([]DailyUsage, error) {
	since := database.FormatTime(time.Now().AddDate(0, 0, -days))
	rows, err := s.db.QueryContext(ctx, `
		SELECT substr(timestamp, 1, 10) AS day, operation, SUM(items), COUNT(*), AVG(latency_ms)
		FROM execution_metrics
		WHERE timestamp >= ?
		GROUP BY day, operation
		ORDER BY day DESC, operation`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily usage: %w", err)
	}
	defer rows.Close()

	var results []DailyUsage
	for rows.Next() {
		var u DailyUsage
		if err := rows.Scan(&u.Date, &u.Operation, &u.TotalItems, &u.TotalExecution, &u.AvgLatencyMS); err != nil {
			return nil, fmt.Errorf("failed to scan daily usage: %w", err)
		}
		results = append(results, u)
	}
	return results, rows.Err()
}

// Cleanup removes records older than the specified number of days.
func (s *Store) Cleanup(ctx context.Context, olderThanDays int) (int64, error) {
	threshold := database.FormatTime(time.Now().AddDate(0, 0, -olderThanDays))
	res, err := s.db.ExecContext(ctx, `DELETE FROM execution_metrics WHERE timestamp < ?`, threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up metrics: %w", err)
	}
	return res.RowsAffected()
}
