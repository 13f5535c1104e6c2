package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/j-veylop/spicegold-dashboard-tui/internal/logger"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/models"
)

var timeFormats = []string{
	timeLayout,
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05 -0700 MST",
	"2006-01-02 15:04:05 +0000 UTC",
}

func parseTimeString(s string) (time.Time, bool) {
	for _, format := range timeFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(timeLayout)
}

// InsertSnapshot records a normalized snapshot. Empty snapshots are skipped.
func (db *DB) InsertSnapshot(snap *models.Snapshot) error {
	if snap.IsEmpty() {
		return nil
	}

	buckets, err := json.Marshal(snap.Buckets)
	if err != nil {
		return fmt.Errorf("failed to encode buckets: %w", err)
	}

	query := `
		INSERT INTO range_snapshots (period, shape, total_users, buckets_json, fetched_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err = db.ExecContext(context.Background(), query,
		snap.Period.String(),
		snap.Shape.String(),
		snap.TotalUsers,
		string(buckets),
		formatTime(snap.FetchedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}
	return nil
}

// LatestSnapshot returns the most recent snapshot of a period, or nil when
// none has been recorded.
func (db *DB) LatestSnapshot(period models.Period) (*models.Snapshot, error) {
	query := `
		SELECT shape, total_users, buckets_json, fetched_at
		FROM range_snapshots
		WHERE period = ?
		ORDER BY fetched_at DESC, id DESC
		LIMIT 1
	`

	var shape, buckets, fetchedAt string
	snap := &models.Snapshot{Period: period}
	err := db.QueryRowContext(context.Background(), query, period.String()).
		Scan(&shape, &snap.TotalUsers, &buckets, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest snapshot: %w", err)
	}

	if err := json.Unmarshal([]byte(buckets), &snap.Buckets); err != nil {
		return nil, fmt.Errorf("failed to decode buckets: %w", err)
	}
	if snap.Buckets == nil {
		snap.Buckets = []models.RangeBucket{}
	}
	snap.Shape = models.ParseShape(shape)
	if t, ok := parseTimeString(fetchedAt); ok {
		snap.FetchedAt = t
	}
	return snap, nil
}

// SnapshotTrend returns the recorded totals of a period since a time, oldest
// first. A zero since returns the full history.
func (db *DB) SnapshotTrend(period models.Period, since time.Time) ([]models.SnapshotPoint, error) {
	query := `
		SELECT fetched_at, total_users, shape
		FROM range_snapshots
		WHERE period = ? ` + sqlSinceClause + `
		ORDER BY fetched_at ASC, id ASC
	`

	rows, err := db.QueryContext(context.Background(), query, period.String(), sinceArg(since))
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot trend: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var points []models.SnapshotPoint
	for rows.Next() {
		var p models.SnapshotPoint
		var fetchedAt string
		if err := rows.Scan(&fetchedAt, &p.TotalUsers, &p.Shape); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot point: %w", err)
		}
		t, ok := parseTimeString(fetchedAt)
		if !ok {
			logger.Warn("skipping snapshot with unreadable time", "fetched_at", fetchedAt)
			continue
		}
		p.Time = t
		points = append(points, p)
	}
	return points, rows.Err()
}

// LoadHistory gathers the snapshot and page history shown by the history view.
func (db *DB) LoadHistory(period models.Period, tr models.TimeRange, now time.Time) (*models.HistoryStats, error) {
	since := tr.Since(now)

	points, err := db.SnapshotTrend(period, since)
	if err != nil {
		return nil, err
	}
	pages, err := db.PageTrends(since)
	if err != nil {
		return nil, err
	}

	stats := &models.HistoryStats{
		Points:    points,
		Pages:     pages,
		Period:    period,
		TimeRange: tr,
	}
	if len(points) > 0 {
		stats.FirstDataPoint = points[0].Time
		stats.LastDataPoint = points[len(points)-1].Time
	}
	return stats, nil
}

func sinceArg(since time.Time) string {
	if since.IsZero() {
		return ""
	}
	return since.UTC().Format(timeLayout)
}
