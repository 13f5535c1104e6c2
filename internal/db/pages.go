package db

import (
	"context"
	"fmt"
	"time"

	"github.com/j-veylop/spicegold-dashboard-tui/internal/models"
)

// InsertPageTotals records the per-page totals of a traffic report.
func (db *DB) InsertPageTotals(report *models.TrafficReport) error {
	if report.IsEmpty() {
		return nil
	}

	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(context.Background(), `
		INSERT INTO page_totals (page, total_users, new_users, range_label, fetched_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare page insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	fetchedAt := formatTime(report.FetchedAt)
	label := report.Range.String()
	for _, p := range report.Pages {
		if _, err := stmt.ExecContext(context.Background(), p.Page, p.TotalUsers, p.NewUsers, label, fetchedAt); err != nil {
			return fmt.Errorf("failed to insert page totals for %s: %w", p.Page, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit page totals: %w", err)
	}
	return nil
}

// PageTrend returns the recorded totals of one page since a time, oldest first.
func (db *DB) PageTrend(page string, since time.Time) ([]models.PageTrendPoint, error) {
	trends, err := db.pageTrends("AND page = ?", since, page)
	if err != nil {
		return nil, err
	}
	return trends[page], nil
}

// PageTrends returns the recorded totals of every page since a time.
func (db *DB) PageTrends(since time.Time) (map[string][]models.PageTrendPoint, error) {
	return db.pageTrends("", since)
}

func (db *DB) pageTrends(filter string, since time.Time, args ...any) (map[string][]models.PageTrendPoint, error) {
	query := `
		SELECT page, fetched_at, range_label, total_users, new_users
		FROM page_totals
		WHERE 1 = 1 ` + sqlSinceClause + ` ` + filter + `
		ORDER BY fetched_at ASC, id ASC
	`

	rows, err := db.QueryContext(context.Background(), query, append([]any{sinceArg(since)}, args...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query page trend: %w", err)
	}
	defer func() { _ = rows.Close() }()

	trends := make(map[string][]models.PageTrendPoint)
	for rows.Next() {
		var page, fetchedAt string
		var p models.PageTrendPoint
		if err := rows.Scan(&page, &fetchedAt, &p.Range, &p.TotalUsers, &p.NewUsers); err != nil {
			return nil, fmt.Errorf("failed to scan page trend: %w", err)
		}
		t, ok := parseTimeString(fetchedAt)
		if !ok {
			continue
		}
		p.Time = t
		trends[page] = append(trends[page], p)
	}
	return trends, rows.Err()
}

// Prune deletes history recorded before a time and returns the number of
// rows removed.
func (db *DB) Prune(olderThan time.Time) (int64, error) {
	cutoff := olderThan.UTC().Format(timeLayout)

	var removed int64
	for _, table := range []string{"range_snapshots", "page_totals"} {
		res, err := db.ExecContext(context.Background(),
			"DELETE FROM "+table+" WHERE fetched_at < ?", cutoff)
		if err != nil {
			return removed, fmt.Errorf("failed to prune %s: %w", table, err)
		}
		n, err := res.RowsAffected()
		if err == nil {
			removed += n
		}
	}
	return removed, nil
}
