package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/j-veylop/spicegold-dashboard-tui/internal/logger"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/models"
)

// ErrNothingToExport is returned when there are no rows to write.
// No file is created.
var ErrNothingToExport = errors.New("nothing to export")

// RangesFilename returns the file name of a distribution export.
func RangesFilename(period models.Period, now time.Time) string {
	return fmt.Sprintf("spicegold_analytics_%s_%s.csv", period, now.Format(time.DateOnly))
}

// TrafficFilename returns the file name of a page traffic export.
func TrafficFilename(rng models.DateRange, now time.Time) string {
	if rng.From != "" && rng.To != "" && rng.From != rng.To {
		return fmt.Sprintf("page_traffic_%s_%s_%s.csv", rng.From, rng.To, now.Format(time.DateOnly))
	}
	return fmt.Sprintf("page_traffic_%s_%s.csv", rng, now.Format(time.DateOnly))
}

// LeaderboardFilename returns the file name of a leaderboard export.
func LeaderboardFilename(now time.Time) string {
	return fmt.Sprintf("top_earners_%s.csv", now.Format(time.DateOnly))
}

// Exporter writes CSV exports into a directory.
type Exporter struct {
	dir string
	now func() time.Time
}

// New creates an exporter writing into dir.
func New(dir string) *Exporter {
	return &Exporter{dir: dir, now: time.Now}
}

// Dir returns the export directory.
func (e *Exporter) Dir() string {
	return e.dir
}

// ExportRanges writes the distribution of snap and returns the file path.
func (e *Exporter) ExportRanges(snap *models.Snapshot, opts Options) (string, error) {
	if len(rangeRows(snap, opts)) == 0 {
		return "", ErrNothingToExport
	}
	name := RangesFilename(snap.Period, e.now())
	return e.write(name, func(w io.Writer) error {
		return WriteRanges(w, snap, opts)
	})
}

// ExportTraffic writes a page traffic report and returns the file path.
func (e *Exporter) ExportTraffic(report *models.TrafficReport, opts Options) (string, error) {
	if len(trafficRows(report, opts)) == 0 {
		return "", ErrNothingToExport
	}
	name := TrafficFilename(report.Range, e.now())
	return e.write(name, func(w io.Writer) error {
		return WriteTraffic(w, report, opts)
	})
}

// ExportLeaderboard writes the earners and returns the file path.
func (e *Exporter) ExportLeaderboard(earners []models.TopEarner) (string, error) {
	if len(earners) == 0 {
		return "", ErrNothingToExport
	}
	name := LeaderboardFilename(e.now())
	return e.write(name, func(w io.Writer) error {
		return WriteLeaderboard(w, earners)
	})
}

// write renders into a temporary file and renames it into place, so a
// failed export never leaves a partial file behind.
func (e *Exporter) write(name string, render func(io.Writer) error) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	tmp, err := os.CreateTemp(e.dir, "."+name+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if _, statErr := os.Stat(tmpPath); statErr == nil {
			if rmErr := os.Remove(tmpPath); rmErr != nil {
				logger.Error("failed to remove temp export", "path", tmpPath, "error", rmErr)
			}
		}
	}()

	if err := render(tmp); err != nil {
		_ = tmp.Close()
		return "", err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("failed to sync export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close export: %w", err)
	}

	path := filepath.Join(e.dir, name)
	if err := os.Rename(tmpPath, path); err != nil {
		return "", fmt.Errorf("failed to move export into place: %w", err)
	}
	logger.Info("exported csv", "path", path)
	return path, nil
}
