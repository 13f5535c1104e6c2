package export

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"

	"github.com/j-veylop/spicegold-dashboard-tui/internal/logger"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/models"
)

var cronParser = cron.NewParser(
	cron.SecondOptional |
		cron.Minute |
		cron.Hour |
		cron.Dom |
		cron.Month |
		cron.Dow |
		cron.Descriptor,
)

// SnapshotSource returns the snapshot to export.
type SnapshotSource func(ctx context.Context) (*models.Snapshot, error)

// Scheduler runs headless distribution exports on a cron schedule.
type Scheduler struct {
	cron     *cron.Cron
	exporter *Exporter
	source   SnapshotSource
	opts     Options
	done     chan string
}

// ValidateSchedule reports whether expr is a valid cron expression.
func ValidateSchedule(expr string) error {
	if _, err := cronParser.Parse(strings.TrimSpace(expr)); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}
	return nil
}

// NewScheduler creates a scheduler exporting the snapshot returned by source
// every time expr fires. It does not run until Start is called.
func NewScheduler(expr string, exporter *Exporter, source SnapshotSource, opts Options) (*Scheduler, error) {
	if err := ValidateSchedule(expr); err != nil {
		return nil, err
	}
	s := &Scheduler{
		cron:     cron.New(cron.WithParser(cronParser)),
		exporter: exporter,
		source:   source,
		opts:     opts,
		done:     make(chan string, 1),
	}
	if _, err := s.cron.AddFunc(strings.TrimSpace(expr), s.run); err != nil {
		return nil, fmt.Errorf("failed to schedule export: %w", err)
	}
	return s, nil
}

// Start begins running scheduled exports in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the schedule and waits for a running export to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// Completed delivers the path of every finished export. Paths are dropped
// when nobody is receiving.
func (s *Scheduler) Completed() <-chan string {
	return s.done
}

// RunOnce performs one export immediately.
func (s *Scheduler) RunOnce(ctx context.Context) (string, error) {
	snap, err := s.source(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load snapshot: %w", err)
	}
	return s.exporter.ExportRanges(snap, s.opts)
}

func (s *Scheduler) run() {
	path, err := s.RunOnce(context.Background())
	switch {
	case errors.Is(err, ErrNothingToExport):
		logger.Info("scheduled export skipped", "reason", err)
		return
	case err != nil:
		logger.Error("scheduled export failed", "error", err)
		return
	}

	select {
	case s.done <- path:
	default:
	}
}
