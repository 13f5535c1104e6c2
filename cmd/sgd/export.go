package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/j-veylop/spicegold-dashboard-tui/internal/config"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/export"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/models"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/services/api"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/services/leaderboard"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/services/rewards"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/services/traffic"
)

type exportFlags struct {
	kind      string
	period    string
	from      string
	to        string
	rng       string
	out       string
	limit     int
	detailed  bool
	keepEmpty bool
}

// buildExportCmd creates the "export" command.
func buildExportCmd(envFile *string) *cobra.Command {
	var flags exportFlags
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Fetch a view once and write it as CSV",
		Long: `Fetch one view from the backend and write it to a CSV file without
starting the dashboard. The file path is printed on success.

Kinds:
  ranges        reward point brackets of --period
  traffic       page traffic between --from and --to (YYYY-MM-DD),
                or of the backend's relative --range (d, w or m)
  leaderboard   the top --limit earners`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			path, err := runExport(ctx, *envFile, flags)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&flags.kind, "kind", "k", "ranges", "What to export: ranges, traffic or leaderboard")
	cmd.Flags().StringVarP(&flags.period, "period", "p", "overall", "Reward period: daily, weekly, monthly or overall")
	cmd.Flags().StringVar(&flags.from, "from", "", "First traffic date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&flags.to, "to", "", "Last traffic date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&flags.rng, "range", "", "Relative traffic range: d, w or m")
	cmd.Flags().StringVarP(&flags.out, "out", "o", "", "Output directory (default: EXPORT_DIR)")
	cmd.Flags().IntVarP(&flags.limit, "limit", "n", 0, "Leaderboard size (default: TOP_EARNERS_LIMIT)")
	cmd.Flags().BoolVar(&flags.detailed, "detailed", false, "Write one row per date")
	cmd.Flags().BoolVar(&flags.keepEmpty, "keep-empty", false, "Keep brackets without users")
	return cmd
}

func runExport(ctx context.Context, envFile string, flags exportFlags) (string, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return "", fmt.Errorf("failed to load configuration: %w", err)
	}

	dir := flags.out
	if dir == "" {
		dir = cfg.ExportDir
	}
	exporter := export.New(dir)
	opts := export.Options{Detailed: flags.detailed, KeepEmpty: flags.keepEmpty}

	client := api.New(cfg.APIBaseURL,
		api.WithToken(cfg.APIToken),
		api.WithTimeout(cfg.RequestTimeout),
	)

	switch flags.kind {
	case "ranges":
		period, err := models.ParsePeriod(flags.period)
		if err != nil {
			return "", err
		}
		snap, err := rewards.New(client).Fetch(ctx, period)
		if err != nil {
			return "", fmt.Errorf("failed to fetch %s ranges: %w", period, err)
		}
		return exporter.ExportRanges(snap, opts)

	case "traffic":
		rng, err := trafficRange(flags)
		if err != nil {
			return "", err
		}
		report, err := traffic.New(client).Fetch(ctx, rng)
		if err != nil {
			return "", fmt.Errorf("failed to fetch traffic: %w", err)
		}
		return exporter.ExportTraffic(report, opts)

	case "leaderboard":
		limit := flags.limit
		if limit <= 0 || limit > cfg.TopEarnersLimit {
			limit = cfg.TopEarnersLimit
		}
		earners, err := leaderboard.New(client).Fetch(ctx, limit)
		if err != nil {
			return "", fmt.Errorf("failed to fetch leaderboard: %w", err)
		}
		return exporter.ExportLeaderboard(earners)

	default:
		return "", fmt.Errorf("unknown export kind %q", flags.kind)
	}
}

// trafficRange resolves the traffic flags into the range sent to the backend.
func trafficRange(flags exportFlags) (models.DateRange, error) {
	if (flags.from == "") != (flags.to == "") {
		return models.DateRange{}, fmt.Errorf("--from and --to must be given together")
	}
	if flags.rng == "" {
		return models.DateRange{From: flags.from, To: flags.to}, nil
	}
	if flags.from != "" {
		return models.DateRange{}, fmt.Errorf("--range cannot be combined with --from and --to")
	}
	period, err := models.ParsePeriod(flags.rng)
	if err != nil {
		return models.DateRange{}, err
	}
	if period == models.PeriodOverall {
		return models.DateRange{}, nil
	}
	return models.RelativeRange(period), nil
}
