// Package main is the entry point for the SpiceGold Dashboard TUI application.
// It initializes configuration, services, and runs the Bubble Tea program.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/j-veylop/spicegold-dashboard-tui/internal/app"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/config"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/logger"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/services"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/ui/tabs/distribution"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/ui/tabs/history"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/ui/tabs/info"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/ui/tabs/leaderboard"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/ui/tabs/traffic"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/version"
)

func main() {
	if err := buildRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// buildRootCmd creates the sgd command tree.
func buildRootCmd() *cobra.Command {
	var envFile string
	cmd := &cobra.Command{
		Use:   "sgd",
		Short: "SpiceGold Dashboard TUI - reward and traffic analytics in the terminal",
		Long: `SpiceGold Dashboard TUI shows the reward point distribution, page traffic
and top earners of the SpiceGold backend.

Keyboard Shortcuts:
  1-5             Switch between tabs
  Tab/Shift+Tab   Navigate between tabs
  d/w/m/o         Select the reward period
  t               Cycle the date range
  e/E             Export the current view to CSV
  r               Refresh data
  ?               Toggle help
  q, Ctrl+C       Quit

Configuration is read from a .env file, config.yaml and the environment.
Edits to the .env file are applied while the dashboard runs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(envFile)
		},
	}
	cmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Path to the .env file (default: first one found)")

	cmd.AddCommand(
		buildExportCmd(&envFile),
		buildVersionCmd(),
	)
	return cmd
}

func buildVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Info())
		},
	}
}

// run contains the main application logic, separated for cleaner error handling.
func run(envFile string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logCloser, err := logger.Setup(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer func() { _ = logCloser.Close() }()

	logger.Info("starting", "version", version.GetVersion(), "api", cfg.APIBaseURL)

	svcManager, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer func() {
		if closeErr := svcManager.Close(); closeErr != nil {
			logger.Error("error closing services", "error", closeErr)
		}
	}()

	model := app.NewModel(svcManager)

	state := model.GetState()
	tabs := []app.Tab{
		distribution.New(state),
		traffic.New(state),
		leaderboard.New(state, cfg.TopEarnersLimit),
		history.New(state, svcManager),
		info.New(state, cfg),
	}
	model.SetTabs(tabs)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if cfg.EnvFile != "" {
		watcher, err := config.Watch(cfg.EnvFile, func(next *config.Config) {
			svcManager.ApplyConfig(next)
			p.Send(app.ConfigReloadedMsg{Config: next})
		})
		if err != nil {
			logger.Warn("config watching disabled", "file", cfg.EnvFile, "error", err)
		} else {
			defer func() { _ = watcher.Close() }()
		}
	}

	go func() {
		<-sigChan
		p.Send(tea.Quit())
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
