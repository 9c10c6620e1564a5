package commands

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kingrea/dealdesk/internal/config"
	"github.com/kingrea/dealdesk/internal/logging"
	"github.com/kingrea/dealdesk/internal/tui"
)

var (
	projectDir string
	debug      bool

	cfg    *config.Config
	logger *logging.Logger
)

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "dealdesk",
		Short:        "Guided order entry for customers, plans, terms and add-ons",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if projectDir == "" {
				cwd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("resolve working directory: %w", err)
				}
				projectDir = cwd
			}
			abs, err := filepath.Abs(projectDir)
			if err != nil {
				return err
			}
			projectDir = abs
			if err := config.InitProjectDir(projectDir); err != nil {
				return fmt.Errorf("initialize %s: %w", config.DealdeskDir, err)
			}
			cfg, err = config.NewConfig(projectDir)
			if err != nil {
				return err
			}
			logger, err = logging.New(projectDir, debug)
			if err != nil {
				return err
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return logger.Close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := tui.NewApp(projectDir, tui.WithLogger(logger.Zap()))
			if err != nil {
				return err
			}
			// Use alternate screen buffer (like vim does)
			p := tea.NewProgram(app, tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("run TUI: %w", err)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&projectDir, "dir", "C", "", "project directory (default: current directory)")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "write debug entries to .dealdesk/logs/dealdesk.log")

	root.AddCommand(serveCmd(), quoteCmd(), catalogCmd())
	return root
}
