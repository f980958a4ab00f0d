package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/andyrewlee/g3console/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// stateTimeout bounds the state load and save around a console session.
const stateTimeout = 3 * time.Second

// runConsole opens the interactive console at path. With no path it resumes
// from the last saved path when state restore is enabled.
func runConsole(cmd *cobra.Command, a *app, path string) error {
	noRestore, _ := cmd.Flags().GetBool("no-restore")
	restore := a.cfg.RestoreState && !noRestore

	if path == "" && restore {
		ctx, cancel := context.WithTimeout(cmd.Context(), stateTimeout)
		path = tui.RestorePath(ctx, a.client, a.log)
		cancel()
		if path != "" {
			a.log.Info("restored last path", "path", path)
		}
	}

	m := tui.New(a.client, tui.Options{
		InitialPath:    path,
		HomeInterval:   a.cfg.HomeRefresh,
		DetailInterval: a.cfg.DetailRefresh,
		StartDelay:     a.cfg.StartDelay,
		Logger:         a.log,
	})

	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(cmd.Context()),
	)
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("running console: %w", err)
	}

	if restore {
		if fm, ok := final.(tui.Model); ok {
			ctx, cancel := context.WithTimeout(context.Background(), stateTimeout)
			tui.SavePath(ctx, a.client, fm.CurrentPath(), a.log)
			cancel()
		}
	}
	return nil
}
