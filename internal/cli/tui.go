package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pdxmph/hangs-tui/internal/db"
	"github.com/pdxmph/hangs-tui/internal/logger"
	"github.com/pdxmph/hangs-tui/internal/tui"
)

// runTUI starts the interactive interface. Logs go to the configured file
// because the terminal belongs to bubbletea.
func (a *app) runTUI(cmd *cobra.Command, args []string) error {
	log, closer, err := logger.OpenFile(a.cfg.Log.File, logger.Config{
		Format: a.cfg.Log.Format,
		Level:  logger.ParseLevel(a.cfg.Log.Level),
	})
	if err != nil {
		return err
	}
	defer closer.Close()

	database, err := a.openDB(log)
	if err != nil {
		return err
	}
	defer database.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if a.cfg.Watch.Enabled {
		watcher, err := db.NewWatcher(database, a.cfg.Watch.Debounce.Duration)
		if err != nil {
			log.WithError(err).Warn("file watching disabled")
		} else {
			go func() {
				if err := watcher.Run(ctx); err != nil {
					log.WithError(err).Warn("watcher stopped")
				}
			}()
		}
	}

	model, err := tui.New(ctx, database, tui.Options{
		Logger:         log,
		MaxSuggestions: a.cfg.UI.MaxSuggestions,
		ActivationChar: a.cfg.UI.ActivationChar,
	})
	if err != nil {
		return err
	}

	log.Info("starting tui", "db", a.cfg.Database.Path)
	p := tea.NewProgram(*model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}
