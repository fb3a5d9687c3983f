// Package cli wires configuration, storage and the interfaces into the
// hangs command.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdxmph/hangs-tui/internal/config"
	"github.com/pdxmph/hangs-tui/internal/db"
	"github.com/pdxmph/hangs-tui/internal/logger"

	// Task backends register themselves
	_ "github.com/pdxmph/hangs-tui/internal/tasks/dstask"
	_ "github.com/pdxmph/hangs-tui/internal/tasks/taskwarrior"
)

// app carries state shared by every subcommand
type app struct {
	configFile string
	dbPath     string
	logLevel   string

	cfg *config.Config
}

// NewRootCommand builds the hangs command tree
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "hangs",
		Short: "Keep track of when you last hung out with your friends",
		Long: `hangs is a terminal app for staying in touch with friends.

It ranks friends by how overdue you are to see them, keeps a log of
hangs and lets you tag friends to slice the list.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig()
		},
		RunE: a.runTUI,
	}

	rootCmd.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (default: ~/.config/hangs-tui/config.toml)")
	rootCmd.PersistentFlags().StringVar(&a.dbPath, "db", "", "database file, overrides the config")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")

	rootCmd.AddCommand(a.newInitCommand())
	rootCmd.AddCommand(a.newFixturesCommand())
	rootCmd.AddCommand(a.newListCommand())
	rootCmd.AddCommand(a.newServeCommand())
	rootCmd.AddCommand(a.newRemindCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// Execute runs the root command and exits non-zero on error
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func (a *app) loadConfig() error {
	var (
		cfg *config.Config
		err error
	)
	if a.configFile != "" {
		cfg, err = config.LoadFrom(a.configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if a.dbPath != "" {
		cfg.Database.Path = a.dbPath
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	a.cfg = cfg
	return nil
}

// consoleLogger logs to w for commands that own the terminal
func (a *app) consoleLogger(w io.Writer) *logger.Logger {
	return logger.New(logger.Config{
		Writer: w,
		Format: a.cfg.Log.Format,
		Level:  logger.ParseLevel(a.cfg.Log.Level),
	})
}

func (a *app) openDB(log *logger.Logger) (*db.DB, error) {
	return db.Open(a.cfg.Database.Path, db.WithLogger(log))
}
