package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdxmph/hangs-tui/internal/config"
	"github.com/pdxmph/hangs-tui/internal/db"
)

func (a *app) newInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the database and a default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if err := db.Initialize(a.cfg.Database.Path); err != nil {
				return err
			}
			fmt.Fprintf(out, "Created database at %s\n", a.cfg.Database.Path)

			configPath, err := a.configPath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(configPath); os.IsNotExist(err) {
				if err := a.cfg.SaveTo(configPath); err != nil {
					return err
				}
				fmt.Fprintf(out, "Wrote config to %s\n", configPath)
			}
			return nil
		},
	}
}

func (a *app) configPath() (string, error) {
	if a.configFile != "" {
		return a.configFile, nil
	}
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func (a *app) newFixturesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "fixtures <path>",
		Short: "Create a database filled with sample friends and hangs",
		Long: `Create a new database at <path> with sample friends, tags and hangs
dated relative to today. Point --db at it to try the interface.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := db.CreateFixturesDatabase(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created fixtures database at %s\n", args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "Try it with: hangs --db %s\n", args[0])
			return nil
		},
	}
}
