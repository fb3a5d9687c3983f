package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdxmph/hangs-tui/internal/tasks"
)

func (a *app) newRemindCommand() *cobra.Command {
	var (
		backend string
		dryRun  bool
	)

	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Create tasks for overdue friends in your task manager",
		Long: fmt.Sprintf(`Create one task per overdue friend in a task manager.

Friends who already have a pending reminder are skipped. Available
backends: %s. With no --backend the first installed one is used.`,
			strings.Join(tasks.ListBackends(), ", ")),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if backend == "" {
				backend = a.cfg.Tasks.Backend
			}

			database, err := a.openDB(a.consoleLogger(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			defer database.Close()

			snap, err := database.Snapshot(cmd.Context())
			if err != nil {
				return err
			}
			now := time.Now()

			if dryRun {
				reminders, err := tasks.Reminders(snap.Contacts, now)
				if err != nil {
					return err
				}
				if len(reminders) == 0 {
					fmt.Fprintln(out, "Nobody is overdue.")
				}
				for _, r := range reminders {
					fmt.Fprintln(out, r.Description())
				}
				return nil
			}

			manager, err := tasks.NewManager(backend)
			if err != nil {
				return err
			}
			if !manager.IsEnabled() {
				return fmt.Errorf("%w: install taskwarrior or dstask, or pass --dry-run", tasks.ErrNoBackend)
			}

			result, err := manager.Remind(cmd.Context(), snap.Contacts, now)
			if err != nil {
				return err
			}
			for _, r := range result.Created {
				fmt.Fprintf(out, "created: %s\n", r.Description())
			}
			for _, name := range result.Skipped {
				fmt.Fprintf(out, "skipped: %s already has a reminder\n", name)
			}
			fmt.Fprintf(out, "%d created, %d skipped (%s)\n", len(result.Created), len(result.Skipped), manager.Name())
			return nil
		},
	}

	cmd.Flags().StringVar(&backend, "backend", "", "task backend, overrides the config")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the reminders without creating tasks")
	return cmd
}
