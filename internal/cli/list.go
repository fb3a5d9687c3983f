package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdxmph/hangs-tui/internal/cadence"
	"github.com/pdxmph/hangs-tui/internal/db"
)

type listOptions struct {
	query   string
	tags    []string
	overdue bool
	json    bool
}

func (a *app) newListCommand() *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print friends, most overdue first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := a.openDB(a.consoleLogger(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			defer database.Close()

			snap, err := database.Snapshot(cmd.Context())
			if err != nil {
				return err
			}
			return printFriends(cmd.OutOrStdout(), snap, opts, time.Now())
		},
	}

	cmd.Flags().StringVarP(&opts.query, "query", "q", "", "only friends whose name contains this")
	cmd.Flags().StringSliceVarP(&opts.tags, "tag", "t", nil, "only friends with this tag (repeatable)")
	cmd.Flags().BoolVar(&opts.overdue, "overdue", false, "only friends past their goal")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print JSON")
	return cmd
}

type listedFriend struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Tags        []string `json:"tags"`
	HangEvery   string   `json:"hang_every,omitempty"`
	LastHang    string   `json:"last_hang,omitempty"`
	DaysOverdue *int     `json:"days_overdue,omitempty"`

	lastHang time.Time
}

func printFriends(w io.Writer, snap *db.Snapshot, opts *listOptions, now time.Time) error {
	var tags []db.Tag
	for _, name := range opts.tags {
		tags = append(tags, db.Tag{Name: name})
	}
	friends, err := cadence.Ranked(cadence.FilterByQueryAndTags(snap.Contacts, opts.query, tags), now)
	if err != nil {
		return err
	}

	var rows []listedFriend
	for _, c := range friends {
		if opts.overdue && !cadence.IsOverdue(c, now) {
			continue
		}
		row := listedFriend{ID: c.ID, Name: cadence.FullName(c), Tags: []string{}}
		for _, t := range c.Tags {
			row.Tags = append(row.Tags, t.Name)
		}
		if c.MaxTimeBetweenContact != nil {
			row.HangEvery = cadence.FormatHangFrequency(*c.MaxTimeBetweenContact)
		}
		if last, ok := cadence.LastHangDate(c); ok {
			row.LastHang = last.Format(time.DateOnly)
			row.lastHang = last
		}
		if days, ok, err := cadence.DaysOverdue(c, now); err == nil && ok {
			row.DaysOverdue = &days
		}
		rows = append(rows, row)
	}

	if opts.json {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if rows == nil {
			rows = []listedFriend{}
		}
		return enc.Encode(rows)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tEVERY\tLAST HANG\tSTATUS\tTAGS")
	for _, r := range rows {
		last := "never"
		if r.LastHang != "" {
			last = cadence.FormatTimeSinceLastHang(r.lastHang, now)
		}
		status := ""
		if r.DaysOverdue != nil && *r.DaysOverdue > 0 {
			status = fmt.Sprintf("%d days overdue", *r.DaysOverdue)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Name, r.HangEvery, last, status, strings.Join(r.Tags, ","))
	}
	return tw.Flush()
}
