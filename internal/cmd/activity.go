package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ganot/entreate/internal/domain/activity"
)

// NewActivityCmd creates the command that prints the local activity log.
func NewActivityCmd() *cobra.Command {
	var (
		limit     int
		entryPath string
		typ       string
	)
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show recent journal activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd, os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()

			opts := activity.ListActivityOptions{EntryPath: entryPath, Limit: limit}
			if typ != "" {
				t := activity.ActivityType(typ)
				opts.ActivityType = &t
			}
			entries, err := a.activity.GetRecentActivity(cmd.Context(), a.cfg.JournalURL(), opts)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.CreatedAt.Local().Format(time.DateTime), e.ActivityType, e.EntryPath, e.Summary)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of records")
	cmd.Flags().StringVar(&entryPath, "entry", "", "Only show activity for this entry path")
	cmd.Flags().StringVar(&typ, "type", "", "Only show this activity type")
	return cmd
}
