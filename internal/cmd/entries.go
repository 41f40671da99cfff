package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ganot/entreate/internal/domain/entry"
)

// NewNewCmd creates the command that allocates an entry.
func NewNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "Allocate a new empty entry",
		Long: `Allocate a new entry and print its path.

In a sequential journal the entry gets the id after lastId in db.json; the
entry directory is claimed on the drive before lastId is saved, so two
writers never share an id.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd, os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			if err := a.ensureEntries(ctx); err != nil {
				return err
			}
			e, err := a.entries.Create(ctx)
			if err != nil {
				return err
			}
			if e.ID > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", e.ID, e.Path)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), e.Path)
			}
			return nil
		},
	}
}

// NewListCmd creates the command that lists recent entries.
func NewListCmd() *cobra.Command {
	var (
		limit int
		order string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			o, err := entry.ParseOrder(order)
			if err != nil {
				return fmt.Errorf("--order must be asc or desc: %w", err)
			}
			a, err := openApp(cmd, os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()

			entries, err := a.entries.Recent(cmd.Context(), limit, o)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, e := range entries {
				id := "-"
				if e.ID > 0 {
					id = strconv.FormatInt(e.ID, 10)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", id, e.Path, e.Meta.Timestamp.Format(time.DateTime), e.Meta.Visibility, e.Meta.Title)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of entries (default from journal.recent_limit)")
	cmd.Flags().StringVar(&order, "order", "desc", "Order: desc (newest first) or asc")
	return cmd
}

// NewShowCmd creates the command that prints one entry.
func NewShowCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show ID|PATH",
		Short: "Print an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()

			var e *entry.Entry
			if id, perr := strconv.ParseInt(args[0], 10, 64); perr == nil {
				e, err = a.entries.GetByID(cmd.Context(), id)
			} else {
				e, err = a.entries.Get(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(e)
			}
			fmt.Fprintf(out, "# %s\n\n", e.Meta.Title)
			fmt.Fprintf(out, "path: %s\ntime: %s\nvisibility: %s\n", e.Path, e.Meta.Timestamp.Format(time.RFC3339), e.Meta.Visibility)
			if len(e.Meta.Tags) > 0 {
				fmt.Fprintf(out, "tags: %v\n", e.Meta.Tags)
			}
			fmt.Fprintf(out, "\n%s\n", e.Text)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the entry as JSON")
	return cmd
}
