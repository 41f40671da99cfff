package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewPublishCmd creates the command that renders the site.
func NewPublishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish",
		Short: "Render the journal to HTML on the drive",
		Long: `Render every entry, the feed and the about page into the journal
directory, and rebuild the tag index in db.json.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd, os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.publisher.Publish(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "published %d entries (%d skipped), %d tags, %d pages\n",
				res.Entries, res.Skipped, res.Tags, len(res.Pages))
			return nil
		},
	}
}
