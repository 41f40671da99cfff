package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// NewTagCmd creates the tag vocabulary commands.
func NewTagCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Manage the tag vocabulary",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List known tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd, os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()

			tags, err := a.journal.Tags(cmd.Context())
			if err != nil {
				return err
			}
			for _, t := range tags {
				fmt.Fprintln(cmd.OutOrStdout(), t)
			}
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "add NAME",
		Short: "Add a tag to the vocabulary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()

			tags, err := a.journal.CreateTag(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(tags, " "))
			return nil
		},
	})
	return cmd
}
