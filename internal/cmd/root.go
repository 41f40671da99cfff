// Package cmd implements the entreate command line.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ganot/entreate/internal/version"
)

const (
	groupJournal = "journal"
	groupServer  = "server"
)

// NewRootCmd creates the root command with every subcommand attached.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "entreate",
		Short: "entreate - a journal on a remote gemdrive",
		Long: `entreate keeps a journal of Markdown entries on a gemdrive.

Entries are numbered directories under entries/ holding entry.md and
entry.json; db.json records the last allocated id and the tag vocabulary.
The journal can be edited from the command line, over HTTP, or by an MCP
client, and published as static HTML back onto the drive.`,
		Version:       version.Full(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file (default $ENTREATE_CONFIG_PATH)")

	rootCmd.AddGroup(&cobra.Group{ID: groupJournal, Title: "Journal Commands"})
	rootCmd.AddGroup(&cobra.Group{ID: groupServer, Title: "Servers"})

	for _, c := range []*cobra.Command{
		NewNewCmd(),
		NewListCmd(),
		NewShowCmd(),
		NewTagCmd(),
		NewPublishCmd(),
		NewActivityCmd(),
	} {
		c.GroupID = groupJournal
		rootCmd.AddCommand(c)
	}
	for _, c := range []*cobra.Command{
		NewServeCmd(),
		NewMCPCmd(),
		NewDriveCmd(),
	} {
		c.GroupID = groupServer
		rootCmd.AddCommand(c)
	}

	return rootCmd
}
