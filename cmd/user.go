package cmd

import "github.com/spf13/cobra"

var userCommand = cobra.Command{
	Use:   "user",
	Short: "user related commands",
	Long:  `user related commands, see subcommands`,
}
