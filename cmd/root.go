package cmd

import (
	"fmt"
	"os"

	"github.com/eisenwinter/veluxidp/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ConfigFileLocation is of the config to load
var ConfigFileLocation string

// TopLevelLogger is the logger all loggers come from
var TopLevelLogger *zap.Logger

// LoadedConfig is the currently loaded configuration after initial bootstrapping
var LoadedConfig *config.Configuration

var rootCommand = cobra.Command{
	Use:   "veluxidp",
	Short: "veluxidp an oauth2 style identity bridge for velux accounts",
	Long: `veluxidp issues authorization codes and access tokens for a voice assistant skill
	and validates the user credentials against the velux backend`,
	Run: func(cmd *cobra.Command, args []string) {
		serveCommand.Run(cmd, args)
	},
}

func Execute() {
	if err := rootCommand.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {

	rootCommand.PersistentFlags().
		StringVar(&ConfigFileLocation, "config", "", "config file to be used")

	userCommand.AddCommand(&userRegisterCommand)
	userCommand.AddCommand(&listUsersCommand)

	codeIssueCommand.Flags().StringVar(&codeIssueUser, "user", "", "velux user id the code is issued for")
	_ = codeIssueCommand.MarkFlagRequired("user")
	codeCommand.AddCommand(&codeIssueCommand)

	rootCommand.AddCommand(&serveCommand)
	rootCommand.AddCommand(&lambdaCommand)
	rootCommand.AddCommand(&purgeCommand)
	rootCommand.AddCommand(&userCommand)
	rootCommand.AddCommand(&codeCommand)
}
