package cmd

import (
	"github.com/eisenwinter/veluxidp/api"
	"github.com/spf13/cobra"
)

var lambdaCommand = cobra.Command{
	Use:   "lambda",
	Short: "serves api gateway events inside the aws lambda runtime",
	Long: `Hands control to the aws lambda runtime, every api gateway proxy event
	is routed through the same handlers as the http server`,
	Run: func(cmd *cobra.Command, args []string) {
		dataStore := mustResolveUsableDataStore()
		defer dataStore.Close()

		issuer, userService := resolveServices(dataStore)
		api.NewLambdaHandler(LoadedConfig, TopLevelLogger.Named("lambda"), issuer, userService).Start()
	},
}
