package cmd

import (
	"github.com/eisenwinter/veluxidp/api"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCommand = cobra.Command{
	Use:   "serve",
	Short: "starts the http server",
	Long:  `Starts a http server and serves the service`,
	Run: func(cmd *cobra.Command, args []string) {
		dataStore := mustResolveUsableDataStore()
		defer dataStore.Close()

		issuer, userService := resolveServices(dataStore)

		server := api.NewServer(LoadedConfig, TopLevelLogger.Named("server"), issuer, userService)
		if err := server.Start(); err != nil {
			TopLevelLogger.Error("Server stopped with error", zap.Error(err))
			return
		}
		TopLevelLogger.Info("Shutdown complete")
	},
}
