package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/eisenwinter/veluxidp/events/event"
	"github.com/spf13/cobra"
)

var purgeCommand = cobra.Command{
	Use:   "purge",
	Short: "removes expired authorization codes and access tokens",
	Long: `removes all authorization codes and access tokens which are expired,
	dynamodb tables expire records on their own but the sweeper may lag behind`,
	Run: func(cmd *cobra.Command, args []string) {
		dataStore := mustResolveUsableDataStore()
		defer dataStore.Close()
		dispatcher := bootstrapDispatcher(dataStore.Auditor())

		ctx := context.Background()
		codes, tokens, err := dataStore.PurgeExpired(ctx, time.Now().UnixMilli())
		if err != nil {
			fmt.Printf("Unable to purge expired records: %s", err)
			os.Exit(1)
			return
		}
		dispatcher.Dispatch(ctx, &event.ExpiredRecordsPurged{
			AuthorizationCodes: codes,
			AccessTokens:       tokens,
		})
		fmt.Printf("Purged %d authorization codes and %d access tokens \r\n", codes, tokens)
	},
}
