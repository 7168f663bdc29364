package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var listUsersCommand = cobra.Command{
	Use:   "ls",
	Short: "Lists all registered users",
	Long:  `This will list all registered users, vendor tokens and password hashes are never printed`,
	Run: func(cmd *cobra.Command, args []string) {
		dataStore := mustResolveUsableDataStore()
		defer dataStore.Close()
		_, userService := resolveServices(dataStore)

		lst, err := userService.List(context.Background())
		if err != nil {
			fmt.Printf("Unable to load users: %s", err)
			os.Exit(1)
			return
		}
		w := tabwriter.NewWriter(os.Stdout, 1, 1, 1, ' ', 0)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s \r\n", "UserID", "HomeID", "Bridge", "Registered")
		for _, v := range lst {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s \r\n",
				v.UserID,
				v.HomeID,
				v.Bridge,
				time.UnixMilli(v.CreatedAt).UTC().Format(time.RFC3339),
			)
		}

		fmt.Fprintf(w, "------------------------------------------------- \r\n")
		fmt.Fprintf(w, "%d entries loaded", len(lst))
		w.Flush()
	},
}
