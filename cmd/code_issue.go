package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/eisenwinter/veluxidp/user"
	"github.com/spf13/cobra"
)

var codeIssueUser string

var codeCommand = cobra.Command{
	Use:   "code",
	Short: "authorization code related commands",
	Long:  `authorization code related commands, see subcommands`,
}

var codeIssueCommand = cobra.Command{
	Use:   "issue",
	Short: "issues a new authorization code for a registered user",
	Long: `issues a new authorization code for an already registered user without
	contacting the velux backend, the code expires after behaviour.code-expiry`,
	Run: func(cmd *cobra.Command, args []string) {
		dataStore := mustResolveUsableDataStore()
		defer dataStore.Close()
		issuer, userService := resolveServices(dataStore)

		code, err := userService.IssueCode(context.Background(), codeIssueUser)
		if err != nil {
			if errors.Is(err, user.ErrEntityDoesNotExist) {
				fmt.Printf("No user %s registered \r\n", codeIssueUser)
			} else {
				fmt.Printf("Unable to issue code: %s", err)
			}
			os.Exit(1)
			return
		}
		fmt.Printf("Authorization code: %s (valid for %s) \r\n", code, issuer.CodeExpiry())
	},
}
