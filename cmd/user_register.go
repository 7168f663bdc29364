package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/eisenwinter/veluxidp/user"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var userRegisterCommand = cobra.Command{
	Use:   "register",
	Short: "launches a on terminal user registration dialog",
	Long: `this command registers a velux account from command line,
	the credentials are validated against the velux backend and an authorization code is printed`,
	Run: func(cmd *cobra.Command, args []string) {
		dataStore := mustResolveUsableDataStore()
		defer dataStore.Close()
		_, userService := resolveServices(dataStore)

		reader := bufio.NewReader(os.Stdin)
		fmt.Println("velux user id?")
		username, err := reader.ReadString('\n')
		if err != nil {
			fmt.Printf("Unable to read user id: %s", err)
			os.Exit(1)
			return
		}
		username = strings.Trim(username, " \t\r\n")
		if username == "" {
			fmt.Println("user id must not be empty")
			os.Exit(1)
			return
		}

		fmt.Println("password?")
		pwd, err := term.ReadPassword(int(syscall.Stdin))
		if err != nil {
			fmt.Printf("Unable to read password: %s", err)
			os.Exit(1)
			return
		}
		if len(pwd) == 0 {
			fmt.Println("password must not be empty")
			os.Exit(1)
			return
		}

		reg, err := userService.Register(context.Background(), username, string(pwd))
		if err != nil {
			if errors.Is(err, user.ErrInvalidCredentials) {
				fmt.Println("The velux backend rejected the credentials")
			} else {
				fmt.Printf("Unable to register user: %s", err)
			}
			os.Exit(1)
			return
		}
		home, _ := reg.HomeInfo.HomeID()
		bridge, _ := reg.HomeInfo.BridgeID()
		fmt.Printf("User %s registered (home %s, bridge %s) \r\n", username, home, bridge)
		fmt.Printf("Authorization code: %s \r\n", reg.Code)
	},
}
