package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/schedchat/schedchat/internal/google"
)

func newAuthCmd() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize access to a Google Calendar account",
		Long: `Run the Google OAuth flow for a calendar account and store the
resulting token on disk.

Requires GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET in the environment.
The command prints an authorization URL; open it in a browser, grant
access, and paste the authorization code back when prompted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuth(account)
		},
	}

	cmd.Flags().StringVar(&account, "account", "default", "Google account name to store the token under")
	return cmd
}

func runAuth(account string) error {
	if os.Getenv(google.EnvClientID) == "" || os.Getenv(google.EnvClientSecret) == "" {
		return fmt.Errorf("set %s and %s before running auth", google.EnvClientID, google.EnvClientSecret)
	}

	if google.HasTokenForAccount(account) {
		fmt.Printf("Account %q already has a stored token; continuing will replace it.\n\n", account)
	}

	fmt.Println("Open the following URL in your browser and grant calendar access:")
	fmt.Printf("\n  %s\n\n", google.GetAuthURL())
	fmt.Print("Enter the authorization code: ")

	reader := bufio.NewReader(os.Stdin)
	code, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read authorization code: %w", err)
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return fmt.Errorf("no authorization code provided")
	}

	if err := google.SaveTokenForAccount(context.Background(), account, code); err != nil {
		return fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	fmt.Printf("\n✅ Authorization successful. Token for account %q saved.\n", account)
	return nil
}
