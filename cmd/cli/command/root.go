package command

// root.go defines the root command for the yamdb CLI and its global flags.

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"yamdb/cmd/cli/authentication"
	"yamdb/cmd/cli/command/client"
)

var apiURL string // Global flag for API server URL

const requestTimeout = 15 * time.Second

var rootCmd = &cobra.Command{
	Use:   "yamdb",
	Short: "yamdb - YaMDb command line interface",
	Long: `yamdb talks to the YaMDb review API and loads fixture data into its database.
With it you can:
- Request a confirmation code and exchange it for an access token
- Browse categories, genres and titles
- Import the CSV fixtures into an empty database

Use "yamdb command --help" to see all available commands.`,
	SilenceUsage: true,
}

// Execute runs the root command. Called once by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "http://localhost:8080/v1", "API server URL")

	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(genresCmd)
	rootCmd.AddCommand(titlesCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(createSuperuserCmd)
}

// GetAuthenticatedClient returns an API client carrying the stored token
// when there is one. Catalog reads work anonymously, so a missing token is
// not an error.
func GetAuthenticatedClient() *client.HTTPClient {
	httpClient := client.NewHTTPClient(apiURL)
	if creds, err := authentication.GetTokens(); err == nil && creds.AccessToken != "" {
		httpClient.SetToken(creds.AccessToken)
	}
	return httpClient
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), requestTimeout)
}
