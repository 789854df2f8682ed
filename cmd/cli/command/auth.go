package command

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/zalando/go-keyring"

	"yamdb/cmd/cli/authentication"
	"yamdb/cmd/cli/command/client"
	"yamdb/internal/microservices/http-api/dto"
)

// authCmd groups the confirmation code flow
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  `Request a confirmation code by email, exchange it for an access token, or forget the stored token.`,
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Request a confirmation code for a username and email",
	RunE: func(cmd *cobra.Command, args []string) error {
		var req dto.SignupRequest
		req.Username, _ = cmd.Flags().GetString("username")
		req.Email, _ = cmd.Flags().GetString("email")

		ctx, cancel := commandContext(cmd)
		defer cancel()

		resp, err := client.NewHTTPClient(apiURL).Signup(ctx, &req)
		if err != nil {
			return fmt.Errorf("signup failed: %w", err)
		}

		color.Green("✓ Confirmation code sent to %s", resp.Email)
		fmt.Printf("Run: yamdb auth token -u %s -c <code>\n", resp.Username)
		return nil
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Exchange a confirmation code for an access token",
	RunE: func(cmd *cobra.Command, args []string) error {
		var req dto.TokenRequest
		req.Username, _ = cmd.Flags().GetString("username")
		req.ConfirmationCode, _ = cmd.Flags().GetString("code")

		ctx, cancel := commandContext(cmd)
		defer cancel()

		resp, err := client.NewHTTPClient(apiURL).Token(ctx, &req)
		if err != nil {
			return fmt.Errorf("token request failed: %w", err)
		}

		return storeToken(req.Username, resp.Token)
	},
}

func storeToken(username, token string) error {
	err := authentication.StoreTokens(&authentication.StoredCredentials{
		AccessToken: token,
		Username:    username,
		APIURL:      apiURL,
	})
	if err != nil {
		// no keyring backend (headless box); print instead
		color.Yellow("! could not store token in keyring: %v", err)
		fmt.Println(token)
		return nil
	}

	color.Green("✓ Logged in as %s", username)
	return nil
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in with a password (accounts made by createsuperuser)",
	RunE: func(cmd *cobra.Command, args []string) error {
		var req dto.LoginRequest
		req.Username, _ = cmd.Flags().GetString("username")
		req.Password, _ = cmd.Flags().GetString("password")

		ctx, cancel := commandContext(cmd)
		defer cancel()

		resp, err := client.NewHTTPClient(apiURL).Login(ctx, &req)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}
		return storeToken(req.Username, resp.Token)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored access token",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := authentication.DeleteTokens(); err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("logout failed: %w", err)
		}
		color.Green("✓ Successfully logged out.")
		return nil
	},
}

func init() {
	authCmd.AddCommand(signupCmd)
	authCmd.AddCommand(tokenCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)

	signupCmd.Flags().StringP("username", "u", "", "Username for the account")
	signupCmd.Flags().StringP("email", "e", "", "Email address the code is sent to")
	signupCmd.MarkFlagRequired("username")
	signupCmd.MarkFlagRequired("email")

	tokenCmd.Flags().StringP("username", "u", "", "Username for the account")
	tokenCmd.Flags().StringP("code", "c", "", "Confirmation code from the email")
	tokenCmd.MarkFlagRequired("username")
	tokenCmd.MarkFlagRequired("code")

	loginCmd.Flags().StringP("username", "u", "", "Username for the account")
	loginCmd.Flags().StringP("password", "p", "", "Account password")
	loginCmd.MarkFlagRequired("username")
	loginCmd.MarkFlagRequired("password")
}
