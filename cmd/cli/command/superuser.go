package command

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"yamdb/database"
	"yamdb/internal/config"
	"yamdb/internal/logger"
	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/microservices/http-api/service"
)

type superuserCreator interface {
	CreateSuperuser(ctx context.Context, username, email, password string) (*dto.UserResponse, error)
}

// createSuperuserCmd bootstraps the first admin straight in the database.
// The account logs in with `yamdb auth login`.
var createSuperuserCmd = &cobra.Command{
	Use:   "createsuperuser",
	Short: "Create an admin account with a password",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")

		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		zl, err := logger.New(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = zl.Sync() }()

		db, err := database.ConnectDB(cfg, zl)
		if err != nil {
			return err
		}
		defer database.Close(db)

		ctx, cancel := commandContext(cmd)
		defer cancel()

		users := service.NewUserService(repository.NewUserRepository(db))
		return runCreateSuperuser(ctx, users, username, email, password, cmd.OutOrStdout())
	},
}

func runCreateSuperuser(ctx context.Context, users superuserCreator, username, email, password string, out io.Writer) error {
	user, err := users.CreateSuperuser(ctx, username, email, password)
	if err != nil {
		return fmt.Errorf("createsuperuser failed: %w", err)
	}
	fmt.Fprintln(out, color.GreenString("✓ Superuser %s created", user.Username))
	return nil
}

func init() {
	createSuperuserCmd.Flags().StringP("username", "u", "", "Username for the admin account")
	createSuperuserCmd.Flags().StringP("email", "e", "", "Email address")
	createSuperuserCmd.Flags().StringP("password", "p", "", "Password (at least 8 characters)")
	createSuperuserCmd.MarkFlagRequired("username")
	createSuperuserCmd.MarkFlagRequired("email")
	createSuperuserCmd.MarkFlagRequired("password")
}
