package main

import (
	"errors"
	"fmt"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/internal/service"
	"go-inventory-ledger/pkg/jwt"

	"github.com/spf13/cobra"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts",
}

var (
	userEmail    string
	userName     string
	userPassword string
	userRole     string
)

// inventory user create --email --name --password --role
var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user with one of the seeded roles",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap(true)
		if err != nil {
			return err
		}
		defer rt.close()

		user, err := authService(rt).CreateUser(cmd.Context(), service.CreateUserInput{
			Email:    userEmail,
			Password: userPassword,
			FullName: userName,
			RoleCode: userRole,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s) with role %s\n", user.Email, user.ID, userRole)
		return nil
	},
}

// inventory user reset-password --email --password
var userResetPasswordCmd = &cobra.Command{
	Use:   "reset-password",
	Short: "Set a new password and revoke the user's sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap(false)
		if err != nil {
			return err
		}
		defer rt.close()

		err = authService(rt).ResetPassword(cmd.Context(), userEmail, userPassword)
		if errors.Is(err, service.ErrUserNotFound) {
			return fmt.Errorf("user %s not found", userEmail)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Password for %s has been reset.\n", userEmail)
		return nil
	},
}

func authService(rt *runtime) service.AuthService {
	tokens := jwt.NewManager(rt.cfg.Auth.JWTSecret, rt.cfg.Auth.AccessTTL, rt.cfg.Auth.RefreshTTL)
	return service.NewAuthService(repository.NewUserRepo(rt.db), repository.NewRoleRepo(rt.db), tokens, rt.log.Named("auth"))
}

func init() {
	userCreateCmd.Flags().StringVar(&userEmail, "email", "", "login email")
	userCreateCmd.Flags().StringVar(&userName, "name", "", "display name")
	userCreateCmd.Flags().StringVar(&userPassword, "password", "", "initial password (min 8 characters)")
	userCreateCmd.Flags().StringVar(&userRole, "role", model.RoleStaff, "role code: ADMIN, STAFF or VIEWER")
	_ = userCreateCmd.MarkFlagRequired("email")
	_ = userCreateCmd.MarkFlagRequired("name")
	_ = userCreateCmd.MarkFlagRequired("password")

	userResetPasswordCmd.Flags().StringVar(&userEmail, "email", "", "login email")
	userResetPasswordCmd.Flags().StringVar(&userPassword, "password", "", "new password (min 8 characters)")
	_ = userResetPasswordCmd.MarkFlagRequired("email")
	_ = userResetPasswordCmd.MarkFlagRequired("password")

	userCmd.AddCommand(userCreateCmd)
	userCmd.AddCommand(userResetPasswordCmd)
}
