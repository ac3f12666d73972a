package cmd

import (
	"fmt"

	"chemstore/internal/config"
	"chemstore/internal/database"
	"chemstore/internal/models"
	"chemstore/internal/notify"
	"chemstore/internal/repositories"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage administrator accounts",
}

var grantCmd = &cobra.Command{
	Use:   "grant <email>",
	Short: "Give the account registered with <email> the admin role",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setRole(cmd, args[0], models.RoleAdmin)
	},
}

var revokeCmd = &cobra.Command{
	Use:   "revoke <email>",
	Short: "Return the account registered with <email> to the user role",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setRole(cmd, args[0], models.RoleUser)
	},
}

func init() {
	adminCmd.AddCommand(grantCmd, revokeCmd)
	rootCmd.AddCommand(adminCmd)
}

func setRole(cmd *cobra.Command, email, role string) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close(db)

	auth := newAuthService(cfg, repositories.NewGORMStore(db), notify.LogMailer{})
	user, err := auth.SetRole(cmd.Context(), email, role)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) is now %s\n", user.Name, user.Email, user.Role)
	return nil
}
