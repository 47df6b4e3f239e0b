package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BorisDmv/techscribe-api/internal/config"
	"github.com/BorisDmv/techscribe-api/internal/models"
	"github.com/BorisDmv/techscribe-api/internal/services"
)

var grantEmail string

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Administrative tasks",
}

// adminGrantCmd is the only way to create the first admin.
var adminGrantCmd = &cobra.Command{
	Use:   "grant",
	Short: "Grant the ADMIN role to an existing identity",
	Long: `Grant the ADMIN role to the identity registered with --email.

Examples:
  techscribe admin grant --email root@example.com`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cfg.UsesMemoryStore() {
			return fmt.Errorf("admin grant needs a postgres DATABASE_URL")
		}
		st, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		users := services.NewUserService(st, nil, nil, nil, nil)
		user, err := users.GrantRole(cmd.Context(), grantEmail, models.RoleAdmin)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) now has roles %v\n", user.Username, user.Email, user.Roles.Strings())
		return nil
	},
}

func init() {
	adminGrantCmd.Flags().StringVar(&grantEmail, "email", "", "Email of the identity to promote")
	_ = adminGrantCmd.MarkFlagRequired("email")
	adminCmd.AddCommand(adminGrantCmd)
}
