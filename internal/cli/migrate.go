package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/BorisDmv/techscribe-api/internal/config"
	"github.com/BorisDmv/techscribe-api/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cfg.UsesMemoryStore() {
			return errors.New("migrate needs a postgres DATABASE_URL")
		}
		pg, err := db.NewStore(cmd.Context(), cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("db connect failed: %w", err)
		}
		defer pg.Close()

		if err := pg.Migrate(cmd.Context()); err != nil {
			return err
		}
		slog.Info("schema applied")
		return nil
	},
}
