// Package cli holds the techscribe commands: serve, migrate and admin.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/BorisDmv/techscribe-api/internal/config"
	"github.com/BorisDmv/techscribe-api/internal/db"
	"github.com/BorisDmv/techscribe-api/internal/store"
	"github.com/BorisDmv/techscribe-api/internal/store/memstore"
)

var rootCmd = &cobra.Command{
	Use:   "techscribe",
	Short: "TechScribe blogging API",
	Long: `TechScribe serves the blogging API: identities and roles, author
requests, posts with moderation, threaded comments and AI drafts.

Running without a subcommand starts the HTTP server.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

// Execute runs the root command
func Execute() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, adminCmd)
}

// openStore connects to Postgres, or returns the in-memory store when
// DATABASE_URL is memory://.
func openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	if cfg.UsesMemoryStore() {
		slog.Warn("using in-memory store, data is lost on restart")
		return memstore.New(), nil
	}
	pg, err := db.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("db connect failed: %w", err)
	}
	return pg, nil
}
