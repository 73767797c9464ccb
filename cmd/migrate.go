package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"gigflow/utils"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the storage schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		store, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer store.Close(context.WithoutCancel(ctx))

		if err := store.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		utils.Info("schema is up to date", map[string]any{"driver": cfg.StorageDriver})
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
