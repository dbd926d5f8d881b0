package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"asepack/internal/catalog"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cataloged sprite files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			cat, err := catalog.Open(cfg.Paths.CatalogPath)
			if err != nil {
				return fmt.Errorf("open catalog: %w", err)
			}
			defer cat.Close()

			files, err := cat.ListFiles(cmd.Context())
			if err != nil {
				return fmt.Errorf("list catalog: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(files) == 0 {
				fmt.Fprintln(out, "Catalog is empty")
				return nil
			}

			fmt.Fprintln(out, fileTable(files))
			return nil
		},
	}
}
