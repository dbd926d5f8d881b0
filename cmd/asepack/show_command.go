package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"asepack/internal/catalog"
	"asepack/internal/config"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <file>",
		Short: "Show cataloged assets for one sprite file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}

			cat, err := catalog.Open(cfg.Paths.CatalogPath)
			if err != nil {
				return fmt.Errorf("open catalog: %w", err)
			}
			defer cat.Close()

			assets, err := cat.AssetsFor(cmd.Context(), path)
			if err != nil {
				return fmt.Errorf("query catalog: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(assets) == 0 {
				fmt.Fprintf(out, "No cataloged assets for %s\n", path)
				return nil
			}

			fmt.Fprintln(out, assetTable(assets))
			return nil
		},
	}
}
