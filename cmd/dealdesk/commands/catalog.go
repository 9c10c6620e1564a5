package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kingrea/dealdesk/internal/catalog"
	"github.com/kingrea/dealdesk/internal/config"
)

// catalog: inspect or switch the catalog the wizard reads from.
func catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect or switch the catalog source",
	}
	cmd.AddCommand(catalogShowCmd(), catalogUseCmd())
	return cmd
}

func catalogShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the configured catalog source and its files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if cfg.CatalogSource() == config.SourceHTTP {
				fmt.Fprintf(out, "source: http\nurl:    %s\n", cfg.CatalogURL())
				return nil
			}
			fmt.Fprintf(out, "source: dir\ndir:    %s\n", cfg.CatalogDir())
			files, err := catalog.Files(cfg.CatalogDir())
			if err != nil {
				return err
			}
			scripts, err := catalog.LoadScriptDir(cfg.CatalogDir())
			if err != nil {
				return err
			}
			for _, f := range files {
				fmt.Fprintf(out, "  file    %s\n", f)
			}
			for _, s := range scripts {
				fmt.Fprintf(out, "  script  %s\n", s.Path)
			}
			fmt.Fprintf(out, "stale after: %s\n", cfg.StaleAfter())
			return nil
		},
	}
}

func catalogUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use <dir|url>",
		Short: "Point the project at a catalog directory or URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.UseCatalog(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "catalog source set to %s\n", args[0])
			return nil
		},
	}
}
