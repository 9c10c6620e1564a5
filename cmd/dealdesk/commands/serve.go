package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kingrea/dealdesk/internal/catalog"
	"github.com/kingrea/dealdesk/internal/catalogserver"
)

const shutdownTimeout = 5 * time.Second

// serve: expose the catalog directory over HTTP for HTTP-sourced wizards.
func serveCmd() *cobra.Command {
	var (
		host string
		port int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog directory over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := catalogserver.SettingsFromConfig(cfg)
			if cmd.Flags().Changed("host") {
				settings.Host = host
			}
			if cmd.Flags().Changed("port") {
				settings.Port = port
			}

			dir := cfg.CatalogDir()
			files, err := catalog.Files(dir)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: no catalog files in %s\n", dir)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := catalogserver.NewServer(settings, catalog.NewDirSource(dir), catalogserver.WithLogger(logger.Zap()))
			if err := srv.Start(ctx); err != nil {
				return err
			}
			logger.Zap().Info("catalog server started", zap.String("addr", srv.Addr()), zap.Int("files", len(files)))
			fmt.Fprintf(cmd.OutOrStdout(), "serving %d catalog file(s) from %s at %s/data\n", len(files), dir, srv.BaseURL())
			for _, f := range files {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", f)
			}

			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown catalog server: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "catalog server stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "bind host (default from config)")
	cmd.Flags().IntVar(&port, "port", 0, "bind port (default from config)")
	return cmd
}
