package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vmunix/horizon/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		srv := server.New(a.orch, a.log.With("component", "server"))
		srv.SetTranslateDefault(a.cfg.Translate.Enabled)
		return srv.Run(ctx, server.Addr(a.cfg.Server.Host, a.cfg.Server.Port))
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
