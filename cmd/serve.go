package cmd

import (
	"os/signal"
	"syscall"

	"github.com/codepet/codepet/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the codepet HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireLocal(cmd); err != nil {
			return err
		}
		scfg := cfg.Server
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			scfg.Addr = addr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		return server.New(scfg, server.Deps{
			Store:    e.store,
			Tracker:  e.tracker,
			Quiz:     e.quiz,
			Ranking:  e.ranking,
			Accounts: e.accounts,
			Location: e.loc,
		}).Run(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
}
