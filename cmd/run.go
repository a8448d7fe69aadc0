package cmd

import (
	"github.com/codepet/codepet/internal/app"
	"github.com/codepet/codepet/internal/selfupdate"
	"github.com/spf13/cobra"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	b, err := e.backend(cmd)
	if err != nil {
		return err
	}
	return app.Run(cmd.Context(), b, app.Options{
		Version: version,
		Checker: selfupdate.NewChecker(selfupdate.WithRepo(cfg.App.UpdateRepo)),
	})
}
