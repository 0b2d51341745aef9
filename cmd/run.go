package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/studybuddy/internal/app"
	"github.com/abhisek/studybuddy/internal/screens/generate"
)

// runApp opens the store, resumes the most recent set and launches the TUI.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()
	e, err := setup(cmd, false)
	if err != nil {
		return err
	}
	defer e.Close()

	e.ctrl.Init(ctx)
	return app.Run(ctx, app.Options{
		Controller: e.ctrl,
		Generate: generate.Options{
			Generator:    e.pipeline(),
			Prefs:        e.store,
			DefaultModel: e.defaultModel(),
		},
		Autosave: e.cfg.Autosave,
		Logger:   e.log.With("component", "tui"),
	})
}
