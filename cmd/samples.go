package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/studybuddy/internal/studyset"
)

var samplesCmd = &cobra.Command{
	Use:   "samples",
	Short: "Add the bundled example study sets",
	RunE: func(cmd *cobra.Command, args []string) error {
		sets, err := studyset.Samples()
		if err != nil {
			return err
		}

		e, err := setup(cmd, true)
		if err != nil {
			return err
		}
		defer e.Close()

		for _, s := range sets {
			e.ctrl.LoadStudySet(cmd.Context(), s)
			fmt.Fprintf(cmd.OutOrStdout(), "Added %q\n", s.Title)
		}
		return nil
	},
}
