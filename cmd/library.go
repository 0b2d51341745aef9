package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/studybuddy/internal/session"
	"github.com/abhisek/studybuddy/internal/studyset"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a study set from a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}
		set, err := studyset.Import(data)
		if err != nil {
			return err
		}

		e, err := setup(cmd, true)
		if err != nil {
			return err
		}
		defer e.Close()

		e.ctrl.LoadStudySet(cmd.Context(), set)
		snap := e.ctrl.Snapshot()
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %q (%d questions) as %s\n",
			snap.Set.Title, len(snap.Set.Questions), snap.Set.ID)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Write a study set to a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		withProgress, _ := cmd.Flags().GetBool("progress")
		dir, _ := cmd.Flags().GetString("output")

		e, err := setup(cmd, true)
		if err != nil {
			return err
		}
		defer e.Close()

		set, err := find(cmd, e, args[0])
		if err != nil {
			return err
		}
		data, err := studyset.Export(set, withProgress)
		if err != nil {
			return err
		}
		path := filepath.Join(dir, studyset.ExportFileName(set.Title, withProgress))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored study sets",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd, true)
		if err != nil {
			return err
		}
		defer e.Close()

		sets := e.store.LoadAll(cmd.Context())
		if len(sets) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No study sets yet. Try `studybuddy samples` or `studybuddy generate`.")
			return nil
		}
		session.SortForDisplay(sets)

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tPROGRESS\tLAST OPENED\tPIN")
		for _, s := range sets {
			st := session.StatsOf(s)
			pin := ""
			if s.IsPinned {
				pin = "★"
			}
			fmt.Fprintf(w, "%s\t%s\t%d/%d\t%s\t%s\n",
				s.ID, s.Title, st.Answered, st.Total,
				time.UnixMilli(s.LastAccessed).Local().Format("2006-01-02 15:04"), pin)
		}
		return w.Flush()
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print the questions of a study set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd, true)
		if err != nil {
			return err
		}
		defer e.Close()

		set, err := find(cmd, e, args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		st := session.StatsOf(set)
		fmt.Fprintf(out, "%s\n%s\n", set.Title, strings.Repeat("─", 60))
		fmt.Fprintf(out, "Answered %d of %d, %d correct\n\n", st.Answered, st.Total, st.Correct)
		for i, q := range set.Questions {
			fmt.Fprintf(out, "%d. [%s] %s\n", i+1, studyset.StateOf(q), strings.Join(q.Meta().Text, "\n   "))
			switch q := q.(type) {
			case *studyset.MultipleChoice:
				for _, o := range q.Options {
					mark := " "
					if o.IsCorrect {
						mark = "✓"
					}
					fmt.Fprintf(out, "   %s %s) %s\n", mark, o.ID, o.Text)
				}
			case *studyset.TextInput:
				fmt.Fprintf(out, "   Accepted: %s\n", strings.Join(q.CorrectAnswers, " / "))
			}
			if v, ok := q.Meta().Answer.Value(); ok {
				fmt.Fprintf(out, "   Your answer: %s (%s)\n", v, q.Meta().Verdict)
			}
			fmt.Fprintln(out)
		}
		return nil
	},
}

var renameCmd = &cobra.Command{
	Use:   "rename <id> <title>",
	Short: "Rename a study set",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd, true)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.ctrl.Rename(cmd.Context(), args[0], args[1]); err != nil {
			return notFound(args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %q\n", args[0], strings.TrimSpace(args[1]))
		return nil
	},
}

var pinCmd = &cobra.Command{
	Use:   "pin <id>",
	Short: "Pin or unpin a study set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd, true)
		if err != nil {
			return err
		}
		defer e.Close()

		pinned, err := e.ctrl.TogglePin(cmd.Context(), args[0])
		if err != nil {
			return notFound(args[0], err)
		}
		state := "Unpinned"
		if pinned {
			state = "Pinned"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", state, args[0])
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a study set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd, true)
		if err != nil {
			return err
		}
		defer e.Close()

		if _, err := find(cmd, e, args[0]); err != nil {
			return err
		}
		e.ctrl.DeleteStudySet(cmd.Context(), args[0])
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset <id>",
	Short: "Clear the answers of a study set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd, true)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.ctrl.ResetProgress(cmd.Context(), args[0]); err != nil {
			return notFound(args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Progress cleared for %s\n", args[0])
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every stored study set",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			return errors.New("refusing to clear without --yes")
		}

		e, err := setup(cmd, true)
		if err != nil {
			return err
		}
		defer e.Close()

		e.store.ClearAll(cmd.Context())
		fmt.Fprintln(cmd.OutOrStdout(), "All study sets removed.")
		return nil
	},
}

func init() {
	exportCmd.Flags().Bool("progress", false, "Keep recorded answers")
	exportCmd.Flags().StringP("output", "o", ".", "Directory to write the file to")
	clearCmd.Flags().Bool("yes", false, "Confirm removal of all data")
}

// find loads a stored set by id.
func find(cmd *cobra.Command, e *env, id string) (*studyset.StudySet, error) {
	set, ok := e.store.Load(cmd.Context(), id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", session.ErrNotFound, id)
	}
	return set, nil
}

func notFound(id string, err error) error {
	if errors.Is(err, session.ErrNotFound) {
		return fmt.Errorf("%w: %s", err, id)
	}
	return err
}
