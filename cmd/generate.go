package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/studybuddy/internal/ingest"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate or revise a study set with AI",
	Long: `Generate a study set from a prompt, optionally grounded on attached
images, text files or web pages. With --edit the named set is revised
instead and replaced by the result. The model output is streamed to
stderr while it arrives.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		prompt, _ := cmd.Flags().GetString("prompt")
		model, _ := cmd.Flags().GetString("model")
		apiKey, _ := cmd.Flags().GetString("api-key")
		attach, _ := cmd.Flags().GetStringSlice("attach")
		editID, _ := cmd.Flags().GetString("edit")

		ctx := cmd.Context()
		e, err := setup(cmd, true)
		if err != nil {
			return err
		}
		defer e.Close()

		if model == "" {
			if m, ok := e.store.LastModel(ctx); ok {
				model = m
			}
		}
		if apiKey == "" {
			if k, ok := e.store.LastAPIKey(ctx); ok {
				apiKey = k
			}
		}

		req := ingest.Request{
			Mode:   ingest.ModeCreate,
			Prompt: prompt,
			Model:  model,
			APIKey: apiKey,
		}
		if editID != "" {
			prior, err := find(cmd, e, editID)
			if err != nil {
				return err
			}
			req.Mode = ingest.ModeEdit
			req.Prior = prior
		}
		for _, arg := range attach {
			att, err := ingest.Open(strings.TrimSpace(arg))
			if err != nil {
				return err
			}
			req.Attachments = append(req.Attachments, att)
		}

		stderr := cmd.ErrOrStderr()
		var shown int
		set, err := e.pipeline().Generate(ctx, req, func(text string) {
			fmt.Fprint(stderr, text[shown:])
			shown = len(text)
		})
		fmt.Fprintln(stderr)
		if err != nil {
			return err
		}

		if editID != "" {
			e.ctrl.ReplaceStudySet(ctx, editID, set)
		} else {
			e.ctrl.LoadStudySet(ctx, set)
		}
		snap := e.ctrl.Snapshot()
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %q (%d questions) as %s\n",
			snap.Set.Title, len(snap.Set.Questions), snap.Set.ID)
		return nil
	},
}

func init() {
	generateCmd.Flags().StringP("prompt", "p", "", "What the study set should cover (required)")
	generateCmd.Flags().StringP("model", "m", "", "Model id (default: last used, then configured)")
	generateCmd.Flags().String("api-key", "", "API key for the provider (default: last used, then configured)")
	generateCmd.Flags().StringSliceP("attach", "a", nil, "Image, text file or http(s) URL to include; repeatable")
	generateCmd.Flags().String("edit", "", "Id of a stored set to revise")
	generateCmd.MarkFlagRequired("prompt")
}
