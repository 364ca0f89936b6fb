package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"refile/internal/extract"
	"refile/internal/rename"
	"refile/internal/transport/local"
)

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var template string
	var userID int64

	cmd := &cobra.Command{
		Use:   "render <filename>",
		Short: "Preview the rename for a filename",
		Long: "Runs the season, episode, quality, and audio classifiers over the " +
			"given filename and renders the result through a template. Without " +
			"--template the user's stored template is used.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sourceName := args[0]

			tpl := strings.TrimSpace(template)
			if tpl == "" {
				store, err := ctx.ensureStore()
				if err != nil {
					return err
				}
				stored, err := store.FormatTemplate(cmd.Context(), userID)
				if err != nil {
					return err
				}
				if stored == "" {
					return errors.New("no template stored for the user; pass --template")
				}
				tpl = stored
			}

			x := extract.Parse(sourceName)
			newName := rename.Filename(tpl, x, sourceName, rename.KindDocument)

			orDash := func(v string) string {
				if v == "" {
					return "-"
				}
				return v
			}
			rows := [][]string{
				{"source", sourceName},
				{"template", tpl},
				{"season", orDash(x.Season)},
				{"episode", orDash(x.Episode)},
				{"quality", x.Quality},
				{"audio", orDash(x.Audio)},
				{"result", newName},
			}
			printRows(cmd, []string{"Field", "Value"}, rows, []columnAlignment{alignLeft, alignLeft})
			return nil
		},
	}

	cmd.Flags().StringVarP(&template, "template", "t", "", "Template to render with")
	cmd.Flags().Int64Var(&userID, "user", local.UserID, "User whose stored template to use")
	return cmd
}
