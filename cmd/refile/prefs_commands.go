package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"refile/internal/prefs"
	"refile/internal/transport/local"
)

func newPrefsCommand(ctx *commandContext) *cobra.Command {
	var userID int64

	prefsCmd := &cobra.Command{
		Use:   "prefs",
		Short: "Manage per-user rename preferences",
	}
	prefsCmd.PersistentFlags().Int64Var(&userID, "user", local.UserID, "User the preference applies to")

	prefsCmd.AddCommand(newPrefsShowCommand(ctx, &userID))
	prefsCmd.AddCommand(newPrefsTemplateCommand(ctx, &userID))
	prefsCmd.AddCommand(newPrefsCaptionCommand(ctx, &userID))
	prefsCmd.AddCommand(newPrefsSourceCommand(ctx, &userID))
	prefsCmd.AddCommand(newPrefsThumbCommand(ctx, &userID))
	prefsCmd.AddCommand(newPrefsMetadataCommand(ctx, &userID))

	return prefsCmd
}

func newPrefsShowCommand(ctx *commandContext, userID *int64) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the user's stored preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			if err := store.EnsureUser(cmd.Context(), *userID); err != nil {
				return err
			}
			p, err := store.Get(cmd.Context(), *userID)
			if err != nil {
				return err
			}

			banText := "no"
			if p.Ban.Banned {
				banText = fmt.Sprintf("yes (%s)", p.Ban.Reason)
			}
			rows := [][]string{
				{"user", strconv.FormatInt(p.UserID, 10)},
				{"template", p.FormatTemplate},
				{"source", string(p.FileSource)},
				{"caption", p.Caption},
				{"thumbnail", p.ThumbnailRef},
				{"metadata", strconv.FormatBool(p.MetadataEnabled)},
				{"title", p.Metadata.Title},
				{"artist", p.Metadata.Artist},
				{"author", p.Metadata.Author},
				{"video title", p.Metadata.VideoTitle},
				{"audio title", p.Metadata.AudioTitle},
				{"subtitle title", p.Metadata.SubtitleTitle},
				{"banned", banText},
			}
			printRows(cmd, []string{"Preference", "Value"}, rows, []columnAlignment{alignLeft, alignLeft})
			return nil
		},
	}
}

func newPrefsTemplateCommand(ctx *commandContext, userID *int64) *cobra.Command {
	templateCmd := &cobra.Command{
		Use:   "template",
		Short: "Manage the rename template",
	}

	templateCmd.AddCommand(&cobra.Command{
		Use:   "set <template>",
		Short: "Set the rename template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			if err := store.EnsureUser(cmd.Context(), *userID); err != nil {
				return err
			}
			if err := store.SetFormatTemplate(cmd.Context(), *userID, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Template set to %q\n", args[0])
			return nil
		},
	})

	templateCmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Clear the rename template",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			return store.SetFormatTemplate(cmd.Context(), *userID, "")
		},
	})

	return templateCmd
}

func newPrefsCaptionCommand(ctx *commandContext, userID *int64) *cobra.Command {
	captionCmd := &cobra.Command{
		Use:   "caption",
		Short: "Manage the upload caption",
	}

	captionCmd.AddCommand(&cobra.Command{
		Use:   "set <caption>",
		Short: "Set the upload caption",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			if err := store.EnsureUser(cmd.Context(), *userID); err != nil {
				return err
			}
			return store.SetCaption(cmd.Context(), *userID, args[0])
		},
	})

	captionCmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Clear the upload caption",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			return store.SetCaption(cmd.Context(), *userID, "")
		},
	})

	return captionCmd
}

func newPrefsSourceCommand(ctx *commandContext, userID *int64) *cobra.Command {
	return &cobra.Command{
		Use:       "source <filename|caption>",
		Short:     "Choose which text feeds the classifiers",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(prefs.SourceFilename), string(prefs.SourceCaption)},
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			if err := store.EnsureUser(cmd.Context(), *userID); err != nil {
				return err
			}
			return store.SetFileSource(cmd.Context(), *userID, prefs.FileSource(args[0]))
		},
	}
}

func newPrefsThumbCommand(ctx *commandContext, userID *int64) *cobra.Command {
	thumbCmd := &cobra.Command{
		Use:   "thumb",
		Short: "Manage the stored thumbnail reference",
	}

	thumbCmd.AddCommand(&cobra.Command{
		Use:   "set <reference>",
		Short: "Set the thumbnail reference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			if err := store.EnsureUser(cmd.Context(), *userID); err != nil {
				return err
			}
			return store.SetThumbnail(cmd.Context(), *userID, args[0])
		},
	})

	thumbCmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Clear the thumbnail reference",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			return store.SetThumbnail(cmd.Context(), *userID, "")
		},
	})

	return thumbCmd
}

func newPrefsMetadataCommand(ctx *commandContext, userID *int64) *cobra.Command {
	metadataCmd := &cobra.Command{
		Use:   "metadata",
		Short: "Manage embedded metadata",
	}

	metadataCmd.AddCommand(&cobra.Command{
		Use:   "enable",
		Short: "Enable metadata tagging",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			if err := store.EnsureUser(cmd.Context(), *userID); err != nil {
				return err
			}
			return store.SetMetadataEnabled(cmd.Context(), *userID, true)
		},
	})

	metadataCmd.AddCommand(&cobra.Command{
		Use:   "disable",
		Short: "Disable metadata tagging",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			if err := store.EnsureUser(cmd.Context(), *userID); err != nil {
				return err
			}
			return store.SetMetadataEnabled(cmd.Context(), *userID, false)
		},
	})

	var fields prefs.MetadataFields
	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Set the six embedded metadata fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			if err := store.EnsureUser(cmd.Context(), *userID); err != nil {
				return err
			}

			current, err := store.Get(cmd.Context(), *userID)
			if err != nil {
				return err
			}
			merged := current.Metadata
			if cmd.Flags().Changed("title") {
				merged.Title = fields.Title
			}
			if cmd.Flags().Changed("artist") {
				merged.Artist = fields.Artist
			}
			if cmd.Flags().Changed("author") {
				merged.Author = fields.Author
			}
			if cmd.Flags().Changed("video-title") {
				merged.VideoTitle = fields.VideoTitle
			}
			if cmd.Flags().Changed("audio-title") {
				merged.AudioTitle = fields.AudioTitle
			}
			if cmd.Flags().Changed("subtitle-title") {
				merged.SubtitleTitle = fields.SubtitleTitle
			}
			return store.SetMetadataFields(cmd.Context(), *userID, merged)
		},
	}
	setCmd.Flags().StringVar(&fields.Title, "title", "", "Container title")
	setCmd.Flags().StringVar(&fields.Artist, "artist", "", "Artist")
	setCmd.Flags().StringVar(&fields.Author, "author", "", "Author")
	setCmd.Flags().StringVar(&fields.VideoTitle, "video-title", "", "Video stream title")
	setCmd.Flags().StringVar(&fields.AudioTitle, "audio-title", "", "Audio stream title")
	setCmd.Flags().StringVar(&fields.SubtitleTitle, "subtitle-title", "", "Subtitle stream title")
	metadataCmd.AddCommand(setCmd)

	return metadataCmd
}
