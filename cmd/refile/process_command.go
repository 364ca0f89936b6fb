package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"refile/internal/logging"
	"refile/internal/pending"
	"refile/internal/pipeline"
	"refile/internal/transport"
	"refile/internal/transport/local"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process [filename...]",
		Short: "Run the rename pipeline once over the inbox",
		Long: "Processes files already sitting in the inbox and exits. With " +
			"arguments, only the named inbox files are processed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}

			client, err := local.New(cfg.Paths.InboxDir, cfg.Paths.OutboxDir, logger)
			if err != nil {
				return fmt.Errorf("create transport: %w", err)
			}

			p, err := pipeline.New(pipeline.Options{
				Config: cfg,
				Store:  store,
				Guard:  pending.NewGuard(cfg.GuardWindow()),
				Client: client,
				Logger: logger,
			})
			if err != nil {
				return fmt.Errorf("create pipeline: %w", err)
			}

			events, err := client.Pending(cmd.Context())
			if err != nil {
				return err
			}
			events = filterEvents(events, args)
			if len(events) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to process")
				return nil
			}

			var failures int
			for _, event := range events {
				result := p.Process(cmd.Context(), event)
				switch {
				case result.Completed():
					fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", event.File.Name, result.NewFilename)
				case result.Err != nil:
					failures++
					fmt.Fprintf(cmd.OutOrStdout(), "%s: failed at %s: %v\n", event.File.Name, result.Stage, result.Err)
				default:
					fmt.Fprintf(cmd.OutOrStdout(), "%s: skipped (%s)\n", event.File.Name, result.Outcome)
				}
			}
			if failures > 0 {
				return fmt.Errorf("%d of %d files failed", failures, len(events))
			}
			return nil
		},
	}
	return cmd
}

func filterEvents(events []transport.FileEvent, names []string) []transport.FileEvent {
	if len(names) == 0 {
		return events
	}
	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[name] = true
	}
	filtered := events[:0]
	for _, event := range events {
		if wanted[event.File.Name] {
			filtered = append(filtered, event)
		}
	}
	return filtered
}
