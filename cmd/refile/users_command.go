package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newUsersCommand(ctx *commandContext) *cobra.Command {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Inspect and manage known users",
	}

	usersCmd.AddCommand(&cobra.Command{
		Use:   "count",
		Short: "Print the number of known users",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			total, err := store.TotalUsers(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), total)
			return nil
		},
	})

	usersCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List known users and their state",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			ids, err := store.AllUserIDs(cmd.Context())
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(ids))
			for _, id := range ids {
				p, err := store.Get(cmd.Context(), id)
				if err != nil {
					return err
				}
				template := p.FormatTemplate
				if template == "" {
					template = "(unset)"
				}
				banned := "no"
				if p.Ban.Banned {
					banned = "yes"
				}
				rows = append(rows, []string{
					strconv.FormatInt(id, 10),
					template,
					string(p.FileSource),
					strconv.FormatBool(p.MetadataEnabled),
					banned,
				})
			}
			printRows(cmd,
				[]string{"User", "Template", "Source", "Metadata", "Banned"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft})
			return nil
		},
	})

	var banReason string
	banCmd := &cobra.Command{
		Use:   "ban <user-id>",
		Short: "Ban a user from submitting files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			if err := store.EnsureUser(cmd.Context(), id); err != nil {
				return err
			}
			return store.Ban(cmd.Context(), id, banReason)
		},
	}
	banCmd.Flags().StringVar(&banReason, "reason", "", "Reason shown when the user is rejected")
	usersCmd.AddCommand(banCmd)

	usersCmd.AddCommand(&cobra.Command{
		Use:   "unban <user-id>",
		Short: "Lift a user's ban",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			return store.Unban(cmd.Context(), id)
		},
	})

	usersCmd.AddCommand(&cobra.Command{
		Use:   "delete <user-id>",
		Short: "Delete a user and their preferences",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			deleted, err := store.DeleteUser(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !deleted {
				return fmt.Errorf("no such user %d", id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted user %d\n", id)
			return nil
		},
	})

	return usersCmd
}

func parseUserID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid user id %q", raw)
	}
	return id, nil
}
