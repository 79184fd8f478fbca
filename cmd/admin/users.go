package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/jrsteele09/varix-web/drawings"
	"github.com/jrsteele09/varix-web/sessions"
	"github.com/spf13/cobra"
)

const (
	confirmWord = "DELETE"
	rule        = "===================================="
)

var errDeleteFailed = errors.New("some users could not be deleted")

func (a *app) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every auth user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			users, err := c.ListUsers(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list users: %w", err)
			}
			if len(users) == 0 {
				fmt.Fprintln(a.out, "No users found.")
				return nil
			}
			a.printUsers(users)
			return nil
		},
	}
}

func (a *app) clearCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every auth user",
		Long:  "Delete every auth user. This cannot be undone. You are asked to type DELETE unless --yes is given.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}

			fmt.Fprintf(a.out, "\nSupabase Admin: Clear Auth Users\n%s\n\nFetching users...\n\n", rule)
			users, err := c.ListUsers(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list users: %w", err)
			}
			if len(users) == 0 {
				fmt.Fprintln(a.out, "No users found. Database is already clean.")
				return nil
			}
			a.printUsers(users)

			if !yes && !a.confirm(len(users)) {
				fmt.Fprintln(a.out, "\nAborted. No users were deleted.")
				return nil
			}

			fmt.Fprintln(a.out, "\nDeleting users...")
			deleted, failed := 0, 0
			for _, u := range users {
				if err := c.DeleteUser(cmd.Context(), u.ID); err != nil {
					fmt.Fprintf(a.errOut, "  Failed to delete %s: %s\n", u.Email, err)
					failed++
					continue
				}
				fmt.Fprintf(a.out, "  Deleted: %s\n", u.Email)
				deleted++
			}

			fmt.Fprintf(a.out, "\n%s\nDeleted: %d user(s)\n", rule, deleted)
			if failed > 0 {
				fmt.Fprintf(a.out, "Failed: %d user(s)\n", failed)
				return errDeleteFailed
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "skip the confirmation prompt")
	return cmd
}

func (a *app) printUsers(users []sessions.User) {
	fmt.Fprintf(a.out, "Found %d user(s):\n\n", len(users))
	for i, u := range users {
		email := u.Email
		if email == "" {
			email = "No email"
		}
		confirmed := "No"
		if u.Confirmed() {
			confirmed = "Yes"
		}
		fmt.Fprintf(a.out, "  %d. %s (ID: %s...)\n", i+1, email, shortID(u.ID))
		fmt.Fprintf(a.out, "     Created: %s\n", drawings.FormatDate(u.CreatedAt))
		fmt.Fprintf(a.out, "     Confirmed: %s\n\n", confirmed)
	}
}

func (a *app) confirm(n int) bool {
	fmt.Fprintf(a.out, "Are you sure you want to DELETE ALL %d user(s)? This cannot be undone!\n   Type %q to confirm: ", n, confirmWord)
	line, err := bufio.NewReader(a.in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	return strings.TrimRight(line, "\r\n") == confirmWord
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
