package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/giannis84/character-favourites/internal/auth"
	"github.com/giannis84/character-favourites/internal/favourites"
	"github.com/spf13/cobra"
)

func newListCommand(opts *StorageOptions) *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print favourites as JSON",
		Long:  "Print one user's favourite ids, or the whole index when --user is not given.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := openStore(cmd, opts)
			if err != nil {
				return err
			}
			defer closeStore()

			if user != "" {
				return writeJSON(cmd, store.UserFavourites(auth.NormalizeEmail(user)))
			}
			data, err := favourites.MarshalIndex(store.Snapshot())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "user email")
	return cmd
}

func newUsersCommand(opts *StorageOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List users that have favourites, with their counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := openStore(cmd, opts)
			if err != nil {
				return err
			}
			defer closeStore()

			for _, u := range store.Users() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", u, store.CountFor(u))
			}
			return nil
		},
	}
}

func newCountCommand(opts *StorageOptions) *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "count",
		Short: "Print a user's favourites count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireUser(user); err != nil {
				return err
			}
			store, closeStore, err := openStore(cmd, opts)
			if err != nil {
				return err
			}
			defer closeStore()

			fmt.Fprintln(cmd.OutOrStdout(), store.CountFor(auth.NormalizeEmail(user)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "user email (required)")
	return cmd
}

func newCheckCommand(opts *StorageOptions) *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "check ID",
		Short: "Print whether a character is one of a user's favourites",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireUser(user); err != nil {
				return err
			}
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			store, closeStore, err := openStore(cmd, opts)
			if err != nil {
				return err
			}
			defer closeStore()

			fmt.Fprintln(cmd.OutOrStdout(), store.IsFavourite(auth.NormalizeEmail(user), ids[0]))
			return nil
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "user email (required)")
	return cmd
}

func newToggleCommand(opts *StorageOptions) *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "toggle ID...",
		Short: "Toggle one or more characters in a user's favourites",
		Long:  "Toggle each id in order and persist once. An id given twice cancels out.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireUser(user); err != nil {
				return err
			}
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			store, closeStore, err := openStore(cmd, opts)
			if err != nil {
				return err
			}
			defer closeStore()

			email := auth.NormalizeEmail(user)
			if len(ids) == 1 {
				store.Toggle(commandContext(cmd), email, ids[0])
			} else {
				store.ToggleBulk(commandContext(cmd), email, ids)
			}
			return writeJSON(cmd, store.UserFavourites(email))
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "user email (required)")
	return cmd
}

func newClearCommand(opts *StorageOptions) *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all favourites of a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireUser(user); err != nil {
				return err
			}
			store, closeStore, err := openStore(cmd, opts)
			if err != nil {
				return err
			}
			defer closeStore()

			email := auth.NormalizeEmail(user)
			removed := store.CountFor(email)
			store.ClearUser(commandContext(cmd), email)
			fmt.Fprintf(cmd.OutOrStdout(), "cleared %d favourites for %s\n", removed, email)
			return nil
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "user email (required)")
	return cmd
}

func newHashPasswordCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [PASSWORD]",
		Short: "Print a bcrypt hash for a users.json entry",
		Long:  "Print a bcrypt hash for a users.json entry. The password is read from stdin when not given as an argument.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var password string
			if len(args) == 1 {
				password = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("reading password from stdin: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}
			if password == "" {
				return fmt.Errorf("password must not be empty")
			}

			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

func parseIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, arg := range args {
		id, err := strconv.Atoi(arg)
		if err != nil || id < 1 {
			return nil, fmt.Errorf("invalid character id %q: must be a positive integer", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	return enc.Encode(v)
}
