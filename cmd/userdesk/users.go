package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/userdesk/internal/form"
	"github.com/dusk-indust/userdesk/internal/session"
	"github.com/dusk-indust/userdesk/internal/user"
	"github.com/dusk-indust/userdesk/internal/view"
)

// ConfirmDeletePrompt is asked before any delete unless --yes is given.
const ConfirmDeletePrompt = "Are you sure you want to delete this user?"

func newListCmd(a *app) *cobra.Command {
	var (
		search string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users, optionally filtered by a search term",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			sess.SetSearch(search)
			st, err := sess.Snapshot(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return view.JSON(cmd.OutOrStdout(), st)
			}
			return view.Render(cmd.OutOrStdout(), st)
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", view.SearchHint)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show every field of one user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			sess, err := a.openLoaded(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			r, err := sess.User(cmd.Context(), id)
			if err != nil {
				return resultErr(session.Result{Op: session.OpEdit, ID: id, Err: err})
			}
			return view.Detail(cmd.OutOrStdout(), r)
		},
	}
}

// fieldFlags registers one string flag per editable field.
func fieldFlags(cmd *cobra.Command) map[string]*string {
	values := make(map[string]*string, len(user.Fields))
	for _, f := range user.Fields {
		values[f] = cmd.Flags().String(f, "", user.Label(f))
	}
	return values
}

func newAddCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a user",
		Args:  cobra.NoArgs,
	}
	values := fieldFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		f := form.NewAddForm()
		for _, field := range user.Fields {
			if err := f.Set(field, *values[field]); err != nil {
				return err
			}
		}
		draft, err := f.Submit()
		if err != nil {
			return errors.New(f.Err())
		}

		sess, err := a.open(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		res := sess.AddUser(cmd.Context(), draft)
		if err := resultErr(res); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.Message())
		return view.Detail(cmd.OutOrStdout(), res.Record)
	}
	return cmd
}

func newEditCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit fields of a user; flags not given keep their values",
		Args:  cobra.ExactArgs(1),
	}
	values := fieldFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		sess, err := a.openLoaded(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		current, err := sess.BeginEdit(cmd.Context(), id)
		if err != nil {
			return resultErr(session.Result{Op: session.OpEdit, ID: id, Err: err})
		}
		f := form.NewEditForm()
		f.Load(current)
		for _, field := range user.Fields {
			if cmd.Flags().Changed(field) {
				if err := f.Set(field, *values[field]); err != nil {
					return err
				}
			}
		}
		r, err := f.Submit()
		if err != nil {
			return errors.New(f.Err())
		}

		res := sess.EditUser(cmd.Context(), r)
		if err := resultErr(res); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.Message())
		return view.Detail(cmd.OutOrStdout(), res.Record)
	}
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete one or more users",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int, len(args))
			for i, arg := range args {
				id, err := parseID(arg)
				if err != nil {
					return err
				}
				ids[i] = id
			}
			if !yes {
				ok, err := confirm(bufio.NewReader(cmd.InOrStdin()), cmd.OutOrStdout(), ConfirmDeletePrompt)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
					return nil
				}
			}

			sess, err := a.openLoaded(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			return printDeletes(cmd.OutOrStdout(), sess.DeleteUsers(cmd.Context(), ids...))
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

// printDeletes writes one line per result and fails if any delete failed.
func printDeletes(w io.Writer, results []session.Result) error {
	failed := 0
	for _, res := range results {
		fmt.Fprintf(w, "%d: %s\n", res.ID, res.Message())
		if !res.OK() {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d deletes failed", failed, len(results))
	}
	return nil
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid user id %q", s)
	}
	return id, nil
}

// confirm asks a yes/no question. Anything but y or yes is a no.
func confirm(r *bufio.Reader, w io.Writer, question string) (bool, error) {
	fmt.Fprintf(w, "%s [y/N] ", question)
	line, err := r.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
