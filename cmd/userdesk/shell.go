package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/userdesk/internal/form"
	"github.com/dusk-indust/userdesk/internal/session"
	"github.com/dusk-indust/userdesk/internal/user"
	"github.com/dusk-indust/userdesk/internal/view"
)

const shellPrompt = "userdesk> "

// clearValue typed at a field prompt empties the field.
const clearValue = "-"

const shellHelp = `Commands:
  list                 show the users matching the current search
  search [term]        set the search term (` + view.SearchHint + `); no term clears it
  show <id>            show every field of one user
  add                  add a user; fields are prompted one by one
  edit <id>            edit a user; press enter to keep a value, "-" to clear it
  delete <id>...       delete users after confirmation
  reload               fetch the user list again
  help                 show this help
  quit                 leave the shell
`

func newShellCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive list view with search, add, edit and delete",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			return newShell(sess, cmd.InOrStdin(), cmd.OutOrStdout()).run(cmd.Context())
		},
	}
}

// shell is a line-oriented list view over one session. The add and edit
// drafts live as long as the shell, so a blocked submission can be resumed.
type shell struct {
	sess *session.Session
	in   *bufio.Reader
	out  io.Writer
	add  *form.AddForm
	edit *form.EditForm
}

func newShell(sess *session.Session, in io.Reader, out io.Writer) *shell {
	return &shell{
		sess: sess,
		in:   bufio.NewReader(in),
		out:  out,
		add:  form.NewAddForm(),
		edit: form.NewEditForm(),
	}
}

func (s *shell) run(ctx context.Context) error {
	if err := s.render(ctx); err != nil {
		return err
	}
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		fmt.Fprint(s.out, shellPrompt)
		line, err := s.readLine()
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(s.out)
			return nil
		}
		if err != nil {
			return err
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		quit, err := s.dispatch(ctx, fields[0], fields[1:])
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
}

// readLine returns the next line without its newline. A last line without a
// trailing newline is returned before io.EOF.
func (s *shell) readLine() (string, error) {
	line, err := s.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// dispatch runs one command. Only I/O errors are returned; everything else
// is reported to the user and the shell carries on.
func (s *shell) dispatch(ctx context.Context, name string, args []string) (bool, error) {
	switch name {
	case "quit", "exit":
		return true, nil
	case "help", "?":
		fmt.Fprint(s.out, shellHelp)
	case "list":
		return false, s.render(ctx)
	case "search":
		s.sess.SetSearch(strings.Join(args, " "))
		return false, s.render(ctx)
	case "reload":
		res := s.sess.Load(ctx)
		if res.OK() {
			fmt.Fprintln(s.out, res.Message())
		}
		return false, s.render(ctx)
	case "show":
		id, ok := s.oneID(args)
		if !ok {
			return false, nil
		}
		r, err := s.sess.User(ctx, id)
		if err != nil {
			s.report(session.Result{Op: session.OpEdit, ID: id, Err: err})
			return false, nil
		}
		return false, view.Detail(s.out, r)
	case "add":
		return false, s.addUser(ctx)
	case "edit":
		id, ok := s.oneID(args)
		if !ok {
			return false, nil
		}
		return false, s.editUser(ctx, id)
	case "delete":
		return false, s.deleteUsers(ctx, args)
	default:
		fmt.Fprintf(s.out, "Unknown command %q. Type help for a list of commands.\n", name)
	}
	return false, nil
}

func (s *shell) render(ctx context.Context) error {
	st, err := s.sess.Snapshot(ctx)
	if err != nil {
		return err
	}
	return view.Render(s.out, st)
}

func (s *shell) report(res session.Result) {
	fmt.Fprintln(s.out, res.Message())
}

func (s *shell) oneID(args []string) (int, bool) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "Expected exactly one user id.")
		return 0, false
	}
	id, err := parseID(args[0])
	if err != nil {
		fmt.Fprintln(s.out, err)
		return 0, false
	}
	return id, true
}

// fill prompts for every field, showing the draft's current value.
func (s *shell) fill(d *form.Draft) error {
	for _, field := range user.Fields {
		cur := d.Get(field)
		if cur != "" {
			fmt.Fprintf(s.out, "%s [%s]: ", user.Label(field), cur)
		} else {
			fmt.Fprintf(s.out, "%s: ", user.Label(field))
		}
		line, err := s.readLine()
		if err != nil {
			return err
		}
		value := strings.TrimSpace(line)
		switch value {
		case "":
			continue
		case clearValue:
			value = ""
		}
		if err := d.Set(field, value); err != nil {
			return err
		}
	}
	return nil
}

func (s *shell) addUser(ctx context.Context) error {
	if err := s.fill(&s.add.Draft); err != nil {
		return ignoreEOF(err)
	}
	draft, err := s.add.Submit()
	if err != nil {
		fmt.Fprintln(s.out, s.add.Err())
		fmt.Fprintln(s.out, "Draft kept; run add again to correct it.")
		return nil
	}
	s.report(s.sess.AddUser(ctx, draft))
	return nil
}

func (s *shell) editUser(ctx context.Context, id int) error {
	current, err := s.sess.BeginEdit(ctx, id)
	if err != nil {
		s.report(session.Result{Op: session.OpEdit, ID: id, Err: err})
		return nil
	}
	s.edit.Load(current)
	if err := s.fill(&s.edit.Draft); err != nil {
		return ignoreEOF(err)
	}
	r, err := s.edit.Submit()
	if err != nil {
		fmt.Fprintln(s.out, s.edit.Err())
		fmt.Fprintf(s.out, "Draft kept; run edit %d again to correct it.\n", id)
		return nil
	}
	res := s.sess.EditUser(ctx, r)
	if res.OK() {
		s.edit = form.NewEditForm()
	}
	s.report(res)
	return nil
}

func (s *shell) deleteUsers(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(s.out, "Expected at least one user id.")
		return nil
	}
	ids := make([]int, 0, len(args))
	for _, arg := range args {
		id, err := parseID(arg)
		if err != nil {
			fmt.Fprintln(s.out, err)
			return nil
		}
		ids = append(ids, id)
	}
	ok, err := confirm(s.in, s.out, ConfirmDeletePrompt)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(s.out, "Cancelled.")
		return nil
	}
	if err := printDeletes(s.out, s.sess.DeleteUsers(ctx, ids...)); err != nil {
		fmt.Fprintln(s.out, err)
	}
	return nil
}

// ignoreEOF treats running out of input mid-prompt as a normal exit.
func ignoreEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
