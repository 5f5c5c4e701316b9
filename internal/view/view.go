// Package view renders session state for terminal surfaces.
package view

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/dusk-indust/userdesk/internal/session"
	"github.com/dusk-indust/userdesk/internal/user"
)

const (
	LoadingLine = "Loading..."
	EmptyLine   = "No users found."

	// SearchHint is shown where a search term is expected.
	SearchHint = "Search by name, username, email, or city"
)

// Columns are the table headings, in order.
var Columns = []string{"ID", "NAME", "USERNAME", "EMAIL", "CITY"}

// Render writes st as the list view: the loading or error line when set,
// otherwise the user table or the empty-state line.
func Render(w io.Writer, st session.State) error {
	switch {
	case st.Loading:
		_, err := fmt.Fprintln(w, LoadingLine)
		return err
	case st.Error != "":
		_, err := fmt.Fprintln(w, st.Error)
		return err
	case len(st.Users) == 0:
		if st.Search != "" {
			_, err := fmt.Fprintf(w, "No users match %q.\n", st.Search)
			return err
		}
		_, err := fmt.Fprintln(w, EmptyLine)
		return err
	}
	return Table(w, st.Users)
}

// Table writes users as aligned columns with a heading row.
func Table(w io.Writer, users []user.Record) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, c := range Columns {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, c)
	}
	fmt.Fprintln(tw)
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			strconv.Itoa(u.ID), u.Name, u.Username, u.Email, u.Address.City)
	}
	return tw.Flush()
}

// Detail writes every editable field of r, one per line.
func Detail(w io.Writer, r user.Record) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "id:\t%d\n", r.ID)
	for _, f := range user.Fields {
		fmt.Fprintf(tw, "%s:\t%s\n", f, r.Field(f))
	}
	return tw.Flush()
}

// ListExport is the JSON shape of the list view.
type ListExport struct {
	Search string        `json:"search,omitempty"`
	Error  string        `json:"error,omitempty"`
	Count  int           `json:"count"`
	Users  []user.Record `json:"users"`
}

// JSON writes st as indented JSON.
func JSON(w io.Writer, st session.State) error {
	users := st.Users
	if users == nil {
		users = []user.Record{}
	}
	out := ListExport{
		Search: st.Search,
		Error:  st.Error,
		Count:  len(users),
		Users:  users,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("view: encode json: %w", err)
	}
	return nil
}
