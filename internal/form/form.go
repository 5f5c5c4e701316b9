// Package form holds the add and edit drafts. A draft is local state that
// only reaches the collection when Submit succeeds.
package form

import (
	"errors"

	"github.com/dusk-indust/userdesk/internal/user"
)

// Draft is the set of field values a form is editing.
type Draft struct {
	rec user.Record
}

// Set assigns a field by name.
func (d *Draft) Set(field, value string) error {
	return d.rec.SetField(field, value)
}

// Get returns a field by name.
func (d *Draft) Get(field string) string {
	return d.rec.Field(field)
}

// Record returns the draft's current values as a record.
func (d *Draft) Record() user.Record {
	return d.rec
}

// errorMessage extracts the user-facing message of a validation failure.
func errorMessage(err error) string {
	var verr *user.ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	return err.Error()
}

// AddForm captures a new user.
type AddForm struct {
	Draft
	msg string
}

// NewAddForm returns an empty add form.
func NewAddForm() *AddForm {
	return &AddForm{}
}

// Err returns the message from the last blocked submission, or "".
func (f *AddForm) Err() string {
	return f.msg
}

// Submit validates the draft. On failure the draft is left as typed and the
// message is kept for display. On success the draft and message are cleared
// and the new record, without an id, is returned.
func (f *AddForm) Submit() (user.Record, error) {
	r := f.rec
	r.ID = 0
	if err := user.Validate(r); err != nil {
		f.msg = errorMessage(err)
		return user.Record{}, err
	}
	f.rec = user.Record{}
	f.msg = ""
	return r, nil
}

// EditForm edits an existing record. It does not clear itself on submit.
type EditForm struct {
	Draft
	orig   user.Record
	loaded bool
	msg    string
}

// NewEditForm returns an edit form with nothing loaded.
func NewEditForm() *EditForm {
	return &EditForm{}
}

// Load pre-populates the draft from r. Loading the same record again keeps
// any edits already typed; a different record replaces them.
func (f *EditForm) Load(r user.Record) {
	if f.loaded && f.orig == r {
		return
	}
	f.orig = r
	f.rec = r
	f.loaded = true
	f.msg = ""
}

// Original returns the record the form was loaded from.
func (f *EditForm) Original() (user.Record, bool) {
	return f.orig, f.loaded
}

// Err returns the message from the last blocked submission, or "".
func (f *EditForm) Err() string {
	return f.msg
}

// Submit validates the draft and returns the original record overwritten by
// the draft's values. The id always comes from the original.
func (f *EditForm) Submit() (user.Record, error) {
	if !f.loaded {
		return user.Record{}, errors.New("form: no record loaded for editing")
	}
	r := f.orig
	r.Name = f.rec.Name
	r.Username = f.rec.Username
	r.Email = f.rec.Email
	r.Address = f.rec.Address
	r.Phone = f.rec.Phone
	r.Company = f.rec.Company
	r.Website = f.rec.Website
	if err := user.Validate(r); err != nil {
		f.msg = errorMessage(err)
		return user.Record{}, err
	}
	f.msg = ""
	return r, nil
}
