package session

import (
	"errors"

	"github.com/dusk-indust/userdesk/internal/store"
	"github.com/dusk-indust/userdesk/internal/user"
)

// Op names a session operation.
type Op string

const (
	OpLoad   Op = "load"
	OpAdd    Op = "add"
	OpEdit   Op = "edit"
	OpDelete Op = "delete"
)

// Messages shown to the user. LoadFailedMessage is fixed regardless of cause.
const (
	LoadFailedMessage   = "Failed to fetch users"
	AddFailedMessage    = "Failed to add user."
	EditFailedMessage   = "Failed to update user."
	DeleteFailedMessage = "Failed to delete user."
	NotFoundMessage     = "User not found."
	ClosedMessage       = "Session closed."
)

// Result is the uniform outcome of every mutating operation. Err is nil on
// success.
type Result struct {
	Op     Op
	ID     int
	Record user.Record
	Err    error
}

// OK reports whether the operation succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// Message returns a short line suitable for showing to the user.
func (r Result) Message() string {
	if r.Err == nil {
		switch r.Op {
		case OpLoad:
			return "Users loaded."
		case OpAdd:
			return "User added."
		case OpEdit:
			return "User updated."
		case OpDelete:
			return "User deleted."
		}
		return ""
	}

	var verr *user.ValidationError
	switch {
	case errors.As(r.Err, &verr):
		return verr.Message
	case errors.Is(r.Err, ErrClosed):
		return ClosedMessage
	case errors.Is(r.Err, store.ErrNotFound):
		return NotFoundMessage
	}
	switch r.Op {
	case OpLoad:
		return LoadFailedMessage
	case OpAdd:
		return AddFailedMessage
	case OpEdit:
		return EditFailedMessage
	case OpDelete:
		return DeleteFailedMessage
	}
	return r.Err.Error()
}
