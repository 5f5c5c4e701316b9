package gateway

import (
	"context"
	"fmt"

	"github.com/dusk-indust/userdesk/internal/user"
)

// DefaultBaseURL is the public mock backend. Its writes are not durable and
// every create echoes the same id.
const DefaultBaseURL = "https://jsonplaceholder.typicode.com"

// Gateway issues calls against the remote users API. Each call is attempted
// exactly once.
type Gateway interface {
	ListUsers(ctx context.Context) ([]user.Record, error)
	CreateUser(ctx context.Context, draft user.Record) (user.Record, error)
	UpdateUser(ctx context.Context, r user.Record) (user.Record, error)
	DeleteUser(ctx context.Context, id int) error
}

// StatusError is returned when the API answers with a non-2xx status.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("gateway: %s: HTTP %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("gateway: %s: HTTP %d: %s", e.Op, e.StatusCode, e.Body)
}
