package store

import (
	"context"
	"errors"
	"io"

	"github.com/dusk-indust/userdesk/internal/user"
)

// ErrNotFound is returned by Get when no record carries the requested id.
var ErrNotFound = errors.New("store: user not found")

// Store is the ordered in-memory collection of user records.
// Implementations: MemStore (default), KuzuStore (cgo builds).
//
// Records keep insertion order. Reads return copies, so callers can never
// mutate the collection except through Add, Replace and Remove.
type Store interface {
	io.Closer

	// Initialize replaces the whole collection.
	Initialize(ctx context.Context, records []user.Record) error

	// Add appends r without checking id uniqueness.
	Add(ctx context.Context, r user.Record) error

	// Replace overwrites the first record whose id equals r.ID, keeping its
	// position. It reports false, with no error, when nothing matched.
	Replace(ctx context.Context, r user.Record) (bool, error)

	// Remove deletes every record with the given id and returns how many
	// were removed.
	Remove(ctx context.Context, id int) (int, error)

	// Filtered returns, in collection order, the records for which name,
	// username, email or city contains term case-insensitively. An empty
	// term returns everything. It is recomputed on every call.
	Filtered(ctx context.Context, term string) ([]user.Record, error)

	// Get returns the first record with the given id.
	Get(ctx context.Context, id int) (user.Record, error)

	// NextID returns one more than the largest id the store has ever held.
	NextID(ctx context.Context) (int, error)

	// Len returns the number of records.
	Len(ctx context.Context) (int, error)
}

// All returns the full collection in order.
func All(ctx context.Context, s Store) ([]user.Record, error) {
	return s.Filtered(ctx, "")
}
