// Package session owns the user collection for one view lifetime and keeps it
// consistent with add, edit and delete actions against the remote API.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/userdesk/internal/gateway"
	"github.com/dusk-indust/userdesk/internal/logging"
	"github.com/dusk-indust/userdesk/internal/store"
	"github.com/dusk-indust/userdesk/internal/user"
)

var (
	// ErrClosed is reported for operations started, or finishing, after Close.
	ErrClosed = errors.New("session: closed")

	// ErrLoadFailed wraps any failure of the initial fetch.
	ErrLoadFailed = errors.New("session: failed to fetch users")
)

// maxParallelDeletes bounds DeleteUsers fan-out.
const maxParallelDeletes = 4

// Session is the single owner of a user collection. Views hold a *Session
// and change the collection only through its methods.
type Session struct {
	store     store.Store
	gw        gateway.Gateway
	log       *zap.Logger
	syncEdits bool

	life   context.Context
	cancel context.CancelFunc

	// mu guards the view state below and serializes the closed check with
	// each store mutation, so nothing is applied after Close returns.
	mu      sync.Mutex
	closed  bool
	search  string
	loading bool
	loadErr string
	editing *user.Record
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger for failed remote calls.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		s.log = logging.OrNop(l)
	}
}

// WithRemoteEdits makes EditUser PUT the record before replacing it locally.
// Off by default: edits are local only.
func WithRemoteEdits(on bool) Option {
	return func(s *Session) {
		s.syncEdits = on
	}
}

// New returns an open session over st and gw.
func New(st store.Store, gw gateway.Gateway, opts ...Option) *Session {
	life, cancel := context.WithCancel(context.Background())
	s := &Session{
		store:  st,
		gw:     gw,
		log:    zap.NewNop(),
		life:   life,
		cancel: cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close ends the session. In-flight remote calls are canceled and their
// results discarded. Close does not close the store.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.cancel()
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// bind derives a context that is canceled when either ctx or the session
// lifetime ends.
func (s *Session) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	opCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(s.life, cancel)
	return opCtx, func() {
		stop()
		cancel()
	}
}

// apply runs fn under mu unless the session has been closed.
func (s *Session) apply(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return fn()
}

// Load fetches the user list and replaces the collection with it. On any
// failure the collection is left as it was and LoadError reports the fixed
// failure message.
func (s *Session) Load(ctx context.Context) Result {
	if err := s.apply(func() error {
		s.loading = true
		s.loadErr = ""
		return nil
	}); err != nil {
		return Result{Op: OpLoad, Err: err}
	}

	opCtx, done := s.bind(ctx)
	defer done()
	records, err := s.gw.ListUsers(opCtx)

	applyErr := s.apply(func() error {
		s.loading = false
		if err != nil {
			s.loadErr = LoadFailedMessage
			return nil
		}
		return s.store.Initialize(ctx, records)
	})
	if applyErr != nil {
		return Result{Op: OpLoad, Err: applyErr}
	}
	if err != nil {
		s.log.Error("load users failed", zap.Error(err))
		return Result{Op: OpLoad, Err: fmt.Errorf("%w: %w", ErrLoadFailed, err)}
	}
	return Result{Op: OpLoad}
}

// AddUser validates draft, creates it remotely and appends the created record.
// The id is assigned locally so it stays unique whatever the server echoes.
func (s *Session) AddUser(ctx context.Context, draft user.Record) Result {
	if err := user.Validate(draft); err != nil {
		return Result{Op: OpAdd, Err: err}
	}
	if s.Closed() {
		return Result{Op: OpAdd, Err: ErrClosed}
	}

	opCtx, done := s.bind(ctx)
	defer done()
	created, err := s.gw.CreateUser(opCtx, draft)
	if err != nil {
		if s.Closed() {
			return Result{Op: OpAdd, Err: ErrClosed}
		}
		s.log.Error("add user failed", zap.String("op", string(OpAdd)), zap.Error(err))
		return Result{Op: OpAdd, Err: err}
	}

	err = s.apply(func() error {
		id, err := s.store.NextID(ctx)
		if err != nil {
			return err
		}
		if created.ID != 0 && created.ID != id {
			s.log.Debug("replacing server-echoed id",
				zap.Int("echoed", created.ID), zap.Int("assigned", id))
		}
		created.ID = id
		return s.store.Add(ctx, created)
	})
	if err != nil {
		return Result{Op: OpAdd, Err: err}
	}
	return Result{Op: OpAdd, ID: created.ID, Record: created}
}

// BeginEdit marks the record with id as the edit target and returns a copy.
func (s *Session) BeginEdit(ctx context.Context, id int) (user.Record, error) {
	var r user.Record
	err := s.apply(func() error {
		got, err := s.store.Get(ctx, id)
		if err != nil {
			return err
		}
		r = got
		s.editing = &got
		return nil
	})
	return r, err
}

// EditTarget returns the record captured by the last BeginEdit, if any.
func (s *Session) EditTarget() (user.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editing == nil {
		return user.Record{}, false
	}
	return *s.editing, true
}

// CancelEdit clears the edit target.
func (s *Session) CancelEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editing = nil
}

// EditUser validates r and replaces the record carrying r.ID in place. An
// unknown id leaves the collection unchanged and reports store.ErrNotFound.
func (s *Session) EditUser(ctx context.Context, r user.Record) Result {
	if err := user.Validate(r); err != nil {
		return Result{Op: OpEdit, ID: r.ID, Err: err}
	}
	if s.Closed() {
		return Result{Op: OpEdit, ID: r.ID, Err: ErrClosed}
	}

	if s.syncEdits {
		opCtx, done := s.bind(ctx)
		_, err := s.gw.UpdateUser(opCtx, r)
		done()
		if err != nil {
			if s.Closed() {
				return Result{Op: OpEdit, ID: r.ID, Err: ErrClosed}
			}
			s.log.Error("edit user failed", zap.String("op", string(OpEdit)), zap.Int("id", r.ID), zap.Error(err))
			return Result{Op: OpEdit, ID: r.ID, Err: err}
		}
	}

	err := s.apply(func() error {
		ok, err := s.store.Replace(ctx, r)
		if err != nil {
			return err
		}
		if !ok {
			return store.ErrNotFound
		}
		if s.editing != nil && s.editing.ID == r.ID {
			s.editing = nil
		}
		return nil
	})
	if err != nil {
		return Result{Op: OpEdit, ID: r.ID, Err: err}
	}
	return Result{Op: OpEdit, ID: r.ID, Record: r}
}

// DeleteUser deletes id remotely, then removes it locally. If the remote call
// fails the record stays.
func (s *Session) DeleteUser(ctx context.Context, id int) Result {
	if s.Closed() {
		return Result{Op: OpDelete, ID: id, Err: ErrClosed}
	}

	opCtx, done := s.bind(ctx)
	defer done()
	if err := s.gw.DeleteUser(opCtx, id); err != nil {
		if s.Closed() {
			return Result{Op: OpDelete, ID: id, Err: ErrClosed}
		}
		s.log.Error("delete user failed", zap.String("op", string(OpDelete)), zap.Int("id", id), zap.Error(err))
		return Result{Op: OpDelete, ID: id, Err: err}
	}

	err := s.apply(func() error {
		if _, err := s.store.Remove(ctx, id); err != nil {
			return err
		}
		if s.editing != nil && s.editing.ID == id {
			s.editing = nil
		}
		return nil
	})
	if err != nil {
		return Result{Op: OpDelete, ID: id, Err: err}
	}
	return Result{Op: OpDelete, ID: id}
}

// DeleteUsers runs DeleteUser for every id in parallel. Each delete is
// independent; one failure does not cancel the others. Results are in the
// order of ids.
func (s *Session) DeleteUsers(ctx context.Context, ids ...int) []Result {
	results := make([]Result, len(ids))
	var g errgroup.Group
	g.SetLimit(maxParallelDeletes)
	for i, id := range ids {
		g.Go(func() error {
			results[i] = s.DeleteUser(ctx, id)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// SetSearch sets the term Visible filters by.
func (s *Session) SetSearch(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.search = term
}

// Search returns the current search term.
func (s *Session) Search() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.search
}

// Loading reports whether a Load is in flight.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// LoadError returns LoadFailedMessage after a failed Load, otherwise "".
func (s *Session) LoadError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr
}

// Visible returns the collection filtered by the current search term.
func (s *Session) Visible(ctx context.Context) ([]user.Record, error) {
	return s.store.Filtered(ctx, s.Search())
}

// Query returns the collection filtered by term without touching the
// session's own search term.
func (s *Session) Query(ctx context.Context, term string) ([]user.Record, error) {
	return s.store.Filtered(ctx, term)
}

// User returns the record with id, or store.ErrNotFound.
func (s *Session) User(ctx context.Context, id int) (user.Record, error) {
	return s.store.Get(ctx, id)
}

// State is a point-in-time snapshot of everything a view renders.
type State struct {
	Users   []user.Record
	Search  string
	Loading bool
	Error   string
}

// Snapshot captures the current view state.
func (s *Session) Snapshot(ctx context.Context) (State, error) {
	s.mu.Lock()
	st := State{Search: s.search, Loading: s.loading, Error: s.loadErr}
	s.mu.Unlock()

	users, err := s.store.Filtered(ctx, st.Search)
	if err != nil {
		return State{}, err
	}
	st.Users = users
	return st, nil
}
