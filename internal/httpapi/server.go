// Package httpapi exposes a session over a small JSON REST API.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/dusk-indust/userdesk/internal/logging"
	"github.com/dusk-indust/userdesk/internal/session"
	"github.com/dusk-indust/userdesk/internal/store"
	"github.com/dusk-indust/userdesk/internal/user"
)

// shutdownTimeout bounds graceful shutdown in Serve.
const shutdownTimeout = 5 * time.Second

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ListResponse is the body of GET /users.
type ListResponse struct {
	Count int           `json:"count"`
	Users []user.Record `json:"users"`
}

// Server routes HTTP requests to a session.
type Server struct {
	sess *session.Session
	log  *zap.Logger
	echo *echo.Echo
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		s.log = logging.OrNop(l)
	}
}

// New builds a Server over sess with all routes registered.
func New(sess *session.Session, opts ...Option) *Server {
	s := &Server{sess: sess, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			s.log.Debug("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
			)
			return nil
		},
	}))

	e.GET("/healthz", s.handleHealth)
	e.GET("/users", s.handleList)
	e.GET("/users/:id", s.handleGet)
	e.POST("/users", s.handleCreate)
	e.PUT("/users/:id", s.handleUpdate)
	e.DELETE("/users/:id", s.handleDelete)

	s.echo = e
	return s
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Serve listens on addr until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.echo.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.echo.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleList(c echo.Context) error {
	if msg := s.sess.LoadError(); msg != "" {
		return c.JSON(http.StatusBadGateway, ErrorResponse{Error: msg})
	}
	users, err := s.sess.Query(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ListResponse{Count: len(users), Users: users})
}

func (s *Server) handleGet(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	r, err := s.sess.User(c.Request().Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: session.NotFoundMessage})
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, r)
}

func (s *Server) handleCreate(c echo.Context) error {
	var draft user.Record
	if err := new(echo.DefaultBinder).BindBody(c, &draft); err != nil {
		return err
	}
	draft.ID = 0

	res := s.sess.AddUser(c.Request().Context(), draft)
	if !res.OK() {
		return s.writeResult(c, res)
	}
	return c.JSON(http.StatusCreated, res.Record)
}

// handleUpdate decodes the body over the current record, so omitted fields
// keep their values.
func (s *Server) handleUpdate(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	r, err := s.sess.User(c.Request().Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: session.NotFoundMessage})
	}
	if err != nil {
		return err
	}
	if err := new(echo.DefaultBinder).BindBody(c, &r); err != nil {
		return err
	}
	r.ID = id

	res := s.sess.EditUser(c.Request().Context(), r)
	if !res.OK() {
		return s.writeResult(c, res)
	}
	return c.JSON(http.StatusOK, res.Record)
}

func (s *Server) handleDelete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	res := s.sess.DeleteUser(c.Request().Context(), id)
	if !res.OK() {
		return s.writeResult(c, res)
	}
	return c.NoContent(http.StatusNoContent)
}

func pathID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	return id, nil
}

// writeResult maps a failed session result to a status code.
func (s *Server) writeResult(c echo.Context, res session.Result) error {
	return c.JSON(StatusFor(res.Err), ErrorResponse{Error: res.Message()})
}

// StatusFor maps a session error to an HTTP status.
func StatusFor(err error) int {
	var verr *user.ValidationError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

// handleError writes echo and handler errors in the ErrorResponse shape.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	msg := http.StatusText(code)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(code)
		}
	} else {
		s.log.Error("request failed", zap.Error(err))
	}
	if werr := c.JSON(code, ErrorResponse{Error: msg}); werr != nil {
		s.log.Error("write error response", zap.Error(werr))
	}
}
