package mcptools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dusk-indust/userdesk/internal/form"
	"github.com/dusk-indust/userdesk/internal/session"
	"github.com/dusk-indust/userdesk/internal/user"
)

const (
	statusCompleted = "completed"
	statusFailed    = "failed"
)

// UserService handles MCP tool calls against a session.
type UserService struct {
	sess *session.Session
}

// NewUserService creates a UserService over sess.
func NewUserService(sess *session.Session) *UserService {
	return &UserService{sess: sess}
}

// ListUsers returns the users matching input.Query, in collection order.
func (s *UserService) ListUsers(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListUsersInput,
) (*mcp.CallToolResult, ListUsersOutput, error) {
	users, err := s.sess.Query(ctx, input.Query)
	if err != nil {
		return nil, ListUsersOutput{}, fmt.Errorf("list users: %w", err)
	}
	if users == nil {
		users = []user.Record{}
	}
	return nil, ListUsersOutput{
		Users: users,
		Total: len(users),
		Error: s.sess.LoadError(),
	}, nil
}

// AddUser fills an add form from input and submits it through the session.
// Validation and remote failures are reported in the output, not as errors.
func (s *UserService) AddUser(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AddUserInput,
) (*mcp.CallToolResult, UserOutput, error) {
	f := form.NewAddForm()
	for field, value := range input.fields() {
		if err := f.Set(field, value); err != nil {
			return nil, UserOutput{}, err
		}
	}
	draft, err := f.Submit()
	if err != nil {
		return nil, UserOutput{Status: statusFailed, Message: f.Err()}, nil
	}
	return nil, userOutput(s.sess.AddUser(ctx, draft)), nil
}

// EditUser loads the user into an edit form, applies input.Fields and submits.
func (s *UserService) EditUser(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input EditUserInput,
) (*mcp.CallToolResult, UserOutput, error) {
	if input.ID <= 0 {
		return nil, UserOutput{}, fmt.Errorf("invalid user id: %d", input.ID)
	}
	current, err := s.sess.User(ctx, input.ID)
	if err != nil {
		return nil, userOutput(session.Result{Op: session.OpEdit, ID: input.ID, Err: err}), nil
	}

	f := form.NewEditForm()
	f.Load(current)
	for field, value := range input.Fields {
		if err := f.Set(field, value); err != nil {
			return nil, UserOutput{}, err
		}
	}
	r, err := f.Submit()
	if err != nil {
		return nil, UserOutput{Status: statusFailed, Message: f.Err()}, nil
	}
	return nil, userOutput(s.sess.EditUser(ctx, r)), nil
}

// DeleteUser deletes every id in parallel and reports each outcome.
func (s *UserService) DeleteUser(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DeleteUserInput,
) (*mcp.CallToolResult, DeleteUserOutput, error) {
	if len(input.IDs) == 0 {
		return nil, DeleteUserOutput{}, fmt.Errorf("ids is required")
	}
	results := s.sess.DeleteUsers(ctx, input.IDs...)
	out := DeleteUserOutput{Results: make([]DeleteResult, len(results))}
	for i, res := range results {
		out.Results[i] = DeleteResult{
			ID:      res.ID,
			Status:  status(res),
			Message: res.Message(),
		}
	}
	return nil, out, nil
}

func status(res session.Result) string {
	if res.OK() {
		return statusCompleted
	}
	return statusFailed
}

func userOutput(res session.Result) UserOutput {
	out := UserOutput{Status: status(res), Message: res.Message()}
	if res.OK() {
		r := res.Record
		out.User = &r
	}
	return out
}
