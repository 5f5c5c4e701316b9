package mcptools

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dusk-indust/userdesk/internal/session"
)

// version is set by the linker at build time.
var version = "dev"

// NewUserMCPServer creates an MCP server with the 4 user management tools registered.
func NewUserMCPServer(sess *session.Session) *mcp.Server {
	svc := NewUserService(sess)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "userdesk",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_users",
		Description: "List users, optionally filtered by a search term matched against name, username, email and city.",
	}, svc.ListUsers)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_user",
		Description: "Create a user. Name, username, email, phone, street and city are required; the email must be valid.",
	}, svc.AddUser)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "edit_user",
		Description: "Change fields of an existing user by id. Omitted fields keep their current values.",
	}, svc.EditUser)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_user",
		Description: "Delete one or more users by id. Each delete succeeds or fails independently.",
	}, svc.DeleteUser)

	return server
}

// RunMCPServer starts an HTTP server exposing the user management MCP tools.
func RunMCPServer(ctx context.Context, sess *session.Session, addr string) error {
	server := NewUserMCPServer(sess)

	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// RunMCPServerStdio runs the MCP server on stdio transport, blocking until
// stdin is closed or the context is cancelled.
func RunMCPServerStdio(ctx context.Context, sess *session.Session) error {
	return NewUserMCPServer(sess).Run(ctx, &mcp.StdioTransport{})
}
