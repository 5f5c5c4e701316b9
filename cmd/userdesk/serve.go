package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dusk-indust/userdesk/internal/httpapi"
	"github.com/dusk-indust/userdesk/internal/mcptools"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the user list over a JSON HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = a.cfg.Server.HTTPAddr
			}
			sess, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			if msg := sess.LoadError(); msg != "" {
				a.log.Warn("serving without users", zap.String("error", msg))
			}
			a.log.Info("http api listening", zap.String("addr", addr))
			fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s\n", addr)
			return httpapi.New(sess, httpapi.WithLogger(a.log)).Serve(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}

func newMCPCmd(a *app) *cobra.Command {
	var (
		addr  string
		stdio bool
	)
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run an MCP server exposing list, add, edit and delete tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			if stdio {
				return mcptools.RunMCPServerStdio(cmd.Context(), sess)
			}
			if addr == "" {
				addr = a.cfg.Server.MCPAddr
			}
			a.log.Info("mcp server listening", zap.String("addr", addr))
			return mcptools.RunMCPServer(cmd.Context(), sess, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8090)")
	cmd.Flags().BoolVar(&stdio, "stdio", false, "serve over stdin/stdout instead of HTTP")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the userdesk version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "userdesk %s\n", version)
		},
	}
}
