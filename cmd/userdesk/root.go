package main

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dusk-indust/userdesk/internal/config"
	"github.com/dusk-indust/userdesk/internal/gateway"
	"github.com/dusk-indust/userdesk/internal/logging"
	"github.com/dusk-indust/userdesk/internal/session"
	"github.com/dusk-indust/userdesk/internal/store"
)

// rootFlags are the persistent flags shared by every command.
type rootFlags struct {
	ConfigPath string
	BaseURL    string
	Backend    string
	Verbose    bool
}

// app carries what a command needs once flags are parsed.
type app struct {
	flags rootFlags
	cfg   *config.Config
	log   *zap.Logger

	store store.Store
	sess  *session.Session
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "userdesk",
		Short: "Browse and manage users of a remote users API",
		Long: `userdesk fetches users from a JSON REST API and lets you search, add,
edit and delete them from the command line, an interactive shell, a local
HTTP API or an MCP server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.configure()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.ConfigPath, "config", "", "path to a userdesk.yml config file")
	pf.StringVar(&a.flags.BaseURL, "base-url", "", "users API base URL")
	pf.StringVar(&a.flags.Backend, "backend", "", "collection backend: memory or kuzu")
	pf.BoolVar(&a.flags.Verbose, "verbose", false, "enable debug logging")

	root.AddCommand(
		newListCmd(a),
		newShowCmd(a),
		newAddCmd(a),
		newEditCmd(a),
		newDeleteCmd(a),
		newShellCmd(a),
		newServeCmd(a),
		newMCPCmd(a),
		newVersionCmd(),
	)
	return root
}

// configure resolves configuration and applies flag overrides.
func (a *app) configure() error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	cfg, err := config.Resolve(wd, a.flags.ConfigPath)
	if err != nil {
		return err
	}
	if a.flags.BaseURL != "" {
		cfg.Gateway.BaseURL = a.flags.BaseURL
	}
	if a.flags.Backend != "" {
		cfg.Store.Backend = a.flags.Backend
	}
	if a.flags.Verbose {
		cfg.Verbose = true
	}
	a.cfg = cfg
	a.log = logging.New(cfg.Verbose)
	return nil
}

// open builds the store, gateway and session, then loads the user list.
// A failed load is not an error here: the session records it and every
// view renders it.
func (a *app) open(ctx context.Context) (*session.Session, error) {
	st, err := store.Open(a.cfg.Store.Backend)
	if err != nil {
		return nil, err
	}
	gw := gateway.NewHTTPClient(
		gateway.WithBaseURL(a.cfg.Gateway.BaseURL),
		gateway.WithTimeout(a.cfg.Gateway.Timeout),
		gateway.WithRateLimit(a.cfg.Gateway.RateLimit),
		gateway.WithLogger(a.log),
	)
	a.store = st
	a.sess = session.New(st, gw,
		session.WithLogger(a.log),
		session.WithRemoteEdits(a.cfg.Gateway.SyncEdits),
	)

	a.log.Debug("loading users",
		zap.String("base_url", gw.BaseURL()),
		zap.String("backend", a.cfg.Store.Backend),
	)
	res := a.sess.Load(ctx)
	if errors.Is(res.Err, session.ErrClosed) {
		return nil, res.Err
	}
	return a.sess, nil
}

// openLoaded is open for commands that cannot do anything useful without
// the user list.
func (a *app) openLoaded(ctx context.Context) (*session.Session, error) {
	sess, err := a.open(ctx)
	if err != nil {
		return nil, err
	}
	if msg := sess.LoadError(); msg != "" {
		return nil, errors.New(msg)
	}
	return sess, nil
}

// close releases what open built. Safe to call more than once.
func (a *app) close() {
	if a.sess != nil {
		a.sess.Close()
		a.sess = nil
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn("close store", zap.Error(err))
		}
		a.store = nil
	}
	_ = a.log.Sync()
}

// resultErr turns a failed result into a command error carrying its message.
func resultErr(res session.Result) error {
	if res.OK() {
		return nil
	}
	return errors.New(res.Message())
}
