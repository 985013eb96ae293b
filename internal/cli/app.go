// Package cli implements the MemberHub terminal client. It wires the
// file vault, session store, REST client and lifecycle controller
// together and dispatches the user's subcommand.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/memberhub/memberhub/internal/portalapi"
	"github.com/memberhub/memberhub/internal/session"
)

const defaultServerURL = "http://localhost:5001"

// App is the assembled client application.
type App struct {
	store      *session.Store
	controller *session.Controller
	client     *portalapi.Client
	reader     *bufio.Reader
	out        io.Writer
	logger     *slog.Logger
}

// NewApp builds the client. Server URL and token location come from
// MEMBERHUB_SERVER and MEMBERHUB_TOKEN_FILE, with sensible defaults.
func NewApp() (*App, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	tokenPath := os.Getenv("MEMBERHUB_TOKEN_FILE")
	if tokenPath == "" {
		var err error
		tokenPath, err = session.DefaultVaultPath()
		if err != nil {
			return nil, err
		}
	}

	serverURL := os.Getenv("MEMBERHUB_SERVER")
	if serverURL == "" {
		serverURL = defaultServerURL
	}

	store := session.NewStore(session.NewFileVault(tokenPath))
	client := portalapi.New(serverURL, func() string {
		token, err := store.PersistedCredential()
		if err != nil {
			return ""
		}
		return token
	})
	controller := session.NewController(client, store, session.WithLogger(logger))

	return &App{
		store:      store,
		controller: controller,
		client:     client,
		reader:     bufio.NewReader(os.Stdin),
		out:        os.Stdout,
		logger:     logger,
	}, nil
}

// Run validates any persisted session, then dispatches the subcommand.
func (a *App) Run(ctx context.Context, args []string) error {
	// Render lifecycle transitions as they happen; the view layer only
	// ever observes the store, it never drives it.
	unsubscribe := a.store.Subscribe(func(snap session.Snapshot) {
		if snap.Phase == session.PhaseAuthenticated && snap.Identity != nil {
			fmt.Fprintf(a.out, "session: %s (%s, %s)\n", snap.Identity.UserName, snap.Identity.Subject, snap.Identity.Role)
		}
	})
	defer unsubscribe()

	// Every invocation is an "application start": settle the persisted
	// credential before doing anything identity-dependent.
	a.controller.Startup(ctx)

	if len(args) == 0 {
		a.usage()
		return nil
	}

	switch args[0] {
	case "login":
		return a.Login(ctx)
	case "logout":
		return a.Logout()
	case "whoami":
		return a.Whoami()
	case "members":
		return a.Members(ctx)
	case "update":
		return a.Update(ctx, args[1:])
	case "add":
		return a.Add(ctx, args[1:])
	default:
		a.usage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func (a *App) usage() {
	fmt.Fprintln(a.out, `usage: portal <command>

commands:
  login        authenticate with member ID and password
  logout       end the current session
  whoami       show the logged-in identity
  members      list the members of your group
  update       edit a member record (admin)
  add          create a member (admin)`)
}
