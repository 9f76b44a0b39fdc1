// Package cli implements the interactive Postscript command line client: a
// small REPL over the backend HTTP API for check-ins, status, assets and
// recipients.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/postscript/internal/client/api"
	"github.com/dmitrijs2005/postscript/internal/client/config"
)

type App struct {
	config *config.Config
	client *api.Client
	email  string
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(c *config.Config) (*App, error) {
	return &App{
		config: c,
		client: api.NewClient(c.ServerEndpointAddr, c.RequestTimeout),
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}, nil
}

func (a *App) isLoggedIn() bool {
	return a.client.HasSession()
}

func (a *App) getStatus() string {
	if a.email == "" {
		return ""
	}
	return fmt.Sprintf("(%s)", a.email)
}

// Run starts the REPL and blocks until exit or EOF.
func (a *App) Run(ctx context.Context) {

	fmt.Fprintln(a.out, "Welcome to Postscript CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Fprintf(a.out, "ps %s> ", a.getStatus())
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		if a.dispatch(ctx, cmd, args) {
			return
		}
	}
}

// dispatch executes one command. Returns true when the REPL should exit.
func (a *App) dispatch(ctx context.Context, cmd string, args []string) bool {
	switch cmd {
	case "help":
		if a.isLoggedIn() {
			fmt.Fprintln(a.out, "Available commands: checkin, status, config, add, (l)ist, show, recipients, addrecipient, exit")
		} else {
			fmt.Fprintln(a.out, "Available commands: login, exit")
		}

	case "login":
		a.runCommand(ctx, a.Login)

	case "checkin":
		a.runCommand(ctx, a.CheckIn)

	case "status":
		a.runCommand(ctx, a.Status)

	case "config":
		a.runCommand(ctx, a.UpdateConfig)

	case "add":
		a.runCommand(ctx, a.AddAsset)

	case "list", "l":
		a.runCommand(ctx, a.ListAssets)

	case "show":
		a.runCommand(ctx, func(ctx context.Context) error {
			id := ""
			if len(args) > 0 {
				id = args[0]
			}
			return a.ShowAsset(ctx, id)
		})

	case "recipients":
		a.runCommand(ctx, a.ListRecipients)

	case "addrecipient":
		a.runCommand(ctx, a.AddRecipient)

	case "exit", "quit":
		return true

	default:
		fmt.Fprintf(a.out, "Unknown command: %s\n", cmd)
	}
	return false
}

func (a *App) runCommand(ctx context.Context, fn func(context.Context) error) {
	if err := fn(ctx); err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
	}
}
