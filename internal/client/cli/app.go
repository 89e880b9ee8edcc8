// Package cli implements the interactive terminal client. It wraps the REST
// API client in a read-eval-print loop with prompt-driven input.
package cli

import (
	"bufio"
	"context"
	"os"

	"github.com/dklimov/taskvault/internal/client/api"
	"github.com/dklimov/taskvault/internal/client/config"
)

type App struct {
	config *config.Config
	api    *api.Client
	email  string
	reader *bufio.Reader
}

func NewApp(c *config.Config) (*App, error) {
	apiClient := api.NewClient(c.ServerEndpointAddr, c.RequestTimeout)
	return &App{config: c, api: apiClient, reader: bufio.NewReader(os.Stdin)}, nil
}

func (a *App) isLoggedIn() bool {
	return a.api.HasToken()
}

// status feeds the REPL prompt with the signed-in identity.
func (a *App) status() string {
	if a.email == "" {
		return "anonymous"
	}
	return a.email
}

func (a *App) Run(ctx context.Context) {
	printlnFn("TaskVault CLI (type 'help' for commands)")
	runREPL(ctx, a, a.status, bufio.NewScanner(os.Stdin))
}
