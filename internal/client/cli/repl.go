package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Signup(ctx context.Context) error
	Signin(ctx context.Context) error
	Signout(ctx context.Context) error
	Add(ctx context.Context) error
	List(ctx context.Context) error
	Show(ctx context.Context, id string) error
	Edit(ctx context.Context, id string) error
	Toggle(ctx context.Context, id string) error
	Remove(ctx context.Context, id string) error
}

// runREPL starts a simple read-eval-print loop for the TaskVault CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Commands taking a task ID expect it as the second token; the handlers
// prompt interactively for everything else. Any errors returned by command
// handlers are ignored here; handlers report their own errors. This keeps
// the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("tv> %s > ", statusFn()))
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

		needID := func() (string, bool) {
			if len(args) == 0 {
				printlnFn("Usage:", cmd, "<id>")
				return "", false
			}
			return args[0], true
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: (l)ist, add, show <id>, edit <id>, toggle <id>, rm <id>, signout, exit")
			} else {
				printlnFn("Available commands: signup, signin, exit")
			}

		case "signup", "register":
			_ = a.Signup(ctx)

		case "signin", "login":
			_ = a.Signin(ctx)

		case "signout", "logout":
			_ = a.Signout(ctx)

		case "add":
			_ = a.Add(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "show":
			if id, ok := needID(); ok {
				_ = a.Show(ctx, id)
			}

		case "edit":
			if id, ok := needID(); ok {
				_ = a.Edit(ctx, id)
			}

		case "toggle", "done":
			if id, ok := needID(); ok {
				_ = a.Toggle(ctx, id)
			}

		case "rm", "delete":
			if id, ok := needID(); ok {
				_ = a.Remove(ctx, id)
			}

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
