package cli

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Todo(ctx context.Context) error
	New(ctx context.Context) error
	List(ctx context.Context) error
	Page(ctx context.Context, n int) error
	Next(ctx context.Context) error
	Prev(ctx context.Context) error
	Show(ctx context.Context, id string) error
	Edit(ctx context.Context, id string) error
}

const (
	helpLoggedOut = "Available commands: login, exit"
	helpLoggedIn  = "Available commands: whoami, todo, new, (l)ist, page N, next, prev, show ID, edit ID, logout, exit"
)

// runREPL starts a simple read-eval-print loop for the driver client.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Unknown commands are reported back to the
// user. The loop exits on EOF, on context cancellation, or when the user
// types "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help            show available commands
//	  - login           authenticate
//	  - exit | quit     leave the program
//
//	Logged in:
//	  - whoami          show the logged-in driver
//	  - todo            today's form: done, due or late
//	  - new             fill in today's status form
//	  - list | l        list submitted forms (current page)
//	  - page N          jump to page N
//	  - next | prev     move one page
//	  - show ID         show a submitted form
//	  - edit ID         edit a submitted form
//	  - logout          log out
//	  - exit | quit     leave the program
//
// Errors returned by command handlers are ignored here; handlers report
// their own errors.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("driver%s> ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if !a.isLoggedIn() && requiresLogin(cmd) {
			printlnFn("Please log in first.")
			continue
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "todo":
			_ = a.Todo(ctx)

		case "new":
			_ = a.New(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "page":
			if len(args) != 1 {
				printlnFn("Usage: page N")
				continue
			}
			n, err := strconv.Atoi(args[0])
			if err != nil {
				printlnFn("Page must be a number")
				continue
			}
			_ = a.Page(ctx, n)

		case "next":
			_ = a.Next(ctx)

		case "prev":
			_ = a.Prev(ctx)

		case "show", "edit":
			if len(args) != 1 {
				printlnFn(fmt.Sprintf("Usage: %s ID", cmd))
				continue
			}
			if cmd == "show" {
				_ = a.Show(ctx, args[0])
			} else {
				_ = a.Edit(ctx, args[0])
			}

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func requiresLogin(cmd string) bool {
	switch cmd {
	case "logout", "whoami", "todo", "new", "l", "list", "page", "next", "prev", "show", "edit":
		return true
	}
	return false
}
