package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface the REPL drives. App implements it;
// tests use a stub.
type execIface interface {
	isLoggedIn() bool
	SignIn(ctx context.Context) error
	SignUp(ctx context.Context) error
	SignOut(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Go(ctx context.Context, args []string) error
	List(ctx context.Context) error
	Add(ctx context.Context, args []string) error
	Toggle(ctx context.Context, args []string) error
	Rename(ctx context.Context, args []string) error
	Describe(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
}

const (
	helpAnonymous = "Available commands: signin, signup, go <page>, exit"
	helpSignedIn  = "Available commands: (l)ist, add [title], done <n>, rename <n> [title], describe <n>, delete <n>, go <page>, whoami, signout, exit"
)

// runREPL reads one command per line from reader and dispatches it to a. It
// returns on EOF or "exit"/"quit". Commands prompt on the same reader, so
// nothing here may buffer past the end of the current line. Command errors
// have already been shown to the user by the handlers, so they are dropped
// here.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, out io.Writer) {
	say := func(args ...any) { fmt.Fprintln(out, args...) }

	for {
		say(statusFn())
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		last := err != nil

		parts := strings.Fields(line)
		if len(parts) == 0 {
			if last {
				return
			}
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				say(helpSignedIn)
			} else {
				say(helpAnonymous)
			}

		case "signin", "login":
			_ = a.SignIn(ctx)

		case "signup", "register":
			_ = a.SignUp(ctx)

		case "signout", "logout":
			_ = a.SignOut(ctx)

		case "whoami", "me":
			_ = a.WhoAmI(ctx)

		case "go":
			_ = a.Go(ctx, args)

		case "l", "list":
			_ = a.List(ctx)

		case "add":
			_ = a.Add(ctx, args)

		case "done", "toggle":
			_ = a.Toggle(ctx, args)

		case "rename":
			_ = a.Rename(ctx, args)

		case "describe":
			_ = a.Describe(ctx, args)

		case "delete", "rm":
			_ = a.Delete(ctx, args)

		case "exit", "quit":
			say("Bye!")
			return

		default:
			say("Unknown command:", cmd)
		}

		if last || ctx.Err() != nil {
			return
		}
	}
}
