package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// shell is the surface the REPL needs. App satisfies it; tests can provide a
// lightweight stub.
type shell interface {
	getStatus() string
	helpText() string
	execLine(ctx context.Context, args []string) error
}

// runREPL starts a read–eval–print loop over reader.
//
// Each non-empty line is split into words and handed to execLine, which runs
// it as a command. "help" prints the commands available in the current state;
// "exit" and "quit" leave. The loop also ends on EOF or when ctx is done.
//
// Errors returned by execLine have already been shown to the user, so they
// do not stop the loop.
func runREPL(ctx context.Context, a shell, reader *bufio.Reader, w io.Writer) {
	for {
		if ctx.Err() != nil {
			return
		}
		fmt.Fprintf(w, "ulak (%s)> ", a.getStatus())

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			fmt.Fprintln(w)
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "help":
			fmt.Fprintln(w, a.helpText())
		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return
		default:
			_ = a.execLine(ctx, parts)
		}
	}
}
