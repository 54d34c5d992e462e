package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeShell struct {
	status string
	lines  [][]string
	err    error
}

func (f *fakeShell) getStatus() string { return f.status }
func (f *fakeShell) helpText() string  { return "HELP" }
func (f *fakeShell) execLine(ctx context.Context, args []string) error {
	f.lines = append(f.lines, args)
	return f.err
}

func TestRunREPL_DispatchesLinesUntilExit(t *testing.T) {
	sh := &fakeShell{status: "guest"}
	var out bytes.Buffer

	runREPL(context.Background(), sh, readerFromLines("login -e a@b.c", "", "   ", "inbox", "exit", "home"), &out)

	assert.Equal(t, [][]string{{"login", "-e", "a@b.c"}, {"inbox"}}, sh.lines)
	assert.Contains(t, out.String(), "ulak (guest)> ")
	assert.Contains(t, out.String(), "Bye!")
}

func TestRunREPL_Help(t *testing.T) {
	sh := &fakeShell{status: "guest"}
	var out bytes.Buffer

	runREPL(context.Background(), sh, readerFromLines("help", "quit"), &out)

	assert.Empty(t, sh.lines)
	assert.Contains(t, out.String(), "HELP\n")
}

func TestRunREPL_ErrorsDoNotStopTheLoop(t *testing.T) {
	sh := &fakeShell{status: "abc", err: errors.New("boom")}
	var out bytes.Buffer

	runREPL(context.Background(), sh, readerFromLines("accept 1", "accept 2", "exit"), &out)

	assert.Len(t, sh.lines, 2)
}

func TestRunREPL_EOF(t *testing.T) {
	sh := &fakeShell{status: "guest"}
	var out bytes.Buffer

	// last line without a newline is still executed
	runREPL(context.Background(), sh, bufioReader("home\ninbox"), &out)

	assert.Equal(t, [][]string{{"home"}, {"inbox"}}, sh.lines)
	assert.NotContains(t, out.String(), "Bye!")
}

func TestRunREPL_ContextDone(t *testing.T) {
	sh := &fakeShell{status: "guest"}
	var out bytes.Buffer
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runREPL(ctx, sh, readerFromLines("home"), &out)

	assert.Empty(t, sh.lines)
	assert.False(t, strings.Contains(out.String(), "ulak ("))
}
