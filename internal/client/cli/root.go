package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/ulak/internal/buildinfo"
	"github.com/dmitrijs2005/ulak/internal/client/config"
	"github.com/dmitrijs2005/ulak/internal/client/routing"
)

// errReported marks a failure that has already been shown to the user.
var errReported = errors.New("command failed")

// AppFactory builds the App once configuration is known.
type AppFactory func(ctx context.Context, cfg *config.Config) (*App, error)

type appGetter func(cmd *cobra.Command) (*App, error)

// Root is the top-level command. The App is built on first use, so help and
// completion never touch the database.
type Root struct {
	factory AppFactory
	app     *App
	cmd     *cobra.Command
}

func NewRoot(factory AppFactory) *Root {
	r := &Root{factory: factory}

	r.cmd = &cobra.Command{
		Use:           "ulak",
		Short:         "Send and receive files through a ulak server",
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		Version:       buildinfo.String(),
		RunE:          r.runShell,
	}
	config.RegisterFlags(r.cmd.PersistentFlags())

	addCommands(r.cmd, r.getApp)
	r.cmd.AddCommand(&cobra.Command{
		Use:   "shell",
		Short: "Start the interactive shell (default)",
		Args:  cobra.NoArgs,
		RunE:  r.runShell,
	})
	return r
}

func (r *Root) Command() *cobra.Command {
	return r.cmd
}

func (r *Root) getApp(cmd *cobra.Command) (*App, error) {
	if r.app != nil {
		return r.app, nil
	}
	cfg, err := config.LoadConfig(cmd.Flags())
	if err != nil {
		return nil, err
	}
	app, err := r.factory(cmd.Context(), cfg)
	if err != nil {
		return nil, err
	}
	r.app = app
	return app, nil
}

func (r *Root) runShell(cmd *cobra.Command, args []string) error {
	a, err := r.getApp(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	a.println("ulak shell (type 'help' for commands)")
	if err := a.health.Ping(ctx); err != nil {
		a.println("Warning:", userMessage(err))
	}
	runREPL(ctx, a, a.reader, a.out)
	return nil
}

// Close releases the App if one was built.
func (r *Root) Close() error {
	if r.app == nil {
		return nil
	}
	return r.app.Close()
}

// Execute runs the command line args and returns the process exit code.
func Execute(ctx context.Context, factory AppFactory, args []string, stderr io.Writer) int {
	r := NewRoot(factory)
	defer r.Close()

	cmd := r.Command()
	cmd.SetArgs(args)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	if !errors.Is(err, errReported) {
		fmt.Fprintln(stderr, "Error:", err)
	}
	return 1
}

// execLine runs one shell line through a fresh command tree bound to a.
func (a *App) execLine(ctx context.Context, args []string) error {
	root := &cobra.Command{
		Use:           "ulak",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	addCommands(root, func(*cobra.Command) (*App, error) { return a, nil })
	root.SetArgs(args)
	root.SetOut(a.out)
	root.SetErr(a.out)

	err := root.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, errReported) {
		a.println("Error:", err)
	}
	return err
}

type shellCommand struct {
	name, usage string
	public      bool
}

var shellCommands = []shellCommand{
	{"login", "log in", true},
	{"register", "create an account", true},
	{"forgot", "reset a forgotten password", true},
	{"home", "overview and recent transfers", false},
	{"inbox", "transfers waiting for you and received ones", false},
	{"send", "send files: send [--user ID | --ip ADDR] FILE...", false},
	{"accept", "accept a pending transfer: accept ID", false},
	{"reject", "reject a pending transfer: reject ID", false},
	{"cancel", "cancel a transfer you sent: cancel ID", false},
	{"download", "download a received file: download ID [--name NAME]", false},
	{"passwd", "change your password", false},
	{"whoami", "show the current login", true},
	{"logout", "log out", false},
}

func (a *App) helpText() string {
	authed := a.store.State().Authenticated()

	var b strings.Builder
	b.WriteString("Available commands:\n")
	for _, c := range shellCommands {
		if !authed && !c.public {
			continue
		}
		fmt.Fprintf(&b, "  %-9s %s\n", c.name, c.usage)
	}
	b.WriteString("  exit      leave the shell")
	return b.String()
}

type handler func(a *App, ctx context.Context, cmd *cobra.Command, args []string) error

// run wraps h with the App lookup, the route guard for path and the
// translation of failures into user messages. An empty path is not guarded.
func run(get appGetter, path string, h handler) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := get(cmd)
		if err != nil {
			return err
		}
		return a.guarded(cmd.Context(), path, func(ctx context.Context) error {
			return h(a, ctx, cmd, args)
		})
	}
}

func (a *App) guarded(ctx context.Context, path string, fn func(ctx context.Context) error) error {
	if path != "" {
		if d := routing.Guard(a.store.State(), path); d.Action != routing.ActionStay {
			a.println(guardMessage(d))
			return errReported
		}
	}
	if err := fn(ctx); err != nil {
		a.log.Debug(ctx, "command failed", "path", path, "error", err)
		a.println(userMessage(err))
		return errReported
	}
	return nil
}

func addCommands(root *cobra.Command, get appGetter) {
	root.AddCommand(
		loginCommand(get),
		logoutCommand(get),
		registerCommand(get),
		forgotCommand(get),
		passwdCommand(get),
		whoamiCommand(get),
		homeCommand(get),
		inboxCommand(get),
		sendCommand(get),
		acceptCommand(get),
		rejectCommand(get),
		cancelCommand(get),
		downloadCommand(get),
	)
}
