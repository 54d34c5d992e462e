package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/dmitrijs2005/ulak/internal/client/client"
	"github.com/dmitrijs2005/ulak/internal/client/config"
	"github.com/dmitrijs2005/ulak/internal/client/models"
	"github.com/dmitrijs2005/ulak/internal/client/session"
	"github.com/dmitrijs2005/ulak/internal/client/sink"
	"github.com/dmitrijs2005/ulak/internal/client/transfers"
	"github.com/dmitrijs2005/ulak/internal/logging"
)

// authStore is the part of session.Store the commands use.
type authStore interface {
	State() models.AuthState
	Subscribe(fn func(models.AuthState))
	Login(ctx context.Context, email, password string) (string, error)
	Logout(ctx context.Context) error
	ChangePassword(ctx context.Context, oldPassword, newPassword, newPasswordConfirm string) error
	Register(ctx context.Context, req models.RegisterRequest) error
	ForgotQuestion(ctx context.Context, email string) (string, error)
	ForgotReset(ctx context.Context, email, securityAnswer string) (string, error)
}

// transferService is the part of transfers.Service the commands use.
type transferService interface {
	Refresh(ctx context.Context) error
	View(userID string) transfers.View
	Find(id string) (models.TransferSession, bool)
	Send(ctx context.Context, req transfers.SendRequest) ([]string, error)
	Accept(ctx context.Context, id string) error
	Reject(ctx context.Context, id string) error
	Cancel(ctx context.Context, id string) error
	Download(ctx context.Context, id, fileName string, sink transfers.Sink) (string, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

// App holds everything the commands need. One App serves a whole process,
// including every line typed into the shell.
type App struct {
	config    *config.Config
	store     authStore
	transfers transferService
	health    pinger
	sink      transfers.Sink
	log       logging.Logger

	reader *bufio.Reader
	out    io.Writer

	// status is the shell prompt status, kept current by a store subscription.
	status atomic.Value

	closers []io.Closer
}

// NewApp opens the local database, builds the backend client and the
// services on top of it and loads the persisted auth state.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	log, err := logging.New(os.Stderr, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	db, err := client.InitDatabase(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	var store *session.Store
	api, err := client.NewHTTPClient(cfg.ServerURL, cfg.APIPrefix, cfg.RequestTimeout,
		client.TokenSourceFunc(func() string { return store.Token() }))
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	store = session.NewStore(db, api, log)
	if err := store.Init(ctx); err != nil {
		log.Warn(ctx, "could not load saved login", "error", err)
	}

	dst, err := sink.NewFromConfig(ctx, cfg.Sink)
	if err != nil {
		_ = api.Close()
		_ = db.Close()
		return nil, err
	}

	a := newApp(cfg, store, transfers.NewService(api, log, cfg.ListLimit), api, dst, log,
		bufio.NewReader(os.Stdin), os.Stdout)
	a.closers = []io.Closer{api, db}
	return a, nil
}

func newApp(cfg *config.Config, store authStore, svc transferService, health pinger, dst transfers.Sink,
	log logging.Logger, reader *bufio.Reader, out io.Writer) *App {
	a := &App{
		config:    cfg,
		store:     store,
		transfers: svc,
		health:    health,
		sink:      dst,
		log:       log,
		reader:    reader,
		out:       out,
	}
	a.status.Store(statusFor(store.State()))
	store.Subscribe(func(st models.AuthState) { a.status.Store(statusFor(st)) })
	return a
}

// Close releases the backend client and the database.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func statusFor(st models.AuthState) string {
	switch {
	case st.IsLoading:
		return "loading"
	case !st.Authenticated():
		return "guest"
	case st.MustChangePassword:
		return shortID(st.UserID) + " !passwd"
	default:
		return shortID(st.UserID)
	}
}

func (a *App) getStatus() string {
	s, _ := a.status.Load().(string)
	return s
}

func shortID(id string) string {
	if id == "" {
		return "?"
	}
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
