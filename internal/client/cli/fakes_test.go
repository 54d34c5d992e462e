package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/dmitrijs2005/ulak/internal/client/config"
	"github.com/dmitrijs2005/ulak/internal/client/models"
	"github.com/dmitrijs2005/ulak/internal/client/transfers"
	"github.com/dmitrijs2005/ulak/internal/logging"
	"github.com/fatih/color"
)

// ------------ helpers ------------

// readerFromLines returns a reader yielding each line terminated by a newline.
func readerFromLines(lines ...string) *bufio.Reader {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l + "\n")
	}
	return bufioReader(b.String())
}

func bufioReader(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

// stubPasswords makes getPassword return the given values in order.
func stubPasswords(t *testing.T, values ...string) {
	t.Helper()
	old := readPassword
	t.Cleanup(func() { readPassword = old })

	i := 0
	readPassword = func(int) ([]byte, error) {
		if i >= len(values) {
			return nil, io.EOF
		}
		v := values[i]
		i++
		return []byte(v), nil
	}
}

func noColor(t *testing.T) {
	t.Helper()
	old := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = old })
}

type testEnv struct {
	app       *App
	out       *bytes.Buffer
	store     *fakeStore
	transfers *fakeTransfers
	health    *fakePinger
	sink      *memSink
}

func newTestEnv(t *testing.T, st models.AuthState, input ...string) *testEnv {
	t.Helper()

	noColor(t)

	cfg := &config.Config{}
	cfg.LoadDefaults()

	env := &testEnv{
		out:       &bytes.Buffer{},
		store:     &fakeStore{state: st},
		transfers: &fakeTransfers{},
		health:    &fakePinger{},
		sink:      &memSink{},
	}
	env.app = newApp(cfg, env.store, env.transfers, env.health, env.sink, logging.Nop(), readerFromLines(input...), env.out)
	return env
}

func (e *testEnv) exec(args ...string) error {
	return e.app.execLine(context.Background(), args)
}

// ------------ fakes ------------

type fakeStore struct {
	state models.AuthState
	subs  []func(models.AuthState)

	loginEmail, loginPassword string
	loginState                models.AuthState
	loginErr                  error

	logoutCalled bool
	logoutErr    error

	changeArgs []string
	changeErr  error

	registered  *models.RegisterRequest
	registerErr error

	question    string
	forgotEmail string
	forgotAns   string
	newPassword string
	forgotErr   error
}

func (f *fakeStore) publish(st models.AuthState) {
	f.state = st
	for _, fn := range f.subs {
		fn(st)
	}
}

func (f *fakeStore) State() models.AuthState             { return f.state }
func (f *fakeStore) Subscribe(fn func(models.AuthState)) { f.subs = append(f.subs, fn) }

func (f *fakeStore) Login(ctx context.Context, email, password string) (string, error) {
	f.loginEmail, f.loginPassword = email, password
	if f.loginErr != nil {
		return "", f.loginErr
	}
	f.publish(f.loginState)
	return f.loginState.AccessToken, nil
}

func (f *fakeStore) Logout(ctx context.Context) error {
	f.logoutCalled = true
	if f.logoutErr != nil {
		return f.logoutErr
	}
	f.publish(models.AuthState{})
	return nil
}

func (f *fakeStore) ChangePassword(ctx context.Context, oldPassword, newPassword, newPasswordConfirm string) error {
	f.changeArgs = []string{oldPassword, newPassword, newPasswordConfirm}
	if f.changeErr != nil {
		return f.changeErr
	}
	st := f.state
	st.MustChangePassword = false
	f.publish(st)
	return nil
}

func (f *fakeStore) Register(ctx context.Context, req models.RegisterRequest) error {
	f.registered = &req
	return f.registerErr
}

func (f *fakeStore) ForgotQuestion(ctx context.Context, email string) (string, error) {
	f.forgotEmail = email
	return f.question, f.forgotErr
}

func (f *fakeStore) ForgotReset(ctx context.Context, email, securityAnswer string) (string, error) {
	f.forgotAns = securityAnswer
	return f.newPassword, f.forgotErr
}

type fakeTransfers struct {
	items      []models.TransferSession
	refreshErr error
	refreshes  int

	sendReq transfers.SendRequest
	sendIDs []string
	sendErr error

	calls     []string
	actionErr error

	downloadName string
	downloadLoc  string
	downloadErr  error
}

func (f *fakeTransfers) Refresh(ctx context.Context) error {
	f.refreshes++
	return f.refreshErr
}

func (f *fakeTransfers) View(userID string) transfers.View {
	return transfers.Compute(f.items, userID)
}

func (f *fakeTransfers) Find(id string) (models.TransferSession, bool) {
	for _, t := range f.items {
		if t.ID == id {
			return t, true
		}
	}
	return models.TransferSession{}, false
}

func (f *fakeTransfers) Send(ctx context.Context, req transfers.SendRequest) ([]string, error) {
	f.sendReq = req
	return f.sendIDs, f.sendErr
}

func (f *fakeTransfers) action(name, id string) error {
	f.calls = append(f.calls, name+":"+id)
	return f.actionErr
}

func (f *fakeTransfers) Accept(ctx context.Context, id string) error { return f.action("accept", id) }
func (f *fakeTransfers) Reject(ctx context.Context, id string) error { return f.action("reject", id) }
func (f *fakeTransfers) Cancel(ctx context.Context, id string) error { return f.action("cancel", id) }

func (f *fakeTransfers) Download(ctx context.Context, id, fileName string, sink transfers.Sink) (string, error) {
	f.calls = append(f.calls, "download:"+id)
	f.downloadName = fileName
	return f.downloadLoc, f.downloadErr
}

type fakePinger struct{ err error }

func (f *fakePinger) Ping(ctx context.Context) error { return f.err }

type memSink struct{}

func (memSink) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	return "mem://" + name, nil
}
