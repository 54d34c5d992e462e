package session

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/dmitrijs2005/ulak/internal/client/client"
	"github.com/dmitrijs2005/ulak/internal/client/models"
	"github.com/dmitrijs2005/ulak/internal/client/routing"
	"github.com/dmitrijs2005/ulak/internal/common"
	"github.com/dmitrijs2005/ulak/internal/logging"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- helpers ----

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "ulak.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func tokenFor(t *testing.T, sub string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": sub}).SignedString([]byte("secretKey"))
	require.NoError(t, err)
	return token
}

func getMeta(t *testing.T, db *sql.DB, key string) (string, bool) {
	t.Helper()
	var v []byte
	err := db.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false
	}
	require.NoError(t, err)
	return string(v), true
}

// ---- fake API ----

type fakeAuthAPI struct {
	mu sync.Mutex

	loginResp *models.LoginResponse
	loginErr  error
	onLogin   func()

	changeErr error

	registerErr error
	lastRegister models.RegisterRequest

	question string
	newPass  string

	loginCalls  int
	changeCalls int
}

func (f *fakeAuthAPI) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	f.mu.Lock()
	f.loginCalls++
	resp, err, hook := f.loginResp, f.loginErr, f.onLogin
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	return resp, err
}

func (f *fakeAuthAPI) Register(ctx context.Context, req models.RegisterRequest) error {
	f.lastRegister = req
	return f.registerErr
}

func (f *fakeAuthAPI) ForgotQuestion(ctx context.Context, email string) (string, error) {
	return f.question, nil
}

func (f *fakeAuthAPI) ForgotReset(ctx context.Context, email, securityAnswer string) (string, error) {
	return f.newPass, nil
}

func (f *fakeAuthAPI) ChangePassword(ctx context.Context, oldPassword, newPassword, newPasswordConfirm string) error {
	f.changeCalls++
	return f.changeErr
}

func newStore(t *testing.T, api *fakeAuthAPI) (*Store, *sql.DB) {
	t.Helper()
	db := setupDB(t)
	s := NewStore(db, api, logging.Nop())
	require.NoError(t, s.Init(context.Background()))
	return s, db
}

// ---- tests ----

func TestNewStore_StartsLoadingUntilInit(t *testing.T) {
	db := setupDB(t)
	s := NewStore(db, &fakeAuthAPI{}, logging.Nop())

	assert.True(t, s.State().IsLoading)

	require.NoError(t, s.Init(context.Background()))
	assert.Equal(t, models.AuthState{}, s.State())
}

func TestInit_RestoresPersistedState(t *testing.T) {
	db := setupDB(t)
	token := tokenFor(t, "u1")
	_, err := db.Exec(`INSERT INTO metadata(key, value) VALUES (?, ?), (?, ?)`,
		common.AccessTokenKey, []byte(token), common.MustChangePasswordKey, []byte("true"))
	require.NoError(t, err)

	s := NewStore(db, &fakeAuthAPI{}, logging.Nop())
	require.NoError(t, s.Init(context.Background()))

	assert.Equal(t, models.AuthState{AccessToken: token, UserID: "u1", MustChangePassword: true}, s.State())
	assert.Equal(t, token, s.Token())
}

func TestInit_MalformedTokenHasNoUserID(t *testing.T) {
	db := setupDB(t)
	_, err := db.Exec(`INSERT INTO metadata(key, value) VALUES (?, ?)`, common.AccessTokenKey, []byte("opaque"))
	require.NoError(t, err)

	s := NewStore(db, &fakeAuthAPI{}, logging.Nop())
	require.NoError(t, s.Init(context.Background()))

	st := s.State()
	assert.Equal(t, "opaque", st.AccessToken)
	assert.Empty(t, st.UserID)
}

func TestInit_StorageErrorEndsLoading(t *testing.T) {
	db := setupDB(t)
	s := NewStore(db, &fakeAuthAPI{}, logging.Nop())
	require.NoError(t, db.Close())

	require.Error(t, s.Init(context.Background()))
	assert.False(t, s.State().IsLoading)
	assert.False(t, s.State().Authenticated())
}

func TestLogin_Success_SetsStateAndPersists(t *testing.T) {
	token := tokenFor(t, "u1")
	api := &fakeAuthAPI{loginResp: &models.LoginResponse{AccessToken: token, MustChangePassword: true}}
	s, db := newStore(t, api)

	got, err := s.Login(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)
	assert.Equal(t, token, got)

	assert.Equal(t, models.AuthState{AccessToken: token, UserID: "u1", MustChangePassword: true}, s.State())

	v, ok := getMeta(t, db, common.AccessTokenKey)
	require.True(t, ok)
	assert.Equal(t, token, v)
	v, ok = getMeta(t, db, common.MustChangePasswordKey)
	require.True(t, ok)
	assert.Equal(t, "true", v)

	// a fresh store over the same database sees the same state
	reloaded := NewStore(db, api, logging.Nop())
	require.NoError(t, reloaded.Init(context.Background()))
	assert.Equal(t, s.State(), reloaded.State())
}

func TestLogin_IsLoadingWhileInFlight(t *testing.T) {
	api := &fakeAuthAPI{loginResp: &models.LoginResponse{AccessToken: tokenFor(t, "u1")}}
	s, _ := newStore(t, api)

	var during models.AuthState
	api.onLogin = func() { during = s.State() }

	_, err := s.Login(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)

	assert.True(t, during.IsLoading)
	assert.False(t, s.State().IsLoading)
}

func TestLogin_Failure_KeepsPriorStateAndEndsLoading(t *testing.T) {
	first := tokenFor(t, "u1")
	api := &fakeAuthAPI{loginResp: &models.LoginResponse{AccessToken: first}}
	s, db := newStore(t, api)

	_, err := s.Login(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)
	before := s.State()

	api.loginResp = nil
	api.loginErr = common.ErrUnauthorized

	var during models.AuthState
	api.onLogin = func() { during = s.State() }

	_, err = s.Login(context.Background(), "a@b.c", "bad")
	require.ErrorIs(t, err, common.ErrUnauthorized)

	assert.True(t, during.IsLoading)
	assert.Equal(t, before, s.State())
	v, _ := getMeta(t, db, common.AccessTokenKey)
	assert.Equal(t, first, v)
}

func TestLogin_StorageFailure_LeavesStateUntouched(t *testing.T) {
	api := &fakeAuthAPI{loginResp: &models.LoginResponse{AccessToken: tokenFor(t, "u1")}}
	s, db := newStore(t, api)
	require.NoError(t, db.Close())

	_, err := s.Login(context.Background(), "a@b.c", "pw")
	require.Error(t, err)
	assert.Equal(t, models.AuthState{}, s.State())
}

func TestLogout_ClearsStateAndStorage(t *testing.T) {
	api := &fakeAuthAPI{loginResp: &models.LoginResponse{AccessToken: tokenFor(t, "u1"), MustChangePassword: true}}
	s, db := newStore(t, api)

	_, err := s.Login(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)

	require.NoError(t, s.Logout(context.Background()))

	assert.Equal(t, models.AuthState{}, s.State())
	assert.Empty(t, s.Token())
	_, ok := getMeta(t, db, common.AccessTokenKey)
	assert.False(t, ok)
	_, ok = getMeta(t, db, common.MustChangePasswordKey)
	assert.False(t, ok)
}

func TestChangePassword_ClearsFlagAndStopsRedirect(t *testing.T) {
	api := &fakeAuthAPI{loginResp: &models.LoginResponse{AccessToken: tokenFor(t, "u1"), MustChangePassword: true}}
	s, db := newStore(t, api)
	_, err := s.Login(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)

	assert.Equal(t, routing.Redirect(routing.PathSettings), routing.Guard(s.State(), routing.PathSend))

	require.NoError(t, s.ChangePassword(context.Background(), "pw", "new", "new"))

	assert.False(t, s.State().MustChangePassword)
	assert.True(t, s.State().Authenticated())
	v, _ := getMeta(t, db, common.MustChangePasswordKey)
	assert.Equal(t, "false", v)
	assert.Equal(t, routing.Stay(), routing.Guard(s.State(), routing.PathSend))
}

func TestChangePassword_FailureKeepsFlag(t *testing.T) {
	api := &fakeAuthAPI{loginResp: &models.LoginResponse{AccessToken: tokenFor(t, "u1"), MustChangePassword: true}}
	s, _ := newStore(t, api)
	_, err := s.Login(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)

	api.changeErr = common.ErrValidation
	require.ErrorIs(t, s.ChangePassword(context.Background(), "pw", "a", "b"), common.ErrValidation)
	assert.True(t, s.State().MustChangePassword)
}

func TestSetToken(t *testing.T) {
	s, db := newStore(t, &fakeAuthAPI{})
	ctx := context.Background()

	token := tokenFor(t, "u9")
	require.NoError(t, s.SetToken(ctx, token))
	assert.Equal(t, "u9", s.State().UserID)
	v, _ := getMeta(t, db, common.AccessTokenKey)
	assert.Equal(t, token, v)

	require.NoError(t, s.SetToken(ctx, ""))
	assert.Equal(t, models.AuthState{}, s.State())
	_, ok := getMeta(t, db, common.AccessTokenKey)
	assert.False(t, ok)
}

func TestSubscribe_NotifiedOnTransitions(t *testing.T) {
	api := &fakeAuthAPI{loginResp: &models.LoginResponse{AccessToken: tokenFor(t, "u1")}}
	s, _ := newStore(t, api)

	var seen []models.AuthState
	s.Subscribe(func(st models.AuthState) { seen = append(seen, st) })

	_, err := s.Login(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)
	require.NoError(t, s.Logout(context.Background()))

	require.Len(t, seen, 3)
	assert.True(t, seen[0].IsLoading)
	assert.Equal(t, "u1", seen[1].UserID)
	assert.Equal(t, models.AuthState{}, seen[2])
}

func TestState_NeverPartiallyUpdated(t *testing.T) {
	api := &fakeAuthAPI{loginResp: &models.LoginResponse{AccessToken: tokenFor(t, "u1")}}
	s, _ := newStore(t, api)
	ctx := context.Background()

	done := make(chan struct{})
	var readers sync.WaitGroup
	for i := 0; i < 4; i++ {
		readers.Add(1)
		go func() {
			defer readers.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				st := s.State()
				if (st.AccessToken == "") != (st.UserID == "") {
					t.Errorf("partial state observed: %+v", st)
					return
				}
			}
		}()
	}

	for i := 0; i < 20; i++ {
		_, err := s.Login(ctx, "a@b.c", "pw")
		require.NoError(t, err)
		require.NoError(t, s.Logout(ctx))
	}
	close(done)
	readers.Wait()
}

func TestPassThroughCalls(t *testing.T) {
	api := &fakeAuthAPI{question: "first pet?", newPass: "Tmp-1"}
	s, _ := newStore(t, api)
	ctx := context.Background()

	req := models.RegisterRequest{Email: "a@b.c", Password: "x", PasswordConfirm: "x"}
	require.NoError(t, s.Register(ctx, req))
	assert.Equal(t, req, api.lastRegister)

	q, err := s.ForgotQuestion(ctx, "a@b.c")
	require.NoError(t, err)
	assert.Equal(t, "first pet?", q)

	pw, err := s.ForgotReset(ctx, "a@b.c", "rex")
	require.NoError(t, err)
	assert.Equal(t, "Tmp-1", pw)

	assert.False(t, s.State().Authenticated(), "registration does not log in")
}
