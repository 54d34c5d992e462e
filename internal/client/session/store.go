// Package session holds the client's authentication state: the bearer
// credential, the identity derived from it and the must-change-password flag.
//
// A Store is created once per process and handed to whoever needs it. It is
// the only writer of the state; readers take snapshots with State.
package session

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/ulak/internal/client/client"
	"github.com/dmitrijs2005/ulak/internal/client/identity"
	"github.com/dmitrijs2005/ulak/internal/client/models"
	"github.com/dmitrijs2005/ulak/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/ulak/internal/common"
	"github.com/dmitrijs2005/ulak/internal/dbx"
	"github.com/dmitrijs2005/ulak/internal/logging"
)

// Store is the Session/Token Store.
//
// Every transition publishes a complete AuthState under the mutex, so a
// reader never sees a token without its derived user id.
type Store struct {
	db  *sql.DB
	api client.AuthAPI
	log logging.Logger

	mu          sync.RWMutex
	state       models.AuthState
	subscribers []func(models.AuthState)
}

// NewStore returns a store in the loading state. Call Init before use.
func NewStore(db *sql.DB, api client.AuthAPI, log logging.Logger) *Store {
	return &Store{
		db:    db,
		api:   api,
		log:   log,
		state: models.AuthState{IsLoading: true},
	}
}

func (s *Store) repo(db dbx.DBTX) metadata.Repository {
	return metadata.NewSQLiteRepository(db)
}

// stateFor builds the state implied by a credential and flag.
func stateFor(token string, mustChange bool) models.AuthState {
	st := models.AuthState{AccessToken: token, MustChangePassword: mustChange}
	if token != "" {
		if uid, ok := identity.DeriveUserID(token); ok {
			st.UserID = uid
		}
	}
	return st
}

func (s *Store) publish(update func(models.AuthState) models.AuthState) models.AuthState {
	s.mu.Lock()
	s.state = update(s.state)
	st := s.state
	subs := append([]func(models.AuthState){}, s.subscribers...)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(st)
	}
	return st
}

// Subscribe registers fn to be called with the new state after every
// transition. Callbacks run on the goroutine that made the transition.
func (s *Store) Subscribe(fn func(models.AuthState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// State returns a snapshot of the current state.
func (s *Store) State() models.AuthState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Token returns the current credential or "". It satisfies client.TokenSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.AccessToken
}

// Init loads the durable credential and flag and leaves the loading state.
// A load failure still ends loading, as logged out.
func (s *Store) Init(ctx context.Context) error {
	repo := s.repo(s.db)

	token, err := repo.Get(ctx, common.AccessTokenKey)
	if err != nil {
		s.publish(func(models.AuthState) models.AuthState { return models.AuthState{} })
		return fmt.Errorf("load credential: %w", err)
	}
	flag, err := repo.Get(ctx, common.MustChangePasswordKey)
	if err != nil {
		s.publish(func(models.AuthState) models.AuthState { return models.AuthState{} })
		return fmt.Errorf("load password flag: %w", err)
	}

	st := s.publish(func(models.AuthState) models.AuthState {
		return stateFor(string(token), string(flag) == "true")
	})
	s.log.Debug(ctx, "auth state loaded", "authenticated", st.Authenticated(), "must_change_password", st.MustChangePassword)
	return nil
}

// SetToken stores the credential durably, or clears it when token is "".
// The must-change-password flag is left as it is.
func (s *Store) SetToken(ctx context.Context, token string) error {
	repo := s.repo(s.db)

	var err error
	if token == "" {
		err = repo.Delete(ctx, common.AccessTokenKey)
	} else {
		err = repo.Set(ctx, common.AccessTokenKey, []byte(token))
	}
	if err != nil {
		return err
	}

	s.publish(func(prev models.AuthState) models.AuthState {
		st := stateFor(token, prev.MustChangePassword)
		st.IsLoading = prev.IsLoading
		return st
	})
	return nil
}

// Login authenticates against the backend and, on success, durably stores
// the returned credential together with the must-change-password flag.
//
// IsLoading is true while the attempt is in flight and false once it ends,
// whatever the outcome. On failure the previous credential is kept.
func (s *Store) Login(ctx context.Context, email, password string) (string, error) {
	s.publish(func(prev models.AuthState) models.AuthState {
		prev.IsLoading = true
		return prev
	})
	endLoading := func(prev models.AuthState) models.AuthState {
		prev.IsLoading = false
		return prev
	}

	resp, err := s.api.Login(ctx, email, password)
	if err != nil {
		s.publish(endLoading)
		s.log.Warn(ctx, "login failed", "email", email, "error", err)
		return "", err
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repo(tx)
		if err := repo.Set(ctx, common.AccessTokenKey, []byte(resp.AccessToken)); err != nil {
			return err
		}
		return repo.Set(ctx, common.MustChangePasswordKey, []byte(formatFlag(resp.MustChangePassword)))
	})
	if err != nil {
		s.publish(endLoading)
		return "", fmt.Errorf("store credential: %w", err)
	}

	st := s.publish(func(models.AuthState) models.AuthState {
		return stateFor(resp.AccessToken, resp.MustChangePassword)
	})
	s.log.Info(ctx, "logged in", "user_id", st.UserID, "must_change_password", st.MustChangePassword)
	return resp.AccessToken, nil
}

// Logout drops the credential and the flag from durable storage and memory.
// The backend is not contacted.
func (s *Store) Logout(ctx context.Context) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repo(tx)
		if err := repo.Delete(ctx, common.AccessTokenKey); err != nil {
			return err
		}
		return repo.Delete(ctx, common.MustChangePasswordKey)
	})
	if err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}

	s.publish(func(models.AuthState) models.AuthState { return models.AuthState{} })
	s.log.Info(ctx, "logged out")
	return nil
}

// ChangePassword asks the backend to change the password. Matching of the
// new password and its confirmation is enforced by the backend. On success
// the must-change-password flag is cleared.
func (s *Store) ChangePassword(ctx context.Context, oldPassword, newPassword, newPasswordConfirm string) error {
	if err := s.api.ChangePassword(ctx, oldPassword, newPassword, newPasswordConfirm); err != nil {
		return err
	}

	if err := s.repo(s.db).Set(ctx, common.MustChangePasswordKey, []byte(formatFlag(false))); err != nil {
		return fmt.Errorf("store password flag: %w", err)
	}

	s.publish(func(prev models.AuthState) models.AuthState {
		prev.MustChangePassword = false
		return prev
	})
	s.log.Info(ctx, "password changed")
	return nil
}

// Register creates an account. It does not log in.
func (s *Store) Register(ctx context.Context, req models.RegisterRequest) error {
	return s.api.Register(ctx, req)
}

// ForgotQuestion returns the security question of the account.
func (s *Store) ForgotQuestion(ctx context.Context, email string) (string, error) {
	return s.api.ForgotQuestion(ctx, email)
}

// ForgotReset answers the security question and returns the temporary
// password issued by the backend.
func (s *Store) ForgotReset(ctx context.Context, email, securityAnswer string) (string, error) {
	return s.api.ForgotReset(ctx, email, securityAnswer)
}

func formatFlag(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
