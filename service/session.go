package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"scanmyride/pkg/apiclient"
	"scanmyride/pkg/logger"
	"scanmyride/pkg/models"
	"scanmyride/storage"
)

type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*models.AuthResponse, error)
	Register(ctx context.Context, name, email, password string) (*models.AuthResponse, error)
	Me(ctx context.Context) (*models.User, error)
}

// SessionState is a point-in-time copy of the session. User is nil whenever
// Token is empty.
type SessionState struct {
	Token   string
	User    *models.User
	Loading bool
}

func (s SessionState) Authenticated() bool {
	return s.Token != ""
}

type Session struct {
	api   AuthAPI
	store *storage.ClientStore
	log   logger.ILogger

	mu      sync.RWMutex
	token   string
	user    *models.User
	loading bool

	settleOnce sync.Once
	settled    chan struct{}
}

func NewSession(api AuthAPI, store *storage.ClientStore, log logger.ILogger) *Session {
	return &Session{
		api:     api,
		store:   store,
		log:     log,
		loading: true,
		settled: make(chan struct{}),
	}
}

// Bootstrap validates the persisted token with a who-am-I call. Whatever
// happens, the session is no longer loading once it returns.
func (s *Session) Bootstrap(ctx context.Context) error {
	defer s.settle()

	token, err := s.store.Token(ctx)
	if err != nil {
		s.log.Error("failed to read stored token", logger.Error(err))
		s.clear()
		return fmt.Errorf("read token: %w", err)
	}
	if token == "" {
		s.clearIfAnonymous(ctx)
		return nil
	}

	cached, err := s.store.User(ctx)
	if err != nil {
		s.log.Warning("ignoring unreadable cached user", logger.Error(err))
	}
	s.mu.Lock()
	s.token, s.user = token, cached
	s.mu.Unlock()

	user, err := s.api.Me(ctx)
	if err != nil {
		s.log.Warning("failed to load user", logger.Error(err))
		if lerr := s.logoutIfCurrent(ctx, token); lerr != nil {
			s.log.Error("failed to clear session", logger.Error(lerr))
		}
		if apiclient.IsUnauthorized(err) {
			return ErrSessionExpired
		}
		return fmt.Errorf("load user: %w", err)
	}

	s.mu.Lock()
	current := s.token == token
	if current {
		s.user = user
	}
	s.mu.Unlock()
	if !current {
		return nil
	}
	if err := s.store.SetUser(ctx, *user); err != nil {
		s.log.Warning("failed to cache user", logger.Error(err))
	}
	return nil
}

func (s *Session) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	res, err := s.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := s.persist(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Session) Register(ctx context.Context, name, email, password string) (*models.AuthResponse, error) {
	res, err := s.api.Register(ctx, name, email, password)
	if err != nil {
		return nil, err
	}
	if err := s.persist(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

// Logout forgets the session locally. The backend is not involved.
func (s *Session) Logout(ctx context.Context) error {
	s.clear()
	return s.store.Remove(ctx, storage.KeyToken, storage.KeyUser, storage.KeyLastProfileID)
}

func (s *Session) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := SessionState{Token: s.token, Loading: s.loading}
	if s.token != "" && s.user != nil {
		u := *s.user
		st.User = &u
	}
	return st
}

// Settled is closed once the first bootstrap (or a login) has completed.
func (s *Session) Settled() <-chan struct{} {
	return s.settled
}

// Token implements apiclient.TokenSource from persisted storage.
func (s *Session) Token(ctx context.Context) (string, error) {
	return s.store.Token(ctx)
}

func (s *Session) persist(ctx context.Context, res *models.AuthResponse) error {
	if res.Token == "" {
		return errors.New("login response carried no token")
	}
	if err := s.store.Set(ctx, storage.KeyToken, res.Token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	if err := s.store.SetUser(ctx, res.User); err != nil {
		return fmt.Errorf("persist user: %w", err)
	}
	user := res.User
	s.mu.Lock()
	s.token, s.user = res.Token, &user
	s.mu.Unlock()
	s.settle()
	return nil
}

// logoutIfCurrent clears the session unless a login replaced token meanwhile.
func (s *Session) logoutIfCurrent(ctx context.Context, token string) error {
	s.mu.RLock()
	current := s.token == token
	s.mu.RUnlock()
	if !current {
		return nil
	}
	return s.Logout(ctx)
}

// clearIfAnonymous drops the cached user unless a login landed after the
// stored token was found empty.
func (s *Session) clearIfAnonymous(ctx context.Context) {
	s.mu.Lock()
	if s.token != "" {
		s.mu.Unlock()
		return
	}
	s.user = nil
	s.mu.Unlock()

	token, err := s.store.Token(ctx)
	if err != nil || token != "" {
		return
	}
	if err := s.store.Remove(ctx, storage.KeyUser); err != nil {
		s.log.Warning("failed to drop cached user", logger.Error(err))
	}
}

func (s *Session) clear() {
	s.mu.Lock()
	s.token, s.user = "", nil
	s.mu.Unlock()
}

func (s *Session) settle() {
	s.settleOnce.Do(func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
		close(s.settled)
	})
}
