package client

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Fallback profile values used when an account has no profile row yet
const (
	DefaultCredits = 10
)

var errSessionChanged = errors.New("session changed during sign-in")

// SessionEvent names a change of the signed-in user
type SessionEvent string

const (
	EventInitialSession SessionEvent = "INITIAL_SESSION"
	EventSignedIn       SessionEvent = "SIGNED_IN"
	EventSignedOut      SessionEvent = "SIGNED_OUT"
	EventTokenRefreshed SessionEvent = "TOKEN_REFRESHED"
	EventUserUpdated    SessionEvent = "USER_UPDATED"
)

// CurrentUser is the account merged with its profile
type CurrentUser struct {
	ID            string
	Email         string
	Credits       int64
	IsPremium     bool
	TotalUpscales int64
	FirstName     *string
	LastName      *string
}

// Tokens is the persisted token pair
type Tokens struct {
	AccessToken  string    `json:"accessToken" yaml:"access_token"`
	RefreshToken string    `json:"refreshToken" yaml:"refresh_token"`
	ExpiresAt    time.Time `json:"expiresAt" yaml:"expires_at"`
}

// TokenStore persists tokens between runs. Load returns nil, nil when
// nothing is stored.
type TokenStore interface {
	Load() (*Tokens, error)
	Save(t *Tokens) error
	Clear() error
}

// MemoryTokenStore keeps tokens for the lifetime of the process
type MemoryTokenStore struct {
	mu     sync.Mutex
	tokens *Tokens
}

func (s *MemoryTokenStore) Load() (*Tokens, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tokens == nil {
		return nil, nil
	}
	t := *s.tokens
	return &t, nil
}

func (s *MemoryTokenStore) Save(t *Tokens) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.tokens = &cp
	return nil
}

func (s *MemoryTokenStore) Clear() error {
	s.mu.Lock()
	s.tokens = nil
	s.mu.Unlock()
	return nil
}

// SessionAPI is the part of *Client the session needs
type SessionAPI interface {
	Login(ctx context.Context, email, password string) (*AuthResponse, error)
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error)
	Logout(ctx context.Context) error
	GetSession(ctx context.Context) (*Session, error)
	GetProfile(ctx context.Context) (*Profile, error)
	SetToken(token string)
}

// SessionConfig configures a SessionManager
type SessionConfig struct {
	TokenStore      TokenStore    // default: MemoryTokenStore
	RefreshInterval time.Duration // zero disables the refresh loop
	Logger          Logger
}

type subscriber struct {
	id int
	fn func(SessionEvent, *CurrentUser)
}

// SessionManager tracks the signed-in user and notifies subscribers on
// every change
type SessionManager struct {
	api    SessionAPI
	store  TokenStore
	every  time.Duration
	logger Logger

	mu     sync.RWMutex
	user   *CurrentUser
	epoch  uint64 // bumped on sign-in and sign-out
	subs   []subscriber
	nextID int

	loopMu sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSession creates a session holder. Call Init to restore stored tokens.
func NewSession(api SessionAPI, cfg SessionConfig) *SessionManager {
	if cfg.TokenStore == nil {
		cfg.TokenStore = &MemoryTokenStore{}
	}
	if cfg.Logger == nil {
		cfg.Logger = nopLogger{}
	}
	return &SessionManager{
		api:    api,
		store:  cfg.TokenStore,
		every:  cfg.RefreshInterval,
		logger: cfg.Logger,
	}
}

// Init restores a stored token and resolves the current user. A stored
// token the server rejects is cleared and leaves the session signed out.
func (s *SessionManager) Init(ctx context.Context) error {
	tokens, err := s.store.Load()
	if err != nil {
		return err
	}

	var user *CurrentUser
	if tokens != nil && tokens.AccessToken != "" {
		s.api.SetToken(tokens.AccessToken)
		user, err = s.resolve(ctx)
		if err != nil && tokens.RefreshToken != "" && isUnauthorized(err) {
			if rerr := s.rotate(ctx, tokens.RefreshToken); rerr == nil {
				user, err = s.resolve(ctx)
			}
		}
		if err != nil {
			if !isUnauthorized(err) {
				return err
			}
			s.logger.Warn("Stored session expired, signing out")
			s.api.SetToken("")
			if cerr := s.store.Clear(); cerr != nil {
				s.logger.ErrorWithErr(cerr, "Failed to clear stored tokens")
			}
			user = nil
		}
	}

	s.set(EventInitialSession, user)
	if user != nil {
		s.startRefreshLoop()
	}
	return nil
}

// Close stops the refresh loop and drops all subscribers. It waits for the
// loop to exit, so it must not be called from a subscriber.
func (s *SessionManager) Close() {
	s.stopRefreshLoop(true)

	s.mu.Lock()
	s.subs = nil
	s.mu.Unlock()
}

// Subscribe registers fn for session changes
func (s *SessionManager) Subscribe(fn func(SessionEvent, *CurrentUser)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// CurrentUser returns a copy of the signed-in user, or nil
func (s *SessionManager) CurrentUser() *CurrentUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// SignIn logs in and resolves the profile
func (s *SessionManager) SignIn(ctx context.Context, email, password string) (*CurrentUser, error) {
	resp, err := s.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.establish(ctx, resp)
}

// SignUp registers a new account and signs it in
func (s *SessionManager) SignUp(ctx context.Context, req RegisterRequest) (*CurrentUser, error) {
	resp, err := s.api.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.establish(ctx, resp)
}

func (s *SessionManager) establish(ctx context.Context, resp *AuthResponse) (*CurrentUser, error) {
	s.mu.Lock()
	s.epoch++
	epoch := s.epoch
	err := s.save(resp)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	user, err := s.resolve(ctx)
	if err != nil {
		return nil, err
	}
	if !s.setIf(epoch, EventSignedIn, user, false) {
		return nil, errSessionChanged
	}
	s.startRefreshLoop()
	return s.CurrentUser(), nil
}

// Refresh re-fetches the profile of the signed-in user. It is a no-op when
// signed out, and the result is dropped if the session ends meanwhile.
func (s *SessionManager) Refresh(ctx context.Context) error {
	epoch, signedIn := s.state()
	if !signedIn {
		return nil
	}
	user, err := s.resolve(ctx)
	if err != nil {
		return err
	}
	s.setIf(epoch, EventUserUpdated, user, true)
	return nil
}

// Logout ends the session locally even when the server call fails. It is
// safe to call from a subscriber.
func (s *SessionManager) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.epoch++
	s.mu.Unlock()
	s.stopRefreshLoop(false)

	if err := s.api.Logout(ctx); err != nil {
		s.logger.ErrorWithErr(err, "Logout request failed")
	}

	s.mu.Lock()
	s.api.SetToken("")
	err := s.store.Clear()
	s.user = nil
	s.mu.Unlock()

	s.notify(EventSignedOut, nil)
	return err
}

func (s *SessionManager) state() (epoch uint64, signedIn bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch, s.user != nil
}

// resolve merges the session with the profile. A missing profile falls
// back to the free-plan defaults.
func (s *SessionManager) resolve(ctx context.Context) (*CurrentUser, error) {
	sess, err := s.api.GetSession(ctx)
	if err != nil {
		return nil, err
	}

	user := &CurrentUser{
		ID:      sess.UserID,
		Email:   sess.Email,
		Credits: DefaultCredits,
	}

	p, err := s.api.GetProfile(ctx)
	switch {
	case err == nil:
		user.Credits = p.Credits.Value
		user.IsPremium = p.IsPremium
		user.TotalUpscales = p.TotalUpscales
		user.FirstName = p.FirstName
		user.LastName = p.LastName
	case isNotFound(err):
		s.logger.Warn("Profile not found, using defaults")
	default:
		return nil, err
	}
	return user, nil
}

func (s *SessionManager) save(resp *AuthResponse) error {
	s.api.SetToken(resp.AccessToken)
	return s.store.Save(&Tokens{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    resp.ExpiresAt,
	})
}

// rotate exchanges the refresh token for a new pair
func (s *SessionManager) rotate(ctx context.Context, refreshToken string) error {
	resp, err := s.api.RefreshToken(ctx, refreshToken)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(resp)
}

// RefreshTokens rotates the stored token pair and re-resolves the user so
// subscribers see balance changes made elsewhere
func (s *SessionManager) RefreshTokens(ctx context.Context) error {
	epoch, _ := s.state()

	tokens, err := s.store.Load()
	if err != nil {
		return err
	}
	if tokens == nil || tokens.RefreshToken == "" {
		return errors.New("no refresh token stored")
	}

	resp, err := s.api.RefreshToken(ctx, tokens.RefreshToken)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.epoch != epoch {
		// The session ended or changed while the request was in flight.
		// The client already took the rotated token, so put back whatever
		// the store holds now.
		current, _ := s.store.Load()
		if current != nil {
			s.api.SetToken(current.AccessToken)
		} else {
			s.api.SetToken("")
		}
		s.mu.Unlock()
		return nil
	}
	err = s.save(resp)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	user, err := s.resolve(ctx)
	if err != nil {
		return err
	}
	s.setIf(epoch, EventTokenRefreshed, user, true)
	return nil
}

func (s *SessionManager) set(event SessionEvent, user *CurrentUser) {
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()

	s.notify(event, s.CurrentUser())
}

// setIf stores user only while the session epoch is unchanged. With
// requireUser it also refuses to bring back a user after sign-out.
func (s *SessionManager) setIf(epoch uint64, event SessionEvent, user *CurrentUser, requireUser bool) bool {
	s.mu.Lock()
	if s.epoch != epoch || (requireUser && s.user == nil) {
		s.mu.Unlock()
		return false
	}
	s.user = user
	s.mu.Unlock()

	s.notify(event, s.CurrentUser())
	return true
}

// notify calls subscribers outside the lock
func (s *SessionManager) notify(event SessionEvent, user *CurrentUser) {
	s.mu.RLock()
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.mu.RUnlock()

	for _, sub := range subs {
		sub.fn(event, user)
	}
}

func (s *SessionManager) startRefreshLoop() {
	if s.every <= 0 {
		return
	}

	s.loopMu.Lock()
	defer s.loopMu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go func(done chan struct{}) {
		defer close(done)
		ticker := time.NewTicker(s.every)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.RefreshTokens(ctx); err != nil && ctx.Err() == nil {
					s.logger.ErrorWithErr(err, "Token refresh failed")
				}
			}
		}
	}(s.done)
}

// stopRefreshLoop cancels the loop. Callers that may run on the loop
// goroutine itself, such as subscribers, must pass wait=false.
func (s *SessionManager) stopRefreshLoop(wait bool) {
	s.loopMu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.loopMu.Unlock()

	if cancel != nil {
		cancel()
		if wait {
			<-done
		}
	}
}

func isUnauthorized(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.IsUnauthorized()
}

func isNotFound(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.IsNotFound()
}
