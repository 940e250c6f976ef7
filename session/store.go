package session

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-admin-client/auth"
	"github.com/jrsteele09/go-admin-client/client"
	"github.com/jrsteele09/go-admin-client/internal/utils"
	"github.com/jrsteele09/go-admin-client/storage"
	"github.com/jrsteele09/go-admin-client/users"
)

// Store is the session state machine. Every operation records a loading
// flag for its duration, clears the previous error on start and records
// the classified kind and message on failure, so page code can branch on a
// boolean instead of catching errors.
type Store struct {
	api     AuthAPI
	persist *storage.Store

	nowTime   func() time.Time
	onExpired func()
	notices   *NoticeCenter
	log       zerolog.Logger

	mu          sync.Mutex
	state       State
	user        *users.Identity
	session     *Session
	opCount     int
	lastErrKind client.Kind
	lastErrMsg  string
	refreshDone chan struct{}
	refreshOK   bool
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) StoreOption {
	return func(s *Store) { s.nowTime = nowFunc }
}

// WithExpiredFunc registers the callback fired when the session is forced
// out by an unauthorized response. It fires exactly once per
// authenticated-to-anonymous transition; this is where an embedding UI
// hangs its login redirect.
func WithExpiredFunc(fn func()) StoreOption {
	return func(s *Store) { s.onExpired = fn }
}

// WithNotices publishes session events to a notice center.
func WithNotices(nc *NoticeCenter) StoreOption {
	return func(s *Store) { s.notices = nc }
}

// WithLogger sets the store logger.
func WithLogger(logger zerolog.Logger) StoreOption {
	return func(s *Store) { s.log = logger.With().Str("component", "session").Logger() }
}

// NewStore creates the session store and attempts to rehydrate
// authenticated state from durable storage without a network round trip.
// Restored state is provisional until the next authenticated call either
// succeeds or comes back unauthorized.
func NewStore(api AuthAPI, persist *storage.Store, opts ...StoreOption) *Store {
	s := &Store{
		api:     api,
		persist: persist,
		state:   StateAnonymous,
		nowTime: time.Now,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.restore()
	return s
}

// Login authenticates with the backend. On success the store transitions
// to Authenticated and persists the restorable subset.
func (s *Store) Login(ctx context.Context, email, password string, remember bool) bool {
	s.begin()
	data, err := s.api.Login(ctx, auth.LoginRequest{Email: email, Password: password, Remember: remember})
	if err != nil {
		s.fail(err)
		return false
	}

	sess := &Session{
		User:         data.User,
		AccessToken:  data.AccessToken,
		RefreshToken: data.RefreshToken,
		ExpiresAt:    s.nowTime().Add(time.Duration(data.ExpiresIn) * time.Second),
	}
	s.mu.Lock()
	user := data.User
	s.state = StateAuthenticated
	s.user = &user
	s.session = sess
	s.mu.Unlock()

	s.persistSnapshot()
	s.finish()
	return true
}

// Logout signs out. The remote call is best effort: local state is cleared
// even when the backend is unreachable.
func (s *Store) Logout(ctx context.Context) {
	s.begin()
	if err := s.api.Logout(ctx); err != nil {
		s.log.Warn().Err(err).Msg("remote logout failed, clearing local session anyway")
	}

	s.mu.Lock()
	s.state = StateAnonymous
	s.user = nil
	s.session = nil
	s.mu.Unlock()

	if err := s.persist.Clear(); err != nil {
		s.log.Warn().Err(err).Msg("failed to clear persisted session")
	}
	s.finish()
}

// Register creates an account. Authentication state is unchanged on
// success; the operation only reports the outcome.
func (s *Store) Register(ctx context.Context, req auth.RegisterRequest) bool {
	s.begin()
	if err := s.api.Register(ctx, req); err != nil {
		s.fail(err)
		return false
	}
	s.finish()
	return true
}

// RefreshToken rotates the token pair. Concurrent callers coalesce on the
// refresh already in flight. With no stored refresh token it fails
// immediately, without a network call, leaving the store anonymous.
func (s *Store) RefreshToken(ctx context.Context) bool {
	s.mu.Lock()
	if s.state == StateRefreshing && s.refreshDone != nil {
		done := s.refreshDone
		s.mu.Unlock()
		<-done
		s.mu.Lock()
		ok := s.refreshOK
		s.mu.Unlock()
		return ok
	}

	if s.session == nil || s.session.RefreshToken == "" {
		s.state = StateAnonymous
		s.user = nil
		s.session = nil
		s.lastErrKind = client.KindUnauthorized
		s.lastErrMsg = "no refresh token available"
		s.mu.Unlock()
		return false
	}

	refreshToken := s.session.RefreshToken
	s.state = StateRefreshing
	done := make(chan struct{})
	s.refreshDone = done
	s.opCount++
	s.lastErrKind, s.lastErrMsg = "", ""
	s.mu.Unlock()

	data, err := s.api.Refresh(ctx, refreshToken)
	ok := err == nil && data != nil && data.AccessToken != ""

	s.mu.Lock()
	// An unauthorized response during the refresh may have invalidated the
	// store; a stale refresh result must not resurrect the session.
	if s.state != StateRefreshing || s.session == nil {
		ok = false
	}
	if ok {
		s.session.AccessToken = data.AccessToken
		if data.RefreshToken != "" {
			s.session.RefreshToken = data.RefreshToken
		}
		s.session.ExpiresAt = s.expiryFor(data)
		s.state = StateAuthenticated
	} else {
		s.state = StateAnonymous
		s.user = nil
		s.session = nil
		if err != nil {
			cerr := client.AsError(err)
			s.lastErrKind = cerr.Kind
			s.lastErrMsg = cerr.Message
		}
	}
	s.refreshOK = ok
	s.refreshDone = nil
	s.opCount--
	s.mu.Unlock()
	close(done)

	if ok {
		s.persistSnapshot()
	} else if err := s.persist.Clear(); err != nil {
		s.log.Warn().Err(err).Msg("failed to clear persisted session")
	}
	return ok
}

// UpdateProfile replaces the stored identity wholesale on success.
func (s *Store) UpdateProfile(ctx context.Context, req auth.UpdateProfileRequest) bool {
	if !s.requireAuthenticated() {
		return false
	}
	s.begin()
	identity, err := s.api.UpdateProfile(ctx, req)
	if err != nil {
		s.fail(err)
		return false
	}

	s.mu.Lock()
	user := *identity
	s.user = &user
	if s.session != nil {
		s.session.User = user
	}
	s.mu.Unlock()

	s.persistSnapshot()
	s.finish()
	return true
}

// ChangePassword rotates the password. No observable state change beyond
// success or failure.
func (s *Store) ChangePassword(ctx context.Context, req auth.ChangePasswordRequest) bool {
	if !s.requireAuthenticated() {
		return false
	}
	s.begin()
	if err := s.api.ChangePassword(ctx, req); err != nil {
		s.fail(err)
		return false
	}
	s.finish()
	return true
}

// Invalidate is the unauthorized hook the pipeline calls on 401. The
// transition is gated by a check-and-set under the store lock: concurrent
// 401s observe the store already anonymous and do nothing, so the expired
// callback and the user-facing notice fire exactly once.
func (s *Store) Invalidate() {
	s.mu.Lock()
	if s.state == StateAnonymous {
		s.mu.Unlock()
		return
	}
	s.state = StateAnonymous
	s.user = nil
	s.session = nil
	cb := s.onExpired
	s.mu.Unlock()

	if err := s.persist.Clear(); err != nil {
		s.log.Warn().Err(err).Msg("failed to clear persisted session")
	}
	if s.notices != nil {
		s.notices.Publish(string(client.KindUnauthorized), "session expired, please sign in again")
	}
	if cb != nil {
		cb()
	}
	s.log.Info().Msg("session invalidated")
}

// AccessToken implements client.TokenSource. The pipeline reads the token
// at dispatch time; an empty string means no Authorization header.
func (s *Store) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return ""
	}
	return s.session.AccessToken
}

// State returns the current machine state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsAuthenticated reports whether a session is active (refreshing counts).
func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateAuthenticated || s.state == StateRefreshing
}

// User returns a copy of the current identity, or nil when anonymous.
func (s *Store) User() *users.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	return utils.Ptr(*s.user)
}

// Session returns a copy of the current session, or nil when anonymous.
func (s *Store) Session() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	return utils.Ptr(*s.session)
}

// Loading reports whether any store operation is in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opCount > 0
}

// LastError returns the kind and message recorded by the most recent
// failed operation.
func (s *Store) LastError() (client.Kind, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErrKind, s.lastErrMsg
}

// ClearError discards the recorded error.
func (s *Store) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErrKind, s.lastErrMsg = "", ""
}

func (s *Store) begin() {
	s.mu.Lock()
	s.opCount++
	s.lastErrKind, s.lastErrMsg = "", ""
	s.mu.Unlock()
}

func (s *Store) finish() {
	s.mu.Lock()
	s.opCount--
	s.mu.Unlock()
}

func (s *Store) fail(err error) {
	cerr := client.AsError(err)
	s.mu.Lock()
	s.opCount--
	s.lastErrKind = cerr.Kind
	s.lastErrMsg = cerr.Message
	s.mu.Unlock()
}

func (s *Store) requireAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateAuthenticated {
		return true
	}
	s.lastErrKind = client.KindUnauthorized
	s.lastErrMsg = "not authenticated"
	return false
}

// restore rehydrates state from durable storage. Corrupt or missing state
// yields anonymous.
func (s *Store) restore() {
	state, err := s.persist.Load()
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to restore persisted session")
		return
	}
	if !state.IsAuthenticated || state.Session == nil {
		return
	}

	sess := &Session{
		User:         state.Session.User,
		AccessToken:  state.Session.AccessToken,
		RefreshToken: state.Session.RefreshToken,
		ExpiresAt:    state.Session.ExpiresAt,
	}
	user := state.Session.User
	if state.User != nil {
		user = *state.User
	}

	s.mu.Lock()
	s.state = StateAuthenticated
	s.user = &user
	s.session = sess
	s.mu.Unlock()
	s.log.Debug().Str("email", user.Email).Msg("session restored from storage")
}

// persistSnapshot writes the restorable subset: user, session and the
// authenticated flag, plus the raw token pair under its own key. Loading
// and error state are never persisted.
func (s *Store) persistSnapshot() {
	s.mu.Lock()
	state := &storage.State{IsAuthenticated: s.state == StateAuthenticated}
	if s.user != nil {
		state.User = utils.Ptr(*s.user)
	}
	if s.session != nil {
		state.Session = &storage.PersistedSession{
			User:         s.session.User,
			AccessToken:  s.session.AccessToken,
			RefreshToken: s.session.RefreshToken,
			ExpiresAt:    s.session.ExpiresAt,
		}
		state.Tokens = storage.TokenPair{
			AccessToken:  s.session.AccessToken,
			RefreshToken: s.session.RefreshToken,
		}
	}
	s.mu.Unlock()

	if err := s.persist.Save(state); err != nil {
		s.log.Warn().Err(err).Msg("failed to persist session")
	}
}

// expiryFor resolves the new session expiry after a refresh: the response's
// expires_in when present, else the access token's exp claim, else one hour.
func (s *Store) expiryFor(data *auth.RefreshData) time.Time {
	if data.ExpiresIn > 0 {
		return s.nowTime().Add(time.Duration(data.ExpiresIn) * time.Second)
	}
	if exp, ok := jwtExpiry(data.AccessToken); ok {
		return exp
	}
	return s.nowTime().Add(time.Hour)
}

// jwtExpiry reads the exp claim without verifying the signature. The
// client holds no keys; verification is the backend's job.
func jwtExpiry(raw string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
