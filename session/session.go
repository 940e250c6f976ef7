// Package session owns the authenticated identity and token pair. It is
// the single source of truth for authentication state and the only writer
// of the persisted session slice; the request pipeline reads tokens through
// it and asks it to invalidate on 401, nothing more.
package session

import (
	"context"
	"time"

	"github.com/jrsteele09/go-admin-client/auth"
	"github.com/jrsteele09/go-admin-client/users"
)

// State is the session store's authentication state.
type State string

const (
	StateAnonymous     State = "anonymous"
	StateAuthenticated State = "authenticated"
	StateRefreshing    State = "refreshing"
)

// Session is the active identity plus token pair. At most one valid
// session exists at a time.
type Session struct {
	User         users.Identity
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Expired reports whether the access token's lifetime has elapsed.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// AuthAPI is the slice of the auth facade the store drives. Declared here
// so the store can be exercised against a fake in tests.
type AuthAPI interface {
	Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginData, error)
	Logout(ctx context.Context) error
	Refresh(ctx context.Context, refreshToken string) (*auth.RefreshData, error)
	Register(ctx context.Context, req auth.RegisterRequest) error
	UpdateProfile(ctx context.Context, req auth.UpdateProfileRequest) (*users.Identity, error)
	ChangePassword(ctx context.Context, req auth.ChangePasswordRequest) error
}
