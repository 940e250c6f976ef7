// Package auth is the facade over the backend's authentication endpoints.
// It translates typed requests into pipeline calls and nothing more: no
// caching, no retries, no session state.
package auth

import (
	"context"

	"github.com/jrsteele09/go-admin-client/client"
	"github.com/jrsteele09/go-admin-client/users"
)

const basePath = "/api/v1/auth"

// Service exposes the auth endpoints over the request pipeline.
type Service struct {
	client *client.Client
}

// New creates an auth facade.
func New(c *client.Client) *Service {
	return &Service{client: c}
}

// Login exchanges credentials for a token pair and the user identity.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginData, error) {
	if err := client.ValidateStruct(req); err != nil {
		return nil, err
	}
	var data LoginData
	if err := s.client.Post(ctx, basePath+"/login", req, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Logout tells the backend to revoke the current session. Local state is
// the session store's concern; this call failing does not keep a client
// signed in.
func (s *Service) Logout(ctx context.Context) error {
	return s.client.Post(ctx, basePath+"/logout", nil, nil)
}

// Refresh exchanges a refresh token for a fresh token pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*RefreshData, error) {
	req := RefreshRequest{RefreshToken: refreshToken}
	if err := client.ValidateStruct(req); err != nil {
		return nil, err
	}
	var data RefreshData
	if err := s.client.Post(ctx, basePath+"/refresh", req, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Register creates a new account. It does not authenticate the caller.
func (s *Service) Register(ctx context.Context, req RegisterRequest) error {
	if err := client.ValidateStruct(req); err != nil {
		return err
	}
	if err := users.ValidatePasswordStrength(req.Password); err != nil {
		return client.NewValidationError([]client.FieldError{{Field: "password", Message: err.Error()}})
	}
	return s.client.Post(ctx, basePath+"/register", req, nil)
}

// Profile fetches the current user identity.
func (s *Service) Profile(ctx context.Context) (*users.Identity, error) {
	var identity users.Identity
	if err := s.client.Get(ctx, basePath+"/profile", nil, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

// UpdateProfile updates the current user and returns the replacement
// identity snapshot.
func (s *Service) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*users.Identity, error) {
	if err := client.ValidateStruct(req); err != nil {
		return nil, err
	}
	var identity users.Identity
	if err := s.client.Put(ctx, basePath+"/profile", req, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

// ChangePassword rotates the account password.
func (s *Service) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	if err := client.ValidateStruct(req); err != nil {
		return err
	}
	if err := users.ValidatePasswordStrength(req.NewPassword); err != nil {
		return client.NewValidationError([]client.FieldError{{Field: "new_password", Message: err.Error()}})
	}
	return s.client.Put(ctx, basePath+"/password", req, nil)
}
