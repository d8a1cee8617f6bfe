package services

import (
	"context"

	"github.com/ukydev/aivodrive/internal/apiclient"
	"github.com/ukydev/aivodrive/internal/models"
	"github.com/ukydev/aivodrive/internal/validation"
)

// AuthService calls the /auth endpoints.
type AuthService struct {
	client *apiclient.Client
}

// NewAuthService creates an auth service.
func NewAuthService(c *apiclient.Client) *AuthService {
	return &AuthService{client: c}
}

// Login exchanges credentials for a bearer token.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	var out models.LoginResponse
	if err := s.client.Post(ctx, "/auth/login", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me fetches the profile of the token holder.
func (s *AuthService) Me(ctx context.Context) (*models.User, error) {
	var out models.User
	if _, err := s.client.Get(ctx, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile sends the editable profile fields.
func (s *AuthService) UpdateProfile(ctx context.Context, in models.ProfileUpdate) (*models.User, error) {
	var out models.User
	if err := s.client.Put(ctx, "/auth/profile", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChangePassword replaces the caller's password.
func (s *AuthService) ChangePassword(ctx context.Context, in validation.PasswordChange) error {
	return s.client.Put(ctx, "/auth/password", in, nil)
}
