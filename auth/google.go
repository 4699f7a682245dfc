package auth

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/idtoken"

	"github.com/hiremind/backend/config"
)

// ErrGoogleNotConfigured is returned when GOOGLE_CLIENT_ID is unset
var ErrGoogleNotConfigured = errors.New("Google Client ID not configured")

// GoogleAuthService handles Google SSO verification
type GoogleAuthService struct {
	clientID string
}

// GoogleUserInfo represents user info from Google token
type GoogleUserInfo struct {
	GoogleID      string
	Email         string
	EmailVerified bool
	Name          string
}

// NewGoogleAuthService creates a new Google auth service
func NewGoogleAuthService(cfg *config.Config) *GoogleAuthService {
	return &GoogleAuthService{
		clientID: cfg.GoogleClientID,
	}
}

// VerifyIDToken verifies a Google ID token and returns user info
func (s *GoogleAuthService) VerifyIDToken(ctx context.Context, idToken string) (*GoogleUserInfo, error) {
	if s.clientID == "" {
		return nil, ErrGoogleNotConfigured
	}

	payload, err := idtoken.Validate(ctx, idToken, s.clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify ID token: %w", err)
	}

	userInfo := &GoogleUserInfo{
		GoogleID: payload.Subject,
	}
	if email, ok := payload.Claims["email"].(string); ok {
		userInfo.Email = email
	}
	if verified, ok := payload.Claims["email_verified"].(bool); ok {
		userInfo.EmailVerified = verified
	}
	if name, ok := payload.Claims["name"].(string); ok {
		userInfo.Name = name
	}

	if userInfo.Email == "" {
		return nil, errors.New("email not found in token")
	}
	if !userInfo.EmailVerified {
		return nil, errors.New("email not verified by Google")
	}

	return userInfo, nil
}
