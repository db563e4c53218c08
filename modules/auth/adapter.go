package auth

import (
	"context"
	"encoding/json"
	"fmt"

	domain "github.com/example/task-tracker/domain/user"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// AuthPort is what the HTTP guard needs: token verification and live-user lookup.
type AuthPort interface {
	ValidateToken(ctx context.Context, token string) (string, error)
	GetUser(ctx context.Context, userID string) (*domain.Profile, error)
}

// AccountPort covers the public account endpoints.
type AccountPort interface {
	Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
}

// UserDirectory resolves users for the task module.
type UserDirectory interface {
	GetUser(ctx context.Context, userID string) (*domain.Profile, error)
	FindByEmail(ctx context.Context, email string) (*domain.Profile, error)
	GetProfiles(ctx context.Context, userIDs []string) (map[string]domain.Profile, error)
}

// AuthAdapter implements the auth ports over the auth module's service container.
type AuthAdapter struct {
	container mono.ServiceContainer
}

var (
	_ AuthPort      = (*AuthAdapter)(nil)
	_ AccountPort   = (*AuthAdapter)(nil)
	_ UserDirectory = (*AuthAdapter)(nil)
)

// NewAuthAdapter creates a new AuthAdapter.
func NewAuthAdapter(container mono.ServiceContainer) *AuthAdapter {
	return &AuthAdapter{
		container: container,
	}
}

// ValidateToken verifies an identity token and returns its user ID. Failures
// are mapped back to the token sentinel errors.
func (a *AuthAdapter) ValidateToken(ctx context.Context, token string) (string, error) {
	req := ValidateTokenRequest{Token: token}
	var resp ValidateTokenResponse

	if err := helper.CallRequestReplyService(
		ctx, a.container, "validate-token", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return "", fmt.Errorf("validate-token request failed: %w", err)
	}

	if !resp.Valid {
		return "", tokenError(resp.Error)
	}
	return resp.UserID, nil
}

// GetUser retrieves a user profile by ID. It returns ErrUserNotFound when the
// user does not exist.
func (a *AuthAdapter) GetUser(ctx context.Context, userID string) (*domain.Profile, error) {
	req := GetUserRequest{UserID: userID}
	var resp GetUserResponse

	if err := helper.CallRequestReplyService(
		ctx, a.container, "get-user", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, fmt.Errorf("get-user request failed: %w", err)
	}

	if !resp.Found {
		return nil, ErrUserNotFound
	}
	return &resp.User, nil
}

// FindByEmail retrieves a user profile by exact email. It returns
// ErrUserNotFound when no user has that email.
func (a *AuthAdapter) FindByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	req := GetUserByEmailRequest{Email: email}
	var resp GetUserResponse

	if err := helper.CallRequestReplyService(
		ctx, a.container, "get-user-by-email", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, fmt.Errorf("get-user-by-email request failed: %w", err)
	}

	if !resp.Found {
		return nil, ErrUserNotFound
	}
	return &resp.User, nil
}

// GetProfiles resolves many users in one call.
func (a *AuthAdapter) GetProfiles(ctx context.Context, userIDs []string) (map[string]domain.Profile, error) {
	if len(userIDs) == 0 {
		return map[string]domain.Profile{}, nil
	}

	req := GetUsersRequest{UserIDs: userIDs}
	var resp GetUsersResponse

	if err := helper.CallRequestReplyService(
		ctx, a.container, "get-users", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, fmt.Errorf("get-users request failed: %w", err)
	}

	if resp.Users == nil {
		resp.Users = map[string]domain.Profile{}
	}
	return resp.Users, nil
}

// Register creates an account.
func (a *AuthAdapter) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	var resp RegisterResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "register", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login exchanges credentials for an identity token.
func (a *AuthAdapter) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var resp LoginResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "login", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, err
	}
	return &resp, nil
}

func tokenError(msg string) error {
	switch msg {
	case ErrExpiredToken.Error():
		return ErrExpiredToken
	case ErrInvalidSignature.Error():
		return ErrInvalidSignature
	default:
		return ErrMalformedToken
	}
}
