package auth

import (
	"time"

	domain "github.com/example/task-tracker/domain/user"
)

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse represents a user registration response.
type RegisterResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse represents a user login response with an identity token.
type LoginResponse struct {
	Token     string         `json:"token"`
	TokenType string         `json:"token_type"`
	ExpiresIn int64          `json:"expires_in"`
	User      domain.Profile `json:"user"`
}

// ValidateTokenRequest represents a token validation request.
type ValidateTokenRequest struct {
	Token string `json:"token"`
}

// ValidateTokenResponse represents a token validation response.
type ValidateTokenResponse struct {
	Valid  bool   `json:"valid"`
	UserID string `json:"user_id,omitempty"`
	Error  string `json:"error,omitempty"`
}

// GetUserRequest represents a get user request.
type GetUserRequest struct {
	UserID string `json:"user_id"`
}

// GetUserResponse represents a get user response. Found is false when the
// user does not exist, which is not a service error.
type GetUserResponse struct {
	Found bool           `json:"found"`
	User  domain.Profile `json:"user"`
}

// GetUserByEmailRequest represents a lookup by exact email.
type GetUserByEmailRequest struct {
	Email string `json:"email"`
}

// GetUsersRequest represents a batched profile lookup.
type GetUsersRequest struct {
	UserIDs []string `json:"user_ids"`
}

// GetUsersResponse carries the profiles that were found, keyed by user ID.
type GetUsersResponse struct {
	Users map[string]domain.Profile `json:"users"`
}
