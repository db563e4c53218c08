package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/example/task-tracker/config"
	domain "github.com/example/task-tracker/domain/user"
	"github.com/example/task-tracker/storage"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
	"gorm.io/gorm"
)

// AuthModule provides account and identity services.
type AuthModule struct {
	cfg     config.Config
	db      *gorm.DB
	service *AuthService
	logger  types.Logger
}

// Compile-time interface checks.
var _ mono.Module = (*AuthModule)(nil)
var _ mono.ServiceProviderModule = (*AuthModule)(nil)
var _ mono.HealthCheckableModule = (*AuthModule)(nil)

// NewModule creates a new AuthModule.
func NewModule(cfg config.Config, logger types.Logger) *AuthModule {
	return &AuthModule{
		cfg:    cfg,
		logger: logger.WithModule("auth"),
	}
}

// Name returns the module name.
func (m *AuthModule) Name() string {
	return "auth"
}

// Start opens the user store and builds the service.
func (m *AuthModule) Start(_ context.Context) error {
	db, err := storage.Open(m.cfg.DBPath, m.cfg.DBDebug, &domain.User{})
	if err != nil {
		return err
	}
	m.db = db

	if m.cfg.UsingDevSecret() {
		m.logger.Warn("JWT_SECRET_KEY not set, using development signing key")
	}

	tokens := NewTokenCodec(TokenConfig{
		SecretKey: m.cfg.JWTSecretKey,
		Lifetime:  m.cfg.TokenLifetime,
		Issuer:    m.cfg.JWTIssuer,
	})
	m.service = NewAuthService(NewUserRepository(db), NewPasswordHasher(), tokens)

	m.logger.Info("Module started", "database", m.cfg.DBPath, "token_lifetime", m.cfg.TokenLifetime.String())
	return nil
}

// Stop closes the user store.
func (m *AuthModule) Stop(_ context.Context) error {
	if err := storage.Close(m.db); err != nil {
		m.logger.Error("Failed to close database", "error", err)
	}
	m.logger.Info("Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *AuthModule) Health(_ context.Context) mono.HealthStatus {
	if err := storage.Ping(m.db); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: err.Error(),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"database": m.cfg.DBPath,
		},
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *AuthModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "register", json.Unmarshal, json.Marshal, m.handleRegister,
	); err != nil {
		return fmt.Errorf("failed to register register service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "login", json.Unmarshal, json.Marshal, m.handleLogin,
	); err != nil {
		return fmt.Errorf("failed to register login service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "validate-token", json.Unmarshal, json.Marshal, m.handleValidateToken,
	); err != nil {
		return fmt.Errorf("failed to register validate-token service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get-user", json.Unmarshal, json.Marshal, m.handleGetUser,
	); err != nil {
		return fmt.Errorf("failed to register get-user service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get-user-by-email", json.Unmarshal, json.Marshal, m.handleGetUserByEmail,
	); err != nil {
		return fmt.Errorf("failed to register get-user-by-email service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get-users", json.Unmarshal, json.Marshal, m.handleGetUsers,
	); err != nil {
		return fmt.Errorf("failed to register get-users service: %w", err)
	}

	m.logger.Info("Registered services", "services", "register, login, validate-token, get-user, get-user-by-email, get-users")
	return nil
}

func (m *AuthModule) handleRegister(ctx context.Context, req RegisterRequest, _ *mono.Msg) (RegisterResponse, error) {
	user, err := m.service.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		return RegisterResponse{}, err
	}

	m.logger.Info("User registered", "user_id", user.ID)
	return RegisterResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}, nil
}

func (m *AuthModule) handleLogin(ctx context.Context, req LoginRequest, _ *mono.Msg) (LoginResponse, error) {
	result, err := m.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		return LoginResponse{}, err
	}

	return LoginResponse{
		Token:     result.Token,
		TokenType: result.TokenType,
		ExpiresIn: result.ExpiresIn,
		User:      result.User,
	}, nil
}

// handleValidateToken reports verification failures in the response rather
// than as a service error.
func (m *AuthModule) handleValidateToken(ctx context.Context, req ValidateTokenRequest, _ *mono.Msg) (ValidateTokenResponse, error) {
	userID, err := m.service.ValidateToken(ctx, req.Token)
	if err != nil {
		return ValidateTokenResponse{
			Valid: false,
			Error: err.Error(),
		}, nil
	}

	return ValidateTokenResponse{
		Valid:  true,
		UserID: userID,
	}, nil
}

func (m *AuthModule) handleGetUser(ctx context.Context, req GetUserRequest, _ *mono.Msg) (GetUserResponse, error) {
	user, err := m.service.GetUser(ctx, req.UserID)
	return toGetUserResponse(user, err)
}

func (m *AuthModule) handleGetUserByEmail(ctx context.Context, req GetUserByEmailRequest, _ *mono.Msg) (GetUserResponse, error) {
	user, err := m.service.FindByEmail(ctx, req.Email)
	return toGetUserResponse(user, err)
}

func (m *AuthModule) handleGetUsers(ctx context.Context, req GetUsersRequest, _ *mono.Msg) (GetUsersResponse, error) {
	profiles, err := m.service.GetProfiles(ctx, req.UserIDs)
	if err != nil {
		return GetUsersResponse{}, err
	}
	return GetUsersResponse{Users: profiles}, nil
}

func toGetUserResponse(user *domain.User, err error) (GetUserResponse, error) {
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return GetUserResponse{Found: false}, nil
		}
		return GetUserResponse{}, err
	}
	return GetUserResponse{
		Found: true,
		User:  user.Profile(),
	}, nil
}
