package api

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/example/task-tracker/domain/user"
	"github.com/example/task-tracker/modules/auth"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/singleflight"
)

// userLookupTimeout bounds a shared user lookup, which runs detached from
// any single request.
const userLookupTimeout = 5 * time.Second

// AuthMiddleware authenticates the caller from a Bearer token and stores the
// resolved *user.Identity under user.IdentityKey. WebSocket handshakes may
// pass the token as a "token" query parameter instead. Only a rejected token
// or a user that no longer exists is a 401; lookup failures are a 500.
func AuthMiddleware(authPort auth.AuthPort, logger types.Logger) fiber.Handler {
	var lookups singleflight.Group

	return func(c *fiber.Ctx) error {
		token, msg := bearerToken(c)
		if token == "" {
			return unauthenticated(c, msg)
		}

		userID, err := authPort.ValidateToken(c.UserContext(), token)
		if err != nil {
			if isTokenError(err) {
				return unauthenticated(c, "Invalid or expired token")
			}
			logger.Error("Token validation failed", "error", err)
			return internalError(c)
		}

		ch := lookups.DoChan(userID, func() (any, error) {
			ctx, cancel := context.WithTimeout(context.Background(), userLookupTimeout)
			defer cancel()
			return authPort.GetUser(ctx, userID)
		})

		var res singleflight.Result
		select {
		case res = <-ch:
		case <-c.UserContext().Done():
			return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{
				Error:   "internal_error",
				Message: "Request cancelled",
			})
		}

		if res.Err != nil {
			if errors.Is(res.Err, auth.ErrUserNotFound) {
				return unauthenticated(c, "Unknown user")
			}
			logger.Error("User lookup failed", "user_id", userID, "error", res.Err)
			return internalError(c)
		}

		profile, ok := res.Val.(*user.Profile)
		if !ok || profile == nil {
			return unauthenticated(c, "Unknown user")
		}
		c.Locals(user.IdentityKey, &user.Identity{
			UserID: profile.ID,
			Name:   profile.Name,
			Email:  profile.Email,
		})

		return c.Next()
	}
}

func isTokenError(err error) bool {
	return errors.Is(err, auth.ErrExpiredToken) ||
		errors.Is(err, auth.ErrInvalidSignature) ||
		errors.Is(err, auth.ErrMalformedToken)
}

// IdentityFrom returns the identity stored by AuthMiddleware.
func IdentityFrom(c *fiber.Ctx) (*user.Identity, bool) {
	identity, ok := c.Locals(user.IdentityKey).(*user.Identity)
	return identity, ok && identity != nil
}

func bearerToken(c *fiber.Ctx) (string, string) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		if websocket.IsWebSocketUpgrade(c) {
			if token := c.Query("token"); token != "" {
				return token, ""
			}
		}
		return "", "Authorization header is required"
	}

	if !strings.HasPrefix(header, "Bearer ") {
		return "", "Invalid authorization header format. Use: Bearer <token>"
	}

	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		return "", "Token is required"
	}
	return token, ""
}

func internalError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}

func unauthenticated(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
		Error:   "unauthenticated",
		Message: message,
	})
}
