package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sdhealth/pathway-tracker/common/clients"
	"github.com/sdhealth/pathway-tracker/common/logger"
	"github.com/sdhealth/pathway-tracker/common/redis"
)

// ContextKey is a custom type for echo context keys to avoid collisions
type ContextKey string

const (
	// UserIDKey is the echo context key for the authenticated user id
	UserIDKey ContextKey = "user_id"
	// SessionTokenKey is the echo context key for the raw session token
	SessionTokenKey ContextKey = "session_token"
)

// ErrSessionNotFound indicates the token maps to no live session
var ErrSessionNotFound = errors.New("session not found")

// Session is the authenticated state stored against one SDSESSION token
type Session struct {
	UserID int64 `json:"user_id"`
}

// SessionStore resolves a session token to its session
type SessionStore interface {
	Get(ctx context.Context, token string) (*Session, error)
}

// RedisSessionStore resolves sessions from redis, where the auth service
// writes them under session:<token>
type RedisSessionStore struct {
	redis *redis.Client
}

var _ SessionStore = (*RedisSessionStore)(nil)

// NewRedisSessionStore creates a redis-backed session store
func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{redis: client}
}

// Get fetches and decodes one session
func (s *RedisSessionStore) Get(ctx context.Context, token string) (*Session, error) {
	raw, err := s.redis.Get(ctx, fmt.Sprintf("session:%s", token))
	if errors.Is(err, redis.ErrKeyNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	session := &Session{}
	if err := json.Unmarshal([]byte(raw), session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}

	return session, nil
}

// SessionTokenHeader is the header fallback for clients that cannot set
// cookies
const SessionTokenHeader = "X-Session-Token"

// RequireSession authenticates requests by their SDSESSION cookie, with
// an X-Session-Token header fallback. The resolved user id and the raw
// token are stored on the echo context and mirrored into the request
// context for downstream clients.
func RequireSession(store SessionStore, log *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := ""
			if cookie, err := c.Cookie(clients.SessionCookieName); err == nil {
				token = cookie.Value
			}
			if token == "" {
				token = c.Request().Header.Get(SessionTokenHeader)
			}
			if token == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "missing session token",
				})
			}

			session, err := store.Get(c.Request().Context(), token)
			if errors.Is(err, ErrSessionNotFound) {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "invalid or expired session",
				})
			}
			if err != nil {
				log.ErrorContext(c.Request().Context(), "session lookup failed", "error", err)
				return c.JSON(http.StatusInternalServerError, map[string]string{
					"error": "session lookup failed",
				})
			}

			c.Set(string(UserIDKey), session.UserID)
			c.Set(string(SessionTokenKey), token)

			ctx := clients.WithSessionToken(c.Request().Context(), token)
			ctx = clients.WithUserID(ctx, fmt.Sprintf("%d", session.UserID))
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// GetUserID returns the authenticated user id set by RequireSession
func GetUserID(c echo.Context) int64 {
	if id, ok := c.Get(string(UserIDKey)).(int64); ok {
		return id
	}
	return 0
}

// GetSessionToken returns the raw session token set by RequireSession
func GetSessionToken(c echo.Context) string {
	if token, ok := c.Get(string(SessionTokenKey)).(string); ok {
		return token
	}
	return ""
}
