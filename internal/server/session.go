package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	sessionCookieName = "chat-session"
	sessionValueKey   = "session_id"
	sessionHeader     = "X-Session-ID"
	maxSessionIDLen   = 128

	userSessionPrefix   = "user:"
	socketSessionPrefix = "ws:"
)

var (
	errInvalidSessionID = errors.New("invalid session id")
	errInvalidToken     = errors.New("invalid or expired token")
)

// ChatClaims is the bearer token issued by the account service.
type ChatClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// resolveSessionID picks the conversation the request belongs to. In order: the user of a
// bearer token, the id sent in the body, the X-Session-ID header, and finally the
// chat-session cookie, which is created on first contact.
func (s *Server) resolveSessionID(c echo.Context, explicit string) (string, error) {
	if authHeader := c.Request().Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") && len(s.jwtSecret) > 0 {
		userID, err := s.userFromToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			return "", err
		}
		return userSessionPrefix + userID, nil
	}

	if id := strings.TrimSpace(explicit); id != "" {
		return validSessionID(id)
	}
	if id := strings.TrimSpace(c.Request().Header.Get(sessionHeader)); id != "" {
		return validSessionID(id)
	}

	return s.cookieSessionID(c)
}

// validSessionID checks an id chosen by the client. The user: and ws: namespaces are
// assigned by the server only.
func validSessionID(id string) (string, error) {
	if len(id) > maxSessionIDLen {
		return "", fmt.Errorf("%w: longer than %d characters", errInvalidSessionID, maxSessionIDLen)
	}
	for _, prefix := range []string{userSessionPrefix, socketSessionPrefix} {
		if strings.HasPrefix(id, prefix) {
			return "", fmt.Errorf("%w: %q is reserved", errInvalidSessionID, prefix)
		}
	}
	return id, nil
}

func (s *Server) userFromToken(tokenString string) (string, error) {
	claims := &ChatClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: %v", errInvalidToken, err)
	}
	if claims.UserID == "" {
		return "", fmt.Errorf("%w: missing user_id", errInvalidToken)
	}
	return claims.UserID, nil
}

// cookieSessionID reads the session id from the chat cookie, issuing a new one if needed.
// A cookie that fails to decode (rotated secret) is replaced.
func (s *Server) cookieSessionID(c echo.Context) (string, error) {
	sess, _ := s.cookies.Get(c.Request(), sessionCookieName)
	if id, ok := sess.Values[sessionValueKey].(string); ok && id != "" {
		return id, nil
	}

	id := uuid.New().String()
	sess.Values[sessionValueKey] = id
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return "", fmt.Errorf("save chat cookie: %w", err)
	}
	return id, nil
}

// sessionError maps identity failures to a status code.
func sessionError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, errInvalidToken):
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or expired token"})
	case errors.Is(err, errInvalidSessionID):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid session ID"})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Could not establish a chat session"})
	}
}
