package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultTTL       = 24 * 7 * time.Hour
	TokenHeader      = "X-FITASSIST-TOKEN"
	sessionKeyPrefix = "fitassist-session||"
	tokensSetKey     = "fitassist-sessions"
)

var (
	ErrSessionExpired = errors.New("session expired")
	ErrLoggedOut      = errors.New("session logged out")
	ErrInvalidSession = errors.New("invalid session value")
)

// Session binds a login token to the user that owns it.
type Session struct {
	Token     string
	UserID    int
	CreatedAt time.Time
}

// session values are stored as "<user id>:<created at unix>",
// a logged-out session keeps the user id with created at set to 0
func encodeSession(userID int, createdAt time.Time) string {
	return fmt.Sprintf("%d:%d", userID, createdAt.Unix())
}

func decodeSession(token, val string) (*Session, error) {
	userIDStr, createdAtStr, found := strings.Cut(val, ":")
	if !found {
		return nil, ErrInvalidSession
	}
	userID, err := strconv.Atoi(userIDStr)
	if err != nil {
		return nil, fmt.Errorf("%w: user id: %s", ErrInvalidSession, err)
	}
	createdAtUnix, err := strconv.ParseInt(createdAtStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: created at: %s", ErrInvalidSession, err)
	}
	if createdAtUnix <= 0 {
		return nil, ErrLoggedOut
	}

	return &Session{
		Token:     token,
		UserID:    userID,
		CreatedAt: time.Unix(createdAtUnix, 0),
	}, nil
}

type ctxKey struct{}

func ContextWithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// UserIDFromContext returns the id of the logged user, set by the auth middleware.
func UserIDFromContext(ctx context.Context) (int, bool) {
	userID, ok := ctx.Value(ctxKey{}).(int)
	return userID, ok
}
