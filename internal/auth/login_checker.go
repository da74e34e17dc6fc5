package auth

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

type LoginChecker struct {
	ttl         time.Duration
	redisClient *redis.Client
	nowFunc     func() time.Time
}

func NewLoginChecker(ttl time.Duration, redisClient *redis.Client) *LoginChecker {
	return &LoginChecker{
		ttl:         ttl,
		redisClient: redisClient,
		nowFunc:     time.Now,
	}
}

// Session returns the live session for the token, or an error when the
// token is unknown (redis.Nil), logged out or expired.
func (c *LoginChecker) Session(ctx context.Context, token string) (*Session, error) {
	cmd := c.redisClient.Get(ctx, sessionKeyPrefix+token)
	if err := cmd.Err(); err != nil {
		return nil, err
	}

	session, err := decodeSession(token, cmd.Val())
	if err != nil {
		return nil, err
	}

	if c.nowFunc().Sub(session.CreatedAt) > c.ttl {
		return nil, ErrSessionExpired
	}

	return session, nil
}

func (c *LoginChecker) IsLogged(ctx context.Context, token string) (bool, error) {
	_, err := c.Session(ctx, token)
	switch err {
	case nil:
		return true, nil
	case ErrSessionExpired, ErrLoggedOut:
		return false, nil
	default:
		return false, err
	}
}
