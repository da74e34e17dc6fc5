package auth

import "context"

var _ Checker = (*LoginChecker)(nil)
var _ Checker = (*LoginTestChecker)(nil)

type Checker interface {
	Session(ctx context.Context, token string) (*Session, error)
}

// LoginTestChecker is an in-memory Checker: token -> user id.
type LoginTestChecker struct {
	LoggedSessions map[string]int
}

func NewLoginTestChecker() *LoginTestChecker {
	return &LoginTestChecker{
		LoggedSessions: map[string]int{},
	}
}

func (c *LoginTestChecker) Session(_ context.Context, token string) (*Session, error) {
	userID, ok := c.LoggedSessions[token]
	if !ok {
		return nil, ErrLoggedOut
	}
	return &Session{Token: token, UserID: userID}, nil
}
