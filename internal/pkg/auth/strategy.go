package auth

import (
	"time"

	"github.com/polkiloo/floristportal/internal/domain/model"
)

// Claims is the identity carried by a session token.
type Claims struct {
	UserID    int64
	Role      model.Role
	ExpiresAt time.Time
}

// Strategy issues and verifies session tokens.
type Strategy interface {
	// IssueToken signs a token for the user. remember selects the long lifetime.
	IssueToken(userID int64, role model.Role, remember bool) (string, time.Time, error)
	ParseToken(token string) (Claims, error)
}

type Options struct {
	TTL         time.Duration
	RememberTTL time.Duration
}
