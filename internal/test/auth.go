package test

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/polkiloo/floristportal/internal/domain/model"
	pkgAuth "github.com/polkiloo/floristportal/internal/pkg/auth"
)

// HashPrefix marks passwords "hashed" by HasherStub.
const HashPrefix = "hash:"

var errPasswordMismatch = errors.New("password mismatch")

// HasherStub stores passwords as HashPrefix+password. The function fields
// replace either half.
type HasherStub struct {
	HashFn    func(string) (string, error)
	CompareFn func(string, string) error
}

func (h HasherStub) Hash(password string) (string, error) {
	if h.HashFn != nil {
		return h.HashFn(password)
	}
	return HashPrefix + password, nil
}

func (h HasherStub) Compare(hash, password string) error {
	if h.CompareFn != nil {
		return h.CompareFn(hash, password)
	}
	if strings.TrimPrefix(hash, HashPrefix) != password || !strings.HasPrefix(hash, HashPrefix) {
		return errPasswordMismatch
	}
	return nil
}

// StrategyStub issues readable "session-<id>-<role>" tokens that it can parse
// back. Sessions last a day, or a week when remembered, counted from Now.
type StrategyStub struct {
	IssueFn func(int64, model.Role, bool) (string, time.Time, error)
	ParseFn func(string) (pkgAuth.Claims, error)
	Now     func() time.Time
}

// SessionToken is the token StrategyStub issues for a user.
func SessionToken(userID int64, role model.Role) string {
	return fmt.Sprintf("session-%d-%s", userID, role)
}

func (s StrategyStub) IssueToken(userID int64, role model.Role, remember bool) (string, time.Time, error) {
	if s.IssueFn != nil {
		return s.IssueFn(userID, role, remember)
	}
	ttl := 24 * time.Hour
	if remember {
		ttl *= 7
	}
	return SessionToken(userID, role), s.now().Add(ttl), nil
}

func (s StrategyStub) ParseToken(token string) (pkgAuth.Claims, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	var (
		id   int64
		role string
	)
	if _, err := fmt.Sscanf(token, "session-%d-%s", &id, &role); err != nil {
		return pkgAuth.Claims{}, pkgAuth.ErrInvalidToken
	}
	return pkgAuth.Claims{UserID: id, Role: model.Role(role)}, nil
}

func (s StrategyStub) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Unix(0, 0).UTC()
}
