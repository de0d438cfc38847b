package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/polkiloo/floristportal/internal/domain/model"
)

var ErrInvalidToken = errors.New("invalid auth token")

const (
	defaultTTL         = 24 * time.Hour
	defaultRememberTTL = 7 * 24 * time.Hour
)

// HMACStrategy signs "id:role:expiry" payloads with HMAC-SHA256.
type HMACStrategy struct {
	secret      []byte
	ttl         time.Duration
	rememberTTL time.Duration
	now         func() time.Time
}

func NewHMACStrategy(secret string, opts Options) *HMACStrategy {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	rememberTTL := opts.RememberTTL
	if rememberTTL <= 0 {
		rememberTTL = defaultRememberTTL
	}
	return &HMACStrategy{
		secret:      []byte(secret),
		ttl:         ttl,
		rememberTTL: rememberTTL,
		now:         time.Now,
	}
}

func (s *HMACStrategy) IssueToken(userID int64, role model.Role, remember bool) (string, time.Time, error) {
	if strings.Contains(string(role), ":") {
		return "", time.Time{}, fmt.Errorf("role %q: %w", role, ErrInvalidToken)
	}
	ttl := s.ttl
	if remember {
		ttl = s.rememberTTL
	}
	expires := s.now().Add(ttl).Truncate(time.Second)
	payload := fmt.Sprintf("%d:%s:%d", userID, role, expires.Unix())
	token := payload + ":" + s.sign(payload)
	return base64.RawURLEncoding.EncodeToString([]byte(token)), expires, nil
}

func (s *HMACStrategy) ParseToken(token string) (Claims, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}

	parts := strings.Split(string(raw), ":")
	if len(parts) != 4 {
		return Claims{}, ErrInvalidToken
	}

	payload := strings.Join(parts[:3], ":")
	if !hmac.Equal([]byte(s.sign(payload)), []byte(parts[3])) {
		return Claims{}, ErrInvalidToken
	}

	userID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	expires, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	expiresAt := time.Unix(expires, 0)
	if !expiresAt.After(s.now()) {
		return Claims{}, ErrInvalidToken
	}

	return Claims{UserID: userID, Role: model.Role(parts[1]), ExpiresAt: expiresAt}, nil
}

func (s *HMACStrategy) sign(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
