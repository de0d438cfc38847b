package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domainErrors "github.com/polkiloo/floristportal/internal/domain/errors"
	"github.com/polkiloo/floristportal/internal/domain/model"
	"github.com/polkiloo/floristportal/internal/domain/repository"
	pkgAuth "github.com/polkiloo/floristportal/internal/pkg/auth"
)

// Session is the result of a successful login.
type Session struct {
	User      *model.User
	Token     string
	ExpiresAt time.Time
}

// AuthUseCase handles login and token management.
type AuthUseCase struct {
	users  repository.UserRepository
	hasher pkgAuth.PasswordHasher
	tokens pkgAuth.Strategy
}

// NewAuthUseCase constructs AuthUseCase.
func NewAuthUseCase(users repository.UserRepository, hasher pkgAuth.PasswordHasher, strategy pkgAuth.Strategy) *AuthUseCase {
	return &AuthUseCase{users: users, hasher: hasher, tokens: strategy}
}

// Login validates credentials and issues a session token.
func (u *AuthUseCase) Login(ctx context.Context, email, password string, remember bool) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domainErrors.ErrInvalidCredentials
	}

	usr, err := u.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, domainErrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := u.hasher.Compare(usr.PasswordHash, password); err != nil {
		return nil, domainErrors.ErrInvalidCredentials
	}

	token, expires, err := u.tokens.IssueToken(usr.ID, usr.Role, remember)
	if err != nil {
		return nil, err
	}

	return &Session{User: usr, Token: token, ExpiresAt: expires}, nil
}

// ParseToken extracts the claims of a session token.
func (u *AuthUseCase) ParseToken(token string) (pkgAuth.Claims, error) {
	if token == "" {
		return pkgAuth.Claims{}, pkgAuth.ErrInvalidToken
	}
	return u.tokens.ParseToken(token)
}

// Me returns the user behind a session. Deleted users lose their session.
func (u *AuthUseCase) Me(ctx context.Context, id int64) (*model.User, error) {
	usr, err := u.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, pkgAuth.ErrInvalidToken
		}
		return nil, err
	}
	return usr, nil
}

// BootstrapAdmin creates the first admin account when the user table is
// empty. It reports whether an account was created.
func (u *AuthUseCase) BootstrapAdmin(ctx context.Context, email, password string) (bool, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return false, nil
	}
	count, err := u.users.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	hash, err := u.hasher.Hash(password)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}
	_, err = u.users.Create(ctx, &model.User{
		Name:         "Administrator",
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
	})
	if err != nil {
		if errors.Is(err, domainErrors.ErrAlreadyExists) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
