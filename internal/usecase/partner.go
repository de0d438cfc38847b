package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domainErrors "github.com/polkiloo/floristportal/internal/domain/errors"
	"github.com/polkiloo/floristportal/internal/domain/model"
	"github.com/polkiloo/floristportal/internal/domain/repository"
	"github.com/polkiloo/floristportal/internal/ingest"
	pkgAuth "github.com/polkiloo/floristportal/internal/pkg/auth"
)

// PartnerInput carries partner fields. Password is optional on update.
type PartnerInput struct {
	Name       string
	Email      string
	Password   string
	Phone      string
	Address    string
	ZoneRanges []string
}

// PartnerUseCase manages fulfillment partner accounts.
type PartnerUseCase struct {
	users  repository.UserRepository
	hasher pkgAuth.PasswordHasher
}

func NewPartnerUseCase(users repository.UserRepository, hasher pkgAuth.PasswordHasher) *PartnerUseCase {
	return &PartnerUseCase{users: users, hasher: hasher}
}

// List returns partners in roster order, the order auto assignment uses.
func (u *PartnerUseCase) List(ctx context.Context) ([]model.User, error) {
	return u.users.ListByRole(ctx, model.RolePartner)
}

func (u *PartnerUseCase) Create(ctx context.Context, in PartnerInput) (*model.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", domainErrors.ErrInvalidInput)
	}
	ranges, err := cleanZoneRanges(in.ZoneRanges)
	if err != nil {
		return nil, err
	}

	hash, err := u.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, pkgAuth.ErrPasswordTooShort) {
			return nil, fmt.Errorf("%w: %v", domainErrors.ErrInvalidInput, err)
		}
		return nil, err
	}

	return u.users.Create(ctx, &model.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         model.RolePartner,
		Phone:        strings.TrimSpace(in.Phone),
		Address:      strings.TrimSpace(in.Address),
		ZoneRanges:   ranges,
	})
}

// Update replaces partner fields. An empty password keeps the current one.
func (u *PartnerUseCase) Update(ctx context.Context, id int64, in PartnerInput) (*model.User, error) {
	partner, err := u.get(ctx, id)
	if err != nil {
		return nil, err
	}
	ranges, err := cleanZoneRanges(in.ZoneRanges)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(in.Name); name != "" {
		partner.Name = name
	}
	if email := normalizeEmail(in.Email); email != "" {
		partner.Email = email
	}
	partner.Phone = strings.TrimSpace(in.Phone)
	partner.Address = strings.TrimSpace(in.Address)
	partner.ZoneRanges = ranges

	if in.Password != "" {
		hash, err := u.hasher.Hash(in.Password)
		if err != nil {
			if errors.Is(err, pkgAuth.ErrPasswordTooShort) {
				return nil, fmt.Errorf("%w: %v", domainErrors.ErrInvalidInput, err)
			}
			return nil, err
		}
		partner.PasswordHash = hash
	}

	if err := u.users.Update(ctx, partner); err != nil {
		return nil, err
	}
	return partner, nil
}

// Delete unassigns the partner's orders and removes the account.
func (u *PartnerUseCase) Delete(ctx context.Context, id int64) error {
	if _, err := u.get(ctx, id); err != nil {
		return err
	}
	return u.users.Delete(ctx, id)
}

func (u *PartnerUseCase) get(ctx context.Context, id int64) (*model.User, error) {
	usr, err := u.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if usr.Role != model.RolePartner {
		return nil, domainErrors.ErrNotFound
	}
	return usr, nil
}

func cleanZoneRanges(ranges []string) ([]string, error) {
	out := make([]string, 0, len(ranges))
	for _, r := range ranges {
		r = strings.ReplaceAll(strings.TrimSpace(r), " ", "")
		if r == "" {
			continue
		}
		if !ingest.ValidZoneRange(r) {
			return nil, fmt.Errorf("%w: %q", domainErrors.ErrInvalidZoneRange, r)
		}
		out = append(out, r)
	}
	return out, nil
}
