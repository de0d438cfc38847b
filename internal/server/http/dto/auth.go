package dto

import (
	"time"

	"github.com/polkiloo/floristportal/internal/domain/model"
)

// LoginRequest describes email/password payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Remember bool   `json:"remember"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Role       model.Role `json:"role"`
	Phone      string     `json:"phone,omitempty"`
	Address    string     `json:"address,omitempty"`
	ZoneRanges []string   `json:"zoneRanges"`
}

// SessionResponse is returned by login.
type SessionResponse struct {
	User      UserResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

// NewUserResponse maps u without its password hash.
func NewUserResponse(u *model.User) UserResponse {
	ranges := u.ZoneRanges
	if ranges == nil {
		ranges = []string{}
	}
	return UserResponse{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		Phone:      u.Phone,
		Address:    u.Address,
		ZoneRanges: ranges,
	}
}
