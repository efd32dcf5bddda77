package dto

import (
	"time"

	domainuser "vidaview/internal/domain/user"
)

// UserProfile is what a user may see about their own account. The password
// hash never leaves the domain.
type UserProfile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	Active    bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func MapUserProfile(u *domainuser.User) UserProfile {
	if u == nil {
		return UserProfile{}
	}
	return UserProfile{
		ID:        string(u.ID),
		Email:     u.Email,
		Name:      u.Name,
		Phone:     u.Phone,
		Role:      string(u.Role),
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// Session is returned by register and login.
type Session struct {
	User      UserProfile `json:"user"`
	Token     string      `json:"token"`
	TokenType string      `json:"token_type"`
	ExpiresAt time.Time   `json:"expires_at"`
}

func NewSession(u *domainuser.User, token string, expiresAt time.Time) Session {
	return Session{
		User:      MapUserProfile(u),
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: expiresAt.UTC(),
	}
}
