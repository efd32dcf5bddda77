package user

import (
	"context"
	"strings"
	"time"

	"vidaview/internal/domain/shared/errs"
)

var (
	ErrIDRequired          = errs.Validation("user: id is required")
	ErrEmailRequired       = errs.Validation("user: email is required")
	ErrPasswordHashMissing = errs.Validation("user: password hash is required")
	ErrNameRequired        = errs.Validation("user: name is required")
	ErrInvalidRole         = errs.Validation("user: invalid role")
	ErrEmailAlreadyUsed    = errs.Conflict("user: email already used")
	ErrNotFound            = errs.NotFound("user: not found")
)

type ID string

// Role is the closed set of marketplace roles.
type Role string

const (
	RoleTenant Role = "tenant"
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
)

// ParseRole maps free-form input onto a Role.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleTenant:
		return RoleTenant, nil
	case RoleOwner:
		return RoleOwner, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", ErrInvalidRole
	}
}

type User struct {
	ID           ID
	Email        string
	Name         string
	Phone        string
	PasswordHash string
	Role         Role
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*User, error)
	ByEmail(ctx context.Context, email string) (*User, error)
	Save(ctx context.Context, user *User) error
	CountByRole(ctx context.Context) (map[Role]int, error)
}

type CreateParams struct {
	ID           ID
	Email        string
	Name         string
	Phone        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

func NewUser(params CreateParams) (*User, error) {
	id := strings.TrimSpace(string(params.ID))
	if id == "" {
		return nil, ErrIDRequired
	}
	email := NormalizeEmail(params.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	if strings.TrimSpace(params.PasswordHash) == "" {
		return nil, ErrPasswordHashMissing
	}
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	role := params.Role
	if role == "" {
		role = RoleTenant
	}
	role, err := ParseRole(string(role))
	if err != nil {
		return nil, err
	}

	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	return &User{
		ID:           ID(id),
		Email:        email,
		Name:         name,
		Phone:        strings.TrimSpace(params.Phone),
		PasswordHash: params.PasswordHash,
		Role:         role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (u *User) Deactivate(now time.Time) {
	u.Active = false
	u.touch(now)
}

func (u *User) touch(now time.Time) {
	if now.IsZero() {
		now = time.Now()
	}
	u.UpdatedAt = now.UTC()
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
