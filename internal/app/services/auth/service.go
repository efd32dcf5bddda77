package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"vidaview/internal/app/access"
	domainauth "vidaview/internal/domain/auth"
	"vidaview/internal/domain/shared/errs"
	domainuser "vidaview/internal/domain/user"
)

const (
	minPasswordRunes  = 8
	defaultSessionTTL = 24 * time.Hour
)

var (
	ErrInvalidCredentials = errs.Authorization("auth: invalid credentials")
	ErrPasswordTooShort   = errs.Validation("auth: password must be at least 8 characters")
	ErrUserInactive       = errs.Authorization("auth: user is deactivated")
	ErrRoleNotSelectable  = errs.Validation("auth: role must be tenant or owner")
	ErrMisconfigured      = errors.New("auth: service misconfigured")
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type TokenGenerator interface {
	NewToken() (string, error)
}

// Service registers users and maps bearer tokens onto actors.
type Service struct {
	Users      domainuser.Repository
	Sessions   domainauth.SessionStore
	Passwords  PasswordHasher
	Tokens     TokenGenerator
	SessionTTL time.Duration
	Logger     *slog.Logger
	Clock      func() time.Time
}

type RegisterParams struct {
	Email    string
	Name     string
	Phone    string
	Password string
	Role     string
}

// signup is RegisterParams after trimming and role selection.
type signup struct {
	email string
	name  string
	phone string
	role  domainuser.Role
}

func (p RegisterParams) normalize() (signup, error) {
	s := signup{
		email: domainuser.NormalizeEmail(p.Email),
		name:  strings.TrimSpace(p.Name),
		phone: strings.TrimSpace(p.Phone),
		role:  domainuser.RoleTenant,
	}
	switch {
	case s.email == "":
		return signup{}, domainuser.ErrEmailRequired
	case s.name == "":
		return signup{}, domainuser.ErrNameRequired
	case utf8.RuneCountInString(p.Password) < minPasswordRunes:
		return signup{}, ErrPasswordTooShort
	}
	if raw := strings.TrimSpace(p.Role); raw != "" {
		role, err := domainuser.ParseRole(raw)
		if err != nil {
			return signup{}, err
		}
		if role == domainuser.RoleAdmin {
			return signup{}, ErrRoleNotSelectable
		}
		s.role = role
	}
	return s, nil
}

type LoginParams struct {
	Email    string
	Password string
}

type AuthResult struct {
	User      *domainuser.User
	Token     string
	ExpiresAt time.Time
}

type ResolveResult struct {
	User    *domainuser.User
	Session *domainauth.Session
}

// Actor is the identity handed to every command and query.
func (r *ResolveResult) Actor() access.Actor {
	if r == nil || r.User == nil {
		return access.Actor{}
	}
	return access.Actor{UserID: r.User.ID, Role: r.User.Role}
}

// Register creates a tenant or owner account; admins are provisioned out of band.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*AuthResult, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	in, err := params.normalize()
	if err != nil {
		return nil, err
	}
	switch _, err := s.Users.ByEmail(ctx, in.email); {
	case err == nil:
		return nil, domainuser.ErrEmailAlreadyUsed
	case !errors.Is(err, domainuser.ErrNotFound):
		return nil, err
	}
	hash, err := s.Passwords.Hash(params.Password)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}
	user, err := domainuser.NewUser(domainuser.CreateParams{
		ID:           domainuser.ID(uuid.NewString()),
		Email:        in.email,
		Name:         in.name,
		Phone:        in.phone,
		PasswordHash: hash,
		Role:         in.role,
		CreatedAt:    s.now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.Users.Save(ctx, user); err != nil {
		return nil, err
	}
	result, err := s.openSession(ctx, user)
	if err != nil {
		return nil, err
	}
	s.log().Info("user registered", "user_id", user.ID, "email", user.Email, "role", user.Role)
	return result, nil
}

// Login checks the password before the active flag so a deactivated account
// is not revealed to someone guessing.
func (s *Service) Login(ctx context.Context, params LoginParams) (*AuthResult, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	user, err := s.authenticate(ctx, params.Email, params.Password)
	if err != nil {
		return nil, err
	}
	if !user.Active {
		return nil, ErrUserInactive
	}
	result, err := s.openSession(ctx, user)
	if err != nil {
		return nil, err
	}
	s.log().Info("user authenticated", "user_id", user.ID)
	return result, nil
}

func (s *Service) authenticate(ctx context.Context, email, password string) (*domainuser.User, error) {
	email = domainuser.NormalizeEmail(email)
	if email == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.Users.ByEmail(ctx, email)
	if errors.Is(err, domainuser.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if s.Passwords.Compare(user.PasswordHash, password) != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Logout drops the session behind token. An empty or unknown token is not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if token = strings.TrimSpace(token); token == "" {
		return nil
	}
	if err := s.Sessions.Delete(ctx, domainauth.DigestOf(token)); err != nil {
		return err
	}
	s.log().Debug("session terminated")
	return nil
}

// ResolveToken loads the session and its user. The role is always read from
// the user record so a role change takes effect on the next request.
func (s *Service) ResolveToken(ctx context.Context, token string) (*ResolveResult, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if token = strings.TrimSpace(token); token == "" {
		return nil, domainauth.ErrTokenRequired
	}
	session, err := s.Sessions.Get(ctx, domainauth.DigestOf(token))
	if err != nil {
		return nil, err
	}
	if session.Expired(s.now()) {
		s.discard(ctx, session)
		return nil, domainauth.ErrSessionNotFound
	}
	user, err := s.Users.ByID(ctx, session.UserID)
	if errors.Is(err, domainuser.ErrNotFound) {
		s.discard(ctx, session)
		return nil, domainauth.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	if !user.Active {
		if err := s.Sessions.RevokeUser(ctx, user.ID); err != nil {
			s.log().Warn("revoke sessions of inactive user failed", "user_id", user.ID, "error", err)
		}
		return nil, ErrUserInactive
	}
	return &ResolveResult{User: user, Session: session}, nil
}

func (s *Service) discard(ctx context.Context, session *domainauth.Session) {
	if err := s.Sessions.Delete(ctx, session.ID); err != nil {
		s.log().Warn("drop stale session failed", "user_id", session.UserID, "error", err)
	}
}

// openSession hands out a fresh bearer token; only its digest is stored.
func (s *Service) openSession(ctx context.Context, user *domainuser.User) (*AuthResult, error) {
	token, err := s.Tokens.NewToken()
	if err != nil {
		return nil, fmt.Errorf("auth: new token: %w", err)
	}
	ttl := s.SessionTTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	session, err := domainauth.Issue(domainauth.IssueParams{
		Token:  token,
		UserID: user.ID,
		TTL:    ttl,
		Now:    s.now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: session.ExpiresAt}, nil
}

func (s *Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

func (s *Service) log() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *Service) ready() error {
	var missing []string
	if s.Users == nil {
		missing = append(missing, "users")
	}
	if s.Sessions == nil {
		missing = append(missing, "sessions")
	}
	if s.Passwords == nil {
		missing = append(missing, "passwords")
	}
	if s.Tokens == nil {
		missing = append(missing, "tokens")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrMisconfigured, strings.Join(missing, ", "))
	}
	return nil
}
