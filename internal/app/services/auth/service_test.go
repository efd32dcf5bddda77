package auth_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidaview/internal/app/services/auth"
	domainauth "vidaview/internal/domain/auth"
	"vidaview/internal/domain/shared/errs"
	domainuser "vidaview/internal/domain/user"
	"vidaview/internal/infra/storage/memory"
)

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "h:" + password, nil }

func (plainHasher) Compare(hash, password string) error {
	if hash != "h:"+password {
		return errors.New("mismatch")
	}
	return nil
}

type counterTokens struct{ n int }

func (c *counterTokens) NewToken() (string, error) {
	c.n++
	return fmt.Sprintf("tok-%d", c.n), nil
}

func newService() (*auth.Service, *memory.UserRepository) {
	users := memory.NewUserRepository()
	return &auth.Service{
		Users:      users,
		Sessions:   memory.NewSessionStore(),
		Passwords:  plainHasher{},
		Tokens:     &counterTokens{},
		SessionTTL: time.Hour,
	}, users
}

func TestRegisterAndResolve(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	res, err := svc.Register(ctx, auth.RegisterParams{Email: " Owner@Example.com ", Name: "Olga", Password: "secret123", Role: "owner"})
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", res.User.Email)
	assert.Equal(t, domainuser.RoleOwner, res.User.Role)

	resolved, err := svc.ResolveToken(ctx, res.Token)
	require.NoError(t, err)
	actor := resolved.Actor()
	assert.Equal(t, res.User.ID, actor.UserID)
	assert.Equal(t, domainuser.RoleOwner, actor.Role)

	_, err = svc.Register(ctx, auth.RegisterParams{Email: "owner@example.com", Name: "Dup", Password: "secret123"})
	require.ErrorIs(t, err, errs.ErrConflict)
}

func TestRegisterRejectsAdminAndShortPassword(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	_, err := svc.Register(ctx, auth.RegisterParams{Email: "a@example.com", Name: "A", Password: "secret123", Role: "admin"})
	require.ErrorIs(t, err, auth.ErrRoleNotSelectable)

	_, err = svc.Register(ctx, auth.RegisterParams{Email: "a@example.com", Name: "A", Password: "short"})
	require.ErrorIs(t, err, errs.ErrValidation)

	res, err := svc.Register(ctx, auth.RegisterParams{Email: "a@example.com", Name: "A", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, domainuser.RoleTenant, res.User.Role)
}

func TestLoginAndLogout(t *testing.T) {
	svc, users := newService()
	ctx := context.Background()
	reg, err := svc.Register(ctx, auth.RegisterParams{Email: "t@example.com", Name: "T", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, auth.LoginParams{Email: "t@example.com", Password: "wrong-pass"})
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)

	login, err := svc.Login(ctx, auth.LoginParams{Email: "T@example.com", Password: "secret123"})
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx, login.Token))
	_, err = svc.ResolveToken(ctx, login.Token)
	require.ErrorIs(t, err, domainauth.ErrSessionNotFound)

	user, err := users.ByID(ctx, reg.User.ID)
	require.NoError(t, err)
	user.Deactivate(time.Now())
	require.NoError(t, users.Save(ctx, user))

	_, err = svc.ResolveToken(ctx, reg.Token)
	require.ErrorIs(t, err, auth.ErrUserInactive)
	_, err = svc.Login(ctx, auth.LoginParams{Email: "t@example.com", Password: "secret123"})
	require.ErrorIs(t, err, auth.ErrUserInactive)
}

func TestResolveExpiredSession(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	reg, err := svc.Register(ctx, auth.RegisterParams{Email: "x@example.com", Name: "X", Password: "secret123"})
	require.NoError(t, err)

	svc.Clock = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.ResolveToken(ctx, reg.Token)
	require.ErrorIs(t, err, domainauth.ErrSessionNotFound)
}

func TestSessionsAreStoredByDigest(t *testing.T) {
	sessions := memory.NewSessionStore()
	svc := &auth.Service{
		Users:     memory.NewUserRepository(),
		Sessions:  sessions,
		Passwords: plainHasher{},
		Tokens:    &counterTokens{},
	}
	ctx := context.Background()
	reg, err := svc.Register(ctx, auth.RegisterParams{Email: "d@example.com", Name: "D", Password: "secret123"})
	require.NoError(t, err)

	_, err = sessions.Get(ctx, domainauth.Digest(reg.Token))
	require.ErrorIs(t, err, domainauth.ErrSessionNotFound)
	stored, err := sessions.Get(ctx, domainauth.DigestOf(reg.Token))
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, stored.UserID)
	assert.Equal(t, 24*time.Hour, stored.ExpiresAt.Sub(stored.IssuedAt))

	require.NoError(t, sessions.RevokeUser(ctx, reg.User.ID))
	_, err = svc.ResolveToken(ctx, reg.Token)
	require.ErrorIs(t, err, domainauth.ErrSessionNotFound)
}
