package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"vidaview/internal/domain/shared/errs"
	"vidaview/internal/domain/user"
)

var (
	ErrTokenRequired   = errs.Validation("auth: token is required")
	ErrUserRequired    = errs.Validation("auth: user is required")
	ErrTTLInvalid      = errs.Validation("auth: ttl must be positive")
	ErrSessionNotFound = errs.NotFound("auth: session not found")
)

// Digest is the stored identity of a session: the hex SHA-256 of the bearer
// token. The token itself is only ever held by the client.
type Digest string

func DigestOf(token string) Digest {
	sum := sha256.Sum256([]byte(strings.TrimSpace(token)))
	return Digest(hex.EncodeToString(sum[:]))
}

// Session binds a token digest to a user until ExpiresAt. The user's role is
// not copied here; it is read from the user record on every request.
type Session struct {
	ID        Digest
	UserID    user.ID
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type IssueParams struct {
	Token  string
	UserID user.ID
	TTL    time.Duration
	Now    time.Time
}

func Issue(p IssueParams) (*Session, error) {
	switch {
	case strings.TrimSpace(p.Token) == "":
		return nil, ErrTokenRequired
	case strings.TrimSpace(string(p.UserID)) == "":
		return nil, ErrUserRequired
	case p.TTL <= 0:
		return nil, ErrTTLInvalid
	}
	now := p.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	return &Session{
		ID:        DigestOf(p.Token),
		UserID:    p.UserID,
		IssuedAt:  now,
		ExpiresAt: now.Add(p.TTL),
	}, nil
}

func (s *Session) Expired(at time.Time) bool {
	return !s.ExpiresAt.After(at.UTC())
}

type SessionStore interface {
	Save(ctx context.Context, session *Session) error
	Get(ctx context.Context, id Digest) (*Session, error)
	Delete(ctx context.Context, id Digest) error
	// RevokeUser removes every session of userID.
	RevokeUser(ctx context.Context, userID user.ID) error
}
