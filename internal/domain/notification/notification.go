package notification

import (
	"context"
	"strings"
	"time"

	"vidaview/internal/domain/shared/errs"
	"vidaview/internal/domain/user"
)

var (
	ErrNotFound        = errs.NotFound("notification: not found")
	ErrInvalidType     = errs.Validation("notification: unknown type")
	ErrUserRequired    = errs.Validation("notification: user is required")
	ErrTitleRequired   = errs.Validation("notification: title is required")
	ErrNotOwnedByActor = errs.Authorization("notification: belongs to another user")
)

type ID string

type Type string

const (
	TypeBooking   Type = "booking"
	TypePayment   Type = "payment"
	TypeSystem    Type = "system"
	TypePromotion Type = "promotion"
)

// ParseType falls back to system for an empty value.
func ParseType(raw string) (Type, error) {
	switch t := Type(strings.ToLower(strings.TrimSpace(raw))); t {
	case "":
		return TypeSystem, nil
	case TypeBooking, TypePayment, TypeSystem, TypePromotion:
		return t, nil
	default:
		return "", ErrInvalidType
	}
}

type Notification struct {
	ID        ID
	UserID    user.ID
	Title     string
	Message   string
	Type      Type
	RelatedID string
	IsRead    bool
	CreatedAt time.Time
}

type Filter struct {
	UserID user.ID
	IsRead *bool
	Limit  int
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Notification, error)
	// Insert is idempotent on ID so redelivered messages are stored once.
	Insert(ctx context.Context, n *Notification) error
	List(ctx context.Context, filter Filter) ([]*Notification, error)
	MarkRead(ctx context.Context, id ID) error
	MarkAllRead(ctx context.Context, userID user.ID) (int, error)
	CountUnread(ctx context.Context, userID user.ID) (int, error)
}

type CreateParams struct {
	ID        ID
	UserID    user.ID
	Title     string
	Message   string
	Type      Type
	RelatedID string
	Now       time.Time
}

func New(params CreateParams) (*Notification, error) {
	if strings.TrimSpace(string(params.UserID)) == "" {
		return nil, ErrUserRequired
	}
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	typ, err := ParseType(string(params.Type))
	if err != nil {
		return nil, err
	}
	return &Notification{
		ID:        params.ID,
		UserID:    params.UserID,
		Title:     title,
		Message:   strings.TrimSpace(params.Message),
		Type:      typ,
		RelatedID: params.RelatedID,
		CreatedAt: params.Now.UTC(),
	}, nil
}
