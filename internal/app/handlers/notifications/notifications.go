package notifications

import (
	"context"
	"log/slog"
	"strings"

	"vidaview/internal/app/access"
	"vidaview/internal/app/commands"
	"vidaview/internal/app/dto"
	"vidaview/internal/app/queries"
	domainnotification "vidaview/internal/domain/notification"
	"vidaview/internal/domain/shared/errs"
)

const (
	listNotificationsKey = "notifications.list"
	unreadCountKey       = "notifications.unread_count"
	markReadKey          = "notifications.mark_read"
	markAllReadKey       = "notifications.mark_all_read"

	defaultListLimit = 50
)

var errNotificationID = errs.Validation("notifications: notification_id is required")

type ListNotificationsQuery struct {
	Actor  access.Actor
	IsRead *bool
	Limit  int
}

func (q ListNotificationsQuery) Key() string { return listNotificationsKey }

// ListNotificationsHandler returns the actor's own notifications, newest first.
type ListNotificationsHandler struct {
	Store domainnotification.Repository
}

func (h *ListNotificationsHandler) Handle(ctx context.Context, q ListNotificationsQuery) (dto.NotificationCollection, error) {
	if q.Actor.IsZero() {
		return dto.NotificationCollection{}, access.ErrUnauthenticated
	}
	limit := q.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	list, err := h.Store.List(ctx, domainnotification.Filter{UserID: q.Actor.UserID, IsRead: q.IsRead, Limit: limit})
	if err != nil {
		return dto.NotificationCollection{}, err
	}
	return dto.MapNotifications(list), nil
}

type UnreadCountQuery struct {
	Actor access.Actor
}

func (q UnreadCountQuery) Key() string { return unreadCountKey }

type UnreadCountHandler struct {
	Store domainnotification.Repository
}

func (h *UnreadCountHandler) Handle(ctx context.Context, q UnreadCountQuery) (dto.UnreadCount, error) {
	if q.Actor.IsZero() {
		return dto.UnreadCount{}, access.ErrUnauthenticated
	}
	count, err := h.Store.CountUnread(ctx, q.Actor.UserID)
	if err != nil {
		return dto.UnreadCount{}, err
	}
	return dto.UnreadCount{Count: count}, nil
}

type MarkReadCommand struct {
	Actor          access.Actor
	NotificationID string
}

func (c MarkReadCommand) Key() string { return markReadKey }

func (MarkReadCommand) NonTransactional() {}

// MarkReadHandler flags one notification as read; only its addressee may do so.
type MarkReadHandler struct {
	Store  domainnotification.Repository
	Logger *slog.Logger
}

func (h *MarkReadHandler) Handle(ctx context.Context, cmd MarkReadCommand) (*dto.Notification, error) {
	if cmd.Actor.IsZero() {
		return nil, access.ErrUnauthenticated
	}
	if strings.TrimSpace(cmd.NotificationID) == "" {
		return nil, errNotificationID
	}
	n, err := h.Store.ByID(ctx, domainnotification.ID(cmd.NotificationID))
	if err != nil {
		return nil, err
	}
	if n.UserID != cmd.Actor.UserID {
		return nil, domainnotification.ErrNotOwnedByActor
	}
	if !n.IsRead {
		if err := h.Store.MarkRead(ctx, n.ID); err != nil {
			return nil, err
		}
		n.IsRead = true
		if h.Logger != nil {
			h.Logger.Debug("notification read", "notification_id", n.ID, "actor_id", cmd.Actor.UserID)
		}
	}
	result := dto.MapNotification(n)
	return &result, nil
}

type MarkAllReadCommand struct {
	Actor access.Actor
}

func (c MarkAllReadCommand) Key() string { return markAllReadKey }

func (MarkAllReadCommand) NonTransactional() {}

type MarkAllReadHandler struct {
	Store  domainnotification.Repository
	Logger *slog.Logger
}

func (h *MarkAllReadHandler) Handle(ctx context.Context, cmd MarkAllReadCommand) (*dto.MarkedRead, error) {
	if cmd.Actor.IsZero() {
		return nil, access.ErrUnauthenticated
	}
	updated, err := h.Store.MarkAllRead(ctx, cmd.Actor.UserID)
	if err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Debug("notifications read", "actor_id", cmd.Actor.UserID, "count", updated)
	}
	return &dto.MarkedRead{Updated: updated}, nil
}

var _ queries.Handler[ListNotificationsQuery, dto.NotificationCollection] = (*ListNotificationsHandler)(nil)
var _ queries.Handler[UnreadCountQuery, dto.UnreadCount] = (*UnreadCountHandler)(nil)
var _ commands.Handler[MarkReadCommand, *dto.Notification] = (*MarkReadHandler)(nil)
var _ commands.Handler[MarkAllReadCommand, *dto.MarkedRead] = (*MarkAllReadHandler)(nil)
