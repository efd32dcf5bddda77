package notifications_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidaview/internal/app/access"
	"vidaview/internal/app/handlers/notifications"
	domainnotification "vidaview/internal/domain/notification"
	"vidaview/internal/domain/shared/errs"
	"vidaview/internal/domain/user"
	"vidaview/internal/infra/storage/memory"
)

var (
	alice = access.Actor{UserID: "u-alice", Role: user.RoleTenant}
	bob   = access.Actor{UserID: "u-bob", Role: user.RoleOwner}
)

func seedStore(t *testing.T) *memory.NotificationRepository {
	t.Helper()
	store := memory.NewNotificationRepository()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, row := range []struct {
		id   string
		user user.ID
	}{{"n1", alice.UserID}, {"n2", alice.UserID}, {"n3", alice.UserID}, {"n4", bob.UserID}} {
		n, err := domainnotification.New(domainnotification.CreateParams{
			ID:     domainnotification.ID(row.id),
			UserID: row.user,
			Title:  "Booking update",
			Type:   domainnotification.TypeBooking,
			Now:    base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
		require.NoError(t, store.Insert(context.Background(), n))
	}
	return store
}

func TestListAndCount(t *testing.T) {
	store := seedStore(t)
	list := &notifications.ListNotificationsHandler{Store: store}

	res, err := list.Handle(context.Background(), notifications.ListNotificationsQuery{Actor: alice})
	require.NoError(t, err)
	require.Len(t, res.Items, 3)
	assert.Equal(t, "n3", res.Items[0].ID)

	count := &notifications.UnreadCountHandler{Store: store}
	unread, err := count.Handle(context.Background(), notifications.UnreadCountQuery{Actor: alice})
	require.NoError(t, err)
	assert.Equal(t, 3, unread.Count)

	_, err = list.Handle(context.Background(), notifications.ListNotificationsQuery{})
	require.ErrorIs(t, err, errs.ErrAuthorization)
}

func TestMarkReadOwnOnly(t *testing.T) {
	store := seedStore(t)
	h := &notifications.MarkReadHandler{Store: store}

	_, err := h.Handle(context.Background(), notifications.MarkReadCommand{Actor: bob, NotificationID: "n1"})
	require.ErrorIs(t, err, domainnotification.ErrNotOwnedByActor)

	res, err := h.Handle(context.Background(), notifications.MarkReadCommand{Actor: alice, NotificationID: "n1"})
	require.NoError(t, err)
	assert.True(t, res.IsRead)

	_, err = h.Handle(context.Background(), notifications.MarkReadCommand{Actor: alice, NotificationID: "missing"})
	require.ErrorIs(t, err, errs.ErrNotFound)

	read := true
	list := &notifications.ListNotificationsHandler{Store: store}
	onlyRead, err := list.Handle(context.Background(), notifications.ListNotificationsQuery{Actor: alice, IsRead: &read})
	require.NoError(t, err)
	require.Len(t, onlyRead.Items, 1)
	assert.Equal(t, "n1", onlyRead.Items[0].ID)
}

func TestMarkAllRead(t *testing.T) {
	store := seedStore(t)
	h := &notifications.MarkAllReadHandler{Store: store}

	res, err := h.Handle(context.Background(), notifications.MarkAllReadCommand{Actor: alice})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Updated)

	count := &notifications.UnreadCountHandler{Store: store}
	unread, err := count.Handle(context.Background(), notifications.UnreadCountQuery{Actor: alice})
	require.NoError(t, err)
	assert.Zero(t, unread.Count)

	bobCount, err := count.Handle(context.Background(), notifications.UnreadCountQuery{Actor: bob})
	require.NoError(t, err)
	assert.Equal(t, 1, bobCount.Count)
}
