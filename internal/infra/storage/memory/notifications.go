package memory

import (
	"context"
	"sort"
	"sync"

	domainnotification "vidaview/internal/domain/notification"
	domainuser "vidaview/internal/domain/user"
)

// NotificationRepository keeps per-user notifications in memory.
type NotificationRepository struct {
	mu    sync.RWMutex
	items map[domainnotification.ID]*domainnotification.Notification
}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{items: make(map[domainnotification.ID]*domainnotification.Notification)}
}

func (r *NotificationRepository) ByID(ctx context.Context, id domainnotification.ID) (*domainnotification.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.items[id]
	if !ok {
		return nil, domainnotification.ErrNotFound
	}
	cp := *n
	return &cp, nil
}

func (r *NotificationRepository) Insert(ctx context.Context, n *domainnotification.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.items[n.ID]; exists {
		return nil
	}
	cp := *n
	r.items[n.ID] = &cp
	return nil
}

func (r *NotificationRepository) List(ctx context.Context, filter domainnotification.Filter) ([]*domainnotification.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainnotification.Notification, 0)
	for _, n := range r.items {
		if filter.UserID != "" && n.UserID != filter.UserID {
			continue
		}
		if filter.IsRead != nil && n.IsRead != *filter.IsRead {
			continue
		}
		cp := *n
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id domainnotification.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.items[id]
	if !ok {
		return domainnotification.ErrNotFound
	}
	n.IsRead = true
	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID domainuser.ID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	updated := 0
	for _, n := range r.items {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			updated++
		}
	}
	return updated, nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID domainuser.ID) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, n := range r.items {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

var _ domainnotification.Repository = (*NotificationRepository)(nil)
