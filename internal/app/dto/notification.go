package dto

import (
	"time"

	domainnotification "vidaview/internal/domain/notification"
)

type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	RelatedID string    `json:"related_id,omitempty"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

type NotificationCollection struct {
	Items []Notification `json:"items"`
	Total int            `json:"total"`
}

type UnreadCount struct {
	Count int `json:"count"`
}

type MarkedRead struct {
	Updated int `json:"updated"`
}

func MapNotification(n *domainnotification.Notification) Notification {
	if n == nil {
		return Notification{}
	}
	return Notification{
		ID:        string(n.ID),
		Title:     n.Title,
		Message:   n.Message,
		Type:      string(n.Type),
		RelatedID: n.RelatedID,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}

func MapNotifications(list []*domainnotification.Notification) NotificationCollection {
	items := make([]Notification, 0, len(list))
	for _, n := range list {
		items = append(items, MapNotification(n))
	}
	return NotificationCollection{Items: items, Total: len(items)}
}
