// Package notify delivers user notifications: into the notification store,
// onto Kafka for a separate consumer, or to an HTTP webhook.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"

	"vidaview/internal/app/policies"
	domainnotification "vidaview/internal/domain/notification"
	domainuser "vidaview/internal/domain/user"
)

// Envelope is a notification with the identity and timestamp it was raised with.
type Envelope struct {
	ID           string                `json:"id"`
	Notification policies.Notification `json:"notification"`
	CreatedAt    time.Time             `json:"created_at"`
}

func newEnvelope(msg policies.Notification, now time.Time) Envelope {
	return Envelope{ID: uuid.NewString(), Notification: msg, CreatedAt: now.UTC()}
}

// Store writes notifications straight into the repository.
type Store struct {
	Repo  domainnotification.Repository
	Clock func() time.Time
}

func (s *Store) Enqueue(ctx context.Context, msg policies.Notification) error {
	return s.Deliver(ctx, newEnvelope(msg, s.now()))
}

// Deliver persists env under its own ID, so a redelivered envelope is stored once.
func (s *Store) Deliver(ctx context.Context, env Envelope) error {
	n, err := domainnotification.New(domainnotification.CreateParams{
		ID:        domainnotification.ID(env.ID),
		UserID:    domainuser.ID(env.Notification.UserID),
		Title:     env.Notification.Title,
		Message:   env.Notification.Message,
		Type:      domainnotification.Type(env.Notification.Type),
		RelatedID: env.Notification.RelatedID,
		Now:       env.CreatedAt,
	})
	if err != nil {
		return err
	}
	return s.Repo.Insert(ctx, n)
}

func (s *Store) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

var _ policies.Notifier = (*Store)(nil)
