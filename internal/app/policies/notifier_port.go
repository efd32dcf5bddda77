package policies

import "context"

// Notification is a fire-and-forget message addressed to one user.
type Notification struct {
	UserID    string `json:"user_id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Type      string `json:"type"`
	RelatedID string `json:"related_id,omitempty"`
}

// Notifier delivers notifications. Callers never let its failure undo a state change.
type Notifier interface {
	Enqueue(ctx context.Context, msg Notification) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, msg Notification) error

func (f NotifierFunc) Enqueue(ctx context.Context, msg Notification) error {
	return f(ctx, msg)
}
